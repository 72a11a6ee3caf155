package models

import "time"

// Student is a read-only directory record. Account management lives in the
// identity service; this API only joins against it. The student ID is the
// token subject: identity tokens for students carry it as the user_id
// claim, so SELF-scoped routes compare it to the :id param directly.
type Student struct {
	ID        string    `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Major     string    `db:"major" json:"major"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
