package models

import "time"

// Course describes a catalog entry. StartTime and EndTime are clock times
// in "HH:MM" 24-hour form; DayOfWeek is the full English day name.
type Course struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Major       string    `db:"major" json:"major"`
	CreditHours int       `db:"credit_hours" json:"credit_hours"`
	DayOfWeek   string    `db:"day_of_week" json:"day_of_week"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	Venue       string    `db:"venue" json:"venue"`
	Lecturer    string    `db:"lecturer" json:"lecturer"`
	Section     string    `db:"section" json:"section"`
	TotalSeats  int       `db:"total_seats" json:"total_seats"`
	Cost        float64   `db:"cost" json:"cost"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CourseAvailability enriches Course with the computed seat count for a
// semester. Available seats are always derived, never stored.
type CourseAvailability struct {
	Course
	AvailableSeats int `db:"available_seats" json:"available_seats"`
}

// CourseFilter provides filters for catalog listings.
type CourseFilter struct {
	Major     string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
