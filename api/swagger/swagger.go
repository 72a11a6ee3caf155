package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "UniEnroll API",
        "description": "Student enrollment request, adjudication and billing API",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Enrollment Requests", "description": "Student add/drop request intake"},
        {"name": "Adjudication", "description": "Admin approval queue"},
        {"name": "Courses", "description": "Course catalog management"},
        {"name": "Students", "description": "Student catalog and timetable views"},
        {"name": "Billing", "description": "Invoices and payments"},
        {"name": "Evaluations", "description": "Course evaluation tracking"}
    ],
    "paths": {
        "/enrollment-requests": {
            "post": {
                "tags": ["Enrollment Requests"],
                "summary": "Submit an add/drop request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitEnrollmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate pending request"},
                    "422": {"description": "Eligibility check failed"}
                }
            }
        },
        "/enrollment-requests/pending": {
            "get": {
                "tags": ["Adjudication"],
                "summary": "List pending requests, oldest first",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollment-requests/pending/export": {
            "post": {
                "tags": ["Adjudication"],
                "summary": "Export the pending queue as CSV",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollment-requests/{id}/approve": {
            "post": {
                "tags": ["Adjudication"],
                "summary": "Approve a pending request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Request not found or already processed"},
                    "422": {"description": "Eligibility or billing check failed"}
                }
            }
        },
        "/enrollment-requests/{id}/reject": {
            "post": {
                "tags": ["Adjudication"],
                "summary": "Reject a pending request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Request not found or already processed"}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses with seat availability",
                "parameters": [
                    {"name": "major", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Create course",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{id}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Get course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Courses"],
                "summary": "Update course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Courses"],
                "summary": "Delete course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Course has enrollments"}
                }
            }
        },
        "/students/{id}/available-courses": {
            "get": {
                "tags": ["Students"],
                "summary": "List courses the student can add this semester",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/timetable": {
            "get": {
                "tags": ["Students"],
                "summary": "Get the student's current timetable",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/enrollment-requests": {
            "get": {
                "tags": ["Enrollment Requests"],
                "summary": "List the student's request history",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/invoice": {
            "get": {
                "tags": ["Billing"],
                "summary": "Get the student's invoice for a semester (current by default)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "No invoice for the semester"}
                }
            }
        },
        "/students/{id}/payments": {
            "get": {
                "tags": ["Billing"],
                "summary": "List the student's payment history",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/evaluations": {
            "get": {
                "tags": ["Evaluations"],
                "summary": "List the student's evaluation statuses",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments": {
            "post": {
                "tags": ["Billing"],
                "summary": "Record a settled payment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordPaymentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/evaluations/{id}/complete": {
            "post": {
                "tags": ["Evaluations"],
                "summary": "Mark an evaluation completed",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already completed"}
                }
            }
        }
    },
    "definitions": {
        "SubmitEnrollmentRequest": {
            "type": "object",
            "description": "The student is taken from the bearer token, never the payload.",
            "properties": {
                "course_id": {"type": "string"},
                "action": {"type": "string", "enum": ["Add", "Drop"]},
                "reason": {"type": "string"}
            },
            "required": ["course_id", "action", "reason"]
        },
        "CourseInput": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "major": {"type": "string"},
                "credit_hours": {"type": "integer"},
                "day_of_week": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "venue": {"type": "string"},
                "lecturer": {"type": "string"},
                "section": {"type": "string"},
                "total_seats": {"type": "integer"},
                "cost": {"type": "number"}
            },
            "required": ["id", "name", "major", "credit_hours", "day_of_week", "start_time", "end_time", "total_seats"]
        },
        "RecordPaymentRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "invoice_id": {"type": "string"},
                "amount": {"type": "number"},
                "method": {"type": "string", "enum": ["CASH", "CARD", "TRANSFER"]},
                "reference": {"type": "string"}
            },
            "required": ["student_id", "invoice_id", "amount", "method"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
