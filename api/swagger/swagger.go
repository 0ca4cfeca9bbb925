package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Cohort API",
        "description": "Learning cohort engagement and eligibility service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Signup, login and token lifecycle"},
        {"name": "Users", "description": "Admin signup review"},
        {"name": "Meetings", "description": "Meeting schedule"},
        {"name": "Enrollments", "description": "Track enrollment"},
        {"name": "Attendance", "description": "Attendance marks"},
        {"name": "Homework", "description": "Homework submissions"},
        {"name": "Engagement", "description": "Derived engagement views"},
        {"name": "Preferences", "description": "Per-track favorite and notification flags"},
        {"name": "Reports", "description": "Roster report downloads"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register a student account",
                "responses": {
                    "201": {"description": "Created, pending approval"},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "responses": {
                    "200": {"description": "Tokens issued"},
                    "403": {"description": "Account pending or rejected"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "Tokens rotated"}
                }
            }
        },
        "/meetings": {
            "get": {
                "tags": ["Meetings"],
                "summary": "List meetings with window flags",
                "responses": {
                    "200": {"$ref": "#/responses/Envelope"}
                }
            }
        },
        "/enrollments/toggle": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Toggle track enrollment",
                "responses": {
                    "200": {"$ref": "#/responses/Envelope"}
                }
            }
        },
        "/attendance": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Mark attendance",
                "responses": {
                    "200": {"$ref": "#/responses/Envelope"},
                    "409": {"description": "Window closed"}
                }
            }
        },
        "/homework": {
            "post": {
                "tags": ["Homework"],
                "summary": "Submit homework",
                "responses": {
                    "201": {"$ref": "#/responses/Envelope"},
                    "409": {"description": "Window closed or duplicate submission"}
                }
            }
        },
        "/engagement/me": {
            "get": {
                "tags": ["Engagement"],
                "summary": "My engagement snapshot",
                "responses": {
                    "200": {"$ref": "#/responses/Envelope"}
                }
            }
        },
        "/preferences": {
            "get": {
                "tags": ["Preferences"],
                "summary": "List reconciled preferences",
                "responses": {
                    "200": {"$ref": "#/responses/Envelope"}
                }
            }
        }
    },
    "responses": {
        "Envelope": {
            "description": "Standard response envelope",
            "schema": {"$ref": "#/definitions/ResponseEnvelope"}
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
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
