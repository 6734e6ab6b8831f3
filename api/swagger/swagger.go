package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "MindWell Scheduling API",
        "description": "Availability resolution and booking for the MindWell telehealth platform",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Availability", "description": "Open slot resolution"},
        {"name": "Schedule", "description": "Provider weekly template and date overrides"},
        {"name": "Appointments", "description": "Booking and the appointment ledger"},
        {"name": "Exports", "description": "Provider day-sheet downloads"}
    ],
    "paths": {
        "/providers/{providerId}/availability": {
            "get": {
                "tags": ["Availability"],
                "summary": "Resolve open slots for a provider",
                "parameters": [
                    {"name": "providerId", "in": "path", "required": true, "type": "string"},
                    {"name": "from", "in": "query", "required": true, "type": "string", "description": "Range start, YYYY-MM-DD, inclusive"},
                    {"name": "to", "in": "query", "required": true, "type": "string", "description": "Range end, YYYY-MM-DD, inclusive"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid range"}
                }
            }
        },
        "/schedule/template": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Get the caller's weekly template",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No template saved yet"}
                }
            },
            "put": {
                "tags": ["Schedule"],
                "summary": "Replace the caller's weekly template",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveTemplateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid slots"}
                }
            }
        },
        "/schedule/overrides": {
            "get": {
                "tags": ["Schedule"],
                "summary": "List the caller's upcoming date overrides",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Schedule"],
                "summary": "Replace all future-dated overrides",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveOverridesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid overrides"}
                }
            }
        },
        "/appointments": {
            "get": {
                "tags": ["Appointments"],
                "summary": "List appointments visible to the caller",
                "parameters": [
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["PENDING", "CONFIRMED", "CANCELLED"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Appointments"],
                "summary": "Book an open slot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BookAppointmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid booking"},
                    "409": {"description": "Slot was taken by a concurrent booking"}
                }
            }
        },
        "/appointments/{id}": {
            "delete": {
                "tags": ["Appointments"],
                "summary": "Cancel a future appointment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Already cancelled"}
                }
            }
        },
        "/appointments/{id}/meeting-reference": {
            "get": {
                "tags": ["Appointments"],
                "summary": "Get the conferencing room reference, assigning it on first access",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Appointment is cancelled"}
                }
            }
        },
        "/exports/day-sheet": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download the caller's appointments as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "TimeSlot": {
            "type": "object",
            "properties": {
                "start": {"type": "string", "example": "09:00"},
                "end": {"type": "string", "example": "11:00"}
            }
        },
        "TemplateDayRequest": {
            "type": "object",
            "properties": {
                "weekday": {"type": "integer", "minimum": 0, "maximum": 6},
                "enabled": {"type": "boolean"},
                "slots": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/TimeSlot"}
                }
            }
        },
        "SaveTemplateRequest": {
            "type": "object",
            "properties": {
                "sessionDurationMinutes": {"type": "integer"},
                "days": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/TemplateDayRequest"}
                }
            },
            "required": ["sessionDurationMinutes", "days"]
        },
        "CustomOverrideRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "example": "2026-09-08"},
                "slots": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/TimeSlot"}
                }
            },
            "required": ["date", "slots"]
        },
        "SaveOverridesRequest": {
            "type": "object",
            "properties": {
                "custom": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/CustomOverrideRequest"}
                },
                "blocked": {
                    "type": "array",
                    "items": {"type": "string"}
                }
            }
        },
        "BookAppointmentRequest": {
            "type": "object",
            "properties": {
                "providerId": {"type": "string"},
                "start": {"type": "string", "format": "date-time"},
                "durationMinutes": {"type": "integer"}
            },
            "required": ["providerId", "start", "durationMinutes"]
        },
        "BookableSlot": {
            "type": "object",
            "properties": {
                "start": {"type": "string", "example": "09:00"},
                "end": {"type": "string", "example": "10:00"},
                "startsAt": {"type": "string", "format": "date-time"},
                "endsAt": {"type": "string", "format": "date-time"}
            }
        },
        "DayAvailability": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "example": "2026-09-07"},
                "slots": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/BookableSlot"}
                }
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "totalCount": {"type": "integer"}
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
