// Package docs holds the swagger document served at /swagger/*any.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/risk/calculate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["risk"],
                "summary": "Estimate 10-year ASCVD risk",
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/types.CalculateRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.CalculateResponse"}},
                    "400": {"description": "Missing, non-positive or unsupported input", "schema": {"$ref": "#/definitions/errors.Response"}},
                    "422": {"description": "Result outside [0, 100]", "schema": {"$ref": "#/definitions/errors.Response"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/errors.Response"}}
                }
            }
        },
        "/risk/profiles": {
            "get": {
                "produces": ["application/json"],
                "tags": ["risk"],
                "summary": "List supported sex/race profiles and their coefficients",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ProfilesResponse"}}
                }
            }
        },
        "/chat/sessions": {
            "post": {
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "Start a chat session",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/types.SessionResponse"}}
                }
            }
        },
        "/chat/messages": {
            "get": {
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "List messages of the current session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer", "minimum": 1, "maximum": 200, "default": 50}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.MessagesResponse"}},
                    "401": {"description": "Missing or invalid session token", "schema": {"$ref": "#/definitions/errors.Response"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "Send a message",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/types.SendMessageRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/chat.Message"}},
                    "400": {"description": "Empty or oversized message", "schema": {"$ref": "#/definitions/errors.Response"}},
                    "401": {"description": "Missing or invalid session token", "schema": {"$ref": "#/definitions/errors.Response"}}
                }
            }
        },
        "/ratelimit/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ops"],
                "summary": "Limits applied to the caller",
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "types.CalculateRequest": {
            "type": "object",
            "properties": {
                "age": {"type": "string", "example": "55", "description": "as typed; a JSON number is also accepted"},
                "total_cholesterol": {"type": "string", "example": "213", "description": "as typed; a JSON number is also accepted"},
                "hdl_cholesterol": {"type": "string", "example": "50", "description": "as typed; a JSON number is also accepted"},
                "systolic_bp": {"type": "string", "example": "120", "description": "as typed; a JSON number is also accepted"},
                "smoker": {"type": "boolean"},
                "diabetes": {"type": "boolean"},
                "on_hypertension_meds": {"type": "boolean"},
                "sex": {"type": "string", "example": "male"},
                "race": {"type": "string", "example": "white"}
            }
        },
        "types.CalculateResponse": {
            "type": "object",
            "properties": {
                "risk_percent": {"type": "number", "example": 5.38},
                "display": {"type": "string", "example": "5.38%"},
                "message": {"type": "string", "example": "Your estimated 10-year risk of ASCVD is 5.38%"},
                "profile": {"type": "string", "example": "male/white"}
            }
        },
        "types.ProfilesResponse": {
            "type": "object",
            "properties": {
                "profiles": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "sex": {"type": "string"},
                            "race": {"type": "string"},
                            "coefficients": {"type": "object"}
                        }
                    }
                }
            }
        },
        "types.SessionResponse": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "token": {"type": "string"},
                "expires_at": {"type": "string", "format": "date-time"}
            }
        },
        "types.SendMessageRequest": {
            "type": "object",
            "required": ["text"],
            "properties": {
                "text": {"type": "string", "example": "What does my risk mean?"}
            }
        },
        "types.MessagesResponse": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "messages": {"type": "array", "items": {"$ref": "#/definitions/chat.Message"}}
            }
        },
        "chat.Message": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "session_id": {"type": "string"},
                "text": {"type": "string"},
                "sender": {"type": "string", "enum": ["user", "bot"]},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "errors.Response": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "string"},
                "category": {"type": "string"},
                "details": {"type": "object", "additionalProperties": {"type": "string"}},
                "request_id": {"type": "string"},
                "timestamp": {"type": "string", "format": "date-time"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "ASCVD Risk Calculator API",
	Description:      "10-year atherosclerotic cardiovascular disease risk from the Pooled Cohort Equations.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
