// Package docs registers the OpenAPI document served under /swagger. Keep it in step with
// the handler annotations when routes change.
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
        "/ping": {
            "get": {
                "description": "This endpoint checks the health of the service",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Ping",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/shared.Response"}}}
            }
        },
        "/api/visits": {
            "get": {
                "description": "Returns total and unique visit counts with the last 10 visits",
                "produces": ["application/json"],
                "tags": ["visits"],
                "summary": "Visit statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/shared.Response"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/shared.Response"}}
                }
            },
            "post": {
                "description": "Records a page visit for the caller's address. Rate limited per address.",
                "produces": ["application/json"],
                "tags": ["visits"],
                "summary": "Log a visit",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/shared.Response"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/shared.Response"}}
                }
            }
        },
        "/api/failed-logins": {
            "get": {
                "description": "Returns the attempt count, live blocks and the last 20 attempts",
                "produces": ["application/json"],
                "tags": ["security"],
                "summary": "Failed login statistics",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/shared.Response"}}}
            },
            "post": {
                "description": "Records a failed admin login for the caller's address. Blocked addresses are rejected without recording.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["security"],
                "summary": "Record a failed login",
                "parameters": [
                    {"description": "Attempt details", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/dto.FailedLoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/shared.Response"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/shared.Response"}}
                }
            }
        },
        "/api/message-count": {
            "get": {
                "description": "Returns the caller's remaining messages for today",
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "Message quota",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/shared.Response"}}}
            }
        },
        "/api/chat-history": {
            "get": {
                "description": "Returns the caller's unexpired conversation",
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "Chat history",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/shared.Response"}}}
            }
        },
        "/api/chat-resume": {
            "post": {
                "description": "Answers a question grounded on the resume. Counts against the caller's daily quota.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "Ask about the resume",
                "parameters": [
                    {"description": "Question", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.ChatRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/shared.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ValidationErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/shared.Response"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/shared.Response"}}
                }
            }
        },
        "/api/clear-conversation": {
            "post": {
                "description": "Removes the caller's history. Today's message count is kept.",
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "Clear conversation",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/shared.Response"}}}
            }
        },
        "/api/rag-status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["rag"],
                "summary": "Retriever status",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/shared.Response"}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Rebuilds the index from the current resume source",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["rag"],
                "summary": "Refresh the retriever",
                "parameters": [
                    {"description": "Admin password", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/dto.RefreshRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/shared.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/shared.Response"}}
                }
            }
        },
        "/api/refresh-resume": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Re-reads the resume source and rebuilds the retriever",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["rag"],
                "summary": "Reload the resume",
                "parameters": [
                    {"description": "Admin password", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/dto.RefreshRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/shared.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/shared.Response"}}
                }
            }
        },
        "/api/admin/login": {
            "post": {
                "description": "Exchanges the admin password for a bearer token. Wrong passwords count as failed logins.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Admin login",
                "parameters": [
                    {"description": "Admin password", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.AdminLoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/shared.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ValidationErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/shared.Response"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/shared.Response"}}
                }
            }
        },
        "/api/status": {
            "get": {
                "description": "Reports which settings are present, memory, uptime, conversation totals and retriever state",
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "System status",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/shared.Response"}}}
            }
        }
    },
    "definitions": {
        "dto.AdminLoginRequest": {
            "type": "object",
            "required": ["password"],
            "properties": {"password": {"type": "string", "maxLength": 256}}
        },
        "dto.ChatRequest": {
            "type": "object",
            "required": ["message"],
            "properties": {"message": {"type": "string", "maxLength": 4000}}
        },
        "dto.FailedLoginRequest": {
            "type": "object",
            "properties": {"attemptedPassword": {"type": "string", "maxLength": 256}}
        },
        "dto.RefreshRequest": {
            "type": "object",
            "properties": {"password": {"type": "string", "maxLength": 256}}
        },
        "dto.ValidationError": {
            "type": "object",
            "properties": {
                "field": {"type": "string", "example": "message"},
                "message": {"type": "string", "example": "message is required"}
            }
        },
        "dto.ValidationErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 400},
                "errors": {"type": "array", "items": {"$ref": "#/definitions/dto.ValidationError"}},
                "message": {"type": "string", "example": "Validation failed"}
            }
        },
        "shared.Response": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "data": {},
                "message": {"type": "string"}
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
	Version:          "1.0",
	Host:             "",
	BasePath:         "",
	Schemes:          []string{},
	Title:            "Portfolio API",
	Description:      "Visit analytics, failed-login guard and resume chat for a personal portfolio.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
