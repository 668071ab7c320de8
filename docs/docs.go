// Package docs registers the OpenAPI document served under /swagger. It is
// written by hand in the layout swag uses and follows the handler annotations.
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
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.readinessResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.readinessResponse"}}
                }
            }
        },
        "/v1/catalog": {
            "get": {
                "produces": ["application/json"],
                "tags": ["console"],
                "summary": "List grantable dashboards",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.catalogResponse"}}
                }
            }
        },
        "/v1/clients": {
            "get": {
                "produces": ["application/json"],
                "tags": ["clients"],
                "summary": "List clients",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.listClientsResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["clients"],
                "summary": "Add a client",
                "parameters": [
                    {"description": "New client", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.addClientRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.consoleResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.consoleResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.consoleResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.consoleResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.consoleResponse"}}
                }
            }
        },
        "/v1/clients/{username}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["clients"],
                "summary": "Get a client",
                "parameters": [
                    {"type": "string", "description": "Client username", "name": "username", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.clientResponse"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["clients"],
                "summary": "Replace a client's password, expiry date and permissions",
                "parameters": [
                    {"type": "string", "description": "Client username", "name": "username", "in": "path", "required": true},
                    {"description": "Replacement values", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.updateClientRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.consoleResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.consoleResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.consoleResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.consoleResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.consoleResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["clients"],
                "summary": "Delete a client",
                "parameters": [
                    {"type": "string", "description": "Client username", "name": "username", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.consoleResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.consoleResponse"}}
                }
            }
        },
        "/v1/console": {
            "get": {
                "description": "Lists every client and, when selected names one of them, prefills the edit form.",
                "produces": ["application/json"],
                "tags": ["console"],
                "summary": "Render the console",
                "parameters": [
                    {"type": "string", "description": "Username to edit; \"Select\" or empty for none", "name": "selected", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.consoleResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.consoleResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.addClientRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "expiry_date": {"type": "string", "example": "2024-12-31"},
                "login_status": {"type": "boolean"},
                "password": {"type": "string", "maxLength": 72},
                "permissions": {"type": "array", "items": {"type": "string"}, "example": ["dashboard1", "dashboard2"]},
                "username": {"type": "string", "maxLength": 64}
            }
        },
        "handler.catalogResponse": {
            "type": "object",
            "properties": {
                "dashboards": {"type": "array", "items": {"type": "string"}}
            }
        },
        "handler.clientResponse": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "expiry_date": {"type": "string", "example": "2024-12-31"},
                "login_status": {"type": "boolean"},
                "permissions": {"type": "array", "items": {"type": "string"}},
                "username": {"type": "string", "example": "alice"}
            }
        },
        "handler.consoleResponse": {
            "type": "object",
            "properties": {
                "notice": {"$ref": "#/definitions/handler.noticeResponse"},
                "view": {"$ref": "#/definitions/handler.viewResponse"}
            }
        },
        "handler.dependencyStatus": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "handler.listClientsResponse": {
            "type": "object",
            "properties": {
                "clients": {"type": "array", "items": {"$ref": "#/definitions/handler.clientResponse"}}
            }
        },
        "handler.noticeResponse": {
            "type": "object",
            "properties": {
                "level": {"type": "string", "example": "success"},
                "message": {"type": "string", "example": "Client 'alice' added successfully!"}
            }
        },
        "handler.readinessResponse": {
            "type": "object",
            "properties": {
                "dependencies": {"type": "object", "additionalProperties": {"$ref": "#/definitions/handler.dependencyStatus"}},
                "status": {"type": "string"}
            }
        },
        "handler.updateClientRequest": {
            "type": "object",
            "required": ["expiry_date"],
            "properties": {
                "email": {"type": "string"},
                "expiry_date": {"type": "string", "example": "2025-06-30"},
                "login_status": {"type": "boolean"},
                "password": {"type": "string", "maxLength": 72},
                "permissions": {"type": "array", "items": {"type": "string"}, "example": ["dashboard3"]}
            }
        },
        "handler.viewResponse": {
            "type": "object",
            "properties": {
                "catalog": {"type": "array", "items": {"type": "string"}},
                "clients": {"type": "array", "items": {"$ref": "#/definitions/handler.clientResponse"}},
                "default_expiry": {"type": "string", "example": "2024-12-31"},
                "placeholder": {"type": "string", "example": "No clients added yet."},
                "selected": {"$ref": "#/definitions/handler.clientResponse"},
                "selection_enabled": {"type": "boolean"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Client Console API",
	Description:      "Administrative console for client accounts: credentials, expiry dates and dashboard permissions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
