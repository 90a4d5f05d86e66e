// Package docs registers the OpenAPI description served under /swagger.
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
        "/v1/athletes": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["athletes"],
                "summary": "Enriched athlete listing",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/v1/tutors": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["tutors"],
                "summary": "Enriched tutor listing",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/tutors/{tutorID}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["tutors"],
                "summary": "Delete a tutor",
                "parameters": [{"type": "integer", "name": "tutorID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "409": {"description": "Delete blocked"}}
            }
        },
        "/v1/coaches": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["coaches"],
                "summary": "Enriched coach listing",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/clubs/{clubID}/roster": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["clubs"],
                "summary": "Club roster",
                "parameters": [{"type": "integer", "name": "clubID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/v1/persons/resolve": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["persons"],
                "summary": "Find or create a person by document",
                "responses": {"200": {"description": "Existing"}, "201": {"description": "Created"}, "422": {"description": "Validation failed"}}
            }
        },
        "/v1/persons/{personID}/documents": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "tags": ["persons"],
                "summary": "Upload a person document",
                "parameters": [
                    {"type": "integer", "name": "personID", "in": "path", "required": true},
                    {"type": "integer", "name": "tipoDocumento", "in": "formData", "required": true},
                    {"type": "file", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/v1/workflows/link-guardian": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["workflows"],
                "summary": "Link a minor to a guardian",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "502": {"description": "State may be inconsistent"}}
            }
        },
        "/v1/workflows/transfer": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["workflows"],
                "summary": "Transfer an athlete to another club",
                "responses": {"200": {"description": "OK"}, "409": {"description": "Confirmation required"}}
            }
        },
        "/v1/admin/teardown": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["admin"],
                "summary": "Start a teardown",
                "responses": {"202": {"description": "Accepted"}, "403": {"description": "Forbidden"}, "409": {"description": "Already running"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "SIGDEF admin API",
	Description:      "Admin backend for the federation registry: enriched listings, relationship workflows and teardown.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
