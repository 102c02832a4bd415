// Package docs registers the OpenAPI document served under /swagger.
// Regenerate with `swag init -g internal/api/router.go -o internal/api/docs`.
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
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Register a new user", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Login", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "404": {"description": "Not Found"}}}},
        "/v1/cheats": {"get": {"tags": ["cheats"], "summary": "List cheats", "parameters": [{"type": "string", "name": "game", "in": "query"}, {"type": "string", "name": "platform", "in": "query"}, {"type": "string", "name": "category", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/v1/cheats/{id}": {"get": {"tags": ["cheats"], "summary": "Get a cheat", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/v1/cheats/{id}/like": {
            "get": {"tags": ["likes"], "summary": "Like status of a cheat", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["likes"], "summary": "Toggle like", "security": [{"BearerAuth": []}], "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "401": {"description": "unauthenticated"}, "403": {"description": "quota_exceeded"}, "404": {"description": "Not Found"}, "409": {"description": "busy"}, "503": {"description": "remote_failure"}}}
        },
        "/v1/badges": {"get": {"tags": ["badges"], "summary": "Badge catalog", "responses": {"200": {"description": "OK"}}}},
        "/v1/me/badges": {"get": {"tags": ["badges"], "summary": "Unlocked badges", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/v1/me/favorites": {"get": {"tags": ["favorites"], "summary": "Favorites summary", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/v1/me/favorites/stream": {"get": {"tags": ["favorites"], "summary": "Favorites live stream (websocket)", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "access_token", "in": "query"}], "responses": {"101": {"description": "Switching Protocols"}, "401": {"description": "Unauthorized"}}}},
        "/v1/me/premium": {"get": {"tags": ["premium"], "summary": "Premium status", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/v1/admin/subscriptions/{user_id}": {"put": {"tags": ["admin"], "summary": "Grant or revoke premium", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "user_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/v1/admin/quota-audit": {"post": {"tags": ["admin"], "summary": "Run the free-tier quota audit now", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}}
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
	Title:            "GTA Cheats API",
	Description:      "Cheat catalog, favorites with a free-tier quota, badges and a live favorites stream.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
