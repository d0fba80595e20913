// Package docs registers the OpenAPI description served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "paths": {
        "/map": {
            "get": {"tags": ["map"], "summary": "Get map snapshot", "produces": ["application/json"],
                "responses": {"200": {"description": "Current snapshot"}}}
        },
        "/events": {
            "get": {"tags": ["events"], "summary": "List visible events", "produces": ["application/json"],
                "parameters": [{"name": "filter", "in": "query", "type": "string",
                    "enum": ["all", "today", "tomorrow", "weekend", "favorites"]}],
                "responses": {"200": {"description": "Visible events"}, "400": {"description": "Unknown filter mode"}}}
        },
        "/events/refresh": {
            "post": {"tags": ["events"], "summary": "Refresh events", "produces": ["application/json"],
                "responses": {"200": {"description": "Snapshot after the fetch"}, "502": {"description": "Event source failed"}}}
        },
        "/events/{id}/select": {
            "put": {"tags": ["events"], "summary": "Select an event", "produces": ["application/json"],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Selected event"}, "404": {"description": "Event not in the current list"}}}
        },
        "/events/{id}/directions": {
            "get": {"tags": ["events"], "summary": "Get driving directions", "produces": ["application/json"],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Directions URL"}, "204": {"description": "User location unknown"},
                    "404": {"description": "Event not in the current list"}}}
        },
        "/location": {
            "put": {"tags": ["location"], "summary": "Set user location", "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"name": "request", "in": "body", "required": true,
                    "schema": {"type": "object", "required": ["lat", "lng"],
                        "properties": {"lat": {"type": "number"}, "lng": {"type": "number"}}}}],
                "responses": {"200": {"description": "Snapshot after the fetch"}, "400": {"description": "Invalid coordinates"}}}
        },
        "/location/reset": {
            "post": {"tags": ["location"], "summary": "Reset to device location", "produces": ["application/json"],
                "responses": {"200": {"description": "Snapshot after the fetch"}, "503": {"description": "Device location unavailable"}}}
        },
        "/search": {
            "post": {"tags": ["location"], "summary": "Search a place", "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"name": "request", "in": "body", "required": true,
                    "schema": {"type": "object", "required": ["query"], "properties": {"query": {"type": "string"}}}}],
                "responses": {"200": {"description": "Search result"}, "400": {"description": "Missing query"},
                    "429": {"description": "Rate limit exceeded"}}}
        },
        "/filter": {
            "put": {"tags": ["events"], "summary": "Set filter mode", "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"name": "request", "in": "body", "required": true,
                    "schema": {"type": "object", "required": ["mode"], "properties": {"mode": {"type": "string"}}}}],
                "responses": {"200": {"description": "Snapshot under the new filter"}, "400": {"description": "Unknown filter mode"}}}
        },
        "/favorites": {
            "get": {"tags": ["favorites"], "summary": "List favorites", "produces": ["application/json"],
                "responses": {"200": {"description": "Favorite event IDs"}}}
        },
        "/favorites/{id}/toggle": {
            "post": {"tags": ["favorites"], "summary": "Toggle a favorite", "produces": ["application/json"],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "New favorite state"}, "500": {"description": "Favorites could not be stored"}}}
        },
        "/favorites/calendar.ics": {
            "get": {"tags": ["favorites"], "summary": "Export favorites as iCalendar", "produces": ["text/calendar"],
                "responses": {"200": {"description": "iCalendar feed"}}}
        },
        "/notifications/permission": {
            "get": {"tags": ["notifications"], "summary": "Get notification permission", "produces": ["application/json"],
                "responses": {"200": {"description": "Channel availability and permission"}}},
            "post": {"tags": ["notifications"], "summary": "Answer the notification permission request",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "request", "in": "body", "required": true,
                    "schema": {"type": "object", "required": ["granted"], "properties": {"granted": {"type": "boolean"}}}}],
                "responses": {"200": {"description": "Channel availability and permission"}, "400": {"description": "Invalid request"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "NeoEvents API",
	Description:      "Discover events around a location, filter them and keep favorites.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
