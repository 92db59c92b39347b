// Package docs is generated by swag from the handler annotations. Regenerate with
// swag init -g docs/swagger.go -o docs
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health Check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/locations": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Locations"],
                "summary": "Report the caller's position",
                "parameters": [
                    {"description": "Current position", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateLocationReq"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.LocationResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/locations/nearby": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Locations"],
                "summary": "Users near the caller",
                "parameters": [
                    {"type": "number", "default": 1000, "description": "Search radius in meters", "name": "radius", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"radius": {"type": "number"}, "users": {"type": "array", "items": {"$ref": "#/definitions/dto.NearbyUserResponse"}}}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/locations/building": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Locations"],
                "summary": "Building the caller is in",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"building": {"type": "string"}}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/locations/sharing": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Locations"],
                "summary": "Turn location sharing on or off",
                "parameters": [
                    {"description": "Desired state", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.ToggleReq"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"location_sharing_enabled": {"type": "boolean"}}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/locations/incognito": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Locations"],
                "summary": "Hide the caller from nearby searches",
                "parameters": [
                    {"description": "Desired state", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.ToggleReq"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"incognito": {"type": "boolean"}}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/locations/history": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Locations"],
                "summary": "Caller's recent positions",
                "parameters": [
                    {"type": "integer", "default": 24, "description": "Look-back window, 1 to 168", "name": "hours", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"hours": {"type": "integer"}, "points": {"type": "array", "items": {"$ref": "#/definitions/models.LocationHistoryPoint"}}}}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/privacy/settings": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Privacy"],
                "summary": "Caller's privacy settings",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PrivacySettings"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Privacy"],
                "summary": "Change privacy settings",
                "parameters": [
                    {"description": "Fields to change", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.PrivacySettingsPatch"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PrivacySettings"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/privacy/can-view": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Privacy"],
                "summary": "Which profiles the caller may see",
                "parameters": [
                    {"description": "Subject ids", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.SubjectsReq"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CanViewResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/profiles/filtered": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Profiles"],
                "summary": "Profiles as the caller is allowed to see them",
                "parameters": [
                    {"description": "Subject ids", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.SubjectsReq"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"profiles": {"type": "array", "items": {"$ref": "#/definitions/models.FilteredProfile"}}}}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "errorResponse": {
            "type": "object",
            "properties": {"error": {}}
        },
        "dto.UpdateLocationReq": {
            "type": "object",
            "properties": {
                "latitude": {"type": "number", "example": 51.0903},
                "longitude": {"type": "number", "example": 71.4305},
                "accuracy": {"type": "number", "example": 12.5}
            }
        },
        "dto.LocationResponse": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "accuracy": {"type": "number"},
                "last_updated": {"type": "string"},
                "last_seen": {"type": "string"},
                "is_active": {"type": "boolean"},
                "location_sharing_enabled": {"type": "boolean"}
            }
        },
        "dto.NearbyUserResponse": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"},
                "distance": {"type": "number", "example": 42.7},
                "accuracy": {"type": "number"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "last_updated": {"type": "string"},
                "last_seen": {"type": "string"}
            }
        },
        "dto.ToggleReq": {
            "type": "object",
            "properties": {"enabled": {"type": "boolean", "example": true}}
        },
        "dto.SubjectsReq": {
            "type": "object",
            "properties": {"user_ids": {"type": "array", "items": {"type": "string"}}}
        },
        "dto.CanViewResponse": {
            "type": "object",
            "properties": {"decisions": {"type": "object", "additionalProperties": {"type": "boolean"}}}
        },
        "models.LocationHistoryPoint": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "accuracy": {"type": "number"},
                "recorded_at": {"type": "string"}
            }
        },
        "models.VisibleFields": {
            "type": "object",
            "properties": {
                "name": {"type": "boolean"},
                "photo": {"type": "boolean"},
                "bio": {"type": "boolean"},
                "program": {"type": "boolean"},
                "courses": {"type": "boolean"},
                "contact": {"type": "boolean"}
            }
        },
        "models.PrivacySettings": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"},
                "profile_visibility": {"type": "string", "enum": ["public", "private", "geofenced", "friends_only"], "example": "geofenced"},
                "visibility_radius": {"type": "integer", "example": 100},
                "show_exact_location": {"type": "boolean"},
                "visible_fields": {"$ref": "#/definitions/models.VisibleFields"},
                "updated_at": {"type": "string"}
            }
        },
        "models.PrivacySettingsPatch": {
            "type": "object",
            "properties": {
                "profile_visibility": {"type": "string", "example": "public"},
                "visibility_radius": {"type": "integer", "example": 250},
                "show_exact_location": {"type": "boolean"},
                "visible_fields": {"$ref": "#/definitions/models.VisibleFields"}
            }
        },
        "models.FilteredProfile": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"},
                "online": {"type": "boolean"},
                "last_seen": {"type": "string"},
                "location_context": {"type": "string", "example": "On Campus"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "profile_picture_url": {"type": "string"},
                "bio": {"type": "string"},
                "program": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and an access token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3010",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Campus Radar API",
	Description:      "Proximity discovery for campus users: location updates, nearby search, privacy settings and privacy-filtered profiles.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
