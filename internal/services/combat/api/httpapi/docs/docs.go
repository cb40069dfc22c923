// Package docs carries the OpenAPI document served under /docs/.
// Regenerate with: swag init -g handler.go -d internal/services/combat/api/httpapi -o internal/services/combat/api/httpapi/docs
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
        "/characters/levels": {
            "get": {
                "security": [{"CharacterID": []}],
                "produces": ["application/json"],
                "tags": ["Characters"],
                "summary": "Skill levels",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/httpapi.skillView"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}}
                }
            }
        },
        "/combat": {
            "get": {
                "security": [{"CharacterID": []}],
                "produces": ["application/json"],
                "tags": ["Combat"],
                "summary": "Get combat session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpapi.sessionView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}}
                }
            },
            "put": {
                "security": [{"CharacterID": []}],
                "produces": ["application/json"],
                "tags": ["Combat"],
                "summary": "Act in combat",
                "parameters": [
                    {"type": "string", "description": "start, attack, defend, use_item or flee", "name": "action", "in": "query", "required": true},
                    {"type": "integer", "description": "monster id for start, item id for use_item", "name": "id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpapi.sessionView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}}
                }
            },
            "post": {
                "security": [{"CharacterID": []}],
                "produces": ["application/json"],
                "tags": ["Combat"],
                "summary": "Create combat session",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/httpapi.sessionView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}}
                }
            }
        },
        "/combat/monsters": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Catalog"],
                "summary": "Monsters by area",
                "parameters": [
                    {"type": "string", "description": "training area name", "name": "area", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/httpapi.monsterView"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}}
                }
            }
        },
        "/combat/reset": {
            "put": {
                "security": [{"CharacterID": []}],
                "produces": ["application/json"],
                "tags": ["Combat"],
                "summary": "Reset combat",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpapi.sessionView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}}
                }
            }
        },
        "/combat/rewards/replay": {
            "put": {
                "security": [{"CharacterID": []}],
                "produces": ["application/json"],
                "tags": ["Combat"],
                "summary": "Replay pending rewards",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpapi.replayView"}}
                }
            }
        },
        "/combat/training/areas": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Catalog"],
                "summary": "Training areas",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/httpapi.areaView"}}}
                }
            }
        },
        "/items/use": {
            "put": {
                "security": [{"CharacterID": []}],
                "produces": ["application/json"],
                "tags": ["Items"],
                "summary": "Use item",
                "parameters": [
                    {"type": "integer", "description": "item id", "name": "id", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpapi.itemUseView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}}
                }
            }
        }
    },
    "definitions": {
        "httpapi.areaView": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "httpapi.itemUseView": {
            "type": "object",
            "properties": {
                "health": {"type": "integer"},
                "item": {"type": "string"},
                "max_health": {"type": "integer"},
                "results": {"type": "array", "items": {"type": "string"}}
            }
        },
        "httpapi.monsterView": {
            "type": "object",
            "properties": {
                "area": {"type": "string"},
                "experience": {"type": "integer"},
                "gold_max": {"type": "integer"},
                "gold_min": {"type": "integer"},
                "health": {"type": "integer"},
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "power": {"type": "integer"},
                "toughness": {"type": "integer"}
            }
        },
        "httpapi.replayView": {
            "type": "object",
            "properties": {
                "level": {"type": "integer"},
                "pending": {"type": "integer"},
                "replayed": {"type": "array", "items": {"type": "string"}}
            }
        },
        "httpapi.sessionView": {
            "type": "object",
            "properties": {
                "character_id": {"type": "string"},
                "level": {"type": "integer"},
                "monster": {"$ref": "#/definitions/session.Monster"},
                "player": {"$ref": "#/definitions/session.Player"},
                "revision": {"type": "integer"},
                "rewards": {"$ref": "#/definitions/session.Rewards"},
                "state": {"$ref": "#/definitions/session.State"},
                "status": {"type": "string"}
            }
        },
        "httpapi.skillView": {
            "type": "object",
            "properties": {
                "experience": {"type": "integer"},
                "level": {"type": "integer"},
                "skill": {"type": "string"}
            }
        },
        "httpx.ErrorBody": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "loot.Drop": {
            "type": "object",
            "properties": {
                "item": {"type": "string"},
                "item_id": {"type": "integer"},
                "quantity": {"type": "integer"}
            }
        },
        "session.Action": {
            "type": "object",
            "properties": {
                "action": {"type": "string"},
                "amount": {"type": "integer"},
                "item": {"type": "string"},
                "results": {"type": "array", "items": {"type": "string"}}
            }
        },
        "session.LastActions": {
            "type": "object",
            "properties": {
                "monster": {"$ref": "#/definitions/session.Action"},
                "player": {"$ref": "#/definitions/session.Action"}
            }
        },
        "session.Monster": {
            "type": "object",
            "properties": {
                "area": {"type": "string"},
                "experience": {"type": "integer"},
                "gold_max": {"type": "integer"},
                "gold_min": {"type": "integer"},
                "health": {"type": "integer"},
                "id": {"type": "integer"},
                "max_health": {"type": "integer"},
                "name": {"type": "string"},
                "power": {"type": "integer"},
                "toughness": {"type": "integer"}
            }
        },
        "session.Outcome": {
            "type": "object",
            "properties": {
                "rewards": {"$ref": "#/definitions/session.Rewards"},
                "status": {"type": "string"},
                "turn_id": {"type": "string"}
            }
        },
        "session.Player": {
            "type": "object",
            "properties": {
                "character_id": {"type": "string"},
                "health": {"type": "integer"},
                "max_health": {"type": "integer"},
                "power": {"type": "integer"},
                "toughness": {"type": "integer"}
            }
        },
        "session.Rewards": {
            "type": "object",
            "properties": {
                "experience": {"type": "integer"},
                "gold": {"type": "integer"},
                "loot": {"type": "array", "items": {"$ref": "#/definitions/loot.Drop"}}
            }
        },
        "session.State": {
            "type": "object",
            "properties": {
                "last_actions": {"$ref": "#/definitions/session.LastActions"},
                "outcome": {"$ref": "#/definitions/session.Outcome"}
            }
        }
    },
    "securityDefinitions": {
        "CharacterID": {
            "type": "apiKey",
            "name": "X-Character-ID",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Idle RPG Combat API",
	Description:      "Turn-based combat encounters for idle RPG characters.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
