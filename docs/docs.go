// Package docs registers the swagger spec served on /swagger/*any.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "url": "https://github.com/athabaska/Gazprom-power"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/continue": {
            "post": {
                "description": "Lifts a pause; the next tick runs a full cycle",
                "produces": ["application/json"],
                "tags": ["extraction"],
                "summary": "Continue extraction",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ActionResponse"}},
                    "409": {"description": "Scheduler is not paused", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/extractions": {
            "get": {
                "description": "Returns the newest extraction files in the output folder",
                "produces": ["application/json"],
                "tags": ["extraction"],
                "summary": "List extraction files",
                "parameters": [
                    {"type": "integer", "default": 20, "description": "Maximum number of files (1-500)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.ExtractionResponse"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Starts one cycle outside the timer. The cycle runs in the background.",
                "produces": ["application/json"],
                "tags": ["extraction"],
                "summary": "Run an extraction now",
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/dto.ActionResponse"}},
                    "409": {"description": "Scheduler is stopped or paused", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/pause": {
            "post": {
                "description": "Scheduled cycles keep firing but do nothing until continued",
                "produces": ["application/json"],
                "tags": ["extraction"],
                "summary": "Pause extraction",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ActionResponse"}},
                    "409": {"description": "Scheduler is not running", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/status": {
            "get": {
                "description": "Returns the scheduler state, its settings and extraction counters",
                "produces": ["application/json"],
                "tags": ["extraction"],
                "summary": "Scheduler status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.StatusResponse"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "description": "Always returns OK if the service is running",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/readyz": {
            "get": {
                "description": "Returns ready if the output folder and the database (when used) are reachable",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {}}}
                }
            }
        }
    },
    "definitions": {
        "dto.ActionResponse": {
            "type": "object",
            "properties": {
                "state": {"type": "string", "example": "paused"}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "error_details": {"type": "string", "example": "pause requested after stop"},
                "message": {"type": "string", "example": "scheduler is stopped"},
                "timestamp": {"type": "string", "example": "2024-03-31T10:05:00Z"}
            }
        },
        "dto.ExtractionResponse": {
            "type": "object",
            "properties": {
                "modified_at": {"type": "string", "example": "2024-03-31T10:05:00Z"},
                "name": {"type": "string", "example": "20240331_1005.csv"},
                "size": {"type": "integer", "example": 412}
            }
        },
        "dto.StatusResponse": {
            "type": "object",
            "properties": {
                "failed": {"type": "integer", "example": 1},
                "interval_minutes": {"type": "integer", "example": 5},
                "last_artifact": {"type": "string", "example": "20240331_1005.csv"},
                "last_success": {"type": "string", "example": "2024-03-31T10:05:00Z"},
                "max_attempts": {"type": "integer", "example": 0},
                "output_folder": {"type": "string", "example": "extractions"},
                "retry_delay_ms": {"type": "integer", "example": 5000},
                "skipped": {"type": "integer", "example": 0},
                "source": {"type": "string", "example": "generator"},
                "state": {"type": "string", "example": "running"},
                "succeeded": {"type": "integer", "example": 12}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Power position extractor API",
	Description:      "Periodic intraday power position extraction with a lifecycle control surface.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
