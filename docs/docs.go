// Package docs holds the swagger document served at /swagger. Regenerate
// with `swag init -g cmd/server/main.go` after changing handler annotations.
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
                "description": "Returns the health status of the service and how each data source is served",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/api/analysis/run": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Scores the requested symbols, the top-N market-cap universe, or the symbols present in the futures payload",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Run an analysis batch",
                "parameters": [{"description": "Symbols, top-N, threshold and futures records", "name": "request", "in": "body", "schema": {"type": "object"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Batch"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/analysis/latest": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Latest analysis batch",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Batch"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/analysis/stats": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Returns signal and confidence counts, the score correlation matrix and a net-score histogram",
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Statistics of the latest batch",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/analysis/{symbol}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Returns the symbol's record from the latest batch, or scores it on demand when the batch has none. fresh=true always scores on demand.",
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Detail for one symbol",
                "parameters": [
                    {"type": "string", "description": "Asset symbol (e.g., BTC, ETH)", "name": "symbol", "in": "path", "required": true},
                    {"type": "boolean", "description": "Score on demand instead of reading the latest batch", "name": "fresh", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/recommendations": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Lists HIGH confidence BUY and SELL results of the latest batch, strongest first",
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Strong buy and sell recommendations",
                "parameters": [{"type": "integer", "default": 5, "description": "Entries per list (default 5)", "name": "limit", "in": "query"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "domain.ScoringResult": {
            "type": "object",
            "properties": {
                "symbol": {"type": "string"},
                "buy_score": {"type": "number"},
                "sell_score": {"type": "number"},
                "net_score": {"type": "number"},
                "size_multiplier": {"type": "number"},
                "confidence": {"type": "string", "enum": ["HIGH", "MEDIUM", "LOW"]},
                "signal": {"type": "string", "enum": ["BUY", "SELL", "NEUTRAL"]},
                "signals": {"type": "array", "items": {"type": "string"}},
                "warnings": {"type": "array", "items": {"type": "string"}},
                "components": {"type": "object"}
            }
        },
        "domain.Recommendations": {
            "type": "object",
            "properties": {
                "strong_buy": {"type": "array", "items": {"$ref": "#/definitions/domain.ScoringResult"}},
                "strong_sell": {"type": "array", "items": {"$ref": "#/definitions/domain.ScoringResult"}}
            }
        },
        "domain.Batch": {
            "type": "object",
            "properties": {
                "run_id": {"type": "string"},
                "started_at": {"type": "string"},
                "finished_at": {"type": "string"},
                "threshold": {"type": "number"},
                "results": {"type": "array", "items": {"$ref": "#/definitions/domain.ScoringResult"}},
                "recommendations": {"$ref": "#/definitions/domain.Recommendations"},
                "errors": {"type": "array", "items": {"type": "string"}}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "X-API-Key", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Alpha Signal API",
	Description:      "Scores crypto assets into BUY/SELL signals from social, news, futures flow and macro data.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
