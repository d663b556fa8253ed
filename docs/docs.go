// Package docs holds the OpenAPI document served under /swagger. Regenerate
// it with `swag init -g cmd/applytrack/main.go` after changing handler
// annotations.
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
        "/api/v1/features/{feature}": {
            "post": {
                "security": [{"Bearer": []}],
                "description": "Run a gated feature. Signed-in users get the full result; anonymous visitors get a locked preview once per 24 hours.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Features"],
                "summary": "Run an AI feature",
                "parameters": [
                    {"$ref": "#/parameters/feature"},
                    {"$ref": "#/parameters/idempotencyKey"},
                    {
                        "description": "Feature input",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.RunFeatureRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/featureResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "402": {"description": "Payment Required", "schema": {"$ref": "#/definitions/usageDenied"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/usageDenied"}}
                }
            }
        },
        "/api/v1/features/{feature}/upload": {
            "post": {
                "security": [{"Bearer": []}],
                "description": "Same gating as the JSON endpoint; the uploaded file replaces resumeText.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Features"],
                "summary": "Run an AI feature with a resume upload",
                "parameters": [
                    {"$ref": "#/parameters/feature"},
                    {"$ref": "#/parameters/idempotencyKey"},
                    {"type": "file", "description": "Resume (PDF, DOCX or text)", "name": "resume", "in": "formData", "required": true},
                    {"type": "string", "description": "Job title", "name": "jobTitle", "in": "formData"},
                    {"type": "string", "description": "Company name", "name": "companyName", "in": "formData"},
                    {"type": "string", "description": "Job description", "name": "jobDescription", "in": "formData"},
                    {"type": "string", "description": "Notes", "name": "notes", "in": "formData"},
                    {"type": "string", "description": "Browser fingerprint (anonymous only)", "name": "fingerprint", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/featureResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "402": {"description": "Payment Required", "schema": {"$ref": "#/definitions/usageDenied"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/usageDenied"}}
                }
            }
        },
        "/api/v1/preview-sessions/convert": {
            "post": {
                "security": [{"Bearer": []}],
                "description": "Reveal the full analysis of an anonymous preview to the signed-in user. Each session converts once.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Preview Sessions"],
                "summary": "Unlock a preview session",
                "parameters": [
                    {
                        "description": "Session to convert",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.ConvertPreviewRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/utils.APIResponse"},
                                {"type": "object", "properties": {"data": {"$ref": "#/definitions/handlers.ConvertPreviewResponse"}}}
                            ]
                        }
                    },
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/api/v1/preview-sessions/{id}": {
            "get": {
                "description": "Get the teaser and lock state of a preview session. The full analysis is never returned here.",
                "produces": ["application/json"],
                "tags": ["Preview Sessions"],
                "summary": "Get a preview session",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/utils.APIResponse"},
                                {"type": "object", "properties": {"data": {"$ref": "#/definitions/handlers.PreviewSessionDTO"}}}
                            ]
                        }
                    },
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/api/v1/usage": {
            "get": {
                "security": [{"Bearer": []}],
                "description": "Get rate limit windows and lifetime allowances for the signed-in user",
                "produces": ["application/json"],
                "tags": ["Usage"],
                "summary": "Get usage summary",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/utils.APIResponse"},
                                {"type": "object", "properties": {"data": {"$ref": "#/definitions/handlers.UsageSummaryDTO"}}}
                            ]
                        }
                    },
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/api/v1/usage/anonymous": {
            "get": {
                "description": "Report whether a browser fingerprint may still run each feature anonymously",
                "produces": ["application/json"],
                "tags": ["Usage"],
                "summary": "Get anonymous usage",
                "parameters": [
                    {"type": "string", "description": "Browser fingerprint", "name": "fingerprint", "in": "query", "required": true},
                    {
                        "enum": ["job-fit", "resume-review", "cover-letter", "interview-prep"],
                        "type": "string",
                        "description": "Feature",
                        "name": "feature",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/utils.APIResponse"},
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {"type": "array", "items": {"$ref": "#/definitions/handlers.AnonymousUsageDTO"}}
                                    }
                                }
                            ]
                        }
                    },
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.HealthResponse"}}
                }
            }
        }
    },
    "parameters": {
        "feature": {
            "enum": ["job-fit", "resume-review", "cover-letter", "interview-prep"],
            "type": "string",
            "description": "Feature",
            "name": "feature",
            "in": "path",
            "required": true
        },
        "idempotencyKey": {
            "type": "string",
            "description": "Action id; a replayed key returns 409",
            "name": "Idempotency-Key",
            "in": "header"
        }
    },
    "definitions": {
        "featureResult": {
            "allOf": [
                {"$ref": "#/definitions/utils.APIResponse"},
                {"type": "object", "properties": {"data": {"$ref": "#/definitions/handlers.FeatureResultDTO"}}}
            ]
        },
        "usageDenied": {
            "allOf": [
                {"$ref": "#/definitions/utils.APIResponse"},
                {"type": "object", "properties": {"data": {"$ref": "#/definitions/utils.UsageDenial"}}}
            ]
        },
        "handlers.AllowanceDTO": {
            "type": "object",
            "properties": {
                "canUse": {"type": "boolean"},
                "feature": {"type": "string"},
                "granted": {"description": "a count, or \"unlimited\""},
                "usedCount": {"type": "integer"}
            }
        },
        "handlers.AnonymousUsageDTO": {
            "type": "object",
            "properties": {
                "canUse": {"type": "boolean"},
                "feature": {"type": "string"},
                "resetAt": {"type": "string"},
                "usedCount": {"type": "integer"}
            }
        },
        "handlers.ConvertPreviewRequest": {
            "type": "object",
            "required": ["session_id"],
            "properties": {
                "session_id": {"type": "string", "maxLength": 64}
            }
        },
        "handlers.ConvertPreviewResponse": {
            "type": "object",
            "properties": {
                "analysis": {"type": "string"},
                "analysisHtml": {"type": "string"},
                "featureType": {"type": "string"},
                "inputData": {"$ref": "#/definitions/feature.Input"}
            }
        },
        "feature.Input": {
            "type": "object",
            "properties": {
                "companyName": {"type": "string"},
                "jobDescription": {"type": "string"},
                "jobTitle": {"type": "string"},
                "notes": {"type": "string"},
                "resumeText": {"type": "string"}
            }
        },
        "handlers.FeatureResultDTO": {
            "type": "object",
            "properties": {
                "allowance": {"$ref": "#/definitions/handlers.AllowanceDTO"},
                "content": {"type": "string"},
                "contentHtml": {"type": "string"},
                "featureType": {"type": "string"},
                "locked": {"type": "boolean"},
                "previewSessionId": {"type": "string"},
                "teaser": {"type": "string"},
                "usage": {"$ref": "#/definitions/handlers.UsageDTO"}
            }
        },
        "handlers.FeatureUsageDTO": {
            "type": "object",
            "properties": {
                "degraded": {"type": "boolean"},
                "feature": {"type": "string"},
                "limit": {"type": "integer"},
                "remaining": {"type": "integer"},
                "resetAt": {"type": "string"},
                "used": {"type": "integer"},
                "window": {"type": "string"},
                "windowType": {"type": "string"}
            }
        },
        "handlers.HealthResponse": {
            "type": "object",
            "properties": {
                "counterStore": {"type": "string"},
                "database": {"type": "string"},
                "status": {"type": "string"},
                "storeBackend": {"type": "string"},
                "version": {"type": "string"}
            }
        },
        "handlers.PreviewSessionDTO": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "featureType": {"type": "string"},
                "locked": {"type": "boolean"},
                "sessionId": {"type": "string"},
                "teaser": {"type": "string"},
                "teaserHtml": {"type": "string"}
            }
        },
        "handlers.RunFeatureRequest": {
            "type": "object",
            "properties": {
                "companyName": {"type": "string", "maxLength": 200},
                "fingerprint": {"type": "string", "maxLength": 128},
                "jobDescription": {"type": "string", "maxLength": 20000},
                "jobTitle": {"type": "string", "maxLength": 200},
                "notes": {"type": "string", "maxLength": 5000},
                "resumeText": {"type": "string", "maxLength": 20000}
            }
        },
        "handlers.UsageDTO": {
            "type": "object",
            "properties": {
                "limit": {"type": "integer"},
                "remaining": {"type": "integer"},
                "resetAt": {"type": "string"}
            }
        },
        "handlers.UsageSummaryDTO": {
            "type": "object",
            "properties": {
                "allowances": {"type": "array", "items": {"$ref": "#/definitions/handlers.AllowanceDTO"}},
                "features": {"type": "array", "items": {"$ref": "#/definitions/handlers.FeatureUsageDTO"}},
                "tier": {"type": "string"}
            }
        },
        "utils.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"$ref": "#/definitions/utils.ErrorInfo"},
                "message": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "utils.ErrorInfo": {
            "type": "object",
            "properties": {
                "details": {"type": "string"},
                "message": {"type": "string"},
                "type": {"type": "string"}
            }
        },
        "utils.UsageDenial": {
            "type": "object",
            "properties": {
                "allowed": {"type": "boolean"},
                "limit": {"type": "integer"},
                "reason": {"type": "string"},
                "remaining": {"type": "integer"},
                "resetAt": {"type": "string"},
                "resets": {"description": "\"upgrade\" when waiting never clears the denial", "type": "string"},
                "usedCount": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "Bearer": {
            "description": "Type \"Bearer\" followed by a space and the session token.",
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
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "ApplyTrack API",
	Description:      "Usage gating for the AI job application features: per-plan rate limits, lifetime allowances and anonymous previews.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
