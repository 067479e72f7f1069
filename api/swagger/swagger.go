package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Guitar Vault API",
        "description": "Guitar catalog with image storage",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Guitars", "description": "Catalog listings"},
        {"name": "Objects", "description": "Image upload and download"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/api/guitars": {
            "get": {
                "tags": ["Guitars"],
                "summary": "List, search or filter guitars",
                "description": "A non-empty search overrides every structured filter.",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "type", "in": "query", "type": "string", "enum": ["electric", "acoustic", "classical", "bass"]},
                    {"name": "brand", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["available", "reserved", "sold"]},
                    {"name": "minPrice", "in": "query", "type": "number"},
                    {"name": "maxPrice", "in": "query", "type": "number"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Guitar"}}},
                    "400": {"description": "Non-numeric price bound", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "500": {"description": "Store error", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "post": {
                "tags": ["Guitars"],
                "summary": "Create guitar",
                "consumes": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GuitarInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Guitar"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/api/guitars/export": {
            "get": {
                "tags": ["Guitars"],
                "summary": "Download the filtered inventory",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "brand", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "minPrice", "in": "query", "type": "number"},
                    {"name": "maxPrice", "in": "query", "type": "number"}
                ],
                "responses": {
                    "200": {"description": "Inventory sheet", "schema": {"type": "file"}},
                    "400": {"description": "Unknown format", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/api/guitars/{id}": {
            "get": {
                "tags": ["Guitars"],
                "summary": "Get guitar by id",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Guitar"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "put": {
                "tags": ["Guitars"],
                "summary": "Partially update guitar",
                "consumes": ["application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GuitarInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Guitar"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "delete": {
                "tags": ["Guitars"],
                "summary": "Delete guitar",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/api/objects/upload": {
            "post": {
                "tags": ["Objects"],
                "summary": "Issue a signed upload URL",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/UploadURL"}},
                    "500": {"description": "Storage misconfigured", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/objects/{objectPath}": {
            "get": {
                "tags": ["Objects"],
                "summary": "Download an uploaded object",
                "description": "Objects the caller may not read answer 404.",
                "parameters": [
                    {"name": "objectPath", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Object bytes", "schema": {"type": "file"}},
                    "404": {"description": "Not found"},
                    "500": {"description": "Stream error"}
                }
            }
        },
        "/public-objects/{filePath}": {
            "get": {
                "tags": ["Objects"],
                "summary": "Download a public asset",
                "parameters": [
                    {"name": "filePath", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Object bytes", "schema": {"type": "file"}},
                    "404": {"description": "Not found"}
                }
            }
        }
    },
    "definitions": {
        "Guitar": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "brand": {"type": "string"},
                "model": {"type": "string"},
                "type": {"type": "string", "enum": ["electric", "acoustic", "classical", "bass"]},
                "year": {"type": "integer"},
                "condition": {"type": "string", "enum": ["new", "excellent", "good", "fair"]},
                "color": {"type": "string"},
                "price": {"type": "string", "example": "1200.5"},
                "pickupLocation": {"type": "string"},
                "description": {"type": "string"},
                "status": {"type": "string", "enum": ["available", "reserved", "sold"]},
                "imageUrl": {"type": "string"},
                "imageUrls": {"type": "array", "items": {"type": "string"}},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "GuitarInput": {
            "type": "object",
            "properties": {
                "brand": {"type": "string"},
                "model": {"type": "string"},
                "type": {"type": "string", "enum": ["electric", "acoustic", "classical", "bass"]},
                "year": {"type": "integer", "minimum": 1900},
                "condition": {"type": "string", "enum": ["new", "excellent", "good", "fair"]},
                "color": {"type": "string"},
                "price": {"type": "number", "minimum": 0},
                "pickupLocation": {"type": "string"},
                "description": {"type": "string"},
                "status": {"type": "string", "enum": ["available", "reserved", "sold"]},
                "imageUrl": {"type": "string"},
                "imageUrls": {"type": "array", "items": {"type": "string"}}
            }
        },
        "UploadURL": {
            "type": "object",
            "properties": {
                "uploadURL": {"type": "string"}
            }
        },
        "FieldError": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "array", "items": {"$ref": "#/definitions/FieldError"}}
            }
        },
        "ErrorBody": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/APIError"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
