package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Degree Import API",
        "description": "Document import, review and approval service for class-of-degree corrections",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and token lifecycle"},
        {"name": "Imports", "description": "Document upload, review sessions and approvals"},
        {"name": "Students", "description": "Student register"},
        {"name": "Reports", "description": "Import outcome reports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/imports/upload": {
            "post": {
                "tags": ["Imports"],
                "summary": "Upload a correction document",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {
                    "201": {"description": "Session created", "schema": {"$ref": "#/definitions/UploadResponse"}},
                    "400": {"description": "Rejected upload", "schema": {"$ref": "#/definitions/ImportError"}}
                }
            }
        },
        "/imports/sessions/{id}": {
            "get": {
                "tags": ["Imports"],
                "summary": "Fetch a review session",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SessionResponse"}},
                    "404": {"description": "Unknown or consumed session", "schema": {"$ref": "#/definitions/ImportError"}},
                    "410": {"description": "Expired session", "schema": {"$ref": "#/definitions/ImportError"}}
                }
            }
        },
        "/imports/sessions/{id}/approvals": {
            "post": {
                "tags": ["Imports"],
                "summary": "Apply approved records",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitApprovalsRequest"}}
                ],
                "responses": {
                    "200": {"description": "Apply outcome", "schema": {"$ref": "#/definitions/SubmitApprovalsResponse"}},
                    "400": {"description": "No approvals", "schema": {"$ref": "#/definitions/ImportError"}},
                    "404": {"description": "Unknown session", "schema": {"$ref": "#/definitions/ImportError"}},
                    "410": {"description": "Expired session", "schema": {"$ref": "#/definitions/ImportError"}}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{matricNo}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student by matric number",
                "parameters": [
                    {"name": "matricNo", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/generate": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue an import outcome report",
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Report job status",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a rendered report",
                "parameters": [
                    {"name": "token", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "UploadResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "session_id": {"type": "string"},
                "summary": {"$ref": "#/definitions/SessionSummary"}
            }
        },
        "SessionSummary": {
            "type": "object",
            "properties": {
                "total_extracted": {"type": "integer"},
                "total_matched": {"type": "integer"},
                "ready_for_review": {"type": "integer"}
            }
        },
        "SessionResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "session_id": {"type": "string"},
                "original_filename": {"type": "string"},
                "summary": {"$ref": "#/definitions/SessionSummary"},
                "review_data": {"type": "array", "items": {"$ref": "#/definitions/ReviewRecord"}},
                "expires_at": {"type": "string"}
            }
        },
        "ReviewRecord": {
            "type": "object",
            "properties": {
                "student_id": {"type": "integer"},
                "matric_no": {"type": "string"},
                "student_name": {"type": "string"},
                "current_class_of_degree": {"type": "string"},
                "proposed_class_of_degree": {"type": "string"},
                "match_confidence": {"type": "string", "enum": ["exact", "partial"]},
                "needs_update": {"type": "boolean"},
                "approved": {"type": "boolean"},
                "source": {"type": "string", "enum": ["table", "text"]},
                "row_number": {"type": "integer"}
            }
        },
        "SubmitApprovalsRequest": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "approvals": {"type": "array", "items": {"$ref": "#/definitions/ApprovalDecision"}}
            }
        },
        "ApprovalDecision": {
            "type": "object",
            "properties": {
                "student_id": {"type": "integer"},
                "matric_no": {"type": "string"},
                "proposed_class_of_degree": {"type": "string"},
                "approved": {"type": "boolean"}
            }
        },
        "SubmitApprovalsResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "result": {"$ref": "#/definitions/UpdateResultPayload"}
            }
        },
        "UpdateResultPayload": {
            "type": "object",
            "properties": {
                "updated_count": {"type": "integer"},
                "error_count": {"type": "integer"},
                "errors": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ImportError": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
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
