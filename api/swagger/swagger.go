package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Grading API",
        "description": "Weighted final grades, role scoped recaps and recap exports",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Login and session info"},
        {"name": "Grades", "description": "Weights, final grade calculation and stored records"},
        {"name": "Assessments", "description": "Submission scores and exam results"},
        {"name": "Recaps", "description": "Role scoped recaps and exports"},
        {"name": "Notifications", "description": "Grade notifications for students and parents"}
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
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Get current user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grades/weights": {
            "get": {
                "tags": ["Grades"],
                "summary": "Get grade weights",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Grades"],
                "summary": "Replace grade weights",
                "description": "Integer percentages that must sum to 100. Admin only.",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GradeWeights"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "INVALID_WEIGHTS", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grades/calculate": {
            "post": {
                "tags": ["Grades"],
                "summary": "Calculate a final grade",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CalculateGradeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grades/recalculate": {
            "post": {
                "tags": ["Grades"],
                "summary": "Queue a class recalculation",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecalculateClassRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Queue unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grades/recalculate/{id}": {
            "get": {
                "tags": ["Grades"],
                "summary": "Get recalculation job status",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grades/records": {
            "get": {
                "tags": ["Grades"],
                "summary": "List stored grade records",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "class_id", "in": "query", "type": "string"},
                    {"name": "student_id", "in": "query", "type": "string"},
                    {"name": "subject_id", "in": "query", "type": "string"},
                    {"name": "academic_year_id", "in": "query", "type": "string"},
                    {"name": "semester", "in": "query", "type": "string", "enum": ["ganjil", "genap"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grades/records/{student_id}/{subject_id}/{academic_year_id}/{semester}": {
            "get": {
                "tags": ["Grades"],
                "summary": "Get one stored grade record",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "student_id", "in": "path", "required": true, "type": "string"},
                    {"name": "subject_id", "in": "path", "required": true, "type": "string"},
                    {"name": "academic_year_id", "in": "path", "required": true, "type": "string"},
                    {"name": "semester", "in": "path", "required": true, "type": "string", "enum": ["ganjil", "genap"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "NOT_FOUND", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/submissions/{id}/score": {
            "put": {
                "tags": ["Assessments"],
                "summary": "Score a task submission",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScoreRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "SCORE_OUT_OF_RANGE", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exams/{id}/results": {
            "put": {
                "tags": ["Assessments"],
                "summary": "Record an exam result",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExamResultRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "SCORE_OUT_OF_RANGE", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/recaps/grades": {
            "get": {
                "tags": ["Recaps"],
                "summary": "Task score recap",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/classID"},
                    {"$ref": "#/parameters/studentID"},
                    {"name": "task_id", "in": "query", "type": "string"},
                    {"$ref": "#/parameters/dateStart"},
                    {"$ref": "#/parameters/dateEnd"},
                    {"name": "group_by", "in": "query", "type": "string", "enum": ["task", "class"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/recaps/exams": {
            "get": {
                "tags": ["Recaps"],
                "summary": "Exam score recap",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/classID"},
                    {"$ref": "#/parameters/studentID"},
                    {"name": "exam_id", "in": "query", "type": "string"},
                    {"$ref": "#/parameters/dateStart"},
                    {"$ref": "#/parameters/dateEnd"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/recaps/attendance": {
            "get": {
                "tags": ["Recaps"],
                "summary": "Attendance recap",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/classID"},
                    {"$ref": "#/parameters/studentID"},
                    {"$ref": "#/parameters/dateStart"},
                    {"$ref": "#/parameters/dateEnd"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/recaps/export": {
            "post": {
                "tags": ["Recaps"],
                "summary": "Export a recap",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRecapRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Recaps"],
                "summary": "Download an export",
                "produces": ["text/csv", "application/pdf", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "401": {"description": "Invalid or expired link", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List notifications",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications/{id}/read": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Mark a notification as read",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "parameters": {
        "classID": {"name": "class_id", "in": "query", "type": "string"},
        "studentID": {"name": "student_id", "in": "query", "type": "string"},
        "dateStart": {"name": "date_start", "in": "query", "type": "string", "format": "date"},
        "dateEnd": {"name": "date_end", "in": "query", "type": "string", "format": "date"}
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "GradeWeights": {
            "type": "object",
            "properties": {
                "task": {"type": "integer"},
                "quiz": {"type": "integer"},
                "midterm": {"type": "integer"},
                "final": {"type": "integer"}
            },
            "required": ["task", "quiz", "midterm", "final"]
        },
        "CalculateGradeRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "class_id": {"type": "string"},
                "academic_year_id": {"type": "string"},
                "semester": {"type": "string", "enum": ["ganjil", "genap"]}
            },
            "required": ["student_id", "subject_id", "class_id", "academic_year_id", "semester"]
        },
        "RecalculateClassRequest": {
            "type": "object",
            "properties": {
                "subject_id": {"type": "string"},
                "class_id": {"type": "string"},
                "academic_year_id": {"type": "string"},
                "semester": {"type": "string", "enum": ["ganjil", "genap"]}
            },
            "required": ["subject_id", "class_id", "academic_year_id", "semester"]
        },
        "ScoreRequest": {
            "type": "object",
            "properties": {
                "score": {"type": "number"}
            },
            "required": ["score"]
        },
        "ExamResultRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "score": {"type": "number"}
            },
            "required": ["student_id", "score"]
        },
        "ExportRecapRequest": {
            "type": "object",
            "properties": {
                "kind": {"type": "string", "enum": ["grades", "exams", "attendance"]},
                "format": {"type": "string", "enum": ["csv", "pdf", "xlsx"]},
                "class_id": {"type": "string"},
                "student_id": {"type": "string"},
                "task_id": {"type": "string"},
                "exam_id": {"type": "string"},
                "date_start": {"type": "string", "format": "date"},
                "date_end": {"type": "string", "format": "date"},
                "group_by": {"type": "string", "enum": ["task", "class"]}
            },
            "required": ["kind"]
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
