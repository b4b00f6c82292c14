// Package docs registers the OpenAPI document served at /swagger when
// SWAGGER_ENABLED is set. Regenerate with:
//
//	swag init -g cmd/server/main.go -o docs
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
        "/quote-requests": {
            "get":  {"tags": ["QuoteRequests"], "summary": "List the caller's quote requests", "operationId": "listQuoteRequests", "responses": {"200": {"description": "OK"}, "304": {"description": "Not Modified"}}},
            "post": {"tags": ["QuoteRequests"], "summary": "Create a draft quote request", "operationId": "createQuoteRequest", "responses": {"201": {"description": "Created"}, "200": {"description": "Replayed"}, "400": {"description": "Bad Request"}, "404": {"description": "Opportunity not found"}}}
        },
        "/quote-requests/{id}": {
            "get":    {"tags": ["QuoteRequests"], "summary": "Get a quote request", "operationId": "getQuoteRequest", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}},
            "patch":  {"tags": ["QuoteRequests"], "summary": "Edit a draft quote request", "operationId": "updateQuoteRequest", "responses": {"200": {"description": "OK"}, "409": {"description": "Not a draft"}}},
            "delete": {"tags": ["QuoteRequests"], "summary": "Delete a quote request with its invitations and responses", "operationId": "deleteQuoteRequest", "responses": {"204": {"description": "No Content"}}}
        },
        "/quote-requests/{id}/send": {
            "post": {"tags": ["QuoteRequests"], "summary": "Send a draft to its invited suppliers", "operationId": "sendQuoteRequest", "responses": {"200": {"description": "OK"}, "409": {"description": "Invalid transition"}}}
        },
        "/quote-requests/{id}/complete": {
            "post": {"tags": ["QuoteRequests"], "summary": "Close a sent quote request", "operationId": "completeQuoteRequest", "responses": {"200": {"description": "OK"}, "409": {"description": "Invalid transition"}}}
        },
        "/quote-requests/{id}/invitations": {
            "get":  {"tags": ["Invitations"], "summary": "List invitations in invitation order", "operationId": "listInvitations", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Invitations"], "summary": "Invite a supplier", "operationId": "inviteSupplier", "responses": {"201": {"description": "Created"}, "409": {"description": "Duplicate invitation or closed request"}}}
        },
        "/quote-requests/{id}/responses": {
            "get":  {"tags": ["Responses"], "summary": "List supplier responses", "operationId": "listResponses", "responses": {"200": {"description": "OK"}, "304": {"description": "Not Modified"}}},
            "post": {"tags": ["Responses"], "summary": "Submit a supplier quote", "operationId": "submitResponse", "responses": {"201": {"description": "Created"}, "403": {"description": "Not invited"}, "409": {"description": "Duplicate or not accepting responses"}, "422": {"description": "Malformed payload or arithmetic mismatch"}}}
        },
        "/quote-requests/{id}/responses/decline": {
            "post": {"tags": ["Responses"], "summary": "Decline to quote", "operationId": "declineResponse", "responses": {"201": {"description": "Created"}}}
        },
        "/quote-requests/{id}/summary": {
            "get": {"tags": ["Reports"], "summary": "Aggregate supplier responses", "operationId": "getSummary", "responses": {"200": {"description": "OK"}}}
        },
        "/quote-requests/{id}/export": {
            "get": {"tags": ["Reports"], "summary": "Download a report", "operationId": "exportReport", "produces": ["application/json", "text/csv"], "responses": {"200": {"description": "File"}, "400": {"description": "Unknown type or format"}, "409": {"description": "No submitted responses to analyze"}}}
        },
        "/suppliers": {
            "post": {"tags": ["Suppliers"], "summary": "Register a supplier", "operationId": "createSupplier", "responses": {"201": {"description": "Created"}, "409": {"description": "Already exists"}}}
        },
        "/suppliers/{id}": {
            "get": {"tags": ["Suppliers"], "summary": "Get a supplier", "operationId": "getSupplier", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        }
    },
    "securityDefinitions": {
        "CallerID": {"type": "apiKey", "name": "X-User-ID", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Quote Request API",
	Description:      "Quote request lifecycle, supplier invitations, response reconciliation and reports.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
