// Package docs registers the OpenAPI description of the sandbox storefront API with swag.
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
    "securityDefinitions": {
        "Bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/products": {
            "get": {
                "tags": ["products"],
                "summary": "List products",
                "parameters": [
                    {"type": "integer", "default": 0, "name": "page", "in": "query"},
                    {"type": "integer", "default": 12, "name": "size", "in": "query"},
                    {"type": "string", "default": "createdAt", "name": "sortBy", "in": "query"},
                    {"type": "string", "default": "desc", "name": "sortDir", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/productPage"}}}
            },
            "post": {
                "security": [{"Bearer": []}],
                "tags": ["products"],
                "summary": "Create product",
                "parameters": [{"name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.Product"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}}
            }
        },
        "/products/{id}": {
            "get": {
                "tags": ["products"],
                "summary": "Get product by id",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/products/{id}/stock": {
            "put": {
                "security": [{"Bearer": []}],
                "tags": ["products"],
                "summary": "Overwrite the stock level of a product",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "quantity", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            }
        },
        "/products/search": {
            "get": {
                "tags": ["products"],
                "summary": "Search products by name or description",
                "parameters": [{"type": "string", "name": "searchTerm", "in": "query", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/productPage"}}, "400": {"description": "Bad Request"}}
            }
        },
        "/products/price-range": {
            "get": {
                "tags": ["products"],
                "summary": "Products within a price range",
                "parameters": [
                    {"type": "number", "name": "minPrice", "in": "query", "required": true},
                    {"type": "number", "name": "maxPrice", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/productPage"}}, "400": {"description": "Bad Request"}}
            }
        },
        "/products/top-rated": {"get": {"tags": ["products"], "summary": "Best rated products first", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/productPage"}}}}},
        "/products/recent": {"get": {"tags": ["products"], "summary": "Newest products first", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/productPage"}}}}},
        "/products/most-reviewed": {"get": {"tags": ["products"], "summary": "Most reviewed products first", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/productPage"}}}}},
        "/products/in-stock": {"get": {"tags": ["products"], "summary": "Products with stock left", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/productPage"}}}}},
        "/orders": {
            "post": {
                "security": [{"Bearer": []}],
                "tags": ["orders"],
                "summary": "Place an order",
                "parameters": [{"name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.CreateOrderRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/orders/my-orders": {"get": {"security": [{"Bearer": []}], "tags": ["orders"], "summary": "Orders of the signed-in customer", "responses": {"200": {"description": "OK"}}}},
        "/orders/{id}": {
            "get": {
                "security": [{"Bearer": []}],
                "tags": ["orders"],
                "summary": "Get order by id",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}
            }
        },
        "/orders/{id}/status": {
            "put": {
                "security": [{"Bearer": []}],
                "tags": ["admin"],
                "summary": "Move an order to a new status",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "status", "in": "query", "required": true, "enum": ["PENDING", "PROCESSING", "SHIPPED", "DELIVERED", "CANCELLED"]}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}
            }
        },
        "/orders/admin/all": {"get": {"security": [{"Bearer": []}], "tags": ["admin"], "summary": "Every order", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/orders/admin/statistics": {"get": {"security": [{"Bearer": []}], "tags": ["admin"], "summary": "Order statistics", "responses": {"200": {"description": "OK"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Sign in", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Create a customer account", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/auth/refresh": {"post": {"security": [{"Bearer": []}], "tags": ["auth"], "summary": "Exchange the bearer token for a new one", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/validate": {"post": {"security": [{"Bearer": []}], "tags": ["auth"], "summary": "Check whether the bearer token is still accepted", "responses": {"200": {"description": "OK"}}}},
        "/auth/logout": {"post": {"security": [{"Bearer": []}], "tags": ["auth"], "summary": "Forget the bearer token", "responses": {"200": {"description": "OK"}}}}
    },
    "definitions": {
        "domain.Product": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "price": {"type": "string", "example": "3.75"},
                "stockQuantity": {"type": "integer"},
                "imageUrl": {"type": "string"},
                "category": {"type": "string"},
                "inStock": {"type": "boolean"},
                "averageRating": {"type": "number"},
                "reviewCount": {"type": "integer"},
                "createdAt": {"type": "string"}
            }
        },
        "productPage": {
            "type": "object",
            "properties": {
                "content": {"type": "array", "items": {"$ref": "#/definitions/domain.Product"}},
                "page": {"type": "integer"},
                "size": {"type": "integer"},
                "totalElements": {"type": "integer"},
                "totalPages": {"type": "integer"},
                "last": {"type": "boolean"}
            }
        },
        "domain.CreateOrderRequest": {
            "type": "object",
            "required": ["orderItems", "deliveryAddress", "contactNumber"],
            "properties": {
                "orderItems": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {"productId": {"type": "string"}, "quantity": {"type": "integer", "minimum": 1}}
                    }
                },
                "deliveryAddress": {"type": "string", "minLength": 10, "maxLength": 500},
                "contactNumber": {"type": "string", "pattern": "^[+]?[0-9]{10,15}$"},
                "orderNotes": {"type": "string", "maxLength": 500}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Storefront sandbox API",
	Description:      "In-memory grocery storefront backend for local development and tests.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
