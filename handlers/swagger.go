package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>petloc-api — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the main petloc endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "petloc-api", "version": "v0.1.0" },
  "paths": {
    "/api/auth/login": {
      "post": {
        "summary": "Email/password login",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"},"isAdmin":{"type":"boolean"}}}}}},
        "responses": { "200": { "description": "user and tokens" }, "400": { "description": "missing fields" }, "401": { "description": "invalid credentials" }, "429": { "description": "too many attempts" } }
      }
    },
    "/api/auth/register": {
      "post": {
        "summary": "Create an account",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"nome":{"type":"string"},"email":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "201": { "description": "account created" }, "400": { "description": "missing fields or weak password" }, "409": { "description": "email already in use" } }
      }
    },
    "/api/auth/refresh": {
      "post": { "summary": "Refresh access token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refreshToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "new access token" }, "401": { "description": "invalid refresh" } } }
    },
    "/api/auth/logout": {
      "post": { "summary": "Logout and invalidate refresh token", "responses": { "200": { "description": "logged out" } } }
    },
    "/api/produtos": {
      "get": { "summary": "List store products", "responses": { "200": { "description": "product list" } } },
      "post": { "summary": "Create a product (admin)", "responses": { "201": { "description": "created" }, "403": { "description": "not an admin" } } }
    },
    "/api/pets-perdidos": {
      "get": { "summary": "List lost-pet reports", "responses": { "200": { "description": "report list" } } },
      "post": { "summary": "Report a lost pet", "responses": { "201": { "description": "created" } } }
    },
    "/api/posts": {
      "get": { "summary": "List community posts", "responses": { "200": { "description": "post list" } } },
      "post": { "summary": "Create a post", "responses": { "201": { "description": "created" } } }
    },
    "/api/cart": {
      "get": { "summary": "Get the signed-in user's cart", "responses": { "200": { "description": "cart items plus totals" } } },
      "post": { "summary": "Add a product to the cart", "responses": { "200": { "description": "updated cart" } } },
      "delete": { "summary": "Clear the cart", "responses": { "200": { "description": "empty cart" }, "500": { "description": "some items could not be removed" } } }
    },
    "/api/upload": {
      "post": { "summary": "Upload images (multipart)", "responses": { "201": { "description": "stored URLs in upload order" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
