package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"casedocs/internal/http/middleware"
	"casedocs/internal/service"
)

// HealthCheck reports readiness by pinging the database.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness check that always returns 200.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Handlers
// stay thin: parsing, auth and error translation only, no business logic.
//
// /health, /healthz and the documentation routes are public; everything
// under the API surface requires a valid bearer token. Deleting documents
// additionally requires the admin role.
func RegisterRoutes(app *fiber.App, db *sql.DB, docSvc service.DocumentService, caseSvc service.CaseService, jwtSecret string) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	auth := middleware.Auth(jwtSecret)

	docs := app.Group("/documents", auth)
	docs.Post("/", UploadDocument(docSvc))
	docs.Get("/", ListDocuments(docSvc))
	docs.Get("/:id", GetDocument(docSvc))
	docs.Patch("/:id", UpdateDocument(docSvc))
	docs.Delete("/:id", middleware.RequireRole("admin"), DeleteDocument(docSvc))
	docs.Get("/:id/download", DownloadDocument(docSvc))
	docs.Post("/:id/ocr", RunDocumentOCR(docSvc))

	app.Get("/ocr/status", auth, OCRStatus(docSvc))

	cases := app.Group("/cases", auth)
	cases.Post("/", CreateCase(caseSvc))
	cases.Get("/", ListCases(caseSvc))
	cases.Get("/:id", GetCase(caseSvc))
}
