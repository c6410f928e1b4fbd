package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// fetchPreviewHandler renders a page on demand and returns it as
// markdown without touching the index.
func fetchPreviewHandler(c *fiber.Ctx) error {
	var req FetchRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	url := strings.TrimSpace(req.URL)
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return badRequest(c, "url must start with http:// or https://")
	}

	preview, err := fetcherFrom(c).FetchPreview(c.Context(), url)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "preview": preview})
}
