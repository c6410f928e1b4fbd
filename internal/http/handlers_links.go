package http

import (
	neturl "net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"linkdex/internal/model"
	"linkdex/internal/search"
	"linkdex/internal/store"
)

func storeFrom(c *fiber.Ctx) *store.Store {
	st, _ := c.Locals("store").(*store.Store)
	return st
}

func searchFrom(c *fiber.Ctx) *search.Service {
	svc, _ := c.Locals("search").(*search.Service)
	return svc
}

// normalizeRequestURL defaults a bare host to https, mirroring the CLI.
func normalizeRequestURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	return raw
}

func addLinkHandler(c *fiber.Ctx) error {
	var req AddLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	url := normalizeRequestURL(req.URL)
	if url == "" {
		return badRequest(c, "url is required")
	}

	id, err := storeFrom(c).Insert(c.Context(), url)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"id":      id,
		"url":     url,
	})
}

func listLinksHandler(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	includeHidden := c.QueryBool("include_hidden", false)

	links, total, pending, err := storeFrom(c).List(c.Context(), limit, offset, includeHidden)
	if err != nil {
		return fail(c, err)
	}
	if links == nil {
		links = []model.LinkSummary{}
	}
	return c.JSON(ListLinksResponse{
		Success:           true,
		Links:             links,
		Total:             total,
		PendingEmbeddings: pending,
	})
}

// linkRef resolves a path parameter that may be a UUID or a URL.
func linkRef(c *fiber.Ctx) (uuid.UUID, string, bool) {
	ref := c.Params("id")
	if id, err := uuid.Parse(ref); err == nil {
		return id, "", true
	}
	if u, err := neturl.QueryUnescape(ref); err == nil && u != "" {
		return uuid.Nil, u, false
	}
	return uuid.Nil, ref, false
}

func getLinkHandler(c *fiber.Ctx) error {
	st := storeFrom(c)
	id, url, isID := linkRef(c)

	var err error
	var link any
	if isID {
		link, err = st.GetByID(c.Context(), id)
	} else {
		link, err = st.GetByURL(c.Context(), url)
	}
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "link": link})
}

func removeLinkHandler(c *fiber.Ctx) error {
	st := storeFrom(c)
	id, url, isID := linkRef(c)

	var removed bool
	var err error
	if isID {
		removed, err = st.RemoveByID(c.Context(), id)
	} else {
		removed, err = st.RemoveByURL(c.Context(), url)
	}
	if err != nil {
		return fail(c, err)
	}
	if !removed {
		return fail(c, store.ErrNotFound)
	}
	return c.JSON(fiber.Map{"success": true})
}

// removeLinksHandler deletes by ?url= or ?glob= query parameter. The
// glob form returns the removed URLs; zero matches is not an error.
func removeLinksHandler(c *fiber.Ctx) error {
	st := storeFrom(c)

	if glob := c.Query("glob"); glob != "" {
		removed, err := st.RemoveByGlob(c.Context(), glob)
		if err != nil {
			return fail(c, err)
		}
		if removed == nil {
			removed = []string{}
		}
		return c.JSON(fiber.Map{"success": true, "removed": removed, "count": len(removed)})
	}

	url := normalizeRequestURL(c.Query("url"))
	if url == "" {
		return badRequest(c, "url or glob query parameter is required")
	}
	removed, err := st.RemoveByURL(c.Context(), url)
	if err != nil {
		return fail(c, err)
	}
	if !removed {
		return fail(c, store.ErrNotFound)
	}
	return c.JSON(fiber.Map{"success": true})
}

// touchLinkHandler refreshes updated_at so a link sorts to the top of
// the list again.
func touchLinkHandler(c *fiber.Ctx) error {
	var req TouchRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	url := normalizeRequestURL(req.URL)
	if url == "" {
		return badRequest(c, "url is required")
	}

	touched, err := storeFrom(c).Touch(c.Context(), url)
	if err != nil {
		return fail(c, err)
	}
	if !touched {
		return fail(c, store.ErrNotFound)
	}
	return c.JSON(fiber.Map{"success": true, "url": url})
}

func toggleHiddenHandler(c *fiber.Ctx) error {
	st := storeFrom(c)
	id, url, isID := linkRef(c)

	var hidden bool
	var err error
	if isID {
		hidden, err = st.ToggleHiddenByID(c.Context(), id)
	} else {
		hidden, err = st.ToggleHidden(c.Context(), url)
	}
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "hidden": hidden})
}
