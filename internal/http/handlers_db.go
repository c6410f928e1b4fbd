package http

import (
	"github.com/gofiber/fiber/v2"
)

func dbStatusHandler(c *fiber.Ctx) error {
	st, err := storeFrom(c).ConnectionStatus(c.Context())
	if err != nil {
		return fail(c, err)
	}
	vec, err := storeFrom(c).VectorStatusInfo(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"db":      st,
		"vector":  vec,
	})
}

func vectorInitHandler(c *fiber.Ctx) error {
	if err := storeFrom(c).InitVector(c.Context()); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func vectorStatusHandler(c *fiber.Ctx) error {
	vec, err := storeFrom(c).VectorStatusInfo(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "vector": vec})
}
