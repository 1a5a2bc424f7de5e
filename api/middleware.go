package api

import (
	"strconv"
	"strings"

	"casino/domain/entities"

	"github.com/gofiber/fiber/v2"
)

// Headers set by the authenticating gateway in front of this service
const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"
)

const actorLocalsKey = "actor"

// actorMiddleware turns the gateway identity headers into an entities.Actor
func actorMiddleware(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(strings.TrimSpace(c.Get(HeaderActorID)), 10, 64)
	if err != nil || userID <= 0 {
		return fiber.NewError(fiber.StatusUnauthorized, "missing or invalid "+HeaderActorID+" header")
	}

	role := entities.Role(strings.ToLower(strings.TrimSpace(c.Get(HeaderActorRole))))
	switch role {
	case "":
		role = entities.RolePlayer
	case entities.RolePlayer, entities.RoleAdmin:
	default:
		return fiber.NewError(fiber.StatusUnauthorized, "unknown actor role")
	}

	c.Locals(actorLocalsKey, entities.Actor{UserID: userID, Role: role})
	return c.Next()
}

func adminOnly(c *fiber.Ctx) error {
	if !actorFrom(c).IsAdmin() {
		return fiber.NewError(fiber.StatusForbidden, "administrator role required")
	}
	return c.Next()
}

func actorFrom(c *fiber.Ctx) entities.Actor {
	actor, _ := c.Locals(actorLocalsKey).(entities.Actor)
	return actor
}
