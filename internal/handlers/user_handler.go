package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/estherpeter24/urge-backend/internal/httpx"
	"github.com/estherpeter24/urge-backend/internal/models"
	"github.com/estherpeter24/urge-backend/internal/realtime"
	"github.com/estherpeter24/urge-backend/internal/service"
)

type UserHandler struct {
	userService *service.UserService
	presence    *realtime.Presence
}

func NewUserHandler(userService *service.UserService, presence *realtime.Presence) *UserHandler {
	return &UserHandler{userService: userService, presence: presence}
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	user, err := h.userService.GetProfile(userID)
	if err != nil {
		return httpx.Internal(c, "get_profile_failed")
	}
	return c.JSON(user.ToResponse())
}

func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input service.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	user, err := h.userService.UpdateProfile(userID, input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDisplayName) {
			return httpx.BadRequest(c, "invalid_display_name", "Invalid display name")
		}
		return httpx.Internal(c, "update_profile_failed")
	}
	return c.JSON(user.ToResponse())
}

func (h *UserHandler) SearchUsers(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	query := c.Query("q")
	if query == "" {
		return httpx.BadRequest(c, "missing_query", "q is required")
	}

	users, err := h.userService.SearchUsers(query, c.QueryInt("limit"))
	if err != nil {
		return httpx.Internal(c, "search_failed")
	}

	responses := make([]models.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, users[i].ToResponse())
	}
	return c.JSON(fiber.Map{"users": responses})
}

// GetPresence reads the live presence tracker, falling back to the users
// table for last-seen when the user was never online on this node.
func (h *UserHandler) GetPresence(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	targetID, err := httpx.ParamUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_user_id", "Invalid user id")
	}

	status := h.presence.StatusOf(targetID)
	resp := fiber.Map{"user_id": targetID, "online": status.Online}
	if !status.LastSeenAt.IsZero() {
		resp["last_seen_at"] = status.LastSeenAt
	} else if user, err := h.userService.GetProfile(targetID); err == nil {
		resp["last_seen_at"] = user.LastSeen
	} else if errors.Is(err, gorm.ErrRecordNotFound) {
		return httpx.NotFound(c, "user_not_found", "User not found")
	}
	return c.JSON(resp)
}
