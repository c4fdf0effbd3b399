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

type ConversationHandler struct {
	conversationService *service.ConversationService
	rooms               *realtime.Rooms
}

func NewConversationHandler(conversationService *service.ConversationService, rooms *realtime.Rooms) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService, rooms: rooms}
}

type createDirectRequest struct {
	UserID uint `json:"user_id"`
}

// CreateDirect opens (or returns) the direct conversation with another user.
func (h *ConversationHandler) CreateDirect(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var req createDirectRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return httpx.BadRequest(c, "invalid_request_body", "user_id is required")
	}

	conversation, err := h.conversationService.GetOrCreateDirect(userID, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfConversation):
			return httpx.BadRequest(c, "self_conversation", "Cannot start a conversation with yourself")
		case errors.Is(err, gorm.ErrRecordNotFound):
			return httpx.NotFound(c, "user_not_found", "User not found")
		}
		return httpx.Internal(c, "create_conversation_failed")
	}
	return c.Status(fiber.StatusCreated).JSON(conversation.ToResponse())
}

type createGroupRequest struct {
	Name      string `json:"name"`
	MemberIDs []uint `json:"member_ids"`
}

func (h *ConversationHandler) CreateGroup(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var req createGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	conversation, err := h.conversationService.CreateGroup(userID, req.Name, req.MemberIDs)
	if err != nil {
		if errors.Is(err, service.ErrGroupNameRequired) {
			return httpx.BadRequest(c, "group_name_required", "Group conversations require a name")
		}
		return httpx.Internal(c, "create_group_failed")
	}
	return c.Status(fiber.StatusCreated).JSON(conversation.ToResponse())
}

func (h *ConversationHandler) List(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	conversations, err := h.conversationService.List(userID, c.QueryInt("limit"))
	if err != nil {
		return httpx.Internal(c, "list_conversations_failed")
	}

	responses := make([]models.ConversationResponse, 0, len(conversations))
	for i := range conversations {
		responses = append(responses, conversations[i].ToResponse())
	}
	return c.JSON(fiber.Map{"conversations": responses})
}

func (h *ConversationHandler) Get(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	conversationID, err := httpx.ParamUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_conversation_id", "Invalid conversation id")
	}

	conversation, err := h.conversationService.Get(conversationID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotParticipant):
			return httpx.Forbidden(c, "not_a_participant", "Not a participant of this conversation")
		case errors.Is(err, gorm.ErrRecordNotFound):
			return httpx.NotFound(c, "conversation_not_found", "Conversation not found")
		}
		return httpx.Internal(c, "get_conversation_failed")
	}
	return c.JSON(conversation.ToResponse())
}

type participantRequest struct {
	UserID uint `json:"user_id"`
}

func (h *ConversationHandler) AddParticipant(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	conversationID, err := httpx.ParamUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_conversation_id", "Invalid conversation id")
	}

	var req participantRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return httpx.BadRequest(c, "invalid_request_body", "user_id is required")
	}

	if err := h.conversationService.AddParticipant(conversationID, userID, req.UserID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotParticipant):
			return httpx.Forbidden(c, "not_a_participant", "Not a participant of this conversation")
		case errors.Is(err, gorm.ErrRecordNotFound):
			return httpx.NotFound(c, "user_not_found", "User not found")
		}
		return httpx.Internal(c, "add_participant_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveParticipant drops the membership row and evicts the user's live
// connections from the room so they stop receiving immediately.
func (h *ConversationHandler) RemoveParticipant(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	conversationID, err := httpx.ParamUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_conversation_id", "Invalid conversation id")
	}
	targetID, err := httpx.ParamUint(c, "userId")
	if err != nil {
		return httpx.BadRequest(c, "invalid_user_id", "Invalid user id")
	}

	if err := h.conversationService.RemoveParticipant(conversationID, userID, targetID); err != nil {
		if errors.Is(err, service.ErrNotParticipant) {
			return httpx.Forbidden(c, "not_a_participant", "Not a participant of this conversation")
		}
		return httpx.Internal(c, "remove_participant_failed")
	}

	h.rooms.ForceUnsubscribe(targetID, conversationID)
	return c.SendStatus(fiber.StatusNoContent)
}
