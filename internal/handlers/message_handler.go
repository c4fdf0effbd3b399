package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/estherpeter24/urge-backend/internal/httpx"
	"github.com/estherpeter24/urge-backend/internal/models"
	"github.com/estherpeter24/urge-backend/internal/realtime"
	"github.com/estherpeter24/urge-backend/internal/service"
)

type MessageHandler struct {
	messageService *service.MessageService
	delivery       *realtime.Delivery
}

func NewMessageHandler(messageService *service.MessageService, delivery *realtime.Delivery) *MessageHandler {
	return &MessageHandler{messageService: messageService, delivery: delivery}
}

// Send stores a message and hands it to the realtime coordinator for fan-out.
// Retransmits (same client_id) return 200 with the original row and skip
// dispatch.
func (h *MessageHandler) Send(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	conversationID, err := httpx.ParamUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_conversation_id", "Invalid conversation id")
	}

	var input service.SendMessageInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	message, duplicate, err := h.messageService.SendMessage(userID, conversationID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotParticipant):
			return httpx.Forbidden(c, "not_a_participant", "Not a participant of this conversation")
		case errors.Is(err, service.ErrEmptyContent):
			return httpx.BadRequest(c, "empty_content", "Message content is empty")
		case errors.Is(err, service.ErrContentTooLong):
			return httpx.BadRequest(c, "content_too_long", "Message content exceeds the limit")
		}
		return httpx.Internal(c, "send_message_failed")
	}

	if duplicate {
		return c.JSON(message.ToResponse())
	}

	if err := h.delivery.Dispatch(message, input.ConnectionID); err != nil {
		log.Printf("handlers: dispatch message %d: %v", message.ID, err)
	}
	return c.Status(fiber.StatusCreated).JSON(message.ToResponse())
}

// List pages a conversation backwards; cursor is the oldest message ID from
// the previous page, 0 for the latest.
func (h *MessageHandler) List(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	conversationID, err := httpx.ParamUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_conversation_id", "Invalid conversation id")
	}

	cursor := uint(c.QueryInt("cursor"))
	messages, err := h.messageService.GetMessages(userID, conversationID, cursor, c.QueryInt("limit"))
	if err != nil {
		if errors.Is(err, service.ErrNotParticipant) {
			return httpx.Forbidden(c, "not_a_participant", "Not a participant of this conversation")
		}
		return httpx.Internal(c, "list_messages_failed")
	}

	responses := make([]models.MessageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, messages[i].ToResponse())
	}

	var nextCursor uint
	if len(messages) > 0 {
		nextCursor = messages[0].ID
	}
	return c.JSON(fiber.Map{"messages": responses, "next_cursor": nextCursor})
}

// MarkRead acknowledges every unread message in the conversation for the
// calling user, the REST equivalent of opening the conversation.
func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	conversationID, err := httpx.ParamUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_conversation_id", "Invalid conversation id")
	}

	ids, err := h.messageService.UnreadMessageIDs(userID, conversationID)
	if err != nil {
		if errors.Is(err, service.ErrNotParticipant) {
			return httpx.Forbidden(c, "not_a_participant", "Not a participant of this conversation")
		}
		return httpx.Internal(c, "mark_read_failed")
	}

	read := 0
	for _, messageID := range ids {
		_, changed, err := h.delivery.MarkRead(messageID, userID)
		if err != nil {
			if errors.Is(err, realtime.ErrUnknownRecipient) {
				continue
			}
			log.Printf("handlers: mark message %d read for user %d: %v", messageID, userID, err)
			continue
		}
		if changed {
			read++
		}
	}
	return c.JSON(fiber.Map{"read": read})
}
