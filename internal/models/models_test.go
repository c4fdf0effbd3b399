package models

import (
	"testing"
	"time"
)

func TestUserToResponse(t *testing.T) {
	now := time.Now()
	user := &User{
		ID:          1,
		PhoneNumber: "+15551234567",
		DisplayName: "Esther",
		Avatar:      "https://example.com/avatar.jpg",
		Bio:         "hello",
		IsVerified:  true,
		IsOnline:    true,
		LastSeen:    &now,
	}

	response := user.ToResponse()

	if response.ID != user.ID {
		t.Errorf("ToResponse ID = %d, want %d", response.ID, user.ID)
	}
	if response.PhoneNumber != user.PhoneNumber {
		t.Errorf("ToResponse PhoneNumber = %q, want %q", response.PhoneNumber, user.PhoneNumber)
	}
	if response.DisplayName != user.DisplayName {
		t.Errorf("ToResponse DisplayName = %q, want %q", response.DisplayName, user.DisplayName)
	}
	if response.IsVerified != user.IsVerified {
		t.Errorf("ToResponse IsVerified = %v, want %v", response.IsVerified, user.IsVerified)
	}
	if response.IsOnline != user.IsOnline {
		t.Errorf("ToResponse IsOnline = %v, want %v", response.IsOnline, user.IsOnline)
	}
	if response.LastSeen == nil {
		t.Errorf("ToResponse LastSeen is nil")
	}
}

func TestMessageToResponse(t *testing.T) {
	createdAt := time.Now()
	message := &Message{
		ID:             5,
		CreatedAt:      createdAt,
		ClientID:       "client-123",
		ConversationID: 7,
		SenderID:       1,
		Sender:         User{ID: 1, DisplayName: "Esther"},
		Content:        "hello",
		MessageType:    TextMessage,
		Status:         StatusSent,
	}

	response := message.ToResponse()

	if response.ID != message.ID {
		t.Errorf("ToResponse ID = %d, want %d", response.ID, message.ID)
	}
	if response.ClientID != message.ClientID {
		t.Errorf("ToResponse ClientID = %q, want %q", response.ClientID, message.ClientID)
	}
	if response.ConversationID != message.ConversationID {
		t.Errorf("ToResponse ConversationID = %d, want %d", response.ConversationID, message.ConversationID)
	}
	if response.Sender.DisplayName != "Esther" {
		t.Errorf("ToResponse Sender.DisplayName = %q, want Esther", response.Sender.DisplayName)
	}
	if response.Status != StatusSent {
		t.Errorf("ToResponse Status = %q, want sent", response.Status)
	}
	if !response.CreatedAt.Equal(createdAt) {
		t.Errorf("ToResponse CreatedAt = %v, want %v", response.CreatedAt, createdAt)
	}
}

func TestConversationToResponseSkipsDepartedParticipants(t *testing.T) {
	left := time.Now()
	conversation := &Conversation{
		ID:   3,
		Type: GroupConversation,
		Name: "weekend plans",
		Participants: []ConversationParticipant{
			{UserID: 1, User: User{ID: 1, DisplayName: "Alice"}},
			{UserID: 2, User: User{ID: 2, DisplayName: "Bob"}, LeftAt: &left},
		},
	}

	response := conversation.ToResponse()

	if len(response.Participants) != 1 {
		t.Fatalf("ToResponse Participants = %d, want 1", len(response.Participants))
	}
	if response.Participants[0].DisplayName != "Alice" {
		t.Errorf("remaining participant = %q, want Alice", response.Participants[0].DisplayName)
	}
}

func TestDeliveryStateRank(t *testing.T) {
	if DeliverySent.Rank() >= DeliveryDelivered.Rank() {
		t.Errorf("sent must rank below delivered")
	}
	if DeliveryDelivered.Rank() >= DeliveryRead.Rank() {
		t.Errorf("delivered must rank below read")
	}
	if DeliveryState("bogus").Rank() != -1 {
		t.Errorf("unknown state rank = %d, want -1", DeliveryState("bogus").Rank())
	}
}
