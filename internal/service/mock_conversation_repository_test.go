package service

import (
	"time"

	"gorm.io/gorm"

	"github.com/estherpeter24/urge-backend/internal/models"
)

// MockConversationRepository is an in-memory ConversationRepositoryInterface
// for testing.
type MockConversationRepository struct {
	conversations map[uint]*models.Conversation
	participants  map[uint][]*models.ConversationParticipant
	nextID        uint
}

func NewMockConversationRepository() *MockConversationRepository {
	return &MockConversationRepository{
		conversations: make(map[uint]*models.Conversation),
		participants:  make(map[uint][]*models.ConversationParticipant),
		nextID:        1,
	}
}

func (m *MockConversationRepository) Create(conversation *models.Conversation) error {
	if conversation.ID == 0 {
		conversation.ID = m.nextID
		m.nextID++
	}
	m.conversations[conversation.ID] = conversation
	return nil
}

func (m *MockConversationRepository) FindByID(id uint) (*models.Conversation, error) {
	if conv, ok := m.conversations[id]; ok {
		return conv, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockConversationRepository) FindDirect(userID1, userID2 uint) (*models.Conversation, error) {
	for id, conv := range m.conversations {
		if conv.Type != models.DirectConversation {
			continue
		}
		has1, has2 := false, false
		for _, p := range m.participants[id] {
			if p.LeftAt != nil {
				continue
			}
			if p.UserID == userID1 {
				has1 = true
			}
			if p.UserID == userID2 {
				has2 = true
			}
		}
		if has1 && has2 {
			return conv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockConversationRepository) ListForUser(userID uint, limit int) ([]models.Conversation, error) {
	var result []models.Conversation
	for id, conv := range m.conversations {
		if len(result) >= limit {
			break
		}
		for _, p := range m.participants[id] {
			if p.UserID == userID && p.LeftAt == nil {
				result = append(result, *conv)
				break
			}
		}
	}
	return result, nil
}

func (m *MockConversationRepository) AddParticipant(conversationID, userID uint) error {
	for _, p := range m.participants[conversationID] {
		if p.UserID == userID {
			p.LeftAt = nil
			return nil
		}
	}
	m.participants[conversationID] = append(m.participants[conversationID], &models.ConversationParticipant{
		ConversationID: conversationID,
		UserID:         userID,
		JoinedAt:       time.Now(),
	})
	return nil
}

func (m *MockConversationRepository) RemoveParticipant(conversationID, userID uint) error {
	now := time.Now()
	for _, p := range m.participants[conversationID] {
		if p.UserID == userID {
			p.LeftAt = &now
		}
	}
	return nil
}

func (m *MockConversationRepository) IsParticipant(userID, conversationID uint) (bool, error) {
	for _, p := range m.participants[conversationID] {
		if p.UserID == userID && p.LeftAt == nil {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockConversationRepository) ParticipantsOf(conversationID uint) ([]uint, error) {
	var ids []uint
	for _, p := range m.participants[conversationID] {
		if p.LeftAt == nil {
			ids = append(ids, p.UserID)
		}
	}
	return ids, nil
}

func (m *MockConversationRepository) ConversationsOf(userID uint) ([]uint, error) {
	var ids []uint
	for conversationID, participants := range m.participants {
		for _, p := range participants {
			if p.UserID == userID && p.LeftAt == nil {
				ids = append(ids, conversationID)
				break
			}
		}
	}
	return ids, nil
}

func (m *MockConversationRepository) TouchLastMessage(conversationID uint, messageID uint, at time.Time) error {
	if conv, ok := m.conversations[conversationID]; ok {
		conv.LastMessageID = &messageID
		conv.LastMessageAt = &at
	}
	return nil
}

func (m *MockConversationRepository) ResetUnread(conversationID, userID uint) error {
	for _, p := range m.participants[conversationID] {
		if p.UserID == userID {
			p.UnreadCount = 0
		}
	}
	return nil
}

func (m *MockConversationRepository) IncrementUnread(conversationID uint, exceptUserID uint) error {
	for _, p := range m.participants[conversationID] {
		if p.UserID != exceptUserID && p.LeftAt == nil {
			p.UnreadCount++
		}
	}
	return nil
}

func (m *MockConversationRepository) unreadOf(conversationID, userID uint) int {
	for _, p := range m.participants[conversationID] {
		if p.UserID == userID {
			return p.UnreadCount
		}
	}
	return 0
}
