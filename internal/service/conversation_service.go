package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/estherpeter24/urge-backend/internal/models"
	"github.com/estherpeter24/urge-backend/internal/repository"
	"github.com/estherpeter24/urge-backend/internal/validation"
)

type ConversationService struct {
	conversationRepo repository.ConversationRepositoryInterface
	userRepo         repository.UserRepositoryInterface
}

func NewConversationService(conversationRepo repository.ConversationRepositoryInterface, userRepo repository.UserRepositoryInterface) *ConversationService {
	return &ConversationService{conversationRepo: conversationRepo, userRepo: userRepo}
}

// GetOrCreateDirect returns the existing direct conversation between two
// users, creating it (with both participants) on first contact.
func (s *ConversationService) GetOrCreateDirect(userID, peerID uint) (*models.Conversation, error) {
	if userID == peerID {
		return nil, ErrSelfConversation
	}
	if _, err := s.userRepo.FindByID(peerID); err != nil {
		return nil, err
	}

	existing, err := s.conversationRepo.FindDirect(userID, peerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conversation := &models.Conversation{
		Type:        models.DirectConversation,
		CreatedByID: userID,
	}
	if err := s.conversationRepo.Create(conversation); err != nil {
		return nil, err
	}
	if err := s.conversationRepo.AddParticipant(conversation.ID, userID); err != nil {
		return nil, err
	}
	if err := s.conversationRepo.AddParticipant(conversation.ID, peerID); err != nil {
		return nil, err
	}

	return s.conversationRepo.FindByID(conversation.ID)
}

// CreateGroup creates a group conversation with the creator plus members.
func (s *ConversationService) CreateGroup(creatorID uint, name string, memberIDs []uint) (*models.Conversation, error) {
	name = validation.TrimAndLimit(name, validation.MaxGroupName())
	if name == "" {
		return nil, ErrGroupNameRequired
	}

	conversation := &models.Conversation{
		Type:        models.GroupConversation,
		Name:        name,
		CreatedByID: creatorID,
	}
	if err := s.conversationRepo.Create(conversation); err != nil {
		return nil, err
	}
	if err := s.conversationRepo.AddParticipant(conversation.ID, creatorID); err != nil {
		return nil, err
	}
	for _, memberID := range memberIDs {
		if memberID == creatorID {
			continue
		}
		if err := s.conversationRepo.AddParticipant(conversation.ID, memberID); err != nil {
			return nil, err
		}
	}

	return s.conversationRepo.FindByID(conversation.ID)
}

func (s *ConversationService) List(userID uint, limit int) ([]models.Conversation, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.conversationRepo.ListForUser(userID, limit)
}

// Get returns a conversation the user participates in.
func (s *ConversationService) Get(conversationID, userID uint) (*models.Conversation, error) {
	ok, err := s.conversationRepo.IsParticipant(userID, conversationID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotParticipant
	}
	return s.conversationRepo.FindByID(conversationID)
}

// AddParticipant lets an existing participant add another user.
func (s *ConversationService) AddParticipant(conversationID, actorID, userID uint) error {
	ok, err := s.conversationRepo.IsParticipant(actorID, conversationID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotParticipant
	}
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return err
	}
	return s.conversationRepo.AddParticipant(conversationID, userID)
}

// RemoveParticipant removes a user; participants can remove themselves, and
// any participant can remove others (permission tiers are out of scope).
func (s *ConversationService) RemoveParticipant(conversationID, actorID, userID uint) error {
	ok, err := s.conversationRepo.IsParticipant(actorID, conversationID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotParticipant
	}
	return s.conversationRepo.RemoveParticipant(conversationID, userID)
}
