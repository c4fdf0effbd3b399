package service

import (
	"time"

	"github.com/estherpeter24/urge-backend/internal/models"
	"github.com/estherpeter24/urge-backend/internal/repository"
	"github.com/estherpeter24/urge-backend/internal/validation"
)

type UserService struct {
	userRepo repository.UserRepositoryInterface
}

func NewUserService(userRepo repository.UserRepositoryInterface) *UserService {
	return &UserService{userRepo: userRepo}
}

type UpdateProfileInput struct {
	DisplayName *string `json:"display_name"`
	Avatar      *string `json:"avatar"`
	Bio         *string `json:"bio"`
}

func (s *UserService) GetProfile(userID uint) (*models.User, error) {
	return s.userRepo.FindByID(userID)
}

func (s *UserService) UpdateProfile(userID uint, input UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != nil {
		name := validation.NormalizeDisplayName(*input.DisplayName)
		if !validation.ValidateDisplayName(name) {
			return nil, ErrInvalidDisplayName
		}
		user.DisplayName = name
	}
	if input.Avatar != nil {
		user.Avatar = *input.Avatar
	}
	if input.Bio != nil {
		user.Bio = validation.TrimAndLimit(*input.Bio, 1000)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) SearchUsers(query string, limit int) ([]models.User, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.userRepo.SearchUsers(query, limit)
}

// SetUserOnline mirrors a presence transition into the users table.
func (s *UserService) SetUserOnline(userID uint) error {
	return s.userRepo.UpdateOnlineStatus(userID, true, nil)
}

// SetUserOffline mirrors a presence transition, recording when the user was
// last seen.
func (s *UserService) SetUserOffline(userID uint, lastSeen time.Time) error {
	return s.userRepo.UpdateOnlineStatus(userID, false, &lastSeen)
}
