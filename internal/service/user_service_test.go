package service

import (
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/estherpeter24/urge-backend/internal/models"
)

// MockUserRepository is an in-memory UserRepositoryInterface for testing.
type MockUserRepository struct {
	users  map[uint]*models.User
	nextID uint
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[uint]*models.User),
		nextID: 1,
	}
}

func (m *MockUserRepository) Create(user *models.User) error {
	if user.ID == 0 {
		user.ID = m.nextID
		m.nextID++
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) FindByID(id uint) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) FindByPhone(phone string) (*models.User, error) {
	for _, user := range m.users {
		if user.PhoneNumber == phone {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) Update(user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) UpdateOnlineStatus(userID uint, isOnline bool, lastSeen *time.Time) error {
	user, ok := m.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.IsOnline = isOnline
	if lastSeen != nil {
		user.LastSeen = lastSeen
	}
	return nil
}

func (m *MockUserRepository) SearchUsers(query string, limit int) ([]models.User, error) {
	var results []models.User
	for _, user := range m.users {
		if len(results) >= limit {
			break
		}
		if strings.Contains(user.DisplayName, query) || strings.Contains(user.PhoneNumber, query) {
			results = append(results, *user)
		}
	}
	return results, nil
}

func TestUpdateProfile(t *testing.T) {
	mockRepo := NewMockUserRepository()
	userService := NewUserService(mockRepo)

	mockRepo.Create(&models.User{PhoneNumber: "+15551234567", DisplayName: "Esther"})

	name := "Esther P."
	bio := "hi there"
	tests := []struct {
		name      string
		userID    uint
		input     UpdateProfileInput
		shouldErr bool
		checkFn   func(*models.User) bool
	}{
		{
			name:      "Update display name",
			userID:    1,
			input:     UpdateProfileInput{DisplayName: &name},
			shouldErr: false,
			checkFn:   func(u *models.User) bool { return u.DisplayName == "Esther P." },
		},
		{
			name:      "Update bio",
			userID:    1,
			input:     UpdateProfileInput{Bio: &bio},
			shouldErr: false,
			checkFn:   func(u *models.User) bool { return u.Bio == "hi there" },
		},
		{
			name:      "Empty display name rejected",
			userID:    1,
			input:     UpdateProfileInput{DisplayName: ptr("   ")},
			shouldErr: true,
		},
		{
			name:      "Control characters rejected",
			userID:    1,
			input:     UpdateProfileInput{DisplayName: ptr("bad\x00name")},
			shouldErr: true,
		},
		{
			name:      "Unknown user",
			userID:    99,
			input:     UpdateProfileInput{DisplayName: &name},
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := userService.UpdateProfile(tt.userID, tt.input)
			if (err != nil) != tt.shouldErr {
				t.Errorf("UpdateProfile error = %v, wantErr %v", err, tt.shouldErr)
			}
			if !tt.shouldErr && tt.checkFn != nil && !tt.checkFn(user) {
				t.Errorf("UpdateProfile result does not match expected condition")
			}
		})
	}
}

func TestSetUserOnlineOffline(t *testing.T) {
	mockRepo := NewMockUserRepository()
	userService := NewUserService(mockRepo)

	mockRepo.Create(&models.User{PhoneNumber: "+15551234567", DisplayName: "Esther"})

	if err := userService.SetUserOnline(1); err != nil {
		t.Fatalf("SetUserOnline returned error: %v", err)
	}
	if !mockRepo.users[1].IsOnline {
		t.Errorf("IsOnline = false after SetUserOnline")
	}

	lastSeen := time.Now().Add(-time.Minute)
	if err := userService.SetUserOffline(1, lastSeen); err != nil {
		t.Fatalf("SetUserOffline returned error: %v", err)
	}
	if mockRepo.users[1].IsOnline {
		t.Errorf("IsOnline = true after SetUserOffline")
	}
	if mockRepo.users[1].LastSeen == nil || !mockRepo.users[1].LastSeen.Equal(lastSeen) {
		t.Errorf("LastSeen = %v, want %v", mockRepo.users[1].LastSeen, lastSeen)
	}
}

func TestSearchUsersLimit(t *testing.T) {
	mockRepo := NewMockUserRepository()
	userService := NewUserService(mockRepo)

	for i := 0; i < 30; i++ {
		mockRepo.Create(&models.User{PhoneNumber: "+1555000" + string(rune('0'+i%10)), DisplayName: "match"})
	}

	users, err := userService.SearchUsers("match", 0)
	if err != nil {
		t.Fatalf("SearchUsers returned error: %v", err)
	}
	if len(users) > 20 {
		t.Errorf("SearchUsers returned %d users, want default cap of 20", len(users))
	}
}

func ptr(s string) *string { return &s }
