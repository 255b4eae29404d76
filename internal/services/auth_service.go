package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"property-market/internal/models"
)

// AuthService handles account lookup and creation. This is a prototype
// surface: callers identify themselves by email and declared role, and the
// service hands back the account the token is minted for.
type AuthService struct {
	db *gorm.DB
}

// NewAuthService creates a new AuthService
func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// Register creates a new account with the given role.
func (s *AuthService) Register(ctx context.Context, name, email string, role models.UserRole) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return nil, validationErrorf("name is required")
	}
	if email == "" {
		return nil, validationErrorf("email is required")
	}
	if !models.ValidUserRole(role) {
		return nil, validationErrorf("invalid role %q", role)
	}

	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, validationErrorf("an account with email %s already exists", email)
	}

	user := models.User{
		Name:  name,
		Email: email,
		Role:  role,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("New user created: email=%s role=%s (ID: %d)", email, role, user.ID)
	return &user, nil
}

// Login finds an existing account by email.
func (s *AuthService) Login(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	result := s.db.WithContext(ctx).Where("email = ?", email).First(&user)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, validationErrorf("no account found for email %s", email)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("database error: %w", result.Error)
	}

	log.Printf("User logged in: email=%s (ID: %d)", email, user.ID)
	return &user, nil
}
