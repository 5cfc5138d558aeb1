package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"sphinx_backend/internal/metrics"
	"sphinx_backend/internal/model"
	"sphinx_backend/pkg/apperrors"
	"sphinx_backend/pkg/utils/jwt"
	"sphinx_backend/pkg/utils/validation"
)

var (
	ErrInvalidCredentials = &apperrors.AuthError{Message: "Invalid credentials"}
	ErrWrongPassword      = &apperrors.AuthError{Message: "Password is incorrect"}
	ErrUserGone           = &apperrors.AuthError{Message: "The user belonging to this token no longer exists"}
)

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email_address"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type DetailsInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type PasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

type AuthService struct {
	db  *gorm.DB
	log *logrus.Entry
}

func NewAuthService(db *gorm.DB, log *logrus.Entry) *AuthService {
	return &AuthService{db: db, log: log}
}

// HashPassword hashes a plain password with bcrypt's default cost.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func issueToken(u *model.User) (string, error) {
	token, err := jwt.GenerateToken(u.ID, u.Email, u.Role)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}

// Register creates a regular user account and returns it with a fresh token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.Struct(in); err != nil {
		return nil, "", err
	}
	if err := ensureUnique(ctx, s.db, &model.User{}, "email", in.Email, 0); err != nil {
		return nil, "", err
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}
	user := &model.User{Name: in.Name, Email: in.Email, Password: hashed, Role: model.RoleUser}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, "", dbErr("create user", err)
	}

	token, err := issueToken(user)
	if err != nil {
		return nil, "", err
	}
	s.log.WithFields(logrus.Fields{"id": user.ID, "email": user.Email}).Info("user registered")
	return user, token, nil
}

// Login checks the credentials. Unknown emails and wrong passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, "", apperrors.NewValidation("email", "Please provide an email and password")
	}

	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.RecordAuthAttempt(false)
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("find user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		metrics.RecordAuthAttempt(false)
		return nil, "", ErrInvalidCredentials
	}

	token, err := issueToken(&user)
	if err != nil {
		return nil, "", err
	}
	metrics.RecordAuthAttempt(true)
	return &user, token, nil
}

// Authenticate validates a token and loads the user it belongs to.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := jwt.ValidateToken(token)
	if err != nil {
		return nil, apperrors.ErrNotAuthorized
	}

	var user model.User
	err = s.db.WithContext(ctx).First(&user, claims.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserGone
	}
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", claims.UserID, err)
	}
	return &user, nil
}

func (s *AuthService) Me(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := findByID(ctx, s.db, "User", id, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateDetails changes the name and email of the user.
func (s *AuthService) UpdateDetails(ctx context.Context, id uint, in DetailsInput) (*model.User, error) {
	user, err := s.Me(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	user.Normalize()
	if err := validation.Struct(user); err != nil {
		return nil, err
	}
	if err := ensureUnique(ctx, s.db, &model.User{}, "email", user.Email, id); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"name":  user.Name,
		"email": user.Email,
	}).Error; err != nil {
		return nil, dbErr("update user", err)
	}
	return user, nil
}

// UpdatePassword replaces the password after checking the current one and returns a new token.
func (s *AuthService) UpdatePassword(ctx context.Context, id uint, in PasswordInput) (*model.User, string, error) {
	if err := validation.Struct(in); err != nil {
		return nil, "", err
	}
	user, err := s.Me(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)) != nil {
		return nil, "", ErrWrongPassword
	}

	hashed, err := HashPassword(in.NewPassword)
	if err != nil {
		return nil, "", err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password", hashed).Error; err != nil {
		return nil, "", fmt.Errorf("update password: %w", err)
	}

	token, err := issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}
