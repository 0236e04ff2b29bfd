package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthService registers users and issues the tokens that authenticate them.
type AuthService struct {
	db        *gorm.DB
	jwtSecret string
	tokenTTL  time.Duration
}

// NewAuthService issues tokens signed with jwtSecret that expire after tokenTTL.
func NewAuthService(db *gorm.DB, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		db:        db,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// Register creates a user with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, email, password, name string, prefs map[string]interface{}) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if !emailPattern.MatchString(email) {
		return nil, invalid("email", "invalid email format")
	}
	if len(password) < minPasswordLength {
		return nil, invalid("password", "must be at least %d characters", minPasswordLength)
	}
	if name == "" {
		return nil, invalid("name", "is required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Preferences:  models.JSONMap(prefs),
	}
	if user.Preferences == nil {
		user.Preferences = models.JSONMap{}
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Login checks the credentials and returns the user with a fresh token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.GenerateToken(&user)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// GenerateToken signs an HS256 token for user.
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"iat":     now.Unix(),
		"exp":     now.Add(s.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == uuid.Nil {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdatePreferences merges prefs into the stored preferences. A nil value
// removes the key.
func (s *AuthService) UpdatePreferences(ctx context.Context, userID uuid.UUID, prefs map[string]interface{}) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Preferences == nil {
		user.Preferences = models.JSONMap{}
	}
	for k, v := range prefs {
		if v == nil {
			delete(user.Preferences, k)
			continue
		}
		user.Preferences[k] = v
	}
	if err := s.db.WithContext(ctx).Model(user).Update("preferences", user.Preferences).Error; err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}
	return user, nil
}

// UpdateProfile changes the name and email of a user. Empty fields are kept.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name := strings.TrimSpace(req.Name); name != "" {
		updates["name"] = name
	}
	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" && email != user.Email {
		if !emailPattern.MatchString(email) {
			return nil, invalid("email", "invalid email format")
		}
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("email = ? AND id <> ?", email, userID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrUserExists
		}
		updates["email"] = email
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetUser(ctx, userID)
}
