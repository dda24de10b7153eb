package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jabinweb/church-manager-sub003/internal/apperr"
	"github.com/jabinweb/church-manager-sub003/internal/model"
	"github.com/jabinweb/church-manager-sub003/internal/repository"
	"github.com/jabinweb/church-manager-sub003/pkg/auth"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// AuthService resolves and issues user identities. The messaging core
// treats identity as an external concern; this service is the minimal
// provider of it.
type AuthService struct {
	userRepo   *repository.UserRepository
	jwtManager *auth.JWTManager
	rdb        *redis.Client
}

func NewAuthService(userRepo *repository.UserRepository, jwtManager *auth.JWTManager, rdb *redis.Client) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		rdb:        rdb,
	}
}

// Register creates a member account and signs them in.
func (s *AuthService) Register(req model.RegisterRequest) (*model.LoginResponse, error) {
	if _, err := s.userRepo.FindByEmail(req.Email); err == nil {
		return nil, apperr.Validation("email already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:                  req.Name,
		Email:                 req.Email,
		Password:              string(hashed),
		Role:                  model.UserRoleMember,
		IsNotificationEnabled: true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return s.issueToken(user)
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(req model.LoginRequest) (*model.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, apperr.Authentication("invalid email or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, apperr.Authentication("invalid email or password")
	}
	return s.issueToken(user)
}

// Logout blacklists the token in redis until it would have expired.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.jwtManager.ValidateToken(tokenString)
	if err != nil {
		return nil // already unusable
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, "blacklist:"+tokenString, "1", ttl).Err()
}

// Profile returns the caller's own account.
func (s *AuthService) Profile(userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}

// SearchUsers finds members by partial name or email.
func (s *AuthService) SearchUsers(query string, excludeUserID uuid.UUID) ([]model.UserResponse, error) {
	if len(query) < 2 {
		return nil, apperr.Validation("search query too short")
	}
	users, err := s.userRepo.SearchUsers(query, excludeUserID, 20)
	if err != nil {
		return nil, err
	}
	out := make([]model.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, users[i].ToResponse())
	}
	return out, nil
}

// RegisterDevice stores an FCM token for mobile notifications.
func (s *AuthService) RegisterDevice(userID uuid.UUID, req model.RegisterDeviceRequest) error {
	return s.userRepo.AddDevice(userID, req.FCMToken, req.DeviceType)
}

func (s *AuthService) issueToken(user *model.User) (*model.LoginResponse, error) {
	token, err := s.jwtManager.GenerateToken(user.ID, user.Email, user.Name, user.Role)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{Token: token, User: user.ToResponse()}, nil
}
