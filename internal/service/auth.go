package service

import (
	"context"
	"regexp"
	"time"

	"github.com/avelinov/parley/internal/auth"
	"github.com/avelinov/parley/internal/cache"
	"github.com/avelinov/parley/internal/database"
	"github.com/avelinov/parley/internal/models"
	"github.com/avelinov/parley/internal/snowflake"
)

var usernameRegexp = regexp.MustCompile(`^[a-zA-Z0-9_]{2,32}$`)

// AuthResult holds the token pair and user returned after registration or
// login.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         models.User
}

// AuthService handles registration, login, token refresh and logout. Refresh
// tokens are opaque and live in Redis with a TTL; access tokens are JWTs.
type AuthService struct {
	users     database.UserRepository
	tokens    *auth.TokenService
	cache     *cache.Client
	snowflake *snowflake.Generator
}

func NewAuthService(users database.UserRepository, tokens *auth.TokenService, c *cache.Client, sf *snowflake.Generator) *AuthService {
	return &AuthService{users: users, tokens: tokens, cache: c, snowflake: sf}
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*AuthResult, error) {
	if !usernameRegexp.MatchString(username) {
		return nil, BadRequest("INVALID_USERNAME", "username must be 2-32 alphanumeric or underscore characters")
	}
	if len(password) < 6 || len(password) > 128 {
		return nil, BadRequest("INVALID_PASSWORD", "password must be 6-128 characters")
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if existing != nil {
		return nil, Conflict("USERNAME_TAKEN", "username is already taken")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	user := &models.User{
		ID:           s.snowflake.Generate().Int64(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	return s.issueTokens(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if user == nil {
		return nil, Unauthorized("INVALID_CREDENTIALS", "invalid username or password")
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, Unauthorized("INVALID_CREDENTIALS", "invalid username or password")
	}

	return s.issueTokens(ctx, user)
}

// Refresh rotates the refresh token: the old one is deleted before the new
// pair is issued, so a token can be redeemed at most once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, BadRequest("MISSING_TOKEN", "refresh_token is required")
	}

	userID, err := s.cache.GetRefreshTokenUserID(ctx, refreshToken)
	if err != nil {
		return nil, Unauthorized("INVALID_TOKEN", "invalid or expired refresh token")
	}
	if err := s.cache.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if user == nil {
		return nil, Unauthorized("INVALID_TOKEN", "invalid or expired refresh token")
	}

	return s.issueTokens(ctx, user)
}

// Logout deletes the refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	if refreshToken != "" {
		_ = s.cache.DeleteRefreshToken(ctx, refreshToken)
	}
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*AuthResult, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	refreshToken, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	if err := s.cache.StoreRefreshToken(ctx, refreshToken, user.ID, s.tokens.RefreshExpiry()); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         *user,
	}, nil
}
