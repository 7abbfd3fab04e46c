package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/leet-stalk/backend/internal/domain"
	"github.com/leet-stalk/backend/internal/infrastructure"
)

// UserService handles accounts, authentication and the follow list
type UserService struct {
	userRepo  domain.UserRepository
	fetcher   domain.ProfileFetcher
	jwtConfig *infrastructure.JWTConfig
	tracer    trace.Tracer
	logger    *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo domain.UserRepository,
	fetcher domain.ProfileFetcher,
	jwtConfig *infrastructure.JWTConfig,
	tracer trace.Tracer,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		fetcher:   fetcher,
		jwtConfig: jwtConfig,
		tracer:    tracer,
		logger:    logger,
	}
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Register creates a new user account
func (s *UserService) Register(ctx context.Context, req *domain.UserCreateRequest) (*domain.User, *TokenPair, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Register")
	defer span.End()

	span.SetAttributes(attribute.String("user.email", req.Email))

	// Check if user already exists
	existing, err := s.userRepo.FindByEmail(req.Email)
	if err != nil && err != domain.ErrUserNotFound {
		s.logger.Error("Failed to check existing user", zap.Error(err))
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, domain.ErrUserAlreadyExists
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, nil, domain.ErrInternalServer
	}

	user := &domain.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hashedPassword),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}

	if err := s.userRepo.Create(user); err != nil {
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, nil, err
	}

	// Generate tokens
	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("User registered successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
	)

	span.SetAttributes(attribute.String("user.id", user.ID.String()))
	return user, tokens, nil
}

// Login authenticates a user and returns tokens
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Login")
	defer span.End()

	span.SetAttributes(attribute.String("user.email", email))

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}

	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
	)

	span.SetAttributes(attribute.String("user.id", user.ID.String()))
	return user, tokens, nil
}

// RefreshToken generates a new access token from a refresh token
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.RefreshToken")
	defer span.End()

	claims, err := s.validateToken(refreshToken)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != "refresh" {
		return nil, domain.ErrInvalidToken
	}

	userIDStr, ok := claims["sub"].(string)
	if !ok {
		return nil, domain.ErrInvalidToken
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	return s.generateTokenPair(user)
}

// GetUserByID retrieves a user by their ID
func (s *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.GetUserByID")
	defer span.End()

	span.SetAttributes(attribute.String("user.id", id.String()))
	return s.userRepo.FindByID(id)
}

// Follow starts tracking a LeetCode username for the given account. The
// handle must exist upstream; existence is checked with a lightweight stats
// fetch before anything is written.
func (s *UserService) Follow(ctx context.Context, userID uuid.UUID, leetcodeUsername string) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Follow")
	defer span.End()

	span.SetAttributes(attribute.String("follow.username", leetcodeUsername))

	if _, err := s.fetcher.FetchUserStats(ctx, leetcodeUsername); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user.IsFollowing(leetcodeUsername) {
		return nil, domain.ErrAlreadyFollowing
	}

	user.FollowingLeetCode = append(user.FollowingLeetCode, leetcodeUsername)
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	s.logger.Info("User followed a LeetCode handle",
		zap.String("user_id", user.ID.String()),
		zap.String("leetcode_username", leetcodeUsername),
		zap.Int("following_count", len(user.FollowingLeetCode)),
	)
	return user, nil
}

// Unfollow stops tracking a LeetCode username
func (s *UserService) Unfollow(ctx context.Context, userID uuid.UUID, leetcodeUsername string) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Unfollow")
	defer span.End()

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if !user.IsFollowing(leetcodeUsername) {
		return nil, domain.ErrNotFollowing
	}

	remaining := user.FollowingLeetCode[:0]
	for _, name := range user.FollowingLeetCode {
		if name != leetcodeUsername {
			remaining = append(remaining, name)
		}
	}
	user.FollowingLeetCode = remaining

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	s.logger.Info("User unfollowed a LeetCode handle",
		zap.String("user_id", user.ID.String()),
		zap.String("leetcode_username", leetcodeUsername),
	)
	return user, nil
}

// FollowedUser is a followed handle with its freshly fetched stats. Stats
// are nil when the fetch failed; the handle itself is still listed.
type FollowedUser struct {
	Username string            `json:"username"`
	Stats    *domain.UserStats `json:"stats"`
}

// ListFollowing returns the account's followed handles with fresh stats.
// Per-handle fetch failures degrade to a nil stats field rather than
// failing the listing.
func (s *UserService) ListFollowing(ctx context.Context, userID uuid.UUID) ([]FollowedUser, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.ListFollowing")
	defer span.End()

	usernames, err := s.userRepo.GetFollowedUsernames(userID)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("following.count", len(usernames)))

	followed := make([]FollowedUser, len(usernames))
	done := make(chan struct{}, len(usernames))
	for i, username := range usernames {
		go func(slot int, username string) {
			stats, err := s.fetcher.FetchUserStats(ctx, username)
			if err != nil {
				s.logger.Warn("Failed to fetch stats for followed handle",
					zap.String("leetcode_username", username),
					zap.Error(err),
				)
				followed[slot] = FollowedUser{Username: username}
			} else {
				followed[slot] = FollowedUser{Username: username, Stats: stats}
			}
			done <- struct{}{}
		}(i, username)
	}
	for range usernames {
		<-done
	}

	return followed, nil
}

// SearchResult describes a LeetCode handle looked up for following
type SearchResult struct {
	User               *domain.UserStats `json:"user"`
	IsAlreadyFollowing bool              `json:"is_already_following"`
}

// SearchExternal checks whether a LeetCode handle exists and whether the
// account already follows it
func (s *UserService) SearchExternal(ctx context.Context, userID uuid.UUID, query string) (*SearchResult, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.SearchExternal")
	defer span.End()

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user.IsFollowing(query) {
		return &SearchResult{IsAlreadyFollowing: true}, nil
	}

	stats, err := s.fetcher.FetchUserStats(ctx, query)
	if err != nil {
		return nil, err
	}
	return &SearchResult{User: stats}, nil
}

// ValidateAccessToken validates an access token and returns the user ID
func (s *UserService) ValidateAccessToken(tokenString string) (uuid.UUID, error) {
	claims, err := s.validateToken(tokenString)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidToken
	}

	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != "access" {
		return uuid.Nil, domain.ErrInvalidToken
	}

	userIDStr, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, domain.ErrInvalidToken
	}

	return uuid.Parse(userIDStr)
}

// generateTokenPair creates access and refresh tokens for a user
func (s *UserService) generateTokenPair(user *domain.User) (*TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(s.jwtConfig.AccessTokenExpiry)
	refreshExpiry := now.Add(s.jwtConfig.RefreshTokenExpiry)

	accessClaims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"type":  "access",
		"iat":   now.Unix(),
		"exp":   accessExpiry.Unix(),
		"iss":   s.jwtConfig.Issuer,
	}
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString([]byte(s.jwtConfig.SecretKey))
	if err != nil {
		return nil, err
	}

	refreshClaims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"type": "refresh",
		"iat":  now.Unix(),
		"exp":  refreshExpiry.Unix(),
		"iss":  s.jwtConfig.Issuer,
	}
	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshTokenString, err := refreshToken.SignedString([]byte(s.jwtConfig.SecretKey))
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
		ExpiresAt:    accessExpiry,
	}, nil
}

// validateToken validates a JWT token and returns its claims
func (s *UserService) validateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return []byte(s.jwtConfig.SecretKey), nil
	})

	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}
