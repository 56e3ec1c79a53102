package service

import (
	"context"
	"errors"
	"time"

	"github.com/brawlhub/elo-ladder/internal/config"
	"github.com/brawlhub/elo-ladder/internal/domain"
	"github.com/brawlhub/elo-ladder/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDisplayNameExists  = errors.New("display name already exists")
)

type AuthService struct {
	playerRepo  repository.PlayerRepository
	sessionRepo repository.SessionRepository
	cfg         *config.Config
}

func NewAuthService(playerRepo repository.PlayerRepository, sessionRepo repository.SessionRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		playerRepo:  playerRepo,
		sessionRepo: sessionRepo,
		cfg:         cfg,
	}
}

type RegisterInput struct {
	DisplayName string
	Password    string
}

type LoginInput struct {
	DisplayName string
	Password    string
}

type AuthResult struct {
	Player       *domain.Player
	AccessToken  string
	RefreshToken string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	existing, err := s.playerRepo.GetByDisplayName(ctx, input.DisplayName)
	if err == nil && existing != nil {
		return nil, ErrDisplayNameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	player := &domain.Player{
		ID:           uuid.New(),
		DisplayName:  input.DisplayName,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, err
	}

	return s.generateTokens(ctx, player)
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	player, err := s.playerRepo.GetByDisplayName(ctx, input.DisplayName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(player.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokens(ctx, player)
}

func (s *AuthService) generateTokens(ctx context.Context, player *domain.Player) (*AuthResult, error) {
	accessToken, err := s.generateAccessToken(player)
	if err != nil {
		return nil, err
	}

	refreshToken := uuid.New().String()
	hashedRefresh, err := bcrypt.GenerateFromPassword([]byte(refreshToken), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	// One active session per player.
	_ = s.sessionRepo.DeleteByPlayerID(ctx, player.ID)

	session := &domain.UserSession{
		ID:               uuid.New(),
		PlayerID:         player.ID,
		RefreshTokenHash: string(hashedRefresh),
		ExpiresAt:        time.Now().Add(7 * 24 * time.Hour),
		CreatedAt:        time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	return &AuthResult{
		Player:       player,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *AuthService) generateAccessToken(player *domain.Player) (string, error) {
	claims := jwt.MapClaims{
		"sub":   player.ID.String(),
		"name":  player.DisplayName,
		"admin": player.IsAdmin,
		"exp":   time.Now().Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) ValidateToken(tokenString string) (*jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return &claims, nil
	}

	return nil, errors.New("invalid token")
}

func (s *AuthService) GetPlayerByID(ctx context.Context, id uuid.UUID) (*domain.Player, error) {
	return s.playerRepo.GetByID(ctx, id)
}

func (s *AuthService) Logout(ctx context.Context, playerID uuid.UUID) error {
	return s.sessionRepo.DeleteByPlayerID(ctx, playerID)
}
