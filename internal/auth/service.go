// Package auth issues and refreshes dashboard credentials: bcrypt password
// checks, HS256 access tokens carrying the organization claim, and hashed
// single-use refresh tokens.
package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"fieldops_backend/platform/apperr"
	"fieldops_backend/platform/config"
	"fieldops_backend/platform/logger"
)

const (
	accessTokenType  = "access"
	refreshTokenType = "refresh"
)

type Service struct {
	repo *Repository
	cfg  config.AuthServiceConfig
	log  *logger.Logger
}

func NewService(repo *Repository, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, log: log}
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (s *Service) SignIn(ctx context.Context, email, plainPassword string) (*TokenPair, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		s.log.AuthEvent("sign_in", email, false, "user lookup failed")
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if !user.IsActive {
		s.log.AuthEvent("sign_in", email, false, "user inactive")
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err := comparePassword(user.PasswordHash, plainPassword); err != nil {
		s.log.AuthEvent("sign_in", email, false, "wrong password")
		return nil, apperr.Unauthorized("invalid credentials")
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log.AuthEvent("sign_in", email, true, "")
	return pair, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair issued, so a replayed token fails.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	hash := hashSHA256(refreshToken)
	userID, expiresAt, err := s.repo.GetRefreshToken(ctx, hash)
	if err != nil {
		return nil, apperr.Unauthorized("invalid refresh token")
	}
	if time.Now().After(expiresAt) {
		_ = s.repo.RevokeRefreshToken(ctx, hash)
		return nil, apperr.Unauthorized("refresh token expired")
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, apperr.Unauthorized("invalid refresh token")
	}
	if !user.IsActive {
		_ = s.repo.RevokeAllRefreshTokens(ctx, userID)
		return nil, apperr.Unauthorized("invalid refresh token")
	}

	_ = s.repo.RevokeRefreshToken(ctx, hash)
	return s.issueTokens(ctx, user)
}

func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	return s.repo.RevokeRefreshToken(ctx, hashSHA256(refreshToken))
}

func (s *Service) issueTokens(ctx context.Context, user *User) (*TokenPair, error) {
	accessToken, err := s.signAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := generateRandomToken(48)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.cfg.GetRefreshTokenTTL())
	if err := s.repo.CreateRefreshToken(ctx, user.ID, hashSHA256(refreshToken), expiresAt); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *Service) signAccessToken(user *User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":    user.ID.String(),
		"type":   accessTokenType,
		"roles":  []string{user.Role},
		"org_id": user.OrganizationID.String(),
		"exp":    now.Add(s.cfg.GetAccessTokenTTL()).Unix(),
		"iat":    now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}

// Me returns the profile behind an access token's subject.
type Profile struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organizationId"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"displayName"`
	Role           string    `json:"role"`
}

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{
		ID:             user.ID,
		OrganizationID: user.OrganizationID,
		Email:          user.Email,
		DisplayName:    user.DisplayName,
		Role:           user.Role,
	}, nil
}
