package utils

import (
	"errors"
	"fmt"
	"time"

	"HospitalMS/models"

	"github.com/o1egl/paseto"
)

const (
	// Set expiration times for access and refresh tokens.
	AccessTokenExpiry  = 24 * time.Hour
	RefreshTokenExpiry = 7 * 24 * time.Hour

	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

var (
	ErrInvalidKey   = errors.New("SYMMETRIC_KEY must be 32 bytes long")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// TokenClaims is the payload sealed inside a PASETO v2 local token.
type TokenClaims struct {
	UserID     string    `json:"userId"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	RoleID     *string   `json:"roleId,omitempty"`
	HospitalID *string   `json:"hospitalId,omitempty"`
	Kind       string    `json:"kind"`
	Expiry     time.Time `json:"expiry"`
}

// Principal returns the caller described by the claims.
func (c *TokenClaims) Principal() models.Principal {
	return models.Principal{UserID: c.UserID, Email: c.Email, Role: c.Role, RoleID: c.RoleID, HospitalID: c.HospitalID}
}

// TokenMaker seals and opens tokens with one symmetric key.
type TokenMaker struct {
	key []byte
	v2  *paseto.V2
	now func() time.Time
}

// NewTokenMaker ensures the key has the correct length (32 bytes).
func NewTokenMaker(symmetricKey string) (*TokenMaker, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidKey, len(symmetricKey))
	}
	return &TokenMaker{key: []byte(symmetricKey), v2: paseto.NewV2(), now: time.Now}, nil
}

// GenerateTokens generates both the access token and refresh token for a user.
func (m *TokenMaker) GenerateTokens(p models.Principal) (accessToken, refreshToken string, err error) {
	accessToken, err = m.generate(p, TokenKindAccess, AccessTokenExpiry)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = m.generate(p, TokenKindRefresh, RefreshTokenExpiry)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (m *TokenMaker) generate(p models.Principal, kind string, expiry time.Duration) (string, error) {
	claims := TokenClaims{
		UserID:     p.UserID,
		Email:      p.Email,
		Role:       p.Role,
		RoleID:     p.RoleID,
		HospitalID: p.HospitalID,
		Kind:       kind,
		Expiry:     m.now().Add(expiry),
	}
	token, err := m.v2.Encrypt(m.key, claims, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// ValidateToken opens a token and checks its kind and expiry.
func (m *TokenMaker) ValidateToken(tokenString, kind string) (*TokenClaims, error) {
	var claims TokenClaims
	if err := m.v2.Decrypt(tokenString, m.key, &claims, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Kind != kind {
		return nil, ErrInvalidToken
	}
	if m.now().After(claims.Expiry) {
		return nil, ErrTokenExpired
	}
	return &claims, nil
}
