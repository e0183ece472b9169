package utils

import (
	"testing"
	"time"

	"HospitalMS/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestNewTokenMakerRejectsShortKey(t *testing.T) {
	_, err := NewTokenMaker("short")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestGenerateAndValidateTokens(t *testing.T) {
	maker, err := NewTokenMaker(testKey)
	require.NoError(t, err)

	hospital := "h-1"
	p := models.Principal{UserID: "u-1", Email: "a@hospital.iq", Role: models.RoleDoctor, HospitalID: &hospital}
	access, refresh, err := maker.GenerateTokens(p)
	require.NoError(t, err)
	assert.NotEqual(t, access, refresh)

	claims, err := maker.ValidateToken(access, TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, p, claims.Principal())

	_, err = maker.ValidateToken(access, TokenKindRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = maker.ValidateToken("v2.local.garbage", TokenKindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewTokenMaker("abcdef0123456789abcdef0123456789")
	require.NoError(t, err)
	_, err = other.ValidateToken(access, TokenKindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredToken(t *testing.T) {
	maker, err := NewTokenMaker(testKey)
	require.NoError(t, err)

	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	maker.now = func() time.Time { return issued }
	access, _, err := maker.GenerateTokens(models.Principal{UserID: "u-1", Role: models.RoleAdmin})
	require.NoError(t, err)

	maker.now = func() time.Time { return issued.Add(AccessTokenExpiry + time.Minute) }
	_, err = maker.ValidateToken(access, TokenKindAccess)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
