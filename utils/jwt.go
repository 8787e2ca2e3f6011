package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenPurpose string

const (
	PurposeAccess TokenPurpose = "access"
	PurposeSetup  TokenPurpose = "setup" // chỉ dùng cho bước hoàn tất hồ sơ sau khi login Google
)

var ErrTokenPurpose = errors.New("token purpose mismatch")

type Claims struct {
	UserID  string       `json:"user_id"`
	Role    string       `json:"role,omitempty"`
	Purpose TokenPurpose `json:"purpose"`
	jwt.RegisteredClaims
}

func GenerateToken(secret, userID, role string, purpose TokenPurpose, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:  userID,
		Role:    role,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func VerifyToken(secret, tokenString string, purpose TokenPurpose) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if claims.Purpose != purpose {
		return nil, ErrTokenPurpose
	}
	return claims, nil
}
