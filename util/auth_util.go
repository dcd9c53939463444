package util

import (
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	rolePlayer   = "PLAYER"
	roleReceiver = "RECEIVER"
)

// IssuePlayerToken signs a token that lets its holder act in one game.
func IssuePlayerToken(secret string, gameID string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"game": gameID,
		"role": rolePlayer,
		"iat":  time.Now().Unix(),
	}
	if ttl > 0 {
		claims["exp"] = time.Now().Add(ttl).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func IssueReceiverToken(secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"role": roleReceiver,
		"iat":  time.Now().Unix(),
	}
	if ttl > 0 {
		claims["exp"] = time.Now().Add(ttl).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func IsValidPlayerToken(secret string, tokenString string, gameID string) bool {
	claims, ok := parseClaims(secret, tokenString)
	if !ok {
		return false
	}
	return claims["game"] == gameID && claims["role"] == rolePlayer
}

func IsValidReceiver(secret string, tokenString string) bool {
	claims, ok := parseClaims(secret, tokenString)
	if !ok {
		return false
	}
	return claims["role"] == roleReceiver
}

func parseClaims(secret string, tokenString string) (jwt.MapClaims, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		slog.Warn("failed to verify token", "error", err)
		return nil, false
	}
	if !token.Valid {
		slog.Warn("token is not valid")
		return nil, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		slog.Warn("failed to read token claims")
		return nil, false
	}
	return claims, true
}
