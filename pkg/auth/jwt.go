package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const audience = "zenith-web"

// Claims is the payload of a guest session token.
type Claims struct {
	GuestID int64  `json:"guest_id"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

func NewSessionToken(guestID int64, name, email, secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("session secret is empty")
	}
	now := time.Now()
	claims := Claims{
		GuestID: guestID,
		Name:    name,
		Email:   email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(guestID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Audience:  []string{audience},
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func Parse(tokenString, secret string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
	)
	if err != nil {
		return nil, err
	}
	if claims, ok := tok.Claims.(*Claims); ok && tok.Valid && claims.GuestID > 0 {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
