package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the account identity inside the signed token. The
// interlocutor claim lets chat handlers address the dialogue engine
// without a database round trip.
type Claims struct {
	UserID       uint   `json:"userId"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	Interlocutor string `json:"interlocutor"`
	jwt.RegisteredClaims
}

func GenerateJWT(secret string, userId uint, username, role, interlocutor string, duration time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID:       userId,
		Username:     username,
		Role:         role,
		Interlocutor: interlocutor,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseJWT(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
