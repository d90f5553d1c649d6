package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var errInvalidToken = errors.New("invalid or expired token")

// Claims identifies one session of one user.
type Claims struct {
	UserID    int
	SessionID string
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (ti *TokenIssuer) TTL() time.Duration { return ti.ttl }

// Issue creates a token for userID with a fresh session id.
func (ti *TokenIssuer) Issue(userID int) (string, Claims, error) {
	claims := Claims{
		UserID:    userID,
		SessionID: uuid.NewString(),
		ExpiresAt: ti.now().Add(ti.ttl),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"jti":     claims.SessionID,
		"exp":     claims.ExpiresAt.Unix(),
	})
	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse verifies the signature and expiry of tokenString.
func (ti *TokenIssuer) Parse(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ti.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, errInvalidToken
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errInvalidToken
	}
	exp, ok := mc["exp"].(float64)
	if !ok || int64(exp) < ti.now().Unix() {
		return Claims{}, errInvalidToken
	}
	userID, ok := mc["user_id"].(float64)
	if !ok {
		return Claims{}, errInvalidToken
	}
	jti, ok := mc["jti"].(string)
	if !ok || jti == "" {
		return Claims{}, errInvalidToken
	}
	return Claims{
		UserID:    int(userID),
		SessionID: jti,
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}
