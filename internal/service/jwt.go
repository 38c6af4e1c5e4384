package service

import (
	"errors"
	"time"

	"kanban_board/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// JWT issues and verifies HS256 access tokens.
type JWT struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWT(secret string, ttl time.Duration) *JWT {
	if secret == "" {
		panic("JWT secret is not set")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &JWT{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate signs an access token for u and returns it with its expiry.
func (j *JWT) Generate(u domain.AuthUser) (string, time.Time, error) {
	now := j.now()
	exp := now.Add(j.ttl)
	meta := make(map[string]any, len(u.Metadata))
	for k, v := range u.Metadata {
		meta[k] = v
	}
	claims := jwt.MapClaims{
		"sub":           u.ID,
		"email":         u.Email,
		"user_metadata": meta,
		"exp":           exp.Unix(),
		"iat":           now.Unix(),
		"nbf":           now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secret)
	return signed, exp, err
}

// Parse validates the token and returns the user it was issued for.
func (j *JWT) Parse(tokenString string) (domain.AuthUser, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return j.secret, nil
	}, jwt.WithTimeFunc(j.now), jwt.WithExpirationRequired())

	if err != nil || !token.Valid {
		return domain.AuthUser{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.AuthUser{}, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return domain.AuthUser{}, errors.New("sub not found")
	}
	email, _ := claims["email"].(string)

	u := domain.AuthUser{ID: sub, Email: email, Metadata: map[string]string{}}
	if meta, ok := claims["user_metadata"].(map[string]any); ok {
		for k, v := range meta {
			if s, ok := v.(string); ok {
				u.Metadata[k] = s
			}
		}
	}
	return u, nil
}
