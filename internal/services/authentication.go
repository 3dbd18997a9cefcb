package services

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"bazaar/internal/models"
)

// CustomClaims mirror the token payload issued by the external identity
// provider. The engine only trusts the verified subject and email; raw
// credentials never reach any other layer.
type CustomClaims struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type Authentication struct {
	secret string
}

func NewAuthentication(secret string) (*Authentication, error) {
	return &Authentication{secret}, nil
}

func (authentication *Authentication) Validate(token string) (*models.SubjectFromAuth, error) {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(authentication.secret), nil
	}

	jwtToken, err := jwt.ParseWithClaims(token, &CustomClaims{}, keyFunc)
	if err != nil {
		return nil, err
	}

	claims, ok := jwtToken.Claims.(*CustomClaims)
	if !ok || claims.Subject == "" {
		return nil, errors.New("invalid token claims")
	}

	return &models.SubjectFromAuth{
		SubjectID: claims.Subject,
		Email:     claims.Email,
		Username:  claims.Username,
	}, nil
}
