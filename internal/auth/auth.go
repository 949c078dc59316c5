// Package auth guards the HTTP bridge with a shared bearer token.
//
// It intentionally avoids policy decisions and storage concerns.
package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var ErrUnauthorized = errors.New("auth: unauthorized")

// Validator validates an authentication token.
type Validator interface {
	Validate(token string) error
}

// StaticToken is a validator for a single shared token.
type StaticToken struct {
	Token string
}

func (s StaticToken) Validate(token string) error {
	if s.Token == "" {
		return ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(s.Token), []byte(token)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// FuncValidator adapts a function into a Validator.
type FuncValidator func(token string) error

func (f FuncValidator) Validate(token string) error {
	return f(token)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireToken rejects requests whose bearer token fails v with 401.
// A nil validator admits every request.
func RequireToken(v Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if v == nil {
			c.Next()
			return
		}
		if err := v.Validate(BearerToken(c.GetHeader("Authorization"))); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
