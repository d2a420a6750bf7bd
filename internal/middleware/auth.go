package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cyphera/cyphera-agentpay/internal/constants"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const subjectKey = "subject"

// ErrInvalidToken is returned when the provided token is invalid
var ErrInvalidToken = errors.New("invalid token")

// JWTAuth validates HS256 bearer tokens signed with a shared secret. The token
// subject is the wallet address of the user.
type JWTAuth struct {
	secret []byte
	leeway time.Duration
}

// NewJWTAuth creates a new bearer token validator
func NewJWTAuth(secret string) *JWTAuth {
	return &JWTAuth{secret: []byte(secret), leeway: time.Minute}
}

// ValidateToken parses a bearer token and returns its subject.
func (a *JWTAuth) ValidateToken(tokenString string) (string, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return "", ErrInvalidToken
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(a.leeway),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// RequireAuth rejects requests without a valid bearer token and stores the
// token subject in the Gin context.
func (a *JWTAuth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   constants.UnauthorizedError,
				"details": "No authentication provided",
			})
			return
		}

		subject, err := a.ValidateToken(authHeader)
		if err != nil {
			LogWithCorrelationID(c.Request.Context()).Debug("Token validation failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   constants.UnauthorizedError,
				"details": "Invalid or expired token",
			})
			return
		}

		c.Set(subjectKey, subject)
		c.Next()
	}
}

// GetSubject returns the authenticated subject, or "" for anonymous requests.
func GetSubject(c *gin.Context) string {
	if v, ok := c.Get(subjectKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// IssueToken signs a token for subject. Used by operators and tests.
func (a *JWTAuth) IssueToken(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}
