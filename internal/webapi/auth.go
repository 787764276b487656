package webapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// moderatorTokenTTL bounds how long a minted moderator token is valid.
const moderatorTokenTTL = 12 * time.Hour

// TokenIssuer mints and verifies HMAC-signed moderator tokens from the
// shared admin secret.
type TokenIssuer struct {
	secret []byte
	issuer string
}

// NewTokenIssuer creates a TokenIssuer. An empty secret disables the
// moderator surface entirely.
func NewTokenIssuer(secret, issuer string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), issuer: issuer}
}

// Enabled reports whether a secret is configured.
func (t *TokenIssuer) Enabled() bool { return len(t.secret) > 0 }

// Mint returns a signed moderator token.
func (t *TokenIssuer) Mint(moderator string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    t.issuer,
		Subject:   moderator,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(moderatorTokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify parses and validates a moderator token, returning the subject.
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithIssuer(t.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	claims := token.Claims.(*jwt.RegisteredClaims)
	return claims.Subject, nil
}

// RequireModeratorToken is a Gin middleware enforcing a valid bearer token
// on the admin surface.
func RequireModeratorToken(issuer *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !issuer.Enabled() {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "moderator surface disabled: no admin secret configured"})
			return
		}

		header := c.GetHeader("Authorization")
		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == "" || tokenString == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bearer token required"})
			return
		}

		moderator, err := issuer.Verify(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("moderator", moderator)
		c.Next()
	}
}
