package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/ruturajs19/chat-app/internal/infrastructure/httperr"
)

// ContextUserKey holds the authenticated User in the gin context.
const ContextUserKey = "auth_user"

var ErrInvalidToken = errors.New("auth: invalid token")

// User is the identity embedded in tokens issued by the user service.
type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Claims is the token payload: the user document plus registered claims.
type Claims struct {
	User User `json:"user"`
	jwt.RegisteredClaims
}

// Validator checks HS256 tokens signed with the shared secret.
type Validator struct {
	secret []byte
	log    zerolog.Logger
}

func NewValidator(secret string, log zerolog.Logger) (*Validator, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: secret is required")
	}
	return &Validator{secret: []byte(secret), log: log.With().Str("component", "auth").Logger()}, nil
}

// Parse validates tokenString and returns the user it carries.
func (v *Validator) Parse(tokenString string) (User, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || strings.TrimSpace(claims.User.ID) == "" {
		return User{}, ErrInvalidToken
	}
	return claims.User, nil
}

// Issue signs a token for u. The user service owns issuance in production;
// this exists for local tooling and tests.
func (v *Validator) Issue(u User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		User: u,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Middleware rejects requests without a valid bearer token.
func (v *Validator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := TokenFromRequest(c.Request)
		if tokenString == "" {
			httperr.Unauthorized(c, "please login - no auth header")
			return
		}
		user, err := v.Parse(tokenString)
		if err != nil {
			v.log.Debug().Err(err).Msg("jwt validation failed")
			httperr.Unauthorized(c, "invalid token")
			return
		}
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// TokenFromRequest reads a bearer token from the Authorization header or,
// for websocket handshakes from browsers, the token query parameter.
func TokenFromRequest(r *http.Request) string {
	if t := bearerToken(r.Header.Get("Authorization")); t != "" {
		return t
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// CurrentUser returns the user set by Middleware.
func CurrentUser(c *gin.Context) (User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return User{}, false
	}
	u, ok := v.(User)
	return u, ok
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
