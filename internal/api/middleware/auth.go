package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
)

// Context keys set by Auth and OptionalAuth.
const (
	UserIDKey   = "user_id"
	UsernameKey = "username"
	RoleKey     = "role"
)

// tokenQueryParam carries the token for browser websocket clients, which
// cannot set an Authorization header on the upgrade request.
const tokenQueryParam = "access_token"

var (
	errMissingToken = echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	errBadHeader    = echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	errBadToken     = echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
)

// Auth validates the JWT and injects the caller identity into context.
// Requests without a valid token are rejected with 401.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := parseRequestToken(c, jwtSecret)
			if err != nil {
				return err
			}
			setIdentity(c, claims)
			return next(c)
		}
	}
}

// OptionalAuth behaves like Auth when a token is present and lets the
// request through anonymously when it is not. A token that is present but
// invalid is still rejected.
func OptionalAuth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := parseRequestToken(c, jwtSecret)
			if errors.Is(err, errMissingToken) {
				return next(c)
			}
			if err != nil {
				return err
			}
			setIdentity(c, claims)
			return next(c)
		}
	}
}

func parseRequestToken(c echo.Context, jwtSecret string) (jwt.MapClaims, error) {
	raw, err := extractToken(c)
	if err != nil {
		return nil, err
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return nil, errBadToken
	}

	if sub, _ := claims.GetSubject(); sub == "" {
		return nil, errBadToken
	}
	return claims, nil
}

func extractToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		if q := c.QueryParam(tokenQueryParam); q != "" {
			return q, nil
		}
		return "", errMissingToken
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", errBadHeader
	}
	return parts[1], nil
}

func setIdentity(c echo.Context, claims jwt.MapClaims) {
	sub, _ := claims.GetSubject()
	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)
	if role == "" {
		role = domain.RoleUser
	}

	c.Set(UserIDKey, sub)
	c.Set(UsernameKey, username)
	c.Set(RoleKey, role)
}
