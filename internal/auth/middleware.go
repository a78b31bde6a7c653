package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const sessionKey = "session"

// RequireSession resolves the caller's identity and role from the access token
// (Authorization bearer header or accessToken cookie) once per request. The
// role claim is fixed at token issuance; a role change requires a new token.
func RequireSession(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFromRequest(c)
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}

			s, err := parseSession(raw, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}

			c.Set(sessionKey, s)
			return next(c)
		}
	}
}

// SessionFrom returns the session placed on the context by RequireSession.
func SessionFrom(c echo.Context) (Session, error) {
	s, ok := c.Get(sessionKey).(Session)
	if !ok {
		return Session{}, errors.New("no session on request")
	}
	return s, nil
}

func tokenFromRequest(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		if after, ok := strings.CutPrefix(h, "Bearer "); ok {
			return after
		}
	}
	if ck, err := c.Cookie("accessToken"); err == nil {
		return ck.Value
	}
	return ""
}

func parseSession(raw string, secret []byte) (Session, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return Session{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, errors.New("cannot parse claims")
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return Session{}, errors.New("invalid sub claim")
	}

	roleClaim, _ := claims["role"].(string)
	role, err := ParseRole(roleClaim)
	if err != nil {
		return Session{}, errors.New("invalid role claim")
	}

	return Session{UserID: userID, Role: role}, nil
}

// SignSessionToken issues an HS256 access token carrying the session claims.
// Used by the identity provider boundary and by tests.
func SignSessionToken(s Session, secret []byte, expUnix int64) (string, error) {
	claims := jwt.MapClaims{
		"sub":  s.UserID.String(),
		"role": s.Role.String(),
		"exp":  expUnix,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}
