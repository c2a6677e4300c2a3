package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/clubstride/hourtrack/internal/models"
	"github.com/clubstride/hourtrack/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const sessionCookiePurpose = "session"

var errMissingSessionCookie = errors.New("missing session cookie")

// sessionClaims is the signed envelope stored in the session cookie. The JWT ID is the
// server-side session token; the store stays the authority on whether it is still live.
type sessionClaims struct {
	UserID uint   `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (handler *Handler) setSessionCookie(c *fiber.Ctx, user models.User, session services.Session) error {
	expiresAt := session.CreatedAt.Add(handler.auth.Sessions().MaxLifetime())
	claims := sessionClaims{
		UserID: user.ID,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.Token,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(handler.secretKey)
	if err != nil {
		return err
	}
	sealed, err := handler.cookieCodec.seal(sessionCookiePurpose, []byte(signed))
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     authCookieName,
		Value:    sealed,
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
	})
	return nil
}

func (handler *Handler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}

// sessionClaimsFromCookie opens and verifies the session cookie.
func (handler *Handler) sessionClaimsFromCookie(c *fiber.Ctx) (*sessionClaims, error) {
	raw := c.Cookies(authCookieName)
	if raw == "" {
		return nil, errMissingSessionCookie
	}

	signed, err := handler.cookieCodec.open(sessionCookiePurpose, raw)
	if err != nil {
		return nil, services.ErrSessionExpired
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(string(signed), claims, func(*jwt.Token) (any, error) {
		return handler.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired(), jwt.WithTimeFunc(handler.now))
	if err != nil || !token.Valid || claims.ID == "" {
		return nil, services.ErrSessionExpired
	}
	return claims, nil
}

// authenticateRequest resolves the session cookie against the live session store. The signed
// user must still own the session it names.
func (handler *Handler) authenticateRequest(c *fiber.Ctx) (models.User, services.Session, error) {
	claims, err := handler.sessionClaimsFromCookie(c)
	if err != nil {
		return models.User{}, services.Session{}, err
	}
	user, session, err := handler.auth.Authenticate(claims.ID, handler.now())
	if err != nil {
		return models.User{}, services.Session{}, err
	}
	if session.UserID != claims.UserID {
		handler.auth.Logout(claims.ID)
		return models.User{}, services.Session{}, services.ErrSessionExpired
	}
	return user, session, nil
}
