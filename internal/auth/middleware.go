package auth

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/market-portal/internal/session"
)

const (
	sessionIDKey    = "portal_session_id"
	sessionStoreKey = "portal_session_store"

	// LoginPath is where unauthenticated navigations are sent.
	LoginPath = "/login"
	// pendingRetryAfter is the Retry-After hint sent with a pending 403.
	pendingRetryAfter = "1"
)

// Sessions opens the session bound to a browser cookie.
type Sessions interface {
	Open(ctx context.Context, id string) (*session.Store, error)
}

// CookieOptions configures the session cookie.
type CookieOptions struct {
	Name   string
	Secure bool
}

// SessionMiddleware binds every request to a session, issuing a cookie when needed.
type SessionMiddleware struct {
	sessions Sessions
	cookie   CookieOptions
	logger   *zap.Logger
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(sessions Sessions, cookie CookieOptions, logger *zap.Logger) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions, cookie: cookie, logger: logger}
}

// Handle loads the session named by the cookie into the request locals.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	id := c.Cookies(m.cookie.Name)
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     m.cookie.Name,
			Value:    id,
			Path:     "/",
			HTTPOnly: true,
			Secure:   m.cookie.Secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}

	store, err := m.sessions.Open(c.UserContext(), id)
	if err != nil {
		m.logger.Error("failed to open session", zap.String("session", id), zap.Error(err))
		return err
	}

	c.Locals(sessionIDKey, id)
	c.Locals(sessionStoreKey, store)
	return c.Next()
}

// SessionID returns the id bound by SessionMiddleware.
func SessionID(c *fiber.Ctx) (string, bool) {
	id, ok := c.Locals(sessionIDKey).(string)
	return id, ok && id != ""
}

// StoreFromContext returns the session store bound by SessionMiddleware.
func StoreFromContext(c *fiber.Ctx) (*session.Store, bool) {
	store, ok := c.Locals(sessionStoreKey).(*session.Store)
	return store, ok && store != nil
}

// RequireAuthenticated redirects to login when no token is held.
func RequireAuthenticated() fiber.Handler {
	return guard(PolicyAuthenticated)
}

// RequirePrivileged redirects to login without a token and renders an
// in-place 403 view for callers whose role is not ADMIN.
func RequirePrivileged() fiber.Handler {
	return guard(PolicyPrivileged)
}

func guard(policy Policy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		store, ok := StoreFromContext(c)
		if !ok {
			return redirectToLogin(c)
		}

		snap := store.Current(c.UserContext())
		decision := Evaluate(policy, snap)
		switch decision.Outcome {
		case OutcomeRedirectLogin:
			return redirectToLogin(c)
		case OutcomeForbidden:
			if decision.Pending {
				// the lookup is shared with any resolution already in flight
				bg := context.WithoutCancel(c.UserContext())
				go func() { _, _ = store.ResolveRole(bg) }()
				c.Set(fiber.HeaderRetryAfter, pendingRetryAfter)
			}
			return c.Status(http.StatusForbidden).JSON(ForbiddenView{
				View:    "forbidden",
				Message: "You do not have permission to view this page.",
				Pending: decision.Pending,
			})
		}
		return c.Next()
	}
}

// ForbiddenView is the body of the in-place 403 view.
type ForbiddenView struct {
	View    string `json:"view"`
	Message string `json:"message"`
	Pending bool   `json:"pending"`
}

func redirectToLogin(c *fiber.Ctx) error {
	target := LoginPath + "?next=" + url.QueryEscape(c.OriginalURL())
	return c.Redirect(target, http.StatusSeeOther)
}
