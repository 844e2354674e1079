package session

import (
	"context"
	"log/slog"
	"sync"

	"nconnect-cli/internal/api"
	"nconnect-cli/internal/model"
	"nconnect-cli/internal/state"
)

// Phase is the controller's authentication state. Transitions:
//
//	SignedOut → Verifying (login or resumed token)
//	Verifying → Active    (status round-trip succeeded)
//	Verifying → SignedOut (round-trip failed: forced logout)
//	any       → SignedOut (explicit logout)
type Phase int

const (
	SignedOut Phase = iota
	Verifying
	Active
)

func (p Phase) String() string {
	switch p {
	case Verifying:
		return "verifying"
	case Active:
		return "active"
	default:
		return "signed-out"
	}
}

// VerifyOutcome is the result of completing a verification round-trip.
type VerifyOutcome int

const (
	// VerifyStale means the session changed while the round-trip was in
	// flight; the completion was discarded.
	VerifyStale VerifyOutcome = iota
	VerifyOK
	// VerifyFailed means the token was rejected (or the server was
	// unreachable); the controller forced a local logout.
	VerifyFailed
)

// Controller owns the session: the token held by the API client, the
// persisted credentials, and the current phase. Every verification carries a
// generation number; completions for a generation other than the current one
// are discarded, so a logout can never be undone by a late response.
type Controller struct {
	api   *api.Client
	store state.Store
	log   *slog.Logger

	mu    sync.Mutex
	phase Phase
	gen   int
	user  model.UserStatus
}

func NewController(client *api.Client, store state.Store, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{api: client, store: store, log: log}
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// User returns the verified user status. Only meaningful in the Active phase.
func (c *Controller) User() model.UserStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// Resume loads persisted credentials. With a stored token the controller
// enters Verifying and returns the generation the caller must verify under;
// otherwise it stays signed out.
func (c *Controller) Resume(ctx context.Context) (gen int, ok bool) {
	sess, err := c.store.LoadSession(ctx)
	if err != nil {
		c.log.Warn("session resume failed", slog.Any("error", err))
		return 0, false
	}
	if sess.Token == "" {
		return 0, false
	}
	c.api.SetToken(sess.Token)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = Verifying
	c.gen++
	return c.gen, true
}

// Login exchanges credentials for a token and persists it, then enters
// Verifying. The caller follows up with a status round-trip and FinishVerify.
func (c *Controller) Login(ctx context.Context, username, password string) (gen int, err error) {
	token, err := c.api.Login(ctx, username, password)
	if err != nil {
		return 0, err
	}
	if err := c.store.SaveSession(ctx, state.Session{Token: token, Username: username}); err != nil {
		c.log.Warn("persisting session failed", slog.Any("error", err))
	}
	c.api.SetToken(token)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = Verifying
	c.gen++
	return c.gen, nil
}

// FinishVerify applies the result of the status round-trip started under gen.
// A failed verification is a forced logout: the token is dropped locally and
// the persisted credentials are cleared.
func (c *Controller) FinishVerify(ctx context.Context, gen int, st model.UserStatus, err error) VerifyOutcome {
	c.mu.Lock()
	if gen != c.gen || c.phase != Verifying {
		c.mu.Unlock()
		c.log.Debug("discarding stale verification", slog.Int("gen", gen))
		return VerifyStale
	}
	if err != nil {
		c.phase = SignedOut
		c.user = model.UserStatus{}
		c.gen++
		c.mu.Unlock()
		c.log.Warn("session verification failed, forcing logout", slog.Any("error", err))
		c.api.SetToken("")
		if cerr := c.store.ClearSession(ctx); cerr != nil {
			c.log.Warn("clearing session failed", slog.Any("error", cerr))
		}
		return VerifyFailed
	}
	c.phase = Active
	c.user = st
	c.mu.Unlock()
	return VerifyOK
}

// Logout ends the session. The server-side token invalidation is best
// effort; local state is cleared regardless. Any in-flight verification or
// fetch is invalidated by the generation bump.
func (c *Controller) Logout(ctx context.Context) {
	c.mu.Lock()
	c.phase = SignedOut
	c.user = model.UserStatus{}
	c.gen++
	c.mu.Unlock()

	if err := c.api.LogoutRemote(ctx); err != nil {
		c.log.Debug("remote logout failed", slog.Any("error", err))
	}
	c.api.SetToken("")
	if err := c.store.ClearSession(ctx); err != nil {
		c.log.Warn("clearing session failed", slog.Any("error", err))
	}
}
