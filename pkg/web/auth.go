package web

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/zephyrlabs/zephyr/internal/log"
	"github.com/zephyrlabs/zephyr/pkg/googleauth"
)

// stateTTL bounds how long a consent redirect may take before the
// state token expires.
const stateTTL = 10 * time.Minute

// AuthFlow runs the Google OAuth consent flow over the web server.
// Each started flow gets a one-time state token bound to an identity;
// the callback exchanges the code and hands the credential blob to
// OnCredentials.
type AuthFlow struct {
	conf            *oauth2.Config
	defaultIdentity string

	// OnCredentials persists the exchanged credential blob.
	OnCredentials func(identity string, blob []byte) error

	mu      sync.Mutex
	pending map[string]pendingAuth
}

type pendingAuth struct {
	identity string
	expires  time.Time
}

// NewAuthFlow creates the consent flow for the given OAuth config.
func NewAuthFlow(conf *oauth2.Config, defaultIdentity string) *AuthFlow {
	return &AuthFlow{
		conf:            conf,
		defaultIdentity: defaultIdentity,
		pending:         make(map[string]pendingAuth),
	}
}

// handleStart redirects the browser to Google's consent page.
func (f *AuthFlow) handleStart(c *fiber.Ctx) error {
	identity := c.Query("identity", f.defaultIdentity)

	state := uuid.NewString()
	f.mu.Lock()
	f.prune()
	f.pending[state] = pendingAuth{identity: identity, expires: time.Now().Add(stateTTL)}
	f.mu.Unlock()

	return c.Redirect(googleauth.AuthURL(f.conf, state), fiber.StatusFound)
}

// handleCallback exchanges the authorization code and stores the credential.
func (f *AuthFlow) handleCallback(c *fiber.Ctx) error {
	state := c.Query("state")
	code := c.Query("code")

	if errMsg := c.Query("error"); errMsg != "" {
		return c.Status(fiber.StatusBadRequest).
			SendString("Authentication was declined: " + errMsg)
	}

	f.mu.Lock()
	p, ok := f.pending[state]
	delete(f.pending, state)
	f.mu.Unlock()

	if !ok || time.Now().After(p.expires) {
		return c.Status(fiber.StatusBadRequest).
			SendString("This sign-in link has expired. Please start over.")
	}

	blob, err := googleauth.Exchange(c.Context(), f.conf, code)
	if err != nil {
		log.Error("oauth exchange failed", "identity", p.identity, "err", err)
		return c.Status(fiber.StatusBadGateway).
			SendString("Could not complete sign-in with Google. Please try again.")
	}

	if f.OnCredentials != nil {
		if err := f.OnCredentials(p.identity, blob); err != nil {
			log.Error("storing credentials failed", "identity", p.identity, "err", err)
			return c.Status(fiber.StatusInternalServerError).
				SendString("Sign-in succeeded but the credentials could not be saved.")
		}
	}

	log.Info("google credentials stored", "identity", p.identity)

	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.SendString(successPage)
}

// prune drops expired states. Caller holds the lock.
func (f *AuthFlow) prune() {
	now := time.Now()
	for state, p := range f.pending {
		if now.After(p.expires) {
			delete(f.pending, state)
		}
	}
}

const successPage = `<!DOCTYPE html>
<html>
<head><title>Zephyr</title>
<style>
  body { font-family: sans-serif; text-align: center; padding-top: 4rem; background: #f6f6f6; }
  .card { display: inline-block; background: white; padding: 2rem 3rem; border-radius: 8px; box-shadow: 0 1px 4px rgba(0,0,0,.15); }
</style>
</head>
<body>
  <div class="card">
    <h1>Connected to Google</h1>
    <p>Zephyr can now manage your calendar, mail and tasks.</p>
    <p>You can close this tab.</p>
  </div>
</body>
</html>`
