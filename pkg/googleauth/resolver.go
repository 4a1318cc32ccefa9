// Package googleauth turns stored credential blobs into usable Google
// OAuth credentials. It performs no network calls and no refresh of its
// own; expired tokens surface when a capability client uses them, with
// renewal delegated to the oauth2 library's token source.
package googleauth

import (
	"context"
	"encoding/json"

	"golang.org/x/oauth2"

	"github.com/zephyrlabs/zephyr/internal/log"
	"github.com/zephyrlabs/zephyr/pkg/credstore"
)

// Credential is an in-memory credential reconstructed from a stored blob.
// It lives for the duration of one tool invocation and is never persisted.
type Credential struct {
	token *oauth2.Token
	conf  *oauth2.Config
}

// Token returns the underlying OAuth token.
func (c *Credential) Token() *oauth2.Token {
	return c.token
}

// TokenSource returns a token source for Google API clients. With an OAuth
// config present the source refreshes expired tokens through the library;
// otherwise the token is used as-is.
func (c *Credential) TokenSource(ctx context.Context) oauth2.TokenSource {
	if c.conf != nil {
		return c.conf.TokenSource(ctx, c.token)
	}
	return oauth2.StaticTokenSource(c.token)
}

// Resolver maps user identities to typed credentials via the store.
type Resolver struct {
	store credstore.Store
	conf  *oauth2.Config
}

// NewResolver creates a resolver backed by the given store. conf may be
// nil when no OAuth client is configured; tokens then cannot be refreshed.
func NewResolver(store credstore.Store, conf *oauth2.Config) *Resolver {
	return &Resolver{store: store, conf: conf}
}

// Resolve loads and deserializes the credential for an identity.
//
// Returns (nil, nil) when no record exists or the stored blob does not
// parse: both look like "never authenticated" downstream, which is the
// safe default. A store connectivity failure is returned as an error so
// callers can tell infrastructure trouble from a missing login.
func (r *Resolver) Resolve(ctx context.Context, identity string) (*Credential, error) {
	blob, err := r.store.Load(ctx, identity)
	if err != nil {
		return nil, err
	}
	if blob == nil {
		return nil, nil
	}

	var token oauth2.Token
	if err := json.Unmarshal(blob, &token); err != nil {
		log.Warn("stored credential blob is malformed, treating as absent",
			"identity", identity, "err", err)
		return nil, nil
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		log.Warn("stored credential blob has no tokens, treating as absent",
			"identity", identity)
		return nil, nil
	}

	return &Credential{token: &token, conf: r.conf}, nil
}
