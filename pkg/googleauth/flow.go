package googleauth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/zephyrlabs/zephyr/internal/httpc"
)

// Scopes requested during the consent flow. They cover every capability
// client: calendar events, sending and reading mail, and task management.
var Scopes = []string{
	"https://www.googleapis.com/auth/calendar.events",
	"https://www.googleapis.com/auth/gmail.send",
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/tasks",
}

// NewConfig builds the OAuth config for Google's consent flow.
func NewConfig(clientID, clientSecret, redirectURL string) (*oauth2.Config, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("googleauth: GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required")
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
		Endpoint:     google.Endpoint,
	}, nil
}

// AuthURL returns the consent URL for the given state token. Offline
// access is requested so a refresh token is issued.
func AuthURL(conf *oauth2.Config, state string) string {
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a serialized credential blob,
// the shape the credential store persists.
func Exchange(ctx context.Context, conf *oauth2.Config, code string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Run the token exchange through the shared client so it has timeouts.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpc.Client)

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("googleauth: exchanging code: %w", err)
	}

	blob, err := json.Marshal(token)
	if err != nil {
		return nil, fmt.Errorf("googleauth: serializing token: %w", err)
	}
	return blob, nil
}
