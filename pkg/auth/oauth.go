package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/harrisonrobin/taskboard/pkg/logging"
	"github.com/harrisonrobin/taskboard/pkg/storage"
)

const (
	// ClientSecretsFile is the Google API credentials file, read from the
	// config directory.
	ClientSecretsFile = "credentials.json"

	// TokenKey is the slot key holding the user's OAuth token.
	TokenKey = "google-token"

	// LocalhostAuthPort is the port the local web server listens on to
	// capture the OAuth redirect.
	LocalhostAuthPort = "6789"

	authTimeout = 5 * time.Minute
)

// ErrNoToken is returned when no token is stored and interactive login was
// not requested.
var ErrNoToken = errors.New("no stored google token, run `taskboard auth` first")

// Scopes are the calendar permissions the sync needs.
var Scopes = []string{
	calendar.CalendarEventsScope,
	calendar.CalendarReadonlyScope,
}

var log = logging.Component("auth")

// GetConfig creates an oauth2.Config from the client secrets file in
// configDir.
func GetConfig(configDir string, scopes []string) (*oauth2.Config, error) {
	clientSecretsFile := filepath.Join(configDir, ClientSecretsFile)
	b, err := os.ReadFile(clientSecretsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file %s: %w", clientSecretsFile, err)
	}

	config, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	config.RedirectURL = normalizeRedirect(config.RedirectURL)
	return config, nil
}

// normalizeRedirect forces localhost and out-of-band redirects onto
// LocalhostAuthPort so that the listener and the registered URI agree.
func normalizeRedirect(redirect string) string {
	if redirect == "urn:ietf:wg:oauth:2.0:oob" {
		fixed := fmt.Sprintf("http://localhost:%s/oauth2callback", LocalhostAuthPort)
		log.Infof("Event ID: AUTH_REDIRECT_OVERRIDE, Description: replacing OOB redirect with %s", fixed)
		return fixed
	}

	parsedURL, err := url.Parse(redirect)
	if err != nil {
		log.Warnf("Event ID: AUTH_REDIRECT_UNPARSABLE, Description: could not parse redirect %q: %v", redirect, err)
		return redirect
	}
	host := parsedURL.Hostname()
	if host != "localhost" && host != "127.0.0.1" {
		log.Warnf("Event ID: AUTH_REDIRECT_REMOTE, Description: redirect %s is not a localhost callback", redirect)
		return redirect
	}
	if parsedURL.Port() != LocalhostAuthPort {
		parsedURL.Host = net.JoinHostPort(host, LocalhostAuthPort)
	}
	return parsedURL.String()
}

// GetClient returns an authenticated *http.Client. A stored token is reused
// and refreshed tokens are written back to the slot. With interactive set, a
// missing token starts the browser flow; otherwise ErrNoToken is returned.
func GetClient(ctx context.Context, slot storage.Slot, configDir string, scopes []string, interactive bool) (*http.Client, error) {
	config, err := GetConfig(configDir, scopes)
	if err != nil {
		return nil, err
	}

	tok, found, err := LoadToken(slot)
	if err != nil {
		return nil, err
	}
	if !found {
		if !interactive {
			return nil, ErrNoToken
		}
		log.Info("Event ID: AUTH_WEB_FLOW, Description: no stored token, starting web authorization")
		tok, err = getTokenFromWeb(ctx, config)
		if err != nil {
			return nil, fmt.Errorf("failed to get token from web: %w", err)
		}
		if err := SaveToken(slot, tok); err != nil {
			return nil, err
		}
	}

	src := &savingTokenSource{
		base: config.TokenSource(ctx, tok),
		slot: slot,
		last: tok,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, src)), nil
}

// Login runs the browser flow unconditionally and stores the new token.
func Login(ctx context.Context, slot storage.Slot, configDir string) error {
	config, err := GetConfig(configDir, Scopes)
	if err != nil {
		return err
	}
	tok, err := getTokenFromWeb(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to get token from web: %w", err)
	}
	return SaveToken(slot, tok)
}

// savingTokenSource persists a token whenever the underlying source hands
// out a different one.
type savingTokenSource struct {
	base oauth2.TokenSource
	slot storage.Slot

	mu   sync.Mutex
	last *oauth2.Token
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil || tok.AccessToken != s.last.AccessToken || tok.RefreshToken != s.last.RefreshToken {
		log.Info("Event ID: AUTH_TOKEN_REFRESHED, Description: token was refreshed, saving")
		if err := SaveToken(s.slot, tok); err != nil {
			log.Warnf("Event ID: AUTH_TOKEN_SAVE_FAILED, Description: %v", err)
		}
		s.last = tok
	}
	return tok, nil
}

// getTokenFromWeb runs the authorization code flow, capturing the redirect
// on a local web server.
func getTokenFromWeb(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", LocalhostAuthPort))
	if err != nil {
		return nil, fmt.Errorf("failed to start listener on port %s: %w", LocalhostAuthPort, err)
	}
	defer listener.Close()

	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := r.URL.Query().Get("code")
			if code == "" {
				http.Error(w, "Authorization code not found", http.StatusBadRequest)
				select {
				case errCh <- fmt.Errorf("authorization code not found in redirect URL"):
				default:
				}
				return
			}
			fmt.Fprintf(w, "Authentication successful! You can close this window.")
			select {
			case codeCh <- code:
			default:
			}
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}
	defer server.Shutdown(context.Background())

	go func() {
		log.Infof("Event ID: AUTH_LISTENING, Description: waiting for redirect on %s", config.RedirectURL)
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			select {
			case errCh <- fmt.Errorf("HTTP server error: %w", err):
			default:
			}
		}
	}()

	// AccessTypeOffline makes Google return a refresh token.
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Printf("Please open the following URL in your browser to authorize taskboard:\n%s\n", authURL)

	select {
	case authCode := <-codeCh:
		exchangeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		tok, err := config.Exchange(exchangeCtx, authCode)
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve token from Google: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(authTimeout):
		return nil, fmt.Errorf("authorization timed out. Please try again")
	}
}

// LoadToken reads the stored token, if any.
func LoadToken(slot storage.Slot) (*oauth2.Token, bool, error) {
	tok := &oauth2.Token{}
	found, err := storage.GetJSON(slot, TokenKey, tok)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode stored token: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	return tok, true, nil
}

// SaveToken stores tok under TokenKey.
func SaveToken(slot storage.Slot, tok *oauth2.Token) error {
	if err := storage.SetJSON(slot, TokenKey, tok); err != nil {
		return fmt.Errorf("unable to cache OAuth token: %w", err)
	}
	return nil
}

// GetCalendarService creates an authenticated Google Calendar service.
func GetCalendarService(ctx context.Context, slot storage.Slot, configDir string) (*calendar.Service, error) {
	client, err := GetClient(ctx, slot, configDir, Scopes, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticated client for Calendar API: %w", err)
	}

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Google Calendar service: %w", err)
	}
	return srv, nil
}
