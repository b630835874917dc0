package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
	githubUserURL     = "https://api.github.com/user"
	githubEmailsURL   = "https://api.github.com/user/emails"
)

// ProviderCredentials are the per-provider settings read from configuration.
type ProviderCredentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Provider is one OAuth identity provider. RedirectURI is the configured
// callback; when empty the handler derives one outside production.
type Provider struct {
	Name        string
	OAuth2      oauth2.Config
	RedirectURI string
	UserInfoURL string
	EmailsURL   string
	HTTPClient  *http.Client
}

// NewProviderRegistry builds the static provider map.
func NewProviderRegistry(google, github ProviderCredentials) map[string]*Provider {
	client := &http.Client{Timeout: 10 * time.Second}

	return map[string]*Provider{
		ProviderGoogle: {
			Name: ProviderGoogle,
			OAuth2: oauth2.Config{
				ClientID:     google.ClientID,
				ClientSecret: google.ClientSecret,
				Endpoint:     endpoints.Google,
				Scopes:       []string{"openid", "email", "profile"},
			},
			RedirectURI: google.RedirectURI,
			UserInfoURL: googleUserInfoURL,
			HTTPClient:  client,
		},
		ProviderGitHub: {
			Name: ProviderGitHub,
			OAuth2: oauth2.Config{
				ClientID:     github.ClientID,
				ClientSecret: github.ClientSecret,
				Endpoint:     endpoints.GitHub,
				Scopes:       []string{"read:user", "user:email"},
			},
			RedirectURI: github.RedirectURI,
			UserInfoURL: githubUserURL,
			EmailsURL:   githubEmailsURL,
			HTTPClient:  client,
		},
	}
}

func (p *Provider) Configured() bool {
	return p.OAuth2.ClientID != "" && p.OAuth2.ClientSecret != ""
}

func (p *Provider) config(redirectURI string) *oauth2.Config {
	cfg := p.OAuth2
	cfg.RedirectURL = redirectURI
	return &cfg
}

func (p *Provider) ctx(ctx context.Context) context.Context {
	if p.HTTPClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, p.HTTPClient)
}

// AuthCodeURL is the provider consent URL for one login attempt, bound to
// state and to the PKCE verifier.
func (p *Provider) AuthCodeURL(state, verifier, redirectURI string) string {
	return p.config(redirectURI).AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

func (p *Provider) Exchange(ctx context.Context, code, verifier, redirectURI string) (*oauth2.Token, error) {
	token, err := p.config(redirectURI).Exchange(p.ctx(ctx), code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOAuthProtocol.With("Failed to exchange authorization code"), err)
	}
	return token, nil
}

// FetchProfile asks the provider who the token belongs to.
func (p *Provider) FetchProfile(ctx context.Context, token *oauth2.Token) (Profile, error) {
	client := p.config("").Client(p.ctx(ctx), token)

	switch p.Name {
	case ProviderGoogle:
		return p.fetchGoogle(ctx, client)
	case ProviderGitHub:
		return p.fetchGitHub(ctx, client)
	default:
		return Profile{}, ErrOAuthConfiguration.Withf("Unsupported OAuth provider %q", p.Name)
	}
}

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

func (p *Provider) fetchGoogle(ctx context.Context, client *http.Client) (Profile, error) {
	var info googleUserInfo
	if err := getJSON(ctx, client, p.UserInfoURL, &info); err != nil {
		return Profile{}, err
	}
	profile := Profile{
		Provider:   ProviderGoogle,
		ProviderID: info.Sub,
		Name:       info.Name,
	}
	// Unverified addresses never reach account linking.
	if info.EmailVerified {
		profile.Email = info.Email
	}
	return profile, nil
}

type githubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (p *Provider) fetchGitHub(ctx context.Context, client *http.Client) (Profile, error) {
	var user githubUser
	if err := getJSON(ctx, client, p.UserInfoURL, &user); err != nil {
		return Profile{}, err
	}

	profile := Profile{
		Provider: ProviderGitHub,
		Name:     user.Name,
		Username: user.Login,
	}
	if user.ID != 0 {
		profile.ProviderID = strconv.FormatInt(user.ID, 10)
	}
	if profile.Name == "" {
		profile.Name = user.Login
	}

	// /user carries no verification flag, so the address always comes
	// from the emails endpoint.
	if p.EmailsURL != "" {
		var emails []githubEmail
		if err := getJSON(ctx, client, p.EmailsURL, &emails); err != nil {
			return Profile{}, err
		}
		profile.Email = verifiedEmail(emails, user.Email)
	}
	return profile, nil
}

// verifiedEmail returns public when it is a verified address, otherwise the
// verified primary. Unverified addresses yield "".
func verifiedEmail(emails []githubEmail, public string) string {
	if public != "" {
		for _, e := range emails {
			if e.Verified && strings.EqualFold(e.Email, public) {
				return e.Email
			}
		}
	}
	return primaryEmail(emails)
}

// primaryEmail returns the primary address if it is verified.
func primaryEmail(emails []githubEmail) string {
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email
		}
	}
	return ""
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create profile request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOAuthProtocol.With("Failed to fetch OAuth profile"), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s",
			ErrOAuthProtocol.With("Failed to fetch OAuth profile"), resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrOAuthProtocol.With("Invalid OAuth profile response"), err)
	}
	return nil
}
