package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auth-broker/internal/provider"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Issuer is Google's OIDC issuer, used to discover the token endpoint.
const Issuer = "https://accounts.google.com"

type Client struct {
	oauthConfig *oauth2.Config
}

func New(
	ctx context.Context,
	issuer string,
	clientID string,
	clientSecret string,
	redirectURL string,
	scopes []string,
) (*Client, error) {

	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("google oauth config missing required fields")
	}

	oidcProvider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to init google oidc provider: %w", err)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     oidcProvider.Endpoint(),
		Scopes:       scopes,
	}

	return &Client{
		oauthConfig: oauthCfg,
	}, nil
}

// AuthCodeURL builds the consent-screen URL. Offline access and forced
// consent are required: without them Google only issues a refresh token
// on the very first authorization.
func (c *Client) AuthCodeURL() string {
	return c.oauthConfig.AuthCodeURL(
		"",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

func (c *Client) ExchangeCode(
	ctx context.Context,
	code string,
) (*provider.TokenResult, error) {

	token, err := c.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, normalizeError("code exchange", err)
	}

	return &provider.TokenResult{
		AccessToken:  token.AccessToken,
		ExpiresIn:    lifetimeSeconds(token),
		RefreshToken: token.RefreshToken,
	}, nil
}

func (c *Client) ExchangeRefresh(
	ctx context.Context,
	refreshToken string,
) (*provider.TokenResult, error) {

	src := c.oauthConfig.TokenSource(ctx, &oauth2.Token{
		RefreshToken: refreshToken,
	})

	token, err := src.Token()
	if err != nil {
		return nil, normalizeError("refresh exchange", err)
	}

	result := &provider.TokenResult{
		AccessToken: token.AccessToken,
		ExpiresIn:   lifetimeSeconds(token),
	}

	// The token source echoes the old refresh token when the provider
	// did not rotate it. Only a genuinely new credential is reported.
	if token.RefreshToken != "" && token.RefreshToken != refreshToken {
		result.RefreshToken = token.RefreshToken
	}

	return result, nil
}

// normalizeError maps a structured token-endpoint rejection to a
// *provider.Error with the error code passed through verbatim.
// Transport-level failures stay plain wrapped errors.
func normalizeError(op string, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.ErrorCode != "" {
		return &provider.Error{
			Code:        retrieveErr.ErrorCode,
			Description: retrieveErr.ErrorDescription,
		}
	}
	return fmt.Errorf("google: %s failed: %w", op, err)
}

func lifetimeSeconds(token *oauth2.Token) int64 {
	if token.ExpiresIn > 0 {
		return token.ExpiresIn
	}
	if token.Expiry.IsZero() {
		return 0
	}
	return int64(time.Until(token.Expiry).Seconds())
}
