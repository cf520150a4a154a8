package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"github.com/seu-repo/vox-assistant/internal/domain"
	"github.com/seu-repo/vox-assistant/internal/ports"
)

var Scopes = []string{
	"https://www.googleapis.com/auth/calendar.events",
	"https://www.googleapis.com/auth/gmail.send",
}

// TokenProvider serves access tokens from stored grants, refreshing them
// through the OAuth2 token endpoint when they expire.
type TokenProvider struct {
	config       *oauth2.Config
	integrations ports.IntegrationRepository
	httpClient   *http.Client
	log          *zap.Logger
}

// NewTokenProvider uses Google's endpoint unless tokenURL overrides it.
func NewTokenProvider(clientID, clientSecret, tokenURL string, integrations ports.IntegrationRepository, httpClient *http.Client, log *zap.Logger) *TokenProvider {
	endpoint := googleoauth.Endpoint
	if tokenURL != "" {
		endpoint.TokenURL = tokenURL
	}
	return &TokenProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     endpoint,
			Scopes:       Scopes,
		},
		integrations: integrations,
		httpClient:   httpClient,
		log:          log,
	}
}

func (p *TokenProvider) AccessToken(ctx context.Context, userID, provider string) (string, error) {
	in, err := p.integrations.FindActive(ctx, userID, provider)
	if err != nil {
		return "", fmt.Errorf("load %s integration: %w", provider, err)
	}
	if in == nil || (in.AccessToken == "" && in.RefreshToken == "") {
		return "", domain.ErrNotConnected
	}

	stored := &oauth2.Token{
		AccessToken:  in.AccessToken,
		RefreshToken: in.RefreshToken,
		TokenType:    in.TokenType,
		Expiry:       in.Expiry,
	}
	if stored.Valid() {
		return stored.AccessToken, nil
	}
	if stored.RefreshToken == "" {
		return "", domain.ErrNotConnected
	}

	if p.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}
	fresh, err := p.config.TokenSource(ctx, stored).Token()
	if err != nil {
		return "", p.refreshFailed(ctx, in, err)
	}

	in.AccessToken = fresh.AccessToken
	if fresh.RefreshToken != "" {
		in.RefreshToken = fresh.RefreshToken
	}
	in.TokenType = fresh.TokenType
	in.Expiry = fresh.Expiry
	if err := p.integrations.Save(ctx, in); err != nil {
		// The refreshed token is still usable for this call.
		p.log.Warn("failed to persist refreshed token",
			zap.String("user_id", userID),
			zap.String("provider", provider),
			zap.Error(err),
		)
	}
	return fresh.AccessToken, nil
}

// refreshFailed turns a revoked grant into ErrNotConnected and deactivates it.
func (p *TokenProvider) refreshFailed(ctx context.Context, in *domain.Integration, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.ErrorCode == "invalid_grant" {
		in.Active = false
		if saveErr := p.integrations.Save(ctx, in); saveErr != nil {
			p.log.Warn("failed to deactivate revoked integration", zap.String("user_id", in.UserID), zap.Error(saveErr))
		}
		return fmt.Errorf("%s grant revoked: %w", in.Provider, domain.ErrNotConnected)
	}
	if re != nil {
		status := 0
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		return &domain.ExternalServiceError{Service: "Google OAuth", StatusCode: status, Message: re.ErrorDescription}
	}
	return fmt.Errorf("refresh %s token: %w", in.Provider, err)
}
