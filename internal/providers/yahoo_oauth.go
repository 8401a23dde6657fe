package providers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stitts-dev/hoops-oracle/internal/models"
)

// ErrNotAuthorized means no usable Yahoo token is available
var ErrNotAuthorized = errors.New("yahoo account not authorized")

const yahooProvider = "yahoo"

// YahooEndpoint is Yahoo's OAuth 2.0 endpoint
var YahooEndpoint = oauth2.Endpoint{
	AuthURL:   "https://api.login.yahoo.com/oauth2/request_auth",
	TokenURL:  "https://api.login.yahoo.com/oauth2/get_token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// NewYahooOAuthConfig builds the OAuth client configuration
func NewYahooOAuthConfig(clientID, clientSecret, redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Endpoint:     YahooEndpoint,
	}
}

// TokenRepository persists the Yahoo token between restarts
type TokenRepository interface {
	Load(ctx context.Context) (*oauth2.Token, error)
	Save(ctx context.Context, token *oauth2.Token) error
}

// GormTokenRepository stores the token in the oauth_tokens table
type GormTokenRepository struct {
	db *gorm.DB
}

func NewGormTokenRepository(db *gorm.DB) *GormTokenRepository {
	return &GormTokenRepository{db: db}
}

func (r *GormTokenRepository) Load(ctx context.Context) (*oauth2.Token, error) {
	var row models.OAuthToken
	err := r.db.WithContext(ctx).Where("provider = ?", yahooProvider).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotAuthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load oauth token: %w", err)
	}
	return &oauth2.Token{
		AccessToken:  row.AccessToken,
		RefreshToken: row.RefreshToken,
		TokenType:    row.TokenType,
		Expiry:       row.ExpiresAt,
	}, nil
}

func (r *GormTokenRepository) Save(ctx context.Context, token *oauth2.Token) error {
	row := models.OAuthToken{
		Provider:     yahooProvider,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		ExpiresAt:    token.Expiry,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "token_type", "expires_at", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save oauth token: %w", err)
	}
	return nil
}

// StoredTokenSource is an oauth2.TokenSource backed by a TokenRepository.
// Refreshed tokens are written back so a restart does not need a new login.
type StoredTokenSource struct {
	config *oauth2.Config
	repo   TokenRepository

	mu      sync.Mutex
	current *oauth2.Token
}

func NewStoredTokenSource(config *oauth2.Config, repo TokenRepository) *StoredTokenSource {
	return &StoredTokenSource{config: config, repo: repo}
}

// Token returns a valid access token, refreshing it when expired
func (s *StoredTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	if s.current == nil {
		token, err := s.repo.Load(ctx)
		if err != nil {
			return nil, err
		}
		s.current = token
	}
	if s.current.Valid() {
		return s.current, nil
	}
	if s.current.RefreshToken == "" {
		return nil, ErrNotAuthorized
	}

	refreshed, err := s.config.TokenSource(ctx, s.current).Token()
	if err != nil {
		return nil, fmt.Errorf("%w: token refresh failed: %v", ErrNotAuthorized, err)
	}
	if refreshed.AccessToken != s.current.AccessToken {
		if err := s.repo.Save(ctx, refreshed); err != nil {
			return nil, err
		}
	}
	s.current = refreshed
	return refreshed, nil
}

// AuthCodeURL returns the Yahoo consent page URL
func (s *StoredTokenSource) AuthCodeURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.SetAuthURLParam("language", "en-us"))
}

// Exchange trades an authorization code for a token and stores it
func (s *StoredTokenSource) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	if err := s.repo.Save(ctx, token); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = token
	s.mu.Unlock()
	return token, nil
}
