package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/stitts-dev/hoops-oracle/internal/mapper"
	"github.com/stitts-dev/hoops-oracle/pkg/utils"
)

// PageSize is the largest player page Yahoo serves per request
const PageSize = 25

// YahooConfig holds the client settings
type YahooConfig struct {
	BaseURL          string
	Timeout          time.Duration
	RateLimit        float64 // requests per second
	Burst            int
	FailureThreshold int
}

// YahooClient reads league and player data from the Yahoo Fantasy API
type YahooClient struct {
	httpClient  *http.Client
	baseURL     string
	tokens      oauth2.TokenSource
	rateLimiter *rate.Limiter
	breaker     *gobreaker.CircuitBreaker
	logger      *logrus.Logger
}

// NewYahooClient creates a new Yahoo Fantasy API client
func NewYahooClient(cfg YahooConfig, tokens oauth2.TokenSource, logger *logrus.Logger) *YahooClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}

	threshold := uint32(cfg.FailureThreshold)
	settings := gobreaker.Settings{
		Name:        "yahoo",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// auth problems are not an outage
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotAuthorized) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"component": "circuit_breaker",
				"service":   name,
				"from":      from.String(),
				"to":        to.String(),
			}).Info("Circuit breaker state changed")
		},
	}

	return &YahooClient{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		tokens:      tokens,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		breaker:     gobreaker.NewCircuitBreaker(settings),
		logger:      logger,
	}
}

// BreakerState reports the circuit breaker state for health checks
func (c *YahooClient) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// GetAvailablePlayers returns up to count available players with season stats,
// fetched in pages of PageSize. An empty position means all positions.
func (c *YahooClient) GetAvailablePlayers(ctx context.Context, leagueKey, position string, count int) ([]mapper.YahooPlayer, error) {
	var all []mapper.YahooPlayer
	for start := 0; start < count; start += PageSize {
		size := min(PageSize, count-start)

		filter := "status=A;sort=AR"
		if position != "" {
			filter += ";position=" + url.PathEscape(position)
		}
		path := fmt.Sprintf("/league/%s/players;%s;start=%d;count=%d/stats;type=season", leagueKey, filter, start, size)

		page, err := c.leaguePlayers(ctx, path)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < size {
			break
		}
	}

	c.logger.WithFields(logrus.Fields{
		"league_key": leagueKey,
		"position":   position,
		"players":    len(all),
	}).Debug("Fetched available players")
	return all, nil
}

// GetPlayersByKeys fetches season stats for specific players in batches of PageSize
func (c *YahooClient) GetPlayersByKeys(ctx context.Context, leagueKey string, playerKeys []string) ([]mapper.YahooPlayer, error) {
	var all []mapper.YahooPlayer
	for i := 0; i < len(playerKeys); i += PageSize {
		end := min(i+PageSize, len(playerKeys))
		path := fmt.Sprintf("/league/%s/players;player_keys=%s/stats;type=season", leagueKey, strings.Join(playerKeys[i:end], ","))

		batch, err := c.leaguePlayers(ctx, path)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
	}
	return all, nil
}

// SearchPlayers finds players in the league by name
func (c *YahooClient) SearchPlayers(ctx context.Context, leagueKey, term string, count int) ([]mapper.YahooPlayer, error) {
	if count <= 0 || count > PageSize {
		count = PageSize
	}
	path := fmt.Sprintf("/league/%s/players;search=%s;start=0;count=%d/stats;type=season", leagueKey, url.PathEscape(term), count)
	return c.leaguePlayers(ctx, path)
}

// GetTeamRoster returns the players on a fantasy team with season stats
func (c *YahooClient) GetTeamRoster(ctx context.Context, teamKey string) ([]mapper.YahooPlayer, error) {
	body, err := c.get(ctx, fmt.Sprintf("/team/%s/roster/players/stats;type=season", teamKey))
	if err != nil {
		return nil, err
	}

	parts, err := resourceParts(body, "team")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrUpstream, err)
	}
	roster, ok := findKey(parts, "roster")
	if !ok {
		return nil, fmt.Errorf("%w: team response has no roster", utils.ErrUpstream)
	}
	var rosterObj map[string]struct {
		Players json.RawMessage `json:"players"`
	}
	if err := json.Unmarshal(roster, &rosterObj); err != nil {
		return nil, fmt.Errorf("%w: failed to decode roster: %v", utils.ErrUpstream, err)
	}
	players, err := decodePlayers(rosterObj["0"].Players)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrUpstream, err)
	}
	return players, nil
}

func (c *YahooClient) leaguePlayers(ctx context.Context, path string) ([]mapper.YahooPlayer, error) {
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	parts, err := resourceParts(body, "league")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrUpstream, err)
	}
	raw, ok := findKey(parts, "players")
	if !ok {
		return []mapper.YahooPlayer{}, nil
	}
	players, err := decodePlayers(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrUpstream, err)
	}
	return players, nil
}

// get performs one rate limited, circuit protected GET and returns the body
func (c *YahooClient) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, path)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", utils.ErrUpstream, err)
		}
		return nil, err
	}
	return result.([]byte), nil
}

func (c *YahooClient) do(ctx context.Context, path string) ([]byte, error) {
	token, err := c.tokens.Token()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?format=json", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	token.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", utils.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", utils.ErrUpstream, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrNotAuthorized
	case resp.StatusCode != http.StatusOK:
		c.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"path":   path,
		}).Warn("Yahoo API request failed")
		return nil, fmt.Errorf("%w: status %d", utils.ErrUpstream, resp.StatusCode)
	}
	return body, nil
}
