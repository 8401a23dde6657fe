package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/stitts-dev/hoops-oracle/pkg/utils"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

// yahooPlayerJSON renders one entry of a Yahoo players collection
func yahooPlayerJSON(id int) string {
	return fmt.Sprintf(`{"player":[[
		{"player_key":"428.p.%d"},
		{"player_id":"%d"},
		{"name":{"full":"Player %d"}},
		[],
		{"editorial_team_abbr":"LAL"},
		{"eligible_positions":[{"position":"SF"},{"position":"Util"}]}
	],{"player_stats":{"0":{"coverage_type":"season"},"stats":[
		{"stat":{"stat_id":"0","value":"10"}},
		{"stat":{"stat_id":"12","value":"%d"}}
	]}}]}`, id, id, id, id*10)
}

func leaguePlayersJSON(ids ...int) string {
	entries := make([]string, 0, len(ids)+1)
	for i, id := range ids {
		entries = append(entries, fmt.Sprintf(`"%d":%s`, i, yahooPlayerJSON(id)))
	}
	entries = append(entries, fmt.Sprintf(`"count":%d`, len(ids)))
	return fmt.Sprintf(`{"fantasy_content":{"league":[{"league_key":"428.l.1"},{"players":{%s}}]}}`, strings.Join(entries, ","))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *YahooClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tokens := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token", TokenType: "Bearer"})
	return NewYahooClient(YahooConfig{
		BaseURL:          server.URL,
		Timeout:          2 * time.Second,
		RateLimit:        1000,
		Burst:            100,
		FailureThreshold: 2,
	}, tokens, testLogger())
}

func TestGetAvailablePlayers_Paginates(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))

		switch {
		case strings.Contains(r.URL.Path, "start=0;count=25"):
			ids := make([]int, 25)
			for i := range ids {
				ids[i] = i + 1
			}
			fmt.Fprint(w, leaguePlayersJSON(ids...))
		case strings.Contains(r.URL.Path, "start=25;count=25"):
			fmt.Fprint(w, leaguePlayersJSON(26, 27))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	players, err := client.GetAvailablePlayers(context.Background(), "428.l.1", "", 60)
	require.NoError(t, err)

	assert.Len(t, players, 27)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	first := players[0]
	assert.Equal(t, "428.p.1", first.PlayerKey)
	assert.Equal(t, "1", first.PlayerID)
	assert.Equal(t, "Player 1", first.Name)
	assert.Equal(t, "LAL", first.Team)
	assert.Equal(t, []string{"SF", "Util"}, first.EligiblePositions)

	var stats struct {
		Stats []json.RawMessage `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(first.Stats, &stats))
	assert.Len(t, stats.Stats, 2)
}

func TestGetAvailablePlayers_PositionFilterAndEmptyPage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "position=C")
		fmt.Fprint(w, `{"fantasy_content":{"league":[{"league_key":"428.l.1"},{"players":[]}]}}`)
	})

	players, err := client.GetAvailablePlayers(context.Background(), "428.l.1", "C", 25)
	require.NoError(t, err)
	assert.Empty(t, players)
}

func TestGetPlayersByKeys_Batches(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, leaguePlayersJSON(1))
	})

	keys := make([]string, 30)
	for i := range keys {
		keys[i] = fmt.Sprintf("428.p.%d", i)
	}
	players, err := client.GetPlayersByKeys(context.Background(), "428.l.1", keys)
	require.NoError(t, err)

	assert.Len(t, players, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGetTeamRoster(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/team/428.l.1.t.3/roster")
		fmt.Fprintf(w, `{"fantasy_content":{"team":[[{"team_key":"428.l.1.t.3"}],{"roster":{"0":{"players":{"0":%s,"count":1}}}}]}}`, yahooPlayerJSON(9))
	})

	players, err := client.GetTeamRoster(context.Background(), "428.l.1.t.3")
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "9", players[0].PlayerID)
}

func TestYahooClient_UnauthorizedDoesNotTripBreaker(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	for i := 0; i < 3; i++ {
		_, err := client.SearchPlayers(context.Background(), "428.l.1", "curry", 5)
		assert.ErrorIs(t, err, ErrNotAuthorized)
	}
	assert.Equal(t, gobreaker.StateClosed, client.BreakerState())
}

func TestYahooClient_ServerErrorsOpenBreaker(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 2; i++ {
		_, err := client.SearchPlayers(context.Background(), "428.l.1", "curry", 5)
		assert.ErrorIs(t, err, utils.ErrUpstream)
	}
	assert.Equal(t, gobreaker.StateOpen, client.BreakerState())

	_, err := client.SearchPlayers(context.Background(), "428.l.1", "curry", 5)
	assert.ErrorIs(t, err, utils.ErrUpstream)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

type memoryTokenRepo struct {
	token *oauth2.Token
	saved int
}

func (r *memoryTokenRepo) Load(ctx context.Context) (*oauth2.Token, error) {
	if r.token == nil {
		return nil, ErrNotAuthorized
	}
	return r.token, nil
}

func (r *memoryTokenRepo) Save(ctx context.Context, token *oauth2.Token) error {
	r.token = token
	r.saved++
	return nil
}

func TestStoredTokenSource(t *testing.T) {
	config := NewYahooOAuthConfig("id", "secret", "http://localhost/callback")

	t.Run("no stored token", func(t *testing.T) {
		source := NewStoredTokenSource(config, &memoryTokenRepo{})
		_, err := source.Token()
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("valid token is reused", func(t *testing.T) {
		repo := &memoryTokenRepo{token: &oauth2.Token{AccessToken: "a", Expiry: time.Now().Add(time.Hour)}}
		source := NewStoredTokenSource(config, repo)

		token, err := source.Token()
		require.NoError(t, err)
		assert.Equal(t, "a", token.AccessToken)
		assert.Zero(t, repo.saved)
	})

	t.Run("expired token without refresh token", func(t *testing.T) {
		repo := &memoryTokenRepo{token: &oauth2.Token{AccessToken: "a", Expiry: time.Now().Add(-time.Hour)}}
		_, err := NewStoredTokenSource(config, repo).Token()
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("auth url targets yahoo", func(t *testing.T) {
		u := NewStoredTokenSource(config, &memoryTokenRepo{}).AuthCodeURL("state-1")
		assert.True(t, strings.HasPrefix(u, YahooEndpoint.AuthURL))
		assert.Contains(t, u, "state=state-1")
		assert.Contains(t, u, "language=en-us")
	})
}
