package draft

import (
	"errors"
	"slices"
	"time"
)

var (
	ErrSessionNotFound = errors.New("draft session not found")
	ErrVersionConflict = errors.New("draft session was modified by another request")
	ErrSessionClosed   = errors.New("draft session is closed")
	ErrPlayerDrafted   = errors.New("player already drafted")
	ErrInvalidSession  = errors.New("invalid draft session settings")
)

// Status is the lifecycle state of a session
type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

// Pick is one selection in a draft
type Pick struct {
	PickNumber int       `json:"pick_number"`
	PlayerID   string    `json:"player_id"`
	Team       int       `json:"team"`
	Mine       bool      `json:"mine"`
	PickedAt   time.Time `json:"picked_at"`
}

// Session tracks one user's view of a live draft. Version increases with every
// successful write and is used for optimistic concurrency.
type Session struct {
	ID            string    `json:"id"`
	LeagueKey     string    `json:"league_key"`
	OwnerID       string    `json:"owner_id,omitempty"`
	DraftPosition int       `json:"draft_position"`
	LeagueSize    int       `json:"league_size"`
	Snake         bool      `json:"snake"`
	Status        Status    `json:"status"`
	Picks         []Pick    `json:"picks"`
	Version       int       `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DraftedIDs returns every drafted player id in pick order
func (s *Session) DraftedIDs() []string {
	ids := make([]string, len(s.Picks))
	for i, p := range s.Picks {
		ids[i] = p.PlayerID
	}
	return ids
}

// MyPlayerIDs returns the ids of the players drafted by the session owner
func (s *Session) MyPlayerIDs() []string {
	ids := make([]string, 0)
	for _, p := range s.Picks {
		if p.Mine {
			ids = append(ids, p.PlayerID)
		}
	}
	return ids
}

// HasPlayer reports whether the player has been drafted
func (s *Session) HasPlayer(playerID string) bool {
	return slices.ContainsFunc(s.Picks, func(p Pick) bool { return p.PlayerID == playerID })
}

// NextPickNumber is the overall number of the next pick, starting at 1
func (s *Session) NextPickNumber() int {
	return len(s.Picks) + 1
}

// OnTheClock returns the team that owns the next pick
func (s *Session) OnTheClock() int {
	return PickOwner(s.NextPickNumber(), s.LeagueSize, s.Snake)
}

// MyNextPick returns the next overall pick number owned by the session owner
func (s *Session) MyNextPick() int {
	if s.LeagueSize <= 0 {
		return 0
	}
	next := s.NextPickNumber()
	round := (next-1)/s.LeagueSize + 1
	for r := round; r <= round+1; r++ {
		if n := PickNumberFor(s.DraftPosition, s.LeagueSize, r, s.Snake); n >= next {
			return n
		}
	}
	return 0
}

func (s *Session) clone() *Session {
	out := *s
	out.Picks = slices.Clone(s.Picks)
	return &out
}

// PickOwner returns the 1-based draft position that makes overall pick
// pickNumber. In a snake draft even rounds run in reverse order.
func PickOwner(pickNumber, leagueSize int, snake bool) int {
	if leagueSize <= 0 || pickNumber <= 0 {
		return 0
	}
	round := (pickNumber - 1) / leagueSize
	slot := (pickNumber - 1) % leagueSize
	if snake && round%2 == 1 {
		return leagueSize - slot
	}
	return slot + 1
}

// PickNumberFor returns the overall pick number of a draft position in a 1-based round
func PickNumberFor(position, leagueSize, round int, snake bool) int {
	slot := position - 1
	if snake && round%2 == 0 {
		slot = leagueSize - position
	}
	return (round-1)*leagueSize + slot + 1
}
