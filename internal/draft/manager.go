package draft

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/hoops-oracle/pkg/logger"
)

// Event types published to session subscribers
const (
	EventSessionStarted = "session_started"
	EventPickRecorded   = "pick_recorded"
	EventSessionClosed  = "session_closed"
)

// maxPickRetries bounds reapplying an unpinned pick after concurrent writes
const maxPickRetries = 3

// Event is a session change broadcast to live clients
type Event struct {
	Type      string      `json:"type"`
	SessionID string      `json:"session_id"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// EventPublisher delivers session events to subscribers
type EventPublisher interface {
	Publish(sessionID string, event Event)
}

// StartRequest describes a new session
type StartRequest struct {
	LeagueKey     string `json:"league_key"`
	OwnerID       string `json:"-"`
	DraftPosition int    `json:"draft_position" binding:"required,min=1"`
	LeagueSize    int    `json:"league_size"`
	Snake         *bool  `json:"snake"`
}

// PickRequest records a pick. Team 0 means the team on the clock. When
// ExpectedVersion is set the pick fails if the session has moved on.
type PickRequest struct {
	PlayerID        string `json:"player_id" binding:"required"`
	Team            int    `json:"team"`
	ExpectedVersion *int   `json:"expected_version"`
}

// BoardState summarises where a session stands
type BoardState struct {
	Session        *Session `json:"session"`
	Round          int      `json:"round"`
	OnTheClock     int      `json:"on_the_clock"`
	MyNextPick     int      `json:"my_next_pick"`
	PicksUntilMine int      `json:"picks_until_mine"`
}

// Manager runs the draft session lifecycle on top of a SessionStore
type Manager struct {
	store             SessionStore
	publisher         EventPublisher
	defaultLeagueSize int
	defaultLeagueKey  string
	logger            *logrus.Logger
}

// NewManager creates a manager. publisher may be nil.
func NewManager(store SessionStore, publisher EventPublisher, defaultLeagueKey string, defaultLeagueSize int, logger *logrus.Logger) *Manager {
	return &Manager{
		store:             store,
		publisher:         publisher,
		defaultLeagueSize: defaultLeagueSize,
		defaultLeagueKey:  defaultLeagueKey,
		logger:            logger,
	}
}

// Start opens a new active session
func (m *Manager) Start(ctx context.Context, req StartRequest) (*Session, error) {
	if req.LeagueKey == "" {
		req.LeagueKey = m.defaultLeagueKey
	}
	if req.LeagueSize == 0 {
		req.LeagueSize = m.defaultLeagueSize
	}
	if req.LeagueKey == "" {
		return nil, fmt.Errorf("%w: league key is required", ErrInvalidSession)
	}
	if req.LeagueSize <= 0 {
		return nil, fmt.Errorf("%w: league size must be positive", ErrInvalidSession)
	}
	if req.DraftPosition < 1 || req.DraftPosition > req.LeagueSize {
		return nil, fmt.Errorf("%w: draft position %d outside 1..%d", ErrInvalidSession, req.DraftPosition, req.LeagueSize)
	}

	snake := true
	if req.Snake != nil {
		snake = *req.Snake
	}

	session := &Session{
		ID:            uuid.NewString(),
		LeagueKey:     req.LeagueKey,
		OwnerID:       req.OwnerID,
		DraftPosition: req.DraftPosition,
		LeagueSize:    req.LeagueSize,
		Snake:         snake,
		Status:        StatusActive,
		Picks:         []Pick{},
	}
	if err := m.store.Create(ctx, session); err != nil {
		return nil, err
	}

	logger.WithDraftContext(m.logger, session.ID, "").WithFields(logrus.Fields{
		"league_key":     session.LeagueKey,
		"draft_position": session.DraftPosition,
	}).Info("Draft session started")
	m.publish(session.ID, EventSessionStarted, session)
	return session, nil
}

// Get loads a session
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	return m.store.Get(ctx, id)
}

// Board returns the session with its pick order position
func (m *Manager) Board(ctx context.Context, id string) (*BoardState, error) {
	session, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next := session.NextPickNumber()
	mine := session.MyNextPick()
	return &BoardState{
		Session:        session,
		Round:          (next-1)/session.LeagueSize + 1,
		OnTheClock:     session.OnTheClock(),
		MyNextPick:     mine,
		PicksUntilMine: mine - next,
	}, nil
}

// RecordPick appends a pick to an active session
func (m *Manager) RecordPick(ctx context.Context, id string, req PickRequest) (*Session, error) {
	req.PlayerID = strings.TrimSpace(req.PlayerID)
	if req.PlayerID == "" {
		return nil, fmt.Errorf("%w: player id is required", ErrInvalidSession)
	}

	for attempt := 0; ; attempt++ {
		session, err := m.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if req.ExpectedVersion != nil && *req.ExpectedVersion != session.Version {
			return nil, ErrVersionConflict
		}
		if session.Status == StatusClosed {
			return nil, ErrSessionClosed
		}
		if session.HasPlayer(req.PlayerID) {
			return nil, fmt.Errorf("%w: %s", ErrPlayerDrafted, req.PlayerID)
		}

		team := req.Team
		if team == 0 {
			team = session.OnTheClock()
		}
		if team < 1 || team > session.LeagueSize {
			return nil, fmt.Errorf("%w: team %d outside 1..%d", ErrInvalidSession, team, session.LeagueSize)
		}

		pick := Pick{
			PickNumber: session.NextPickNumber(),
			PlayerID:   req.PlayerID,
			Team:       team,
			Mine:       team == session.DraftPosition,
			PickedAt:   time.Now().UTC(),
		}
		session.Picks = append(session.Picks, pick)

		err = m.store.Update(ctx, session, session.Version)
		if errors.Is(err, ErrVersionConflict) && req.ExpectedVersion == nil && attempt < maxPickRetries {
			continue
		}
		if err != nil {
			return nil, err
		}

		logger.WithDraftContext(m.logger, session.ID, pick.PlayerID).WithFields(logrus.Fields{
			"pick_number": pick.PickNumber,
			"team":        pick.Team,
		}).Debug("Draft pick recorded")
		m.publish(session.ID, EventPickRecorded, map[string]interface{}{
			"pick":    pick,
			"version": session.Version,
		})
		return session, nil
	}
}

// Close marks a session as finished; further picks are rejected
func (m *Manager) Close(ctx context.Context, id string) (*Session, error) {
	session, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status == StatusClosed {
		return session, nil
	}

	session.Status = StatusClosed
	if err := m.store.Update(ctx, session, session.Version); err != nil {
		return nil, err
	}
	m.publish(session.ID, EventSessionClosed, map[string]interface{}{"version": session.Version})
	return session, nil
}

// Delete removes a session and its picks
func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}
	m.publish(id, EventSessionClosed, map[string]interface{}{"deleted": true})
	return nil
}

func (m *Manager) publish(sessionID, eventType string, data interface{}) {
	if m.publisher == nil {
		return
	}
	m.publisher.Publish(sessionID, Event{
		Type:      eventType,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}
