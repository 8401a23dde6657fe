package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stitts-dev/hoops-oracle/internal/api/middleware"
	"github.com/stitts-dev/hoops-oracle/internal/draft"
	"github.com/stitts-dev/hoops-oracle/pkg/utils"
)

// SessionStreamer upgrades a request into a live session feed
type SessionStreamer interface {
	Serve(w http.ResponseWriter, r *http.Request, sessionID string) error
}

type DraftHandler struct {
	manager *draft.Manager
	players PlayerService
	stream  SessionStreamer
}

func NewDraftHandler(manager *draft.Manager, players PlayerService, stream SessionStreamer) *DraftHandler {
	return &DraftHandler{manager: manager, players: players, stream: stream}
}

// CreateSession starts a draft session owned by the caller, if authenticated
func (h *DraftHandler) CreateSession(c *gin.Context) {
	var req draft.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid session request", err.Error())
		return
	}
	req.OwnerID = middleware.UserID(c)

	session, err := h.manager.Start(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SendCreated(c, session)
}

// GetSession returns the session and where the draft stands
func (h *DraftHandler) GetSession(c *gin.Context) {
	if _, ok := h.authorize(c); !ok {
		return
	}
	board, err := h.manager.Board(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SendSuccess(c, board)
}

// RecordPick appends a pick to the session
func (h *DraftHandler) RecordPick(c *gin.Context) {
	if _, ok := h.authorize(c); !ok {
		return
	}
	var req draft.PickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid pick request", err.Error())
		return
	}

	session, err := h.manager.RecordPick(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SendCreated(c, session)
}

// GetRecommendations suggests the next pick for the session owner
func (h *DraftHandler) GetRecommendations(c *gin.Context) {
	session, ok := h.authorize(c)
	if !ok {
		return
	}
	topN, ok := intQuery(c, "top_n", defaultTopN)
	if !ok {
		return
	}
	if topN <= 0 {
		topN = defaultTopN
	}

	board, err := h.players.DraftRecommendations(c.Request.Context(), session.LeagueKey, session.DraftedIDs(), session.MyPlayerIDs(), topN)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SendSuccess(c, board)
}

// CloseSession finishes a draft; later picks are rejected
func (h *DraftHandler) CloseSession(c *gin.Context) {
	if _, ok := h.authorize(c); !ok {
		return
	}
	session, err := h.manager.Close(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SendSuccess(c, session)
}

// DeleteSession removes a session and its picks
func (h *DraftHandler) DeleteSession(c *gin.Context) {
	if _, ok := h.authorize(c); !ok {
		return
	}
	if err := h.manager.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stream follows a session over WebSocket
func (h *DraftHandler) Stream(c *gin.Context) {
	session, ok := h.authorize(c)
	if !ok {
		return
	}
	// Serve writes its own response on upgrade failure
	_ = h.stream.Serve(c.Writer, c.Request, session.ID)
}

// authorize loads the session and checks the caller may use it. Sessions
// created anonymously are open to anyone holding the id.
func (h *DraftHandler) authorize(c *gin.Context) (*draft.Session, bool) {
	session, err := h.manager.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if session.OwnerID != "" && session.OwnerID != middleware.UserID(c) {
		utils.SendForbidden(c, "Draft session belongs to another user")
		return nil, false
	}
	return session, true
}
