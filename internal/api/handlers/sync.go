package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/stitts-dev/hoops-oracle/pkg/utils"
)

// PoolSyncer refreshes and persists the configured league's pool on demand
type PoolSyncer interface {
	SyncNow(ctx context.Context) (int, error)
	SyncReporter
}

type SyncHandler struct {
	syncer PoolSyncer
}

func NewSyncHandler(syncer PoolSyncer) *SyncHandler {
	return &SyncHandler{syncer: syncer}
}

// TriggerSync runs a pool sync immediately
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	players, err := h.syncer.SyncNow(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	lastRun, _ := h.syncer.Status()
	utils.SendSuccess(c, gin.H{
		"players":  players,
		"last_run": lastRun,
	})
}
