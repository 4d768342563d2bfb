package handlers

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/swipeapp/catalog/internal/errors"
	"github.com/swipeapp/catalog/internal/service"
	"github.com/swipeapp/catalog/internal/sync"
	"github.com/swipeapp/catalog/internal/sync/scheduler"
)

// SyncHandler handles sync status and trigger operations.
type SyncHandler struct {
	worker *sync.Worker
	sched  *scheduler.Scheduler
	svc    *service.CatalogService
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(worker *sync.Worker, sched *scheduler.Scheduler, svc *service.CatalogService) *SyncHandler {
	return &SyncHandler{worker: worker, sched: sched, svc: svc}
}

// GetStatus handles GET /sync/status.
// Returns scheduler state, the last cycle result, and per-status queue counts.
func (h *SyncHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status := h.sched.GetStatus()
	lastRun, lastOutcome := h.worker.LastRun()

	response := map[string]interface{}{
		"scheduler_running": status.IsRunning,
		"is_online":         status.IsOnline,
	}
	if status.LastSyncTime != nil {
		response["last_sync"] = status.LastSyncTime.Unix()
	}
	if !lastRun.IsZero() {
		response["last_cycle"] = lastRun.Unix()
		response["last_outcome"] = lastOutcome.String()
	}

	counts, err := h.svc.QueueStats()
	if err != nil {
		http.Error(w, "Failed to read queue stats", http.StatusInternalServerError)
		return
	}
	queueStats := make(map[string]int, len(counts))
	for status, n := range counts {
		queueStats[string(status)] = n
	}
	response["queue_stats"] = queueStats

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// TriggerSync handles POST /sync/now.
// Runs one cycle inline. If a cycle is already in progress the request is
// rejected with 409 rather than queued; the running cycle covers the intent.
func (h *SyncHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.worker.TryRunCycle(r.Context())
	if err != nil {
		if apperrors.Is(err, apperrors.ErrCycleInProgress) {
			http.Error(w, "Sync cycle already running", http.StatusConflict)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"outcome": outcome.String(),
			"error":   err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "success",
		"outcome": outcome.String(),
	})
}

// SetOnline handles POST /sync/online.
// Lets the embedding platform report connectivity changes.
func (h *SyncHandler) SetOnline(w http.ResponseWriter, r *http.Request) {
	var request struct {
		IsOnline bool `json:"is_online"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.sched.SetOnlineStatus(request.IsOnline)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "success",
		"is_online": request.IsOnline,
	})
}
