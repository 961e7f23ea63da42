package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/yourflock/roost/layoutengine/internal/handlers"
	"github.com/yourflock/roost/layoutengine/internal/logger"
	"github.com/yourflock/roost/layoutengine/pkg/metrics"
	"github.com/yourflock/roost/layoutengine/pkg/zerolog"
	"github.com/yourflock/roost/layoutengine/services/layout_engine/internal/constraintdoc"
)

// evaluateResponse is the JSON body returned by /evaluate; /simulate returns a
// layout.SimulationReport instead.
type evaluateResponse struct {
	ContextID string      `json:"contextId"`
	NotPlaced interface{} `json:"notPlaced"`
	Messages  interface{} `json:"messages"`
}

// handleEvaluate decodes a constraint document, runs one evaluation for the
// path's contextId, and returns the new layout's diff as push messages.
func (h *handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	contextID := r.PathValue("contextId")
	body, err := io.ReadAll(io.LimitReader(r.Body, 8<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	ctx, cs, comps, decErr := constraintdoc.Decode(body)
	if decErr != nil {
		writeError(w, http.StatusBadRequest, decErr.Error())
		return
	}
	if ctx.ID == "" {
		ctx.ID = contextID
	}

	start := time.Now()
	newLayout, messages, evalErr := h.mgr.Evaluate(ctx, cs, comps)
	elapsed := time.Since(start).Seconds()

	if evalErr != nil {
		metrics.RecordEvaluation("error", elapsed)
		h.audit.LogError(evalErr, zerolog.Fields{
			"context_id":  contextID,
			"client_ip":   logger.RedactIP(r.RemoteAddr),
			"duration_ms": elapsed * 1000,
		})
		writeError(w, http.StatusBadRequest, evalErr.Error())
		return
	}
	metrics.RecordEvaluation("ok", elapsed)
	for _, entry := range newLayout.NotPlaced {
		metrics.RecordNotPlaced(string(entry.Status))
	}

	for _, msg := range messages {
		h.audit.Log(zerolog.Fields{
			"context_id":   contextID,
			"component_id": msg.ComponentID,
			"message_id":   msg.ID,
			"message_kind": string(msg.Kind),
		})
	}
	h.audit.Log(zerolog.Fields{
		"context_id":    contextID,
		"devices_count": len(newLayout.Devices),
		"not_placed":    len(newLayout.NotPlaced),
		"duration_ms":   elapsed * 1000,
	})

	writeJSON(w, http.StatusOK, evaluateResponse{
		ContextID: newLayout.ContextID,
		NotPlaced: newLayout.NotPlaced,
		Messages:  messages,
	})
}

// handleSimulate runs a SimulationMode probe (§4.7) without mutating the
// context's real cached state.
func (h *handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	contextID := r.PathValue("contextId")
	body, err := io.ReadAll(io.LimitReader(r.Body, 8<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	var req struct {
		ForceVisible []string        `json:"forceVisible"`
		Document     json.RawMessage `json:"document"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid simulate request: "+err.Error())
		return
	}

	ctx, cs, comps, decErr := constraintdoc.Decode(req.Document)
	if decErr != nil {
		writeError(w, http.StatusBadRequest, decErr.Error())
		return
	}
	if ctx.ID == "" {
		ctx.ID = contextID
	}

	report, simErr := simulate(ctx, cs, comps, req.ForceVisible)
	if simErr != nil {
		writeError(w, http.StatusBadRequest, simErr.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleDropContext discards cached manager state for a context, e.g. once
// its owning DMApp has ended.
func (h *handler) handleDropContext(w http.ResponseWriter, r *http.Request) {
	h.mgr.DropContext(r.PathValue("contextId"))
	w.WriteHeader(http.StatusNoContent)
}

// handleReadiness reports 503 if any context's evaluation lock appears
// jammed (§1 ambient-stack note: no database of its own to ping).
func (h *handler) handleReadiness(w http.ResponseWriter, r *http.Request) {
	handlers.Readiness(map[string]func(context.Context) error{
		"contexts": func(context.Context) error { return h.mgr.TryLockAll() },
	})(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
