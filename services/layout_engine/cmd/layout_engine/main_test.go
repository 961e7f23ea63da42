// main_test.go — Layout Engine service unit tests.
package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/yourflock/roost/layoutengine/internal/config"
	"github.com/yourflock/roost/layoutengine/internal/layout"
	"github.com/yourflock/roost/layoutengine/pkg/zerolog"
	"github.com/yourflock/roost/layoutengine/services/layout_engine/internal/manager"
)

func testHandler() *handler {
	cfg := &config.Config{Port: "8080", ReduceFactor: 0.8, ReduceTries: 5}
	mgr := manager.New(layout.UUIDSource{})
	return &handler{cfg: cfg, mgr: mgr, log: logrus.NewEntry(logrus.New()), audit: zerolog.New("test")}
}

const sampleEvaluateBody = `{
	"version": 4,
	"contextId": "ctx1",
	"devices": [
		{"id": "tv", "displayWidth": 1920, "displayHeight": 1080, "dpi": 96, "concurrentAudio": 1, "concurrentVideo": 1, "communal": true, "groupId": "main"}
	],
	"groups": [{"id": "main", "deviceIds": ["tv"]}],
	"constraints": [
		{"constraintId": "default", "communal": {"priority": 5, "prefSize": {"w": 400, "h": 300, "unit": "px"}, "minSize": {"w": 50, "h": 50, "unit": "px"}}}
	],
	"components": [
		{"id": "comp1", "constraintId": "default", "state": "started", "visible": true}
	]
}`

func TestHandleEvaluateReturnsMessages(t *testing.T) {
	h := testHandler()
	req := httptest.NewRequest(http.MethodPost, "/contexts/ctx1/evaluate", strings.NewReader(sampleEvaluateBody))
	req.SetPathValue("contextId", "ctx1")
	rec := httptest.NewRecorder()

	h.handleEvaluate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"contextId":"ctx1"`) {
		t.Errorf("expected contextId in response, got: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"messages":[{`) {
		t.Errorf("expected a non-empty messages array in response, got: %s", rec.Body.String())
	}
}

func TestHandleEvaluateRejectsMalformedBody(t *testing.T) {
	h := testHandler()
	req := httptest.NewRequest(http.MethodPost, "/contexts/ctx1/evaluate", strings.NewReader(`{not json`))
	req.SetPathValue("contextId", "ctx1")
	rec := httptest.NewRecorder()

	h.handleEvaluate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleReadinessOKWhenIdle(t *testing.T) {
	h := testHandler()
	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()

	h.handleReadiness(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHandleDropContextReturnsNoContent(t *testing.T) {
	h := testHandler()
	req := httptest.NewRequest(http.MethodDelete, "/contexts/ctx1", nil)
	req.SetPathValue("contextId", "ctx1")
	rec := httptest.NewRecorder()

	h.handleDropContext(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}
