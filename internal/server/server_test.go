package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aknsr/linecap/internal/capture"
	"github.com/aknsr/linecap/internal/db"
	"github.com/aknsr/linecap/internal/events"
	"github.com/aknsr/linecap/internal/records"
)

func setupServer(t *testing.T) (*Server, *records.Store) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	recs := records.NewStore(database)
	webhook := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := New(Config{Port: 0, AllowAll: true}, webhook, capture.NewStore(), recs, events.NewHub())
	return srv, recs
}

func TestHealthCheck(t *testing.T) {
	srv, _ := setupServer(t)

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestCORSHeaders(t *testing.T) {
	srv, _ := setupServer(t)

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestListRecords(t *testing.T) {
	srv, recs := setupServer(t)
	ctx := context.Background()

	if _, err := recs.Save(ctx, capture.TypeTask, map[string]capture.Value{
		capture.FieldTitle: capture.TextValue("資料作成"),
	}, "U1"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := recs.Save(ctx, capture.TypeMemo, map[string]capture.Value{
		capture.FieldBody: capture.TextValue("覚え書き"),
	}, "U2"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/records?type=task", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body struct {
		Records []records.Record `json:"records"`
		Count   int              `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Count != 1 || len(body.Records) != 1 {
		t.Fatalf("count = %d, want the task only", body.Count)
	}
	if body.Records[0].LogicalType != "task" {
		t.Errorf("LogicalType = %q", body.Records[0].LogicalType)
	}
}

func TestGetRecord(t *testing.T) {
	srv, recs := setupServer(t)

	id, err := recs.Save(context.Background(), capture.TypeTask, map[string]capture.Value{
		capture.FieldTitle: capture.TextValue("資料作成"),
		capture.FieldBody:  capture.TextValue("会議用"),
	}, "U1")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/records/"+id, nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var rec records.Record
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.ID != id || rec.Title != "資料作成" {
		t.Errorf("record = %+v", rec)
	}
}

func TestGetRecordNotFound(t *testing.T) {
	srv, _ := setupServer(t)

	req := httptest.NewRequest("GET", "/api/records/no-such-id", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestGetRecordHTML(t *testing.T) {
	srv, recs := setupServer(t)

	id, err := recs.Save(context.Background(), capture.TypeMemo, map[string]capture.Value{
		capture.FieldTitle: capture.TextValue("メモ"),
		capture.FieldBody:  capture.TextValue("**重要** な内容"),
	}, "U1")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/records/"+id+"?format=html", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	html := w.Body.String()
	if !strings.Contains(html, "<h1>") || !strings.Contains(html, "<strong>重要</strong>") {
		t.Errorf("rendered html = %q", html)
	}
}

func TestSessionStats(t *testing.T) {
	srv, _ := setupServer(t)
	srv.store.Create(capture.Key{UserID: "u1"}, capture.TypeTask, false)

	req := httptest.NewRequest("GET", "/api/sessions/stats", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	var body map[string]int
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["active_sessions"] != 1 {
		t.Errorf("active_sessions = %d, want 1", body["active_sessions"])
	}
}

func TestWebhookRouteMounted(t *testing.T) {
	srv, _ := setupServer(t)

	req := httptest.NewRequest("POST", "/webhook", strings.NewReader(`{"events":[]}`))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want the stub webhook's 200", w.Code)
	}
}
