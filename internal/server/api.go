package server

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"

	"github.com/aknsr/linecap/internal/records"
)

// handleListRecords serves GET /api/records with optional type,
// created_by and limit query parameters.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	filter := records.ListFilter{
		LogicalType: r.URL.Query().Get("type"),
		CreatedBy:   r.URL.Query().Get("created_by"),
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			filter.Limit = n
		}
	}

	recs, err := s.recs.List(r.Context(), filter)
	if err != nil {
		log.Printf("server: listing records: %v", err)
		http.Error(w, "failed to list records", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"records": recs, "count": len(recs)})
}

// handleGetRecord serves GET /api/records/{id}. With ?format=html the
// record body is rendered from markdown.
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := s.recs.Get(r.Context(), id)
	if err != nil {
		log.Printf("server: getting record %s: %v", id, err)
		http.Error(w, "failed to get record", http.StatusInternalServerError)
		return
	}
	if rec == nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}

	if r.URL.Query().Get("format") == "html" {
		var buf bytes.Buffer
		source := rec.Body
		if rec.Title != "" {
			source = "# " + rec.Title + "\n\n" + source
		}
		if err := goldmark.Convert([]byte(source), &buf); err != nil {
			log.Printf("server: rendering record %s: %v", id, err)
			http.Error(w, "failed to render record", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(buf.Bytes())
		return
	}

	writeJSON(w, rec)
}

// handleSessionStats serves GET /api/sessions/stats.
func (s *Server) handleSessionStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"active_sessions": s.store.ActiveCount(),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encoding response: %v", err)
	}
}
