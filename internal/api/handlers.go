// Package api exposes the query bot over HTTP (chi router) and MCP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sreejagatab/linkedin-qbot/internal/pipeline"
	"github.com/sreejagatab/linkedin-qbot/internal/profile"
	"github.com/sreejagatab/linkedin-qbot/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB

// QueryProcessor runs a query through the resolution pipeline.
type QueryProcessor interface {
	ProcessFrom(ctx context.Context, query, userID string) pipeline.Result
}

// ProfileStore is the profile access the API layer needs.
type ProfileStore interface {
	Get(id string) (profile.Record, bool)
	All() []profile.Record
	Put(rec profile.Record) error
}

// HistoryReader reads the query history. Implemented by storage.Store.
type HistoryReader interface {
	ListQueryLogs(limit, offset int) ([]storage.QueryLog, error)
	GetQueryLog(id string) (storage.QueryLog, error)
}

// ReplySender delivers webhook replies back to the messaging channel.
type ReplySender interface {
	SendSessionMessage(ctx context.Context, whatsappNumber, text string) error
}

// Deps holds dependencies for the HTTP handler. History and Sender are
// optional; their routes degrade when nil.
type Deps struct {
	Processor QueryProcessor
	Profiles  ProfileStore
	History   HistoryReader
	Sender    ReplySender
	Token     string
}

// NewHandler returns the full HTTP API. Query and webhook routes are open;
// profile ingestion and history require the bearer token.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Get("/", handleRoot)
	r.Post("/query", handleQuery(deps))
	r.Get("/profiles", handleListProfiles(deps))
	r.Get("/profiles/{id}", handleGetProfile(deps))
	r.Post("/wati-webhook", handleWatiWebhook(deps))

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))
		r.Post("/profiles", handleAddProfile(deps))
		r.Get("/queries", handleListQueries(deps))
		r.Get("/queries/{id}", handleGetQuery(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "LinkedIn Profile Query Bot API",
	})
}

type queryRequest struct {
	Query     string `json:"query"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

func handleQuery(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Query == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "query is required")
			return
		}

		result := deps.Processor.ProcessFrom(r.Context(), req.Query, req.UserID)
		writeJSON(w, http.StatusOK, result)
	}
}

type profileSummary struct {
	ProfileID string `json:"profile_id"`
	Name      string `json:"name"`
	Headline  string `json:"headline,omitempty"`
}

func handleListProfiles(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records := deps.Profiles.All()
		summaries := make([]profileSummary, len(records))
		for i, rec := range records {
			summaries[i] = profileSummary{
				ProfileID: rec.Identifier,
				Name:      rec.Basics.Name,
				Headline:  rec.Basics.Headline,
			}
		}
		writeJSON(w, http.StatusOK, summaries)
	}
}

func handleGetProfile(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		rec, ok := deps.Profiles.Get(id)
		if !ok {
			httpError(w, http.StatusNotFound, "not_found", "profile %s not found", id)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func handleAddProfile(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var rec profile.Record
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		if err := deps.Profiles.Put(rec); err != nil {
			if errors.Is(err, profile.ErrInvalidRecord) {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
				return
			}
			httpError(w, http.StatusInternalServerError, "api_error", "saving profile: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"status":     "success",
			"profile_id": rec.Identifier,
		})
	}
}

type watiWebhookRequest struct {
	Event    string         `json:"event"`
	UserData map[string]any `json:"userData"`
	Payload  map[string]any `json:"payload"`
}

func handleWatiWebhook(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req watiWebhookRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		if req.Event != "message" {
			writeJSON(w, http.StatusOK, map[string]string{
				"status": "ignored",
				"reason": "Not a message event",
			})
			return
		}

		text, _ := req.Payload["text"].(string)
		if text == "" {
			writeJSON(w, http.StatusOK, map[string]string{
				"status": "ignored",
				"reason": "No message text",
			})
			return
		}

		waID, _ := req.UserData["waId"].(string)
		result := deps.Processor.ProcessFrom(r.Context(), text, waID)

		responseText := result.Response
		if !result.Success {
			responseText = fmt.Sprintf("%s. Available profiles: %s",
				result.Error, strings.Join(result.AvailableProfiles, ", "))
		}

		if deps.Sender != nil && waID != "" {
			if err := deps.Sender.SendSessionMessage(r.Context(), waID, responseText); err != nil {
				slog.Warn("failed to send webhook reply", "wa_id", waID, "error", err)
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":          "success",
			"response":        responseText,
			"whatsapp_number": waID,
			"query_result":    result,
		})
	}
}

func handleListQueries(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.History == nil {
			httpError(w, http.StatusServiceUnavailable, "api_error", "query history not available")
			return
		}

		limit := parseIntParam(r, "limit", 50)
		if limit <= 0 || limit > 500 {
			limit = 50
		}
		offset := parseIntParam(r, "offset", 0)
		if offset < 0 {
			offset = 0
		}

		logs, err := deps.History.ListQueryLogs(limit, offset)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "listing queries: %v", err)
			return
		}
		if logs == nil {
			logs = []storage.QueryLog{}
		}
		writeJSON(w, http.StatusOK, logs)
	}
}

func handleGetQuery(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.History == nil {
			httpError(w, http.StatusServiceUnavailable, "api_error", "query history not available")
			return
		}

		id := chi.URLParam(r, "id")
		entry, err := deps.History.GetQueryLog(id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				httpError(w, http.StatusNotFound, "not_found", "query %s not found", id)
				return
			}
			httpError(w, http.StatusInternalServerError, "api_error", "reading query: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

func parseIntParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
