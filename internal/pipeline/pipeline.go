// Package pipeline is the query entrypoint: it orchestrates subject
// resolution, category classification, refinement extraction, and response
// synthesis into a single Process call.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sreejagatab/linkedin-qbot/internal/answer"
	"github.com/sreejagatab/linkedin-qbot/internal/classify"
	"github.com/sreejagatab/linkedin-qbot/internal/profile"
	"github.com/sreejagatab/linkedin-qbot/internal/refine"
	"github.com/sreejagatab/linkedin-qbot/internal/storage"
)

// Result is the structured outcome of one processed query. On failure,
// AvailableProfiles lists all loaded identifiers so the caller can prompt
// the user with what it knows about.
type Result struct {
	Success           bool               `json:"success"`
	ProfileID         string             `json:"profile_id,omitempty"`
	Category          classify.Category  `json:"category,omitempty"`
	Refinement        *refine.Refinement `json:"refinement,omitempty"`
	Response          string             `json:"response,omitempty"`
	Error             string             `json:"error,omitempty"`
	AvailableProfiles []string           `json:"available_profiles,omitempty"`
}

// SubjectResolver maps query text to a profile identifier.
type SubjectResolver interface {
	Resolve(ctx context.Context, query string) (string, bool)
}

// RefinementExtractor derives the finer-grained request for a category.
type RefinementExtractor interface {
	Extract(ctx context.Context, query string, category classify.Category) *refine.Refinement
}

// ProfileSource is the read view of the profile store the processor needs.
type ProfileSource interface {
	Get(id string) (profile.Record, bool)
	Identifiers() []string
}

// HistoryStore records processed queries. Implemented by storage.Store.
type HistoryStore interface {
	SaveQueryLog(storage.QueryLog) error
}

// Processor wires the pipeline stages together. History is optional; when
// nil, queries are not logged.
type Processor struct {
	profiles ProfileSource
	resolver SubjectResolver
	refiner  RefinementExtractor
	history  HistoryStore
	logger   *slog.Logger
}

// New creates a Processor.
func New(profiles ProfileSource, resolver SubjectResolver, refiner RefinementExtractor, history HistoryStore) *Processor {
	return &Processor{
		profiles: profiles,
		resolver: resolver,
		refiner:  refiner,
		history:  history,
		logger:   slog.Default(),
	}
}

// Process runs one query through the full pipeline. It never panics: an
// unexpected failure in any stage is converted into a generic failure
// result so a single malformed query cannot take the host process down.
func (p *Processor) Process(ctx context.Context, query string) (result Result) {
	return p.ProcessFrom(ctx, query, "")
}

// ProcessFrom is Process with a caller-supplied user ID (e.g. a WhatsApp
// number) recorded in the query history.
func (p *Processor) ProcessFrom(ctx context.Context, query, userID string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("query processing panicked", "query", query, "panic", r)
			result = Result{
				Success:           false,
				Error:             fmt.Sprintf("internal error processing query: %v", r),
				AvailableProfiles: p.profiles.Identifiers(),
			}
		}
		p.record(query, userID, result)
	}()

	if strings.TrimSpace(query) == "" {
		return Result{
			Success:           false,
			Error:             "Could not identify a profile in your query",
			AvailableProfiles: p.profiles.Identifiers(),
		}
	}

	id, ok := p.resolver.Resolve(ctx, query)
	if !ok {
		p.logger.Debug("no subject resolved", "query", query)
		return Result{
			Success:           false,
			Error:             "Could not identify a profile in your query",
			AvailableProfiles: p.profiles.Identifiers(),
		}
	}

	rec, ok := p.profiles.Get(id)
	if !ok {
		// Stale reference: the resolver derived an identifier that is no
		// longer loaded.
		p.logger.Warn("resolved profile not in store", "profile_id", id)
		return Result{
			Success:           false,
			Error:             fmt.Sprintf("Profile %s not found", id),
			AvailableProfiles: p.profiles.Identifiers(),
		}
	}

	category := classify.Classify(query)
	refinement := p.refiner.Extract(ctx, query, category)
	response := answer.Synthesize(rec, category, refinement)

	p.logger.Debug("query processed",
		"profile_id", id,
		"category", category,
		"refinement", refinementString(refinement),
	)

	return Result{
		Success:    true,
		ProfileID:  id,
		Category:   category,
		Refinement: refinement,
		Response:   response,
	}
}

// record appends the result to the query history. Best effort: a logging
// failure never fails the query.
func (p *Processor) record(query, userID string, result Result) {
	if p.history == nil {
		return
	}
	entry := storage.QueryLog{
		ID:         uuid.New().String(),
		CreatedAt:  time.Now().UTC(),
		Query:      query,
		UserID:     userID,
		ProfileID:  result.ProfileID,
		Category:   string(result.Category),
		Refinement: refinementString(result.Refinement),
		Response:   result.Response,
		Success:    result.Success,
		Error:      result.Error,
	}
	if err := p.history.SaveQueryLog(entry); err != nil {
		p.logger.Warn("failed to record query history", "error", err)
	}
}

func refinementString(r *refine.Refinement) string {
	if r == nil {
		return ""
	}
	return r.String()
}
