// Package refine extracts the finer-grained request inside a classified
// query: "current" vs "previous" job, a specific company, a degree level.
// Only the experience and education categories carry refinements.
package refine

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/sreejagatab/linkedin-qbot/internal/classify"
	"github.com/sreejagatab/linkedin-qbot/internal/ner"
)

// Kind enumerates the refinement shapes.
type Kind string

const (
	Current     Kind = "current"
	Previous    Kind = "previous"
	Company     Kind = "company"
	Highest     Kind = "highest"
	DegreeLevel Kind = "degree"
)

// Refinement narrows a category to a specific entry selector. Value is set
// for Company (the organization name) and DegreeLevel (the degree keyword).
type Refinement struct {
	Kind  Kind
	Value string
}

// String renders the wire form: "current", "company:Acme", "degree:master".
func (r Refinement) String() string {
	if r.Value == "" {
		return string(r.Kind)
	}
	return string(r.Kind) + ":" + r.Value
}

// MarshalJSON encodes the refinement as its wire-form string.
func (r Refinement) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes the wire-form string produced by MarshalJSON.
func (r *Refinement) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	kind, value, _ := strings.Cut(s, ":")
	r.Kind = Kind(kind)
	r.Value = value
	return nil
}

var (
	currentWords  = []string{"current", "latest", "most recent"}
	previousWords = []string{"previous", "past", "before", "former"}
	highestWords  = []string{"highest", "latest", "most recent"}
	degreeWords   = []string{"bachelor", "master", "phd", "doctorate", "mba"}
)

// Extractor derives refinements from query text, consulting the entity
// recognizer for company mentions. The recognizer may be nil.
type Extractor struct {
	recognizer ner.Recognizer
	logger     *slog.Logger
}

// New creates an Extractor. A nil recognizer disables company refinements.
func New(recognizer ner.Recognizer) *Extractor {
	return &Extractor{recognizer: recognizer, logger: slog.Default()}
}

// Extract returns the refinement for the query under the given category, or
// nil when the category carries none. Rules are checked in order; the first
// match wins and rules are never combined.
func (e *Extractor) Extract(ctx context.Context, query string, category classify.Category) *Refinement {
	q := strings.ToLower(query)

	switch category {
	case classify.Experience:
		if containsAny(q, currentWords) {
			return &Refinement{Kind: Current}
		}
		if containsAny(q, previousWords) {
			return &Refinement{Kind: Previous}
		}
		if org := e.firstOrg(ctx, query); org != "" {
			return &Refinement{Kind: Company, Value: org}
		}

	case classify.Education:
		if containsAny(q, highestWords) {
			return &Refinement{Kind: Highest}
		}
		for _, degree := range degreeWords {
			if strings.Contains(q, degree) {
				return &Refinement{Kind: DegreeLevel, Value: degree}
			}
		}
	}

	return nil
}

// firstOrg returns the first recognized organization span, or "" when the
// recognizer is absent or fails. Recognizer failure degrades to no
// refinement rather than failing the query.
func (e *Extractor) firstOrg(ctx context.Context, query string) string {
	if e.recognizer == nil {
		return ""
	}
	entities, err := e.recognizer.Recognize(ctx, query)
	if err != nil {
		e.logger.Warn("entity recognition failed, skipping company refinement", "error", err)
		return ""
	}
	for _, ent := range entities {
		if ent.Label == ner.LabelOrg {
			return ent.Text
		}
	}
	return ""
}

func containsAny(q string, words []string) bool {
	for _, w := range words {
		if strings.Contains(q, w) {
			return true
		}
	}
	return false
}
