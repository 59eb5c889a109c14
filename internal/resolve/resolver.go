// Package resolve maps free query text to a loaded profile identifier.
// Resolution tries four strategies in order: exact entity match, fuzzy
// entity match, possessive/prepositional regex patterns, and a literal
// identifier scan. "No match" is a normal outcome, not an error.
package resolve

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sreejagatab/linkedin-qbot/internal/ner"
	"github.com/sreejagatab/linkedin-qbot/internal/profile"
)

// Directory is the read-only view of the profile store the resolver needs.
// All must return records in a stable order so ties resolve deterministically.
type Directory interface {
	All() []profile.Record
}

// namePatterns capture a possessive or prepositional reference to a name,
// e.g. "about Jane Doe", "Jane Doe's education". Ordered: the first pattern
// that matches wins.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:of|about|for)\s+([A-Za-z\s.'-]+?)(?:'s|\s+at|\s+from|\s+in|\s+who|\?|$)`),
	regexp.MustCompile(`(?i)([A-Za-z\s.'-]+?)(?:'s)\s+(?:education|experience|profile|background)`),
}

// fuzzyThreshold is the minimum character-overlap similarity for step 2.
const fuzzyThreshold = 0.5

// Resolver resolves query text to a profile identifier. The recognizer may
// be nil or failing; in that case only the pattern and literal steps run.
type Resolver struct {
	profiles   Directory
	recognizer ner.Recognizer
	logger     *slog.Logger
}

// New creates a Resolver over the given profile directory and recognizer.
func New(profiles Directory, recognizer ner.Recognizer) *Resolver {
	return &Resolver{
		profiles:   profiles,
		recognizer: recognizer,
		logger:     slog.Default(),
	}
}

// Resolve returns the best-matching profile identifier for the query, or
// ok=false when no profile can be derived. Read-only and deterministic for
// a given store state and recognizer output.
func (r *Resolver) Resolve(ctx context.Context, query string) (string, bool) {
	records := r.profiles.All()

	if persons := r.personSpans(ctx, query); len(persons) > 0 {
		if id, ok := matchExact(persons, records); ok {
			return id, true
		}
		if id, ok := matchFuzzy(persons, records); ok {
			return id, true
		}
	}

	if id, ok := matchPatterns(query, records); ok {
		return id, true
	}
	return matchLiteral(query, records)
}

// personSpans runs the recognizer and keeps the PERSON spans. Recognizer
// absence or failure degrades to the non-entity resolution steps.
func (r *Resolver) personSpans(ctx context.Context, query string) []string {
	if r.recognizer == nil {
		return nil
	}
	entities, err := r.recognizer.Recognize(ctx, query)
	if err != nil {
		r.logger.Warn("entity recognition failed, falling back to pattern matching", "error", err)
		return nil
	}
	var spans []string
	for _, ent := range entities {
		if ent.Label == ner.LabelPerson {
			spans = append(spans, ent.Text)
		}
	}
	return spans
}

// matchExact returns the first profile whose full name contains a recognized
// person span, case-insensitive.
func matchExact(persons []string, records []profile.Record) (string, bool) {
	for _, person := range persons {
		p := strings.ToLower(person)
		for _, rec := range records {
			if strings.Contains(strings.ToLower(rec.Basics.Name), p) {
				return rec.Identifier, true
			}
		}
	}
	return "", false
}

// matchFuzzy keeps the single highest-scoring profile with similarity above
// the threshold. The comparison is strictly-greater, so the first profile
// encountered wins ties.
func matchFuzzy(persons []string, records []profile.Record) (string, bool) {
	bestID := ""
	bestScore := 0.0
	for _, person := range persons {
		for _, rec := range records {
			score := similarity(person, rec.Basics.Name)
			if score > fuzzyThreshold && score > bestScore {
				bestID = rec.Identifier
				bestScore = score
			}
		}
	}
	return bestID, bestID != ""
}

// similarity is the bag-of-distinct-characters overlap ratio:
// |set(a) ∩ set(b)| / max(len(a), len(b)), over the lowercased strings.
// Not an edit distance: "Jane Doe" and "Dane Joe" score identically.
func similarity(a, b string) float64 {
	setA := runeSet(strings.ToLower(a))
	setB := runeSet(strings.ToLower(b))

	common := 0
	for ch := range setA {
		if setB[ch] {
			common++
		}
	}

	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 0
	}
	return float64(common) / float64(maxLen)
}

func runeSet(s string) map[rune]bool {
	set := make(map[rune]bool, len(s))
	for _, ch := range s {
		set[ch] = true
	}
	return set
}

// matchPatterns extracts a candidate name with the regex patterns and tests
// two-way substring containment against every profile name.
func matchPatterns(query string, records []profile.Record) (string, bool) {
	for _, pattern := range namePatterns {
		m := pattern.FindStringSubmatch(query)
		if m == nil {
			continue
		}
		captured := strings.ToLower(strings.TrimSpace(m[1]))
		if captured == "" {
			continue
		}
		for _, rec := range records {
			name := strings.ToLower(rec.Basics.Name)
			if strings.Contains(name, captured) || strings.Contains(captured, name) {
				return rec.Identifier, true
			}
		}
	}
	return "", false
}

// matchLiteral returns the first profile whose identifier appears literally
// in the query, case-insensitive.
func matchLiteral(query string, records []profile.Record) (string, bool) {
	q := strings.ToLower(query)
	for _, rec := range records {
		if strings.Contains(q, strings.ToLower(rec.Identifier)) {
			return rec.Identifier, true
		}
	}
	return "", false
}
