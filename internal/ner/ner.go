// Package ner defines the named-entity recognition boundary used by subject
// resolution and refinement extraction. The recognizer is an injected
// capability so the pipeline can run against a stub in tests and degrade
// cleanly when no model is configured.
package ner

import "context"

// Entity labels the resolver and refiner care about. Recognizers may emit
// other labels (LOCATION, MISC); callers filter by what they need.
const (
	LabelPerson = "PERSON"
	LabelOrg    = "ORG"
)

// Entity is one recognized span of text.
type Entity struct {
	Text  string
	Label string
}

// Recognizer labels spans of text with semantic types such as person or
// organization names.
type Recognizer interface {
	Recognize(ctx context.Context, text string) ([]Entity, error)
}
