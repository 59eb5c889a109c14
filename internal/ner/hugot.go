package ner

import (
	"context"
	"fmt"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

// HugotRecognizer runs a token-classification NER model (e.g.
// KnightsAnalytics/distilbert-NER in ONNX form) through hugot's pure-Go
// backend. One recognizer owns one session; Close releases it.
type HugotRecognizer struct {
	session  *hugot.Session
	pipeline *pipelines.TokenClassificationPipeline
}

// NewHugotRecognizer loads the model at modelPath and prepares the NER
// pipeline. Non-entity tokens are dropped and adjacent subword tokens are
// merged into whole spans by the pipeline's simple aggregation.
func NewHugotRecognizer(modelPath string) (*HugotRecognizer, error) {
	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("creating hugot session: %w", err)
	}

	config := hugot.TokenClassificationConfig{
		ModelPath: modelPath,
		Name:      "profile-ner",
		Options: []hugot.TokenClassificationOption{
			pipelines.WithSimpleAggregation(),
			pipelines.WithIgnoreLabels([]string{"O"}),
		},
	}
	nerPipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("creating NER pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("creating NER pipeline: %w", err)
	}

	return &HugotRecognizer{session: session, pipeline: nerPipeline}, nil
}

// Recognize runs the model over text and returns the labelled spans.
func (r *HugotRecognizer) Recognize(ctx context.Context, text string) ([]Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := r.pipeline.RunPipeline([]string{text})
	if err != nil {
		return nil, fmt.Errorf("running NER pipeline: %w", err)
	}
	if len(result.Entities) == 0 {
		return nil, nil
	}

	var entities []Entity
	for _, ent := range result.Entities[0] {
		word := strings.TrimSpace(ent.Word)
		if word == "" {
			continue
		}
		entities = append(entities, Entity{
			Text:  word,
			Label: normalizeLabel(ent.Entity),
		})
	}
	return entities, nil
}

// Close releases the hugot session.
func (r *HugotRecognizer) Close() error {
	return r.session.Destroy()
}

// normalizeLabel strips BIO tagging prefixes and maps model-specific tags to
// the labels the rest of the system uses (PER → PERSON).
func normalizeLabel(label string) string {
	label = strings.TrimPrefix(label, "B-")
	label = strings.TrimPrefix(label, "I-")
	switch label {
	case "PER":
		return LabelPerson
	case "LOC":
		return "LOCATION"
	default:
		return label
	}
}
