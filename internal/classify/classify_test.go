package classify

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Category
	}{
		{"education keywords", "What is the educational qualification of Jane Doe?", Education},
		{"studied", "Where did Jane Doe study?", Education},
		{"current job", "What is Alice Smith's current job?", Experience},
		{"work at company", "Tell me about Alice's work experience at Tech Corp", Experience},
		{"skills", "What skills does Alice Smith have?", Skills},
		{"languages", "Does Alice speak Spanish?", Languages},
		{"certifications", "What certifications does Alice hold?", Certifications},
		{"location", "Where is Alice Smith located?", Location},
		{"contact", "How can I contact Alice Smith?", Contact},
		{"general fallback", "Tell me about Alice Smith", General},
		{"no trigger keywords", "salary", General},
		{"empty query", "", General},
		{"case insensitive", "WHAT DEGREE DOES JANE HAVE?", Education},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.query); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.query, got, tt.want)
			}
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	query := "Tell me about Alice's work experience and education"
	first := Classify(query)
	for i := 0; i < 10; i++ {
		if got := Classify(query); got != first {
			t.Fatalf("Classify not deterministic: got %s then %s", first, got)
		}
	}
}

func TestClassify_TieBreaksByDeclarationOrder(t *testing.T) {
	// "degree" scores education once, "job" scores experience once.
	// Education is declared first, so it must win the tie.
	if got := Classify("degree job"); got != Education {
		t.Errorf("tie broke to %s, want education (first declared)", got)
	}
}

func TestClassify_StrictlyHigherCountWins(t *testing.T) {
	// Two experience keywords against one education keyword.
	query := "what job and position relates to their degree"
	if got := Classify(query); got != Experience {
		t.Errorf("Classify(%q) = %s, want experience", query, got)
	}
}

func TestClassify_GeneralNeverWinsTies(t *testing.T) {
	// "about" scores general once, "email" scores contact once. General is
	// declared last, so a tied nonzero count goes to contact.
	if got := Classify("about their email"); got != Contact {
		t.Errorf("Classify = %s, want contact", got)
	}
}
