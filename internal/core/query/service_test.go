package query

import (
	"strings"
	"testing"
)

func TestBuildPrompt(t *testing.T) {
	ctxs := []ContextSnippet{
		{DocID: 3, Page: 2, Snippet: "The vendor shall provide 24/7 support."},
		{DocID: 3, Page: 5, Snippet: "Penalties apply after 4 hours of downtime."},
	}
	sys, user := buildPrompt("What are the support requirements?", ctxs)

	if !strings.Contains(sys, "[1] (doc_id=3, page=2)") {
		t.Fatalf("system prompt missing first context header:\n%s", sys)
	}
	if !strings.Contains(sys, "[2] (doc_id=3, page=5)") {
		t.Fatalf("system prompt missing second context header:\n%s", sys)
	}
	if !strings.Contains(sys, noEvidenceAnswer) {
		t.Fatalf("system prompt missing refusal instruction")
	}
	if user != "Question: What are the support requirements?" {
		t.Fatalf("unexpected user prompt: %q", user)
	}
}

func TestSanitize(t *testing.T) {
	if got := sanitize("  a\x00b  "); got != "ab" {
		t.Fatalf("sanitize = %q", got)
	}
}
