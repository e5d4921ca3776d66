package analyze

import (
	"math"
	"testing"

	"github.com/MayTheStar/EVAL/internal/database/model"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"scaled", []float32{1, 1}, []float32{5, 5}, 1},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosine(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("cosine(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestMatchClaims(t *testing.T) {
	reqVecs := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	claimVecs := [][]float32{
		{0.9, 0.1, 0},  // close to req 0
		{0.1, 0.95, 0}, // close to req 1
	}

	matches := matchClaims(reqVecs, claimVecs, 0.75)
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	if !matches[0].Matched || matches[0].ClaimIndex != 0 {
		t.Fatalf("req 0 should match claim 0, got %+v", matches[0])
	}
	if !matches[1].Matched || matches[1].ClaimIndex != 1 {
		t.Fatalf("req 1 should match claim 1, got %+v", matches[1])
	}
	if matches[2].Matched {
		t.Fatalf("req 2 should be unmatched, got %+v", matches[2])
	}
}

func TestMatchClaims_NoClaims(t *testing.T) {
	matches := matchClaims([][]float32{{1, 0}}, nil, 0.75)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match entry, got %d", len(matches))
	}
	if matches[0].Matched || matches[0].ClaimIndex != -1 {
		t.Fatalf("expected unmatched entry, got %+v", matches[0])
	}
}

func TestBuildReport(t *testing.T) {
	reqs := []model.Requirement{
		{ID: 1, RequirementText: "Encrypt data at rest"},
		{ID: 2, RequirementText: "Provide 24/7 support"},
		{ID: 3, RequirementText: "SOC 2 certification"},
	}
	matches := []claimMatch{
		{ClaimIndex: 0, Score: 0.9, Matched: true},
		{ClaimIndex: 1, Score: 0.5, Matched: false},
		{ClaimIndex: -1, Score: 0, Matched: false},
	}

	report := buildReport(42, reqs, matches)
	if report.VendorDocID != 42 {
		t.Fatalf("unexpected vendor doc id %d", report.VendorDocID)
	}
	if report.TotalMandatory != 3 || report.Matched != 1 || report.Missing != 2 {
		t.Fatalf("unexpected counts: %+v", report)
	}
	if report.Compliant {
		t.Fatalf("report should not be compliant with missing requirements")
	}
	want := []string{"Provide 24/7 support", "SOC 2 certification"}
	if len(report.MissingRequirements) != len(want) {
		t.Fatalf("unexpected missing list: %v", report.MissingRequirements)
	}
	for i := range want {
		if report.MissingRequirements[i] != want[i] {
			t.Fatalf("missing[%d] = %q, want %q", i, report.MissingRequirements[i], want[i])
		}
	}
}

func TestBuildReport_AllMatched(t *testing.T) {
	reqs := []model.Requirement{{ID: 1, RequirementText: "Uptime SLA 99.9%"}}
	report := buildReport(7, reqs, []claimMatch{{ClaimIndex: 0, Score: 0.8, Matched: true}})
	if !report.Compliant || report.Missing != 0 || report.Matched != 1 {
		t.Fatalf("expected fully compliant report, got %+v", report)
	}
}

func TestStripFences(t *testing.T) {
	plain := `{"requirements": []}`
	if got := stripFences(plain); got != plain {
		t.Fatalf("plain JSON altered: %q", got)
	}
	fenced := "```json\n{\"summary\": \"ok\"}\n```"
	if got := stripFences(fenced); got != `{"summary": "ok"}` {
		t.Fatalf("fence not stripped: %q", got)
	}
	bare := "```\n{}\n```"
	if got := stripFences(bare); got != "{}" {
		t.Fatalf("bare fence not stripped: %q", got)
	}
}

func TestPriorityFor(t *testing.T) {
	if p := priorityFor("mandatory"); p == nil || *p != "must" {
		t.Fatalf("mandatory should map to must")
	}
	if p := priorityFor("optional"); p == nil || *p != "nice" {
		t.Fatalf("optional should map to nice")
	}
	if p := priorityFor("whatever"); p != nil {
		t.Fatalf("unknown type should map to nil, got %q", *p)
	}
}
