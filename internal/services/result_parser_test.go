package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"alfredoptarigan/cv-screening/internal/models"
)

func TestParseAnalysis(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want models.Analysis
	}{
		{
			name: "plain json",
			raw:  `{"OverallScore": 82, "Summary": "Solid fit", "Strengths": ["Go"], "Weaknesses": ["No k8s"], "DetailedAnalysis": "Details"}`,
			want: models.Analysis{OverallScore: 82, Summary: "Solid fit", Strengths: []string{"Go"}, Weaknesses: []string{"No k8s"}, DetailedAnalysis: "Details"},
		},
		{
			name: "wrapped in prose and fences",
			raw:  "Here is the analysis:\n```json\n{\"OverallScore\": 71, \"Summary\": \"Good\"}\n```\nThanks!",
			want: models.Analysis{OverallScore: 71, Summary: "Good", Strengths: []string{}, Weaknesses: []string{}},
		},
		{
			name: "string score is rounded",
			raw:  `{"OverallScore": "77.6"}`,
			want: models.Analysis{OverallScore: 78, Strengths: []string{}, Weaknesses: []string{}},
		},
		{
			name: "float score",
			raw:  `{"OverallScore": 64.4}`,
			want: models.Analysis{OverallScore: 64, Strengths: []string{}, Weaknesses: []string{}},
		},
		{
			name: "score above range is clamped",
			raw:  `{"OverallScore": 140}`,
			want: models.Analysis{OverallScore: 100, Strengths: []string{}, Weaknesses: []string{}},
		},
		{
			name: "negative score is clamped",
			raw:  `{"OverallScore": -3}`,
			want: models.Analysis{OverallScore: 0, Strengths: []string{}, Weaknesses: []string{}},
		},
		{
			name: "score beyond int range is clamped high",
			raw:  `{"OverallScore": 1e20}`,
			want: models.Analysis{OverallScore: 100, Strengths: []string{}, Weaknesses: []string{}},
		},
		{
			name: "score beyond int range is clamped low",
			raw:  `{"OverallScore": "-1e20"}`,
			want: models.Analysis{OverallScore: 0, Strengths: []string{}, Weaknesses: []string{}},
		},
		{
			name: "unparseable score keeps default",
			raw:  `{"OverallScore": "high"}`,
			want: models.Analysis{OverallScore: 50, Strengths: []string{}, Weaknesses: []string{}},
		},
		{
			name: "snake case keys",
			raw:  `{"overall_score": 90, "detailed_analysis": "ok"}`,
			want: models.Analysis{OverallScore: 90, Strengths: []string{}, Weaknesses: []string{}, DetailedAnalysis: "ok"},
		},
		{
			name: "list items are coerced to strings",
			raw:  `{"Strengths": ["Go", 3, true, "", null], "Weaknesses": "single weakness"}`,
			want: models.Analysis{OverallScore: 50, Strengths: []string{"Go", "3", "true"}, Weaknesses: []string{"single weakness"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAnalysis(tt.raw))
		})
	}
}

func TestParseAnalysisDegradesOnUndecodableOutput(t *testing.T) {
	for _, raw := range []string{
		"I am sorry, I cannot evaluate this candidate.",
		"",
		"} backwards {",
		"{not json at all}",
	} {
		got := ParseAnalysis(raw)
		assert.Equal(t, DegradedAnalysis(), got, "input %q", raw)
		assert.Equal(t, 50, got.OverallScore)
		assert.Equal(t, "Analysis could not be completed due to a processing error.", got.Summary)
	}
}

func TestParseAnalysisIsDeterministic(t *testing.T) {
	raw := `{"OverallScore": 10, "overall_score": 20, "overall-score": 30, "Summary": "s"}`

	first := ParseAnalysis(raw)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, ParseAnalysis(raw))
	}
	assert.Equal(t, 10, first.OverallScore)

	noExact := `{"overall_score": 20, "overall-score": 30}`
	for i := 0; i < 20; i++ {
		assert.Equal(t, 30, ParseAnalysis(noExact).OverallScore)
	}
}
