package services

import (
	"encoding/json"
	"math/rand/v2"
	"sync"
)

var mockStrengths = []string{
	"Strong technical foundation relevant to the role",
	"Clear and well-structured CV",
	"Demonstrated ownership of end-to-end projects",
	"Relevant industry experience",
	"Evidence of continuous learning and certifications",
	"Good communication and collaboration skills",
	"Track record of measurable results",
}

var mockWeaknesses = []string{
	"Limited evidence of leadership experience",
	"Some required skills are not clearly demonstrated",
	"Few quantified achievements",
	"Short tenure in recent positions",
	"Limited exposure to the specific domain",
}

var mockInterviewQuestions = []string{
	"Walk us through the project you are most proud of and your role in it.",
	"How do you approach learning a new tool or domain quickly?",
	"Describe a time you disagreed with a teammate and how it was resolved.",
}

// mockPayload mirrors the output schema requested in screening prompts.
type mockPayload struct {
	OverallScore         int               `json:"OverallScore"`
	Summary              string            `json:"Summary"`
	Strengths            []string          `json:"Strengths"`
	Weaknesses           []string          `json:"Weaknesses"`
	DetailedAnalysis     string            `json:"DetailedAnalysis"`
	SkillMatch           map[string]string `json:"SkillMatch"`
	ExperienceAssessment map[string]string `json:"ExperienceAssessment"`
	Recommendation       string            `json:"Recommendation"`
	InterviewQuestions   []string          `json:"InterviewQuestions"`
}

// MockAnalysisGenerator produces schema-valid screening output without a
// model: score in [60,95], 2-4 strengths and 1-3 weaknesses.
type MockAnalysisGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewMockAnalysisGenerator() *MockAnalysisGenerator {
	return NewSeededMockAnalysisGenerator(rand.Uint64())
}

func NewSeededMockAnalysisGenerator(seed uint64) *MockAnalysisGenerator {
	return &MockAnalysisGenerator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (m *MockAnalysisGenerator) Generate() string {
	m.mu.Lock()
	score := 60 + m.rng.IntN(36)
	strengths := m.sample(mockStrengths, 2+m.rng.IntN(3))
	weaknesses := m.sample(mockWeaknesses, 1+m.rng.IntN(3))
	m.mu.Unlock()

	payload := mockPayload{
		OverallScore: score,
		Summary:      "Automated screening summary: the candidate shows a reasonable fit for the position based on the submitted CV.",
		Strengths:    strengths,
		Weaknesses:   weaknesses,
		DetailedAnalysis: "This analysis was generated locally because the AI provider was unavailable. " +
			"It reflects a generic assessment and should be confirmed by a recruiter.",
		SkillMatch: map[string]string{
			"core_skills":     "partially matched",
			"nice_to_have":    "not assessed",
			"domain_know_how": "partially matched",
		},
		ExperienceAssessment: map[string]string{
			"years":     "not assessed",
			"relevance": "moderate",
		},
		Recommendation:     recommendationFor(score),
		InterviewQuestions: mockInterviewQuestions,
	}

	body, _ := json.Marshal(payload)
	return string(body)
}

// sample picks n distinct items, keeping draw order.
func (m *MockAnalysisGenerator) sample(items []string, n int) []string {
	if n > len(items) {
		n = len(items)
	}
	out := make([]string, 0, n)
	for _, idx := range m.rng.Perm(len(items))[:n] {
		out = append(out, items[idx])
	}
	return out
}

func recommendationFor(score int) string {
	switch {
	case score >= 85:
		return "Strongly Recommend"
	case score >= 75:
		return "Recommend"
	case score >= 65:
		return "Consider"
	default:
		return "Not Recommended"
	}
}
