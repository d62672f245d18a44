package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyJobType(t *testing.T) {
	tests := []struct {
		name        string
		description string
		skills      string
		want        JobType
	}{
		{name: "software", description: "We need a backend engineer", want: JobTypeSoftware},
		{name: "software from skills", description: "Join our team", skills: "Go, PostgreSQL, Python", want: JobTypeSoftware},
		{name: "marketing", description: "Own SEO and brand campaigns", want: JobTypeMarketing},
		{name: "sales", description: "Hit quarterly quota and grow accounts", want: JobTypeSales},
		{name: "finance", description: "Prepare financial statements", want: JobTypeFinance},
		{name: "hr", description: "Run payroll and onboarding", want: JobTypeHR},
		{name: "design", description: "Create wireframes in Figma", want: JobTypeDesign},
		{name: "data", description: "Build dashboards in Tableau", want: JobTypeData},
		{name: "management", description: "Coordinate scrum ceremonies", want: JobTypeManagement},
		{name: "operations", description: "Optimize warehouse inventory", want: JobTypeOperations},
		{name: "customer service", description: "Answer help desk tickets", want: JobTypeCustomerService},
		{name: "earlier rule wins", description: "Data engineer", want: JobTypeSoftware},
		{name: "short keywords need whole words", description: "Three shifts per week", want: JobTypeSoftware},
		{name: "punctuation separates words", description: "Skills: SQL/Excel", want: JobTypeData},
		{name: "no match defaults to software", description: "Friendly team", want: JobTypeSoftware},
		{name: "empty", want: JobTypeSoftware},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyJobType(tt.description, tt.skills))
		})
	}
}

func TestClassifyExperienceLevel(t *testing.T) {
	tests := []struct {
		name        string
		explicit    string
		description string
		want        ExperienceLevel
	}{
		{name: "explicit senior", explicit: "Senior", want: ExperienceSenior},
		{name: "explicit with level suffix", explicit: "mid-level", want: ExperienceMid},
		{name: "explicit with spaced suffix", explicit: "Entry Level", want: ExperienceEntry},
		{name: "explicit lead", explicit: "lead", want: ExperienceLead},
		{name: "explicit wins over description", explicit: "executive", description: "junior friendly", want: ExperienceExecutive},
		{name: "unknown explicit falls back to description", explicit: "rockstar", description: "Junior role", want: ExperienceEntry},
		{name: "senior keyword", description: "Principal engineer", want: ExperienceSenior},
		{name: "years keyword", description: "7+ years building APIs", want: ExperienceSenior},
		{name: "executive keyword", description: "10+ years of experience", want: ExperienceExecutive},
		{name: "15+ years is executive", description: "15+ years of experience", want: ExperienceExecutive},
		{name: "5+ years is senior", description: "5+ years with Go", want: ExperienceSenior},
		{name: "executive years at end of text", description: "Own payments end to end, 15+ years", want: ExperienceExecutive},
		{name: "lead matches leadership", description: "Strong leadership skills", want: ExperienceSenior},
		{name: "default mid", description: "Work on interesting problems", want: ExperienceMid},
		{name: "empty", want: ExperienceMid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyExperienceLevel(tt.explicit, tt.description))
		})
	}
}

func TestNormalizeForMatching(t *testing.T) {
	assert.Equal(t, " c++ and go 5+ years ", normalizeForMatching("C++ and Go, 5+ years!"))
	assert.Equal(t, " ", normalizeForMatching(""))
}
