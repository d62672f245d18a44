package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/cv-screening/internal/models"
)

func TestBuildScreeningPromptSectionOrder(t *testing.T) {
	job := &models.Job{
		Title:           "Backend Engineer",
		Description:     "Build Go backend services",
		Skills:          "Go, PostgreSQL",
		ExperienceLevel: "senior",
	}
	cv := "Jane Doe\nGo developer with 6 years of experience"

	prompt, jc := NewPromptBuilder().BuildScreeningPrompt(job, cv)

	assert.Equal(t, JobTypeSoftware, jc.JobType)
	assert.Equal(t, ExperienceSenior, jc.ExperienceLevel)

	markers := []string{
		"JOB TITLE:\nBackend Engineer",
		"REQUIRED SKILLS:\nGo, PostgreSQL",
		"ROLE FOCUS:",
		"EXPERIENCE LEVEL GUIDANCE:\nThis is a senior role.",
		"SCORING RUBRIC",
		"OUTPUT FORMAT:",
		"CANDIDATE CV:\n",
	}
	last := -1
	for _, marker := range markers {
		idx := strings.Index(prompt, marker)
		require.NotEqual(t, -1, idx, "missing %q", marker)
		assert.Greater(t, idx, last, "%q out of order", marker)
		last = idx
	}

	assert.True(t, strings.HasSuffix(prompt, "CANDIDATE CV:\n"+cv))
}

func TestBuildScreeningPromptHandlesSparseJob(t *testing.T) {
	prompt, jc := NewPromptBuilder().BuildScreeningPrompt(&models.Job{Title: "Recruiter", Description: "Run payroll and onboarding"}, "")

	assert.Equal(t, JobTypeHR, jc.JobType)
	assert.Equal(t, ExperienceMid, jc.ExperienceLevel)
	assert.Contains(t, prompt, "REQUIRED SKILLS:\n(not specified)")
	assert.Contains(t, prompt, "recruiting outcomes")
	assert.True(t, strings.HasSuffix(prompt, "CANDIDATE CV:\n"))
}

func TestPromptSectionsCoverEveryCategory(t *testing.T) {
	for _, jt := range []JobType{
		JobTypeSoftware, JobTypeMarketing, JobTypeSales, JobTypeFinance, JobTypeHR,
		JobTypeDesign, JobTypeData, JobTypeManagement, JobTypeOperations, JobTypeCustomerService,
	} {
		assert.NotContains(t, jobTypeFocus(jt), "role-relevant skills", "job type %s", jt)
	}
	for _, level := range []ExperienceLevel{
		ExperienceEntry, ExperienceMid, ExperienceSenior, ExperienceLead, ExperienceExecutive,
	} {
		assert.NotContains(t, experienceGuidance(level), "Assess whether", "level %s", level)
	}
}
