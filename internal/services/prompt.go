package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/cv-screening/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildScreeningPrompt composes, in order: guidelines, job-type focus,
// experience guidance, scoring rubric, output schema and finally the CV text.
func (pb *PromptBuilder) BuildScreeningPrompt(job *models.Job, cvText string) (string, JobContext) {
	jc := NewJobContext(job.Description, job.Skills, job.ExperienceLevel)

	sections := []string{
		pb.guidelines(job),
		jobTypeFocus(jc.JobType),
		experienceGuidance(jc.ExperienceLevel),
		scoringRubric,
		outputSchema,
		"CANDIDATE CV:\n" + cvText,
	}

	return strings.Join(sections, "\n\n"), jc
}

func (pb *PromptBuilder) guidelines(job *models.Job) string {
	return fmt.Sprintf(`You are an expert HR recruiter screening a candidate's CV for the position below.

JOB TITLE:
%s

JOB DESCRIPTION:
%s

REQUIRED SKILLS:
%s

EVALUATION GUIDELINES:
- Judge the candidate only against this posting and the evidence in the CV.
- Quote concrete examples from the CV to justify strengths and weaknesses.
- Do not reward keyword stuffing; prefer demonstrated outcomes.
- Be objective, consistent and concise.`,
		job.Title, orNone(job.Description), orNone(job.Skills))
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(not specified)"
	}
	return s
}

func jobTypeFocus(jt JobType) string {
	var focus string
	switch jt {
	case JobTypeSoftware:
		focus = "technical depth in the required languages and frameworks, system design, code quality, testing practices and shipped projects"
	case JobTypeMarketing:
		focus = "campaign results, channel expertise, brand and content work, and measurable growth metrics"
	case JobTypeSales:
		focus = "quota attainment, pipeline management, deal sizes, negotiation and client relationships"
	case JobTypeFinance:
		focus = "accounting standards, financial analysis and reporting, compliance, audit exposure and accuracy"
	case JobTypeHR:
		focus = "recruiting outcomes, employee relations, HR policy and compliance, and people programs"
	case JobTypeDesign:
		focus = "portfolio quality, design process, user research, tooling and collaboration with engineering"
	case JobTypeData:
		focus = "statistical and analytical rigor, data tooling, modelling experience and business impact of insights"
	case JobTypeManagement:
		focus = "team leadership, delivery track record, planning, stakeholder management and decision making"
	case JobTypeOperations:
		focus = "process improvement, logistics and supply chain knowledge, cost control and operational KPIs"
	case JobTypeCustomerService:
		focus = "customer satisfaction results, issue resolution, communication and support tooling"
	default:
		focus = "role-relevant skills and demonstrated results"
	}

	return "ROLE FOCUS:\nFor this role, pay particular attention to " + focus + "."
}

func experienceGuidance(level ExperienceLevel) string {
	var guidance string
	switch level {
	case ExperienceEntry:
		guidance = "This is an entry-level role. Weigh education, internships, personal projects and learning potential over years of experience."
	case ExperienceMid:
		guidance = "This is a mid-level role. Expect independent delivery, 2-5 years of relevant experience and solid fundamentals."
	case ExperienceSenior:
		guidance = "This is a senior role. Expect deep expertise, ownership of complex work, mentoring and 5+ years of relevant experience."
	case ExperienceLead:
		guidance = "This is a lead role. Expect technical or functional leadership, team guidance and cross-team influence."
	case ExperienceExecutive:
		guidance = "This is an executive role. Expect strategic leadership, organizational impact and 10+ years of experience."
	default:
		guidance = "Assess whether the candidate's experience matches the seniority implied by the posting."
	}

	return "EXPERIENCE LEVEL GUIDANCE:\n" + guidance
}

const scoringRubric = `SCORING RUBRIC (OverallScore, 0-100):
- 90-100: Exceptional match, exceeds nearly all requirements
- 80-89: Strong match, meets all key requirements
- 70-79: Good match, meets most requirements with minor gaps
- 60-69: Fair match, meets some requirements with notable gaps
- 50-59: Weak match, significant gaps
- Below 50: Poor match, does not meet core requirements

Weight the score by:
1. Technical/functional skills (30%)
2. Relevant experience (25%)
3. Education and certifications (15%)
4. Soft skills and communication (15%)
5. Cultural fit (10%)
6. Growth potential (5%)`

const outputSchema = `OUTPUT FORMAT:
Respond with ONLY a valid JSON object, no markdown and no extra text, using exactly these fields:
{
  "OverallScore": <integer 0-100>,
  "Summary": "<2-3 sentence overview>",
  "Strengths": ["<strength>", "..."],
  "Weaknesses": ["<weakness>", "..."],
  "DetailedAnalysis": "<detailed paragraph>",
  "SkillMatch": {"<skill>": "<match assessment>"},
  "ExperienceAssessment": {"years": "<estimate>", "relevance": "<assessment>"},
  "Recommendation": "<Strongly Recommend | Recommend | Consider | Not Recommended>",
  "InterviewQuestions": ["<question>", "..."]
}`
