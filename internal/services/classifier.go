package services

import (
	"strings"
	"unicode"
)

type JobType string

const (
	JobTypeSoftware        JobType = "software"
	JobTypeMarketing       JobType = "marketing"
	JobTypeSales           JobType = "sales"
	JobTypeFinance         JobType = "finance"
	JobTypeHR              JobType = "hr"
	JobTypeDesign          JobType = "design"
	JobTypeData            JobType = "data"
	JobTypeManagement      JobType = "management"
	JobTypeOperations      JobType = "operations"
	JobTypeCustomerService JobType = "customer_service"
)

type ExperienceLevel string

const (
	ExperienceEntry     ExperienceLevel = "entry"
	ExperienceMid       ExperienceLevel = "mid"
	ExperienceSenior    ExperienceLevel = "senior"
	ExperienceLead      ExperienceLevel = "lead"
	ExperienceExecutive ExperienceLevel = "executive"
)

// JobContext is derived from a posting each time a prompt is built.
type JobContext struct {
	JobType         JobType
	ExperienceLevel ExperienceLevel
}

type classificationRule[T any] struct {
	category T
	keywords []string
}

// Keywords wrapped in spaces only match whole words; the scanned text is
// normalized so punctuation never glues words together.
var jobTypeRules = []classificationRule[JobType]{
	{JobTypeSoftware, []string{"software", "developer", "engineer", "programming", "backend", "frontend", "full stack", "devops", "golang", " java ", "python", "javascript"}},
	{JobTypeMarketing, []string{"marketing", " seo ", "brand", "social media", "campaign", "content strategy"}},
	{JobTypeSales, []string{"sales", "business development", "account executive", "quota", " crm ", "lead generation"}},
	{JobTypeFinance, []string{"finance", "financial", "accounting", "accountant", "audit", " tax ", "bookkeeping"}},
	{JobTypeHR, []string{"human resources", " hr ", "recruit", "talent acquisition", "payroll", "onboarding"}},
	{JobTypeDesign, []string{"design", " ux ", " ui ", "figma", "graphic", "illustrator", "typography"}},
	{JobTypeData, []string{"data", "analytics", "machine learning", "statistics", " sql ", " bi ", "tableau"}},
	{JobTypeManagement, []string{"management", "manager", "project", "program", "product owner", "scrum", "stakeholder"}},
	{JobTypeOperations, []string{"operations", "logistics", "supply chain", "procurement", "warehouse", "inventory"}},
	{JobTypeCustomerService, []string{"customer service", "customer support", "help desk", "call center", "client success", "customer success"}},
}

var experienceRules = []classificationRule[ExperienceLevel]{
	{ExperienceEntry, []string{"entry", "junior", "graduate"}},
	{ExperienceSenior, []string{"senior", "lead", "principal", " 5+ years ", " 7+ years "}},
	{ExperienceExecutive, []string{"executive", "director", " vp ", " 10+ years ", " 15+ years "}},
}

// explicitLevels maps normalized job level values (suffix "level" removed).
var explicitLevels = map[string]ExperienceLevel{
	"entry":        ExperienceEntry,
	"junior":       ExperienceEntry,
	"graduate":     ExperienceEntry,
	"intern":       ExperienceEntry,
	"mid":          ExperienceMid,
	"middle":       ExperienceMid,
	"intermediate": ExperienceMid,
	"senior":       ExperienceSenior,
	"lead":         ExperienceLead,
	"principal":    ExperienceLead,
	"staff":        ExperienceLead,
	"executive":    ExperienceExecutive,
	"director":     ExperienceExecutive,
	"vp":           ExperienceExecutive,
}

// normalizeForMatching lower-cases text, turns anything but letters, digits
// and '+' into single spaces and pads the result with spaces.
func normalizeForMatching(text string) string {
	var sb strings.Builder
	sb.WriteByte(' ')
	lastSpace := true
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' {
			sb.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			sb.WriteByte(' ')
			lastSpace = true
		}
	}
	if !lastSpace {
		sb.WriteByte(' ')
	}
	return sb.String()
}

func firstMatch[T any](text string, rules []classificationRule[T]) (T, bool) {
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.category, true
			}
		}
	}
	var zero T
	return zero, false
}

// ClassifyJobType scans description and skills; Software when nothing matches.
func ClassifyJobType(description, skills string) JobType {
	if jt, ok := firstMatch(normalizeForMatching(description+" "+skills), jobTypeRules); ok {
		return jt
	}
	return JobTypeSoftware
}

// ClassifyExperienceLevel prefers an explicit level and falls back to a
// keyword scan of the description. Mid is the default.
func ClassifyExperienceLevel(explicit, description string) ExperienceLevel {
	if level, ok := parseExplicitLevel(explicit); ok {
		return level
	}
	if level, ok := firstMatch(normalizeForMatching(description), experienceRules); ok {
		return level
	}
	return ExperienceMid
}

func parseExplicitLevel(value string) (ExperienceLevel, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	v = strings.TrimSuffix(v, "-level")
	v = strings.TrimSuffix(v, " level")
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	level, ok := explicitLevels[v]
	return level, ok
}

func NewJobContext(description, skills, explicitLevel string) JobContext {
	return JobContext{
		JobType:         ClassifyJobType(description, skills),
		ExperienceLevel: ClassifyExperienceLevel(explicitLevel, description),
	}
}
