package rules

import "strings"

var canonicalProgressions = map[string][]string{
	"Software Engineer":        {"Senior Software Engineer", "Tech Lead", "Engineering Manager"},
	"Junior Software Engineer": {"Software Engineer", "Senior Software Engineer", "Tech Lead"},
	"Senior Software Engineer": {"Staff Software Engineer", "Engineering Manager", "Principal Engineer"},
	"Tech Lead":                {"Engineering Manager", "Staff Software Engineer", "Director of Engineering"},
	"Engineering Manager":      {"Senior Engineering Manager", "Director of Engineering", "VP of Engineering"},
	"Data Analyst":             {"Senior Data Analyst", "Data Scientist", "Analytics Manager"},
	"Data Scientist":           {"Senior Data Scientist", "Machine Learning Engineer", "Data Science Manager"},
	"Product Manager":          {"Senior Product Manager", "Group Product Manager", "Director of Product"},
	"Business Analyst":         {"Senior Business Analyst", "Product Manager", "Business Analysis Manager"},
	"UX Designer":              {"Senior UX Designer", "Lead Designer", "Design Manager"},
	"Marketing Manager":        {"Senior Marketing Manager", "Marketing Director", "VP of Marketing"},
	"Consultant":               {"Senior Consultant", "Manager", "Principal Consultant"},
	"DevOps Engineer":          {"Senior DevOps Engineer", "Site Reliability Engineer", "Platform Engineering Lead"},
}

// Escalate derives up to three next titles from a job title by seniority
// prefix: Intern to Junior, Junior to mid-level, Senior to Lead and
// Principal. Unprefixed titles become "Senior X", "Lead X", "X Manager".
func Escalate(title string) []string {
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return nil
	}
	lower := strings.ToLower(title)

	switch {
	case strings.HasSuffix(lower, " intern"):
		base := title[:len(title)-len(" intern")]
		return []string{"Junior " + base, base, "Senior " + base}
	case strings.HasPrefix(lower, "intern "):
		base := title[len("intern "):]
		return []string{"Junior " + base, base, "Senior " + base}
	case lower == "intern":
		return []string{"Junior Associate", "Associate", "Senior Associate"}
	case strings.HasPrefix(lower, "junior "):
		base := title[len("junior "):]
		return []string{base, "Senior " + base, "Lead " + base}
	case strings.HasPrefix(lower, "senior "):
		base := title[len("senior "):]
		return []string{"Lead " + base, "Principal " + base, base + " Manager"}
	case strings.HasPrefix(lower, "lead "):
		base := title[len("lead "):]
		return []string{"Principal " + base, base + " Manager", "Head of " + base}
	case strings.HasPrefix(lower, "principal "):
		base := title[len("principal "):]
		return []string{"Distinguished " + base, base + " Director", "Head of " + base}
	default:
		return []string{"Senior " + title, "Lead " + title, title + " Manager"}
	}
}
