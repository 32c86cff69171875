package seed

type step struct {
	role   string
	weight int
	skills []string
}

var entryRoles = []string{
	"Software Engineer",
	"Data Analyst",
	"Associate Product Manager",
	"Business Analyst",
	"Designer",
}

var baseSkills = map[string][]string{
	"Software Engineer":         {"Go", "Git", "SQL"},
	"Data Analyst":              {"SQL", "Excel"},
	"Associate Product Manager": {"Roadmapping", "Communication"},
	"Business Analyst":          {"Excel", "Communication"},
	"Designer":                  {"Figma", "User Research"},
}

// ladder lists the observed next roles per role with relative weights.
var ladder = map[string][]step{
	"Software Engineer": {
		{role: "Senior Software Engineer", weight: 7, skills: []string{"System Design"}},
		{role: "Data Engineer", weight: 2, skills: []string{"Spark", "Python"}},
		{role: "DevOps Engineer", weight: 1, skills: []string{"Kubernetes", "Terraform"}},
	},
	"Senior Software Engineer": {
		{role: "Staff Engineer", weight: 4, skills: []string{"Architecture"}},
		{role: "Engineering Manager", weight: 3, skills: []string{"Leadership", "Hiring"}},
		{role: "Tech Lead", weight: 3, skills: []string{"Leadership", "Mentoring"}},
	},
	"Tech Lead": {
		{role: "Engineering Manager", weight: 1, skills: []string{"Hiring"}},
	},
	"Staff Engineer": {
		{role: "Principal Engineer", weight: 1, skills: []string{"Strategy"}},
	},
	"Engineering Manager": {
		{role: "Director of Engineering", weight: 1, skills: []string{"Budgeting", "Strategy"}},
	},
	"Data Engineer": {
		{role: "Senior Data Engineer", weight: 1, skills: []string{"Airflow"}},
	},
	"DevOps Engineer": {
		{role: "Site Reliability Engineer", weight: 1, skills: []string{"Observability"}},
	},
	"Data Analyst": {
		{role: "Data Scientist", weight: 6, skills: []string{"Python", "Statistics"}},
		{role: "Senior Data Analyst", weight: 4, skills: []string{"Tableau"}},
	},
	"Senior Data Analyst": {
		{role: "Analytics Manager", weight: 1, skills: []string{"Leadership"}},
	},
	"Data Scientist": {
		{role: "Senior Data Scientist", weight: 6, skills: []string{"Machine Learning"}},
		{role: "Machine Learning Engineer", weight: 4, skills: []string{"Machine Learning", "MLOps"}},
	},
	"Associate Product Manager": {
		{role: "Product Manager", weight: 1, skills: []string{"Prioritization"}},
	},
	"Product Manager": {
		{role: "Senior Product Manager", weight: 8, skills: []string{"Stakeholder Management"}},
		{role: "Product Owner", weight: 2, skills: []string{"Agile"}},
	},
	"Senior Product Manager": {
		{role: "Director of Product", weight: 1, skills: []string{"Strategy"}},
	},
	"Business Analyst": {
		{role: "Product Manager", weight: 5, skills: []string{"Prioritization"}},
		{role: "Data Analyst", weight: 3, skills: []string{"SQL"}},
		{role: "Consultant", weight: 2, skills: []string{"Presentation"}},
	},
	"Designer": {
		{role: "Senior Designer", weight: 7, skills: []string{"Design Systems"}},
		{role: "Product Manager", weight: 3, skills: []string{"Prioritization"}},
	},
	"Senior Designer": {
		{role: "Design Lead", weight: 1, skills: []string{"Leadership"}},
	},
}

var skillPool = []string{
	"Communication", "Python", "SQL", "Leadership", "Cloud", "Docker",
	"Negotiation", "Public Speaking", "Project Management", "AWS",
}

var industries = []string{
	"Technology", "Finance", "Healthcare", "Retail", "Education", "Consulting",
}
