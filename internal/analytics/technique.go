package analytics

import (
	"strings"

	json "github.com/goccy/go-json"
)

const techniqueSeparator = " - "

// DefaultSubmissionKeywords flag a technique name as a submission when any of
// them is a case-insensitive substring of it.
var DefaultSubmissionKeywords = []string{
	"choke", "lock", "slicer", "crank",
	"armbar", "arm bar", "kimura", "americana", "omoplata",
	"triangle", "guillotine", "necktie", "gogoplata",
	"heel hook", "toe hold", "kneebar", "knee bar",
	"ezekiel", "twister", "banana split", "oil check", "wristlock",
}

type Technique struct {
	Position   string
	Skill      string
	Submission bool
}

type structuredTechnique struct {
	Position  string `json:"position"`
	Category  string `json:"category"`
	Technique string `json:"technique"`
}

type TechniqueParser struct {
	keywords []string
}

func NewTechniqueParser(keywords []string) *TechniqueParser {
	if len(keywords) == 0 {
		keywords = DefaultSubmissionKeywords
	}
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			lowered = append(lowered, k)
		}
	}
	return &TechniqueParser{keywords: lowered}
}

// Parse reads a technique answer. Legacy answers are "position - technique";
// newer clients send {"position","category","technique"} as JSON.
func (p *TechniqueParser) Parse(answer string) (Technique, bool) {
	if strings.HasPrefix(strings.TrimSpace(answer), "{") {
		return p.parseStructured(answer)
	}

	parts := strings.Split(answer, techniqueSeparator)
	if len(parts) < 2 {
		return Technique{}, false
	}
	// Blank halves still count: "Mount - " is a Mount position with no
	// submission.
	position, skill := parts[0], parts[1]
	return Technique{
		Position:   position,
		Skill:      skill,
		Submission: p.IsSubmission(skill),
	}, true
}

func (p *TechniqueParser) parseStructured(answer string) (Technique, bool) {
	var st structuredTechnique
	if err := json.Unmarshal([]byte(answer), &st); err != nil {
		return Technique{}, false
	}
	if st.Position == "" || st.Technique == "" {
		return Technique{}, false
	}
	category := strings.TrimSpace(st.Category)
	submission := strings.EqualFold(category, "submission") || strings.EqualFold(category, "submissions")
	return Technique{
		Position:   st.Position,
		Skill:      st.Technique,
		Submission: submission || p.IsSubmission(st.Technique),
	}, true
}

func (p *TechniqueParser) IsSubmission(skill string) bool {
	if strings.TrimSpace(skill) == "" {
		return false
	}
	lower := strings.ToLower(skill)
	for _, k := range p.keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
