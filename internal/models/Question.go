package models

// Role is the semantic meaning of a question for analytics. It is assigned
// once when the question is created and survives later label edits.
type Role string

const (
	RoleNone         Role = ""
	RoleRPE          Role = "rpe"
	RoleRounds       Role = "rounds"
	RoleSessionType  Role = "session_type"
	RoleTrainingType Role = "training_type"
	RoleTechnique    Role = "technique"
	RoleNotes        Role = "notes"
	RoleSummary      Role = "summary"
)

var knownRoles = map[Role]struct{}{
	RoleRPE:          {},
	RoleRounds:       {},
	RoleSessionType:  {},
	RoleTrainingType: {},
	RoleTechnique:    {},
	RoleNotes:        {},
	RoleSummary:      {},
}

// Valid reports whether r is one of the declared roles. RoleNone is valid.
func (r Role) Valid() bool {
	if r == RoleNone {
		return true
	}
	_, ok := knownRoles[r]
	return ok
}

type Question struct {
	ID         string `json:"id"`
	Label      string `json:"question_text"`
	Kind       string `json:"question_type"`
	Category   string `json:"category"`
	Role       Role   `json:"role,omitempty"`
	OrderIndex int    `json:"order_index"`
	Active     bool   `json:"is_active"`
}

// DefaultQuestions is the question set a fresh journal starts with.
func DefaultQuestions() []Question {
	return []Question{
		{Label: "Session Type", Kind: "select", Category: "general", Role: RoleSessionType, OrderIndex: 1, Active: true},
		{Label: "Rate of Perceived Exertion (1-9)", Kind: "rating", Category: "physical", Role: RoleRPE, OrderIndex: 2, Active: true},
		{Label: "Training", Kind: "select", Category: "general", Role: RoleTrainingType, OrderIndex: 3, Active: true},
		{Label: "Class Technique", Kind: "text", Category: "technique", Role: RoleTechnique, OrderIndex: 4, Active: true},
		{Label: "Rounds Rolled", Kind: "number", Category: "general", Role: RoleRounds, OrderIndex: 5, Active: true},
		{Label: "Journal Notes", Kind: "text", Category: "notes", Role: RoleNotes, OrderIndex: 6, Active: true},
		{Label: "Summarise this session with a few words", Kind: "text", Category: "summary", Role: RoleSummary, OrderIndex: 7, Active: true},
	}
}
