package analytics

import (
	"strings"

	"trainlog/internal/models"
)

type labelRule struct {
	marker string
	exact  bool
	role   models.Role
}

// labelRules are the markers used for questions created before roles were
// stored. Matching is case-sensitive and the first matching rule wins.
var labelRules = []labelRule{
	{marker: "Rate of Perceived Exertion", role: models.RoleRPE},
	{marker: "Rounds Rolled", role: models.RoleRounds},
	{marker: "Session Type", role: models.RoleSessionType},
	{marker: "Training", exact: true, role: models.RoleTrainingType},
	{marker: "Class Technique", role: models.RoleTechnique},
}

// RoleForLabel derives a role from the question wording alone.
func RoleForLabel(label string) models.Role {
	for _, rule := range labelRules {
		if rule.exact {
			if label == rule.marker {
				return rule.role
			}
			continue
		}
		if strings.Contains(label, rule.marker) {
			return rule.role
		}
	}
	return models.RoleNone
}

// Classify returns the analytics role of a response's question. A nil
// question (deleted or detached) has no role.
func Classify(q *models.Question) models.Role {
	if q == nil {
		return models.RoleNone
	}
	if q.Role != models.RoleNone {
		return q.Role
	}
	return RoleForLabel(q.Label)
}
