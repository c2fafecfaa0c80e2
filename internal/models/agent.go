// internal/models/agent.go
package models

// AgentGroup is a classification label derived from an agent's display name.
type AgentGroup string

const (
	GroupElena       AgentGroup = "ELENA"
	GroupElenaAffa   AgentGroup = "ELENA_AFFA"
	GroupElenaNoAffa AgentGroup = "ELENA_NOAFFA"
	GroupElenaBanner AgentGroup = "ELENA_BANNER"
	GroupMaria       AgentGroup = "MARIA"
	GroupArtesan     AgentGroup = "ARTESAN"
	GroupCoach       AgentGroup = "COACH"
	GroupOther       AgentGroup = "OTHER"
)

// AllAgentGroups lists every group in a fixed order. Index maps are keyed by
// this closed set so that lookups for a valid group never fail.
func AllAgentGroups() []AgentGroup {
	return []AgentGroup{
		GroupElena,
		GroupElenaAffa,
		GroupElenaNoAffa,
		GroupElenaBanner,
		GroupMaria,
		GroupArtesan,
		GroupCoach,
		GroupOther,
	}
}

func (g AgentGroup) String() string { return string(g) }

// VariableType enumerates the value types accepted by the platform's
// data-collection schema.
type VariableType string

const (
	VariableTypeString  VariableType = "string"
	VariableTypeBoolean VariableType = "boolean"
	VariableTypeNumber  VariableType = "number"
	VariableTypeInteger VariableType = "integer"
)

func AllVariableTypes() []VariableType {
	return []VariableType{
		VariableTypeString,
		VariableTypeBoolean,
		VariableTypeNumber,
		VariableTypeInteger,
	}
}

// VariableDefinition describes one data-collection field pushed to an agent.
type VariableDefinition struct {
	Name        string       `json:"name"`
	Type        VariableType `json:"type"`
	Description string       `json:"description"`
}
