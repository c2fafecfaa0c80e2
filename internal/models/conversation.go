// internal/models/conversation.go
package models

// Conversation is the summary form built during aggregation. Immutable after
// the aggregator's Build step; Groups are derived once from AgentName.
type Conversation struct {
	ID                string       `json:"conversationId"`
	AgentID           string       `json:"agentId"`
	AgentName         string       `json:"agentName"`
	Groups            []AgentGroup `json:"agentGroups"`
	StartDate         string       `json:"startDate"`
	StartTime         string       `json:"startTime"`
	StartUnixSecs     int64        `json:"startTimeUnixSecs"`
	DurationSecs      int          `json:"callDurationSecs"`
	DurationTimestamp string       `json:"callDurationTimestamp"`
	Status            string       `json:"status"`
	Successful        bool         `json:"successful"`
	Direction         string       `json:"direction"`
}

// Turn is one transcript entry. Index is 1-based; TimeOffset is the elapsed
// time in the call formatted as zero-padded MM:SS.
type Turn struct {
	Index      int    `json:"turn"`
	TimeOffset string `json:"time"`
	Role       string `json:"role"`
	AgentID    string `json:"turn_agent_id"`
	Message    string `json:"message"`
}

// CriterionResult is one evaluation-criteria outcome.
type CriterionResult struct {
	Result    string `json:"result"`
	Rationale string `json:"rationale"`
}

// DataCollectionResult is one extracted data-collection value.
type DataCollectionResult struct {
	Value     interface{} `json:"value"`
	Rationale string      `json:"rationale"`
}

// ConversationDetail is the enriched form. The basic contact fields are
// always present (possibly empty); the optional maps and slices are nil
// unless the matching processing flag was enabled, in which case they are
// non-nil even when empty.
type ConversationDetail struct {
	Conversation

	Email              string `json:"email"`
	Phone              string `json:"phone"`
	SalesforceUserID   string `json:"salesforce_user_id"`
	SalesforceObjectID string `json:"salesforce_object_id"`

	Summary          string                          `json:"summary,omitempty"`
	Transcript       []Turn                          `json:"transcript,omitempty"`
	DynamicVariables map[string]interface{}          `json:"dynamic_variables,omitempty"`
	Criteria         map[string]CriterionResult      `json:"criteria,omitempty"`
	DataCollection   map[string]DataCollectionResult `json:"data_collection,omitempty"`
}
