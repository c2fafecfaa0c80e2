package elevenlabs

// Wire types for the ConvAI endpoints this tool consumes. Fields not read by
// the pipeline are intentionally absent; unknown JSON keys are ignored on
// decode.

// AgentSummary is one entry of the agent listing endpoint.
type AgentSummary struct {
	AgentID string `json:"agent_id"`
	Name    string `json:"name"`
}

// AgentsPage is one page of the agent listing endpoint.
type AgentsPage struct {
	Agents     []AgentSummary `json:"agents"`
	HasMore    bool           `json:"has_more"`
	NextCursor string         `json:"next_cursor"`
}

// VariableSchema is one data-collection field definition inside an agent's
// platform settings.
type VariableSchema struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// PlatformSettings carries the per-agent analysis configuration. The update
// endpoint replaces the whole data_collection mapping at once.
type PlatformSettings struct {
	DataCollection map[string]VariableSchema `json:"data_collection,omitempty"`
}

// AgentDetail is the full agent record.
type AgentDetail struct {
	AgentID          string            `json:"agent_id"`
	Name             string            `json:"name"`
	PlatformSettings *PlatformSettings `json:"platform_settings,omitempty"`
}

// ConversationSummary is one entry of the conversation listing endpoint.
type ConversationSummary struct {
	ConversationID    string `json:"conversation_id"`
	AgentID           string `json:"agent_id"`
	AgentName         string `json:"agent_name"`
	StartTimeUnixSecs int64  `json:"start_time_unix_secs"`
	CallDurationSecs  int    `json:"call_duration_secs"`
	Status            string `json:"status"`
	CallSuccessful    string `json:"call_successful"`
	Direction         string `json:"direction"`
}

// ConversationsPage is one page of the conversation listing endpoint.
type ConversationsPage struct {
	Conversations []ConversationSummary `json:"conversations"`
	HasMore       bool                  `json:"has_more"`
	NextCursor    string                `json:"next_cursor"`
}

// ConversationListQuery holds the optional filters of the listing endpoint.
// Zero values mean "no filter".
type ConversationListQuery struct {
	PageSize            int
	Cursor              string
	CallStartAfterUnix  int64
	CallStartBeforeUnix int64
}

// TranscriptTurn is one turn of a conversation transcript.
type TranscriptTurn struct {
	Role           string         `json:"role"`
	Message        string         `json:"message"`
	TimeInCallSecs int            `json:"time_in_call_secs"`
	AgentMetadata  *AgentMetadata `json:"agent_metadata,omitempty"`
}

// AgentMetadata identifies the agent that produced a transcript turn.
type AgentMetadata struct {
	AgentID string `json:"agent_id"`
}

// CriterionResult is one evaluation-criteria outcome of the analysis block.
type CriterionResult struct {
	CriteriaID string `json:"criteria_id"`
	Result     string `json:"result"`
	Rationale  string `json:"rationale"`
}

// DataCollectionResult is one extracted data-collection value of the
// analysis block.
type DataCollectionResult struct {
	DataCollectionID string      `json:"data_collection_id"`
	Value            interface{} `json:"value"`
	Rationale        string      `json:"rationale"`
}

// Analysis is the optional post-call analysis block.
type Analysis struct {
	TranscriptSummary         string                          `json:"transcript_summary"`
	EvaluationCriteriaResults map[string]CriterionResult      `json:"evaluation_criteria_results"`
	DataCollectionResults     map[string]DataCollectionResult `json:"data_collection_results"`
}

// InitiationClientData carries the dynamic variables captured when the
// conversation started.
type InitiationClientData struct {
	DynamicVariables map[string]interface{} `json:"dynamic_variables"`
}

// ConversationDetail is the full conversation record.
type ConversationDetail struct {
	ConversationID       string                `json:"conversation_id"`
	AgentID              string                `json:"agent_id"`
	Status               string                `json:"status"`
	Transcript           []TranscriptTurn      `json:"transcript"`
	Analysis             *Analysis             `json:"analysis,omitempty"`
	InitiationClientData *InitiationClientData `json:"conversation_initiation_client_data,omitempty"`
}
