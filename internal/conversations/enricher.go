package conversations

import (
	"context"
	"fmt"
	"strings"

	"elevenlabs-exporter/internal/common/elevenlabs"
	apperrors "elevenlabs-exporter/internal/common/errors"
	"elevenlabs-exporter/internal/common/logger"
	"elevenlabs-exporter/internal/common/metrics"
	"elevenlabs-exporter/internal/models"
	"elevenlabs-exporter/internal/timeutil"
)

// ProcessFlags selects which optional enrichment fields get extracted. All
// forces every flag on regardless of the individual settings.
type ProcessFlags struct {
	Summary          bool
	Transcript       bool
	DynamicVariables bool
	Criteria         bool
	DataCollection   bool
	All              bool
}

func (f ProcessFlags) effective() ProcessFlags {
	if f.All {
		return ProcessFlags{
			Summary:          true,
			Transcript:       true,
			DynamicVariables: true,
			Criteria:         true,
			DataCollection:   true,
			All:              true,
		}
	}
	return f
}

// Dynamic variables surfaced through the basic contact fields; stripped from
// the filtered dynamic-variables map along with platform "system*" keys.
var basicVariableKeys = map[string]bool{
	"email":            true,
	"phone":            true,
	"secret_user_id":   true,
	"secret_object_id": true,
}

// Enricher fetches the detail record for each aggregated conversation and
// extracts the configured field subset.
type Enricher struct {
	api   ConversationAPI
	flags ProcessFlags
	log   logger.Logger
}

func NewEnricher(api ConversationAPI, flags ProcessFlags, log logger.Logger) *Enricher {
	return &Enricher{
		api:   api,
		flags: flags.effective(),
		log:   log,
	}
}

// Enrich fetches every conversation's detail once and builds the enriched
// records in input order. A failed fetch aborts the whole run; there is no
// skip-and-continue.
func (e *Enricher) Enrich(ctx context.Context, convs []*models.Conversation) ([]*models.ConversationDetail, error) {
	out := make([]*models.ConversationDetail, 0, len(convs))

	for _, conv := range convs {
		remote, err := e.api.GetConversation(ctx, conv.ID)
		if err != nil {
			return nil, apperrors.NewConversationFetchFailedError(conv.ID, err)
		}

		detail := &models.ConversationDetail{Conversation: *conv}

		rawVars := map[string]interface{}{}
		if remote.InitiationClientData != nil && remote.InitiationClientData.DynamicVariables != nil {
			rawVars = remote.InitiationClientData.DynamicVariables
		}

		// Basic contact variables are always extracted, defaulting to empty
		// strings when the detail record lacks them.
		detail.Email = stringVariable(rawVars, "email")
		detail.Phone = stringVariable(rawVars, "phone")
		detail.SalesforceUserID = stringVariable(rawVars, "secret_user_id")
		detail.SalesforceObjectID = stringVariable(rawVars, "secret_object_id")

		if e.flags.Summary {
			if remote.Analysis != nil {
				detail.Summary = remote.Analysis.TranscriptSummary
			}
		}

		if e.flags.Transcript {
			detail.Transcript = buildTranscript(remote)
		}

		if e.flags.DynamicVariables {
			detail.DynamicVariables = filterDynamicVariables(rawVars)
		}

		if e.flags.Criteria {
			detail.Criteria = map[string]models.CriterionResult{}
			if remote.Analysis != nil {
				for id, r := range remote.Analysis.EvaluationCriteriaResults {
					detail.Criteria[id] = models.CriterionResult{
						Result:    r.Result,
						Rationale: r.Rationale,
					}
				}
			}
		}

		if e.flags.DataCollection {
			detail.DataCollection = map[string]models.DataCollectionResult{}
			if remote.Analysis != nil {
				for id, r := range remote.Analysis.DataCollectionResults {
					detail.DataCollection[id] = models.DataCollectionResult{
						Value:     r.Value,
						Rationale: r.Rationale,
					}
				}
			}
		}

		e.log.Debug("Enriched conversation", map[string]interface{}{
			"conversationId": detail.ID,
			"agentId":        detail.AgentID,
			"email":          detail.Email,
			"turns":          len(detail.Transcript),
		})

		metrics.ConversationsEnriched.Inc()
		out = append(out, detail)
	}

	return out, nil
}

// buildTranscript converts remote turns into 1-indexed Turn records with a
// formatted elapsed-time offset.
func buildTranscript(remote *elevenlabs.ConversationDetail) []models.Turn {
	out := make([]models.Turn, 0, len(remote.Transcript))
	for i, t := range remote.Transcript {
		agentID := ""
		if t.AgentMetadata != nil {
			agentID = t.AgentMetadata.AgentID
		}
		out = append(out, models.Turn{
			Index:      i + 1,
			TimeOffset: timeutil.SecondsToTimestamp(t.TimeInCallSecs),
			Role:       t.Role,
			AgentID:    agentID,
			Message:    t.Message,
		})
	}
	return out
}

// filterDynamicVariables copies the raw map minus platform-internal keys
// (prefix "system") and the keys already surfaced as basic contact fields.
func filterDynamicVariables(raw map[string]interface{}) map[string]interface{} {
	filtered := make(map[string]interface{})
	for key, value := range raw {
		if strings.HasPrefix(key, "system") {
			continue
		}
		if basicVariableKeys[key] {
			continue
		}
		filtered[key] = value
	}
	return filtered
}

func stringVariable(vars map[string]interface{}, key string) string {
	value, ok := vars[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}
