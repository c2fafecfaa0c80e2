// Package conversations implements the aggregation and enrichment pipeline:
// it pages through the platform's conversation listing, filters and indexes
// the results, and optionally enriches each conversation with detail data.
package conversations

import (
	"context"
	"time"

	"elevenlabs-exporter/internal/common/elevenlabs"
	apperrors "elevenlabs-exporter/internal/common/errors"
	"elevenlabs-exporter/internal/common/logger"
	"elevenlabs-exporter/internal/common/metrics"
	"elevenlabs-exporter/internal/groups"
	"elevenlabs-exporter/internal/models"
	"elevenlabs-exporter/internal/timeutil"
)

const defaultPageSize = 100

// ConversationAPI is the slice of the platform client the pipeline needs.
type ConversationAPI interface {
	ListConversations(ctx context.Context, q elevenlabs.ConversationListQuery) (*elevenlabs.ConversationsPage, error)
	GetConversation(ctx context.Context, conversationID string) (*elevenlabs.ConversationDetail, error)
}

// GroupResolver expands group tags into agent ids. Satisfied by
// catalog.Catalog.
type GroupResolver interface {
	GroupIDs(group models.AgentGroup) []string
}

// AggregatorOptions is the immutable filter configuration assembled before
// Build. Empty fields mean "no filter".
type AggregatorOptions struct {
	// AgentIDs restricts aggregation to these agents. AgentGroups is a
	// convenience that expands into additional ids via the catalog; the two
	// selections are unioned.
	AgentIDs    []string
	AgentGroups []models.AgentGroup

	// StartDate and EndDate bound the listing by call start time. Both are
	// translated to seconds since epoch at local midnight and passed to the
	// remote call as range parameters.
	StartDate *time.Time
	EndDate   *time.Time

	// PageSize bounds the listing page size; 0 means defaultPageSize.
	PageSize int
}

// Aggregator pages the conversation listing once and exposes read-only
// indexes afterward. Build must complete before any accessor is used.
type Aggregator struct {
	api  ConversationAPI
	opts AggregatorOptions
	log  logger.Logger

	acceptedIDs map[string]bool

	byID    map[string]*models.Conversation
	ids     []string
	byAgent map[string]string
	byGroup map[models.AgentGroup][]string
}

// NewAggregator resolves the agent selection against the catalog and returns
// an aggregator ready to Build. resolver may be nil when AgentGroups is
// empty.
func NewAggregator(api ConversationAPI, resolver GroupResolver, opts AggregatorOptions, log logger.Logger) *Aggregator {
	accepted := make(map[string]bool)
	for _, id := range opts.AgentIDs {
		accepted[id] = true
	}
	for _, g := range opts.AgentGroups {
		for _, id := range resolver.GroupIDs(g) {
			accepted[id] = true
		}
	}

	return &Aggregator{
		api:         api,
		opts:        opts,
		log:         log,
		acceptedIDs: accepted,
		byID:        make(map[string]*models.Conversation),
		ids:         []string{},
		byAgent:     make(map[string]string),
		byGroup:     groups.NewIndex(),
	}
}

// Build pages through the listing endpoint until exhausted and fills the
// indexes. A failed listing call aborts the build; there is no partial
// result.
func (a *Aggregator) Build(ctx context.Context) error {
	pageSize := a.opts.PageSize
	if pageSize == 0 {
		pageSize = defaultPageSize
	}

	query := elevenlabs.ConversationListQuery{PageSize: pageSize}
	if a.opts.StartDate != nil {
		d := a.opts.StartDate
		query.CallStartAfterUnix = timeutil.DateToUnix(d.Year(), d.Month(), d.Day())
	}
	if a.opts.EndDate != nil {
		d := a.opts.EndDate
		query.CallStartBeforeUnix = timeutil.DateToUnix(d.Year(), d.Month(), d.Day())
	}

	pages := 0
	skipped := 0
	for {
		page, err := a.api.ListConversations(ctx, query)
		if err != nil {
			return apperrors.NewConversationListFailedError(err)
		}
		pages++

		for i := range page.Conversations {
			summary := &page.Conversations[i]
			if len(a.acceptedIDs) > 0 && !a.acceptedIDs[summary.AgentID] {
				skipped++
				continue
			}
			a.insert(summary)
		}

		if !page.HasMore || page.NextCursor == "" {
			break
		}
		query.Cursor = page.NextCursor
	}

	a.log.Info("Conversation aggregation complete", map[string]interface{}{
		"pages":    pages,
		"accepted": len(a.ids),
		"skipped":  skipped,
	})

	return nil
}

func (a *Aggregator) insert(summary *elevenlabs.ConversationSummary) {
	conv := &models.Conversation{
		ID:                summary.ConversationID,
		AgentID:           summary.AgentID,
		AgentName:         summary.AgentName,
		Groups:            groups.Classify(summary.AgentName),
		StartDate:         timeutil.UnixToDate(summary.StartTimeUnixSecs),
		StartTime:         timeutil.UnixToClock(summary.StartTimeUnixSecs),
		StartUnixSecs:     summary.StartTimeUnixSecs,
		DurationSecs:      summary.CallDurationSecs,
		DurationTimestamp: timeutil.SecondsToTimestamp(summary.CallDurationSecs),
		Status:            summary.Status,
		Successful:        summary.CallSuccessful == "success",
		Direction:         summary.Direction,
	}

	a.byID[conv.ID] = conv
	a.ids = append(a.ids, conv.ID)

	// One conversation id per agent: a later conversation for the same agent
	// overwrites the earlier one here, while both stay reachable by id and
	// by group.
	a.byAgent[conv.AgentID] = conv.ID

	for _, g := range conv.Groups {
		a.byGroup[g] = append(a.byGroup[g], conv.ID)
	}

	metrics.ConversationsAggregated.Inc()
}

// Conversations returns every aggregated conversation in listing order.
func (a *Aggregator) Conversations() []*models.Conversation {
	out := make([]*models.Conversation, 0, len(a.ids))
	for _, id := range a.ids {
		out = append(out, a.byID[id])
	}
	return out
}

// IDs returns every aggregated conversation id in listing order.
func (a *Aggregator) IDs() []string {
	return a.ids
}

// Conversation returns the record for an id, or an UNKNOWN_CONVERSATION
// error.
func (a *Aggregator) Conversation(conversationID string) (*models.Conversation, error) {
	conv, ok := a.byID[conversationID]
	if !ok {
		return nil, apperrors.NewUnknownConversationError(conversationID)
	}
	return conv, nil
}

// AgentConversationID returns the single conversation id indexed for an
// agent, or an UNKNOWN_AGENT error when the agent had no accepted
// conversations.
func (a *Aggregator) AgentConversationID(agentID string) (string, error) {
	id, ok := a.byAgent[agentID]
	if !ok {
		return "", apperrors.NewUnknownAgentError(agentID)
	}
	return id, nil
}

// AgentConversation returns the single conversation indexed for an agent.
func (a *Aggregator) AgentConversation(agentID string) (*models.Conversation, error) {
	id, err := a.AgentConversationID(agentID)
	if err != nil {
		return nil, err
	}
	return a.byID[id], nil
}

// GroupIDs returns the conversation ids for a group tag. Every group key is
// pre-populated, so the result is valid (possibly empty) for any AgentGroup
// value.
func (a *Aggregator) GroupIDs(group models.AgentGroup) []string {
	return a.byGroup[group]
}

// GroupConversations returns the full records for a group tag.
func (a *Aggregator) GroupConversations(group models.AgentGroup) []*models.Conversation {
	ids := a.byGroup[group]
	out := make([]*models.Conversation, 0, len(ids))
	for _, id := range ids {
		out = append(out, a.byID[id])
	}
	return out
}
