package conversations

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elevenlabs-exporter/internal/common/elevenlabs"
	apperrors "elevenlabs-exporter/internal/common/errors"
	"elevenlabs-exporter/internal/common/logger"
	"elevenlabs-exporter/internal/models"
	"elevenlabs-exporter/internal/timeutil"
)

type fakeConvAPI struct {
	pages   []*elevenlabs.ConversationsPage
	details map[string]*elevenlabs.ConversationDetail
	listErr error
	getErr  map[string]error

	queries   []elevenlabs.ConversationListQuery
	fetchedID []string
}

func (f *fakeConvAPI) ListConversations(ctx context.Context, q elevenlabs.ConversationListQuery) (*elevenlabs.ConversationsPage, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.queries = append(f.queries, q)
	return f.pages[len(f.queries)-1], nil
}

func (f *fakeConvAPI) GetConversation(ctx context.Context, conversationID string) (*elevenlabs.ConversationDetail, error) {
	if err, ok := f.getErr[conversationID]; ok {
		return nil, err
	}
	f.fetchedID = append(f.fetchedID, conversationID)
	if detail, ok := f.details[conversationID]; ok {
		return detail, nil
	}
	return &elevenlabs.ConversationDetail{ConversationID: conversationID}, nil
}

type fakeResolver struct {
	byGroup map[models.AgentGroup][]string
}

func (f *fakeResolver) GroupIDs(group models.AgentGroup) []string {
	return f.byGroup[group]
}

func summaryFor(convID, agentID, agentName string, startUnix int64) elevenlabs.ConversationSummary {
	return elevenlabs.ConversationSummary{
		ConversationID:    convID,
		AgentID:           agentID,
		AgentName:         agentName,
		StartTimeUnixSecs: startUnix,
		CallDurationSecs:  125,
		Status:            "done",
		CallSuccessful:    "success",
		Direction:         "inbound",
	}
}

func TestAggregator_Build_PaginatesAndIndexes(t *testing.T) {
	start := time.Date(2025, 3, 10, 14, 30, 5, 0, time.Local).Unix()

	api := &fakeConvAPI{
		pages: []*elevenlabs.ConversationsPage{
			{
				Conversations: []elevenlabs.ConversationSummary{
					summaryFor("conv_1", "agent_1", "Elena Banner", start),
				},
				HasMore:    true,
				NextCursor: "cur_2",
			},
			{
				Conversations: []elevenlabs.ConversationSummary{
					summaryFor("conv_2", "agent_2", "Soporte", start),
				},
				HasMore: false,
			},
		},
	}

	agg := NewAggregator(api, &fakeResolver{}, AggregatorOptions{}, logger.NewTestLogger(t))
	require.NoError(t, agg.Build(context.Background()))

	require.Len(t, api.queries, 2)
	assert.Equal(t, 100, api.queries[0].PageSize)
	assert.Empty(t, api.queries[0].Cursor)
	assert.Equal(t, "cur_2", api.queries[1].Cursor)

	assert.Equal(t, []string{"conv_1", "conv_2"}, agg.IDs())

	conv, err := agg.Conversation("conv_1")
	require.NoError(t, err)
	assert.Equal(t, "agent_1", conv.AgentID)
	assert.Equal(t, []models.AgentGroup{models.GroupElena, models.GroupElenaBanner}, conv.Groups)
	assert.Equal(t, "2025-03-10", conv.StartDate)
	assert.Equal(t, "14:30:05", conv.StartTime)
	assert.Equal(t, "02:05", conv.DurationTimestamp)
	assert.True(t, conv.Successful)

	assert.Equal(t, []string{"conv_1"}, agg.GroupIDs(models.GroupElena))
	assert.Equal(t, []string{"conv_1"}, agg.GroupIDs(models.GroupElenaBanner))
	assert.Equal(t, []string{"conv_2"}, agg.GroupIDs(models.GroupOther))
}

func TestAggregator_FilterByAgentIDs(t *testing.T) {
	api := &fakeConvAPI{
		pages: []*elevenlabs.ConversationsPage{
			{
				Conversations: []elevenlabs.ConversationSummary{
					summaryFor("conv_1", "agent_1", "Elena", 1000),
					summaryFor("conv_2", "agent_2", "Coach", 2000),
				},
			},
		},
	}

	agg := NewAggregator(api, &fakeResolver{}, AggregatorOptions{
		AgentIDs: []string{"agent_1"},
	}, logger.NewNoOpLogger())
	require.NoError(t, agg.Build(context.Background()))

	assert.Equal(t, []string{"conv_1"}, agg.IDs())

	_, err := agg.Conversation("conv_2")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnknownConversation, apperrors.CodeOf(err))
}

func TestAggregator_DateRangePassedAsUnixBounds(t *testing.T) {
	api := &fakeConvAPI{
		pages: []*elevenlabs.ConversationsPage{{}},
	}

	startDate := time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)
	endDate := time.Date(2025, 2, 1, 0, 0, 0, 0, time.Local)

	agg := NewAggregator(api, &fakeResolver{}, AggregatorOptions{
		StartDate: &startDate,
		EndDate:   &endDate,
	}, logger.NewNoOpLogger())
	require.NoError(t, agg.Build(context.Background()))

	require.Len(t, api.queries, 1)
	assert.Equal(t, timeutil.DateToUnix(2025, 1, 1), api.queries[0].CallStartAfterUnix)
	assert.Equal(t, timeutil.DateToUnix(2025, 2, 1), api.queries[0].CallStartBeforeUnix)
}

func TestAggregator_PerAgentOverwrite(t *testing.T) {
	// Two conversations for the same agent: the per-agent index keeps only
	// the last one, while both stay reachable by id and by group.
	api := &fakeConvAPI{
		pages: []*elevenlabs.ConversationsPage{
			{
				Conversations: []elevenlabs.ConversationSummary{
					summaryFor("conv_1", "agent_1", "Elena", 1000),
					summaryFor("conv_2", "agent_1", "Elena", 2000),
				},
			},
		},
	}

	agg := NewAggregator(api, &fakeResolver{}, AggregatorOptions{}, logger.NewNoOpLogger())
	require.NoError(t, agg.Build(context.Background()))

	id, err := agg.AgentConversationID("agent_1")
	require.NoError(t, err)
	assert.Equal(t, "conv_2", id)

	conv, err := agg.AgentConversation("agent_1")
	require.NoError(t, err)
	assert.Equal(t, "conv_2", conv.ID)

	assert.Equal(t, []string{"conv_1", "conv_2"}, agg.IDs())
	assert.Equal(t, []string{"conv_1", "conv_2"}, agg.GroupIDs(models.GroupElena))
}

func TestAggregator_GroupIndexComplete(t *testing.T) {
	api := &fakeConvAPI{
		pages: []*elevenlabs.ConversationsPage{{}},
	}

	agg := NewAggregator(api, &fakeResolver{}, AggregatorOptions{}, logger.NewNoOpLogger())
	require.NoError(t, agg.Build(context.Background()))

	for _, g := range models.AllAgentGroups() {
		assert.NotNil(t, agg.GroupIDs(g), "group %s must have a pre-populated entry", g)
		assert.Empty(t, agg.GroupIDs(g))
	}
}

func TestAggregator_MariaGroupEndToEnd(t *testing.T) {
	start := time.Date(2025, 6, 15, 9, 0, 0, 0, time.Local)

	api := &fakeConvAPI{
		pages: []*elevenlabs.ConversationsPage{
			{
				Conversations: []elevenlabs.ConversationSummary{
					summaryFor("conv_maria", "agent_maria", "María Ventas", start.Unix()),
					summaryFor("conv_other", "agent_other", "Soporte", start.Unix()),
				},
			},
		},
	}

	resolver := &fakeResolver{
		byGroup: map[models.AgentGroup][]string{
			models.GroupMaria: {"agent_maria"},
		},
	}

	rangeStart := time.Date(2025, 6, 14, 0, 0, 0, 0, time.Local)
	rangeEnd := time.Date(2025, 6, 16, 0, 0, 0, 0, time.Local)

	agg := NewAggregator(api, resolver, AggregatorOptions{
		AgentGroups: []models.AgentGroup{models.GroupMaria},
		StartDate:   &rangeStart,
		EndDate:     &rangeEnd,
	}, logger.NewNoOpLogger())
	require.NoError(t, agg.Build(context.Background()))

	require.Equal(t, []string{"conv_maria"}, agg.IDs())
	assert.Equal(t, []string{"conv_maria"}, agg.GroupIDs(models.GroupMaria))

	conv, err := agg.Conversation("conv_maria")
	require.NoError(t, err)
	assert.Equal(t, []models.AgentGroup{models.GroupMaria}, conv.Groups)
}

func TestAggregator_ListFailureIsFatal(t *testing.T) {
	api := &fakeConvAPI{listErr: fmt.Errorf("connection reset")}

	agg := NewAggregator(api, &fakeResolver{}, AggregatorOptions{}, logger.NewNoOpLogger())
	err := agg.Build(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConversationListFailed, apperrors.CodeOf(err))
	assert.Empty(t, agg.IDs())
}

func TestAggregator_UnknownAgentLookup(t *testing.T) {
	api := &fakeConvAPI{
		pages: []*elevenlabs.ConversationsPage{{}},
	}

	agg := NewAggregator(api, &fakeResolver{}, AggregatorOptions{}, logger.NewNoOpLogger())
	require.NoError(t, agg.Build(context.Background()))

	_, err := agg.AgentConversationID("missing")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnknownAgent, apperrors.CodeOf(err))
}
