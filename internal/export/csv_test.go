package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elevenlabs-exporter/internal/common/logger"
	"elevenlabs-exporter/internal/models"
)

func fixedExporter(t *testing.T) *Exporter {
	t.Helper()
	e := NewExporter(filepath.Join(t.TempDir(), "exports"), logger.NewTestLogger(t))
	e.now = func() time.Time {
		return time.Date(2025, 7, 1, 10, 30, 0, 0, time.Local)
	}
	return e
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = ';'
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	return rows
}

func enrichedConversation() *models.ConversationDetail {
	return &models.ConversationDetail{
		Conversation: models.Conversation{
			ID:                "conv_1",
			AgentID:           "agent_1",
			AgentName:         "Elena",
			Groups:            []models.AgentGroup{models.GroupElena},
			StartDate:         "2025-06-15",
			StartTime:         "09:05:30",
			DurationSecs:      125,
			DurationTimestamp: "02:05",
			Status:            "done",
			Successful:        true,
			Direction:         "inbound",
		},
		Email: "ana@example.com",
		Phone: "123",
		Transcript: []models.Turn{
			{Index: 1, TimeOffset: "00:00", Role: "agent", AgentID: "agent_1", Message: "Hola"},
			{Index: 2, TimeOffset: "00:05", Role: "user", Message: "Buenas; gracias"},
		},
	}
}

func TestExportTranscripts(t *testing.T) {
	e := fixedExporter(t)

	paths, err := e.ExportTranscripts([]*models.ConversationDetail{enrichedConversation()})
	require.NoError(t, err)
	require.Len(t, paths, 1)

	assert.Equal(t, "ana@example.com - 2025-06-15-09-05-30 - conv_1.csv", filepath.Base(paths[0]))
	assert.Equal(t, "transcripts", filepath.Base(filepath.Dir(paths[0])))

	rows := readCSV(t, paths[0])
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"turn", "time", "role", "turn_agent_id", "message"}, rows[0])
	assert.Equal(t, []string{"1", "00:00", "agent", "agent_1", "Hola"}, rows[1])
	assert.Equal(t, []string{"2", "00:05", "user", "", "Buenas; gracias"}, rows[2])
}

func TestExportTranscripts_UnknownEmail(t *testing.T) {
	e := fixedExporter(t)

	d := enrichedConversation()
	d.Email = ""

	paths, err := e.ExportTranscripts([]*models.ConversationDetail{d})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, "unknown - 2025-06-15-09-05-30 - conv_1.csv", filepath.Base(paths[0]))
}

func TestExportTranscripts_SkipsEmptyTranscript(t *testing.T) {
	e := fixedExporter(t)

	d := enrichedConversation()
	d.Transcript = nil

	paths, err := e.ExportTranscripts([]*models.ConversationDetail{d})
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestExportCombinedTranscript(t *testing.T) {
	e := fixedExporter(t)

	second := enrichedConversation()
	second.ID = "conv_2"
	second.AgentID = "agent_2"
	second.Transcript = []models.Turn{
		{Index: 1, TimeOffset: "00:00", Role: "agent", AgentID: "agent_2", Message: "Hi"},
	}

	path, err := e.ExportCombinedTranscript([]*models.ConversationDetail{enrichedConversation(), second})
	require.NoError(t, err)
	assert.Equal(t, "Combined Transcripts - 2025-07-01 10-30-00.csv", filepath.Base(path))
	assert.Equal(t, "combined_transcripts", filepath.Base(filepath.Dir(path)))

	rows := readCSV(t, path)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"initiator_agent_id", "conversation_id", "turn", "time", "role", "turn_agent_id", "message"}, rows[0])
	assert.Equal(t, []string{"agent_1", "conv_1", "1", "00:00", "agent", "agent_1", "Hola"}, rows[1])
	assert.Equal(t, []string{"agent_2", "conv_2", "1", "00:00", "agent", "agent_2", "Hi"}, rows[3])
}

func TestExportCombinedTranscript_NoRowsNoFile(t *testing.T) {
	e := fixedExporter(t)

	d := enrichedConversation()
	d.Transcript = nil

	path, err := e.ExportCombinedTranscript([]*models.ConversationDetail{d})
	require.NoError(t, err)
	assert.Empty(t, path)

	entries, err := os.ReadDir(filepath.Dir(e.dir))
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotEqual(t, "exports", entry.Name(), "export dir must not be created when nothing is written")
	}
}

func TestExportDataCollection(t *testing.T) {
	e := fixedExporter(t)

	d := enrichedConversation()
	d.Summary = "Greeting call"
	d.DynamicVariables = map[string]interface{}{"campaign": "spring"}
	d.Criteria = map[string]models.CriterionResult{
		"greeting": {Result: "success", Rationale: "Polite"},
	}
	d.DataCollection = map[string]models.DataCollectionResult{
		"consent": {Value: true, Rationale: "Stated"},
	}

	// Second conversation with a different dynamic variable: the column set
	// is the union over all rows.
	other := enrichedConversation()
	other.ID = "conv_2"
	other.DynamicVariables = map[string]interface{}{"region": "north"}

	path, err := e.ExportDataCollection([]*models.ConversationDetail{d, other})
	require.NoError(t, err)
	assert.Equal(t, "ElevenLabs Data Export - 2025-07-01 10-30-00.csv", filepath.Base(path))
	assert.Equal(t, "data_collection", filepath.Base(filepath.Dir(path)))

	rows := readCSV(t, path)
	require.Len(t, rows, 3)

	header := rows[0]
	assert.Equal(t, "conversation_id", header[0])
	assert.Contains(t, header, "dynamic_variables.campaign")
	assert.Contains(t, header, "dynamic_variables.region")
	assert.Contains(t, header, "criteria.greeting.result")
	assert.Contains(t, header, "data_collection.consent.value")

	byColumn := func(row []string, column string) string {
		for i, name := range header {
			if name == column {
				return row[i]
			}
		}
		t.Fatalf("column %s not found", column)
		return ""
	}

	assert.Equal(t, "conv_1", byColumn(rows[1], "conversation_id"))
	assert.Equal(t, "ELENA", byColumn(rows[1], "agent_groups"))
	assert.Equal(t, "true", byColumn(rows[1], "successful"))
	assert.Equal(t, "Greeting call", byColumn(rows[1], "summary"))
	assert.Equal(t, "spring", byColumn(rows[1], "dynamic_variables.campaign"))
	assert.Equal(t, "", byColumn(rows[1], "dynamic_variables.region"))
	assert.Equal(t, "success", byColumn(rows[1], "criteria.greeting.result"))
	assert.Equal(t, "Polite", byColumn(rows[1], "criteria.greeting.rationale"))
	assert.Equal(t, "true", byColumn(rows[1], "data_collection.consent.value"))

	assert.Equal(t, "conv_2", byColumn(rows[2], "conversation_id"))
	assert.Equal(t, "north", byColumn(rows[2], "dynamic_variables.region"))
	assert.Equal(t, "", byColumn(rows[2], "criteria.greeting.result"))
}

func TestExportDataCollection_CreatesDir(t *testing.T) {
	e := fixedExporter(t)

	_, err := os.Stat(e.dir)
	require.True(t, os.IsNotExist(err))

	path, err := e.ExportDataCollection([]*models.ConversationDetail{enrichedConversation()})
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)
}
