// Package export writes enriched conversations to semicolon-delimited CSV
// files, one of three shapes: per-conversation transcripts, one combined
// transcript file, or one flattened data export.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	apperrors "elevenlabs-exporter/internal/common/errors"
	"elevenlabs-exporter/internal/common/logger"
	"elevenlabs-exporter/internal/common/metrics"
	"elevenlabs-exporter/internal/models"
)

var transcriptHeader = []string{"turn", "time", "role", "turn_agent_id", "message"}

// Exporter writes CSV files under a target directory, one subfolder per
// export shape, creating folders on demand. Files are UTF-8 with a semicolon
// separator.
type Exporter struct {
	dir string
	log logger.Logger
	now func() time.Time
}

func NewExporter(dir string, log logger.Logger) *Exporter {
	return &Exporter{
		dir: dir,
		log: log,
		now: time.Now,
	}
}

// ExportTranscripts writes one file per conversation carrying transcript
// rows. Conversations without a transcript are skipped. Returns the written
// file paths.
func (e *Exporter) ExportTranscripts(details []*models.ConversationDetail) ([]string, error) {
	folder, err := e.ensureFolder("transcripts")
	if err != nil {
		return nil, err
	}

	paths := []string{}
	for _, d := range details {
		if len(d.Transcript) == 0 {
			continue
		}

		path := filepath.Join(folder, transcriptFilename(d))
		rows := [][]string{transcriptHeader}
		for _, turn := range d.Transcript {
			rows = append(rows, []string{
				fmt.Sprintf("%d", turn.Index),
				turn.TimeOffset,
				turn.Role,
				turn.AgentID,
				turn.Message,
			})
		}

		if err := e.writeFile(path, rows); err != nil {
			return nil, err
		}
		metrics.ExportRowsWritten.WithLabelValues("transcript").Add(float64(len(rows) - 1))
		paths = append(paths, path)

		e.log.Debug("Wrote transcript file", map[string]interface{}{
			"conversationId": d.ID,
			"path":           path,
			"turns":          len(d.Transcript),
		})
	}

	e.log.Info("Transcript export complete", map[string]interface{}{
		"files": len(paths),
	})

	return paths, nil
}

// ExportCombinedTranscript writes all transcripts into one file, each row
// tagged with the initiating agent and conversation id. Returns the empty
// string without creating a file when no conversation has transcript rows.
func (e *Exporter) ExportCombinedTranscript(details []*models.ConversationDetail) (string, error) {
	rows := [][]string{append([]string{"initiator_agent_id", "conversation_id"}, transcriptHeader...)}
	for _, d := range details {
		for _, turn := range d.Transcript {
			rows = append(rows, []string{
				d.AgentID,
				d.ID,
				fmt.Sprintf("%d", turn.Index),
				turn.TimeOffset,
				turn.Role,
				turn.AgentID,
				turn.Message,
			})
		}
	}

	if len(rows) == 1 {
		e.log.Info("No transcript rows to combine, skipping file", nil)
		return "", nil
	}

	folder, err := e.ensureFolder("combined_transcripts")
	if err != nil {
		return "", err
	}

	path := filepath.Join(folder, fmt.Sprintf("Combined Transcripts - %s.csv", e.timestamp()))
	if err := e.writeFile(path, rows); err != nil {
		return "", err
	}
	metrics.ExportRowsWritten.WithLabelValues("combined").Add(float64(len(rows) - 1))

	e.log.Info("Combined transcript export complete", map[string]interface{}{
		"path": path,
		"rows": len(rows) - 1,
	})

	return path, nil
}

// ExportDataCollection writes one flattened row per conversation with every
// enrichment field. Mapping-valued fields become dotted columns; the column
// set is the sorted union across all conversations.
func (e *Exporter) ExportDataCollection(details []*models.ConversationDetail) (string, error) {
	folder, err := e.ensureFolder("data_collection")
	if err != nil {
		return "", err
	}

	header := []string{
		"conversation_id", "agent_id", "agent_name", "agent_groups",
		"start_date", "start_time", "duration", "status", "successful", "direction",
		"email", "phone", "salesforce_user_id", "salesforce_object_id", "summary",
	}
	header = append(header, dottedColumns(details)...)

	rows := [][]string{header}
	for _, d := range details {
		row := make([]string, 0, len(header))
		row = append(row,
			d.ID, d.AgentID, d.AgentName, joinGroups(d.Groups),
			d.StartDate, d.StartTime, d.DurationTimestamp, d.Status,
			fmt.Sprintf("%t", d.Successful), d.Direction,
			d.Email, d.Phone, d.SalesforceUserID, d.SalesforceObjectID, d.Summary,
		)
		for _, col := range header[15:] {
			row = append(row, dottedValue(d, col))
		}
		rows = append(rows, row)
	}

	path := filepath.Join(folder, fmt.Sprintf("ElevenLabs Data Export - %s.csv", e.timestamp()))
	if err := e.writeFile(path, rows); err != nil {
		return "", err
	}
	metrics.ExportRowsWritten.WithLabelValues("data_collection").Add(float64(len(rows) - 1))

	e.log.Info("Data export complete", map[string]interface{}{
		"path":    path,
		"rows":    len(rows) - 1,
		"columns": len(header),
	})

	return path, nil
}

// transcriptFilename embeds the contact email (or "unknown"), the start
// date/time and the conversation id. Colons in the time are replaced so the
// name is portable.
func transcriptFilename(d *models.ConversationDetail) string {
	email := d.Email
	if email == "" {
		email = "unknown"
	}
	startTime := strings.ReplaceAll(d.StartTime, ":", "-")
	return fmt.Sprintf("%s - %s-%s - %s.csv", email, d.StartDate, startTime, d.ID)
}

// dottedColumns returns the sorted union of dynamic-variable, criteria and
// data-collection columns across all conversations.
func dottedColumns(details []*models.ConversationDetail) []string {
	seen := make(map[string]bool)
	for _, d := range details {
		for key := range d.DynamicVariables {
			seen["dynamic_variables."+key] = true
		}
		for key := range d.Criteria {
			seen["criteria."+key+".result"] = true
			seen["criteria."+key+".rationale"] = true
		}
		for key := range d.DataCollection {
			seen["data_collection."+key+".value"] = true
			seen["data_collection."+key+".rationale"] = true
		}
	}

	columns := make([]string, 0, len(seen))
	for col := range seen {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns
}

func dottedValue(d *models.ConversationDetail, column string) string {
	switch {
	case strings.HasPrefix(column, "dynamic_variables."):
		key := strings.TrimPrefix(column, "dynamic_variables.")
		if value, ok := d.DynamicVariables[key]; ok && value != nil {
			return fmt.Sprintf("%v", value)
		}
	case strings.HasPrefix(column, "criteria."):
		rest := strings.TrimPrefix(column, "criteria.")
		key, field, ok := splitDotted(rest)
		if !ok {
			return ""
		}
		if result, present := d.Criteria[key]; present {
			if field == "result" {
				return result.Result
			}
			return result.Rationale
		}
	case strings.HasPrefix(column, "data_collection."):
		rest := strings.TrimPrefix(column, "data_collection.")
		key, field, ok := splitDotted(rest)
		if !ok {
			return ""
		}
		if result, present := d.DataCollection[key]; present {
			if field == "value" {
				if result.Value == nil {
					return ""
				}
				return fmt.Sprintf("%v", result.Value)
			}
			return result.Rationale
		}
	}
	return ""
}

// splitDotted splits "key.field" on the last dot so keys containing dots
// still resolve.
func splitDotted(rest string) (key, field string, ok bool) {
	idx := strings.LastIndex(rest, ".")
	if idx < 0 {
		return "", "", false
	}
	return rest[:idx], rest[idx+1:], true
}

func joinGroups(groups []models.AgentGroup) string {
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.String())
	}
	return strings.Join(names, ",")
}

func (e *Exporter) ensureFolder(name string) (string, error) {
	folder := filepath.Join(e.dir, name)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", apperrors.NewExportWriteFailedError(folder, err)
	}
	return folder, nil
}

func (e *Exporter) timestamp() string {
	return e.now().Format("2006-01-02 15-04-05")
}

func (e *Exporter) writeFile(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewExportWriteFailedError(path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	writer.Comma = ';'

	if err := writer.WriteAll(rows); err != nil {
		return apperrors.NewExportWriteFailedError(path, err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewExportWriteFailedError(path, err)
	}

	return nil
}
