// Package groups classifies agents into named groups by their display name.
package groups

import (
	"strings"

	"elevenlabs-exporter/internal/models"
)

// Classify maps an agent display name to the groups it belongs to. Matching
// is case-insensitive substring matching; the first matching family wins and
// only the ELENA family carries additive sub-tags. Names that match nothing
// fall back to OTHER, so the result is never empty.
func Classify(displayName string) []models.AgentGroup {
	name := strings.ToLower(displayName)

	switch {
	case strings.Contains(name, "elena"):
		result := []models.AgentGroup{models.GroupElena}
		if strings.Contains(name, "affa") && !strings.Contains(name, "noaffa") {
			result = append(result, models.GroupElenaAffa)
		}
		if strings.Contains(name, "noaffa") {
			result = append(result, models.GroupElenaNoAffa)
		}
		if strings.Contains(name, "banner") {
			result = append(result, models.GroupElenaBanner)
		}
		return result
	case strings.Contains(name, "maría"), strings.Contains(name, "maria"):
		return []models.AgentGroup{models.GroupMaria}
	case strings.Contains(name, "coach"):
		return []models.AgentGroup{models.GroupCoach}
	case strings.Contains(name, "artesan"):
		return []models.AgentGroup{models.GroupArtesan}
	default:
		return []models.AgentGroup{models.GroupOther}
	}
}

// ClassifyStrings returns the group names as plain strings, in the same
// order Classify emits them.
func ClassifyStrings(displayName string) []string {
	matched := Classify(displayName)
	names := make([]string, 0, len(matched))
	for _, g := range matched {
		names = append(names, g.String())
	}
	return names
}

// NewIndex returns an id index with an entry for every group, each starting
// empty. Group lookups against the index are valid for any AgentGroup value.
func NewIndex() map[models.AgentGroup][]string {
	index := make(map[models.AgentGroup][]string, len(models.AllAgentGroups()))
	for _, g := range models.AllAgentGroups() {
		index[g] = []string{}
	}
	return index
}
