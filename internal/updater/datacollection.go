// Package updater pushes a data-collection field definition to a selected
// set of agents via read-modify-write of each agent's platform settings.
package updater

import (
	"context"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"elevenlabs-exporter/internal/common/elevenlabs"
	apperrors "elevenlabs-exporter/internal/common/errors"
	"elevenlabs-exporter/internal/common/logger"
	"elevenlabs-exporter/internal/common/metrics"
	"elevenlabs-exporter/internal/models"
)

// AgentAPI is the slice of the platform client the updater needs.
type AgentAPI interface {
	GetAgent(ctx context.Context, agentID string) (*elevenlabs.AgentDetail, error)
	UpdateAgent(ctx context.Context, agentID string, settings *elevenlabs.PlatformSettings) error
}

// AgentSelector resolves the agent selection. Satisfied by catalog.Catalog.
type AgentSelector interface {
	AgentIDs() []string
	GroupIDs(group models.AgentGroup) []string
}

var definitionSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"name", "type", "description"},
	"properties": map[string]interface{}{
		"name": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
		"type": map[string]interface{}{
			"enum": []interface{}{"string", "boolean", "number", "integer"},
		},
		"description": map[string]interface{}{
			"type": "string",
		},
	},
}

// Updater merges one field definition into each selected agent's
// data-collection schema. Selection is assembled with SetAgentGroup and
// SetAllAgents before Run.
type Updater struct {
	api      AgentAPI
	selector AgentSelector
	def      models.VariableDefinition
	log      logger.Logger

	selected []string
	seen     map[string]bool
}

func NewUpdater(api AgentAPI, selector AgentSelector, def models.VariableDefinition, log logger.Logger) *Updater {
	return &Updater{
		api:      api,
		selector: selector,
		def:      def,
		log:      log,
		selected: []string{},
		seen:     make(map[string]bool),
	}
}

// SetAgentGroup adds every agent in the group to the selection. Additive:
// calling it for multiple groups unions them.
func (u *Updater) SetAgentGroup(group models.AgentGroup) *Updater {
	for _, id := range u.selector.GroupIDs(group) {
		if !u.seen[id] {
			u.seen[id] = true
			u.selected = append(u.selected, id)
		}
	}
	return u
}

// SetAllAgents replaces the selection with every known agent id.
func (u *Updater) SetAllAgents() *Updater {
	u.selected = []string{}
	u.seen = make(map[string]bool)
	for _, id := range u.selector.AgentIDs() {
		u.seen[id] = true
		u.selected = append(u.selected, id)
	}
	return u
}

// SelectedAgentIDs returns the current selection in insertion order.
func (u *Updater) SelectedAgentIDs() []string {
	return u.selected
}

// Run validates the field definition, then updates every selected agent.
// Read-modify-write per agent with no concurrency check: a concurrent
// external change between read and write is lost. A failed update aborts the
// loop; agents already updated are not rolled back.
func (u *Updater) Run(ctx context.Context) error {
	if err := u.validateDefinition(); err != nil {
		return err
	}

	for _, agentID := range u.selected {
		agent, err := u.api.GetAgent(ctx, agentID)
		if err != nil {
			return apperrors.NewAgentFetchFailedError(agentID, err)
		}

		settings := agent.PlatformSettings
		if settings == nil {
			settings = &elevenlabs.PlatformSettings{}
		}
		if settings.DataCollection == nil {
			settings.DataCollection = make(map[string]elevenlabs.VariableSchema)
		}

		settings.DataCollection[u.def.Name] = elevenlabs.VariableSchema{
			Type:        string(u.def.Type),
			Description: u.def.Description,
		}

		if err := u.api.UpdateAgent(ctx, agentID, settings); err != nil {
			return apperrors.NewAgentUpdateFailedError(agentID, err)
		}

		metrics.AgentsUpdated.Inc()
		u.log.Info("Updated agent data collection", map[string]interface{}{
			"agentId":      agentID,
			"variableName": u.def.Name,
			"variableType": u.def.Type,
		})
	}

	u.log.Info("Data collection update complete", map[string]interface{}{
		"agentCount":   len(u.selected),
		"variableName": u.def.Name,
	})

	return nil
}

func (u *Updater) validateDefinition() error {
	schemaLoader := gojsonschema.NewGoLoader(definitionSchema)
	documentLoader := gojsonschema.NewGoLoader(map[string]interface{}{
		"name":        u.def.Name,
		"type":        string(u.def.Type),
		"description": u.def.Description,
	})

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return apperrors.NewVariableDefinitionInvalidError(err.Error())
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return apperrors.NewVariableDefinitionInvalidError(strings.Join(errs, "; "))
	}

	return nil
}
