// Package catalog builds the in-memory agent index used by the aggregation
// and update pipelines. It is constructed once per run; every remote fetch
// happens during New and the catalog is read-only afterward.
package catalog

import (
	"context"

	"elevenlabs-exporter/internal/common/elevenlabs"
	apperrors "elevenlabs-exporter/internal/common/errors"
	"elevenlabs-exporter/internal/common/logger"
	"elevenlabs-exporter/internal/groups"
	"elevenlabs-exporter/internal/models"
)

// AgentAPI is the slice of the platform client the catalog needs.
type AgentAPI interface {
	ListAgents(ctx context.Context, pageSize int, cursor string) (*elevenlabs.AgentsPage, error)
	GetAgent(ctx context.Context, agentID string) (*elevenlabs.AgentDetail, error)
}

// Agent is one classified catalog entry. Groups are derived from Name at
// construction time; Detail is the raw platform record.
type Agent struct {
	ID     string
	Name   string
	Groups []models.AgentGroup
	Detail *elevenlabs.AgentDetail
}

// Catalog indexes agents by id and by group. A failed fetch during New is
// fatal: there is no partial catalog.
type Catalog struct {
	agents  map[string]*Agent
	ids     []string
	byGroup map[models.AgentGroup][]string
}

// New fetches the full agent list, then the detail record for each agent,
// and classifies every agent by display name. pageSize bounds the listing
// page size; 0 falls back to the server default.
func New(ctx context.Context, api AgentAPI, pageSize int, log logger.Logger) (*Catalog, error) {
	c := &Catalog{
		agents:  make(map[string]*Agent),
		ids:     []string{},
		byGroup: groups.NewIndex(),
	}

	cursor := ""
	for {
		page, err := api.ListAgents(ctx, pageSize, cursor)
		if err != nil {
			return nil, apperrors.NewAgentListFailedError(err)
		}

		for _, summary := range page.Agents {
			detail, err := api.GetAgent(ctx, summary.AgentID)
			if err != nil {
				return nil, apperrors.NewAgentFetchFailedError(summary.AgentID, err)
			}

			agent := &Agent{
				ID:     summary.AgentID,
				Name:   summary.Name,
				Groups: groups.Classify(summary.Name),
				Detail: detail,
			}

			c.agents[agent.ID] = agent
			c.ids = append(c.ids, agent.ID)
			for _, g := range agent.Groups {
				c.byGroup[g] = append(c.byGroup[g], agent.ID)
			}

			log.Debug("Classified agent", map[string]interface{}{
				"agentId":   agent.ID,
				"agentName": agent.Name,
				"groups":    agent.Groups,
			})
		}

		if !page.HasMore || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	log.Info("Agent catalog built", map[string]interface{}{
		"agentCount": len(c.ids),
	})

	return c, nil
}

// Agents returns the full id-to-agent mapping.
func (c *Catalog) Agents() map[string]*Agent {
	return c.agents
}

// AgentIDs returns every known agent id in listing order.
func (c *Catalog) AgentIDs() []string {
	return c.ids
}

// GroupIDs returns the agent ids carrying the given group tag. Every group
// key is pre-populated, so the result is valid (possibly empty) for any
// AgentGroup value.
func (c *Catalog) GroupIDs(group models.AgentGroup) []string {
	return c.byGroup[group]
}

// Agent returns the catalog entry for an id, or an UNKNOWN_AGENT error.
func (c *Catalog) Agent(agentID string) (*Agent, error) {
	agent, ok := c.agents[agentID]
	if !ok {
		return nil, apperrors.NewUnknownAgentError(agentID)
	}
	return agent, nil
}
