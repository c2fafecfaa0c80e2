// cmd/tools/datacollection-updater/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"elevenlabs-exporter/internal/catalog"
	"elevenlabs-exporter/internal/common/config"
	"elevenlabs-exporter/internal/common/elevenlabs"
	"elevenlabs-exporter/internal/common/logger"
	"elevenlabs-exporter/internal/models"
	"elevenlabs-exporter/internal/updater"
)

func main() {
	name := flag.String("name", "", "Data collection field name (required)")
	typeArg := flag.String("type", "string", "Field type: string, boolean, number or integer")
	prompt := flag.String("prompt", "", "Extraction prompt pushed as the field description")
	groupsArg := flag.String("groups", "", "Comma-separated agent groups to update (e.g. ELENA,MARIA)")
	allAgents := flag.Bool("all-agents", false, "Update every known agent (overrides -groups)")
	dryRun := flag.Bool("dry-run", false, "Resolve the selection and print it without updating")
	configFile := flag.String("config", "", "Path to a config file (default: ./configs/config.yaml)")
	flag.Parse()

	if *name == "" {
		fmt.Fprintln(os.Stderr, "Error: -name is required")
		flag.Usage()
		os.Exit(1)
	}
	if *groupsArg == "" && !*allAgents {
		fmt.Fprintln(os.Stderr, "Error: select agents with -groups or -all-agents")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(*name, *typeArg, *prompt, *groupsArg, *allAgents, *dryRun, *configFile); err != nil {
		fmt.Fprintf(os.Stderr, "datacollection-updater: %v\n", err)
		os.Exit(1)
	}
}

func run(name, typeArg, prompt, groupsArg string, allAgents, dryRun bool, configFile string) error {
	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format).With(map[string]interface{}{
		"runId": uuid.New().String(),
	})

	client := elevenlabs.NewClient(cfg.ElevenLabs.APIKey, cfg.ElevenLabs.BaseURL, config.GetDuration(cfg.ElevenLabs.Timeout))
	ctx := context.Background()

	cat, err := catalog.New(ctx, client, cfg.ElevenLabs.PageSize, log)
	if err != nil {
		return err
	}

	def := models.VariableDefinition{
		Name:        name,
		Type:        models.VariableType(strings.ToLower(typeArg)),
		Description: prompt,
	}

	u := updater.NewUpdater(client, cat, def, log)
	if allAgents {
		u.SetAllAgents()
	} else {
		for _, groupName := range strings.Split(groupsArg, ",") {
			group, err := parseGroup(groupName)
			if err != nil {
				return err
			}
			u.SetAgentGroup(group)
		}
	}

	if dryRun {
		for _, id := range u.SelectedAgentIDs() {
			fmt.Println(id)
		}
		return nil
	}

	return u.Run(ctx)
}

func parseGroup(name string) (models.AgentGroup, error) {
	group := models.AgentGroup(strings.ToUpper(strings.TrimSpace(name)))
	for _, g := range models.AllAgentGroups() {
		if g == group {
			return group, nil
		}
	}
	return "", fmt.Errorf("unknown agent group %q", name)
}
