package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"elevenlabs-exporter/internal/catalog"
	"elevenlabs-exporter/internal/common/config"
	"elevenlabs-exporter/internal/common/elevenlabs"
	"elevenlabs-exporter/internal/common/logger"
	"elevenlabs-exporter/internal/common/metrics"
	"elevenlabs-exporter/internal/conversations"
	"elevenlabs-exporter/internal/export"
	"elevenlabs-exporter/internal/models"
	"elevenlabs-exporter/internal/timeutil"
)

var rootCmd = &cobra.Command{
	Use:   "exporter",
	Short: "Export ElevenLabs ConvAI conversations to CSV files",
}

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a config file (default: ./configs/config.yaml)")
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newAgentsCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "exporter: %v\n", err)
		os.Exit(1)
	}
}

// selectionFlags is the agent/date filter shared by every export subcommand.
type selectionFlags struct {
	agentIDs    []string
	agentGroups []string
	startDate   string
	endDate     string
}

func (s *selectionFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringSliceVar(&s.agentIDs, "agent-ids", nil, "restrict to these agent ids")
	flags.StringSliceVar(&s.agentGroups, "agent-groups", nil, "restrict to these agent groups (e.g. ELENA, MARIA)")
	flags.StringVar(&s.startDate, "start-date", "", "earliest call date, YYYY-MM-DD inclusive")
	flags.StringVar(&s.endDate, "end-date", "", "latest call date, YYYY-MM-DD exclusive")
}

func (s *selectionFlags) options(resolver conversations.GroupResolver, pageSize int) (conversations.AggregatorOptions, error) {
	opts := conversations.AggregatorOptions{
		AgentIDs: s.agentIDs,
		PageSize: pageSize,
	}

	groupTags, err := parseGroups(s.agentGroups)
	if err != nil {
		return opts, err
	}
	opts.AgentGroups = groupTags

	if s.startDate != "" {
		d, err := timeutil.ParseDate(s.startDate)
		if err != nil {
			return opts, fmt.Errorf("invalid --start-date: %w", err)
		}
		opts.StartDate = &d
	}
	if s.endDate != "" {
		d, err := timeutil.ParseDate(s.endDate)
		if err != nil {
			return opts, fmt.Errorf("invalid --end-date: %w", err)
		}
		opts.EndDate = &d
	}

	return opts, nil
}

func parseGroups(names []string) ([]models.AgentGroup, error) {
	valid := make(map[models.AgentGroup]bool, len(models.AllAgentGroups()))
	for _, g := range models.AllAgentGroups() {
		valid[g] = true
	}

	groups := make([]models.AgentGroup, 0, len(names))
	for _, name := range names {
		g := models.AgentGroup(strings.ToUpper(strings.TrimSpace(name)))
		if !valid[g] {
			return nil, fmt.Errorf("unknown agent group %q", name)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// processingFlags registers the enrichment toggles for commands where the
// field subset is caller-controlled. Dynamic variables, criteria and data
// collection default on for the flattened export; transcripts default off.
func processingFlags(cmd *cobra.Command, flags *conversations.ProcessFlags) {
	f := cmd.Flags()
	f.BoolVar(&flags.Summary, "summary", false, "extract the analysis summary")
	f.BoolVar(&flags.Transcript, "transcript", false, "extract the full transcript")
	f.BoolVar(&flags.DynamicVariables, "dynamic-variables", true, "extract filtered dynamic variables")
	f.BoolVar(&flags.Criteria, "criteria", true, "extract evaluation criteria results")
	f.BoolVar(&flags.DataCollection, "data-collection", true, "extract data collection results")
	f.BoolVar(&flags.All, "all", false, "extract every optional field")
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Aggregate, enrich and export conversations",
	}
	cmd.AddCommand(newExportTranscriptsCmd())
	cmd.AddCommand(newExportCombinedCmd())
	cmd.AddCommand(newExportDataCollectionCmd())
	return cmd
}

func newExportTranscriptsCmd() *cobra.Command {
	sel := &selectionFlags{}

	cmd := &cobra.Command{
		Use:   "transcripts",
		Short: "Write one transcript CSV file per conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(sel, conversations.ProcessFlags{Transcript: true},
				func(exporter *export.Exporter, details []*models.ConversationDetail) error {
					paths, err := exporter.ExportTranscripts(details)
					if err != nil {
						return err
					}
					for _, path := range paths {
						fmt.Fprintln(cmd.OutOrStdout(), path)
					}
					return nil
				})
		},
	}

	sel.register(cmd)
	return cmd
}

func newExportCombinedCmd() *cobra.Command {
	sel := &selectionFlags{}

	cmd := &cobra.Command{
		Use:   "combined",
		Short: "Write all transcripts into one combined CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(sel, conversations.ProcessFlags{Transcript: true},
				func(exporter *export.Exporter, details []*models.ConversationDetail) error {
					path, err := exporter.ExportCombinedTranscript(details)
					if err != nil {
						return err
					}
					if path != "" {
						fmt.Fprintln(cmd.OutOrStdout(), path)
					}
					return nil
				})
		},
	}

	sel.register(cmd)
	return cmd
}

func newExportDataCollectionCmd() *cobra.Command {
	sel := &selectionFlags{}
	flags := conversations.ProcessFlags{}

	cmd := &cobra.Command{
		Use:   "data-collection",
		Short: "Write one flattened CSV row per conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(sel, flags,
				func(exporter *export.Exporter, details []*models.ConversationDetail) error {
					path, err := exporter.ExportDataCollection(details)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), path)
					return nil
				})
		},
	}

	sel.register(cmd)
	processingFlags(cmd, &flags)
	return cmd
}

func runExport(sel *selectionFlags, flags conversations.ProcessFlags, write func(*export.Exporter, []*models.ConversationDetail) error) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	client := elevenlabs.NewClient(cfg.ElevenLabs.APIKey, cfg.ElevenLabs.BaseURL, config.GetDuration(cfg.ElevenLabs.Timeout))
	ctx := context.Background()

	started := time.Now()
	cat, err := catalog.New(ctx, client, cfg.ElevenLabs.PageSize, log)
	if err != nil {
		return err
	}

	opts, err := sel.options(cat, cfg.ElevenLabs.PageSize)
	if err != nil {
		return err
	}

	agg := conversations.NewAggregator(client, cat, opts, log)
	if err := agg.Build(ctx); err != nil {
		return err
	}

	enricher := conversations.NewEnricher(client, flags, log)
	details, err := enricher.Enrich(ctx, agg.Conversations())
	if err != nil {
		return err
	}

	exporter := export.NewExporter(cfg.Export.Dir, log)
	if err := write(exporter, details); err != nil {
		return err
	}

	log.Info("Run complete", map[string]interface{}{
		"durationMs": time.Since(started).Milliseconds(),
		"metrics":    metrics.Summary(),
	})

	return nil
}

func newAgentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Inspect the agent catalog",
	}
	cmd.AddCommand(newAgentsListCmd())
	return cmd
}

func newAgentsListCmd() *cobra.Command {
	var groupFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List agents and their derived groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			client := elevenlabs.NewClient(cfg.ElevenLabs.APIKey, cfg.ElevenLabs.BaseURL, config.GetDuration(cfg.ElevenLabs.Timeout))
			cat, err := catalog.New(context.Background(), client, cfg.ElevenLabs.PageSize, log)
			if err != nil {
				return err
			}

			ids := cat.AgentIDs()
			if groupFilter != "" {
				groupTags, err := parseGroups([]string{groupFilter})
				if err != nil {
					return err
				}
				ids = cat.GroupIDs(groupTags[0])
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.SetStyle(table.StyleRounded)
			tw.SetColumnConfigs([]table.ColumnConfig{
				{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
				{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
				{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
			})
			tw.AppendHeader(table.Row{"Agent ID", "Name", "Groups"})

			for _, id := range ids {
				agent, err := cat.Agent(id)
				if err != nil {
					return err
				}
				groupNames := make([]string, 0, len(agent.Groups))
				for _, g := range agent.Groups {
					groupNames = append(groupNames, g.String())
				}
				tw.AppendRow(table.Row{agent.ID, agent.Name, strings.Join(groupNames, ",")})
			}

			if len(ids) == 0 {
				tw.AppendRow(table.Row{"-", "(no agents)", "-"})
			}

			tw.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&groupFilter, "group", "", "only list agents in this group")
	return cmd
}

// setup loads configuration and builds a run-scoped logger.
func setup() (*config.Config, logger.Logger, error) {
	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format).With(map[string]interface{}{
		"runId": uuid.New().String(),
	})

	return cfg, log, nil
}
