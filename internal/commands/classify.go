package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tsucho-dev/tsucho/internal/classify"
	"github.com/tsucho-dev/tsucho/internal/config"
	"github.com/tsucho-dev/tsucho/internal/logger"
	"github.com/tsucho-dev/tsucho/internal/model"
)

func newClassifyCommand(opts *globalOptions) *cobra.Command {
	var (
		mode    string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "classify <case>",
		Short: "Assign categories to unclassified transactions",
		Long: `Assign one of 生活費, 資産形成, 贈与疑い or その他 to every transaction
without a category. Keyword rules run first; in auto and generative mode a
local or hosted model is asked about descriptions the rules leave as その他.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(opts)
			if err != nil {
				return err
			}
			defer ws.Close()

			ctx := cmd.Context()
			if mode == "" {
				mode = ws.cfg.Classify.Mode
			}
			m, err := classify.ParseMode(mode)
			if err != nil {
				return err
			}
			if workers <= 0 {
				workers = ws.cfg.Classify.Workers
			}

			rules := classify.NewRuleEngine(ws.cfg.Classify.Keywords, ws.cfg.Classify.GiftThreshold)
			var gen classify.Generator
			if m != classify.ModeRules {
				gen, err = newGenerator(ctx, ws.cfg.Generative)
				if err != nil {
					if m == classify.ModeGenerative {
						return err
					}
					log := logger.FromContext(ctx)
					log.Info().Err(err).Msg("no generator configured, using rules only")
				}
			}

			c, active, err := classify.Select(ctx, m, rules, gen, classify.SelectOptions{
				Timeout:      ws.cfg.Generative.Timeout,
				ProbeTimeout: ws.cfg.Generative.ProbeTimeout,
			})
			if err != nil {
				return err
			}

			stats, err := ws.svc.Classify(ctx, args[0], classify.NewPipeline(c, workers))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if stats.Targeted == 0 {
				fmt.Fprintln(w, "Nothing to classify.")
				return nil
			}
			fmt.Fprintf(w, "Classified %d rows (%d unique descriptions, mode %s)\n", stats.Targeted, stats.Unique, active)
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			for _, cat := range model.Categories {
				fmt.Fprintf(tw, "  %s\t%d\n", cat, stats.ByCategory[cat])
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "classification mode: auto, rules or generative (default from config)")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel classification workers (default from config)")

	return cmd
}

// newGenerator builds the configured generative backend.
func newGenerator(ctx context.Context, cfg config.GenerativeConfig) (classify.Generator, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		g, err := classify.NewGeminiClient(ctx, os.Getenv(cfg.APIKeyEnv), cfg.Model)
		if err != nil {
			return nil, err
		}
		return g, nil
	case config.ProviderOllama, "":
		return classify.NewOllamaClient(cfg.Endpoint, cfg.Model, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown generative provider %q", cfg.Provider)
	}
}
