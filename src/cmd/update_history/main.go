package main

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jiaming2012/trade-analyst/src/cmd/update_history/run"
	"github.com/jiaming2012/trade-analyst/src/eventmodels"
	"github.com/jiaming2012/trade-analyst/src/eventservices"
	"github.com/jiaming2012/trade-analyst/src/utils"
)

type RunArgs struct {
	GoEnv      string
	ConfigPath string
	Days       int
	Roll       bool
}

type RunResult struct {
	Bars    int
	Skipped []*eventmodels.UpstreamFetchError
	Path    string
}

var runCmd = &cobra.Command{
	Use:   "go run src/cmd/update_history/main.go --days 30",
	Short: "Backfill or roll the daily history used by the R-Score",
	Run: func(cmd *cobra.Command, args []string) {
		goEnv, err := cmd.Flags().GetString("go-env")
		if err != nil {
			log.Fatalf("error getting go-env: %v", err)
		}

		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			log.Fatalf("error getting config: %v", err)
		}

		days, err := cmd.Flags().GetInt("days")
		if err != nil {
			log.Fatalf("error getting days: %v", err)
		}

		roll, err := cmd.Flags().GetBool("roll")
		if err != nil {
			log.Fatalf("error getting roll: %v", err)
		}

		result, err := Run(RunArgs{
			GoEnv:      goEnv,
			ConfigPath: configPath,
			Days:       days,
			Roll:       roll,
		})

		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		fmt.Printf("Wrote %d bars to %s\n", result.Bars, result.Path)
		for _, skipped := range result.Skipped {
			fmt.Printf("Skipped %s (%d): %v\n", skipped.Symbol, skipped.InstrumentToken, skipped.Err)
		}
	},
}

func Run(args RunArgs) (RunResult, error) {
	projectsDir := utils.GetEnvOrDefault("PROJECTS_DIR", ".")
	if err := utils.InitEnvironmentVariables(projectsDir, args.GoEnv); err != nil {
		return RunResult{}, fmt.Errorf("error loading environment variables: %w", err)
	}

	if args.Roll == (args.Days > 0) {
		return RunResult{}, fmt.Errorf("pass exactly one of --days or --roll")
	}

	cfg := eventmodels.NewDefaultAnalystConfigYAML()
	if args.ConfigPath != "" {
		var err error
		if cfg, err = eventmodels.LoadAnalystConfigYAML(args.ConfigPath); err != nil {
			return RunResult{}, err
		}
	}

	sectorMap, err := eventservices.LoadSectorMap(cfg.Data.SectorMapFile)
	if err != nil {
		return RunResult{}, err
	}

	members := sectorMap.AllMembers()

	kite, err := eventservices.NewKiteClientFromEnv(cfg.Acquisition.RequestTimeout)
	if err != nil {
		return RunResult{}, err
	}

	store := eventservices.NewHistoryStore(cfg.Data.HistoryFile)
	today := eventmodels.TradingDayOf(time.Now())
	ctx := context.Background()

	if args.Roll {
		n, skipped, err := run.RollHistory(ctx, store, eventservices.NewQuoteProvider(kite, cfg.Acquisition), members, today)
		if err != nil {
			return RunResult{}, err
		}

		return RunResult{Bars: n, Skipped: skipped, Path: store.Path()}, nil
	}

	from := eventmodels.TradingDayOf(time.Now().AddDate(0, 0, -args.Days))

	log.Infof("backfilling %d members from %s to %s", len(members), from, today)

	bars, skipped := run.Backfill(ctx, kite, members, from, today,
		eventservices.NewLimiterFromYAML(cfg.Acquisition), eventservices.RetryPolicyFromYAML(cfg.Acquisition))

	if len(bars) == 0 {
		return RunResult{Skipped: skipped}, fmt.Errorf("no history fetched for %d members", len(members))
	}

	if err := store.Save(bars); err != nil {
		return RunResult{}, err
	}

	return RunResult{Bars: len(bars), Skipped: skipped, Path: store.Path()}, nil
}

func main() {
	runCmd.PersistentFlags().String("go-env", "development", "The go environment to run the command in.")
	runCmd.PersistentFlags().String("config", "", "Path to the analyst yaml config. Defaults are used when empty.")
	runCmd.PersistentFlags().Int("days", 0, "Backfill this many calendar days of daily candles.")
	runCmd.PersistentFlags().Bool("roll", false, "Append today's live bars and drop the oldest day.")

	runCmd.Execute()
}
