package main

import (
	"context"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jiaming2012/trade-analyst/src/cmd/sector_scores/run"
	"github.com/jiaming2012/trade-analyst/src/eventmodels"
	"github.com/jiaming2012/trade-analyst/src/eventservices"
	"github.com/jiaming2012/trade-analyst/src/rscore"
	"github.com/jiaming2012/trade-analyst/src/utils"
)

type RunArgs struct {
	GoEnv        string
	ConfigPath   string
	Sectors      []string
	All          bool
	Indices      bool
	Market       bool
	DropUnscored bool
	Intraday     bool
}

type RunResult struct {
	Sectors []*eventservices.SectorResult        `json:"sectors"`
	Indices *eventservices.IndexPerformanceResult `json:"indices,omitempty"`
	Market  *eventservices.MarketOverviewResult   `json:"market,omitempty"`
}

var runCmd = &cobra.Command{
	Use:   "go run src/cmd/sector_scores/main.go --sector Banking",
	Short: "Rank sector members by R-Score and show sectorial index performance",
	Run: func(cmd *cobra.Command, args []string) {
		goEnv, err := cmd.Flags().GetString("go-env")
		if err != nil {
			log.Fatalf("error getting go-env: %v", err)
		}

		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			log.Fatalf("error getting config: %v", err)
		}

		sectors, err := cmd.Flags().GetStringSlice("sector")
		if err != nil {
			log.Fatalf("error getting sector: %v", err)
		}

		all, err := cmd.Flags().GetBool("all")
		if err != nil {
			log.Fatalf("error getting all: %v", err)
		}

		indices, err := cmd.Flags().GetBool("indices")
		if err != nil {
			log.Fatalf("error getting indices: %v", err)
		}

		market, err := cmd.Flags().GetBool("market")
		if err != nil {
			log.Fatalf("error getting market: %v", err)
		}

		dropUnscored, err := cmd.Flags().GetBool("drop-unscored")
		if err != nil {
			log.Fatalf("error getting drop-unscored: %v", err)
		}

		intraday, err := cmd.Flags().GetBool("intraday")
		if err != nil {
			log.Fatalf("error getting intraday: %v", err)
		}

		asJSON, err := cmd.Flags().GetBool("json")
		if err != nil {
			log.Fatalf("error getting json: %v", err)
		}

		result, err := Run(RunArgs{
			GoEnv:        goEnv,
			ConfigPath:   configPath,
			Sectors:      sectors,
			All:          all,
			Indices:      indices,
			Market:       market,
			DropUnscored: dropUnscored,
			Intraday:     intraday,
		})

		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		if asJSON {
			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				log.Fatalf("failed to marshal sector scores: %v", err)
			}

			fmt.Println(string(out))
			return
		}

		if result.Market != nil {
			fmt.Print(run.RenderMarketOverview(result.Market))
			fmt.Println()
		}

		for _, s := range result.Sectors {
			fmt.Print(run.RenderSector(s))
			fmt.Println()
		}

		if result.Indices != nil {
			fmt.Print(run.RenderIndexPerformance(result.Indices))
		}
	},
}

func Run(args RunArgs) (RunResult, error) {
	projectsDir := utils.GetEnvOrDefault("PROJECTS_DIR", ".")
	if err := utils.InitEnvironmentVariables(projectsDir, args.GoEnv); err != nil {
		return RunResult{}, fmt.Errorf("error loading environment variables: %w", err)
	}

	cfg := eventmodels.NewDefaultAnalystConfigYAML()
	if args.ConfigPath != "" {
		var err error
		if cfg, err = eventmodels.LoadAnalystConfigYAML(args.ConfigPath); err != nil {
			return RunResult{}, err
		}
	}

	if args.Intraday {
		cfg.RScore.Preset = rscore.IntradayPreset
		cfg.RScore.Weights = nil
	}

	scoreCfg, err := rscore.ConfigFromYAML(cfg.RScore)
	if err != nil {
		return RunResult{}, err
	}

	sectorMap, err := eventservices.LoadSectorMap(cfg.Data.SectorMapFile)
	if err != nil {
		return RunResult{}, err
	}

	var indices []eventmodels.SectorIndex
	if args.Indices {
		if indices, err = eventservices.LoadSectorIndices(cfg.Data.SectorIndexFile); err != nil {
			return RunResult{}, err
		}
	}

	kite, err := eventservices.NewKiteClientFromEnv(cfg.Acquisition.RequestTimeout)
	if err != nil {
		return RunResult{}, err
	}

	service := eventservices.NewSectorService(eventservices.SectorServiceOptions{
		Provider:     eventservices.NewQuoteProvider(kite, cfg.Acquisition),
		History:      eventservices.NewHistoryStore(cfg.Data.HistoryFile),
		Sectors:      sectorMap,
		Indices:      indices,
		RScore:       scoreCfg,
		DropUnscored: args.DropUnscored,
	})

	names := args.Sectors
	if args.All {
		names = service.SectorNames()
	}

	if len(names) == 0 && !args.Indices && !args.Market {
		return RunResult{}, fmt.Errorf("nothing to do: pass --sector, --all, --indices or --market")
	}

	ctx := context.Background()

	var result RunResult
	if args.Market {
		if result.Market, err = service.MarketOverview(ctx); err != nil {
			return RunResult{}, err
		}
	}

	if len(names) > 0 {
		if result.Sectors, err = service.BuildMany(ctx, names); err != nil {
			return RunResult{}, err
		}
	}

	if args.Indices {
		if result.Indices, err = service.IndexPerformance(ctx); err != nil {
			return RunResult{}, err
		}
	}

	return result, nil
}

func main() {
	runCmd.PersistentFlags().String("go-env", "development", "The go environment to run the command in.")
	runCmd.PersistentFlags().String("config", "", "Path to the analyst yaml config. Defaults are used when empty.")
	runCmd.PersistentFlags().StringSlice("sector", []string{}, "The sectors to rank.")
	runCmd.PersistentFlags().Bool("all", false, "Rank every sector in the sector map.")
	runCmd.PersistentFlags().Bool("indices", false, "Show sectorial index performance.")
	runCmd.PersistentFlags().Bool("market", false, "Show NIFTY 50, BANK NIFTY and INDIA VIX against today's open.")
	runCmd.PersistentFlags().Bool("drop-unscored", false, "Hide members with too little history to score.")
	runCmd.PersistentFlags().Bool("intraday", false, "Use the intraday weight preset.")
	runCmd.PersistentFlags().Bool("json", false, "Print the results as JSON.")

	runCmd.Execute()
}
