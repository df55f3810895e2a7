package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jiaming2012/trade-analyst/src/cmd/liquidation_zones/run"
	"github.com/jiaming2012/trade-analyst/src/eventmodels"
	"github.com/jiaming2012/trade-analyst/src/eventservices"
	"github.com/jiaming2012/trade-analyst/src/liquidation"
	"github.com/jiaming2012/trade-analyst/src/utils"
)

type RunArgs struct {
	GoEnv       string
	ConfigPath  string
	Symbol      string
	InputFile   string
	OIThreshold float64
}

type RunResult struct {
	Symbol      string                     `json:"symbol"`
	Signals     []eventmodels.SignalRecord `json:"signals"`
	MajorLevels []eventmodels.SignalRecord `json:"major_levels"`
}

var runCmd = &cobra.Command{
	Use:   "go run src/cmd/liquidation_zones/main.go --symbol NIFTY",
	Short: "Classify option chain strikes into liquidation zones",
	Run: func(cmd *cobra.Command, args []string) {
		goEnv, err := cmd.Flags().GetString("go-env")
		if err != nil {
			log.Fatalf("error getting go-env: %v", err)
		}

		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			log.Fatalf("error getting config: %v", err)
		}

		symbol, err := cmd.Flags().GetString("symbol")
		if err != nil {
			log.Fatalf("error getting symbol: %v", err)
		}

		inputFile, err := cmd.Flags().GetString("input")
		if err != nil {
			log.Fatalf("error getting input: %v", err)
		}

		oiThreshold, err := cmd.Flags().GetFloat64("oi-threshold")
		if err != nil {
			log.Fatalf("error getting oi-threshold: %v", err)
		}

		asJSON, err := cmd.Flags().GetBool("json")
		if err != nil {
			log.Fatalf("error getting json: %v", err)
		}

		result, err := Run(RunArgs{
			GoEnv:       goEnv,
			ConfigPath:  configPath,
			Symbol:      symbol,
			InputFile:   inputFile,
			OIThreshold: oiThreshold,
		})

		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		if asJSON {
			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				log.Fatalf("failed to marshal signals: %v", err)
			}

			fmt.Println(string(out))
			return
		}

		fmt.Print(run.RenderSignals(result.Symbol, result.Signals))
		fmt.Println()
		fmt.Print(run.RenderMajorLevels(result.MajorLevels))
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

	thresholds := liquidation.ThresholdsFromYAML(cfg.Liquidation)
	if args.OIThreshold > 0 {
		thresholds.OIThreshold = args.OIThreshold
	}

	var snapshot *eventmodels.OptionChainSnapshot
	var err error
	if args.InputFile != "" {
		snapshot, err = eventservices.LoadOptionChainFile(args.InputFile, args.Symbol, time.Now())
	} else {
		var client *eventservices.NseClient
		client, err = eventservices.NewNseClientFromYAML(cfg.Acquisition, utils.GetEnvOrDefault("NSE_BASE_URL", eventservices.DefaultNseBaseURL), 0)
		if err != nil {
			return RunResult{}, err
		}

		snapshot, err = client.FetchOptionChain(context.Background(), args.Symbol)
	}

	if err != nil {
		return RunResult{}, fmt.Errorf("failed to load option chain: %w", err)
	}

	signals := liquidation.Classify(snapshot, thresholds)

	log.WithFields(log.Fields{
		"symbol":  snapshot.Symbol,
		"rows":    len(snapshot.Rows),
		"signals": len(signals),
	}).Info("classified option chain")

	return RunResult{
		Symbol:      snapshot.Symbol,
		Signals:     signals,
		MajorLevels: liquidation.MajorLevels(signals, cfg.Liquidation.MajorLevels),
	}, nil
}

func main() {
	runCmd.PersistentFlags().String("go-env", "development", "The go environment to run the command in.")
	runCmd.PersistentFlags().String("config", "", "Path to the analyst yaml config. Defaults are used when empty.")
	runCmd.PersistentFlags().String("symbol", "NIFTY", "The index symbol.")
	runCmd.PersistentFlags().String("input", "", "Read the option chain from a saved JSON response instead of fetching it.")
	runCmd.PersistentFlags().Float64("oi-threshold", 0, "Override the heavy open interest threshold.")
	runCmd.PersistentFlags().Bool("json", false, "Print the signals as JSON.")

	runCmd.Execute()
}
