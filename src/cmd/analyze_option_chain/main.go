package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jiaming2012/trade-analyst/src/cmd/analyze_option_chain/run"
	"github.com/jiaming2012/trade-analyst/src/eventmodels"
	"github.com/jiaming2012/trade-analyst/src/eventservices"
	"github.com/jiaming2012/trade-analyst/src/optionchain"
	"github.com/jiaming2012/trade-analyst/src/utils"
)

type RunArgs struct {
	GoEnv      string
	ConfigPath string
	Symbol     string
	InputFile  string
	RangeWidth float64
}

type RunResult struct {
	Analysis *optionchain.Analysis
}

var runCmd = &cobra.Command{
	Use:   "go run src/cmd/analyze_option_chain/main.go --symbol NIFTY",
	Short: "Analyze an index option chain: support, resistance, OI change, IV skew and liquidity",
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

		rangeWidth, err := cmd.Flags().GetFloat64("range-width")
		if err != nil {
			log.Fatalf("error getting range-width: %v", err)
		}

		asJSON, err := cmd.Flags().GetBool("json")
		if err != nil {
			log.Fatalf("error getting json: %v", err)
		}

		result, err := Run(RunArgs{
			GoEnv:      goEnv,
			ConfigPath: configPath,
			Symbol:     symbol,
			InputFile:  inputFile,
			RangeWidth: rangeWidth,
		})

		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		if asJSON {
			out, err := json.MarshalIndent(result.Analysis, "", "  ")
			if err != nil {
				log.Fatalf("failed to marshal analysis: %v", err)
			}

			fmt.Println(string(out))
			return
		}

		fmt.Print(run.RenderAnalysis(result.Analysis))
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

	analysisCfg := optionchain.ConfigFromYAML(cfg.OptionChain)
	if args.RangeWidth > 0 {
		analysisCfg.RangeWidth = args.RangeWidth
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

	log.Infof("analyzing %d rows of the %s option chain", len(snapshot.Rows), snapshot.Symbol)

	analysis, err := optionchain.Analyze(snapshot, analysisCfg)
	if err != nil {
		return RunResult{}, err
	}

	return RunResult{Analysis: analysis}, nil
}

func main() {
	runCmd.PersistentFlags().String("go-env", "development", "The go environment to run the command in.")
	runCmd.PersistentFlags().String("config", "", "Path to the analyst yaml config. Defaults are used when empty.")
	runCmd.PersistentFlags().String("symbol", "NIFTY", "The index symbol.")
	runCmd.PersistentFlags().String("input", "", "Read the option chain from a saved JSON response instead of fetching it.")
	runCmd.PersistentFlags().Float64("range-width", 0, "Override the strike range around the underlying.")
	runCmd.PersistentFlags().Bool("json", false, "Print the analysis as JSON.")

	runCmd.Execute()
}
