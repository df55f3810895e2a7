package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/uptrace/opentelemetry-go-extra/otellogrus"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdk_trace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/jiaming2012/trade-analyst/src/data"
	"github.com/jiaming2012/trade-analyst/src/eventconsumers"
	"github.com/jiaming2012/trade-analyst/src/eventmodels"
	"github.com/jiaming2012/trade-analyst/src/eventproducers"
	"github.com/jiaming2012/trade-analyst/src/eventproducers/analystapi"
	"github.com/jiaming2012/trade-analyst/src/eventpubsub"
	"github.com/jiaming2012/trade-analyst/src/eventservices"
	"github.com/jiaming2012/trade-analyst/src/liquidation"
	"github.com/jiaming2012/trade-analyst/src/logger"
	"github.com/jiaming2012/trade-analyst/src/optionchain"
	"github.com/jiaming2012/trade-analyst/src/rscore"
	"github.com/jiaming2012/trade-analyst/src/utils"
)

func main() {
	run()
}

// setupOTelSDK bootstraps the OpenTelemetry pipeline.
// If it does not return an error, make sure to call shutdown for proper cleanup.
func setupOTelSDK(ctx context.Context) (shutdown func(context.Context) error, err error) {
	var shutdownFuncs []func(context.Context) error

	// shutdown calls cleanup functions registered via shutdownFuncs.
	// The errors from the calls are joined.
	shutdown = func(ctx context.Context) error {
		var err error
		for _, fn := range shutdownFuncs {
			err = errors.Join(err, fn(ctx))
		}
		shutdownFuncs = nil
		return err
	}

	handleErr := func(inErr error) {
		err = errors.Join(inErr, shutdown(ctx))
	}

	prop := propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
	otel.SetTextMapPropagator(prop)

	traceExporter, err := otlptrace.New(ctx, otlptracehttp.NewClient())
	if err != nil {
		return nil, err
	}

	res, _ := resource.New(ctx, resource.WithAttributes(attribute.String("service.name", "trade-analyst")))

	tracerProvider := sdk_trace.NewTracerProvider(
		sdk_trace.WithBatcher(traceExporter),
		sdk_trace.WithResource(res),
	)
	shutdownFuncs = append(shutdownFuncs, tracerProvider.Shutdown)
	otel.SetTracerProvider(tracerProvider)

	metricExporter, err := otlpmetrichttp.New(ctx)
	if err != nil {
		handleErr(err)
		return
	}

	meterProvider := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(metricExporter)),
		metric.WithResource(res),
	)
	shutdownFuncs = append(shutdownFuncs, meterProvider.Shutdown)
	otel.SetMeterProvider(meterProvider)

	if err = runtime.Start(runtime.WithMinimumReadMemStatsInterval(time.Second)); err != nil {
		handleErr(err)
		return
	}

	return
}

// chainCacheTTL keeps a cached option chain from outliving half a poll.
func chainCacheTTL(cfg eventmodels.AnalystConfigYAML) time.Duration {
	ttl := cfg.OptionChain.PollInterval / 2
	if cfg.Acquisition.CacheTTL < ttl {
		ttl = cfg.Acquisition.CacheTTL
	}

	return ttl
}

func run() {
	projectsDir := utils.GetEnvOrDefault("PROJECTS_DIR", ".")
	goEnv := utils.GetEnvOrDefault("GO_ENV", "development")

	if err := utils.InitEnvironmentVariables(projectsDir, goEnv); err != nil {
		log.Fatalf("error loading environment variables: %v", err)
	}

	// Load config
	configPath := utils.GetEnvOrDefault("ANALYST_CONFIG", filepath.Join(projectsDir, "config", "analyst.yaml"))
	cfg, err := eventmodels.LoadAnalystConfigYAML(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if port, err := utils.GetEnv("PORT"); err == nil {
		cfg.Server.Port = port
	}

	if err := logger.Configure(cfg.Log); err != nil {
		log.Fatalf("failed to configure logger: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	// Set up Telemetry
	log.AddHook(otellogrus.NewHook(otellogrus.WithLevels(
		log.PanicLevel,
		log.FatalLevel,
		log.ErrorLevel,
		log.WarnLevel,
		log.InfoLevel,
	)))

	if _, err := utils.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT"); err == nil {
		otelShutdown, err := setupOTelSDK(ctx)
		if err != nil {
			log.Fatalf("failed to setup otel sdk: %v", err)
		}

		defer func() {
			if err := otelShutdown(context.Background()); err != nil {
				log.Errorf("failed to shutdown otel sdk: %v", err)
			}
		}()
	} else {
		log.Info("OTEL_EXPORTER_OTLP_ENDPOINT not set, telemetry export disabled")
	}

	analysisCfg := optionchain.ConfigFromYAML(cfg.OptionChain)
	thresholds := liquidation.ThresholdsFromYAML(cfg.Liquidation)

	scoreCfg, err := rscore.ConfigFromYAML(cfg.RScore)
	if err != nil {
		log.Fatalf("invalid rscore config: %v", err)
	}

	// Load sector data
	sectorMap, err := eventservices.LoadSectorMap(cfg.Data.SectorMapFile)
	if err != nil {
		log.Fatalf("failed to load sector map: %v", err)
	}

	indices, err := eventservices.LoadSectorIndices(cfg.Data.SectorIndexFile)
	if err != nil {
		log.Warnf("sector indices unavailable: %v", err)
	}

	// Set up upstream clients
	kite, err := eventservices.NewKiteClientFromEnv(cfg.Acquisition.RequestTimeout)
	if err != nil {
		log.Fatalf("failed to create broker client: %v", err)
	}

	nse, err := eventservices.NewNseClientFromYAML(cfg.Acquisition, utils.GetEnvOrDefault("NSE_BASE_URL", eventservices.DefaultNseBaseURL), chainCacheTTL(cfg))
	if err != nil {
		log.Fatalf("failed to create option chain client: %v", err)
	}

	sectorService := eventservices.NewSectorService(eventservices.SectorServiceOptions{
		Provider: eventservices.NewQuoteProvider(kite, cfg.Acquisition),
		History:  eventservices.NewHistoryStore(cfg.Data.HistoryFile),
		Sectors:  sectorMap,
		Indices:  indices,
		RScore:   scoreCfg,
	})

	// Set up pubsub
	eventpubsub.Init()

	store := data.NewAnalysisStore()

	if err := eventconsumers.NewOptionChainConsumer(store, analysisCfg, thresholds, cfg.Liquidation.MajorLevels).Start(); err != nil {
		log.Fatalf("failed to start option chain consumer: %v", err)
	}

	stream := analystapi.NewStream(store)
	if err := stream.Start(); err != nil {
		log.Fatalf("failed to start stream: %v", err)
	}

	eventproducers.NewOptionChainPoller(&wg, nse, cfg.OptionChain.Symbols, cfg.OptionChain.PollInterval).Start(ctx)

	// Setup router
	router := mux.NewRouter()
	analystapi.NewHandler(store, sectorService, stream, analysisCfg, thresholds, cfg.Liquidation.MajorLevels).SetupRoutes(router)

	// Setup web server
	srv := &http.Server{
		Handler: router,
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	// Start web server
	go func() {
		log.Infof("listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Create channel for shutdown signals.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	signal.Notify(stop, syscall.SIGTERM)

	log.Info("Main: init complete")

	// Block here until program is shut down
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("failed to shutdown server: %v", err)
	}

	if err := stream.Stop(); err != nil {
		log.Errorf("failed to stop stream: %v", err)
	}

	// shut down the poller
	cancel()

	// Wait for event clients to shut down
	wg.Wait()
	eventpubsub.Wait()

	log.Info("Main: gracefully stopped!")
}
