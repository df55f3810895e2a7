package eventconsumers

import (
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jiaming2012/trade-analyst/src/data"
	"github.com/jiaming2012/trade-analyst/src/eventmodels"
	"github.com/jiaming2012/trade-analyst/src/eventpubsub"
	"github.com/jiaming2012/trade-analyst/src/liquidation"
	"github.com/jiaming2012/trade-analyst/src/optionchain"
)

// OptionChainConsumer runs the analyzer and the liquidation classifier on
// every polled snapshot. The two run as separate subscribers and write
// their halves of the store entry independently.
type OptionChainConsumer struct {
	store       *data.AnalysisStore
	config      optionchain.Config
	thresholds  liquidation.Thresholds
	majorLevels int
}

func NewOptionChainConsumer(store *data.AnalysisStore, config optionchain.Config, thresholds liquidation.Thresholds, majorLevels int) *OptionChainConsumer {
	return &OptionChainConsumer{
		store:       store,
		config:      config,
		thresholds:  thresholds,
		majorLevels: majorLevels,
	}
}

func (c *OptionChainConsumer) Start() error {
	if err := eventpubsub.Subscribe(eventpubsub.OptionChainSnapshotEvent, c.handleAnalysis); err != nil {
		return err
	}

	return eventpubsub.Subscribe(eventpubsub.OptionChainSnapshotEvent, c.handleClassification)
}

func (c *OptionChainConsumer) handleAnalysis(event *eventmodels.OptionChainSnapshotEvent) {
	_, span := otel.Tracer("OptionChainConsumer").Start(event.Ctx, "OptionChainConsumer.handleAnalysis")
	defer span.End()

	snapshot := event.Snapshot
	span.SetAttributes(attribute.String("symbol", snapshot.Symbol))

	start := time.Now()

	analysis, err := optionchain.Analyze(snapshot, c.config)
	if err != nil {
		span.RecordError(err)
		log.WithField("symbol", snapshot.Symbol).Errorf("OptionChainConsumer: analysis failed: %v", err)
	}

	if c.store.PutAnalysis(snapshot, analysis, err) {
		c.publishUpdate(snapshot.Symbol)
	}

	log.WithFields(log.Fields{
		"symbol":   snapshot.Symbol,
		"rows":     len(snapshot.Rows),
		"duration": time.Since(start),
	}).Debug("analyzed option chain")
}

func (c *OptionChainConsumer) handleClassification(event *eventmodels.OptionChainSnapshotEvent) {
	_, span := otel.Tracer("OptionChainConsumer").Start(event.Ctx, "OptionChainConsumer.handleClassification")
	defer span.End()

	snapshot := event.Snapshot
	span.SetAttributes(attribute.String("symbol", snapshot.Symbol))

	signals := liquidation.Classify(snapshot, c.thresholds)
	major := liquidation.MajorLevels(signals, c.majorLevels)

	if c.store.PutSignals(snapshot, signals, major) {
		c.publishUpdate(snapshot.Symbol)
	}

	log.WithFields(log.Fields{
		"symbol":  snapshot.Symbol,
		"signals": len(signals),
	}).Debug("classified option chain")
}

func (c *OptionChainConsumer) publishUpdate(symbol string) {
	entry, found := c.store.Get(symbol)
	if !found {
		return
	}

	eventpubsub.Publish(eventpubsub.OptionAnalysisUpdated, &entry)
}
