package analystapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jiaming2012/trade-analyst/src/data"
	"github.com/jiaming2012/trade-analyst/src/eventmodels"
	"github.com/jiaming2012/trade-analyst/src/eventproducers"
	"github.com/jiaming2012/trade-analyst/src/eventservices"
	"github.com/jiaming2012/trade-analyst/src/liquidation"
	"github.com/jiaming2012/trade-analyst/src/optionchain"
)

type SectorBuilder interface {
	Build(ctx context.Context, sector string) (*eventservices.SectorResult, error)
	IndexPerformance(ctx context.Context) (*eventservices.IndexPerformanceResult, error)
	MarketOverview(ctx context.Context) (*eventservices.MarketOverviewResult, error)
	SectorNames() []string
}

type Handler struct {
	store       *data.AnalysisStore
	sectors     SectorBuilder
	stream      *Stream
	analysis    optionchain.Config
	thresholds  liquidation.Thresholds
	majorLevels int
}

func NewHandler(store *data.AnalysisStore, sectors SectorBuilder, stream *Stream, analysis optionchain.Config, thresholds liquidation.Thresholds, majorLevels int) *Handler {
	return &Handler{
		store:       store,
		sectors:     sectors,
		stream:      stream,
		analysis:    analysis,
		thresholds:  thresholds,
		majorLevels: majorLevels,
	}
}

// SetupRoutes registers every route, tagging each with its pattern as the
// http.route of the HTTP instrumentation.
func (h *Handler) SetupRoutes(router *mux.Router) {
	handleFunc := func(pattern string, handlerFunc func(http.ResponseWriter, *http.Request)) {
		router.Handle(pattern, otelhttp.WithRouteTag(pattern, http.HandlerFunc(handlerFunc))).Methods(http.MethodGet)
	}

	handleFunc("/api/v1/options", h.listOptions)
	handleFunc("/api/v1/options/{symbol}/analysis", h.getAnalysis)
	handleFunc("/api/v1/options/{symbol}/liquidation", h.getLiquidation)
	handleFunc("/api/v1/sectors", h.listSectors)
	handleFunc("/api/v1/sectors/{sector}", h.getSector)
	handleFunc("/api/v1/market/overview", h.getMarketOverview)

	if h.stream != nil {
		handleFunc("/ws", h.stream.ServeHTTP)
	}
}

type ListOptionsResponse struct {
	Symbols []string `json:"symbols"`
}

func (h *Handler) listOptions(w http.ResponseWriter, r *http.Request) {
	respond(w, &ListOptionsResponse{Symbols: h.store.Symbols()})
}

type AnalysisResponse struct {
	Symbol     string                `json:"symbol"`
	SnapshotID uuid.UUID             `json:"snapshot_id"`
	FetchedAt  time.Time             `json:"fetched_at"`
	Analysis   *optionchain.Analysis `json:"analysis"`
}

func (h *Handler) getAnalysis(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	var query AnalysisQuery
	if err := decodeQuery(&query, r); err != nil {
		respondError(w, "validation", http.StatusBadRequest, err)
		return
	}

	cfg, err := query.Apply(h.analysis)
	if err != nil {
		respondError(w, "validation", http.StatusBadRequest, err)
		return
	}

	entry, found := h.store.Get(symbol)
	if !found || entry.Snapshot == nil {
		respondError(w, "not_found", http.StatusNotFound, fmt.Errorf("no option chain for %s yet", symbol))
		return
	}

	// stored results are reused unless the request changes the config
	if query.IsEmpty() && entry.AnalysisError == "" && entry.Analysis != nil {
		respond(w, &AnalysisResponse{
			Symbol:     symbol,
			SnapshotID: entry.AnalysisID,
			FetchedAt:  entry.AnalysisAt,
			Analysis:   entry.Analysis,
		})
		return
	}

	analysis, err := optionchain.Analyze(entry.Snapshot, cfg)
	if err != nil {
		var dataErr *eventmodels.DataError
		if errors.As(err, &dataErr) {
			respondError(w, "data_error", http.StatusUnprocessableEntity, err)
			return
		}

		respondError(w, "analysis", http.StatusInternalServerError, err)
		return
	}

	respond(w, &AnalysisResponse{
		Symbol:     symbol,
		SnapshotID: entry.Snapshot.ID,
		FetchedAt:  entry.Snapshot.FetchedAt,
		Analysis:   analysis,
	})
}

type LiquidationResponse struct {
	Symbol      string                     `json:"symbol"`
	SnapshotID  uuid.UUID                  `json:"snapshot_id"`
	FetchedAt   time.Time                  `json:"fetched_at"`
	Signals     []eventmodels.SignalRecord `json:"signals"`
	MajorLevels []eventmodels.SignalRecord `json:"major_levels"`
}

func (h *Handler) getLiquidation(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	var query LiquidationQuery
	if err := decodeQuery(&query, r); err != nil {
		respondError(w, "validation", http.StatusBadRequest, err)
		return
	}

	thresholds, majorLevels, err := query.Apply(h.thresholds, h.majorLevels)
	if err != nil {
		respondError(w, "validation", http.StatusBadRequest, err)
		return
	}

	entry, found := h.store.Get(symbol)
	if !found || entry.Snapshot == nil {
		respondError(w, "not_found", http.StatusNotFound, fmt.Errorf("no option chain for %s yet", symbol))
		return
	}

	if query.IsEmpty() && entry.Signals != nil {
		respond(w, &LiquidationResponse{
			Symbol:      symbol,
			SnapshotID:  entry.SignalsID,
			FetchedAt:   entry.SignalsAt,
			Signals:     entry.Signals,
			MajorLevels: nonNil(entry.MajorLevels),
		})
		return
	}

	signals := liquidation.Classify(entry.Snapshot, thresholds)

	respond(w, &LiquidationResponse{
		Symbol:      symbol,
		SnapshotID:  entry.Snapshot.ID,
		FetchedAt:   entry.Snapshot.FetchedAt,
		Signals:     signals,
		MajorLevels: nonNil(liquidation.MajorLevels(signals, majorLevels)),
	})
}

type ListSectorsResponse struct {
	Sectors []string `json:"sectors"`
	*eventservices.IndexPerformanceResult
}

func (h *Handler) listSectors(w http.ResponseWriter, r *http.Request) {
	resp := &ListSectorsResponse{Sectors: h.sectors.SectorNames()}

	perf, err := h.sectors.IndexPerformance(r.Context())
	if err != nil {
		log.WithContext(r.Context()).Warnf("listSectors: %v", err)
	} else {
		resp.IndexPerformanceResult = perf
	}

	respond(w, resp)
}

func (h *Handler) getSector(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["sector"]

	var query SectorQuery
	if err := decodeQuery(&query, r); err != nil {
		respondError(w, "validation", http.StatusBadRequest, err)
		return
	}

	result, err := h.sectors.Build(r.Context(), name)
	if err != nil {
		if errors.Is(err, eventmodels.UnknownSectorErr) {
			respondError(w, "not_found", http.StatusNotFound, err)
			return
		}

		respondError(w, "sector", http.StatusInternalServerError, err)
		return
	}

	if query.DropUnscored {
		kept := make([]eventmodels.SectorRow, 0, len(result.Rows))
		for _, row := range result.Rows {
			if row.IsScored() {
				kept = append(kept, row)
			}
		}

		result.Rows = kept
	}

	respond(w, result)
}

func (h *Handler) getMarketOverview(w http.ResponseWriter, r *http.Request) {
	result, err := h.sectors.MarketOverview(r.Context())
	if err != nil {
		respondError(w, "upstream", http.StatusBadGateway, err)
		return
	}

	respond(w, result)
}

func nonNil(records []eventmodels.SignalRecord) []eventmodels.SignalRecord {
	if records == nil {
		return []eventmodels.SignalRecord{}
	}

	return records
}

func respond[T any](w http.ResponseWriter, obj *T) {
	if err := eventproducers.SetResponse(obj, w); err != nil {
		log.Errorf("analystapi: failed to set response: %v", err)
	}
}

func respondError(w http.ResponseWriter, errType string, statusCode int, err error) {
	if respErr := eventproducers.SetErrorResponse(errType, statusCode, err, w); respErr != nil {
		log.Errorf("analystapi: failed to set error response: %v", respErr)
	}
}
