package run

import (
	"fmt"
	"strings"

	"github.com/jiaming2012/trade-analyst/src/eventmodels"
	"github.com/jiaming2012/trade-analyst/src/eventservices"
	"github.com/jiaming2012/trade-analyst/src/sector"
	"github.com/jiaming2012/trade-analyst/src/utils"
)

var sectorHeaders = []string{"Symbol", "LTP", "Prev Close", "%Chg", "Volume", "OI", "R-Score", "Z Vol", "Z Turnover", "Z Return", "Signal"}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}

	return utils.FormatNumber(*v, 2)
}

func sectorRows(rows []eventmodels.SectorRow) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Symbol,
			utils.FormatNumber(r.LastPrice, 2),
			utils.FormatNumber(r.PrevClose, 2),
			utils.FormatNumber(r.PercentChange, 2),
			utils.FormatNumber(r.Volume, 0),
			utils.FormatNumber(r.OI, 0),
			optional(r.RScore),
			optional(r.ZVolume),
			optional(r.ZTurnover),
			optional(r.ZReturn),
			r.RSignal,
		})
	}

	return out
}

func renderBreadth(b sector.BreadthStats) string {
	return fmt.Sprintf("Advancing: %d (%s%%)  Declining: %d (%s%%)  Unchanged: %d  Avg Gain: %s%%  Avg Loss: %s%%\n",
		b.Advancing, utils.FormatNumber(b.AdvancingPercent, 2),
		b.Declining, utils.FormatNumber(b.DecliningPercent, 2),
		b.Unchanged,
		utils.FormatNumber(b.AverageGain, 2), utils.FormatNumber(b.AverageLoss, 2))
}

func renderErrors(errs []*eventmodels.UpstreamFetchError) string {
	if len(errs) == 0 {
		return ""
	}

	display := &strings.Builder{}
	display.WriteString(fmt.Sprintf("Skipped %d instrument(s):\n", len(errs)))
	for _, err := range errs {
		display.WriteString(fmt.Sprintf("  %s (%d): %v\n", err.Symbol, err.InstrumentToken, err.Err))
	}

	return display.String()
}

func RenderSector(result *eventservices.SectorResult) string {
	display := &strings.Builder{}
	display.WriteString(utils.RenderTable(result.Sector, sectorHeaders, sectorRows(result.Rows)))
	display.WriteString(renderBreadth(result.Breadth))

	h := result.Highlights
	display.WriteString("\n")
	display.WriteString(utils.RenderTable("Top Gainers", sectorHeaders, sectorRows(h.TopGainers)))
	display.WriteString(utils.RenderTable("Top Losers", sectorHeaders, sectorRows(h.TopLosers)))
	display.WriteString(utils.RenderTable("Volume Leaders", sectorHeaders, sectorRows(h.VolumeLeaders)))
	display.WriteString(utils.RenderTable("R-Score Leaders", sectorHeaders, sectorRows(h.RScoreLeaders)))
	display.WriteString(renderErrors(result.Errors))

	return display.String()
}

func RenderIndexPerformance(result *eventservices.IndexPerformanceResult) string {
	rows := make([][]string, 0, len(result.Indices))
	for _, p := range result.Indices {
		rows = append(rows, []string{
			p.Name,
			utils.FormatNumber(p.LastPrice, 2),
			utils.FormatNumber(p.PrevClose, 2),
			utils.FormatNumber(p.PercentChange, 2),
		})
	}

	display := &strings.Builder{}
	display.WriteString(utils.RenderTable("Sectorial Indices", []string{"Index", "LTP", "Prev Close", "%Chg"}, rows))
	display.WriteString(renderBreadth(result.Breadth))
	display.WriteString(renderErrors(result.Errors))

	return display.String()
}

func RenderMarketOverview(result *eventservices.MarketOverviewResult) string {
	rows := make([][]string, 0, len(result.Indices))
	for _, q := range result.Indices {
		rows = append(rows, []string{
			q.Name,
			utils.FormatNumber(q.LastPrice, 2),
			utils.FormatNumber(q.Open, 2),
			utils.FormatNumber(q.ChangeFromOpen, 2),
		})
	}

	display := &strings.Builder{}
	display.WriteString(utils.RenderTable("Market Overview", []string{"Index", "LTP", "Open", "%Chg From Open"}, rows))
	display.WriteString(renderErrors(result.Errors))

	return display.String()
}
