package run

import (
	"fmt"
	"strings"

	"github.com/jiaming2012/trade-analyst/src/optionchain"
	"github.com/jiaming2012/trade-analyst/src/utils"
)

// TableOrder is the print order of the analysis sub tables.
var TableOrder = []string{
	optionchain.FilteredDataTable,
	optionchain.TopPutOIChangeOverallTable,
	optionchain.TopCallOIChangeOverallTable,
	optionchain.TopIVSkewOverallTable,
	optionchain.TopPutOIChangeLatestTable,
	optionchain.TopCallOIChangeLatestTable,
	optionchain.TopIVSkewLatestTable,
	optionchain.LiquidCallsTable,
	optionchain.LiquidPutsTable,
}

var strikeHeaders = []string{
	"Strike", "Expiry",
	"CE OI", "CE Chg OI", "CE %Chg OI", "CE IV", "CE LTP", "CE Spread",
	"PE OI", "PE Chg OI", "PE %Chg OI", "PE IV", "PE LTP", "PE Spread",
	"IV Skew",
}

func strikeRow(s optionchain.AnalyzedStrike) []string {
	return []string{
		utils.FormatNumber(s.StrikePrice, 0),
		s.ExpiryDate.ExpiryString(),
		utils.FormatNumber(s.Call.OpenInterest, 0),
		utils.FormatNumber(s.Call.ChangeInOpenInterest, 0),
		utils.FormatNumber(s.CallOIChangePercent, 2),
		utils.FormatNumber(s.Call.ImpliedVolatility, 2),
		utils.FormatNumber(s.Call.LastPrice, 2),
		utils.FormatNumber(s.CallSpread, 2),
		utils.FormatNumber(s.Put.OpenInterest, 0),
		utils.FormatNumber(s.Put.ChangeInOpenInterest, 0),
		utils.FormatNumber(s.PutOIChangePercent, 2),
		utils.FormatNumber(s.Put.ImpliedVolatility, 2),
		utils.FormatNumber(s.Put.LastPrice, 2),
		utils.FormatNumber(s.PutSpread, 2),
		utils.FormatNumber(s.IVSkew, 2),
	}
}

func RenderSummary(a *optionchain.Analysis) string {
	display := &strings.Builder{}
	display.WriteString(fmt.Sprintf("Symbol: %s\n", a.Symbol))
	display.WriteString(fmt.Sprintf("Underlying: %s\n", utils.FormatNumber(a.Underlying, 2)))

	if !a.LatestExpiry.IsZero() {
		display.WriteString(fmt.Sprintf("Latest expiry: %s\n", a.LatestExpiry.ExpiryString()))
	}

	display.WriteString(fmt.Sprintf("Support (overall): %s\n", utils.FormatNumber(a.Overall.Levels.Support, 0)))
	display.WriteString(fmt.Sprintf("Resistance (overall): %s\n", utils.FormatNumber(a.Overall.Levels.Resistance, 0)))
	display.WriteString(fmt.Sprintf("Support (latest): %s\n", utils.FormatNumber(a.Latest.Levels.Support, 0)))
	display.WriteString(fmt.Sprintf("Resistance (latest): %s\n", utils.FormatNumber(a.Latest.Levels.Resistance, 0)))
	sentiment := a.PCR.Sentiment()
	display.WriteString(fmt.Sprintf("PCR: %s (%s)\n", a.PCR, sentiment.Bias))
	if sentiment.PossibleReversal {
		display.WriteString("PCR is extreme, watch for a reversal\n")
	}

	return display.String()
}

// RenderAnalysis prints the summary followed by every sub table in
// TableOrder.
func RenderAnalysis(a *optionchain.Analysis) string {
	display := &strings.Builder{}
	display.WriteString(RenderSummary(a))

	tables := a.Tables()
	for _, name := range TableOrder {
		rows := make([][]string, 0, len(tables[name]))
		for _, s := range tables[name] {
			rows = append(rows, strikeRow(s))
		}

		display.WriteString("\n")
		display.WriteString(utils.RenderTable(name, strikeHeaders, rows))
	}

	return display.String()
}
