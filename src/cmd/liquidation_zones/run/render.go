package run

import (
	"fmt"
	"strings"

	"github.com/jiaming2012/trade-analyst/src/eventmodels"
	"github.com/jiaming2012/trade-analyst/src/liquidation"
	"github.com/jiaming2012/trade-analyst/src/utils"
)

var sideHeaders = []string{"Strike", "Expiry", "Signal", "Action", "OI", "Chg OI", "Buy Qty", "Sell Qty"}

var conflictHeaders = []string{"Strike", "Expiry", "Signal", "Action", "CE OI", "CE Chg OI", "PE OI", "PE Chg OI"}

func sideRows(records []eventmodels.SignalRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			utils.FormatNumber(r.Strike, 0),
			r.ExpiryDate.ExpiryString(),
			r.Signal,
			r.Action,
			utils.FormatNumber(r.OI, 0),
			utils.FormatNumber(r.ChangeInOI, 0),
			utils.FormatNumber(r.Buy, 0),
			utils.FormatNumber(r.Sell, 0),
		})
	}

	return rows
}

func conflictRows(records []eventmodels.SignalRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			utils.FormatNumber(r.Strike, 0),
			r.ExpiryDate.ExpiryString(),
			r.Signal,
			r.Action,
			utils.FormatNumber(r.CallOI, 0),
			utils.FormatNumber(r.CallOIChange, 0),
			utils.FormatNumber(r.PutOI, 0),
			utils.FormatNumber(r.PutOIChange, 0),
		})
	}

	return rows
}

// RenderSignals prints one table per signal type. A lone NONE record is
// printed as its message.
func RenderSignals(symbol string, records []eventmodels.SignalRecord) string {
	display := &strings.Builder{}
	display.WriteString(fmt.Sprintf("Liquidation zones for %s\n", symbol))

	if len(records) == 0 {
		display.WriteString("(empty chain)\n")
		return display.String()
	}

	groups := liquidation.GroupByType(records)
	if none, found := groups[eventmodels.LiquidationSignalNone]; found && len(groups) == 1 {
		display.WriteString(fmt.Sprintf("%s: %s\n", none[0].Signal, none[0].Action))
		return display.String()
	}

	display.WriteString("\n")
	display.WriteString(utils.RenderTable("CE Signals", sideHeaders, sideRows(groups[eventmodels.LiquidationSignalCE])))
	display.WriteString("\n")
	display.WriteString(utils.RenderTable("PE Signals", sideHeaders, sideRows(groups[eventmodels.LiquidationSignalPE])))
	display.WriteString("\n")
	display.WriteString(utils.RenderTable("Conflict Zones", conflictHeaders, conflictRows(groups[eventmodels.LiquidationSignalConflict])))

	return display.String()
}

func RenderMajorLevels(records []eventmodels.SignalRecord) string {
	return utils.RenderTable("Major Levels", sideHeaders, sideRows(records))
}
