package export

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/propscan/propscan-cli/internal/model"
)

// RenderTop prints the first n listings as a console table. The caller
// ranks the slice first.
func RenderTop(w io.Writer, listings []*model.Listing, n int) {
	if n > len(listings) {
		n = len(listings)
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Address", "Price", "CV", "Gap %", "Score", "Method"})

	for i, l := range listings[:n] {
		cv, gap := "-", "-"
		if v := l.Valuation; v != nil {
			if s := intField(v.CapitalValue); s != "" {
				cv = "$" + s
			}
			if v.GapPercent != nil {
				gap = fmt.Sprintf("%.1f", *v.GapPercent)
			}
		}
		price := l.PriceDisplay
		if !l.HasExplicitPrice() {
			price = l.EstimatedRange()
		}
		t.AppendRow(table.Row{i + 1, l.Address, price, cv, gap, l.OpportunityScore, l.SaleMethod})
	}
	t.Render()
}
