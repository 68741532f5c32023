package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/sjkwon/bondfolio/app"
	"github.com/sjkwon/bondfolio/portfolio"
	"github.com/sjkwon/bondfolio/store"
)

func (s *session) render() {
	sel := s.app.Selection()
	fmt.Fprintf(s.out, "\n[%s] %s\n", s.fname, sel.Tab)

	if !s.app.Loaded() {
		fmt.Fprintln(s.out, "no data - 'open' a file, 'upload' a copy, or create one with 'new'")
		return
	}

	bonds, err := s.app.Bonds()
	if err != nil {
		fmt.Fprintln(s.out, app.Notify(err))
		return
	}

	switch sel.Tab {
	case app.TabList:
		s.renderList(bonds, sel.Filter)
	case app.TabInterest:
		s.renderInterest(bonds, sel.Year)
	case app.TabAnalytics:
		s.renderAnalytics(bonds, sel.Year)
	default:
		// The maturing stat always refers to the actual calendar year,
		// whatever year the interest grid has selected.
		s.renderDashboard(bonds, time.Now().Year())
	}
}

func (s *session) renderDashboard(bonds []store.Snapshot, year int) {
	sum := portfolio.Summarize(bonds, year)
	w := tabwriter.NewWriter(s.out, 2, 4, 2, ' ', 0)
	fmt.Fprintf(w, "active principal\t%s\n", comma(sum.ActivePrincipal))
	fmt.Fprintf(w, "active bonds\t%d\n", sum.ActiveCount)
	fmt.Fprintf(w, "maturing in %d\t%s (%d)\n", year, comma(sum.MaturingPrincipal), sum.MaturingCount)
	w.Flush()
}

func (s *session) renderList(bonds []store.Snapshot, filter portfolio.StatusFilter) {
	rows := portfolio.FilterStatus(bonds, filter)
	if len(rows) == 0 {
		fmt.Fprintln(s.out, "no bonds match")
		return
	}

	w := tabwriter.NewWriter(s.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "id\tname\taccount\tbuy\tmaturity\trate\tqty\tamount\tstatus\tnet profit")
	// Newest first, as the reference list view shows them.
	for i := len(rows) - 1; i >= 0; i-- {
		b := rows[i]
		p := portfolio.NetProfit(b)
		maturity := b.MaturityDate
		if maturity == "" {
			maturity = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%.2f%%\t%d\t%s\t%s\t%s (gain %s, interest %s)\n",
			b.ID, b.Name, b.Account, b.BuyDate, maturity, b.Rate,
			b.Quantity, comma(b.BuyAmount), b.Status,
			comma(p.Net), comma(p.CapitalGain), comma(p.Interest))
	}
	w.Flush()
}

func (s *session) renderInterest(bonds []store.Snapshot, year int) {
	years := portfolio.AvailableYears(bonds, time.Now().Year())
	fmt.Fprintf(s.out, "year %d (available: %v)\n", year, years)

	rows := portfolio.InterestMatrix(bonds, year)
	if len(rows) == 0 {
		fmt.Fprintln(s.out, "no bonds held in this year")
		return
	}

	w := tabwriter.NewWriter(s.out, 2, 4, 2, ' ', 0)
	fmt.Fprint(w, "name\ttotal")
	for m := 1; m <= 12; m++ {
		fmt.Fprintf(w, "\t%dm", m)
	}
	fmt.Fprintln(w)
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s", row.Bond.Name, comma(row.Total))
		for _, amount := range row.Months {
			fmt.Fprintf(w, "\t%s", comma(amount))
		}
		fmt.Fprintln(w)
	}
	w.Flush()
}

func (s *session) renderAnalytics(bonds []store.Snapshot, year int) {
	a := portfolio.Analyze(bonds, year)
	w := tabwriter.NewWriter(s.out, 2, 4, 2, ' ', 0)
	fmt.Fprintf(w, "lifetime principal\t%s\n", comma(a.LifetimePrincipal))
	fmt.Fprintf(w, "realized profit\t%s (interest %s, gain %s)\n",
		comma(a.Net), comma(a.TotalInterest), comma(a.CapitalGain))
	w.Flush()

	fmt.Fprintf(s.out, "monthly interest, %d:\n", year)
	w = tabwriter.NewWriter(s.out, 2, 4, 2, ' ', 0)
	for m := 1; m <= 12; m++ {
		fmt.Fprintf(w, "%dm\t%s\n", m, comma(a.Monthly[m-1]))
	}
	w.Flush()
}

// comma groups an amount by thousands: 1050000 -> "1,050,000". The
// magnitude goes through uint64 so the minimum int64 does not overflow.
func comma(v int64) string {
	sign := ""
	u := uint64(v)
	if v < 0 {
		sign = "-"
		u = -u
	}
	digits := strconv.FormatUint(u, 10)
	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, d)
	}
	return sign + string(out)
}
