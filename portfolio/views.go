// Package portfolio derives the read-only view models shown on each tab.
// Every function is a pure computation over the store's current rows plus
// the caller's selection state; nothing here holds state of its own.
package portfolio

import (
	"sort"
	"strconv"

	"github.com/sjkwon/bondfolio/store"
)

// StatusFilter narrows the list view.
type StatusFilter string

const (
	FilterAll       StatusFilter = "all"
	FilterActive    StatusFilter = "active"
	FilterCompleted StatusFilter = "completed"
)

// openMaturityYear is the sentinel for bonds with no maturity date.
const openMaturityYear = 9999

// Summary backs the dashboard tab: active holdings plus what matures in
// the given year.
type Summary struct {
	ActivePrincipal   int64
	ActiveCount       int
	MaturingPrincipal int64
	MaturingCount     int
}

// Summarize computes dashboard totals over active bonds only.
func Summarize(bonds []store.Snapshot, year int) Summary {
	var sum Summary
	for _, b := range bonds {
		if b.Status != store.StatusActive {
			continue
		}
		sum.ActivePrincipal += b.BuyAmount
		sum.ActiveCount++
		if b.MaturityDate != "" && yearOf(b.MaturityDate) == year {
			sum.MaturingPrincipal += b.BuyAmount
			sum.MaturingCount++
		}
	}
	return sum
}

// Profit is the per-bond realized result: every recorded interest payment
// plus the capital gain once the bond has completed.
type Profit struct {
	Interest    int64
	CapitalGain int64
	Net         int64
}

// NetProfit sums all interest received across all years plus the capital
// gain. A completed bond with redemption 0 falls back to its principal,
// so its gain is 0 rather than a total loss.
func NetProfit(b store.Snapshot) Profit {
	var p Profit
	for _, months := range b.Interests {
		for _, amount := range months {
			p.Interest += amount
		}
	}
	if b.Status == store.StatusCompleted {
		redemption := b.RedemptionAmount
		if redemption == 0 {
			redemption = b.BuyAmount
		}
		p.CapitalGain = redemption - b.BuyAmount
	}
	p.Net = p.Interest + p.CapitalGain
	return p
}

// FilterStatus returns the bonds matching the list filter, preserving
// order.
func FilterStatus(bonds []store.Snapshot, f StatusFilter) []store.Snapshot {
	if f == FilterAll || f == "" {
		return bonds
	}
	var out []store.Snapshot
	for _, b := range bonds {
		if StatusFilter(b.Status) == f {
			out = append(out, b)
		}
	}
	return out
}

// MatrixRow is one line of the interest-entry grid: a bond's twelve
// monthly cells for the selected year plus the row total.
type MatrixRow struct {
	Bond   store.Bond
	Months [12]int64
	Total  int64
}

// InterestMatrix builds the grid for one year, restricted to bonds held
// during that year (purchase year <= year <= maturity year; an open-ended
// maturity always passes).
func InterestMatrix(bonds []store.Snapshot, year int) []MatrixRow {
	var out []MatrixRow
	for _, b := range bonds {
		if !heldIn(b.Bond, year) {
			continue
		}
		row := MatrixRow{Bond: b.Bond}
		for month, amount := range b.Interests[year] {
			if month < 1 || month > 12 {
				continue
			}
			row.Months[month-1] = amount
			row.Total += amount
		}
		out = append(out, row)
	}
	return out
}

// MonthlySeries sums interest across all bonds per calendar month of the
// selected year.
func MonthlySeries(bonds []store.Snapshot, year int) [12]int64 {
	var series [12]int64
	for _, b := range bonds {
		for month, amount := range b.Interests[year] {
			if month < 1 || month > 12 {
				continue
			}
			series[month-1] += amount
		}
	}
	return series
}

// Analytics backs the statistics tab. Lifetime totals span every bond
// regardless of status or filter.
type Analytics struct {
	LifetimePrincipal int64
	TotalInterest     int64
	CapitalGain       int64
	Net               int64
	Monthly           [12]int64
}

// Analyze computes lifetime totals plus the monthly series for one year.
func Analyze(bonds []store.Snapshot, year int) Analytics {
	a := Analytics{Monthly: MonthlySeries(bonds, year)}
	for _, b := range bonds {
		a.LifetimePrincipal += b.BuyAmount
		p := NetProfit(b)
		a.TotalInterest += p.Interest
		a.CapitalGain += p.CapitalGain
	}
	a.Net = a.TotalInterest + a.CapitalGain
	return a
}

// AvailableYears is the set of years worth offering in a year selector:
// the current year and the next, every purchase and maturity year, and
// every year that already has interest recorded. Deduplicated, clamped to
// a sane range, ascending.
func AvailableYears(bonds []store.Snapshot, currentYear int) []int {
	years := map[int]bool{
		currentYear:     true,
		currentYear + 1: true,
	}
	for _, b := range bonds {
		if b.BuyDate != "" {
			years[yearOf(b.BuyDate)] = true
		}
		if b.MaturityDate != "" {
			if y := yearOf(b.MaturityDate); y != openMaturityYear {
				years[y] = true
			}
		}
		for y := range b.Interests {
			years[y] = true
		}
	}

	var out []int
	for y := range years {
		if y > 1900 && y < 2100 {
			out = append(out, y)
		}
	}
	sort.Ints(out)
	return out
}

func heldIn(b store.Bond, year int) bool {
	if b.BuyDate == "" {
		return false
	}
	maturity := openMaturityYear
	if b.MaturityDate != "" {
		maturity = yearOf(b.MaturityDate)
	}
	return yearOf(b.BuyDate) <= year && maturity >= year
}

// yearOf reads the leading YYYY of a date string; 0 when unparsable.
func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}
