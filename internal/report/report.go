package report

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"
	_ "time/tzdata"

	"emacross/internal/model"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Point is one value of the cumulative profit curve, keyed by exit time.
type Point struct {
	Time  time.Time
	Value float64
}

// Summary aggregates a trade list.
type Summary struct {
	TotalTrades int
	Wins        int
	Losses      int
	TotalProfit float64
	Cumulative  []Point
}

// Summarize totals the trades in exit order. Sums are kept in decimal so the
// rounded per-trade profits add up exactly.
func Summarize(trades []model.Trade) Summary {
	s := Summary{
		TotalTrades: len(trades),
		Cumulative:  make([]Point, 0, len(trades)),
	}

	total := decimal.Zero
	for _, t := range trades {
		p := decimal.NewFromFloat(t.Profit)
		switch p.Sign() {
		case 1:
			s.Wins++
		case -1:
			s.Losses++
		}
		total = total.Add(p)
		s.Cumulative = append(s.Cumulative, Point{Time: t.ExitTime, Value: total.Round(2).InexactFloat64()})
	}
	s.TotalProfit = total.Round(2).InexactFloat64()
	return s
}

// Options controls how a report is rendered.
type Options struct {
	Location *time.Location
	Currency string
	Tag      language.Tag
}

// LoadLocation resolves a display timezone name. An empty name means UTC.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

func (o Options) printer() *message.Printer {
	if o.Tag == language.Und {
		return message.NewPrinter(language.English)
	}
	return message.NewPrinter(o.Tag)
}

// Render writes the trade table followed by the totals.
// An empty trade list renders the no-trades message instead of a table.
func Render(w io.Writer, trades []model.Trade, opts Options) error {
	p := opts.printer()
	loc := opts.location()

	if len(trades) == 0 {
		_, err := fmt.Fprintln(w, "No trades executed based on the EMA crossover strategy.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tEntry Time\tExit Time\tEntry Price\tExit Price\tProfit\tExit\t")
	for i, t := range trades {
		p.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%.2f\t%.2f\t%s\t\n",
			i+1,
			t.EntryTime.In(loc).Format("2006-01-02 15:04"),
			t.ExitTime.In(loc).Format("2006-01-02 15:04"),
			t.EntryPrice,
			t.ExitPrice,
			t.Profit,
			t.Reason,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := Summarize(trades)
	_, err := p.Fprintf(w, "\nTotal Trades: %d (%d won, %d lost)\nTotal Profit: %s%.2f\n",
		s.TotalTrades, s.Wins, s.Losses, opts.Currency, s.TotalProfit)
	return err
}

// RenderCumulative writes the cumulative profit series, one exit per line.
func RenderCumulative(w io.Writer, trades []model.Trade, opts Options) error {
	loc := opts.location()
	p := opts.printer()
	for _, pt := range Summarize(trades).Cumulative {
		if _, err := p.Fprintf(w, "%s\t%s%.2f\n", pt.Time.In(loc).Format(time.RFC3339), opts.Currency, pt.Value); err != nil {
			return err
		}
	}
	return nil
}
