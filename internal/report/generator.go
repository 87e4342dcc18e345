// Package report renders transaction summaries as JSON, YAML or a terminal table.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"fjacquet/finance-dashboard/internal/aggregate"
	"fjacquet/finance-dashboard/internal/currencyutils"
	"fjacquet/finance-dashboard/internal/logging"
	"fjacquet/finance-dashboard/internal/models"
)

// Dimension is what a summary groups on.
type Dimension string

// Summary dimensions.
const (
	ByMerchant Dimension = "merchant"
	ByCategory Dimension = "category"
	ByMonth    Dimension = "month"
	ByCurrency Dimension = "currency"
)

var dimensions = map[string]Dimension{
	"merchant": ByMerchant, "merchants": ByMerchant,
	"category": ByCategory, "categories": ByCategory,
	"month": ByMonth, "months": ByMonth,
	"currency": ByCurrency, "currencies": ByCurrency,
}

// ParseDimension accepts singular and plural names, case-insensitively.
func ParseDimension(s string) (Dimension, error) {
	if d, ok := dimensions[strings.ToLower(strings.TrimSpace(s))]; ok {
		return d, nil
	}
	return "", fmt.Errorf("unknown summary dimension %q (use merchant, category, month or currency)", s)
}

// KeyFunc returns the grouping key of the dimension.
func (d Dimension) KeyFunc() aggregate.KeyFunc {
	switch d {
	case ByCategory:
		return aggregate.ByProduct
	case ByMonth:
		return aggregate.ByMonth
	case ByCurrency:
		return aggregate.ByCurrency
	default:
		return aggregate.ByDescription
	}
}

// Summary is a grouped view of a filtered transaction set.
type Summary struct {
	By       Dimension           `json:"by" yaml:"by"`
	Absolute bool                `json:"absolute" yaml:"absolute"`
	Stats    aggregate.Stats     `json:"stats" yaml:"stats"`
	Buckets  []*aggregate.Bucket `json:"buckets" yaml:"buckets"`
}

// Build groups txs. Months are listed chronologically; other dimensions by
// descending total, or descending absolute total when absolute is set.
func Build(txs []*models.Transaction, by Dimension, absolute, members bool) Summary {
	g := aggregate.GroupPointers(txs, by.KeyFunc())

	var buckets []*aggregate.Bucket
	switch {
	case by == ByMonth:
		buckets = g.Buckets()
		sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].Name < buckets[j].Name })
	case absolute:
		buckets = g.SortedByAbsolute()
	default:
		buckets = g.Sorted()
	}
	if !members {
		buckets = aggregate.WithoutMembers(buckets)
	}

	return Summary{
		By:       by,
		Absolute: absolute,
		Stats:    aggregate.StatisticsOf(txs),
		Buckets:  buckets,
	}
}

// Generator renders summaries.
type Generator struct {
	logger logging.Logger
}

// NewGenerator creates a Generator. A nil logger discards output.
func NewGenerator(logger logging.Logger) *Generator {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Generator{logger: logger.WithField(logging.FieldComponent, "ReportGenerator")}
}

// Generate renders s as json or yaml.
func (g *Generator) Generate(s Summary, format string) ([]byte, error) {
	switch format {
	case "json":
		return g.generateJSON(s)
	case "yaml":
		return g.generateYAML(s)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

func (g *Generator) generateJSON(s Summary) ([]byte, error) {
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return out, nil
}

func (g *Generator) generateYAML(s Summary) ([]byte, error) {
	out, err := yaml.Marshal(s)
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal YAML report")
		return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
	}
	return out, nil
}

const nameWidth = 40

// WriteTable prints one line per bucket followed by a total line. With
// colorize, negative amounts are red and positive ones green. Currency
// buckets show their amounts with the currency symbol.
func (g *Generator) WriteTable(w io.Writer, s Summary, colorize bool) error {
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	bold := color.New(color.Bold)
	if colorize {
		red.EnableColor()
		green.EnableColor()
		bold.EnableColor()
	} else {
		red.DisableColor()
		green.DisableColor()
		bold.DisableColor()
	}

	amount := func(v decimal.Decimal, currency string) string {
		text := v.String()
		if currency != "" {
			text = currencyutils.FormatAmount(v, currency)
		}
		cell := fmt.Sprintf("%14s", text)
		switch {
		case v.IsNegative():
			return red.Sprint(cell)
		case v.IsPositive():
			return green.Sprint(cell)
		}
		return cell
	}

	header := fmt.Sprintf("%-*s %6s %14s %14s", nameWidth, strings.ToUpper(string(s.By)), "COUNT", "TOTAL", "AVERAGE")
	if _, err := fmt.Fprintln(w, bold.Sprint(header)); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}

	for _, b := range s.Buckets {
		total, avg := b.TotalAmount, b.AverageAmount
		if s.Absolute {
			total, avg = b.TotalAbsoluteAmount, b.AverageAbsoluteAmount
		}
		currency := ""
		if s.By == ByCurrency && b.Name != models.UnknownLabel {
			currency = b.Name
		}
		line := fmt.Sprintf("%-*s %6d %s %s", nameWidth, truncate(b.Name, nameWidth), b.Count,
			amount(total, currency), amount(avg, currency))
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write table: %w", err)
		}
	}

	footer := fmt.Sprintf("%-*s %6d %s %s", nameWidth, "TOTAL", s.Stats.Count,
		amount(s.Stats.TotalAmount, ""), amount(s.Stats.AverageAmount, ""))
	if _, err := fmt.Fprintln(w, footer); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}

	g.logger.Debug("Wrote summary table", logging.F(logging.FieldCount, len(s.Buckets)))
	return nil
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	r := []rune(s)
	return string(r[:width-1]) + "…"
}
