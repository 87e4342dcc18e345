// Package csvparser turns raw bank-export CSV text into ordered, header-keyed records.
// Rows whose field count does not match the header are skipped and logged; the
// rest of the file is still returned.
package csvparser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"fjacquet/finance-dashboard/internal/logging"
	"fjacquet/finance-dashboard/internal/models"
	"fjacquet/finance-dashboard/internal/parsererror"
)

const utf8BOM = "\ufeff"

// Stats describes what a parse pass kept and dropped.
type Stats struct {
	Header  []string
	Rows    int
	Skipped int
}

// Parser reads delimited text with quote-aware tokenization.
type Parser struct {
	logger    logging.Logger
	delimiter rune
}

// New creates a Parser. A zero delimiter means ','.
func New(logger logging.Logger, delimiter rune) *Parser {
	if delimiter == 0 {
		delimiter = ','
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Parser{logger: logger, delimiter: delimiter}
}

// ParseString parses CSV text held in memory.
func (p *Parser) ParseString(text string) ([]models.Record, error) {
	return p.Parse(strings.NewReader(text))
}

// Parse reads all records from r in input order.
func (p *Parser) Parse(r io.Reader) ([]models.Record, error) {
	records, _, err := p.ParseWithStats(r)
	return records, err
}

// ParseWithStats is Parse plus the count of skipped rows. Every record carries
// its source line under models.FieldLine.
//
// Input is split into lines before any quote handling, so a quoted field never
// spans lines and an unbalanced quote only costs the row it appears on.
func (p *Parser) ParseWithStats(r io.Reader) ([]models.Record, Stats, error) {
	var stats Stats

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read CSV: %w", err)
	}

	var (
		header    []string
		records   []models.Record
		dataLines int
	)
	for i, text := range splitLines(string(data)) {
		if strings.TrimSpace(text) == "" {
			continue
		}
		line := i + 1

		fields, err := p.tokenize(text)
		if header == nil {
			if err != nil {
				return nil, stats, fmt.Errorf("failed to read CSV header: %w", err)
			}
			header = cleanHeader(fields)
			stats.Header = header
			continue
		}

		dataLines++
		if err != nil {
			stats.Skipped++
			p.warnMalformed(&parsererror.MalformedRowError{
				Line:     line,
				Expected: len(header),
				Err:      err,
			})
			continue
		}
		if len(fields) != len(header) {
			stats.Skipped++
			p.warnMalformed(&parsererror.MalformedRowError{
				Line:     line,
				Expected: len(header),
				Actual:   len(fields),
			})
			continue
		}

		record := make(models.Record, len(header)+1)
		for j, name := range header {
			record[name] = fields[j]
		}
		record[models.FieldLine] = strconv.Itoa(line)
		records = append(records, record)
	}

	if header == nil {
		return nil, stats, &parsererror.EmptyInputError{}
	}
	if dataLines == 0 {
		return nil, stats, &parsererror.EmptyInputError{Lines: 1}
	}

	stats.Rows = len(records)
	p.logger.Debug("Parsed CSV input",
		logging.F(logging.FieldCount, stats.Rows),
		logging.F(logging.FieldSkipped, stats.Skipped))

	return records, stats, nil
}

// tokenize splits one line into fields: '"' wraps a field, '""' is an escaped
// quote and the delimiter is literal inside quotes.
func (p *Parser) tokenize(line string) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(line))
	reader.Comma = p.delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	fields, err := reader.Read()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, parseErr.Err
		}
		return nil, err
	}
	return fields, nil
}

func (p *Parser) warnMalformed(err *parsererror.MalformedRowError) {
	p.logger.WithError(err).Warn("Skipping malformed row",
		logging.F(logging.FieldLine, err.Line),
		logging.F(logging.FieldExpected, err.Expected),
		logging.F(logging.FieldActual, err.Actual))
}

// splitLines splits on LF, dropping the CR of CRLF endings.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func cleanHeader(fields []string) []string {
	header := make([]string, len(fields))
	for i, name := range fields {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		header[i] = strings.TrimSpace(name)
	}
	return header
}
