// Package common provides the CSV export shared by the CLI and the HTTP API.
package common

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"fjacquet/finance-dashboard/internal/fileutils"
	"fjacquet/finance-dashboard/internal/logging"
	"fjacquet/finance-dashboard/internal/models"
)

// ExportRow is one exported transaction. Column order follows models.CanonicalFields
// with the store id appended.
type ExportRow struct {
	StartedDate   string `csv:"Started Date"`
	CompletedDate string `csv:"Completed Date"`
	Description   string `csv:"Description"`
	Amount        string `csv:"Amount"`
	Fee           string `csv:"Fee"`
	Balance       string `csv:"Balance"`
	Currency      string `csv:"Currency"`
	Type          string `csv:"Type"`
	Product       string `csv:"Product"`
	State         string `csv:"State"`
	ID            string `csv:"ID"`
}

// NewExportRow converts a transaction. Amounts keep their canonical decimal form.
func NewExportRow(tx models.Transaction) ExportRow {
	return ExportRow{
		StartedDate:   tx.StartedDate,
		CompletedDate: tx.CompletedDateString(),
		Description:   tx.Description,
		Amount:        tx.Amount.String(),
		Fee:           tx.Fee.String(),
		Balance:       tx.Balance.String(),
		Currency:      tx.Currency,
		Type:          tx.Type,
		Product:       tx.Product,
		State:         tx.State,
		ID:            tx.ID,
	}
}

// WriteTransactionsCSV writes txs with a header line. A zero delimiter means ','.
func WriteTransactionsCSV(w io.Writer, txs []models.Transaction, delimiter rune) error {
	if txs == nil {
		txs = []models.Transaction{}
	}
	rows := make([]ExportRow, len(txs))
	for i, tx := range txs {
		rows[i] = NewExportRow(tx)
	}

	csvWriter := csv.NewWriter(w)
	if delimiter != 0 {
		csvWriter.Comma = delimiter
	}
	out := gocsv.NewSafeCSVWriter(csvWriter)
	if err := gocsv.MarshalCSV(rows, out); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	out.Flush()
	if err := out.Error(); err != nil {
		return fmt.Errorf("error flushing CSV data: %w", err)
	}
	return nil
}

// WriteTransactionsToFile writes txs to csvFile, creating parent directories.
func WriteTransactionsToFile(csvFile string, txs []models.Transaction, delimiter rune, logger logging.Logger) error {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	logger.Info("Writing transactions to CSV file",
		logging.F(logging.FieldFile, csvFile),
		logging.F(logging.FieldCount, len(txs)))

	file, err := fileutils.CreateFile(csvFile)
	if err != nil {
		logger.WithError(err).Error("Failed to create CSV file")
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := WriteTransactionsCSV(file, txs, delimiter); err != nil {
		logger.WithError(err).Error("Failed to marshal transactions to CSV")
		return err
	}

	logger.Info("Successfully wrote transactions to CSV file",
		logging.F(logging.FieldFile, csvFile),
		logging.F(logging.FieldCount, len(txs)))
	return nil
}
