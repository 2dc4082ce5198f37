// Package export writes ledger transactions out as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/TalShar783/Taskmaster/internal/logging"
	"github.com/TalShar783/Taskmaster/internal/models"

	"github.com/gocarina/gocsv"
)

// DefaultDelimiter is the CSV field separator used when none is configured.
const DefaultDelimiter = ','

// Writer writes transaction records as CSV with a fixed column order:
// Date, Actor, Label, Amount, Notes.
type Writer struct {
	Delimiter rune
	log       logging.Logger
}

// NewWriter returns a Writer using delimiter, or a comma when delimiter is 0.
func NewWriter(delimiter rune, logger logging.Logger) *Writer {
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Writer{Delimiter: delimiter, log: logger}
}

// Write encodes records to w.
func (w *Writer) Write(out io.Writer, records []models.TransactionRecord) error {
	if records == nil {
		records = []models.TransactionRecord{}
	}
	csvWriter := csv.NewWriter(out)
	csvWriter.Comma = w.Delimiter
	if err := gocsv.MarshalCSV(records, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV: %w", err)
	}
	return nil
}

// WriteFile writes records to path, creating parent directories as needed.
func (w *Writer) WriteFile(path string, records []models.TransactionRecord) error {
	log := w.log.WithFields(logging.F(logging.FieldOutputFile, path), logging.F(logging.FieldCount, len(records)))
	log.Info("Writing transactions to CSV file")

	if err := os.MkdirAll(filepath.Dir(path), models.PermissionDirectory); err != nil {
		log.WithError(err).Error("Failed to create directory")
		return fmt.Errorf("error creating directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		log.WithError(err).Error("Failed to create CSV file")
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := w.Write(file, records); err != nil {
		log.WithError(err).Error("Failed to write CSV data")
		return err
	}
	log.Info("Successfully wrote transactions to CSV file")
	return nil
}
