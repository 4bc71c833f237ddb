// Package scanimport loads product scans from YAML or JSON documents into the
// scan store.
package scanimport

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/edctrack/exposure/internal/datastore"
	"github.com/edctrack/exposure/internal/errors"
	"github.com/edctrack/exposure/internal/exposure"
	"github.com/edctrack/exposure/internal/logger"
	"gopkg.in/yaml.v3"
)

// ScanWriter stores a batch of scans atomically.
type ScanWriter interface {
	SaveScans(ctx context.Context, scans []datastore.ProductScan) error
}

// document is the on-disk layout. JSON input decodes through the same
// structure since JSON is valid YAML.
type document struct {
	Scans []scanRecord `yaml:"scans"`
}

type scanRecord struct {
	UserID           string                      `yaml:"user_id"`
	ProductName      string                      `yaml:"product_name"`
	Category         string                      `yaml:"category"`
	OverallScore     *float64                    `yaml:"overall_score"`
	RiskLevel        string                      `yaml:"risk_level"`
	FlaggedChemicals []datastore.FlaggedChemical `yaml:"flagged_chemicals"`
	ScannedAt        string                      `yaml:"scanned_at"`
}

// Parse decodes and validates a scan document. Unknown keys are rejected.
// Any invalid record fails the whole document.
func Parse(r io.Reader) ([]datastore.ProductScan, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, errors.New(err).
			Component("scanimport").
			Category(errors.CategoryFileParsing).
			Context("operation", "decode").
			Build()
	}

	scans := make([]datastore.ProductScan, 0, len(doc.Scans))
	for i, rec := range doc.Scans {
		scan, err := rec.toScan()
		if err == nil {
			err = datastore.ValidateScan(&scan)
		}
		if err != nil {
			return nil, recordError(err, i)
		}
		scans = append(scans, scan)
	}
	return scans, nil
}

func (rec scanRecord) toScan() (datastore.ProductScan, error) {
	if strings.TrimSpace(rec.ScannedAt) == "" {
		return datastore.ProductScan{}, errors.ValidationError("scanned_at", "scanned_at is required")
	}
	scannedAt, err := exposure.ParseTime("scanned_at", rec.ScannedAt)
	if err != nil {
		return datastore.ProductScan{}, err
	}

	return datastore.ProductScan{
		UserID:           strings.TrimSpace(rec.UserID),
		ProductName:      rec.ProductName,
		Category:         strings.ToLower(strings.TrimSpace(rec.Category)),
		OverallScore:     rec.OverallScore,
		RiskLevel:        rec.RiskLevel,
		FlaggedChemicals: rec.FlaggedChemicals,
		ScannedAt:        scannedAt.UTC(),
	}, nil
}

func recordError(err error, index int) error {
	return errors.New(err).
		Component("scanimport").
		Category(errors.CategoryValidation).
		Context("field", errors.Field(err)).
		Context("index", index).
		Build()
}

// Import parses the file at path and stores its scans in one batch. It
// returns the number of scans written.
func Import(ctx context.Context, w ScanWriter, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.New(err).
			Component("scanimport").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	defer func() { _ = f.Close() }()

	scans, err := Parse(f)
	if err != nil {
		return 0, err
	}
	if len(scans) == 0 {
		getLogger().Warn("no scans found", logger.String("path", path))
		return 0, nil
	}

	if err := w.SaveScans(ctx, scans); err != nil {
		return 0, err
	}

	getLogger().Info("scans imported",
		logger.String("path", path),
		logger.Int("count", len(scans)))
	return len(scans), nil
}
