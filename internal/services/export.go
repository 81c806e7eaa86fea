package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/models"
	"ledgerly/internal/money"
)

// ExportFormat selects the encoding of BulkExport.
type ExportFormat string

const (
	ExportFormatJSON ExportFormat = "json"
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
)

const exportSheet = "Transactions"

var exportColumns = []string{"Date", "Type", "Amount", "Description", "Category", "Payment Method", "Tags", "Location", "Notes"}

var exportContentTypes = map[ExportFormat]string{
	ExportFormatJSON: "application/json",
	ExportFormatCSV:  "text/csv",
	ExportFormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ExportFile is an encoded export ready to be sent as an attachment.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
	Count       int
}

// BulkExport encodes the caller's transactions selected by ids or, when ids
// is empty, by filter. A malformed id rejects the whole request; ids that are
// well formed but unknown to the caller are left out of the file.
func (s *bulkService) BulkExport(userID string, ids []string, filter TransactionFilter, format ExportFormat) (*ExportFile, error) {
	contentType, ok := exportContentTypes[format]
	if !ok {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("unsupported export format %q", format))
	}
	if len(ids) > MaxBulkItems {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("at most %d items per request", MaxBulkItems))
	}

	q := s.db.Preload("Category").Preload("PaymentMethod").Where("user_id = ?", userID)
	if len(ids) > 0 {
		valid, malformed, _ := splitIDs(ids)
		if len(malformed) > 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("invalid transaction id %q", malformed[0]))
		}
		q = q.Where("id IN ?", valid)
	} else {
		if err := filter.Validate(); err != nil {
			return nil, err
		}
		q = filter.apply(q)
	}

	var records []models.Transaction
	if err := q.Order(filter.order()).Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case ExportFormatJSON:
		err = writeExportJSON(&buf, records)
	case ExportFormatCSV:
		err = writeExportCSV(&buf, records)
	case ExportFormatXLSX:
		err = writeExportXLSX(&buf, records)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("transactions-export-%s.%s", s.now().UTC().Format(dateOnlyLayout), format),
		ContentType: contentType,
		Data:        buf.Bytes(),
		Count:       len(records),
	}, nil
}

func exportRow(t models.Transaction) []string {
	category, paymentMethod := "", ""
	if t.Category != nil {
		category = t.Category.Name
	}
	if t.PaymentMethod != nil {
		paymentMethod = t.PaymentMethod.Name
	}
	return []string{
		t.Date.UTC().Format(dateOnlyLayout),
		string(t.Type),
		money.Format(t.Amount),
		cellText(t.Description),
		cellText(category),
		cellText(paymentMethod),
		cellText(strings.Join(t.Tags, "; ")),
		cellText(t.Metadata.Location),
		cellText(t.Metadata.Notes),
	}
}

// cellText prefixes text that a spreadsheet would evaluate as a formula with
// a single quote so it opens as a literal string.
func cellText(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

func writeExportJSON(w io.Writer, records []models.Transaction) error {
	if records == nil {
		records = []models.Transaction{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// writeExportCSV quotes every field. encoding/csv only quotes when needed.
func writeExportCSV(w io.Writer, records []models.Transaction) error {
	writeLine := func(fields []string) error {
		quoted := make([]string, len(fields))
		for i, f := range fields {
			quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
		}
		_, err := io.WriteString(w, strings.Join(quoted, ",")+"\n")
		return err
	}

	if err := writeLine(exportColumns); err != nil {
		return err
	}
	for _, t := range records {
		if err := writeLine(exportRow(t)); err != nil {
			return err
		}
	}
	return nil
}

func writeExportXLSX(w io.Writer, records []models.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportColumns); err != nil {
		return err
	}
	for i, t := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := exportRow(t)
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		// Amount as a number so spreadsheets can sum it.
		values[2], _ = money.FromCents(t.Amount).Float64()
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return err
		}
	}
	return f.Write(w)
}
