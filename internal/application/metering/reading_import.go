package metering

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/utilitrack/backend/internal/domain/metering"
	"github.com/utilitrack/backend/internal/domain/shared"
	csvimport "github.com/utilitrack/backend/internal/infrastructure/import"
)

// Reading import columns
const (
	ColumnMeterNumber     = "meter_number"
	ColumnCurrentReading  = "current_reading"
	ColumnReadingDate     = "reading_date"
	ColumnPreviousReading = "previous_reading"
	ColumnReadingType     = "reading_type"
	ColumnNotes           = "notes"
)

// ImportReadingsOptions controls a bulk reading import
type ImportReadingsOptions struct {
	DryRun bool   // validate only
	ReadBy string // acting user, from the JWT
}

// ReadingImportResult summarizes a bulk reading import
type ReadingImportResult struct {
	TotalRows    int                  `json:"total_rows"`
	ValidRows    int                  `json:"valid_rows"`
	ImportedRows int                  `json:"imported_rows"`
	ErrorRows    int                  `json:"error_rows"`
	DryRun       bool                 `json:"dry_run"`
	Readings     []ReadingResponse    `json:"readings,omitempty"`
	Errors       []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated  bool                 `json:"is_truncated,omitempty"`
	TotalErrors  int                  `json:"total_errors,omitempty"`
}

type importRow struct {
	line int
	req  CreateReadingRequest
}

// Import records readings from a CSV file, one row per reading. Rows are applied in file order;
// a row that fails is reported and does not stop the rows after it.
func (s *ReadingService) Import(ctx context.Context, r io.Reader, opts ImportReadingsOptions) (*ReadingImportResult, error) {
	parser, err := csvimport.NewCSVParser(r)
	if err != nil {
		return nil, importFileError(err)
	}
	if missing := parser.MissingHeaders(ColumnMeterNumber, ColumnCurrentReading); len(missing) > 0 {
		return nil, shared.NewValidationError("Missing required columns: " + strings.Join(missing, ", "))
	}

	rows, err := parser.ReadAllRows()
	if err != nil {
		return nil, importFileError(err)
	}
	if len(rows) == 0 {
		return nil, shared.NewValidationError("CSV file contains no data rows")
	}

	errs := csvimport.NewErrorCollection(100)
	valid := s.validateImportRows(ctx, rows, opts.ReadBy, errs)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &ReadingImportResult{
		TotalRows: len(rows),
		ValidRows: len(valid),
		DryRun:    opts.DryRun,
	}

	if !opts.DryRun {
		for _, row := range valid {
			reading, err := s.Create(ctx, row.req)
			if err != nil {
				var domainErr *shared.DomainError
				if !errors.As(err, &domainErr) {
					return nil, err
				}
				errs.Add(csvimport.NewRowError(row.line, "", csvimport.ErrCodeImportRejected, domainErr.Message))
				continue
			}
			result.ImportedRows++
			result.Readings = append(result.Readings, *reading)
		}
	}

	result.ErrorRows = errs.ErrorRows()
	result.Errors = errs.Errors()
	result.TotalErrors = errs.Total()
	result.IsTruncated = errs.Truncated()
	return result, nil
}

func (s *ReadingService) validateImportRows(ctx context.Context, rows []*csvimport.Row, readBy string, errs *csvimport.ErrorCollection) []importRow {
	meters := make(map[string]*metering.Meter)
	seen := make(map[string]int)
	valid := make([]importRow, 0, len(rows))

	for _, row := range rows {
		if ctx.Err() != nil {
			return valid
		}
		line := row.LineNumber
		req := CreateReadingRequest{ReadBy: readBy, Notes: row.Get(ColumnNotes)}

		number := row.Get(ColumnMeterNumber)
		if number == "" {
			errs.AddRequired(line, ColumnMeterNumber)
		} else if meter := s.lookupMeter(ctx, meters, number, line, errs); meter != nil {
			req.MeterID = meter.ID
		}

		if raw := row.Get(ColumnCurrentReading); raw == "" {
			errs.AddRequired(line, ColumnCurrentReading)
		} else if v, err := decimal.NewFromString(raw); err != nil {
			errs.AddFormat(line, ColumnCurrentReading, "a number", raw)
		} else {
			req.CurrentReading = v
		}

		if raw := row.Get(ColumnPreviousReading); raw != "" {
			if v, err := decimal.NewFromString(raw); err != nil {
				errs.AddFormat(line, ColumnPreviousReading, "a number", raw)
			} else {
				req.PreviousReading = &v
			}
		}

		if raw := row.Get(ColumnReadingDate); raw != "" {
			if d, ok := parseImportDate(raw); ok {
				req.ReadingDate = &d
			} else {
				errs.AddFormat(line, ColumnReadingDate, "a date (YYYY-MM-DD)", raw)
			}
		}

		if raw := row.Get(ColumnReadingType); raw != "" {
			if !metering.ReadingType(raw).IsValid() {
				errs.AddFormat(line, ColumnReadingType, "Actual, Estimated or Customer-Submitted", raw)
			} else {
				req.ReadingType = raw
			}
		}

		if errs.HasRow(line) {
			continue
		}
		if req.ReadingDate != nil {
			key := strings.ToUpper(number) + "|" + req.ReadingDate.Format("2006-01-02")
			if first, dup := seen[key]; dup {
				errs.Add(csvimport.NewRowError(line, ColumnMeterNumber, csvimport.ErrCodeImportDuplicateInFile,
					"duplicate of row "+strconv.Itoa(first)+" for the same meter and date"))
				continue
			}
			seen[key] = line
		}
		valid = append(valid, importRow{line: line, req: req})
	}
	return valid
}

func (s *ReadingService) lookupMeter(ctx context.Context, cache map[string]*metering.Meter, number string, line int, errs *csvimport.ErrorCollection) *metering.Meter {
	key := strings.ToUpper(number)
	meter, cached := cache[key]
	if !cached {
		m, err := s.meterRepo.FindByNumber(ctx, number)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			errs.Add(csvimport.NewRowError(line, ColumnMeterNumber, csvimport.ErrCodeImportRejected, "meter lookup failed"))
			return nil
		}
		meter = m
		cache[key] = m
	}
	if meter == nil {
		errs.Add(csvimport.NewRowError(line, ColumnMeterNumber, csvimport.ErrCodeImportReferenceNotFound, "meter "+number+" does not exist"))
		return nil
	}
	if !meter.CanRecordReading() {
		errs.Add(csvimport.NewRowError(line, ColumnMeterNumber, csvimport.ErrCodeImportRejected,
			"meter "+number+" is "+meter.Status.String()+" and cannot be read"))
		return nil
	}
	return meter
}

func parseImportDate(raw string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "02/01/2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func importFileError(err error) error {
	switch {
	case errors.Is(err, csvimport.ErrEmptyFile),
		errors.Is(err, csvimport.ErrInvalidEncoding),
		errors.Is(err, csvimport.ErrMissingHeader),
		errors.Is(err, csvimport.ErrTooManyRows):
		return shared.NewValidationError(err.Error())
	}
	var rowErr csvimport.RowError
	if errors.As(err, &rowErr) {
		return shared.NewValidationError(rowErr.Error())
	}
	return err
}
