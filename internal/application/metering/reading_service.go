package metering

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/utilitrack/backend/internal/domain/metering"
	"github.com/utilitrack/backend/internal/domain/shared"
)

// DefaultHistoryLimit is the number of readings returned by History when no limit is given
const DefaultHistoryLimit = 12

// ReadingService records and corrects meter readings
type ReadingService struct {
	readingRepo metering.ReadingRepository
	meterRepo   metering.MeterRepository
}

// NewReadingService creates a new ReadingService
func NewReadingService(readingRepo metering.ReadingRepository, meterRepo metering.MeterRepository) *ReadingService {
	return &ReadingService{
		readingRepo: readingRepo,
		meterRepo:   meterRepo,
	}
}

// Create records a reading. When the previous value is omitted it continues from the meter's
// last reading, or from the initial reading for a meter that has never been read.
func (s *ReadingService) Create(ctx context.Context, req CreateReadingRequest) (*ReadingResponse, error) {
	meter, err := s.meterRepo.FindByID(ctx, req.MeterID)
	if err != nil {
		return nil, err
	}
	if !meter.CanRecordReading() {
		return nil, shared.ErrInvalidState.WithMessage("Meter %s is %s and cannot be read", meter.MeterNumber, meter.Status)
	}

	readingDate := time.Now().UTC()
	if req.ReadingDate != nil {
		readingDate = req.ReadingDate.UTC()
	}
	readingType := metering.ReadingTypeActual
	if req.ReadingType != "" {
		readingType = metering.ReadingType(req.ReadingType)
	}

	previous := meter.InitialReading
	last, err := s.readingRepo.FindLatestForMeter(ctx, meter.ID)
	switch {
	case err == nil:
		if readingDate.Before(last.ReadingDate) {
			return nil, shared.NewValidationError("Reading date cannot precede the meter's last reading on " + last.ReadingDate.Format("2006-01-02"))
		}
		previous = last.CurrentReading
	case errors.Is(err, shared.ErrNotFound):
	default:
		return nil, err
	}
	if req.PreviousReading != nil {
		previous = *req.PreviousReading
	}

	reading, err := metering.NewMeterReading(meter.ID, readingDate, previous, req.CurrentReading, readingType, req.ReadBy, req.Notes)
	if err != nil {
		return nil, err
	}
	if err := s.readingRepo.Save(ctx, reading); err != nil {
		return nil, err
	}

	resp := ToReadingResponse(reading)
	return &resp, nil
}

// GetByID retrieves a reading by ID
func (s *ReadingService) GetByID(ctx context.Context, id uuid.UUID) (*ReadingResponse, error) {
	reading, err := s.readingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToReadingResponse(reading)
	return &resp, nil
}

// List retrieves readings with filtering and pagination
func (s *ReadingService) List(ctx context.Context, filter ReadingListFilter) ([]ReadingResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "reading_date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]any),
	}
	if filter.MeterID != "" {
		domainFilter.Filters["meter_id"] = filter.MeterID
	}
	if filter.ReadingType != "" {
		domainFilter.Filters["reading_type"] = filter.ReadingType
	}
	if filter.IsProcessed != nil {
		domainFilter.Filters["is_processed"] = *filter.IsProcessed
	}
	if filter.From != nil {
		domainFilter.Filters["from"] = filter.From.UTC()
	}
	if filter.To != nil {
		domainFilter.Filters["to"] = filter.To.UTC().Add(24*time.Hour - time.Nanosecond)
	}

	readings, err := s.readingRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.readingRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToReadingResponses(readings), total, nil
}

// ListByMeter returns the readings of one meter, newest first
func (s *ReadingService) ListByMeter(ctx context.Context, meterID uuid.UUID, page, pageSize int) ([]ReadingResponse, int64, error) {
	if _, err := s.meterRepo.FindByID(ctx, meterID); err != nil {
		return nil, 0, err
	}
	return s.List(ctx, ReadingListFilter{MeterID: meterID.String(), Page: page, PageSize: pageSize})
}

// History returns the last limit readings of a meter in chronological order with totals
func (s *ReadingService) History(ctx context.Context, meterID uuid.UUID, limit int) (*ReadingHistoryResponse, error) {
	meter, err := s.meterRepo.FindByID(ctx, meterID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	readings, err := s.readingRepo.FindAll(ctx, shared.Filter{
		Page:     1,
		PageSize: limit,
		OrderBy:  "reading_date",
		OrderDir: "desc",
		Filters:  map[string]any{"meter_id": meterID.String()},
	})
	if err != nil {
		return nil, err
	}

	// oldest first for charting
	for i, j := 0, len(readings)-1; i < j; i, j = i+1, j-1 {
		readings[i], readings[j] = readings[j], readings[i]
	}

	total := decimal.Zero
	for _, r := range readings {
		total = total.Add(r.Consumption)
	}
	average := decimal.Zero
	if len(readings) > 0 {
		average = total.Div(decimal.NewFromInt(int64(len(readings)))).Round(2)
	}

	return &ReadingHistoryResponse{
		MeterID:            meter.ID,
		MeterNumber:        meter.MeterNumber,
		UtilityType:        meter.UtilityType.String(),
		Unit:               meter.Unit(),
		Readings:           ToReadingResponses(readings),
		TotalConsumption:   total,
		AverageConsumption: average,
	}, nil
}

// Last returns the most recent reading of a meter
func (s *ReadingService) Last(ctx context.Context, meterID uuid.UUID) (*ReadingResponse, error) {
	if _, err := s.meterRepo.FindByID(ctx, meterID); err != nil {
		return nil, err
	}
	reading, err := s.readingRepo.FindLatestForMeter(ctx, meterID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Reading for this meter")
		}
		return nil, err
	}
	resp := ToReadingResponse(reading)
	return &resp, nil
}

// Update corrects an unbilled reading
func (s *ReadingService) Update(ctx context.Context, id uuid.UUID, req UpdateReadingRequest) (*ReadingResponse, error) {
	reading, err := s.readingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	readingDate, previous, current, readingType, notes :=
		reading.ReadingDate, reading.PreviousReading, reading.CurrentReading, reading.ReadingType, reading.Notes
	if req.ReadingDate != nil {
		readingDate = req.ReadingDate.UTC()
	}
	if req.PreviousReading != nil {
		previous = *req.PreviousReading
	}
	if req.CurrentReading != nil {
		current = *req.CurrentReading
	}
	if req.ReadingType != nil {
		readingType = metering.ReadingType(*req.ReadingType)
	}
	if req.Notes != nil {
		notes = *req.Notes
	}

	if err := reading.Correct(readingDate, previous, current, readingType, notes); err != nil {
		return nil, err
	}
	if err := s.readingRepo.Update(ctx, reading); err != nil {
		return nil, err
	}

	resp := ToReadingResponse(reading)
	return &resp, nil
}

// Delete removes an unbilled reading
func (s *ReadingService) Delete(ctx context.Context, id uuid.UUID) error {
	reading, err := s.readingRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := reading.EnsureDeletable(); err != nil {
		return err
	}
	return s.readingRepo.Delete(ctx, id)
}
