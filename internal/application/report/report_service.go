package report

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/utilitrack/backend/internal/domain/metering"
	"github.com/utilitrack/backend/internal/domain/report"
	"github.com/utilitrack/backend/internal/domain/shared"
)

const (
	defaultTrendMonths   = 6
	maxTrendMonths       = 24
	defaultActivityLimit = 10
	maxActivityLimit     = 100
	defaultUnpaidLimit   = 50
	defaultDefaulterDays = 30
	defaultHistoryDays   = 30
	maxHistoryDays       = 366
	monthLayout          = "2006-01"
)

var hundred = decimal.NewFromInt(100)

// ReportService computes dashboards and reports from row-level facts.
// Every call reads current data; nothing is cached.
type ReportService struct {
	reportRepo    report.UtilityReportRepository
	defaulterDays int
	now           func() time.Time
}

// NewReportService creates a new ReportService. defaulterDays is the default
// overdue threshold for the defaulters report.
func NewReportService(reportRepo report.UtilityReportRepository, defaulterDays int) *ReportService {
	if defaulterDays <= 0 {
		defaulterDays = defaultDefaulterDays
	}
	return &ReportService{
		reportRepo:    reportRepo,
		defaulterDays: defaulterDays,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// ===================== Dashboard =====================

// DashboardSummary returns the headline counters together with this month's collections
func (s *ReportService) DashboardSummary(ctx context.Context) (*DashboardSummaryResponse, error) {
	now := s.now()
	overview, err := s.reportRepo.Overview(ctx, now)
	if err != nil {
		return nil, err
	}

	monthStart := startOfMonth(now)
	payments, err := s.reportRepo.PaymentFacts(ctx, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}
	monthRevenue := decimal.Zero
	for _, p := range payments {
		monthRevenue = monthRevenue.Add(p.Amount)
	}

	return &DashboardSummaryResponse{
		TotalCustomers:       overview.TotalCustomers,
		ActiveCustomers:      overview.ActiveCustomers,
		ActiveMeters:         overview.ActiveMeters,
		TotalBills:           overview.TotalBills,
		OpenBills:            overview.OpenBills,
		OverdueBills:         overview.OverdueBills,
		PendingReadings:      overview.PendingReadings,
		OpenComplaints:       overview.OpenComplaints,
		UrgentComplaints:     overview.UrgentComplaints,
		TotalBilled:          toFloat64(overview.TotalBilled),
		TotalCollected:       toFloat64(overview.TotalCollected),
		TotalOutstanding:     toFloat64(overview.TotalOutstanding),
		OverdueAmount:        toFloat64(overview.OverdueAmount),
		MonthRevenue:         toFloat64(monthRevenue),
		MonthPayments:        int64(len(payments)),
		CollectionEfficiency: percentage(overview.TotalCollected, overview.TotalBilled),
	}, nil
}

// TodayRevenue returns the payments received today grouped by method and utility
func (s *ReportService) TodayRevenue(ctx context.Context) (*TodayRevenueResponse, error) {
	today := startOfDay(s.now())
	payments, err := s.reportRepo.PaymentFacts(ctx, today, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	byMethod := make(map[string]decimal.Decimal)
	byUtility := make(map[string]decimal.Decimal)
	for _, p := range payments {
		total = total.Add(p.Amount)
		byMethod[p.Method] = byMethod[p.Method].Add(p.Amount)
		byUtility[p.UtilityType] = byUtility[p.UtilityType].Add(p.Amount)
	}

	return &TodayRevenueResponse{
		Date:         today.Format("2006-01-02"),
		TotalRevenue: toFloat64(total),
		PaymentCount: int64(len(payments)),
		ByMethod:     toFloatMap(byMethod),
		ByUtility:    toFloatMap(byUtility),
	}, nil
}

// RevenueTrends returns monthly collections per utility for the last months
func (s *ReportService) RevenueTrends(ctx context.Context, months int) ([]RevenueTrendResponse, error) {
	months = clampMonths(months)
	keys, from := monthWindow(s.now(), months)

	payments, err := s.reportRepo.PaymentFacts(ctx, from, startOfMonth(s.now()).AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]map[string]decimal.Decimal, len(keys))
	for _, p := range payments {
		key := p.PaymentDate.UTC().Format(monthLayout)
		if buckets[key] == nil {
			buckets[key] = make(map[string]decimal.Decimal)
		}
		buckets[key][p.UtilityType] = buckets[key][p.UtilityType].Add(p.Amount)
	}

	out := make([]RevenueTrendResponse, len(keys))
	for i, key := range keys {
		row := RevenueTrendResponse{Month: key, ByUtility: make(map[string]float64)}
		total := decimal.Zero
		for _, u := range metering.AllUtilityTypes {
			amount := buckets[key][u.String()]
			row.ByUtility[u.String()] = toFloat64(amount)
			total = total.Add(amount)
		}
		row.Total = toFloat64(total)
		out[i] = row
	}
	return out, nil
}

// UtilityDistribution returns the share of active connections per utility
func (s *ReportService) UtilityDistribution(ctx context.Context) ([]UtilityShareResponse, error) {
	counts, err := s.reportRepo.MeterCounts(ctx)
	if err != nil {
		return nil, err
	}

	active := make(map[string]int64)
	var total int64
	for _, c := range counts {
		if c.Status != metering.MeterStatusActive.String() {
			continue
		}
		active[c.UtilityType] += c.Count
		total += c.Count
	}

	out := make([]UtilityShareResponse, 0, len(metering.AllUtilityTypes))
	for _, u := range metering.AllUtilityTypes {
		n := active[u.String()]
		out = append(out, UtilityShareResponse{
			UtilityType: u.String(),
			Connections: n,
			Percentage:  percentage(decimal.NewFromInt(n), decimal.NewFromInt(total)),
		})
	}
	return out, nil
}

// RecentActivity returns the newest bills, payments, readings and complaints merged by time
func (s *ReportService) RecentActivity(ctx context.Context, limit int) ([]ActivityResponse, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	activities, err := s.reportRepo.RecentActivity(ctx, limit)
	if err != nil {
		return nil, err
	}

	out := make([]ActivityResponse, len(activities))
	for i, a := range activities {
		out[i] = ActivityResponse{
			Type:        string(a.Kind),
			ID:          a.EntityID.String(),
			Reference:   a.Reference,
			Description: a.Description,
			OccurredAt:  a.OccurredAt,
		}
		if a.Amount != nil {
			amount := toFloat64(*a.Amount)
			out[i].Amount = &amount
		}
	}
	return out, nil
}

// ===================== Receivables =====================

// UnpaidBills lists bills with an outstanding balance, oldest due date first
func (s *ReportService) UnpaidBills(ctx context.Context, limit int) ([]UnpaidBillResponse, error) {
	if limit <= 0 {
		limit = defaultUnpaidLimit
	}
	bills, err := s.reportRepo.OpenBills(ctx, time.Time{}, limit)
	if err != nil {
		return nil, err
	}

	today := startOfDay(s.now())
	out := make([]UnpaidBillResponse, len(bills))
	for i, b := range bills {
		out[i] = UnpaidBillResponse{
			BillID:            b.BillID.String(),
			BillNumber:        b.BillNumber,
			CustomerID:        b.CustomerID.String(),
			CustomerName:      b.CustomerName,
			UtilityType:       b.UtilityType,
			BillingPeriod:     b.BillingPeriod,
			DueDate:           b.DueDate,
			TotalAmount:       toFloat64(b.TotalAmount),
			OutstandingAmount: toFloat64(b.OutstandingAmount),
			Status:            b.Status,
			DaysOverdue:       daysBetween(b.DueDate, today),
		}
	}
	return out, nil
}

// Defaulters groups bills overdue by more than daysOverdue days per customer,
// largest outstanding balance first
func (s *ReportService) Defaulters(ctx context.Context, daysOverdue int) ([]DefaulterResponse, error) {
	if daysOverdue < 0 {
		return nil, shared.NewValidationError("days_overdue cannot be negative")
	}
	if daysOverdue == 0 {
		daysOverdue = s.defaulterDays
	}

	today := startOfDay(s.now())
	bills, err := s.reportRepo.OpenBills(ctx, today.AddDate(0, 0, -daysOverdue), 0)
	if err != nil {
		return nil, err
	}

	type acc struct {
		resp        DefaulterResponse
		outstanding decimal.Decimal
	}
	byCustomer := make(map[string]*acc)
	var order []string
	for _, b := range bills {
		id := b.CustomerID.String()
		a, ok := byCustomer[id]
		if !ok {
			a = &acc{resp: DefaulterResponse{
				CustomerID:    id,
				CustomerName:  b.CustomerName,
				Phone:         b.CustomerPhone,
				Email:         b.CustomerEmail,
				OldestDueDate: b.DueDate,
			}}
			byCustomer[id] = a
			order = append(order, id)
		}
		a.outstanding = a.outstanding.Add(b.OutstandingAmount)
		a.resp.OverdueBills++
		if b.DueDate.Before(a.resp.OldestDueDate) {
			a.resp.OldestDueDate = b.DueDate
		}
		if d := daysBetween(b.DueDate, today); d > a.resp.MaxDaysOverdue {
			a.resp.MaxDaysOverdue = d
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return byCustomer[order[i]].outstanding.GreaterThan(byCustomer[order[j]].outstanding)
	})

	out := make([]DefaulterResponse, len(order))
	for i, id := range order {
		a := byCustomer[id]
		a.resp.TotalOutstanding = toFloat64(a.outstanding)
		out[i] = a.resp
	}
	return out, nil
}

// ===================== Revenue =====================

// MonthlyRevenue returns billed and collected amounts for each month of a year
func (s *ReportService) MonthlyRevenue(ctx context.Context, year int) ([]MonthlyRevenueResponse, error) {
	if year == 0 {
		year = s.now().Year()
	}
	if year < 2000 || year > 2100 {
		return nil, shared.NewValidationError("year is out of range")
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	payments, err := s.reportRepo.PaymentFacts(ctx, from, from.AddDate(1, 0, 0))
	if err != nil {
		return nil, err
	}
	bills, err := s.reportRepo.BillFacts(ctx, from.Format(monthLayout), from.AddDate(0, 11, 0).Format(monthLayout))
	if err != nil {
		return nil, err
	}

	collected := make(map[string]decimal.Decimal)
	counts := make(map[string]int64)
	for _, p := range payments {
		key := p.PaymentDate.UTC().Format(monthLayout)
		collected[key] = collected[key].Add(p.Amount)
		counts[key]++
	}
	billed := make(map[string]decimal.Decimal)
	for _, b := range bills {
		billed[b.BillingPeriod] = billed[b.BillingPeriod].Add(b.TotalAmount)
	}

	out := make([]MonthlyRevenueResponse, 12)
	for i := range out {
		key := from.AddDate(0, i, 0).Format(monthLayout)
		out[i] = MonthlyRevenueResponse{
			Month:        key,
			Billed:       toFloat64(billed[key]),
			Collected:    toFloat64(collected[key]),
			PaymentCount: counts[key],
		}
	}
	return out, nil
}

// PaymentHistory lists payments within [from, to], defaulting to the last 30 days
func (s *ReportService) PaymentHistory(ctx context.Context, filter PaymentHistoryFilter) (*PaymentHistoryResponse, error) {
	to := startOfDay(s.now())
	if filter.To != nil {
		to = startOfDay(filter.To.UTC())
	}
	from := to.AddDate(0, 0, -defaultHistoryDays)
	if filter.From != nil {
		from = startOfDay(filter.From.UTC())
	}
	if to.Before(from) {
		return nil, shared.NewValidationError("from must not be after to")
	}
	if to.Sub(from) > maxHistoryDays*24*time.Hour {
		return nil, shared.NewValidationError("payment history is limited to one year")
	}

	payments, err := s.reportRepo.PaymentFacts(ctx, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	items := make([]PaymentHistoryItem, len(payments))
	for i, p := range payments {
		total = total.Add(p.Amount)
		items[i] = PaymentHistoryItem{
			PaymentID:       p.PaymentID.String(),
			BillID:          p.BillID.String(),
			BillNumber:      p.BillNumber,
			CustomerID:      p.CustomerID.String(),
			CustomerName:    p.CustomerName,
			UtilityType:     p.UtilityType,
			Amount:          toFloat64(p.Amount),
			PaymentMethod:   p.Method,
			Status:          p.Status,
			ReferenceNumber: p.ReferenceNumber,
			PaymentDate:     p.PaymentDate,
		}
	}

	return &PaymentHistoryResponse{
		From:         from.Format("2006-01-02"),
		To:           to.Format("2006-01-02"),
		Payments:     items,
		PaymentCount: int64(len(items)),
		TotalAmount:  toFloat64(total),
	}, nil
}

// CollectionEfficiency returns collected / billed per billing period
func (s *ReportService) CollectionEfficiency(ctx context.Context, months int) ([]CollectionEfficiencyResponse, error) {
	months = clampMonths(months)
	keys, _ := monthWindow(s.now(), months)

	bills, err := s.reportRepo.BillFacts(ctx, keys[0], keys[len(keys)-1])
	if err != nil {
		return nil, err
	}

	billed := make(map[string]decimal.Decimal)
	collected := make(map[string]decimal.Decimal)
	counts := make(map[string]int64)
	for _, b := range bills {
		billed[b.BillingPeriod] = billed[b.BillingPeriod].Add(b.TotalAmount)
		collected[b.BillingPeriod] = collected[b.BillingPeriod].Add(b.PaidAmount)
		counts[b.BillingPeriod]++
	}

	out := make([]CollectionEfficiencyResponse, len(keys))
	for i, key := range keys {
		out[i] = CollectionEfficiencyResponse{
			Month:      key,
			BillCount:  counts[key],
			Billed:     toFloat64(billed[key]),
			Collected:  toFloat64(collected[key]),
			Efficiency: percentage(collected[key], billed[key]),
		}
	}
	return out, nil
}

// ===================== Metering =====================

// ActiveConnections counts meters per utility and status
func (s *ReportService) ActiveConnections(ctx context.Context) (*ActiveConnectionsResponse, error) {
	counts, err := s.reportRepo.MeterCounts(ctx)
	if err != nil {
		return nil, err
	}

	rows := make(map[string]*ConnectionCountResponse)
	for _, u := range metering.AllUtilityTypes {
		rows[u.String()] = &ConnectionCountResponse{UtilityType: u.String()}
	}
	resp := &ActiveConnectionsResponse{}
	for _, c := range counts {
		row, ok := rows[c.UtilityType]
		if !ok {
			continue
		}
		switch metering.MeterStatus(c.Status) {
		case metering.MeterStatusActive:
			row.Active += c.Count
			resp.TotalActive += c.Count
		case metering.MeterStatusInactive:
			row.Inactive += c.Count
		case metering.MeterStatusFaulty:
			row.Faulty += c.Count
		}
		row.Total += c.Count
		resp.TotalMeters += c.Count
	}
	for _, u := range metering.AllUtilityTypes {
		resp.ByUtility = append(resp.ByUtility, *rows[u.String()])
	}
	return resp, nil
}

// ConsumptionTrends returns monthly consumption per utility for the last months
func (s *ReportService) ConsumptionTrends(ctx context.Context, months int) ([]ConsumptionTrendResponse, error) {
	months = clampMonths(months)
	keys, from := monthWindow(s.now(), months)

	readings, err := s.reportRepo.ReadingFacts(ctx, from, startOfMonth(s.now()).AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]map[string]decimal.Decimal, len(keys))
	for _, r := range readings {
		key := r.ReadingDate.UTC().Format(monthLayout)
		if buckets[key] == nil {
			buckets[key] = make(map[string]decimal.Decimal)
		}
		buckets[key][r.UtilityType] = buckets[key][r.UtilityType].Add(r.Consumption)
	}

	out := make([]ConsumptionTrendResponse, len(keys))
	for i, key := range keys {
		row := ConsumptionTrendResponse{Month: key, ByUtility: make(map[string]float64)}
		for _, u := range metering.AllUtilityTypes {
			row.ByUtility[u.String()] = toFloat64(buckets[key][u.String()])
		}
		out[i] = row
	}
	return out, nil
}

// ReadingStats summarises the readings taken in the current month
func (s *ReportService) ReadingStats(ctx context.Context) (*ReadingStatsResponse, error) {
	now := s.now()
	monthStart := startOfMonth(now)
	readings, err := s.reportRepo.ReadingFacts(ctx, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}

	resp := &ReadingStatsResponse{
		Month:  monthStart.Format(monthLayout),
		ByType: make(map[string]int64),
	}
	consumption := make(map[string]decimal.Decimal)
	perUtility := make(map[string]int64)
	for _, r := range readings {
		resp.TotalReadings++
		if r.IsProcessed {
			resp.Processed++
		} else {
			resp.Unprocessed++
		}
		resp.ByType[r.ReadingType]++
		consumption[r.UtilityType] = consumption[r.UtilityType].Add(r.Consumption)
		perUtility[r.UtilityType]++
	}

	for _, u := range metering.AllUtilityTypes {
		key := u.String()
		avg := decimal.Zero
		if perUtility[key] > 0 {
			avg = consumption[key].Div(decimal.NewFromInt(perUtility[key]))
		}
		resp.ByUtility = append(resp.ByUtility, UtilityReadingStats{
			UtilityType:        key,
			Unit:               u.Unit(),
			Readings:           perUtility[key],
			TotalConsumption:   toFloat64(consumption[key]),
			AverageConsumption: toFloat64(avg.Round(2)),
		})
	}
	return resp, nil
}

// ===================== Helper Functions =====================

func toFloat64(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

func toFloatMap(m map[string]decimal.Decimal) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = toFloat64(v)
	}
	return out
}

// percentage returns part / whole * 100 rounded to 2 places, or 0 for an empty whole
func percentage(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return toFloat64(part.Div(whole).Mul(hundred))
}

func clampMonths(months int) int {
	if months <= 0 {
		return defaultTrendMonths
	}
	if months > maxTrendMonths {
		return maxTrendMonths
	}
	return months
}

// monthWindow returns the YYYY-MM keys of the last months ending with the current one,
// oldest first, and the start of the oldest month
func monthWindow(now time.Time, months int) ([]string, time.Time) {
	current := startOfMonth(now)
	from := current.AddDate(0, -(months - 1), 0)
	keys := make([]string, months)
	for i := range keys {
		keys[i] = from.AddDate(0, i, 0).Format(monthLayout)
	}
	return keys, from
}

func startOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole days from due to today, never negative
func daysBetween(due, today time.Time) int {
	d := int(today.Sub(startOfDay(due)).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
