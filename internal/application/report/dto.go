package report

import "time"

// DashboardSummaryResponse represents the dashboard headline figures
type DashboardSummaryResponse struct {
	TotalCustomers       int64   `json:"total_customers"`
	ActiveCustomers      int64   `json:"active_customers"`
	ActiveMeters         int64   `json:"active_meters"`
	TotalBills           int64   `json:"total_bills"`
	OpenBills            int64   `json:"open_bills"`
	OverdueBills         int64   `json:"overdue_bills"`
	PendingReadings      int64   `json:"pending_readings"`
	OpenComplaints       int64   `json:"open_complaints"`
	UrgentComplaints     int64   `json:"urgent_complaints"`
	TotalBilled          float64 `json:"total_billed"`
	TotalCollected       float64 `json:"total_collected"`
	TotalOutstanding     float64 `json:"total_outstanding"`
	OverdueAmount        float64 `json:"overdue_amount"`
	MonthRevenue         float64 `json:"month_revenue"`
	MonthPayments        int64   `json:"month_payments"`
	CollectionEfficiency float64 `json:"collection_efficiency"`
}

// TodayRevenueResponse represents the payments received today
type TodayRevenueResponse struct {
	Date         string             `json:"date"`
	TotalRevenue float64            `json:"total_revenue"`
	PaymentCount int64              `json:"payment_count"`
	ByMethod     map[string]float64 `json:"by_method"`
	ByUtility    map[string]float64 `json:"by_utility"`
}

// RevenueTrendResponse represents one month of collections per utility
type RevenueTrendResponse struct {
	Month     string             `json:"month"`
	ByUtility map[string]float64 `json:"by_utility"`
	Total     float64            `json:"total"`
}

// UtilityShareResponse represents the share of active connections of one utility
type UtilityShareResponse struct {
	UtilityType string  `json:"utility_type"`
	Connections int64   `json:"connections"`
	Percentage  float64 `json:"percentage"`
}

// ActivityResponse represents one item of the recent activity feed
type ActivityResponse struct {
	Type        string    `json:"type"`
	ID          string    `json:"id"`
	Reference   string    `json:"reference"`
	Description string    `json:"description"`
	Amount      *float64  `json:"amount,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// UnpaidBillResponse represents a bill with an outstanding balance
type UnpaidBillResponse struct {
	BillID            string    `json:"bill_id"`
	BillNumber        string    `json:"bill_number"`
	CustomerID        string    `json:"customer_id"`
	CustomerName      string    `json:"customer_name"`
	UtilityType       string    `json:"utility_type"`
	BillingPeriod     string    `json:"billing_period"`
	DueDate           time.Time `json:"due_date"`
	TotalAmount       float64   `json:"total_amount"`
	OutstandingAmount float64   `json:"outstanding_amount"`
	Status            string    `json:"status"`
	DaysOverdue       int       `json:"days_overdue"`
}

// DefaulterResponse represents a customer with bills overdue beyond the threshold
type DefaulterResponse struct {
	CustomerID       string    `json:"customer_id"`
	CustomerName     string    `json:"customer_name"`
	Phone            string    `json:"phone,omitempty"`
	Email            string    `json:"email,omitempty"`
	OverdueBills     int       `json:"overdue_bills"`
	TotalOutstanding float64   `json:"total_outstanding"`
	OldestDueDate    time.Time `json:"oldest_due_date"`
	MaxDaysOverdue   int       `json:"max_days_overdue"`
}

// MonthlyRevenueResponse represents billed and collected amounts of one month
type MonthlyRevenueResponse struct {
	Month        string  `json:"month"`
	Billed       float64 `json:"billed"`
	Collected    float64 `json:"collected"`
	PaymentCount int64   `json:"payment_count"`
}

// PaymentHistoryFilter defines the date range of the payment history report
type PaymentHistoryFilter struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

// PaymentHistoryItem represents one payment in the history report
type PaymentHistoryItem struct {
	PaymentID       string    `json:"payment_id"`
	BillID          string    `json:"bill_id"`
	BillNumber      string    `json:"bill_number"`
	CustomerID      string    `json:"customer_id"`
	CustomerName    string    `json:"customer_name"`
	UtilityType     string    `json:"utility_type"`
	Amount          float64   `json:"amount"`
	PaymentMethod   string    `json:"payment_method"`
	Status          string    `json:"status"`
	ReferenceNumber string    `json:"reference_number,omitempty"`
	PaymentDate     time.Time `json:"payment_date"`
}

// PaymentHistoryResponse represents the payments of a date range
type PaymentHistoryResponse struct {
	From         string               `json:"from"`
	To           string               `json:"to"`
	Payments     []PaymentHistoryItem `json:"payments"`
	PaymentCount int64                `json:"payment_count"`
	TotalAmount  float64              `json:"total_amount"`
}

// CollectionEfficiencyResponse represents collected / billed of one billing period
type CollectionEfficiencyResponse struct {
	Month      string  `json:"month"`
	BillCount  int64   `json:"bill_count"`
	Billed     float64 `json:"billed"`
	Collected  float64 `json:"collected"`
	Efficiency float64 `json:"efficiency"`
}

// ConnectionCountResponse counts the meters of one utility per status
type ConnectionCountResponse struct {
	UtilityType string `json:"utility_type"`
	Active      int64  `json:"active"`
	Inactive    int64  `json:"inactive"`
	Faulty      int64  `json:"faulty"`
	Total       int64  `json:"total"`
}

// ActiveConnectionsResponse represents the connection counts of all utilities
type ActiveConnectionsResponse struct {
	TotalActive int64                     `json:"total_active"`
	TotalMeters int64                     `json:"total_meters"`
	ByUtility   []ConnectionCountResponse `json:"by_utility"`
}

// ConsumptionTrendResponse represents one month of consumption per utility
type ConsumptionTrendResponse struct {
	Month     string             `json:"month"`
	ByUtility map[string]float64 `json:"by_utility"`
}

// UtilityReadingStats summarises the readings of one utility
type UtilityReadingStats struct {
	UtilityType        string  `json:"utility_type"`
	Unit               string  `json:"unit"`
	Readings           int64   `json:"readings"`
	TotalConsumption   float64 `json:"total_consumption"`
	AverageConsumption float64 `json:"average_consumption"`
}

// ReadingStatsResponse summarises the readings of the current month
type ReadingStatsResponse struct {
	Month         string                `json:"month"`
	TotalReadings int64                 `json:"total_readings"`
	Processed     int64                 `json:"processed"`
	Unprocessed   int64                 `json:"unprocessed"`
	ByType        map[string]int64      `json:"by_type"`
	ByUtility     []UtilityReadingStats `json:"by_utility"`
}
