package core

// Report is a pure derivation over a transaction snapshot. It is never
// mutated in place; consumers regenerate it on demand.
type Report struct {
	Window           WindowKind     `json:"window"`
	Overview         Overview       `json:"overview"`
	CategoryAnalysis []CategoryStat `json:"categoryAnalysis"`
	SourceAnalysis   []SourceStat   `json:"sourceAnalysis"`
	TrendAnalysis    []TrendPoint   `json:"trendAnalysis"`
	SmartBill        SmartBill      `json:"smartBill"`
}

type Overview struct {
	Income           float64 `json:"income"`
	Expense          float64 `json:"expense"`
	Balance          float64 `json:"balance"`
	SavingsRate      float64 `json:"savingsRate"`
	AvgDailyExpense  float64 `json:"avgDailyExpense"`
	TransactionCount int     `json:"transactionCount"`

	// Growth fields are always present and currently always 0: no prior
	// period baseline is computed. A zero here means "no baseline", which
	// is indistinguishable from an actual 0% growth.
	IncomeGrowth  float64 `json:"incomeGrowth"`
	ExpenseGrowth float64 `json:"expenseGrowth"`
}

type CategoryStat struct {
	Category   Category `json:"category"`
	Amount     float64  `json:"amount"`
	Count      int      `json:"count"`
	Percentage int      `json:"percentage"`
}

type SourceStat struct {
	Source     TransactionSource `json:"source"`
	Amount     float64           `json:"amount"`
	Count      int               `json:"count"`
	Percentage int               `json:"percentage"`
}

// TrendPoint is one day of the window's expense/income series.
type TrendPoint struct {
	Date    string  `json:"date"` // YYYY-MM-DD
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

type Anomaly struct {
	Transaction Transaction `json:"transaction"`
	Deviation   int         `json:"deviation"` // percent above the mean
}

type Recommendation struct {
	Kind     string `json:"kind"`
	Priority string `json:"priority"` // high | medium
	Message  string `json:"message"`
}

// SmartBill composes the derived judgements over a window: a 0-100 health
// score, flagged outlier expenses and rule-based recommendations.
type SmartBill struct {
	HealthScore     int              `json:"healthScore"`
	TopCategory     *CategoryStat    `json:"topCategory"`
	Anomalies       []Anomaly        `json:"anomalies"`
	Recommendations []Recommendation `json:"recommendations"`
}
