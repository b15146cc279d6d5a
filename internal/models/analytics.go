package models

type AnalyticsSummary struct {
	TotalRevenue         float64 `bson:"totalRevenue" json:"totalRevenue"`
	TotalExpenses        float64 `bson:"totalExpenses" json:"totalExpenses"`
	NetProfit            float64 `bson:"netProfit" json:"netProfit"`
	TotalTransactions    int64   `bson:"totalTransactions" json:"totalTransactions"`
	AvgTransactionAmount float64 `bson:"avgTransactionAmount" json:"avgTransactionAmount"`
	PaidTransactions     int64   `bson:"paidTransactions" json:"paidTransactions"`
	PendingTransactions  int64   `bson:"pendingTransactions" json:"pendingTransactions"`
	FailedTransactions   int64   `bson:"failedTransactions" json:"failedTransactions"`
}

// Breakdown is one group of a category or status aggregation.
type Breakdown struct {
	Key   string  `bson:"_id" json:"_id"`
	Total float64 `bson:"total" json:"total"`
	Count int64   `bson:"count" json:"count"`
}

type MonthKey struct {
	Year     int    `bson:"year" json:"year"`
	Month    int    `bson:"month" json:"month"`
	Category string `bson:"category" json:"category"`
}

type MonthlyTrend struct {
	Key   MonthKey `bson:"_id" json:"_id"`
	Total float64  `bson:"total" json:"total"`
	Count int64    `bson:"count" json:"count"`
}

type Breakdowns struct {
	Category []Breakdown `json:"category"`
	Status   []Breakdown `json:"status"`
}

type Analytics struct {
	Summary       AnalyticsSummary `json:"summary"`
	Breakdowns    Breakdowns       `json:"breakdowns"`
	MonthlyTrends []MonthlyTrend   `json:"monthlyTrends"`
}
