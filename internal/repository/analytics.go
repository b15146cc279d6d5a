package repository

import (
	"time"

	"loopr-backend/internal/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// DateRange bounds an analytics query. Nil ends are open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// analyticsMatch only keeps documents whose date is a real BSON date.
func analyticsMatch(r DateRange) bson.D {
	match := bson.D{}
	if r.Start != nil || r.End != nil {
		date := bson.M{}
		if r.Start != nil {
			date["$gte"] = *r.Start
		}
		if r.End != nil {
			date["$lte"] = *r.End
		}
		match = append(match, bson.E{Key: "date", Value: date})
	}
	match = append(match, bson.E{Key: "$expr", Value: bson.M{
		"$eq": bson.A{bson.M{"$type": "$date"}, "date"},
	}})
	return bson.D{{Key: "$match", Value: match}}
}

func sumWhen(field, value string, then any) bson.M {
	return bson.M{"$sum": bson.M{
		"$cond": bson.A{bson.M{"$eq": bson.A{"$" + field, value}}, then, 0},
	}}
}

func summaryPipeline(r DateRange) bson.A {
	return bson.A{
		analyticsMatch(r),
		bson.D{{Key: "$group", Value: bson.M{
			"_id":                  nil,
			"totalRevenue":         sumWhen("category", string(models.CategoryRevenue), "$amount"),
			"totalExpenses":        sumWhen("category", string(models.CategoryExpense), "$amount"),
			"totalTransactions":    bson.M{"$sum": 1},
			"avgTransactionAmount": bson.M{"$avg": "$amount"},
			"paidTransactions":     sumWhen("status", string(models.StatusPaid), 1),
			"pendingTransactions":  sumWhen("status", string(models.StatusPending), 1),
			"failedTransactions":   sumWhen("status", string(models.StatusFailed), 1),
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"_id":                  0,
			"totalRevenue":         1,
			"totalExpenses":        1,
			"netProfit":            bson.M{"$subtract": bson.A{"$totalRevenue", "$totalExpenses"}},
			"totalTransactions":    1,
			"avgTransactionAmount": bson.M{"$round": bson.A{"$avgTransactionAmount", 2}},
			"paidTransactions":     1,
			"pendingTransactions":  1,
			"failedTransactions":   1,
		}}},
	}
}

func breakdownPipeline(r DateRange, field string) bson.A {
	return bson.A{
		analyticsMatch(r),
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   "$" + field,
			"total": bson.M{"$sum": "$amount"},
			"count": bson.M{"$sum": 1},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

func monthlyTrendsPipeline(r DateRange) bson.A {
	return bson.A{
		analyticsMatch(r),
		bson.D{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"year":     bson.M{"$year": "$date"},
				"month":    bson.M{"$month": "$date"},
				"category": "$category",
			},
			"total": bson.M{"$sum": "$amount"},
			"count": bson.M{"$sum": 1},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "_id.year", Value: 1},
			{Key: "_id.month", Value: 1},
			{Key: "_id.category", Value: 1},
		}}},
	}
}

// roundCents removes float noise from summed amounts.
func roundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func roundAnalytics(a *models.Analytics) {
	s := &a.Summary
	s.TotalRevenue = roundCents(s.TotalRevenue)
	s.TotalExpenses = roundCents(s.TotalExpenses)
	s.NetProfit = roundCents(s.NetProfit)
	s.AvgTransactionAmount = roundCents(s.AvgTransactionAmount)
	for i := range a.Breakdowns.Category {
		a.Breakdowns.Category[i].Total = roundCents(a.Breakdowns.Category[i].Total)
	}
	for i := range a.Breakdowns.Status {
		a.Breakdowns.Status[i].Total = roundCents(a.Breakdowns.Status[i].Total)
	}
	for i := range a.MonthlyTrends {
		a.MonthlyTrends[i].Total = roundCents(a.MonthlyTrends[i].Total)
	}
}
