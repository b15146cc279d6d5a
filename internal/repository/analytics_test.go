package repository

import (
	"testing"
	"time"

	"loopr-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func matchOf(t *testing.T, pipeline bson.A) bson.D {
	t.Helper()
	require.NotEmpty(t, pipeline)
	stage, ok := pipeline[0].(bson.D)
	require.True(t, ok)
	require.Equal(t, "$match", stage[0].Key)
	match, ok := stage[0].Value.(bson.D)
	require.True(t, ok)
	return match
}

func TestAnalyticsMatchOnlyRealDates(t *testing.T) {
	match := matchOf(t, summaryPipeline(DateRange{}))
	require.Len(t, match, 1)
	assert.Equal(t, "$expr", match[0].Key)
	assert.Equal(t, bson.M{"$eq": bson.A{bson.M{"$type": "$date"}, "date"}}, match[0].Value)
}

func TestAnalyticsMatchWithRange(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	match := matchOf(t, breakdownPipeline(DateRange{Start: &start}, "status"))
	require.Len(t, match, 2)
	assert.Equal(t, "date", match[0].Key)
	assert.Equal(t, bson.M{"$gte": start}, match[0].Value)
}

func TestBreakdownPipelineGroupsByField(t *testing.T) {
	p := breakdownPipeline(DateRange{}, "category")
	require.Len(t, p, 3)
	group := p[1].(bson.D)[0]
	assert.Equal(t, "$group", group.Key)
	assert.Equal(t, "$category", group.Value.(bson.M)["_id"])
}

func TestMonthlyTrendsPipelineSortsChronologically(t *testing.T) {
	p := monthlyTrendsPipeline(DateRange{})
	sort := p[2].(bson.D)[0]
	assert.Equal(t, "$sort", sort.Key)
	keys := sort.Value.(bson.D)
	assert.Equal(t, "_id.year", keys[0].Key)
	assert.Equal(t, "_id.month", keys[1].Key)
}

func TestSummaryPipelineCountsStatuses(t *testing.T) {
	p := summaryPipeline(DateRange{})
	group := p[1].(bson.D)[0].Value.(bson.M)
	for _, key := range []string{"totalRevenue", "totalExpenses", "paidTransactions", "pendingTransactions", "failedTransactions"} {
		assert.Contains(t, group, key)
	}
	project := p[2].(bson.D)[0].Value.(bson.M)
	assert.Equal(t, bson.M{"$subtract": bson.A{"$totalRevenue", "$totalExpenses"}}, project["netProfit"])
}

func TestRoundAnalytics(t *testing.T) {
	a := &models.Analytics{
		Summary: models.AnalyticsSummary{
			TotalRevenue:  0.1 + 0.2,
			TotalExpenses: 10.004,
			NetProfit:     -9.704,
		},
		Breakdowns: models.Breakdowns{
			Category: []models.Breakdown{{Key: "Revenue", Total: 1.005000001}},
		},
		MonthlyTrends: []models.MonthlyTrend{{Total: 2.499999}},
	}
	roundAnalytics(a)
	assert.Equal(t, 0.3, a.Summary.TotalRevenue)
	assert.Equal(t, 10.0, a.Summary.TotalExpenses)
	assert.Equal(t, -9.7, a.Summary.NetProfit)
	assert.Equal(t, 1.01, a.Breakdowns.Category[0].Total)
	assert.Equal(t, 2.5, a.MonthlyTrends[0].Total)
}
