package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"loopr-backend/internal/models"

	"github.com/shopspring/decimal"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// parseDate accepts YYYY-MM-DD or RFC3339. A date-only end bound is
// extended to the last millisecond of that day.
func parseDate(field, value string, endOfDay bool) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Millisecond)
		}
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		t = t.UTC()
		return &t, nil
	}
	return nil, &models.ValidationError{Field: field, Message: fmt.Sprintf("Invalid %s: expected YYYY-MM-DD or RFC3339", field)}
}

func parseAmount(field, value string) (*float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil || d.IsNegative() {
		return nil, &models.ValidationError{Field: field, Message: fmt.Sprintf("Invalid %s: expected a non-negative number", field)}
	}
	f := d.InexactFloat64()
	return &f, nil
}

func parsePositiveInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// filterParams is the raw, string-typed form of a transaction filter as
// sent in a query string or export body.
type filterParams struct {
	Search    looseString `json:"search"`
	Category  looseString `json:"category"`
	Status    looseString `json:"status"`
	UserID    looseString `json:"user_id"`
	StartDate looseString `json:"startDate"`
	EndDate   looseString `json:"endDate"`
	MinAmount looseString `json:"minAmount"`
	MaxAmount looseString `json:"maxAmount"`
}

func filterParamsFromQuery(q url.Values) filterParams {
	return filterParams{
		Search:    looseString(q.Get("search")),
		Category:  looseString(q.Get("category")),
		Status:    looseString(q.Get("status")),
		UserID:    looseString(q.Get("user_id")),
		StartDate: looseString(q.Get("startDate")),
		EndDate:   looseString(q.Get("endDate")),
		MinAmount: looseString(q.Get("minAmount")),
		MaxAmount: looseString(q.Get("maxAmount")),
	}
}

func (p filterParams) toFilter() (models.TransactionFilter, error) {
	f := models.TransactionFilter{
		Search:   strings.TrimSpace(string(p.Search)),
		Category: strings.TrimSpace(string(p.Category)),
		Status:   strings.TrimSpace(string(p.Status)),
		UserID:   strings.TrimSpace(string(p.UserID)),
	}

	var err error
	if f.StartDate, err = parseDate("startDate", string(p.StartDate), false); err != nil {
		return f, err
	}
	if f.EndDate, err = parseDate("endDate", string(p.EndDate), true); err != nil {
		return f, err
	}
	if f.MinAmount, err = parseAmount("minAmount", string(p.MinAmount)); err != nil {
		return f, err
	}
	if f.MaxAmount, err = parseAmount("maxAmount", string(p.MaxAmount)); err != nil {
		return f, err
	}
	return f, nil
}

// parseTransactionQuery reads the list endpoint's query string.
func parseTransactionQuery(q url.Values) (models.TransactionQuery, error) {
	filter, err := filterParamsFromQuery(q).toFilter()
	if err != nil {
		return models.TransactionQuery{}, err
	}

	limit := parsePositiveInt(q.Get("limit"), defaultLimit)
	if limit > maxLimit {
		limit = maxLimit
	}

	sortBy := strings.TrimSpace(q.Get("sortBy"))
	if sortBy == "" {
		sortBy = "date"
	}

	return models.TransactionQuery{
		Filter:   filter,
		SortBy:   sortBy,
		SortDesc: q.Get("sortOrder") == "" || q.Get("sortOrder") == "desc",
		Page:     parsePositiveInt(q.Get("page"), defaultPage),
		Limit:    limit,
	}, nil
}

// looseString decodes a JSON string, number, bool or null into text, so
// clients may send `"minAmount": 10` or `"minAmount": "10"`.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = looseString(str)
		return nil
	}
	if len(data) > 0 && (data[0] == '{' || data[0] == '[') {
		return fmt.Errorf("expected a scalar value")
	}
	*s = looseString(data)
	return nil
}
