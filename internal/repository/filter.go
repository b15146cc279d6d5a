package repository

import (
	"regexp"
	"strings"

	"loopr-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// SortFields are the transaction fields a list may be ordered by.
var SortFields = map[string]bool{
	"date":      true,
	"amount":    true,
	"id":        true,
	"category":  true,
	"status":    true,
	"user_id":   true,
	"createdAt": true,
}

const DefaultSortField = "date"

func isSet(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != "all"
}

// BuildFilter turns a TransactionFilter into a MongoDB query document.
// The search text is matched literally, case-insensitively, against
// user_id and description.
func BuildFilter(f models.TransactionFilter) bson.M {
	filter := bson.M{}

	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := bson.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"user_id": pattern},
			bson.M{"description": pattern},
		}
	}

	if isSet(f.Category) {
		filter["category"] = strings.TrimSpace(f.Category)
	}
	if isSet(f.Status) {
		filter["status"] = strings.TrimSpace(f.Status)
	}
	if isSet(f.UserID) {
		filter["user_id"] = strings.TrimSpace(f.UserID)
	}

	if f.StartDate != nil || f.EndDate != nil {
		date := bson.M{}
		if f.StartDate != nil {
			date["$gte"] = *f.StartDate
		}
		if f.EndDate != nil {
			date["$lte"] = *f.EndDate
		}
		filter["date"] = date
	}

	if f.MinAmount != nil || f.MaxAmount != nil {
		amount := bson.M{}
		if f.MinAmount != nil {
			amount["$gte"] = *f.MinAmount
		}
		if f.MaxAmount != nil {
			amount["$lte"] = *f.MaxAmount
		}
		filter["amount"] = amount
	}

	return filter
}

// BuildSort orders by the requested field, falling back to date. Ties are
// broken by id so pages are stable.
func BuildSort(field string, desc bool) bson.D {
	if !SortFields[field] {
		field = DefaultSortField
	}
	order := 1
	if desc {
		order = -1
	}
	sort := bson.D{{Key: field, Value: order}}
	if field != "id" {
		sort = append(sort, bson.E{Key: "id", Value: order})
	}
	return sort
}
