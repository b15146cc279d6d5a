package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Category string

const (
	CategoryRevenue Category = "Revenue"
	CategoryExpense Category = "Expense"
)

func (c Category) Valid() bool {
	return c == CategoryRevenue || c == CategoryExpense
}

type Status string

const (
	StatusPaid    Status = "Paid"
	StatusPending Status = "Pending"
	StatusFailed  Status = "Failed"
)

func (s Status) Valid() bool {
	return s == StatusPaid || s == StatusPending || s == StatusFailed
}

const (
	DefaultUserProfile   = "https://thispersondoesnotexist.com/"
	MaxDescriptionLength = 500
)

type Transaction struct {
	ObjectID    bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	ID          int64         `bson:"id" json:"id"`
	Date        time.Time     `bson:"date" json:"date"`
	Amount      float64       `bson:"amount" json:"amount"`
	Category    Category      `bson:"category" json:"category"`
	Status      Status        `bson:"status" json:"status"`
	UserID      string        `bson:"user_id" json:"user_id"`
	UserProfile string        `bson:"user_profile" json:"user_profile"`
	Description string        `bson:"description,omitempty" json:"description,omitempty"`
	Tags        []string      `bson:"tags" json:"tags"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// TransactionFilter narrows a transaction query. Empty fields and the
// value "all" mean no restriction.
type TransactionFilter struct {
	Search    string
	Category  string
	Status    string
	UserID    string
	StartDate *time.Time
	EndDate   *time.Time
	MinAmount *float64
	MaxAmount *float64
}

// TransactionQuery is a filtered, sorted page request.
type TransactionQuery struct {
	Filter   TransactionFilter
	SortBy   string
	SortDesc bool
	Page     int
	Limit    int
}

func (q TransactionQuery) Skip() int64 {
	if q.Page < 1 || q.Limit < 1 {
		return 0
	}
	pages, limit := int64(q.Page-1), int64(q.Limit)
	// saturate instead of wrapping negative
	if pages > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return pages * limit
}

type Pagination struct {
	Current      int   `json:"current"`
	Total        int64 `json:"total"`
	HasNext      bool  `json:"hasNext"`
	HasPrev      bool  `json:"hasPrev"`
	TotalRecords int64 `json:"totalRecords"`
}

func NewPagination(page, limit int, totalRecords int64) Pagination {
	var totalPages int64
	if limit > 0 {
		totalPages = (totalRecords + int64(limit) - 1) / int64(limit)
	}
	return Pagination{
		Current:      page,
		Total:        totalPages,
		HasNext:      int64(page) < totalPages,
		HasPrev:      page > 1,
		TotalRecords: totalRecords,
	}
}

type FilterOptions struct {
	Categories []string `json:"categories"`
	Statuses   []string `json:"statuses"`
	UserIDs    []string `json:"userIds"`
}
