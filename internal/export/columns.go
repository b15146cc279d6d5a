package export

import (
	"strconv"
	"strings"
	"time"

	"loopr-backend/internal/models"
)

type ColumnType string

const (
	TypeNumber ColumnType = "number"
	TypeDate   ColumnType = "date"
	TypeString ColumnType = "string"
	TypeArray  ColumnType = "array"
)

type Column struct {
	ID    string     `json:"id"`
	Label string     `json:"label"`
	Type  ColumnType `json:"type"`

	value func(*models.Transaction) string
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var columns = []Column{
	{ID: "id", Label: "ID", Type: TypeNumber, value: func(t *models.Transaction) string {
		return strconv.FormatInt(t.ID, 10)
	}},
	{ID: "date", Label: "Date", Type: TypeDate, value: func(t *models.Transaction) string {
		if t.Date.IsZero() {
			return ""
		}
		return t.Date.UTC().Format("2006-01-02")
	}},
	{ID: "amount", Label: "Amount", Type: TypeNumber, value: func(t *models.Transaction) string {
		return formatNumber(t.Amount)
	}},
	{ID: "category", Label: "Category", Type: TypeString, value: func(t *models.Transaction) string {
		return string(t.Category)
	}},
	{ID: "status", Label: "Status", Type: TypeString, value: func(t *models.Transaction) string {
		return string(t.Status)
	}},
	{ID: "user_id", Label: "User ID", Type: TypeString, value: func(t *models.Transaction) string {
		return t.UserID
	}},
	{ID: "user_profile", Label: "User Profile", Type: TypeString, value: func(t *models.Transaction) string {
		return t.UserProfile
	}},
	{ID: "description", Label: "Description", Type: TypeString, value: func(t *models.Transaction) string {
		return t.Description
	}},
	{ID: "tags", Label: "Tags", Type: TypeArray, value: func(t *models.Transaction) string {
		return strings.Join(t.Tags, ", ")
	}},
	{ID: "createdAt", Label: "Created At", Type: TypeDate, value: func(t *models.Transaction) string {
		return formatTimestamp(t.CreatedAt)
	}},
	{ID: "updatedAt", Label: "Updated At", Type: TypeDate, value: func(t *models.Transaction) string {
		return formatTimestamp(t.UpdatedAt)
	}},
}

var columnsByID = func() map[string]Column {
	m := make(map[string]Column, len(columns))
	for _, c := range columns {
		m[c.ID] = c
	}
	return m
}()

// DefaultColumns is used when a request names no columns.
var DefaultColumns = []string{"id", "date", "amount", "category", "status", "user_id"}

// Columns lists every exportable column in display order.
func Columns() []Column {
	out := make([]Column, len(columns))
	copy(out, columns)
	return out
}

// ResolveColumns keeps the known ids from requested, in request order and
// without duplicates. A nil or empty request yields DefaultColumns.
func ResolveColumns(requested []string) []Column {
	if len(requested) == 0 {
		requested = DefaultColumns
	}
	seen := make(map[string]bool, len(requested))
	out := make([]Column, 0, len(requested))
	for _, id := range requested {
		c, ok := columnsByID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, c)
	}
	return out
}

func (c Column) Value(t *models.Transaction) string {
	return c.value(t)
}
