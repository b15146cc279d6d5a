package models

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name              string
		page, limit       int
		total             int64
		wantPages         int64
		wantNext, wantPrv bool
	}{
		{"empty", 1, 10, 0, 0, false, false},
		{"exact", 1, 10, 20, 2, true, false},
		{"remainder", 2, 10, 21, 3, true, true},
		{"last page", 3, 10, 21, 3, false, true},
		{"past end", 5, 10, 21, 3, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.limit, tt.total)
			assert.Equal(t, tt.page, p.Current)
			assert.Equal(t, tt.wantPages, p.Total)
			assert.Equal(t, tt.wantNext, p.HasNext)
			assert.Equal(t, tt.wantPrv, p.HasPrev)
			assert.Equal(t, tt.total, p.TotalRecords)
		})
	}
}

func TestTransactionQuerySkip(t *testing.T) {
	assert.Equal(t, int64(0), TransactionQuery{Page: 1, Limit: 10}.Skip())
	assert.Equal(t, int64(40), TransactionQuery{Page: 3, Limit: 20}.Skip())
	assert.Equal(t, int64(0), TransactionQuery{Page: 0, Limit: 20}.Skip())

	huge := TransactionQuery{Page: 100_000_000_000_000_000, Limit: 100}
	assert.Equal(t, int64(math.MaxInt64), huge.Skip())
	assert.Equal(t, int64(math.MaxInt64), TransactionQuery{Page: math.MaxInt, Limit: 2}.Skip())
	assert.Equal(t, int64(0), TransactionQuery{Page: 3, Limit: -5}.Skip())
}

func TestTransactionValidateStoredAllowsZero(t *testing.T) {
	tx := &Transaction{Amount: 0, Category: CategoryExpense, Status: StatusFailed, UserID: "user_001"}
	assert.NoError(t, tx.ValidateStored())

	var verr *ValidationError
	require.True(t, errors.As(tx.Validate(), &verr))
	assert.Equal(t, "amount", verr.Field)

	tx.Amount = -0.01
	require.True(t, errors.As(tx.ValidateStored(), &verr))
	assert.Equal(t, "amount", verr.Field)

	tx.Amount = 5
	tx.Status = "Done"
	require.True(t, errors.As(tx.ValidateStored(), &verr))
	assert.Equal(t, "status", verr.Field)
}

func TestTransactionNormalizeAndValidate(t *testing.T) {
	tx := &Transaction{
		Amount:      120.5,
		Category:    CategoryRevenue,
		Status:      StatusPaid,
		UserID:      "  user_001 ",
		Description: "  invoice  ",
		Tags:        []string{" a ", "", "  ", "b"},
	}
	tx.Normalize()
	require.NoError(t, tx.Validate())
	assert.Equal(t, "user_001", tx.UserID)
	assert.Equal(t, "invoice", tx.Description)
	assert.Equal(t, []string{"a", "b"}, tx.Tags)
	assert.Equal(t, DefaultUserProfile, tx.UserProfile)

	cases := map[string]func(*Transaction){
		"amount":      func(t *Transaction) { t.Amount = 0 },
		"category":    func(t *Transaction) { t.Category = "Transfer" },
		"status":      func(t *Transaction) { t.Status = "Done" },
		"user_id":     func(t *Transaction) { t.UserID = "" },
		"description": func(t *Transaction) { t.Description = strings.Repeat("x", 501) },
	}
	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			bad := *tx
			mutate(&bad)
			err := bad.Validate()
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, field, verr.Field)
		})
	}
}

func TestProfileValidate(t *testing.T) {
	p := ProfileUpdate{
		Username:  " analyst ",
		Email:     " John.Doe@Loopr.COM ",
		FirstName: "John",
		LastName:  "Doe",
		Role:      RoleAnalyst,
	}
	p.Normalize()
	require.NoError(t, p.Validate())
	assert.Equal(t, "analyst", p.Username)
	assert.Equal(t, "john.doe@loopr.com", p.Email)

	bad := p
	bad.Username = "ab"
	assert.ErrorContains(t, bad.Validate(), "Username")

	bad = p
	bad.Email = "not-an-email"
	assert.ErrorContains(t, bad.Validate(), "valid email")

	bad = p
	bad.Role = "owner"
	assert.ErrorContains(t, bad.Validate(), "Role")

	bad = p
	bad.LastName = strings.Repeat("x", 51)
	assert.ErrorContains(t, bad.Validate(), "Last name")
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword("12345"))
	assert.NoError(t, ValidatePassword("123456"))
}

func TestUserPublic(t *testing.T) {
	u := &User{Username: "admin", Email: "admin@loopr.com", Role: RoleAdmin}
	pub := u.Public()
	assert.Equal(t, "admin", pub.Username)
	assert.Equal(t, RoleAdmin, pub.Role)
	assert.Len(t, pub.ID, 24)
	assert.False(t, u.HasAvatar())
}
