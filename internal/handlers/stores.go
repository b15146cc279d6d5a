package handlers

import (
	"context"
	"time"

	"loopr-backend/internal/models"
	"loopr-backend/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// TransactionStore is the persistence the transaction and export
// handlers need. *repository.TransactionRepo satisfies it.
type TransactionStore interface {
	List(ctx context.Context, q models.TransactionQuery) ([]models.Transaction, int64, error)
	Stream(ctx context.Context, f models.TransactionFilter, fn func(*models.Transaction) error) error
	FindByID(ctx context.Context, id int64) (*models.Transaction, error)
	Create(ctx context.Context, tx *models.Transaction) error
	Replace(ctx context.Context, tx *models.Transaction) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Analytics(ctx context.Context, r repository.DateRange) (*models.Analytics, error)
	FilterOptions(ctx context.Context) (*models.FilterOptions, error)
}

// UserStore is satisfied by *repository.UserRepo.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id bson.ObjectID, at time.Time) error
	UpdateProfile(ctx context.Context, id bson.ObjectID, p models.ProfileUpdate) (*models.User, error)
	UpdatePassword(ctx context.Context, id bson.ObjectID, hash string) error
	UpdateAvatar(ctx context.Context, id bson.ObjectID, avatar models.Avatar) (*models.User, error)
}

// TokenIssuer mints session tokens for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

var (
	_ TransactionStore = (*repository.TransactionRepo)(nil)
	_ UserStore        = (*repository.UserRepo)(nil)
)
