package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loopr-backend/internal/database"
	"loopr-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"golang.org/x/sync/errgroup"
)

const transactionSequence = "transactions"

type TransactionRepo struct {
	collection *mongo.Collection
	counters   *CounterRepo
}

func NewTransactionRepo(counters *CounterRepo) *TransactionRepo {
	return &TransactionRepo{
		collection: database.GetCollection("transactions"),
		counters:   counters,
	}
}

// List returns one page of matching transactions and the total match count.
func (r *TransactionRepo) List(ctx context.Context, q models.TransactionQuery) ([]models.Transaction, int64, error) {
	filter := BuildFilter(q.Filter)

	var (
		items []models.Transaction
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		opts := options.Find().
			SetSort(BuildSort(q.SortBy, q.SortDesc)).
			SetSkip(q.Skip()).
			SetLimit(int64(q.Limit))
		cursor, err := r.collection.Find(gctx, filter, opts)
		if err != nil {
			return fmt.Errorf("find transactions: %w", err)
		}
		items = []models.Transaction{}
		if err := cursor.All(gctx, &items); err != nil {
			return fmt.Errorf("decode transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		n, err := r.collection.CountDocuments(gctx, filter)
		if err != nil {
			return fmt.Errorf("count transactions: %w", err)
		}
		total = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Stream walks every matching transaction, newest first, calling fn for
// each. It stops at the first error fn returns.
func (r *TransactionRepo) Stream(ctx context.Context, f models.TransactionFilter, fn func(*models.Transaction) error) error {
	opts := options.Find().SetSort(BuildSort("date", true))
	cursor, err := r.collection.Find(ctx, BuildFilter(f), opts)
	if err != nil {
		return fmt.Errorf("find transactions: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var tx models.Transaction
		if err := cursor.Decode(&tx); err != nil {
			return fmt.Errorf("decode transaction: %w", err)
		}
		if err := fn(&tx); err != nil {
			return err
		}
	}
	return cursor.Err()
}

func (r *TransactionRepo) FindByID(ctx context.Context, id int64) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&tx)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &tx, nil
}

// Create allocates the next numeric id and stores tx. A zero Date
// defaults to now.
func (r *TransactionRepo) Create(ctx context.Context, tx *models.Transaction) error {
	id, err := r.counters.Next(ctx, transactionSequence)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	tx.ID = id
	if tx.Date.IsZero() {
		tx.Date = now
	}
	tx.CreatedAt = now
	tx.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, tx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	tx.ObjectID = result.InsertedID.(bson.ObjectID)
	return nil
}

// Replace overwrites the stored document with the same numeric id. It
// reports false when no such transaction exists.
func (r *TransactionRepo) Replace(ctx context.Context, tx *models.Transaction) (bool, error) {
	tx.UpdatedAt = time.Now().UTC()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"id": tx.ID}, tx)
	if err != nil {
		return false, fmt.Errorf("replace transaction %d: %w", tx.ID, err)
	}
	return result.MatchedCount > 0, nil
}

func (r *TransactionRepo) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return false, fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return result.DeletedCount > 0, nil
}

// Analytics runs the summary, breakdown and trend pipelines concurrently.
func (r *TransactionRepo) Analytics(ctx context.Context, dr DateRange) (*models.Analytics, error) {
	result := &models.Analytics{
		Breakdowns: models.Breakdowns{
			Category: []models.Breakdown{},
			Status:   []models.Breakdown{},
		},
		MonthlyTrends: []models.MonthlyTrend{},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var rows []models.AnalyticsSummary
		if err := r.aggregate(gctx, summaryPipeline(dr), &rows); err != nil {
			return fmt.Errorf("summary: %w", err)
		}
		if len(rows) > 0 {
			result.Summary = rows[0]
		}
		return nil
	})
	g.Go(func() error {
		if err := r.aggregate(gctx, breakdownPipeline(dr, "category"), &result.Breakdowns.Category); err != nil {
			return fmt.Errorf("category breakdown: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := r.aggregate(gctx, breakdownPipeline(dr, "status"), &result.Breakdowns.Status); err != nil {
			return fmt.Errorf("status breakdown: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := r.aggregate(gctx, monthlyTrendsPipeline(dr), &result.MonthlyTrends); err != nil {
			return fmt.Errorf("monthly trends: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	roundAnalytics(result)
	return result, nil
}

func (r *TransactionRepo) aggregate(ctx context.Context, pipeline bson.A, out any) error {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	return cursor.All(ctx, out)
}

// FilterOptions lists the distinct values the dashboard filters offer.
func (r *TransactionRepo) FilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	opts := &models.FilterOptions{
		Categories: []string{},
		Statuses:   []string{},
		UserIDs:    []string{},
	}

	g, gctx := errgroup.WithContext(ctx)
	distinct := func(field string, out *[]string) func() error {
		return func() error {
			res := r.collection.Distinct(gctx, field, bson.D{})
			if err := res.Err(); err != nil {
				return fmt.Errorf("distinct %s: %w", field, err)
			}
			return res.Decode(out)
		}
	}
	g.Go(distinct("category", &opts.Categories))
	g.Go(distinct("status", &opts.Statuses))
	g.Go(distinct("user_id", &opts.UserIDs))
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return opts, nil
}

// MaxID returns the largest numeric id in use, or 0 when empty.
func (r *TransactionRepo) MaxID(ctx context.Context) (int64, error) {
	var tx models.Transaction
	err := r.collection.FindOne(ctx, bson.M{}, options.FindOne().SetSort(bson.D{{Key: "id", Value: -1}})).Decode(&tx)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}
	return tx.ID, nil
}

// SyncSequence makes sure the id counter is not behind existing data,
// e.g. after an import that bypassed Create.
func (r *TransactionRepo) SyncSequence(ctx context.Context) error {
	maxID, err := r.MaxID(ctx)
	if err != nil {
		return fmt.Errorf("max transaction id: %w", err)
	}
	return r.counters.Raise(ctx, transactionSequence, maxID)
}

// InsertMany stores already-numbered transactions and syncs the counter.
func (r *TransactionRepo) InsertMany(ctx context.Context, txs []models.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]any, 0, len(txs))
	for i := range txs {
		if txs[i].CreatedAt.IsZero() {
			txs[i].CreatedAt = now
		}
		if txs[i].UpdatedAt.IsZero() {
			txs[i].UpdatedAt = now
		}
		docs = append(docs, txs[i])
	}
	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert transactions: %w", err)
	}
	return r.SyncSequence(ctx)
}

// DeleteAll empties the collection and resets the id counter.
func (r *TransactionRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	return r.counters.Reset(ctx, transactionSequence, 0)
}

// EnsureIndexes creates necessary indexes for the transactions collection
func (r *TransactionRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "date", Value: -1}, {Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "amount", Value: -1}}},
		{
			Keys: bson.D{
				{Key: "description", Value: "text"},
				{Key: "user_id", Value: "text"},
				{Key: "tags", Value: "text"},
			},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
