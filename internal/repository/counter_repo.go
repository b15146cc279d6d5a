package repository

import (
	"context"
	"fmt"

	"loopr-backend/internal/database"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CounterRepo hands out monotonically increasing sequence numbers.
type CounterRepo struct {
	collection *mongo.Collection
}

func NewCounterRepo() *CounterRepo {
	return &CounterRepo{
		collection: database.GetCollection("counters"),
	}
}

type counter struct {
	Name string `bson:"_id"`
	Seq  int64  `bson:"seq"`
}

// Next atomically increments and returns the named sequence.
func (r *CounterRepo) Next(ctx context.Context, name string) (int64, error) {
	var c counter
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("next %s sequence: %w", name, err)
	}
	return c.Seq, nil
}

// Raise lifts the named sequence to at least floor. It never lowers it.
func (r *CounterRepo) Raise(ctx context.Context, name string, floor int64) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": name},
		bson.M{"$max": bson.M{"seq": floor}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("raise %s sequence: %w", name, err)
	}
	return nil
}

// Reset sets the named sequence to value.
func (r *CounterRepo) Reset(ctx context.Context, name string, value int64) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": name},
		bson.M{"$set": bson.M{"seq": value}},
		options.UpdateOne().SetUpsert(true),
	)
	return err
}
