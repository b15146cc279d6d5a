// Command seed resets the database to a known state: three default users
// and a set of transactions, either imported from a JSON file or
// generated at random.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"time"

	"loopr-backend/internal/auth"
	"loopr-backend/internal/config"
	"loopr-backend/internal/database"
	"loopr-backend/internal/logging"
	"loopr-backend/internal/models"
	"loopr-backend/internal/repository"

	"github.com/joho/godotenv"
)

const defaultPassword = "password123"

var defaultUsers = []models.User{
	{Username: "admin", Email: "admin@loopr.com", FirstName: "Admin", LastName: "User", Role: models.RoleAdmin},
	{Username: "analyst", Email: "analyst@loopr.com", FirstName: "John", LastName: "Analyst", Role: models.RoleAnalyst},
	{Username: "viewer", Email: "viewer@loopr.com", FirstName: "Jane", LastName: "Viewer", Role: models.RoleViewer},
}

func main() {
	_ = godotenv.Load()

	file := flag.String("file", "", "path to a transactions JSON array; random sample data when empty")
	count := flag.Int("count", 50, "number of random transactions to generate when no file is given")
	flag.Parse()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if err := run(cfg, *file, *count); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, file string, count int) error {
	if cfg.MongoURI == "" {
		return errors.New("MONGODB_URI is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := database.Connect(ctx, cfg.MongoURI, cfg.DBName); err != nil {
		return err
	}
	defer database.Disconnect(context.Background())

	userRepo := repository.NewUserRepo()
	txRepo := repository.NewTransactionRepo(repository.NewCounterRepo())

	if err := txRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	if err := userRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear users: %w", err)
	}
	slog.Info("cleared existing data")

	if err := userRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	if err := txRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("transaction indexes: %w", err)
	}

	hash, err := auth.HashPassword(defaultPassword)
	if err != nil {
		return err
	}
	for _, u := range defaultUsers {
		u.PasswordHash = hash
		u.IsActive = true
		if err := userRepo.Create(ctx, &u); err != nil {
			return fmt.Errorf("create user %s: %w", u.Username, err)
		}
		slog.Info("created user", "username", u.Username, "email", u.Email)
	}

	var txs []models.Transaction
	if file != "" {
		txs, err = loadTransactions(file)
		if err != nil {
			return err
		}
	} else {
		txs = sampleTransactions(count, time.Now().UTC(), rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)))
	}
	if err := txRepo.InsertMany(ctx, txs); err != nil {
		return err
	}
	slog.Info("seeded transactions", "count", len(txs), "source", sourceName(file))

	for _, u := range defaultUsers {
		slog.Info("default login", "email", u.Email, "password", defaultPassword, "role", u.Role)
	}
	return nil
}

func sourceName(file string) string {
	if file == "" {
		return "generated"
	}
	return file
}

// seedRecord mirrors the transactions.json export format.
type seedRecord struct {
	ID          int64    `json:"id"`
	Date        string   `json:"date"`
	Amount      float64  `json:"amount"`
	Category    string   `json:"category"`
	Status      string   `json:"status"`
	UserID      string   `json:"user_id"`
	UserProfile string   `json:"user_profile"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

func loadTransactions(path string) ([]models.Transaction, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var records []seedRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return toTransactions(records)
}

func toTransactions(records []seedRecord) ([]models.Transaction, error) {
	out := make([]models.Transaction, 0, len(records))
	for i, rec := range records {
		date, err := parseSeedDate(rec.Date)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		id := rec.ID
		if id == 0 {
			id = int64(i + 1)
		}
		tx := models.Transaction{
			ID:          id,
			Date:        date,
			Amount:      rec.Amount,
			Category:    models.Category(rec.Category),
			Status:      models.Status(rec.Status),
			UserID:      rec.UserID,
			UserProfile: rec.UserProfile,
			Description: rec.Description,
			Tags:        rec.Tags,
		}
		tx.Normalize()
		if err := tx.ValidateStored(); err != nil {
			return nil, fmt.Errorf("record %d (id %d): %w", i, id, err)
		}
		out = append(out, tx)
	}
	return out, nil
}

func parseSeedDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// sampleTransactions generates n transactions spread over the year
// before now with amounts between 100 and 5100.
func sampleTransactions(n int, now time.Time, rng *rand.Rand) []models.Transaction {
	categories := []models.Category{models.CategoryRevenue, models.CategoryExpense}
	statuses := []models.Status{models.StatusPaid, models.StatusPending}
	userIDs := []string{"user_001", "user_002", "user_003", "user_004"}
	year := float64(365 * 24 * time.Hour)

	out := make([]models.Transaction, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, models.Transaction{
			ID:          int64(i),
			Date:        now.Add(-time.Duration(rng.Float64() * year)),
			Amount:      math.Round((rng.Float64()*5000+100)*100) / 100,
			Category:    categories[rng.IntN(len(categories))],
			Status:      statuses[rng.IntN(len(statuses))],
			UserID:      userIDs[rng.IntN(len(userIDs))],
			UserProfile: models.DefaultUserProfile,
			Description: fmt.Sprintf("Sample transaction %d", i),
			Tags:        []string{},
		})
	}
	return out
}
