package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"loopr-backend/internal/auth"
	"loopr-backend/internal/mailer"
	"loopr-backend/internal/middleware"
	"loopr-backend/internal/models"
	"loopr-backend/internal/repository"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const testPassword = "password123"

// testPasswordHash is computed once; bcrypt at cost 12 is slow.
var testPasswordHash = sync.OnceValue(func() string {
	hash, err := auth.HashPassword(testPassword)
	if err != nil {
		panic(err)
	}
	return hash
})

var errStore = errors.New("store unavailable")

type fakeTxStore struct {
	mu         sync.Mutex
	items      []models.Transaction
	nextID     int64
	err        error
	lastQuery  models.TransactionQuery
	lastRange  repository.DateRange
	lastFilter models.TransactionFilter
}

func newFakeTxStore(items ...models.Transaction) *fakeTxStore {
	s := &fakeTxStore{items: items}
	for _, tx := range items {
		s.nextID = max(s.nextID, tx.ID)
	}
	return s
}

func (s *fakeTxStore) List(_ context.Context, q models.TransactionQuery) ([]models.Transaction, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastQuery = q
	if s.err != nil {
		return nil, 0, s.err
	}
	start := min(int(q.Skip()), len(s.items))
	end := min(start+q.Limit, len(s.items))
	return append([]models.Transaction(nil), s.items[start:end]...), int64(len(s.items)), nil
}

func (s *fakeTxStore) Stream(_ context.Context, f models.TransactionFilter, fn func(*models.Transaction) error) error {
	s.mu.Lock()
	s.lastFilter = f
	items := append([]models.Transaction(nil), s.items...)
	err := s.err
	s.mu.Unlock()
	if err != nil {
		return err
	}
	for i := range items {
		if f.Category != "" && string(items[i].Category) != f.Category {
			continue
		}
		if err := fn(&items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeTxStore) FindByID(_ context.Context, id int64) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, tx := range s.items {
		if tx.ID == id {
			return &tx, nil
		}
	}
	return nil, nil
}

func (s *fakeTxStore) Create(_ context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.nextID++
	tx.ID = s.nextID
	now := time.Now().UTC()
	if tx.Date.IsZero() {
		tx.Date = now
	}
	tx.CreatedAt, tx.UpdatedAt = now, now
	s.items = append(s.items, *tx)
	return nil
}

func (s *fakeTxStore) Replace(_ context.Context, tx *models.Transaction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	for i := range s.items {
		if s.items[i].ID == tx.ID {
			s.items[i] = *tx
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeTxStore) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeTxStore) Analytics(_ context.Context, r repository.DateRange) (*models.Analytics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRange = r
	if s.err != nil {
		return nil, s.err
	}
	a := &models.Analytics{}
	for _, tx := range s.items {
		a.Summary.TotalTransactions++
		if tx.Category == models.CategoryRevenue {
			a.Summary.TotalRevenue += tx.Amount
		} else {
			a.Summary.TotalExpenses += tx.Amount
		}
	}
	return a, nil
}

func (s *fakeTxStore) FilterOptions(context.Context) (*models.FilterOptions, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return &models.FilterOptions{
		Categories: []string{"Expense", "Revenue"},
		Statuses:   []string{"Paid", "Pending"},
		UserIDs:    []string{"user_001"},
	}, nil
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[bson.ObjectID]*models.User
	err   error
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: map[bson.ObjectID]*models.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) get(id bson.ObjectID) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) FindByID(_ context.Context, id bson.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s *fakeUserStore) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	user.ID = bson.NewObjectID()
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *fakeUserStore) UpdateLastLogin(_ context.Context, id bson.ObjectID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.LastLogin = &at
	}
	return nil
}

func (s *fakeUserStore) UpdateProfile(_ context.Context, id bson.ObjectID, p models.ProfileUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for other, u := range s.users {
		if other != id && (u.Email == p.Email || u.Username == p.Username) {
			return nil, repository.ErrDuplicate
		}
	}
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	u.Username, u.Email, u.FirstName, u.LastName, u.Role = p.Username, p.Email, p.FirstName, p.LastName, p.Role
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, id bson.ObjectID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.PasswordHash = hash
	}
	return nil
}

func (s *fakeUserStore) UpdateAvatar(_ context.Context, id bson.ObjectID, avatar models.Avatar) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	u.Avatar = &avatar
	cp := *u
	return &cp, nil
}

type fakeIssuer struct{}

func (fakeIssuer) Issue(userID string) (string, error) { return "token-" + userID, nil }

// recordingMailer captures messages sent in the background.
type recordingMailer struct {
	sent chan mailer.Message
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{sent: make(chan mailer.Message, 4)}
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.sent <- msg
	return nil
}

func (m *recordingMailer) wait(t *testing.T) mailer.Message {
	t.Helper()
	select {
	case msg := <-m.sent:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no email sent")
		return mailer.Message{}
	}
}

func newTestUser(role models.Role) *models.User {
	return &models.User{
		ID:           bson.NewObjectID(),
		Username:     "jdoe",
		Email:        "jdoe@loopr.com",
		PasswordHash: testPasswordHash(),
		FirstName:    "John",
		LastName:     "Doe",
		Role:         role,
		IsActive:     true,
	}
}

type response struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asUser(req *http.Request, user *models.User) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), user))
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) response {
	t.Helper()
	var res response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res), rr.Body.String())
	return res
}
