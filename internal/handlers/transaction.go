package handlers

import (
	"net/http"
	"strconv"
	"time"

	"loopr-backend/internal/models"
	"loopr-backend/internal/repository"

	"github.com/go-chi/chi/v5"
)

type TransactionHandler struct {
	store TransactionStore
}

func NewTransactionHandler(store TransactionStore) *TransactionHandler {
	return &TransactionHandler{store: store}
}

// transactionRequest is the writable part of a transaction.
type transactionRequest struct {
	Amount      float64    `json:"amount"`
	Category    string     `json:"category"`
	Status      string     `json:"status"`
	UserID      string     `json:"user_id"`
	UserProfile string     `json:"user_profile"`
	Description string     `json:"description"`
	Tags        []string   `json:"tags"`
	Date        *time.Time `json:"date"`
}

func (req transactionRequest) apply(tx *models.Transaction) {
	tx.Amount = req.Amount
	tx.Category = models.Category(req.Category)
	tx.Status = models.Status(req.Status)
	tx.UserID = req.UserID
	tx.UserProfile = req.UserProfile
	tx.Description = req.Description
	tx.Tags = req.Tags
	if req.Date != nil {
		tx.Date = req.Date.UTC()
	}
}

type transactionPage struct {
	Transactions []models.Transaction `json:"transactions"`
	Pagination   models.Pagination    `json:"pagination"`
}

// --- GET /api/transactions ---

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseTransactionQuery(r.URL.Query())
	if err != nil {
		if respondValidation(w, err) {
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	items, total, err := h.store.List(r.Context(), q)
	if err != nil {
		respondInternal(w, r, "list transactions", err)
		return
	}
	if items == nil {
		items = []models.Transaction{}
	}

	respondOK(w, http.StatusOK, "", transactionPage{
		Transactions: items,
		Pagination:   models.NewPagination(q.Page, q.Limit, total),
	})
}

// --- GET /api/transactions/analytics ---

func (h *TransactionHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := parseDate("startDate", q.Get("startDate"), false)
	if err != nil {
		respondValidation(w, err)
		return
	}
	end, err := parseDate("endDate", q.Get("endDate"), true)
	if err != nil {
		respondValidation(w, err)
		return
	}

	analytics, err := h.store.Analytics(r.Context(), repository.DateRange{Start: start, End: end})
	if err != nil {
		respondInternal(w, r, "transaction analytics", err)
		return
	}
	respondOK(w, http.StatusOK, "", analytics)
}

// --- GET /api/transactions/filters ---

func (h *TransactionHandler) Filters(w http.ResponseWriter, r *http.Request) {
	opts, err := h.store.FilterOptions(r.Context())
	if err != nil {
		respondInternal(w, r, "transaction filter options", err)
		return
	}
	respondOK(w, http.StatusOK, "", opts)
}

// --- POST /api/transactions ---

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Amount == 0 || req.Category == "" || req.Status == "" || req.UserID == "" {
		respondError(w, http.StatusBadRequest, "Amount, category, status, and user_id are required")
		return
	}

	tx := &models.Transaction{}
	req.apply(tx)
	tx.Normalize()
	if err := tx.Validate(); err != nil {
		respondValidation(w, err)
		return
	}

	if err := h.store.Create(r.Context(), tx); err != nil {
		respondInternal(w, r, "create transaction", err)
		return
	}
	respondOK(w, http.StatusCreated, "Transaction created successfully", tx)
}

func transactionID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// --- GET /api/transactions/{id} ---

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := transactionID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}
	tx, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		respondInternal(w, r, "get transaction", err)
		return
	}
	if tx == nil {
		respondError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	respondOK(w, http.StatusOK, "", tx)
}

// --- PUT /api/transactions/{id} ---

// Update replaces every writable field; omitted fields are cleared and
// then validated like a create. The date is kept unless one is sent.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := transactionID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		respondInternal(w, r, "get transaction", err)
		return
	}
	if tx == nil {
		respondError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	req.apply(tx)
	tx.Normalize()
	if err := tx.Validate(); err != nil {
		respondValidation(w, err)
		return
	}

	found, err := h.store.Replace(r.Context(), tx)
	if err != nil {
		respondInternal(w, r, "replace transaction", err)
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	respondOK(w, http.StatusOK, "Transaction updated successfully", tx)
}

// --- DELETE /api/transactions/{id} ---

func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := transactionID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}
	found, err := h.store.Delete(r.Context(), id)
	if err != nil {
		respondInternal(w, r, "delete transaction", err)
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	respondOK(w, http.StatusOK, "Transaction deleted successfully", nil)
}
