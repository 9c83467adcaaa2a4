package handlers

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/adityarathi/finsight/internal/api/middleware"
	"github.com/adityarathi/finsight/internal/extract"
	"github.com/adityarathi/finsight/internal/store/firestore"
)

// uploadField is the multipart form field carrying the document.
const uploadField = "receipt"

// maxMultipartMemory bounds in-memory multipart parsing; larger parts spill
// to disk.
const maxMultipartMemory = 16 << 20

// Pipeline is the extraction seam the handlers call.
type Pipeline interface {
	ExtractAmount(ctx context.Context, u extract.Upload) (*extract.ExtractedAmount, error)
	ExtractTransactions(ctx context.Context, u extract.Upload) ([]extract.ClassifiedTransaction, error)
}

// Store is the persistence seam the handlers call.
type Store interface {
	AddIncome(ctx context.Context, doc firestore.IncomeDoc) (firestore.IncomeDoc, error)
	AddExpense(ctx context.Context, doc firestore.ExpenseDoc) (firestore.ExpenseDoc, error)
	SaveTransactions(ctx context.Context, txns []extract.ClassifiedTransaction) ([]firestore.TransactionDoc, error)
	ListTransactions(ctx context.Context, limit int) ([]firestore.TransactionDoc, error)
	Summarize(ctx context.Context) (firestore.Summary, error)
}

// Archiver keeps raw uploads for auditing and serves them back. Archiving is
// best-effort and never fails a request.
type Archiver interface {
	Store(ctx context.Context, filename string, data []byte) (string, error)
	Fetch(ctx context.Context, objectName string) ([]byte, error)
}

// Insights generates advisory text from a summary.
type Insights interface {
	Generate(ctx context.Context, sum firestore.Summary) (string, error)
}

// ExtractHandler handles the document extraction endpoints.
type ExtractHandler struct {
	pipeline Pipeline
	store    Store
	archive  Archiver
	log      zerolog.Logger
}

// NewExtractHandler creates a new extraction handler. store and archive may
// be nil when persistence or archiving is not configured.
func NewExtractHandler(pipeline Pipeline, store Store, archive Archiver, log zerolog.Logger) *ExtractHandler {
	return &ExtractHandler{pipeline: pipeline, store: store, archive: archive, log: log}
}

// ExtractAmount handles POST /api/extract/amount
func (h *ExtractHandler) ExtractAmount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	upload, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	result, err := h.pipeline.ExtractAmount(ctx, upload)
	if err != nil {
		h.writePipelineError(w, err, "Amount extraction failed")
		return
	}

	h.archiveUpload(ctx, upload)

	middleware.WriteJSON(w, http.StatusOK, result)
}

// ExtractTransactions handles POST /api/extract/transactions. With
// ?persist=true the classified transactions are also written to the store.
func (h *ExtractHandler) ExtractTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	upload, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	txns, err := h.pipeline.ExtractTransactions(ctx, upload)
	if err != nil {
		h.writePipelineError(w, err, "Transaction extraction failed")
		return
	}

	h.archiveUpload(ctx, upload)

	persist := r.URL.Query().Get("persist") == "true"
	if persist && h.store == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Persistence is not configured", "")
		return
	}

	resp := map[string]interface{}{
		"transactions": txns,
		"count":        len(txns),
	}

	if persist {
		saved, err := h.store.SaveTransactions(ctx, txns)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to persist transactions")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to persist transactions", "")
			return
		}
		resp["persisted"] = len(saved)
	}

	middleware.WriteJSON(w, http.StatusOK, resp)
}

// readUpload pulls the multipart file out of the request. On failure it
// writes the error response and returns ok=false.
func (h *ExtractHandler) readUpload(w http.ResponseWriter, r *http.Request) (extract.Upload, bool) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart request", "")
		return extract.Upload{}, false
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Form field \"receipt\" is required", "")
		return extract.Upload{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read upload")
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read uploaded file", "")
		return extract.Upload{}, false
	}

	return extract.Upload{
		Filename: header.Filename,
		MIMEType: header.Header.Get("Content-Type"),
		Data:     data,
	}, true
}

// archiveUpload stores the raw bytes of a successfully processed upload.
// Only uploads that cleared admission and extraction are archived; failures
// here are logged and swallowed.
func (h *ExtractHandler) archiveUpload(ctx context.Context, u extract.Upload) {
	if h.archive == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	object, err := h.archive.Store(ctx, u.Filename, u.Data)
	if err != nil {
		h.log.Warn().Err(err).Str("filename", u.Filename).Msg("Failed to archive upload")
		return
	}
	h.log.Debug().Str("object", object).Msg("Archived upload")
}

// GetReceipt handles GET /api/receipts/{object}, serving an archived
// original back.
func (h *ExtractHandler) GetReceipt(w http.ResponseWriter, r *http.Request, objectName string) {
	if h.archive == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Receipt archive is not configured", "")
		return
	}

	data, err := h.archive.Fetch(r.Context(), objectName)
	if err != nil {
		h.log.Warn().Err(err).Str("object", objectName).Msg("Failed to fetch archived receipt")
		middleware.WriteError(w, http.StatusNotFound, "Receipt not found", "")
		return
	}

	contentType := mime.TypeByExtension(path.Ext(objectName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *ExtractHandler) writePipelineError(w http.ResponseWriter, err error, fallback string) {
	kind := extract.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case extract.KindInvalidInput:
		status = http.StatusBadRequest
	case extract.KindNoText, extract.KindParse:
		status = http.StatusUnprocessableEntity
	case extract.KindCollaborator:
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Msg(fallback)
		middleware.WriteError(w, status, fallback, "")
		return
	}

	h.log.Warn().Err(err).Str("kind", string(kind)).Msg(fallback)
	middleware.WriteError(w, status, err.Error(), extract.HintOf(err))
}

// LedgerHandler handles manual income/expense entry and summaries.
type LedgerHandler struct {
	store Store
	log   zerolog.Logger
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(store Store, log zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{store: store, log: log}
}

// AddIncome handles POST /api/incomes
func (h *LedgerHandler) AddIncome(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64 `json:"amount"`
		Source string  `json:"source"`
		Date   string  `json:"date"`
		Note   string  `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}
	if req.Amount <= 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Amount must be positive", "")
		return
	}

	doc, err := h.store.AddIncome(r.Context(), firestore.IncomeDoc{
		Amount: req.Amount,
		Source: req.Source,
		Date:   req.Date,
		Note:   req.Note,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to add income")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to add income", "")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, doc)
}

// AddExpense handles POST /api/expenses. A missing category is guessed from
// the description.
func (h *LedgerHandler) AddExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
		Description string  `json:"description"`
		Date        string  `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}
	if req.Amount <= 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Amount must be positive", "")
		return
	}

	doc, err := h.store.AddExpense(r.Context(), firestore.ExpenseDoc{
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        req.Date,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to add expense")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to add expense", "")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, doc)
}

// ListTransactions handles GET /api/transactions
func (h *LedgerHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid limit parameter", "")
			return
		}
		limit = parsed
	}

	txns, err := h.store.ListTransactions(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions", "")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txns,
		"count":        len(txns),
	})
}

// Summary handles GET /api/summary
func (h *LedgerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.store.Summarize(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build summary")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to build summary", "")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, sum)
}

// InsightsHandler handles financial insight generation.
type InsightsHandler struct {
	store    Store
	insights Insights
	log      zerolog.Logger
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(store Store, insights Insights, log zerolog.Logger) *InsightsHandler {
	return &InsightsHandler{store: store, insights: insights, log: log}
}

// Generate handles POST /api/insights
func (h *InsightsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sum, err := h.store.Summarize(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build summary for insights")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to build summary", "")
		return
	}

	text, err := h.insights.Generate(ctx, sum)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to generate insights")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to generate insights", "")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"summary":  sum,
		"insights": text,
	})
}
