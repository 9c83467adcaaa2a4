package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adityarathi/finsight/internal/extract"
	"github.com/adityarathi/finsight/internal/store/firestore"
)

type fakePipeline struct {
	amount     *extract.ExtractedAmount
	amountErr  error
	txns       []extract.ClassifiedTransaction
	txnsErr    error
	lastUpload extract.Upload
}

func (f *fakePipeline) ExtractAmount(ctx context.Context, u extract.Upload) (*extract.ExtractedAmount, error) {
	f.lastUpload = u
	return f.amount, f.amountErr
}

func (f *fakePipeline) ExtractTransactions(ctx context.Context, u extract.Upload) ([]extract.ClassifiedTransaction, error) {
	f.lastUpload = u
	return f.txns, f.txnsErr
}

type fakeStore struct {
	incomes  []firestore.IncomeDoc
	expenses []firestore.ExpenseDoc
	saved    []extract.ClassifiedTransaction
	summary  firestore.Summary
	err      error
}

func (f *fakeStore) AddIncome(ctx context.Context, doc firestore.IncomeDoc) (firestore.IncomeDoc, error) {
	if f.err != nil {
		return firestore.IncomeDoc{}, f.err
	}
	doc.ID = "income-1"
	f.incomes = append(f.incomes, doc)
	return doc, nil
}

func (f *fakeStore) AddExpense(ctx context.Context, doc firestore.ExpenseDoc) (firestore.ExpenseDoc, error) {
	if f.err != nil {
		return firestore.ExpenseDoc{}, f.err
	}
	doc.ID = "expense-1"
	if doc.Category == "" {
		doc.Category = extract.GuessCategory(doc.Description)
	}
	f.expenses = append(f.expenses, doc)
	return doc, nil
}

func (f *fakeStore) SaveTransactions(ctx context.Context, txns []extract.ClassifiedTransaction) ([]firestore.TransactionDoc, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.saved = append(f.saved, txns...)
	docs := make([]firestore.TransactionDoc, len(txns))
	return docs, nil
}

func (f *fakeStore) ListTransactions(ctx context.Context, limit int) ([]firestore.TransactionDoc, error) {
	return nil, f.err
}

func (f *fakeStore) Summarize(ctx context.Context) (firestore.Summary, error) {
	return f.summary, f.err
}

type fakeArchive struct {
	stored   []string
	objects  map[string][]byte
	fetchErr error
}

func (f *fakeArchive) Store(ctx context.Context, filename string, data []byte) (string, error) {
	f.stored = append(f.stored, filename)
	return "2026/08/31/fixed-" + filename, nil
}

func (f *fakeArchive) Fetch(ctx context.Context, objectName string) ([]byte, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	data, ok := f.objects[objectName]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

type fakeInsights struct {
	text string
	err  error
}

func (f *fakeInsights) Generate(ctx context.Context, sum firestore.Summary) (string, error) {
	return f.text, f.err
}

// multipartRequest builds a POST with a single file part under the receipt
// field.
func multipartRequest(t *testing.T, target, filename string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(uploadField, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestExtractAmountSuccess(t *testing.T) {
	p := &fakePipeline{amount: &extract.ExtractedAmount{Amount: 2500, Source: extract.SourceHeuristic}}
	h := NewExtractHandler(p, nil, nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.ExtractAmount(rec, multipartRequest(t, "/api/extract/amount", "receipt.png", []byte("fake-image")))

	require.Equal(t, http.StatusOK, rec.Code)

	var got extract.ExtractedAmount
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2500.0, got.Amount)
	assert.Equal(t, extract.SourceHeuristic, got.Source)
	assert.Equal(t, "receipt.png", p.lastUpload.Filename)
}

func TestExtractAmountMissingFile(t *testing.T) {
	h := NewExtractHandler(&fakePipeline{}, nil, nil, zerolog.Nop())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("other", "value"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/extract/amount", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	h.ExtractAmount(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExtractAmountErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantHint   bool
	}{
		{name: "invalid input", err: &extract.Error{Kind: extract.KindInvalidInput, Message: "file too large"}, wantStatus: http.StatusBadRequest},
		{name: "no text", err: &extract.Error{Kind: extract.KindNoText, Message: "no text", Hint: "retry with a clearer scan"}, wantStatus: http.StatusUnprocessableEntity, wantHint: true},
		{name: "parse", err: &extract.Error{Kind: extract.KindParse, Message: "no amount in reply"}, wantStatus: http.StatusUnprocessableEntity},
		{name: "collaborator", err: &extract.Error{Kind: extract.KindCollaborator, Message: "llm call failed"}, wantStatus: http.StatusBadGateway},
		{name: "unknown", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewExtractHandler(&fakePipeline{amountErr: tt.err}, nil, nil, zerolog.Nop())

			rec := httptest.NewRecorder()
			h.ExtractAmount(rec, multipartRequest(t, "/api/extract/amount", "a.pdf", []byte("data")))

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if tt.wantHint {
				assert.NotEmpty(t, body["hint"])
			} else {
				assert.Empty(t, body["hint"])
			}
		})
	}
}

func TestExtractAmountArchivesOnSuccess(t *testing.T) {
	archive := &fakeArchive{}
	p := &fakePipeline{amount: &extract.ExtractedAmount{Amount: 100, Source: extract.SourceLLM}}
	h := NewExtractHandler(p, nil, archive, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.ExtractAmount(rec, multipartRequest(t, "/api/extract/amount", "receipt.pdf", []byte("data")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"receipt.pdf"}, archive.stored)
}

func TestExtractAmountSkipsArchiveOnFailure(t *testing.T) {
	// Rejected and failed uploads never reach the archive bucket.
	archive := &fakeArchive{}
	p := &fakePipeline{amountErr: &extract.Error{Kind: extract.KindInvalidInput, Message: "file too large"}}
	h := NewExtractHandler(p, nil, archive, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.ExtractAmount(rec, multipartRequest(t, "/api/extract/amount", "huge.pdf", []byte("data")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, archive.stored)
}

func TestExtractTransactions(t *testing.T) {
	txns := []extract.ClassifiedTransaction{
		{Date: "2026-03-01", Description: "Zomato", Amount: 450, Type: extract.TypeDebit, ClassifiedAs: extract.ClassExpense},
	}
	h := NewExtractHandler(&fakePipeline{txns: txns}, nil, nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.ExtractTransactions(rec, multipartRequest(t, "/api/extract/transactions", "stmt.pdf", []byte("data")))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Transactions []extract.ClassifiedTransaction `json:"transactions"`
		Count        int                             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "Zomato", body.Transactions[0].Description)
}

func TestExtractTransactionsPersist(t *testing.T) {
	txns := []extract.ClassifiedTransaction{
		{Date: "2026-03-01", Description: "Salary", Amount: 45000, Type: extract.TypeCredit, ClassifiedAs: extract.ClassIncome},
	}
	store := &fakeStore{}
	h := NewExtractHandler(&fakePipeline{txns: txns}, store, nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.ExtractTransactions(rec, multipartRequest(t, "/api/extract/transactions?persist=true", "stmt.pdf", []byte("data")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, store.saved, 1)
}

func TestExtractTransactionsPersistWithoutStore(t *testing.T) {
	h := NewExtractHandler(&fakePipeline{}, nil, nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.ExtractTransactions(rec, multipartRequest(t, "/api/extract/transactions?persist=true", "stmt.pdf", []byte("data")))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetReceipt(t *testing.T) {
	archive := &fakeArchive{objects: map[string][]byte{
		"2026/08/31/fixed-receipt.pdf": []byte("%PDF-1.4 bytes"),
	}}
	h := NewExtractHandler(&fakePipeline{}, nil, archive, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.GetReceipt(rec, httptest.NewRequest(http.MethodGet, "/api/receipts/2026/08/31/fixed-receipt.pdf", nil),
		"2026/08/31/fixed-receipt.pdf")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.4 bytes", rec.Body.String())
}

func TestGetReceiptNotFound(t *testing.T) {
	h := NewExtractHandler(&fakePipeline{}, nil, &fakeArchive{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.GetReceipt(rec, httptest.NewRequest(http.MethodGet, "/api/receipts/missing.pdf", nil), "missing.pdf")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetReceiptWithoutArchive(t *testing.T) {
	h := NewExtractHandler(&fakePipeline{}, nil, nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.GetReceipt(rec, httptest.NewRequest(http.MethodGet, "/api/receipts/a.pdf", nil), "a.pdf")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAddIncome(t *testing.T) {
	store := &fakeStore{}
	h := NewLedgerHandler(store, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/incomes",
		strings.NewReader(`{"amount": 45000, "source": "Salary", "date": "2026-08-01"}`))
	rec := httptest.NewRecorder()
	h.AddIncome(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.incomes, 1)
	assert.Equal(t, 45000.0, store.incomes[0].Amount)
}

func TestAddIncomeRejectsNonPositiveAmount(t *testing.T) {
	h := NewLedgerHandler(&fakeStore{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/incomes", strings.NewReader(`{"amount": 0}`))
	rec := httptest.NewRecorder()
	h.AddIncome(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddExpenseGuessesCategory(t *testing.T) {
	store := &fakeStore{}
	h := NewLedgerHandler(store, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/expenses",
		strings.NewReader(`{"amount": 450, "description": "Zomato order #123"}`))
	rec := httptest.NewRecorder()
	h.AddExpense(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.expenses, 1)
	assert.Equal(t, "Food", store.expenses[0].Category)
}

func TestSummary(t *testing.T) {
	store := &fakeStore{summary: firestore.Summary{
		TotalIncome:  45000,
		TotalExpense: 30000,
		ByCategory:   map[string]float64{"Rent": 15000},
	}}
	h := NewLedgerHandler(store, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Summary(rec, httptest.NewRequest(http.MethodGet, "/api/summary", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got firestore.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 45000.0, got.TotalIncome)
	assert.Equal(t, 15000.0, got.ByCategory["Rent"])
}

func TestInsights(t *testing.T) {
	store := &fakeStore{summary: firestore.Summary{TotalIncome: 100}}
	h := NewInsightsHandler(store, &fakeInsights{text: "Save more."}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Generate(rec, httptest.NewRequest(http.MethodPost, "/api/insights", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Insights string `json:"insights"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Save more.", body.Insights)
}

func TestInsightsGeneratorFailure(t *testing.T) {
	h := NewInsightsHandler(&fakeStore{}, &fakeInsights{err: errors.New("unavailable")}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Generate(rec, httptest.NewRequest(http.MethodPost, "/api/insights", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
