// Package firestore persists classified transactions, incomes, and expenses
// in Cloud Firestore.
package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/adityarathi/finsight/internal/extract"
)

const (
	incomesCollection      = "incomes"
	expensesCollection     = "expenses"
	transactionsCollection = "transactions"
)

// IncomeDoc is one persisted income entry.
type IncomeDoc struct {
	ID        string    `firestore:"id"`
	Amount    float64   `firestore:"amount"`
	Source    string    `firestore:"source"`
	Date      string    `firestore:"date"`
	Note      string    `firestore:"note,omitempty"`
	CreatedAt time.Time `firestore:"createdAt"`
}

// ExpenseDoc is one persisted expense entry.
type ExpenseDoc struct {
	ID          string    `firestore:"id"`
	Amount      float64   `firestore:"amount"`
	Category    string    `firestore:"category"`
	Description string    `firestore:"description"`
	Date        string    `firestore:"date"`
	CreatedAt   time.Time `firestore:"createdAt"`
}

// TransactionDoc is one classified statement line persisted from the bulk
// extraction flow.
type TransactionDoc struct {
	ID           string    `firestore:"id"`
	Date         string    `firestore:"date"`
	Description  string    `firestore:"description"`
	Amount       float64   `firestore:"amount"`
	Type         string    `firestore:"type"`
	ClassifiedAs string    `firestore:"classifiedAs"`
	Category     string    `firestore:"category"`
	CreatedAt    time.Time `firestore:"createdAt"`
}

// Summary aggregates persisted entries for the insights prompt.
type Summary struct {
	TotalIncome  float64            `json:"totalIncome"`
	TotalExpense float64            `json:"totalExpense"`
	ByCategory   map[string]float64 `json:"byCategory"`
}

// Store wraps a Firestore client with the collection layout.
type Store struct {
	client *firestore.Client
}

// New connects to Firestore for the given project.
func New(ctx context.Context, projectID string) (*Store, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: create firestore client: %w", err)
	}
	return &Store{client: client}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// AddIncome persists one income entry, assigning its ID and timestamps.
func (s *Store) AddIncome(ctx context.Context, doc IncomeDoc) (IncomeDoc, error) {
	doc.ID = uuid.NewString()
	doc.CreatedAt = time.Now().UTC()
	if doc.Source == "" {
		doc.Source = extract.DefaultIncomeSource
	}
	if doc.Date == "" {
		doc.Date = extract.Today()
	}

	if _, err := s.client.Collection(incomesCollection).Doc(doc.ID).Set(ctx, doc); err != nil {
		return IncomeDoc{}, fmt.Errorf("store: add income: %w", err)
	}
	return doc, nil
}

// AddExpense persists one expense entry. An empty category is filled in by
// the keyword guesser before the write.
func (s *Store) AddExpense(ctx context.Context, doc ExpenseDoc) (ExpenseDoc, error) {
	doc.ID = uuid.NewString()
	doc.CreatedAt = time.Now().UTC()
	if doc.Category == "" {
		doc.Category = extract.GuessCategory(doc.Description)
	}
	if doc.Date == "" {
		doc.Date = extract.Today()
	}

	if _, err := s.client.Collection(expensesCollection).Doc(doc.ID).Set(ctx, doc); err != nil {
		return ExpenseDoc{}, fmt.Errorf("store: add expense: %w", err)
	}
	return doc, nil
}

// SaveTransactions persists a batch of classified transactions with a bulk
// writer. Each doc gets a category from the keyword guesser.
func (s *Store) SaveTransactions(ctx context.Context, txns []extract.ClassifiedTransaction) ([]TransactionDoc, error) {
	docs := make([]TransactionDoc, 0, len(txns))
	if len(txns) == 0 {
		return docs, nil
	}

	bw := s.client.BulkWriter(ctx)
	coll := s.client.Collection(transactionsCollection)
	now := time.Now().UTC()

	for _, t := range txns {
		doc := TransactionDoc{
			ID:           uuid.NewString(),
			Date:         t.Date,
			Description:  t.Description,
			Amount:       t.Amount,
			Type:         string(t.Type),
			ClassifiedAs: string(t.ClassifiedAs),
			Category:     extract.GuessCategory(t.Description),
			CreatedAt:    now,
		}
		if _, err := bw.Set(coll.Doc(doc.ID), doc); err != nil {
			return nil, fmt.Errorf("store: enqueue transaction: %w", err)
		}
		docs = append(docs, doc)
	}

	bw.End()
	return docs, nil
}

// ListTransactions returns persisted transactions, newest first, capped at
// limit (0 means a default page of 100).
func (s *Store) ListTransactions(ctx context.Context, limit int) ([]TransactionDoc, error) {
	if limit <= 0 {
		limit = 100
	}

	iter := s.client.Collection(transactionsCollection).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var out []TransactionDoc
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("store: list transactions: %w", err)
		}

		var doc TransactionDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("store: decode transaction %s: %w", snap.Ref.ID, err)
		}
		out = append(out, doc)
	}
	return out, nil
}

// Summarize totals incomes and expenses and breaks expenses down by
// category.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	sum := Summary{ByCategory: make(map[string]float64)}

	incomes := s.client.Collection(incomesCollection).Documents(ctx)
	defer incomes.Stop()
	for {
		snap, err := incomes.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return Summary{}, fmt.Errorf("store: summarize incomes: %w", err)
		}

		var doc IncomeDoc
		if err := snap.DataTo(&doc); err != nil {
			return Summary{}, fmt.Errorf("store: decode income %s: %w", snap.Ref.ID, err)
		}
		sum.TotalIncome += doc.Amount
	}

	expenses := s.client.Collection(expensesCollection).Documents(ctx)
	defer expenses.Stop()
	for {
		snap, err := expenses.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return Summary{}, fmt.Errorf("store: summarize expenses: %w", err)
		}

		var doc ExpenseDoc
		if err := snap.DataTo(&doc); err != nil {
			return Summary{}, fmt.Errorf("store: decode expense %s: %w", snap.Ref.ID, err)
		}
		sum.TotalExpense += doc.Amount
		sum.ByCategory[doc.Category] += doc.Amount
	}

	return sum, nil
}
