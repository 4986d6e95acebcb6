package recurring_test

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/nate-dsc/finsync/internal/models"
	"github.com/nate-dsc/finsync/internal/recurring"
)

// In-memory store fakes. Mutations follow the same atomicity rules as the
// pgx repositories: a failed post leaves every fake untouched.

type fakeLedger struct {
	cards  map[int]*models.Card
	nextID int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{cards: make(map[int]*models.Card), nextID: 1}
}

func (f *fakeLedger) CreateCard(_ context.Context, card *models.Card) error {
	card.CardID = f.nextID
	f.nextID++
	card.CreatedAt = time.Now()
	stored := *card
	f.cards[card.CardID] = &stored
	return nil
}

func (f *fakeLedger) GetCard(_ context.Context, cardID int) (*models.Card, error) {
	card, ok := f.cards[cardID]
	if !ok {
		return nil, recurring.ErrCardNotFound
	}
	cp := *card
	return &cp, nil
}

func (f *fakeLedger) Reserve(_ context.Context, cardID int, amount int64) error {
	if amount <= 0 {
		return nil
	}
	card, ok := f.cards[cardID]
	if !ok {
		return recurring.ErrCardNotFound
	}
	card.LimitUsed += amount
	return nil
}

type fakeCategories struct {
	cats   map[int]*models.Category
	nextID int
}

func newFakeCategories() *fakeCategories {
	return &fakeCategories{cats: make(map[int]*models.Category), nextID: 1}
}

func (f *fakeCategories) CreateCategory(_ context.Context, category *models.Category) error {
	category.CategoryID = f.nextID
	f.nextID++
	stored := *category
	f.cats[category.CategoryID] = &stored
	return nil
}

func (f *fakeCategories) GetCategory(_ context.Context, categoryID int) (*models.Category, error) {
	cat, ok := f.cats[categoryID]
	if !ok {
		return nil, recurring.ErrCategoryNotFound
	}
	cp := *cat
	return &cp, nil
}

type fakeWarnings struct {
	current  *models.CreditWarning
	setCalls int
}

func (f *fakeWarnings) SetWarning(_ context.Context, w *models.CreditWarning) error {
	cp := *w
	f.current = &cp
	f.setCalls++
	return nil
}

func (f *fakeWarnings) ClearWarning(_ context.Context) error {
	f.current = nil
	return nil
}

func (f *fakeWarnings) CurrentWarning(_ context.Context) (*models.CreditWarning, error) {
	if f.current == nil {
		return nil, nil
	}
	cp := *f.current
	return &cp, nil
}

type fakeDefStore struct {
	defs      map[int]*models.RecurringDefinition
	order     []int
	nextDefID int
	txns      []*models.Transaction
	nextTxnID int
	ledger    *fakeLedger
	cats      *fakeCategories

	listErr    error
	failPostAt int // 1-based post call that fails; 0 disables
	postErr    error
	postCalls  int
}

func newFakeDefStore(ledger *fakeLedger) *fakeDefStore {
	return &fakeDefStore{
		defs:      make(map[int]*models.RecurringDefinition),
		nextDefID: 1,
		nextTxnID: 1,
		ledger:    ledger,
	}
}

func (f *fakeDefStore) ListDefinitions(_ context.Context) ([]*models.RecurringDefinition, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*models.RecurringDefinition, 0, len(f.order))
	for _, id := range f.order {
		cp := *f.defs[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeDefStore) CreateDefinition(_ context.Context, def *models.RecurringDefinition) error {
	def.DefinitionID = f.nextDefID
	f.nextDefID++
	def.CreatedAt = time.Now()
	stored := *def
	f.defs[def.DefinitionID] = &stored
	f.order = append(f.order, def.DefinitionID)
	return nil
}

func (f *fakeDefStore) DeleteDefinition(_ context.Context, definitionID int, cascade bool) error {
	if _, ok := f.defs[definitionID]; !ok {
		return recurring.ErrDefinitionNotFound
	}
	if cascade {
		kept := f.txns[:0]
		for _, txn := range f.txns {
			if txn.RecurringID == nil || *txn.RecurringID != definitionID {
				kept = append(kept, txn)
			}
		}
		f.txns = kept
	} else {
		for _, txn := range f.txns {
			if txn.RecurringID != nil && *txn.RecurringID == definitionID {
				txn.RecurringID = nil
			}
		}
	}
	delete(f.defs, definitionID)
	for i, id := range f.order {
		if id == definitionID {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeDefStore) PostOccurrence(_ context.Context, txn *models.Transaction, definitionID int, processedAt time.Time) error {
	if err := f.prePost(); err != nil {
		return err
	}
	def, ok := f.defs[definitionID]
	if !ok {
		return recurring.ErrDefinitionNotFound
	}
	f.append(txn)
	at := processedAt
	def.LastProcessedAt = &at
	return nil
}

func (f *fakeDefStore) PostCardOccurrence(_ context.Context, txn *models.Transaction, definitionID int, processedAt time.Time, cardID int, amount int64) error {
	if err := f.prePost(); err != nil {
		return err
	}
	def, ok := f.defs[definitionID]
	if !ok {
		return recurring.ErrDefinitionNotFound
	}
	card, ok := f.ledger.cards[cardID]
	if !ok {
		return recurring.ErrCardNotFound
	}

	available := card.MaxLimit - card.LimitUsed
	if available < amount {
		return &recurring.InsufficientCreditError{
			CardID:          cardID,
			CardName:        card.Name,
			AttemptedAmount: amount,
			AvailableLimit:  available,
		}
	}

	card.LimitUsed += amount
	f.append(txn)
	at := processedAt
	def.LastProcessedAt = &at
	return nil
}

func (f *fakeDefStore) prePost() error {
	f.postCalls++
	if f.failPostAt != 0 && f.postCalls == f.failPostAt {
		return f.postErr
	}
	return nil
}

func (f *fakeDefStore) append(txn *models.Transaction) {
	txn.TransactionID = f.nextTxnID
	f.nextTxnID++
	txn.CreatedAt = time.Now()
	cp := *txn
	f.txns = append(f.txns, &cp)
	if f.cats != nil {
		if cat, ok := f.cats.cats[txn.CategoryID]; ok {
			cat.UsageCount++
		}
	}
}

func (f *fakeDefStore) txnsFor(definitionID int) []*models.Transaction {
	var out []*models.Transaction
	for _, txn := range f.txns {
		if txn.RecurringID != nil && *txn.RecurringID == definitionID {
			out = append(out, txn)
		}
	}
	return out
}

type testEnv struct {
	svc      *recurring.Service
	store    *fakeDefStore
	ledger   *fakeLedger
	cats     *fakeCategories
	warnings *fakeWarnings
}

func newTestEnv() *testEnv {
	ledger := newFakeLedger()
	store := newFakeDefStore(ledger)
	cats := newFakeCategories()
	store.cats = cats
	warnings := &fakeWarnings{}
	svc := recurring.NewService(store, ledger, cats, warnings, zerolog.Nop())
	return &testEnv{svc: svc, store: store, ledger: ledger, cats: cats, warnings: warnings}
}
