package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/warranty-service/internal/domain"
	"github.com/spec-kit/warranty-service/internal/repository"
)

// fakeStore is an in-memory Store used by the service tests. It mirrors
// the SQL layer's observable behavior: pgx.ErrNoRows for misses,
// 23505 errors for unique violations, and rollback of everything
// mutated inside a failed WithinTx.
type fakeStore struct {
	mu        sync.Mutex
	seq       int
	failAudit bool
	accounts map[string]*domain.Account
	products map[string]*domain.Product
	tickets  map[string]*domain.Ticket
	notes    []domain.RepairNote
	feedback map[string]*domain.Feedback
	logs     []domain.ActivityLog
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts: map[string]*domain.Account{},
		products: map[string]*domain.Product{},
		tickets:  map[string]*domain.Ticket{},
		feedback: map[string]*domain.Feedback{},
	}
}

func duplicateErr(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeStore) snapshot() *fakeStore {
	clone := newFakeStore()
	clone.seq = f.seq
	for id, a := range f.accounts {
		cp := *a
		clone.accounts[id] = &cp
	}
	for id, p := range f.products {
		cp := *p
		clone.products[id] = &cp
	}
	for id, t := range f.tickets {
		cp := *t
		clone.tickets[id] = &cp
	}
	for id, fb := range f.feedback {
		cp := *fb
		clone.feedback[id] = &cp
	}
	clone.notes = append([]domain.RepairNote{}, f.notes...)
	clone.logs = append([]domain.ActivityLog{}, f.logs...)
	return clone
}

func (f *fakeStore) restore(snap *fakeStore) {
	f.seq = snap.seq
	f.accounts = snap.accounts
	f.products = snap.products
	f.tickets = snap.tickets
	f.feedback = snap.feedback
	f.notes = snap.notes
	f.logs = snap.logs
}

func (f *fakeStore) Accounts() repository.AccountRepository         { return (*fakeAccounts)(f) }
func (f *fakeStore) Products() repository.ProductRepository         { return (*fakeProducts)(f) }
func (f *fakeStore) Tickets() repository.TicketRepository           { return (*fakeTickets)(f) }
func (f *fakeStore) RepairNotes() repository.RepairNoteRepository   { return (*fakeNotes)(f) }
func (f *fakeStore) Feedback() repository.FeedbackRepository        { return (*fakeFeedback)(f) }
func (f *fakeStore) ActivityLogs() repository.ActivityLogRepository { return (*fakeLogs)(f) }

func (f *fakeStore) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	f.mu.Lock()
	snap := f.snapshot()
	f.mu.Unlock()
	if err := fn(f); err != nil {
		f.mu.Lock()
		f.restore(snap)
		f.mu.Unlock()
		return err
	}
	return nil
}

// Seeding helpers.

func (f *fakeStore) addAccount(role domain.Role, active bool) *domain.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID("acct")
	account := &domain.Account{
		ID:        id,
		Name:      "Account " + id,
		Email:     id + "@example.com",
		Role:      role,
		Active:    active,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	f.accounts[id] = account
	cp := *account
	return &cp
}

func (f *fakeStore) addProduct(ownerID string, expiry time.Time) *domain.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID("prod")
	product := &domain.Product{
		ID:             id,
		OwnerID:        ownerID,
		Name:           "Product " + id,
		SerialNumber:   "SN-" + id,
		PurchaseDate:   expiry.Add(-12 * 30 * 24 * time.Hour),
		WarrantyMonths: 12,
		WarrantyExpiry: expiry,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	f.products[id] = product
	cp := *product
	return &cp
}

func (f *fakeStore) addTicket(mutate func(*domain.Ticket)) *domain.Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID("tkt")
	ticket := &domain.Ticket{
		ID:               id,
		TicketNumber:     "TKT-20260101-" + strings.ToUpper(id),
		IssueDescription: "does not power on",
		RepairType:       domain.RepairTypePaid,
		Status:           domain.TicketStatusOpen,
		Priority:         domain.TicketPriorityMedium,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
	if mutate != nil {
		mutate(ticket)
	}
	f.tickets[id] = ticket
	cp := *ticket
	return &cp
}

func (f *fakeStore) getTicket(id string) *domain.Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *f.tickets[id]
	return &cp
}

func (f *fakeStore) auditActions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	actions := make([]string, 0, len(f.logs))
	for _, entry := range f.logs {
		actions = append(actions, entry.Action)
	}
	return actions
}

// Account repository.

type fakeAccounts fakeStore

func (f *fakeAccounts) Create(ctx context.Context, account *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.accounts {
		if existing.Email == account.Email {
			return duplicateErr("accounts_email_key")
		}
	}
	account.ID = (*fakeStore)(f).nextID("acct")
	account.CreatedAt = time.Now().UTC()
	account.UpdatedAt = account.CreatedAt
	cp := *account
	f.accounts[account.ID] = &cp
	return nil
}

func (f *fakeAccounts) Update(ctx context.Context, account *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[account.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *account
	f.accounts[account.ID] = &cp
	return nil
}

func (f *fakeAccounts) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *account
	return &cp, nil
}

func (f *fakeAccounts) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.Email == email && !account.Deleted {
			cp := *account
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAccounts) List(ctx context.Context, filter repository.AccountFilter) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Account
	for _, account := range f.accounts {
		if account.Deleted {
			continue
		}
		if filter.Role != nil && account.Role != *filter.Role {
			continue
		}
		if filter.Active != nil && account.Active != *filter.Active {
			continue
		}
		result = append(result, *account)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Product repository.

type fakeProducts fakeStore

func (f *fakeProducts) Create(ctx context.Context, product *domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.products {
		if existing.SerialNumber == product.SerialNumber && !existing.Deleted {
			return duplicateErr("products_serial_number_live_key")
		}
	}
	product.ID = (*fakeStore)(f).nextID("prod")
	product.CreatedAt = time.Now().UTC()
	product.UpdatedAt = product.CreatedAt
	cp := *product
	f.products[product.ID] = &cp
	return nil
}

func (f *fakeProducts) Update(ctx context.Context, product *domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[product.ID]; !ok {
		return pgx.ErrNoRows
	}
	for _, existing := range f.products {
		if existing.ID != product.ID && existing.SerialNumber == product.SerialNumber && !existing.Deleted {
			return duplicateErr("products_serial_number_live_key")
		}
	}
	cp := *product
	f.products[product.ID] = &cp
	return nil
}

func (f *fakeProducts) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *product
	return &cp, nil
}

func (f *fakeProducts) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Product
	for _, product := range f.products {
		if product.OwnerID == ownerID && !product.Deleted {
			result = append(result, *product)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeProducts) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Product
	for _, product := range f.products {
		if product.Deleted {
			continue
		}
		if !product.WarrantyExpiry.Before(from) && product.WarrantyExpiry.Before(to) {
			result = append(result, *product)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Ticket repository.

type fakeTickets fakeStore

func (f *fakeTickets) Create(ctx context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.tickets {
		if existing.TicketNumber == ticket.TicketNumber {
			return duplicateErr("tickets_ticket_number_key")
		}
	}
	ticket.ID = (*fakeStore)(f).nextID("tkt")
	ticket.CreatedAt = time.Now().UTC()
	ticket.UpdatedAt = ticket.CreatedAt
	cp := *ticket
	f.tickets[ticket.ID] = &cp
	return nil
}

func (f *fakeTickets) Update(ctx context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *ticket
	f.tickets[ticket.ID] = &cp
	return nil
}

func (f *fakeTickets) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *ticket
	return &cp, nil
}

func (f *fakeTickets) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeTickets) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ticket := range f.tickets {
		if ticket.TicketNumber == number {
			cp := *ticket
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTickets) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range f.tickets {
		if ticket.Deleted {
			continue
		}
		if filter.CustomerID != nil && ticket.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.TechnicianID != nil && !ticket.AssignedTo(*filter.TechnicianID) {
			continue
		}
		if filter.ProductID != nil && ticket.ProductID != *filter.ProductID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, ticket.Priority) {
			continue
		}
		result = append(result, *ticket)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Priority.Rank() != result[j].Priority.Rank() {
			return result[i].Priority.Rank() > result[j].Priority.Rank()
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func containsStatus(list []domain.TicketStatus, s domain.TicketStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsPriority(list []domain.TicketPriority, p domain.TicketPriority) bool {
	for _, v := range list {
		if v == p {
			return true
		}
	}
	return false
}

// Repair note repository.

type fakeNotes fakeStore

func (f *fakeNotes) Create(ctx context.Context, note *domain.RepairNote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	note.ID = (*fakeStore)(f).nextID("note")
	note.CreatedAt = time.Now().UTC()
	f.notes = append(f.notes, *note)
	return nil
}

func (f *fakeNotes) ListByTicket(ctx context.Context, ticketID string) ([]domain.RepairNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.RepairNote
	for _, note := range f.notes {
		if note.TicketID == ticketID {
			result = append(result, note)
		}
	}
	return result, nil
}

// Feedback repository.

type fakeFeedback fakeStore

func (f *fakeFeedback) Create(ctx context.Context, feedback *domain.Feedback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.feedback[feedback.TicketID]; exists {
		return duplicateErr("feedback_ticket_id_key")
	}
	feedback.ID = (*fakeStore)(f).nextID("fb")
	feedback.CreatedAt = time.Now().UTC()
	cp := *feedback
	f.feedback[feedback.TicketID] = &cp
	return nil
}

func (f *fakeFeedback) GetByTicket(ctx context.Context, ticketID string) (*domain.Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	feedback, ok := f.feedback[ticketID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *feedback
	return &cp, nil
}

// Activity log repository.

type fakeLogs fakeStore

func (f *fakeLogs) Record(ctx context.Context, entry *domain.ActivityLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAudit {
		return errors.New("audit store unavailable")
	}
	entry.ID = (*fakeStore)(f).nextID("log")
	entry.CreatedAt = time.Now().UTC()
	f.logs = append(f.logs, *entry)
	return nil
}

func (f *fakeLogs) List(ctx context.Context, filter repository.ActivityLogFilter) ([]domain.ActivityLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.ActivityLog
	for _, entry := range f.logs {
		if filter.AccountID != nil && entry.AccountID != *filter.AccountID {
			continue
		}
		if filter.Action != nil && entry.Action != *filter.Action {
			continue
		}
		result = append(result, entry)
	}
	return result, nil
}
