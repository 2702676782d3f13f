package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/warranty-service/internal/domain"
	"github.com/spec-kit/warranty-service/internal/events"
	"github.com/spec-kit/warranty-service/internal/repository"
	apperrors "github.com/spec-kit/warranty-service/pkg/util"
)

// allowedTransitions is the full status graph for UpdateStatus. Closed is
// absent as a target on purpose: a ticket only closes through Pay.
var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:            {domain.TicketStatusInProgress, domain.TicketStatusRejected},
	domain.TicketStatusInProgress:      {domain.TicketStatusWaitingForParts, domain.TicketStatusCompleted, domain.TicketStatusRejected},
	domain.TicketStatusWaitingForParts: {domain.TicketStatusInProgress, domain.TicketStatusCompleted},
}

func canTransition(from, to domain.TicketStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type TicketService struct {
	store        repository.Store
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	numberPrefix string
}

func NewTicketService(store repository.Store, dispatcher events.Dispatcher, logger *zap.Logger, numberPrefix string) *TicketService {
	if numberPrefix == "" {
		numberPrefix = "TKT"
	}
	return &TicketService{
		store:        store,
		dispatcher:   dispatcher,
		logger:       logger,
		numberPrefix: numberPrefix,
	}
}

type TicketCreateInput struct {
	ProductID        string
	IssueDescription string
	RepairType       domain.RepairType
	Priority         domain.TicketPriority
}

type TicketStatusInput struct {
	Status     domain.TicketStatus
	RepairCost *float64
}

type TicketListOptions struct {
	CustomerID   string
	TechnicianID string
	Statuses     []domain.TicketStatus
	Priorities   []domain.TicketPriority
	Limit        int
	Offset       int
}

// TicketDetail bundles a ticket with its notes and feedback for the
// detail endpoints. Feedback is nil until the customer leaves one.
type TicketDetail struct {
	Ticket   *domain.Ticket
	Notes    []domain.RepairNote
	Feedback *domain.Feedback
}

// Create opens a ticket on one of the caller's products. The warranty
// coverage decision is taken here, once, and frozen on the ticket.
func (s *TicketService) Create(ctx context.Context, customer *domain.Account, input TicketCreateInput) (*domain.Ticket, error) {
	if err := requireCustomer(customer); err != nil {
		return nil, err
	}

	description := strings.TrimSpace(input.IssueDescription)
	if description == "" {
		return nil, apperrors.NewValidationError("issue description is required", nil)
	}
	if input.RepairType != domain.RepairTypeWarranty && input.RepairType != domain.RepairTypePaid {
		return nil, apperrors.NewValidationError("repair type must be warranty or paid", nil)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !domain.ValidTicketPriority(priority) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid priority %q", priority), nil)
	}

	product, err := s.store.Products().GetByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product", nil)
		}
		return nil, apperrors.ToDomainError(err)
	}
	if product.Deleted || product.OwnerID != customer.ID {
		return nil, apperrors.NewForbidden("product does not belong to this account")
	}

	now := time.Now().UTC()
	expired := product.WarrantyExpired(now)
	if input.RepairType == domain.RepairTypeWarranty && expired {
		return nil, apperrors.NewPolicyViolation("warranty repair requested for an expired warranty")
	}

	ticket := &domain.Ticket{
		TicketNumber:     s.nextTicketNumber(now),
		CustomerID:       customer.ID,
		ProductID:        product.ID,
		IssueDescription: description,
		RepairType:       input.RepairType,
		Priority:         priority,
		Status:           domain.TicketStatusOpen,
		WarrantyCovered:  input.RepairType == domain.RepairTypeWarranty && !expired,
	}

	// Ticket numbers are random; retry a couple of times on the off
	// chance two creations collide on the same day.
	for attempt := 0; ; attempt++ {
		err = s.store.Tickets().Create(ctx, ticket)
		if err == nil {
			break
		}
		if repository.IsDuplicate(err) && attempt < 2 {
			ticket.TicketNumber = s.nextTicketNumber(now)
			continue
		}
		return nil, apperrors.ToDomainError(err)
	}

	s.publish(ctx, events.EventTicketCreated, customer.ID, events.TicketCreatedPayload{
		TicketID:        ticket.ID,
		TicketNumber:    ticket.TicketNumber,
		ProductID:       ticket.ProductID,
		Priority:        ticket.Priority,
		WarrantyCovered: ticket.WarrantyCovered,
	})
	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("ticket_number", ticket.TicketNumber),
		zap.Bool("warranty_covered", ticket.WarrantyCovered))
	return ticket, nil
}

// AssignTechnician sets or replaces the technician on a ticket. Assigning
// an open ticket also moves it to in_progress. Re-assignment while work
// is underway keeps the current status and history.
func (s *TicketService) AssignTechnician(ctx context.Context, admin *domain.Account, ticketID, technicianID string) (*domain.Ticket, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}

	var updated *domain.Ticket
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		technician, err := tx.Accounts().GetByID(ctx, technicianID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("technician", nil)
			}
			return apperrors.ToDomainError(err)
		}
		if technician.Deleted {
			return apperrors.NewNotFound("technician", nil)
		}
		if !technician.IsTechnician() {
			return apperrors.NewConflict("account is not a technician", nil)
		}
		if !technician.Active {
			return apperrors.NewConflict("technician account is deactivated", nil)
		}

		ticket, err := s.lockTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if ticket.Status.Terminal() {
			return apperrors.NewInvalidTransition(fmt.Sprintf("cannot assign a %s ticket", ticket.Status), nil)
		}

		ticket.TechnicianID = &technician.ID
		if ticket.Status == domain.TicketStatusOpen {
			ticket.Status = domain.TicketStatusInProgress
		}
		ticket.UpdatedAt = time.Now().UTC()
		if err := tx.Tickets().Update(ctx, ticket); err != nil {
			return apperrors.ToDomainError(err)
		}

		if err := s.audit(ctx, tx, admin.ID, domain.ActionTicketAssigned, ticket.ID,
			fmt.Sprintf("ticket %s assigned to technician %s", ticket.TicketNumber, technician.ID)); err != nil {
			return err
		}
		updated = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventTicketAssigned, admin.ID, events.TicketAssignedPayload{
		TicketID:     updated.ID,
		TechnicianID: technicianID,
	})
	return updated, nil
}

// UpdateStatus moves a ticket along the repair workflow. Only the
// assigned technician or an admin may call it, and completing a ticket
// that is not covered by warranty requires a repair cost.
func (s *TicketService) UpdateStatus(ctx context.Context, actor *domain.Account, ticketID string, input TicketStatusInput) (*domain.Ticket, error) {
	if err := requireTechnicianOrAdmin(actor); err != nil {
		return nil, err
	}
	if !domain.ValidTicketStatus(input.Status) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid status %q", input.Status), nil)
	}
	if input.RepairCost != nil && *input.RepairCost < 0 {
		return nil, apperrors.NewValidationError("repair cost cannot be negative", nil)
	}

	var updated *domain.Ticket
	var previous domain.TicketStatus
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		ticket, err := s.lockTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && !ticket.AssignedTo(actor.ID) {
			return apperrors.NewForbidden("ticket is not assigned to this account")
		}
		if ticket.Status.Terminal() {
			return apperrors.NewInvalidTransition(fmt.Sprintf("ticket is already %s", ticket.Status), nil)
		}
		if !canTransition(ticket.Status, input.Status) {
			return apperrors.NewInvalidTransition(fmt.Sprintf("cannot move ticket from %s to %s", ticket.Status, input.Status), nil)
		}
		if input.Status == domain.TicketStatusCompleted && !ticket.WarrantyCovered &&
			input.RepairCost == nil && ticket.RepairCost == nil {
			return apperrors.NewMissingRepairCost("repair cost is required to complete a non-warranty repair")
		}

		previous = ticket.Status
		if input.RepairCost != nil {
			ticket.RepairCost = input.RepairCost
		}
		ticket.Status = input.Status
		ticket.UpdatedAt = time.Now().UTC()
		if err := tx.Tickets().Update(ctx, ticket); err != nil {
			return apperrors.ToDomainError(err)
		}

		if err := s.audit(ctx, tx, actor.ID, domain.ActionTicketStatusUpdated, ticket.ID,
			fmt.Sprintf("ticket %s status changed from %s to %s", ticket.TicketNumber, previous, ticket.Status)); err != nil {
			return err
		}
		updated = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventTicketStatusChanged, actor.ID, events.TicketStatusChangedPayload{
		TicketID:  updated.ID,
		OldStatus: previous,
		NewStatus: updated.Status,
	})
	return updated, nil
}

// Pay settles a completed paid repair and closes the ticket. It is the
// only path into the closed status.
func (s *TicketService) Pay(ctx context.Context, customer *domain.Account, ticketID, reference string) (*domain.Ticket, error) {
	if err := requireCustomer(customer); err != nil {
		return nil, err
	}

	var updated *domain.Ticket
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		ticket, err := s.lockTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if ticket.CustomerID != customer.ID {
			return apperrors.NewForbidden("ticket does not belong to this account")
		}
		if ticket.WarrantyCovered {
			return apperrors.NewNotApplicable("warranty repairs are not billable")
		}
		if ticket.Paid {
			return apperrors.NewAlreadyPaid("ticket has already been paid")
		}
		if ticket.Status != domain.TicketStatusCompleted {
			return apperrors.NewInvalidState(fmt.Sprintf("ticket is %s, payment requires completed", ticket.Status))
		}

		ticket.Paid = true
		ticket.Status = domain.TicketStatusClosed
		ticket.UpdatedAt = time.Now().UTC()
		if err := tx.Tickets().Update(ctx, ticket); err != nil {
			return apperrors.ToDomainError(err)
		}

		amount := 0.0
		if ticket.RepairCost != nil {
			amount = *ticket.RepairCost
		}
		description := fmt.Sprintf("payment of %.2f recorded for ticket %s", amount, ticket.TicketNumber)
		if reference != "" {
			description += fmt.Sprintf(" (reference %s)", reference)
		}
		if err := s.audit(ctx, tx, customer.ID, domain.ActionPaymentProcessed, ticket.ID, description); err != nil {
			return err
		}
		updated = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventPaymentProcessed, customer.ID, events.PaymentProcessedPayload{
		TicketID:  updated.ID,
		Amount:    updated.RepairCost,
		Reference: reference,
	})
	return updated, nil
}

// AddNote appends a repair note. Notes are append-only; the write also
// bumps the ticket's updated_at so list ordering reflects activity.
func (s *TicketService) AddNote(ctx context.Context, actor *domain.Account, ticketID, text string) (*domain.RepairNote, error) {
	if err := requireTechnicianOrAdmin(actor); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("note text is required", nil)
	}

	var note *domain.RepairNote
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		ticket, err := s.lockTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && !ticket.AssignedTo(actor.ID) {
			return apperrors.NewForbidden("ticket is not assigned to this account")
		}

		note = &domain.RepairNote{
			TicketID: ticket.ID,
			AuthorID: actor.ID,
			Text:     text,
		}
		if err := tx.RepairNotes().Create(ctx, note); err != nil {
			return apperrors.ToDomainError(err)
		}

		ticket.UpdatedAt = note.CreatedAt
		if err := tx.Tickets().Update(ctx, ticket); err != nil {
			return apperrors.ToDomainError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

// AddFeedback records the customer's one-time rating on a finished
// ticket. The unique index on feedback.ticket_id backs up the in-tx
// duplicate check.
func (s *TicketService) AddFeedback(ctx context.Context, customer *domain.Account, ticketID string, rating int, comment string) (*domain.Feedback, error) {
	if err := requireCustomer(customer); err != nil {
		return nil, err
	}
	if rating < domain.MinRating || rating > domain.MaxRating {
		return nil, apperrors.NewValidationError(fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating), nil)
	}

	var feedback *domain.Feedback
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		ticket, err := s.lockTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if ticket.CustomerID != customer.ID {
			return apperrors.NewForbidden("ticket does not belong to this account")
		}
		if !ticket.AwaitingPaymentOrFeedback() {
			return apperrors.NewInvalidState(fmt.Sprintf("feedback requires a completed or closed ticket, got %s", ticket.Status))
		}

		if _, err := tx.Feedback().GetByTicket(ctx, ticket.ID); err == nil {
			return apperrors.NewAlreadyExists("feedback", nil)
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ToDomainError(err)
		}

		feedback = &domain.Feedback{
			TicketID: ticket.ID,
			AuthorID: customer.ID,
			Rating:   rating,
			Comment:  strings.TrimSpace(comment),
		}
		if err := tx.Feedback().Create(ctx, feedback); err != nil {
			if repository.IsDuplicate(err) {
				return apperrors.NewAlreadyExists("feedback", nil)
			}
			return apperrors.ToDomainError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventFeedbackAdded, customer.ID, events.FeedbackAddedPayload{
		TicketID: feedback.TicketID,
		Rating:   feedback.Rating,
	})
	return feedback, nil
}

// ListForCustomer returns the caller's own tickets in triage order.
func (s *TicketService) ListForCustomer(ctx context.Context, customer *domain.Account, opts TicketListOptions) ([]domain.Ticket, error) {
	if err := requireCustomer(customer); err != nil {
		return nil, err
	}
	opts.CustomerID = customer.ID
	opts.TechnicianID = ""
	return s.list(ctx, opts)
}

// ListForTechnician returns the tickets assigned to the caller.
func (s *TicketService) ListForTechnician(ctx context.Context, technician *domain.Account, opts TicketListOptions) ([]domain.Ticket, error) {
	if err := requireTechnicianOrAdmin(technician); err != nil {
		return nil, err
	}
	opts.TechnicianID = technician.ID
	opts.CustomerID = ""
	return s.list(ctx, opts)
}

// ListAll is the admin view across all customers and technicians.
func (s *TicketService) ListAll(ctx context.Context, admin *domain.Account, opts TicketListOptions) ([]domain.Ticket, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	return s.list(ctx, opts)
}

func (s *TicketService) list(ctx context.Context, opts TicketListOptions) ([]domain.Ticket, error) {
	for _, status := range opts.Statuses {
		if !domain.ValidTicketStatus(status) {
			return nil, apperrors.NewValidationError(fmt.Sprintf("invalid status %q", status), nil)
		}
	}
	for _, priority := range opts.Priorities {
		if !domain.ValidTicketPriority(priority) {
			return nil, apperrors.NewValidationError(fmt.Sprintf("invalid priority %q", priority), nil)
		}
	}
	filter := repository.TicketFilter{
		Statuses:   opts.Statuses,
		Priorities: opts.Priorities,
		Limit:      opts.Limit,
		Offset:     opts.Offset,
	}
	if opts.CustomerID != "" {
		filter.CustomerID = &opts.CustomerID
	}
	if opts.TechnicianID != "" {
		filter.TechnicianID = &opts.TechnicianID
	}
	tickets, err := s.store.Tickets().ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return tickets, nil
}

// GetDetail loads a ticket with notes and feedback. Customers see their
// own tickets, technicians the ones assigned to them, admins any.
func (s *TicketService) GetDetail(ctx context.Context, actor *domain.Account, ticketID string) (*TicketDetail, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	ticket, err := s.store.Tickets().GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, apperrors.ToDomainError(err)
	}
	if ticket.Deleted {
		return nil, apperrors.NewNotFound("ticket", nil)
	}

	switch {
	case actor.IsAdmin():
	case actor.IsCustomer() && ticket.CustomerID == actor.ID:
	case actor.IsTechnician() && ticket.AssignedTo(actor.ID):
	default:
		return nil, apperrors.NewForbidden("no access to this ticket")
	}

	notes, err := s.store.RepairNotes().ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	feedback, err := s.store.Feedback().GetByTicket(ctx, ticket.ID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ToDomainError(err)
	}

	return &TicketDetail{Ticket: ticket, Notes: notes, Feedback: feedback}, nil
}

func (s *TicketService) lockTicket(ctx context.Context, tx repository.Store, ticketID string) (*domain.Ticket, error) {
	ticket, err := tx.Tickets().GetByIDForUpdate(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, apperrors.ToDomainError(err)
	}
	if ticket.Deleted {
		return nil, apperrors.NewNotFound("ticket", nil)
	}
	return ticket, nil
}

func (s *TicketService) audit(ctx context.Context, tx repository.Store, actorID, action, resourceID, description string) error {
	entry := &domain.ActivityLog{
		AccountID:    actorID,
		Action:       action,
		ResourceType: "ticket",
		ResourceID:   &resourceID,
		Description:  description,
	}
	if err := tx.ActivityLogs().Record(ctx, entry); err != nil {
		return apperrors.NewAuditWriteFailed(err)
	}
	return nil
}

// publish runs after the transaction has committed. Handler failures
// only affect notifications, never the state change itself.
func (s *TicketService) publish(ctx context.Context, eventType events.EventType, actorID string, payload any) {
	err := s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
	if err != nil {
		s.logger.Warn("event delivery failed",
			zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

func (s *TicketService) nextTicketNumber(now time.Time) string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("%s-%s-%s", s.numberPrefix, now.Format("20060102"), raw[:6])
}
