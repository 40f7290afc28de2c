package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rsommers/lakehouse/internal/domain"
	"github.com/rsommers/lakehouse/internal/notify"
	"github.com/rsommers/lakehouse/internal/repo/postgres"
	"github.com/rsommers/lakehouse/pkg/logger"
)

type ReservationService interface {
	ListAll(ctx context.Context) ([]domain.Reservation, error)
	ListForUser(ctx context.Context, userID int64) ([]domain.Reservation, error)
	Create(ctx context.Context, actor domain.Identity, req *domain.CreateReservationRequest) (*domain.Reservation, error)
	Update(ctx context.Context, actor domain.Identity, id int64, patch *domain.ReservationPatch) (*domain.Reservation, error)
	Delete(ctx context.Context, actor domain.Identity, id int64) error
	NextBookingFor(ctx context.Context, email string) (*time.Time, error)
}

type reservationService struct {
	reservations postgres.ReservationRepository
	notifier     notify.Notifier
}

func NewReservationService(reservations postgres.ReservationRepository, notifier notify.Notifier) ReservationService {
	return &reservationService{
		reservations: reservations,
		notifier:     notifier,
	}
}

func (s *reservationService) ListAll(ctx context.Context) ([]domain.Reservation, error) {
	reservations, err := s.reservations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, nil
}

func (s *reservationService) ListForUser(ctx context.Context, userID int64) ([]domain.Reservation, error) {
	reservations, err := s.reservations.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, nil
}

// Create books a date range for the calling user. The no-overlap invariant
// is enforced by the repository in the same statement as the insert.
// Notification failure never rolls the booking back.
func (s *reservationService) Create(ctx context.Context, actor domain.Identity, req *domain.CreateReservationRequest) (*domain.Reservation, error) {
	req.Normalize()
	start, err := req.Validate()
	if err != nil {
		return nil, err
	}

	res, err := s.reservations.Create(ctx, req.Name, req.Email, start, req.Nights, actor.UserID)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Reservation created",
		"reservation_id", res.ID,
		"start_date", res.StartDate.Format(domain.DateLayout),
		"nights", res.Nights,
	)

	s.notifier.ReservationCreated(ctx, res)
	return res, nil
}

// Update changes the booked range. Only the owner or an admin may mutate a
// reservation; the new range is re-checked against every other reservation.
func (s *reservationService) Update(ctx context.Context, actor domain.Identity, id int64, patch *domain.ReservationPatch) (*domain.Reservation, error) {
	existing, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}
	if !actor.CanModify(existing.UserID) {
		return nil, domain.ErrForbidden
	}

	start, nights, err := patch.Apply(existing)
	if err != nil {
		return nil, err
	}

	updated, err := s.reservations.Update(ctx, id, start, nights)
	if err != nil {
		return nil, err
	}

	s.notifier.ReservationUpdated(ctx, updated)
	return updated, nil
}

func (s *reservationService) Delete(ctx context.Context, actor domain.Identity, id int64) error {
	existing, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load reservation: %w", err)
	}
	if existing == nil {
		return domain.ErrNotFound
	}
	if !actor.CanModify(existing.UserID) {
		return domain.ErrForbidden
	}

	if err := s.reservations.Delete(ctx, id); err != nil {
		return err
	}

	s.notifier.ReservationDeleted(ctx, existing)
	return nil
}

func (s *reservationService) NextBookingFor(ctx context.Context, email string) (*time.Time, error) {
	return s.reservations.NextBookingFor(ctx, email)
}
