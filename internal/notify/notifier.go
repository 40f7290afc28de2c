// Package notify is the notification gateway: reservation and password-reset
// events fan out to email and the event bus. Every call is fire-and-forget
// from the caller's perspective; failures are logged, never propagated into
// the operation that triggered them.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rsommers/lakehouse/internal/domain"
	"github.com/rsommers/lakehouse/internal/platform/mailer"
	"github.com/rsommers/lakehouse/pkg/events"
	"github.com/rsommers/lakehouse/pkg/logger"
)

type Notifier interface {
	ReservationCreated(ctx context.Context, res *domain.Reservation)
	ReservationUpdated(ctx context.Context, res *domain.Reservation)
	ReservationDeleted(ctx context.Context, res *domain.Reservation)
	PasswordResetRequested(ctx context.Context, user *domain.User, resetLink string)
	UserRegistered(ctx context.Context, user *domain.User)
	UserDeleted(ctx context.Context, userID int64, cascaded bool)
}

type notifier struct {
	mailer mailer.Mailer
	bus    events.Publisher
	// notifyEmail receives new-reservation mail; empty disables that mail.
	notifyEmail string
}

// New builds the process-wide notifier. It is constructed once at startup
// and handed to the services that need it.
func New(m mailer.Mailer, bus events.Publisher, notifyEmail string) Notifier {
	return &notifier{
		mailer:      m,
		bus:         bus,
		notifyEmail: notifyEmail,
	}
}

func (n *notifier) ReservationCreated(ctx context.Context, res *domain.Reservation) {
	n.publish(ctx, events.ReservationCreated, events.ReservationCreatedEvent{
		ReservationID: res.ID,
		Name:          res.Name,
		Email:         res.Email,
		StartDate:     res.StartDate.Format(domain.DateLayout),
		Nights:        res.Nights,
		UserID:        res.UserID,
		CreatedAt:     res.CreatedAt,
	})

	if n.notifyEmail == "" {
		return
	}

	subject := "New Reservation Created"
	text := fmt.Sprintf("%s has booked from %s for %d nights.",
		res.Name, res.StartDate.Format(domain.DateLayout), res.Nights)

	if err := n.mailer.Send(n.notifyEmail, "", subject, text, ""); err != nil {
		logger.ErrorContext(ctx, "Failed to send reservation notification",
			"error", err, "reservation_id", res.ID)
	}
}

func (n *notifier) ReservationUpdated(ctx context.Context, res *domain.Reservation) {
	n.publish(ctx, events.ReservationUpdated, events.ReservationUpdatedEvent{
		ReservationID: res.ID,
		StartDate:     res.StartDate.Format(domain.DateLayout),
		Nights:        res.Nights,
		UpdatedAt:     res.UpdatedAt,
	})
}

func (n *notifier) ReservationDeleted(ctx context.Context, res *domain.Reservation) {
	n.publish(ctx, events.ReservationDeleted, events.ReservationDeletedEvent{
		ReservationID: res.ID,
		UserID:        res.UserID,
		DeletedAt:     time.Now(),
	})
}

func (n *notifier) PasswordResetRequested(ctx context.Context, user *domain.User, resetLink string) {
	n.publish(ctx, events.PasswordResetRequested, events.PasswordResetRequestedEvent{
		Email:       user.Email,
		RequestedAt: time.Now(),
	})

	subject := "Password Reset Request"
	text := fmt.Sprintf("You have requested a password reset. Click the link below to reset your password:\n\n%s\n\nIf you did not request this, please ignore this email.", resetLink)
	html := fmt.Sprintf(`<p>You have requested a password reset.</p>
<p><a href="%s">Reset your password</a></p>
<p>The link expires in one hour. If you did not request this, please ignore this email.</p>`, resetLink)

	if err := n.mailer.Send(user.Email, user.Name, subject, text, html); err != nil {
		logger.ErrorContext(ctx, "Failed to send password reset email",
			"error", err, "user_id", user.ID)
	}
}

func (n *notifier) UserRegistered(ctx context.Context, user *domain.User) {
	n.publish(ctx, events.UserRegistered, events.UserRegisteredEvent{
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
}

func (n *notifier) UserDeleted(ctx context.Context, userID int64, cascaded bool) {
	n.publish(ctx, events.UserDeleted, events.UserDeletedEvent{
		UserID:    userID,
		Cascaded:  cascaded,
		DeletedAt: time.Now(),
	})
}

func (n *notifier) publish(ctx context.Context, subject string, data interface{}) {
	if n.bus == nil {
		return
	}
	if err := n.bus.Publish(ctx, subject, data); err != nil {
		logger.WarnContext(ctx, "Failed to publish event", "error", err, "subject", subject)
	}
}
