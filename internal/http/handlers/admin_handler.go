package handlers

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/rsommers/lakehouse/internal/domain"
	"github.com/rsommers/lakehouse/internal/http/response"
)

// AdminListUsers returns every user decorated with the start date of their
// next booking. The per-user lookups fan out concurrently.
func (h *Handlers) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Failed to list users")
		return
	}

	out := make([]domain.UserWithNextBooking, len(users))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(5)

	for i, user := range users {
		out[i].User = user
		g.Go(func() error {
			next, err := h.reservationService.NextBookingFor(ctx, user.Email)
			if err != nil {
				return err
			}
			if next != nil {
				formatted := next.Format(domain.DateLayout)
				out[i].NextBooking = &formatted
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		writeServiceError(w, r, err, "Failed to load next bookings")
		return
	}

	writeJSON(w, http.StatusOK, out)
}

// AdminDeleteUser removes only the user row. Their reservations stay on the
// calendar; this is deliberately distinct from the cascading delete on the
// auth routes.
func (h *Handlers) AdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	if err := h.authService.DeleteUserOnly(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "Failed to delete user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "User deleted successfully",
	})
}
