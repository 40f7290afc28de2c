package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rsommers/lakehouse/internal/domain"
	"github.com/rsommers/lakehouse/internal/http/response"
	"github.com/rsommers/lakehouse/internal/service"
	"github.com/rsommers/lakehouse/pkg/logger"
)

type Handlers struct {
	authService        service.AuthService
	reservationService service.ReservationService
}

func New(authService service.AuthService, reservationService service.ReservationService) *Handlers {
	return &Handlers{
		authService:        authService,
		reservationService: reservationService,
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func urlID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// writeServiceError maps service-layer failures onto the error taxonomy.
// Anything unrecognized is a server error; its details stay in the logs.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case domain.IsValidation(err):
		response.BadRequest(w, err.Error())
	case errors.Is(err, domain.ErrDuplicateEmail):
		response.WriteError(w, http.StatusBadRequest, "User already exists", response.CodeEmailExists)
	case errors.Is(err, domain.ErrInvalidCredentials):
		response.BadRequest(w, "Invalid credentials")
	case errors.Is(err, domain.ErrTokenInvalidExpired):
		response.WriteError(w, http.StatusBadRequest, "Invalid or expired token", response.CodeInvalidToken)
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, "Not found")
	case errors.Is(err, domain.ErrForbidden):
		response.Forbidden(w, "Not authorized")
	case errors.Is(err, domain.ErrConflict):
		response.Conflict(w, "Requested dates conflict with an existing reservation")
	default:
		logger.ErrorContext(r.Context(), fallback, "error", err)
		response.InternalError(w, fallback)
	}
}
