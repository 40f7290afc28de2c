package domain

import (
	"strings"
	"time"
)

// Reservation claims the half-open day range [StartDate, StartDate+Nights)
// on the shared calendar. Name and Email are a copy of the booking user's
// identity at booking time.
type Reservation struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	StartDate time.Time `json:"start_date"`
	Nights    int       `json:"nights"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Reservation) EndDate() time.Time {
	return r.StartDate.AddDate(0, 0, r.Nights)
}

// Overlaps reports whether the occupied day-sets of two date ranges
// intersect. Ranges are half-open, so back-to-back stays do not overlap.
func Overlaps(aStart time.Time, aNights int, bStart time.Time, bNights int) bool {
	aEnd := aStart.AddDate(0, 0, aNights)
	bEnd := bStart.AddDate(0, 0, bNights)
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

const DateLayout = "2006-01-02"

type CreateReservationRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	StartDate string `json:"start_date"`
	Nights    int    `json:"nights"`
}

func (r *CreateReservationRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.StartDate = strings.TrimSpace(r.StartDate)
}

func (r *CreateReservationRequest) Validate() (time.Time, error) {
	if r.Name == "" {
		return time.Time{}, Validationf("name is required")
	}
	if r.Email == "" || !IsValidEmail(r.Email) {
		return time.Time{}, Validationf("valid email is required")
	}
	if r.StartDate == "" {
		return time.Time{}, Validationf("start date is required")
	}
	start, err := time.Parse(DateLayout, r.StartDate)
	if err != nil {
		return time.Time{}, Validationf("start date must be formatted as %s", DateLayout)
	}
	if r.Nights < 1 {
		return time.Time{}, Validationf("nights must be at least 1")
	}
	return start, nil
}

// ReservationPatch carries the only mutable reservation fields; nil means
// keep the current value.
type ReservationPatch struct {
	StartDate *string `json:"start_date,omitempty"`
	Nights    *int    `json:"nights,omitempty"`
}

// Apply merges the patch over an existing reservation and returns the new
// start date and nights.
func (p *ReservationPatch) Apply(res *Reservation) (time.Time, int, error) {
	start := res.StartDate
	nights := res.Nights

	if p.StartDate != nil {
		parsed, err := time.Parse(DateLayout, strings.TrimSpace(*p.StartDate))
		if err != nil {
			return time.Time{}, 0, Validationf("start date must be formatted as %s", DateLayout)
		}
		start = parsed
	}
	if p.Nights != nil {
		if *p.Nights < 1 {
			return time.Time{}, 0, Validationf("nights must be at least 1")
		}
		nights = *p.Nights
	}
	return start, nights, nil
}
