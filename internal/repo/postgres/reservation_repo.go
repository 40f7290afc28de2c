package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rsommers/lakehouse/internal/domain"
)

type ReservationRepository interface {
	Create(ctx context.Context, name, email string, startDate time.Time, nights int, userID int64) (*domain.Reservation, error)
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	List(ctx context.Context) ([]domain.Reservation, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Reservation, error)
	Update(ctx context.Context, id int64, startDate time.Time, nights int) (*domain.Reservation, error)
	Delete(ctx context.Context, id int64) error
	NextBookingFor(ctx context.Context, email string) (*time.Time, error)
}

type reservationRepository struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) ReservationRepository {
	return &reservationRepository{pool: pool}
}

const reservationCols = `id, name, email, start_date, nights, user_id, created_at, updated_at`

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var res domain.Reservation
	err := row.Scan(
		&res.ID, &res.Name, &res.Email, &res.StartDate, &res.Nights,
		&res.UserID, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// isOverlapViolation reports whether err is the reservations_no_overlap
// exclusion constraint firing (SQLSTATE 23P01).
func isOverlapViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

// Create inserts a reservation only if its day range [start, start+nights)
// does not intersect any existing reservation's range. The NOT EXISTS
// pre-check rejects the common case with zero rows; racing inserts that
// both pass it are settled by the table's exclusion constraint, so exactly
// one of two concurrent overlapping creates lands.
func (r *reservationRepository) Create(ctx context.Context, name, email string, startDate time.Time, nights int, userID int64) (*domain.Reservation, error) {
	const q = `
		INSERT INTO reservations (name, email, start_date, nights, user_id)
		SELECT $1, $2, $3::date, $4::int, $5
		WHERE NOT EXISTS (
			SELECT 1 FROM reservations r
			WHERE r.start_date < $3::date + $4::int
			  AND r.start_date + r.nights > $3::date
		)
		RETURNING ` + reservationCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := scanReservation(r.pool.QueryRow(ctx, q, name, email, startDate, nights, userID))
	if err == pgx.ErrNoRows || isOverlapViolation(err) {
		return nil, domain.ErrConflict
	}
	return res, err
}

func (r *reservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := scanReservation(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return res, err
}

func (r *reservationRepository) List(ctx context.Context) ([]domain.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations ORDER BY start_date ASC`
	return r.queryMany(ctx, q)
}

func (r *reservationRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations WHERE user_id = $1 ORDER BY start_date ASC`
	return r.queryMany(ctx, q, userID)
}

func (r *reservationRepository) queryMany(ctx context.Context, q string, args ...any) ([]domain.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(
			&res.ID, &res.Name, &res.Email, &res.StartDate, &res.Nights,
			&res.UserID, &res.CreatedAt, &res.UpdatedAt,
		); err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

// Update moves a reservation to a new range under the same no-overlap
// invariant as Create, ignoring the reservation's own current range. A
// zero-row result is ambiguous between a conflicting range and a row that
// was deleted since the caller loaded it, so existence is re-checked.
func (r *reservationRepository) Update(ctx context.Context, id int64, startDate time.Time, nights int) (*domain.Reservation, error) {
	const q = `
		UPDATE reservations
		SET start_date = $2::date, nights = $3::int, updated_at = now()
		WHERE id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM reservations r
			WHERE r.id <> $1
			  AND r.start_date < $2::date + $3::int
			  AND r.start_date + r.nights > $2::date
		  )
		RETURNING ` + reservationCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := scanReservation(r.pool.QueryRow(ctx, q, id, startDate, nights))
	if err == pgx.ErrNoRows {
		var exists bool
		if err := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM reservations WHERE id = $1)`, id,
		).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrConflict
	}
	if isOverlapViolation(err) {
		return nil, domain.ErrConflict
	}
	return res, err
}

func (r *reservationRepository) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM reservations WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// NextBookingFor returns the start date of the earliest reservation booked
// under the given email, or nil if there is none.
func (r *reservationRepository) NextBookingFor(ctx context.Context, email string) (*time.Time, error) {
	const q = `
		SELECT start_date FROM reservations
		WHERE lower(email) = lower($1)
		ORDER BY start_date ASC
		LIMIT 1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var start time.Time
	err := r.pool.QueryRow(ctx, q, email).Scan(&start)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &start, nil
}
