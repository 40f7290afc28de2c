package handlers_test

import (
	"context"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rsommers/lakehouse/internal/domain"
	"github.com/rsommers/lakehouse/internal/http/handlers"
	mw "github.com/rsommers/lakehouse/internal/http/middleware"
	"github.com/rsommers/lakehouse/internal/notify"
	"github.com/rsommers/lakehouse/internal/platform/mailer"
	"github.com/rsommers/lakehouse/internal/service"
	"github.com/rsommers/lakehouse/pkg/config"
)

const testSecret = "test-secret-key"

// newTestRouter wires the real services and handlers over in-memory storage,
// using the same route layout as cmd/api.
func newTestRouter() (chi.Router, *memUserRepo, *memReservationRepo) {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:     testSecret,
			SessionTTL:    7 * 24 * time.Hour,
			ResetTokenTTL: time.Hour,
		},
		App: config.AppConfig{BaseURL: "http://localhost:5173"},
	}

	users := newMemUserRepo()
	reservations := newMemReservationRepo()
	users.reservations = reservations

	notifier := notify.New(mailer.NewDevMailer(), nil, "")

	authService := service.NewAuthService(users, notifier, cfg)
	reservationService := service.NewReservationService(reservations, notifier)
	h := handlers.New(authService, reservationService)

	requireAuth := mw.RequireAuth(cfg.Auth.JWTSecret)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/forgot-password", h.ForgotPassword)
			r.Post("/reset-password/{token}", h.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", h.Me)
				r.Put("/update-profile", h.UpdateProfile)

				r.Group(func(r chi.Router) {
					r.Use(mw.RequireAdmin)
					r.Get("/users", h.ListUsers)
					r.Delete("/delete-user/{id}", h.DeleteUserCascading)
					r.Put("/make-admin/{id}", h.MakeAdmin)
				})
			})
		})

		r.Route("/reservations", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/my-reservations", h.MyReservations)
			r.Post("/reserve", h.CreateReservation)
			r.Put("/update/{id}", h.UpdateReservation)
			r.Delete("/delete/{id}", h.DeleteReservation)

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireAdmin)
				r.Get("/", h.ListReservations)
				r.Put("/admin/update/{id}", h.AdminUpdateReservation)
				r.Delete("/admin/delete/{id}", h.AdminDeleteReservation)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(mw.RequireAdmin)
			r.Get("/users", h.AdminListUsers)
			r.Delete("/users/{id}", h.AdminDeleteUser)
		})
	})

	return r, users, reservations
}

// ---------- In-memory storage ----------

type memUserRepo struct {
	mu           sync.Mutex
	nextID       int64
	users        map[int64]*domain.User
	reservations *memReservationRepo
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: make(map[int64]*domain.User)}
}

func (m *memUserRepo) makeAdmin(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.IsAdmin = true
	}
}

func (m *memUserRepo) Create(_ context.Context, name, email, phone, passwordHash string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			return nil, domain.ErrDuplicateEmail
		}
	}

	u := &domain.User{
		ID:           m.nextID,
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.users[u.ID] = u
	m.nextID++

	copied := *u
	return &copied, nil
}

func (m *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (m *memUserRepo) List(_ context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.User
	for id := int64(1); id < m.nextID; id++ {
		if u, ok := m.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *memUserRepo) UpdateProfile(_ context.Context, id int64, patch domain.ProfilePatch) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Phone != nil {
		u.Phone = *patch.Phone
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	u.UpdatedAt = time.Now()

	copied := *u
	return &copied, nil
}

func (m *memUserRepo) PromoteToAdmin(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.IsAdmin = true
	return nil
}

func (m *memUserRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memUserRepo) DeleteCascading(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.users, id)

	if m.reservations != nil {
		m.reservations.deleteByUser(id)
	}
	return nil
}

func (m *memUserRepo) SetResetToken(_ context.Context, id int64, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.ResetToken = &token
	expires := expiresAt
	u.ResetTokenExpires = &expires
	return nil
}

func (m *memUserRepo) ResetPassword(_ context.Context, token, passwordHash string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.ResetToken != nil && *u.ResetToken == token {
			if u.ResetTokenExpires == nil || time.Now().After(*u.ResetTokenExpires) {
				return nil, domain.ErrTokenInvalidExpired
			}
			u.PasswordHash = passwordHash
			u.ResetToken = nil
			u.ResetTokenExpires = nil
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrTokenInvalidExpired
}

func (m *memUserRepo) resetToken(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email && u.ResetToken != nil {
			return *u.ResetToken
		}
	}
	return ""
}

type memReservationRepo struct {
	mu           sync.Mutex
	nextID       int64
	reservations map[int64]*domain.Reservation
}

func newMemReservationRepo() *memReservationRepo {
	return &memReservationRepo{nextID: 1, reservations: make(map[int64]*domain.Reservation)}
}

func (m *memReservationRepo) Create(_ context.Context, name, email string, startDate time.Time, nights int, userID int64) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.reservations {
		if domain.Overlaps(r.StartDate, r.Nights, startDate, nights) {
			return nil, domain.ErrConflict
		}
	}

	res := &domain.Reservation{
		ID:        m.nextID,
		Name:      name,
		Email:     email,
		StartDate: startDate,
		Nights:    nights,
		UserID:    userID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.reservations[res.ID] = res
	m.nextID++

	copied := *res
	return &copied, nil
}

func (m *memReservationRepo) GetByID(_ context.Context, id int64) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reservations[id]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

func (m *memReservationRepo) List(_ context.Context) ([]domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Reservation
	for _, r := range m.reservations {
		out = append(out, *r)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].StartDate.Before(out[j-1].StartDate); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

func (m *memReservationRepo) ListByUser(_ context.Context, userID int64) ([]domain.Reservation, error) {
	all, _ := m.List(context.Background())
	var out []domain.Reservation
	for _, r := range all {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memReservationRepo) Update(_ context.Context, id int64, startDate time.Time, nights int) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, ok := m.reservations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	for _, r := range m.reservations {
		if r.ID != id && domain.Overlaps(r.StartDate, r.Nights, startDate, nights) {
			return nil, domain.ErrConflict
		}
	}
	res.StartDate = startDate
	res.Nights = nights
	res.UpdatedAt = time.Now()

	copied := *res
	return &copied, nil
}

func (m *memReservationRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reservations[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.reservations, id)
	return nil
}

func (m *memReservationRepo) NextBookingFor(_ context.Context, email string) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var next *time.Time
	for _, r := range m.reservations {
		if r.Email != email {
			continue
		}
		if next == nil || r.StartDate.Before(*next) {
			start := r.StartDate
			next = &start
		}
	}
	return next, nil
}

func (m *memReservationRepo) deleteByUser(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, r := range m.reservations {
		if r.UserID == userID {
			delete(m.reservations, id)
		}
	}
}
