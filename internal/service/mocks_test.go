package service

import (
	"context"
	"sync"
	"time"

	"github.com/rsommers/lakehouse/internal/domain"
)

// ---------- Mocks ----------

type mockUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User

	// reservations owned per user, used to verify cascade completeness
	reservations *mockReservationRepo
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		nextID: 1,
		users:  make(map[int64]*domain.User),
	}
}

func (m *mockUserRepo) Create(_ context.Context, name, email, phone, passwordHash string) (*domain.User, error) {
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

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
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

func (m *mockUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepo) List(_ context.Context) ([]domain.User, error) {
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

func (m *mockUserRepo) UpdateProfile(_ context.Context, id int64, patch domain.ProfilePatch) (*domain.User, error) {
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

func (m *mockUserRepo) PromoteToAdmin(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.IsAdmin = true
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) DeleteCascading(_ context.Context, id int64) error {
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

func (m *mockUserRepo) SetResetToken(_ context.Context, id int64, token string, expiresAt time.Time) error {
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

func (m *mockUserRepo) ResetPassword(_ context.Context, token, passwordHash string) (*domain.User, error) {
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

type mockReservationRepo struct {
	mu           sync.Mutex
	nextID       int64
	reservations map[int64]*domain.Reservation
}

func newMockReservationRepo() *mockReservationRepo {
	return &mockReservationRepo{
		nextID:       1,
		reservations: make(map[int64]*domain.Reservation),
	}
}

func (m *mockReservationRepo) Create(_ context.Context, name, email string, startDate time.Time, nights int, userID int64) (*domain.Reservation, error) {
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

func (m *mockReservationRepo) GetByID(_ context.Context, id int64) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reservations[id]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

func (m *mockReservationRepo) List(_ context.Context) ([]domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Reservation
	for _, r := range m.reservations {
		out = append(out, *r)
	}
	sortByStartDate(out)
	return out, nil
}

func (m *mockReservationRepo) ListByUser(_ context.Context, userID int64) ([]domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Reservation
	for _, r := range m.reservations {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	sortByStartDate(out)
	return out, nil
}

func (m *mockReservationRepo) Update(_ context.Context, id int64, startDate time.Time, nights int) (*domain.Reservation, error) {
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

func (m *mockReservationRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reservations[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.reservations, id)
	return nil
}

func (m *mockReservationRepo) NextBookingFor(_ context.Context, email string) (*time.Time, error) {
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

func (m *mockReservationRepo) deleteByUser(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, r := range m.reservations {
		if r.UserID == userID {
			delete(m.reservations, id)
		}
	}
}

func (m *mockReservationRepo) countByUser(userID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, r := range m.reservations {
		if r.UserID == userID {
			n++
		}
	}
	return n
}

func sortByStartDate(rs []domain.Reservation) {
	for i := 1; i < len(rs); i++ {
		for j := i; j > 0 && rs[j].StartDate.Before(rs[j-1].StartDate); j-- {
			rs[j], rs[j-1] = rs[j-1], rs[j]
		}
	}
}

type mockNotifier struct {
	mu             sync.Mutex
	created        []*domain.Reservation
	updated        []*domain.Reservation
	deleted        []*domain.Reservation
	resetRequests  []string // emails
	lastResetLink  string
	registered     []string // emails
	deletedUsers   []int64
}

func (m *mockNotifier) ReservationCreated(_ context.Context, res *domain.Reservation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, res)
}

func (m *mockNotifier) ReservationUpdated(_ context.Context, res *domain.Reservation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updated = append(m.updated, res)
}

func (m *mockNotifier) ReservationDeleted(_ context.Context, res *domain.Reservation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, res)
}

func (m *mockNotifier) PasswordResetRequested(_ context.Context, user *domain.User, resetLink string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetRequests = append(m.resetRequests, user.Email)
	m.lastResetLink = resetLink
}

func (m *mockNotifier) UserRegistered(_ context.Context, user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registered = append(m.registered, user.Email)
}

func (m *mockNotifier) UserDeleted(_ context.Context, userID int64, cascaded bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletedUsers = append(m.deletedUsers, userID)
}
