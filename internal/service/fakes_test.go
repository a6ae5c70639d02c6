package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yourorg/unitsphere/internal/domain"
)

type memUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
	seq     int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*domain.User{}, byEmail: map[string]*domain.User{}}
}

func (m *memUserRepo) Create(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return fmt.Errorf("duplicate email: %w", domain.ErrValidation)
	}
	m.seq++
	if u.ID == "" {
		u.ID = fmt.Sprintf("u-%d", m.seq)
	}
	u.CreatedAt = time.Now()
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	return nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
}

func (m *memUserRepo) UpdateRole(_ context.Context, id string, role domain.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	u.Role = role
	return nil
}

func (m *memUserRepo) ListExcept(_ context.Context, email string) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.User{}
	for _, u := range m.byID {
		if u.Email != email {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memApartmentRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.Apartment
	seq  int
}

func newMemApartmentRepo() *memApartmentRepo {
	return &memApartmentRepo{byID: map[string]*domain.Apartment{}}
}

func (m *memApartmentRepo) Create(_ context.Context, a *domain.Apartment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if a.ID == "" {
		a.ID = fmt.Sprintf("apt-%d", m.seq)
	}
	a.CreatedAt = time.Now()
	m.byID[a.ID] = a
	return nil
}

func (m *memApartmentRepo) GetByID(_ context.Context, id string) (*domain.Apartment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.byID[id]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("apartment %s: %w", id, domain.ErrNotFound)
}

func (m *memApartmentRepo) Update(_ context.Context, a *domain.Apartment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[a.ID]; !ok {
		return fmt.Errorf("apartment %s: %w", a.ID, domain.ErrNotFound)
	}
	m.byID[a.ID] = a
	return nil
}

func (m *memApartmentRepo) List(_ context.Context, filter domain.ApartmentFilter) (*domain.ApartmentPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := []*domain.Apartment{}
	for _, a := range m.byID {
		if filter.HasRentRange && (a.Rent < filter.MinRent || a.Rent > filter.MaxRent) {
			continue
		}
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := len(all)
	start := (filter.Page - 1) * filter.Limit
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return &domain.ApartmentPage{Apartments: all[start:end], Total: total}, nil
}

// memAgreementRepo mirrors the transactional contract of the Postgres
// implementation: Accept applies the status, role and availability writes
// together and fails without side effects when anything is missing.
type memAgreementRepo struct {
	mu         sync.Mutex
	byID       map[string]*domain.Agreement
	users      *memUserRepo
	apartments *memApartmentRepo
	seq        int
}

func newMemAgreementRepo(users *memUserRepo, apartments *memApartmentRepo) *memAgreementRepo {
	return &memAgreementRepo{byID: map[string]*domain.Agreement{}, users: users, apartments: apartments}
}

func (m *memAgreementRepo) Create(_ context.Context, a *domain.Agreement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.UserEmail == a.UserEmail {
			return domain.ErrDuplicateAgreement
		}
	}
	m.seq++
	if a.ID == "" {
		a.ID = fmt.Sprintf("agr-%d", m.seq)
	}
	a.Status = domain.AgreementPending
	a.CreatedAt = time.Now()
	m.byID[a.ID] = a
	return nil
}

func (m *memAgreementRepo) GetByID(_ context.Context, id string) (*domain.Agreement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.byID[id]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("agreement %s: %w", id, domain.ErrNotFound)
}

func (m *memAgreementRepo) ExistsForUser(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.UserEmail == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAgreementRepo) ListByStatus(_ context.Context, status domain.AgreementStatus) ([]*domain.Agreement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Agreement{}
	for _, a := range m.byID {
		if a.Status == status {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memAgreementRepo) Accept(ctx context.Context, id string, now time.Time) (*domain.AcceptOutcome, error) {
	m.mu.Lock()
	agreement, ok := m.byID[id]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("agreement %s: %w", id, domain.ErrNotFound)
	}
	if agreement.Status != domain.AgreementPending {
		return nil, fmt.Errorf("agreement %s: %w", id, domain.ErrAgreementClosed)
	}

	user, err := m.users.GetByEmail(ctx, agreement.UserEmail)
	if err != nil {
		return nil, err
	}
	apartment, err := m.apartments.GetByID(ctx, agreement.ApartmentID)
	if err != nil {
		return nil, err
	}

	agreement.Status = domain.AgreementAccepted
	agreement.AcceptDate = &now
	user.Role = domain.RoleMember
	apartment.Availability = domain.AvailabilityBooked

	return &domain.AcceptOutcome{Agreement: agreement, UserID: user.ID, ApartmentID: apartment.ID}, nil
}

func (m *memAgreementRepo) Reject(_ context.Context, id string) (*domain.Agreement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	agreement, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("agreement %s: %w", id, domain.ErrNotFound)
	}
	if agreement.Status != domain.AgreementPending {
		return nil, fmt.Errorf("agreement %s: %w", id, domain.ErrAgreementClosed)
	}
	agreement.Status = domain.AgreementRejected
	return agreement, nil
}

type memCouponRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.Coupon
	seq  int
}

func newMemCouponRepo() *memCouponRepo {
	return &memCouponRepo{byID: map[string]*domain.Coupon{}}
}

func (m *memCouponRepo) Create(_ context.Context, c *domain.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if c.ID == "" {
		c.ID = fmt.Sprintf("cp-%d", m.seq)
	}
	c.Code = strings.ToUpper(c.Code)
	c.CreatedAt = time.Now()
	m.byID[c.ID] = c
	return nil
}

func (m *memCouponRepo) GetByID(_ context.Context, id string) (*domain.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.byID[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("coupon %s: %w", id, domain.ErrNotFound)
}

func (m *memCouponRepo) GetAvailableByCode(_ context.Context, code string) (*domain.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byID {
		if c.Code == strings.ToUpper(code) && c.Available {
			return c, nil
		}
	}
	return nil, fmt.Errorf("coupon %s: %w", code, domain.ErrNotFound)
}

func (m *memCouponRepo) Update(_ context.Context, c *domain.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[c.ID]; !ok {
		return fmt.Errorf("coupon %s: %w", c.ID, domain.ErrNotFound)
	}
	m.byID[c.ID] = c
	return nil
}

func (m *memCouponRepo) ListAvailable(_ context.Context) ([]*domain.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Coupon{}
	for _, c := range m.byID {
		if c.Available {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCouponRepo) ExpireBefore(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.byID {
		if c.Available && c.ExpiresAt != nil && !c.ExpiresAt.After(cutoff) {
			c.Available = false
			n++
		}
	}
	return n, nil
}

type memPaymentRepo struct {
	mu       sync.Mutex
	payments []*domain.Payment
	seq      int
}

func newMemPaymentRepo() *memPaymentRepo { return &memPaymentRepo{} }

func (m *memPaymentRepo) Create(_ context.Context, p *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if p.ID == "" {
		p.ID = fmt.Sprintf("pay-%d", m.seq)
	}
	m.payments = append(m.payments, p)
	return nil
}

func (m *memPaymentRepo) ListByEmail(_ context.Context, email string) ([]*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Payment{}
	for _, p := range m.payments {
		if p.UserEmail == email {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaymentDate.After(out[j].PaymentDate) })
	return out, nil
}

type memAnnouncementRepo struct {
	mu   sync.Mutex
	list []*domain.Announcement
	seq  int
}

func newMemAnnouncementRepo() *memAnnouncementRepo { return &memAnnouncementRepo{} }

func (m *memAnnouncementRepo) Create(_ context.Context, a *domain.Announcement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if a.ID == "" {
		a.ID = fmt.Sprintf("ann-%d", m.seq)
	}
	a.CreatedAt = time.Now()
	m.list = append(m.list, a)
	return nil
}

func (m *memAnnouncementRepo) List(_ context.Context) ([]*domain.Announcement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Announcement, len(m.list))
	copy(out, m.list)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakeGateway struct {
	calls      int
	lastAmount int64
	fail       error
}

func (g *fakeGateway) CreateIntent(_ context.Context, amount int64, currency, userEmail string) (*domain.PaymentIntent, error) {
	g.calls++
	g.lastAmount = amount
	if g.fail != nil {
		return nil, g.fail
	}
	return &domain.PaymentIntent{
		ID:           fmt.Sprintf("pi-%d", g.calls),
		ClientSecret: fmt.Sprintf("pi-%d_secret", g.calls),
	}, nil
}
