package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"rental-booking/internal/data/entity"
	"rental-booking/internal/data/repository"
	"rental-booking/internal/notify"

	"github.com/google/uuid"
)

// memoryStore backs the repository fakes. A single mutex plays the part of
// the property lock and the conditional update.
type memoryStore struct {
	mu         sync.Mutex
	bookings   map[uuid.UUID]*entity.Booking
	properties map[uuid.UUID]*entity.Property
	users      map[uuid.UUID]*entity.User
	clock      time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		bookings:   make(map[uuid.UUID]*entity.Booking),
		properties: make(map[uuid.UUID]*entity.Property),
		users:      make(map[uuid.UUID]*entity.User),
		clock:      time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (s *memoryStore) repository() *repository.Repository {
	return &repository.Repository{
		Booking:        &memBookings{s},
		Property:       &memProperties{s},
		CachedProperty: &memProperties{s},
		User:           &memUsers{s},
	}
}

// tick hands out strictly increasing timestamps so list ordering is stable.
func (s *memoryStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memoryStore) overlapsConfirmed(b *entity.Booking) bool {
	for _, other := range s.bookings {
		if other.ID != b.ID && other.PropertyID == b.PropertyID &&
			other.Status == entity.BookingStatusConfirmed && other.Range().Overlaps(b.Range()) {
			return true
		}
	}
	return false
}

func (s *memoryStore) detail(b *entity.Booking) *entity.BookingDetail {
	d := &entity.BookingDetail{Booking: *b}
	if p, ok := s.properties[b.PropertyID]; ok {
		d.Property = entity.PropertySummary{
			ID: p.ID, LandlordID: p.LandlordID, Title: p.Title, City: p.City, RentPerMonth: p.RentPerMonth,
		}
	}
	if u, ok := s.users[b.TenantID]; ok {
		d.Tenant = entity.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return d
}

func (s *memoryStore) details(keep func(*entity.Booking) bool) []*entity.BookingDetail {
	var out []*entity.BookingDetail
	for _, b := range s.bookings {
		if keep(b) {
			out = append(out, s.detail(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

type memBookings struct{ s *memoryStore }

func (r *memBookings) Create(_ context.Context, booking *entity.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.overlapsConfirmed(booking) {
		return repository.ErrDateOverlap
	}
	booking.CreatedAt = r.s.tick()
	booking.UpdatedAt = booking.CreatedAt
	cp := *booking
	r.s.bookings[booking.ID] = &cp
	return nil
}

func (r *memBookings) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *memBookings) FindDetailByID(_ context.Context, id uuid.UUID) (*entity.BookingDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, nil
	}
	return r.s.detail(b), nil
}

func (r *memBookings) FindConfirmedByPropertyID(_ context.Context, propertyID uuid.UUID, window entity.DateRange) ([]*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.Booking
	for _, b := range r.s.bookings {
		if b.PropertyID == propertyID && b.Status == entity.BookingStatusConfirmed && b.Range().Overlaps(window) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memBookings) UpdateStatus(_ context.Context, id uuid.UUID, from, to entity.BookingStatus) (*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	if b.Status != from {
		return nil, repository.ErrStatusMismatch
	}
	if to == entity.BookingStatusConfirmed && r.s.overlapsConfirmed(b) {
		return nil, repository.ErrDateOverlap
	}

	b.Status = to
	b.UpdatedAt = r.s.tick()
	cp := *b
	return &cp, nil
}

func (r *memBookings) FindByTenantID(_ context.Context, tenantID uuid.UUID) ([]*entity.BookingDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.details(func(b *entity.Booking) bool { return b.TenantID == tenantID }), nil
}

func (r *memBookings) FindByLandlordID(_ context.Context, landlordID uuid.UUID) ([]*entity.BookingDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.details(func(b *entity.Booking) bool {
		p, ok := r.s.properties[b.PropertyID]
		return ok && p.IsLandlord(landlordID)
	}), nil
}

func (r *memBookings) FindByPropertyID(_ context.Context, propertyID uuid.UUID) ([]*entity.BookingDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.details(func(b *entity.Booking) bool { return b.PropertyID == propertyID }), nil
}

func (r *memBookings) FindAll(_ context.Context, limit, offset int) ([]*entity.BookingDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	all := r.s.details(func(*entity.Booking) bool { return true })
	if offset >= len(all) {
		return []*entity.BookingDetail{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *memBookings) CountAll(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.bookings)), nil
}

type memProperties struct{ s *memoryStore }

func (r *memProperties) FindByID(_ context.Context, id uuid.UUID) (*entity.Property, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.properties[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

type memUsers struct{ s *memoryStore }

func (r *memUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

// recordingNotifier captures what the service hands to the notification boundary.
type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
	emails []notify.Email
}

func (n *recordingNotifier) Emit(event notify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) NotifyEmail(email notify.Email) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.emails = append(n.emails, email)
}

func (n *recordingNotifier) eventNames() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	names := make([]string, 0, len(n.events))
	for _, e := range n.events {
		names = append(names, e.Name)
	}
	return names
}

func (n *recordingNotifier) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = nil
	n.emails = nil
}
