package service

import (
	"context"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hamzarq/event-booking-marketplace/internal/apperror"
	"github.com/hamzarq/event-booking-marketplace/internal/model"
	"github.com/hamzarq/event-booking-marketplace/internal/notify"
)

// fakeBookingStore mimics the real repository's invariants in memory: the
// partial-uniqueness guard on create and the from-status precondition on
// updates.
type fakeBookingStore struct {
	bookings []model.Booking
	owners   map[string]string // eventID → listerID, for ListByLister
	seq      int
}

func (f *fakeBookingStore) Create(_ context.Context, b *model.Booking) error {
	for _, ex := range f.bookings {
		if ex.UserID == b.UserID && ex.EventID == b.EventID &&
			ex.BookingDate.Equal(b.BookingDate) && ex.BookingTime == b.BookingTime &&
			ex.Status != model.StatusCancelled {
			return apperror.New(apperror.Conflict, "an active booking already exists for this slot")
		}
	}
	f.seq++
	b.ID = fmt.Sprintf("bkg-%d", f.seq)
	b.Status = model.StatusPending
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	f.bookings = append(f.bookings, *b)
	return nil
}

func (f *fakeBookingStore) GetByID(_ context.Context, id string) (*model.Booking, error) {
	for _, b := range f.bookings {
		if b.ID == id {
			b := b
			return &b, nil
		}
	}
	return nil, apperror.Newf(apperror.NotFound, "booking %s not found", id)
}

func (f *fakeBookingStore) UpdateStatus(_ context.Context, id string, from []model.BookingStatus, to model.BookingStatus, listerMessage string) (*model.Booking, error) {
	for i := range f.bookings {
		if f.bookings[i].ID != id {
			continue
		}
		if !slices.Contains(from, f.bookings[i].Status) {
			return nil, apperror.Newf(apperror.InvalidTransition,
				"booking is %s, cannot transition to %s", f.bookings[i].Status, to)
		}
		f.bookings[i].Status = to
		if listerMessage != "" {
			f.bookings[i].ListerMessage = listerMessage
		}
		f.bookings[i].UpdatedAt = time.Now().UTC()
		b := f.bookings[i]
		return &b, nil
	}
	return nil, apperror.Newf(apperror.NotFound, "booking %s not found", id)
}

func (f *fakeBookingStore) ListByUser(_ context.Context, userID string) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range f.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) ListByEvent(_ context.Context, eventID string) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range f.bookings {
		if b.EventID == eventID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) ListByLister(_ context.Context, listerID string) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range f.bookings {
		if f.owners[b.EventID] == listerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) countFor(userID, eventID string, d time.Time, clock string) int {
	n := 0
	for _, b := range f.bookings {
		if b.UserID == userID && b.EventID == eventID && b.BookingDate.Equal(d) && b.BookingTime == clock {
			n++
		}
	}
	return n
}

type fakeEventResolver struct {
	events map[string]*model.Event
}

func (f *fakeEventResolver) GetByID(_ context.Context, id string) (*model.Event, error) {
	if e, ok := f.events[id]; ok {
		e := *e
		return &e, nil
	}
	return nil, apperror.Newf(apperror.NotFound, "event %s not found", id)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(ctx context.Context, key string, v any) error {
	args := m.Called(ctx, key, v)
	return args.Error(0)
}

// ─── Harness ──────────────────────────────────────────────────────────────────

type ledgerFixture struct {
	ledger *Ledger
	store  *fakeBookingStore
	pub    *mockPublisher
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	store := &fakeBookingStore{owners: map[string]string{"evt-1": "lister-1"}}
	events := &fakeEventResolver{events: map[string]*model.Event{
		"evt-1": {ID: "evt-1", Title: "Jazz Night", ListerID: "lister-1"},
	}}
	pub := &mockPublisher{}
	return &ledgerFixture{
		ledger: NewLedger(store, events, pub),
		store:  store,
		pub:    pub,
	}
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format(model.DateLayout)
}

func validBookingRequest() model.CreateBookingRequest {
	return model.CreateBookingRequest{
		EventID:      "evt-1",
		PhoneNumber:  "+92 300 1234567",
		IDCardNumber: "35202-1234567-1",
		Date:         futureDate(7),
		Time:         "10:00",
		Note:         "window seat please",
	}
}

func (fx *ledgerFixture) createPending(t *testing.T) *model.Booking {
	t.Helper()
	b, err := fx.ledger.CreateBooking(context.Background(), validBookingRequest(), "user-1")
	require.NoError(t, err)
	require.Equal(t, model.StatusPending, b.Status)
	return b
}

// ─── CreateBooking ────────────────────────────────────────────────────────────

func TestCreateBookingValidation(t *testing.T) {
	fx := newLedgerFixture(t)

	cases := []struct {
		name   string
		mutate func(*model.CreateBookingRequest)
	}{
		{"empty phone", func(r *model.CreateBookingRequest) { r.PhoneNumber = "" }},
		{"garbage phone", func(r *model.CreateBookingRequest) { r.PhoneNumber = "call me" }},
		{"short id card", func(r *model.CreateBookingRequest) { r.IDCardNumber = "12345" }},
		{"missing time", func(r *model.CreateBookingRequest) { r.Time = "" }},
		{"malformed date", func(r *model.CreateBookingRequest) { r.Date = "tomorrow" }},
		{"past date", func(r *model.CreateBookingRequest) { r.Date = "2020-01-01" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validBookingRequest()
			tc.mutate(&req)
			_, err := fx.ledger.CreateBooking(context.Background(), req, "user-1")
			assert.Equal(t, apperror.Validation, apperror.KindOf(err))
		})
	}
}

func TestCreateBookingTodayIsAllowed(t *testing.T) {
	fx := newLedgerFixture(t)
	req := validBookingRequest()
	req.Date = futureDate(0)

	b, err := fx.ledger.CreateBooking(context.Background(), req, "user-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, b.Status)
}

func TestCreateBookingUnknownEvent(t *testing.T) {
	fx := newLedgerFixture(t)
	req := validBookingRequest()
	req.EventID = "evt-missing"

	_, err := fx.ledger.CreateBooking(context.Background(), req, "user-1")
	assert.Equal(t, apperror.NotFound, apperror.KindOf(err))
}

// Scenario: a second booking for the same (user, event, date, time) before the
// first is cancelled conflicts, and the slot count stays at one.
func TestCreateBookingDuplicateSlotConflicts(t *testing.T) {
	fx := newLedgerFixture(t)
	req := validBookingRequest()

	first, err := fx.ledger.CreateBooking(context.Background(), req, "user-1")
	require.NoError(t, err)

	_, err = fx.ledger.CreateBooking(context.Background(), req, "user-1")
	assert.Equal(t, apperror.Conflict, apperror.KindOf(err))

	d, _ := model.ParseDate(req.Date)
	assert.Equal(t, 1, fx.store.countFor("user-1", "evt-1", d, req.Time))

	// A different slot same event is fine.
	req.Time = "11:00"
	_, err = fx.ledger.CreateBooking(context.Background(), req, "user-1")
	assert.NoError(t, err)

	// Cancelling frees the slot for a new booking.
	_, err = fx.ledger.Cancel(context.Background(), first.ID, "user-1")
	require.NoError(t, err)
	req.Time = "10:00"
	_, err = fx.ledger.CreateBooking(context.Background(), req, "user-1")
	assert.NoError(t, err)
}

// ─── Confirm / Reject ─────────────────────────────────────────────────────────

// Scenario: the owning lister confirms a pending booking; the notification is
// published exactly once, carrying the booking's id.
func TestConfirmPendingBooking(t *testing.T) {
	fx := newLedgerFixture(t)
	b := fx.createPending(t)

	fx.pub.On("PublishJSON", mock.Anything, notify.KeyBookingConfirmed,
		mock.MatchedBy(func(m notify.BookingConfirmed) bool {
			return m.BookingID == b.ID
		})).Return(nil).Once()

	confirmed, err := fx.ledger.Confirm(context.Background(), b.ID, "lister-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, confirmed.Status)

	fx.pub.AssertExpectations(t)
	fx.pub.AssertNumberOfCalls(t, "PublishJSON", 1)
}

func TestConfirmByNonOwnerFails(t *testing.T) {
	fx := newLedgerFixture(t)
	b := fx.createPending(t)

	_, err := fx.ledger.Confirm(context.Background(), b.ID, "lister-2")
	assert.Equal(t, apperror.Authorization, apperror.KindOf(err))

	got, _ := fx.store.GetByID(context.Background(), b.ID)
	assert.Equal(t, model.StatusPending, got.Status)
	fx.pub.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirmFailureOfPublishDoesNotBlock(t *testing.T) {
	fx := newLedgerFixture(t)
	b := fx.createPending(t)

	fx.pub.On("PublishJSON", mock.Anything, mock.Anything, mock.Anything).
		Return(fmt.Errorf("broker down"))

	confirmed, err := fx.ledger.Confirm(context.Background(), b.ID, "lister-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, confirmed.Status)
}

func TestConfirmOnlyFromPending(t *testing.T) {
	fx := newLedgerFixture(t)
	fx.pub.On("PublishJSON", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	b := fx.createPending(t)
	_, err := fx.ledger.Confirm(context.Background(), b.ID, "lister-1")
	require.NoError(t, err)

	// confirmed → confirmed is not a transition
	_, err = fx.ledger.Confirm(context.Background(), b.ID, "lister-1")
	assert.Equal(t, apperror.InvalidTransition, apperror.KindOf(err))

	// rejected → confirmed is not a transition either
	b2 := fx.createAt(t, "11:00")
	_, err = fx.ledger.Reject(context.Background(), b2.ID, "lister-1", "overbooked")
	require.NoError(t, err)
	_, err = fx.ledger.Confirm(context.Background(), b2.ID, "lister-1")
	assert.Equal(t, apperror.InvalidTransition, apperror.KindOf(err))
}

// Scenario: rejecting without a reason is a validation failure and the booking
// stays pending.
func TestRejectRequiresReason(t *testing.T) {
	fx := newLedgerFixture(t)
	b := fx.createPending(t)

	_, err := fx.ledger.Reject(context.Background(), b.ID, "lister-1", "  ")
	assert.Equal(t, apperror.Validation, apperror.KindOf(err))

	got, _ := fx.store.GetByID(context.Background(), b.ID)
	assert.Equal(t, model.StatusPending, got.Status)
}

func TestRejectStoresReason(t *testing.T) {
	fx := newLedgerFixture(t)
	b := fx.createPending(t)

	rejected, err := fx.ledger.Reject(context.Background(), b.ID, "lister-1", "slot no longer available")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, rejected.Status)
	assert.Equal(t, "slot no longer available", rejected.ListerMessage)
}

func TestRejectByNonOwnerFails(t *testing.T) {
	fx := newLedgerFixture(t)
	b := fx.createPending(t)

	_, err := fx.ledger.Reject(context.Background(), b.ID, "lister-2", "nope")
	assert.Equal(t, apperror.Authorization, apperror.KindOf(err))

	got, _ := fx.store.GetByID(context.Background(), b.ID)
	assert.Equal(t, model.StatusPending, got.Status)
}

// ─── Cancel ───────────────────────────────────────────────────────────────────

// Scenario: a user cancels their own confirmed booking; it disappears from the
// active view of their bookings.
func TestCancelConfirmedBooking(t *testing.T) {
	fx := newLedgerFixture(t)
	fx.pub.On("PublishJSON", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	b := fx.createPending(t)
	_, err := fx.ledger.Confirm(context.Background(), b.ID, "lister-1")
	require.NoError(t, err)

	cancelled, err := fx.ledger.Cancel(context.Background(), b.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)

	mine, err := fx.ledger.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	for _, got := range mine {
		if got.ID == b.ID {
			assert.False(t, got.Active())
		}
	}
}

func TestCancelFromEveryNonTerminalState(t *testing.T) {
	fx := newLedgerFixture(t)
	fx.pub.On("PublishJSON", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	pending := fx.createAt(t, "10:00")
	confirmed := fx.createAt(t, "11:00")
	rejected := fx.createAt(t, "12:00")

	_, err := fx.ledger.Confirm(context.Background(), confirmed.ID, "lister-1")
	require.NoError(t, err)
	_, err = fx.ledger.Reject(context.Background(), rejected.ID, "lister-1", "full")
	require.NoError(t, err)

	for _, b := range []*model.Booking{pending, confirmed, rejected} {
		got, err := fx.ledger.Cancel(context.Background(), b.ID, "user-1")
		require.NoError(t, err)
		assert.Equal(t, model.StatusCancelled, got.Status)
	}
}

func TestCancelByNonOwnerFails(t *testing.T) {
	fx := newLedgerFixture(t)
	b := fx.createPending(t)

	_, err := fx.ledger.Cancel(context.Background(), b.ID, "user-2")
	assert.Equal(t, apperror.Authorization, apperror.KindOf(err))

	got, _ := fx.store.GetByID(context.Background(), b.ID)
	assert.Equal(t, model.StatusPending, got.Status)
}

func TestCancelTwiceIsNoOpSuccess(t *testing.T) {
	fx := newLedgerFixture(t)
	b := fx.createPending(t)

	_, err := fx.ledger.Cancel(context.Background(), b.ID, "user-1")
	require.NoError(t, err)

	again, err := fx.ledger.Cancel(context.Background(), b.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, again.Status)
}

// ─── Projections ──────────────────────────────────────────────────────────────

func TestListByListerJoinsThroughEventOwnership(t *testing.T) {
	fx := newLedgerFixture(t)
	fx.createPending(t)

	mine, err := fx.ledger.ListByLister(context.Background(), "lister-1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	other, err := fx.ledger.ListByLister(context.Background(), "lister-2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestListByEvent(t *testing.T) {
	fx := newLedgerFixture(t)
	fx.createPending(t)

	got, err := fx.ledger.ListByEvent(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

// createAt books evt-1 for user-1 at the given clock time a week out.
func (fx *ledgerFixture) createAt(t *testing.T, clock string) *model.Booking {
	t.Helper()
	req := validBookingRequest()
	req.Time = clock
	b, err := fx.ledger.CreateBooking(context.Background(), req, "user-1")
	require.NoError(t, err)
	return b
}
