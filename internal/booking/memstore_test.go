package booking

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// memState is the full dataset of memStore.  A transaction works on a
// clone and swaps it in on commit, so a rolled back transaction leaves
// no trace.
type memState struct {
	hotels    map[string]string
	roomTypes map[string]model.RoomType
	rooms     map[string]model.Room
	tariffs   []model.Tariff
	discounts map[string]model.Discount
	bookings  map[string]model.Booking
	lines     []model.BookingLine
	history   []model.StatusChange
}

func newMemState() *memState {
	return &memState{
		hotels:    map[string]string{},
		roomTypes: map[string]model.RoomType{},
		rooms:     map[string]model.Room{},
		discounts: map[string]model.Discount{},
		bookings:  map[string]model.Booking{},
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.hotels {
		c.hotels[k] = v
	}
	for k, v := range s.roomTypes {
		c.roomTypes[k] = v
	}
	for k, v := range s.rooms {
		c.rooms[k] = v
	}
	for k, v := range s.discounts {
		c.discounts[k] = v
	}
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	c.tariffs = append(c.tariffs, s.tariffs...)
	c.lines = append(c.lines, s.lines...)
	c.history = append(c.history, s.history...)

	return c
}

func (s *memState) booking(id string) (*model.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}

	b.HotelName = s.hotels[b.HotelID]
	b.Lines = nil
	b.RoomNumbers = nil

	for _, l := range s.lines {
		if l.BookingID != id {
			continue
		}
		b.Lines = append(b.Lines, l)
		b.RoomNumbers = append(b.RoomNumbers, s.rooms[l.RoomID].RoomNumber)
	}

	return &b, nil
}

func (s *memState) countOverlapping(roomID string, stay Stay, excludeBookingID string) int {
	n := 0

	for _, l := range s.lines {
		if l.RoomID != roomID || (excludeBookingID != "" && l.BookingID == excludeBookingID) {
			continue
		}

		status := s.bookings[l.BookingID].Status
		if status == model.StatusCancelled || status == model.StatusNoShow {
			continue
		}

		if NewStay(l.CheckInDate, l.CheckOutDate).Overlaps(stay) {
			n++
		}
	}

	return n
}

// memStore is an in-memory Store.  Setting fail[op] makes the named Tx
// method return that error.
type memStore struct {
	mu      sync.Mutex
	state   *memState
	fail    map[string]error
	locked  [][]string
	commits int
}

func newMemStore() *memStore {
	return &memStore{state: newMemState(), fail: map[string]error{}}
}

func (m *memStore) Begin(context.Context) (Tx, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return &memTx{store: m, st: m.state.clone()}, nil
}

func (m *memStore) GetBooking(_ context.Context, id string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state.booking(id)
}

func (m *memStore) ListBookings(_ context.Context, f ListFilter) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.Booking

	for id, b := range m.state.bookings {
		if f.GuestID != "" && b.GuestID != f.GuestID {
			continue
		}
		if f.HotelID != "" && b.HotelID != f.HotelID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}

		full, _ := m.state.booking(id)
		out = append(out, *full)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	return out, nil
}

type memTx struct {
	store *memStore
	st    *memState
	done  bool
}

func (t *memTx) check(op string) error {
	return t.store.fail[op]
}

func (t *memTx) IsRoomType(_ context.Context, id string) (bool, error) {
	if err := t.check("IsRoomType"); err != nil {
		return false, err
	}

	_, ok := t.st.roomTypes[id]

	return ok, nil
}

func (t *memTx) FirstFreeRoomOfType(_ context.Context, roomTypeID, hotelID string, stay Stay, exclude []string) (string, bool, error) {
	skip := map[string]bool{}
	for _, id := range exclude {
		skip[id] = true
	}

	var candidates []model.Room

	for _, r := range t.st.rooms {
		if r.RoomTypeID != roomTypeID || r.HotelID != hotelID || r.Status != model.RoomAvailable || !r.IsActive || skip[r.ID] {
			continue
		}

		if t.st.countOverlapping(r.ID, stay, "") > 0 {
			continue
		}

		candidates = append(candidates, r)
	}

	if len(candidates) == 0 {
		return "", false, nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].RoomNumber != candidates[j].RoomNumber {
			return candidates[i].RoomNumber < candidates[j].RoomNumber
		}
		return candidates[i].ID < candidates[j].ID
	})

	return candidates[0].ID, true, nil
}

func (t *memTx) CountOverlapping(_ context.Context, roomID string, stay Stay, excludeBookingID string) (int, error) {
	if err := t.check("CountOverlapping"); err != nil {
		return 0, err
	}

	return t.st.countOverlapping(roomID, stay, excludeBookingID), nil
}

func (t *memTx) RoomWithType(_ context.Context, roomID string) (*model.Room, *model.RoomType, error) {
	r, ok := t.st.rooms[roomID]
	if !ok {
		return nil, nil, ErrRoomNotFound
	}

	rt := t.st.roomTypes[r.RoomTypeID]

	return &r, &rt, nil
}

func (t *memTx) TariffOn(_ context.Context, roomTypeID string, day time.Time) (*model.Tariff, error) {
	for _, tr := range t.st.tariffs {
		if tr.RoomTypeID == roomTypeID && !day.Before(tr.StartDate) && !day.After(tr.EndDate) {
			tr := tr
			return &tr, nil
		}
	}

	return nil, nil
}

func (t *memTx) RedeemableDiscount(_ context.Context, code string, today time.Time) (*model.Discount, error) {
	for _, d := range t.st.discounts {
		if d.Code == code && Redeemable(&d, today) {
			d := d
			return &d, nil
		}
	}

	return nil, nil
}

func (t *memTx) IncrementDiscountUsage(_ context.Context, discountID string) error {
	if err := t.check("IncrementDiscountUsage"); err != nil {
		return err
	}

	d := t.st.discounts[discountID]
	d.UsageCount++
	t.st.discounts[discountID] = d

	return nil
}

func (t *memTx) LockRooms(_ context.Context, roomIDs []string) error {
	t.store.locked = append(t.store.locked, roomIDs)
	return nil
}

func (t *memTx) InsertBooking(_ context.Context, b *model.Booking) error {
	if err := t.check("InsertBooking"); err != nil {
		return err
	}

	t.st.bookings[b.ID] = *b

	return nil
}

func (t *memTx) InsertLines(_ context.Context, lines []model.BookingLine) error {
	if err := t.check("InsertLines"); err != nil {
		return err
	}

	t.st.lines = append(t.st.lines, lines...)

	return nil
}

func (t *memTx) GetBooking(_ context.Context, id string, _ bool) (*model.Booking, error) {
	return t.st.booking(id)
}

func (t *memTx) Lines(_ context.Context, bookingID string) ([]model.BookingLine, error) {
	var out []model.BookingLine

	for _, l := range t.st.lines {
		if l.BookingID == bookingID {
			out = append(out, l)
		}
	}

	return out, nil
}

func (t *memTx) UpdateStatus(_ context.Context, bookingID, status string, at time.Time) error {
	b := t.st.bookings[bookingID]
	b.Status = status
	b.UpdatedAt = at
	t.st.bookings[bookingID] = b

	return nil
}

func (t *memTx) MarkCancelled(_ context.Context, bookingID, actorID, reason string, at time.Time) error {
	b := t.st.bookings[bookingID]
	b.Status = model.StatusCancelled
	b.CancelledAt = &at
	b.CancelledBy = &actorID
	b.CancellationReason = &reason
	b.UpdatedAt = at
	t.st.bookings[bookingID] = b

	return nil
}

func (t *memTx) InsertStatusChange(_ context.Context, c *model.StatusChange) error {
	t.st.history = append(t.st.history, *c)
	return nil
}

func (t *memTx) SetBookingRoomsStatus(_ context.Context, bookingID, status string) error {
	if err := t.check("SetBookingRoomsStatus"); err != nil {
		return err
	}

	for _, l := range t.st.lines {
		if l.BookingID == bookingID {
			r := t.st.rooms[l.RoomID]
			r.Status = status
			t.st.rooms[l.RoomID] = r
		}
	}

	return nil
}

func (t *memTx) SetRoomStatus(_ context.Context, roomID, status string) error {
	if err := t.check("SetRoomStatus"); err != nil {
		return err
	}

	r := t.st.rooms[roomID]
	r.Status = status
	t.st.rooms[roomID] = r

	return nil
}

func (t *memTx) UpdateLine(_ context.Context, line *model.BookingLine) error {
	for i := range t.st.lines {
		if t.st.lines[i].ID == line.ID {
			t.st.lines[i] = *line
			return nil
		}
	}

	return ErrLineNotFound
}

func (t *memTx) UpdateTotals(_ context.Context, bookingID string, total, final float64, at time.Time) error {
	if err := t.check("UpdateTotals"); err != nil {
		return err
	}

	b := t.st.bookings[bookingID]
	b.TotalAmount = total
	b.FinalAmount = final
	b.UpdatedAt = at
	t.st.bookings[bookingID] = b

	return nil
}

func (t *memTx) Commit() error {
	if err := t.check("Commit"); err != nil {
		return err
	}

	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	t.store.state = t.st
	t.store.commits++
	t.done = true

	return nil
}

func (t *memTx) Rollback() error {
	t.done = true
	return nil
}

// fixture helpers

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}

	return t
}

func price(v float64) *float64 { return &v }

func (m *memStore) addHotel(id, name string) {
	m.state.hotels[id] = name
}

func (m *memStore) addRoomType(id, hotelID string, base *float64) {
	m.state.roomTypes[id] = model.RoomType{ID: id, HotelID: hotelID, Name: id, MaxOccupancy: 2, BasePrice: base}
}

func (m *memStore) addRoom(id, hotelID, typeID, number string) {
	m.state.rooms[id] = model.Room{ID: id, HotelID: hotelID, RoomTypeID: typeID, RoomNumber: number, Status: model.RoomAvailable, IsActive: true}
}

func (m *memStore) addTariff(id, typeID string, p float64, from, to string) {
	m.state.tariffs = append(m.state.tariffs, model.Tariff{ID: id, RoomTypeID: typeID, Price: p, StartDate: date(from), EndDate: date(to)})
}

func (m *memStore) addDiscount(d model.Discount) {
	m.state.discounts[d.ID] = d
}

// addBooking seeds a committed booking holding one line on roomID.
func (m *memStore) addBooking(id, roomID, status, from, to string) {
	room := m.state.rooms[roomID]
	m.state.bookings[id] = model.Booking{
		ID:           id,
		GuestID:      "guest-seed",
		HotelID:      room.HotelID,
		CheckInDate:  date(from),
		CheckOutDate: date(to),
		Status:       status,
	}
	m.state.lines = append(m.state.lines, model.BookingLine{
		ID:           id + "-line",
		BookingID:    id,
		RoomID:       roomID,
		CheckInDate:  date(from),
		CheckOutDate: date(to),
	})
}

func (m *memStore) room(id string) model.Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state.rooms[id]
}

func (m *memStore) discount(id string) model.Discount {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state.discounts[id]
}

func (m *memStore) counts() (bookings, lines, history int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.state.bookings), len(m.state.lines), len(m.state.history)
}

func (m *memStore) historyFor(bookingID string) []model.StatusChange {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.StatusChange
	for _, c := range m.state.history {
		if c.BookingID == bookingID {
			out = append(out, c)
		}
	}

	return out
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, ev)

	return p.err
}

type warnLog struct {
	lines []string
}

func (w *warnLog) Warnf(format string, _ ...interface{}) {
	w.lines = append(w.lines, format)
}

// sequence returns an id generator yielding prefix-1, prefix-2 and so on.
func sequence(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + "-" + strconv.Itoa(n)
	}
}
