package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking/internal/model"
)

var testNow = time.Date(2024, 5, 15, 10, 30, 0, 0, time.UTC)

func testStore() *memStore {
	m := newMemStore()
	m.addHotel("h1", "Grand Budapest")
	m.addRoomType("t-std", "h1", price(100))
	m.addRoomType("t-suite", "h1", price(250))
	m.addRoom("r101", "h1", "t-std", "101")
	m.addRoom("r102", "h1", "t-std", "102")
	m.addRoom("r301", "h1", "t-suite", "301")
	m.addDiscount(model.Discount{
		ID:                "d-save20",
		Code:              "SAVE20",
		AmountType:        model.DiscountPercentage,
		Amount:            20,
		MaxDiscountAmount: price(50),
		IsActive:          true,
		ValidFrom:         date("2024-05-01"),
		ValidTo:           date("2024-12-31"),
	})

	return m
}

func testService(m *memStore, mutate ...func(*Options)) (*Service, *recordingPublisher) {
	pub := &recordingPublisher{}
	opts := Options{
		Now:       func() time.Time { return testNow },
		NewID:     sequence("id"),
		Publisher: pub,
	}

	for _, fn := range mutate {
		fn(&opts)
	}

	return NewService(m, opts), pub
}

func createInput(from, to string, rooms ...string) CreateInput {
	return CreateInput{
		GuestID:        "guest-1",
		HotelID:        "h1",
		CheckIn:        date(from),
		CheckOut:       date(to),
		RoomIDs:        rooms,
		NumberOfGuests: 2,
	}
}

func TestCreate_BasePriceThreeNights(t *testing.T) {
	m := testStore()
	svc, _ := testService(m)

	b, err := svc.Create(context.Background(), createInput("2024-06-01", "2024-06-04", "r101"))

	require.NoError(t, err)
	assert.Equal(t, model.StatusPendingPayment, b.Status)
	assert.Equal(t, 300.0, b.TotalAmount)
	assert.Zero(t, b.DiscountAmount)
	assert.Equal(t, 300.0, b.FinalAmount)
	assert.Nil(t, b.DiscountID)
	assert.Equal(t, "Grand Budapest", b.HotelName)
	assert.Equal(t, []string{"101"}, b.RoomNumbers)

	require.Len(t, b.Lines, 1)
	line := b.Lines[0]
	assert.Equal(t, "r101", line.RoomID)
	assert.Equal(t, 3, line.NumberOfNights)
	assert.Equal(t, 100.0, line.PricePerNight)
	assert.Equal(t, 300.0, line.TotalPrice)
	assert.Equal(t, date("2024-06-01"), line.CheckInDate)
	assert.Equal(t, date("2024-06-04"), line.CheckOutDate)
}

func TestCreate_PercentageDiscountCapped(t *testing.T) {
	m := testStore()
	svc, _ := testService(m)

	in := createInput("2024-06-01", "2024-06-03", "r301")
	in.DiscountCode = "SAVE20"

	b, err := svc.Create(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, 500.0, b.TotalAmount)
	assert.Equal(t, 50.0, b.DiscountAmount)
	assert.Equal(t, 450.0, b.FinalAmount)
	require.NotNil(t, b.DiscountID)
	assert.Equal(t, "d-save20", *b.DiscountID)
	assert.Equal(t, 1, m.discount("d-save20").UsageCount)
}

func TestCreate_UnknownDiscountIgnored(t *testing.T) {
	m := testStore()
	svc, _ := testService(m)

	in := createInput("2024-06-01", "2024-06-03", "r301")
	in.DiscountCode = "NOPE"

	b, err := svc.Create(context.Background(), in)

	require.NoError(t, err)
	assert.Zero(t, b.DiscountAmount)
	assert.Equal(t, 500.0, b.FinalAmount)
	assert.Nil(t, b.DiscountID)
}

func TestCreate_ExhaustedDiscountIgnored(t *testing.T) {
	m := testStore()
	limit := 1
	d := m.state.discounts["d-save20"]
	d.UsageLimit = &limit
	m.state.discounts["d-save20"] = d

	svc, _ := testService(m)

	in := createInput("2024-06-01", "2024-06-03", "r301")
	in.DiscountCode = "SAVE20"

	first, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 50.0, first.DiscountAmount)

	in = createInput("2024-07-01", "2024-07-03", "r301")
	in.DiscountCode = "SAVE20"

	second, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Zero(t, second.DiscountAmount)
	assert.Equal(t, 1, m.discount("d-save20").UsageCount)
}

func TestCreate_FailureAtDiscountUsageLeavesNoRows(t *testing.T) {
	m := testStore()
	m.fail["IncrementDiscountUsage"] = errors.New("deadlock found")
	svc, pub := testService(m)

	in := createInput("2024-06-01", "2024-06-03", "r101", "t-suite")
	in.DiscountCode = "SAVE20"

	b, err := svc.Create(context.Background(), in)

	require.Error(t, err)
	assert.Nil(t, b)
	bookings, lines, _ := m.counts()
	assert.Zero(t, bookings)
	assert.Zero(t, lines)
	assert.Zero(t, m.discount("d-save20").UsageCount)
	assert.Empty(t, pub.events)
}

func TestCreate_OverlapRejectedLeavesNoNewRows(t *testing.T) {
	m := testStore()
	m.addBooking("b-existing", "r101", model.StatusConfirmed, "2024-07-01", "2024-07-05")
	svc, _ := testService(m)

	_, err := svc.Create(context.Background(), createInput("2024-07-03", "2024-07-06", "r101"))

	require.ErrorIs(t, err, ErrRoomUnavailable)
	assert.Equal(t, "r101", AsRoomUnavailable(err).RoomID)

	bookings, lines, _ := m.counts()
	assert.Equal(t, 1, bookings)
	assert.Equal(t, 1, lines)
}

func TestCreate_OneUnavailableRoomFailsWholeBooking(t *testing.T) {
	m := testStore()
	m.addBooking("b-existing", "r301", model.StatusPendingPayment, "2024-07-01", "2024-07-05")
	svc, _ := testService(m)

	_, err := svc.Create(context.Background(), createInput("2024-07-02", "2024-07-03", "r101", "r102", "r301"))

	require.ErrorIs(t, err, ErrRoomUnavailable)
	bookings, lines, _ := m.counts()
	assert.Equal(t, 1, bookings)
	assert.Equal(t, 1, lines)
}

func TestCreate_InvalidDateRange(t *testing.T) {
	m := testStore()
	svc, _ := testService(m)

	for _, in := range []CreateInput{
		createInput("2024-06-01", "2024-06-01", "r101"),
		createInput("2024-06-05", "2024-06-01", "r101"),
	} {
		_, err := svc.Create(context.Background(), in)
		assert.ErrorIs(t, err, ErrInvalidDateRange)
	}

	assert.Zero(t, m.commits)
}

func TestCreate_NoRooms(t *testing.T) {
	svc, _ := testService(testStore())

	_, err := svc.Create(context.Background(), createInput("2024-06-01", "2024-06-02"))

	assert.ErrorIs(t, err, ErrNoRoomsRequested)
}

func TestCreate_MixedTypesAndRooms(t *testing.T) {
	m := testStore()
	svc, _ := testService(m)

	b, err := svc.Create(context.Background(), createInput("2024-06-01", "2024-06-03", "r102", "t-std", "t-suite"))

	require.NoError(t, err)
	require.Len(t, b.Lines, 3)
	assert.Equal(t, "r102", b.Lines[0].RoomID)
	assert.Equal(t, "r101", b.Lines[1].RoomID)
	assert.Equal(t, "r301", b.Lines[2].RoomID)
	assert.Equal(t, 900.0, b.TotalAmount)

	require.Len(t, m.locked, 1)
	assert.Equal(t, []string{"r101", "r102", "r301"}, m.locked[0])
}

func TestCreate_NoDoubleAllocation(t *testing.T) {
	m := testStore()
	svc, _ := testService(m)
	ctx := context.Background()

	_, err := svc.Create(ctx, createInput("2024-06-01", "2024-06-05", "t-std"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, createInput("2024-06-03", "2024-06-04", "t-std"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, createInput("2024-06-02", "2024-06-06", "t-std"))
	require.ErrorIs(t, err, ErrNoAvailableRoomOfType)

	_, err = svc.Create(ctx, createInput("2024-06-04", "2024-06-05", "r101"))
	require.ErrorIs(t, err, ErrRoomUnavailable)

	bookings, lines, _ := m.counts()
	assert.Equal(t, 2, bookings)
	assert.Equal(t, 2, lines)
}

func TestCreate_PricingDeterministic(t *testing.T) {
	m := testStore()
	m.addTariff("spring", "t-std", 120, "2024-05-01", "2024-06-30")
	svc, _ := testService(m)
	ctx := context.Background()

	first, err := svc.Create(ctx, createInput("2024-06-10", "2024-06-12", "r101"))
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, first.ID, "guest-1", ""))

	second, err := svc.Create(ctx, createInput("2024-06-10", "2024-06-12", "r101"))
	require.NoError(t, err)

	assert.Equal(t, first.Lines[0].PricePerNight, second.Lines[0].PricePerNight)
	assert.Equal(t, first.Lines[0].TotalPrice, second.Lines[0].TotalPrice)
	assert.Equal(t, 240.0, second.TotalAmount)
	require.NotNil(t, second.Lines[0].TariffID)
	assert.Equal(t, "spring", *second.Lines[0].TariffID)
}

func TestCreate_PublishesEventAfterCommit(t *testing.T) {
	m := testStore()
	svc, pub := testService(m)

	b, err := svc.Create(context.Background(), createInput("2024-06-01", "2024-06-02", "r101"))
	require.NoError(t, err)

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, EventCreated, ev.Type)
	assert.Equal(t, b.ID, ev.BookingID)
	assert.Equal(t, []string{"r101"}, ev.RoomIDs)
	assert.Equal(t, model.StatusPendingPayment, ev.NewStatus)
	assert.Equal(t, testNow, ev.OccurredAt)
}

func TestCreate_PublishFailureOnlyLogged(t *testing.T) {
	m := testStore()
	warn := &warnLog{}
	svc, pub := testService(m, func(o *Options) { o.Logger = warn })
	pub.err = errors.New("broker down")

	b, err := svc.Create(context.Background(), createInput("2024-06-01", "2024-06-02", "r101"))

	require.NoError(t, err)
	assert.NotNil(t, b)
	assert.Len(t, warn.lines, 1)
}

func TestCreate_CommitFailure(t *testing.T) {
	m := testStore()
	m.fail["Commit"] = errors.New("lost connection")
	svc, _ := testService(m)

	_, err := svc.Create(context.Background(), createInput("2024-06-01", "2024-06-02", "r101"))

	require.Error(t, err)
	bookings, _, _ := m.counts()
	assert.Zero(t, bookings)
}

func TestListAndGet(t *testing.T) {
	m := testStore()
	svc, _ := testService(m)
	ctx := context.Background()

	mine, err := svc.Create(ctx, createInput("2024-06-01", "2024-06-02", "r101"))
	require.NoError(t, err)

	other := createInput("2024-06-01", "2024-06-02", "r102")
	other.GuestID = "guest-2"
	_, err = svc.Create(ctx, other)
	require.NoError(t, err)

	got, err := svc.Get(ctx, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, mine.ID, got.ID)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrBookingNotFound)

	list, err := svc.ListForGuest(ctx, "guest-1", 20, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	all, err := svc.List(ctx, ListFilter{HotelID: "h1", Status: model.StatusPendingPayment})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.List(ctx, ListFilter{Status: "archived"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
