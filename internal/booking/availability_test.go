package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking/internal/model"
)

func checkAvailability(t *testing.T, m *memStore, stay Stay, exclude string, ids ...string) error {
	t.Helper()

	tx, err := m.Begin(context.Background())
	require.NoError(t, err)

	defer tx.Rollback()

	return CheckAvailability(context.Background(), tx, ids, stay, exclude)
}

func availabilityStore() *memStore {
	m := newMemStore()
	m.addHotel("h1", "Grand")
	m.addRoomType("t", "h1", price(100))
	m.addRoom("r", "h1", "t", "101")
	m.addRoom("s", "h1", "t", "102")
	m.addBooking("b1", "r", model.StatusConfirmed, "2024-07-01", "2024-07-05")

	return m
}

func TestCheckAvailability_OverlapRejected(t *testing.T) {
	m := availabilityStore()

	err := checkAvailability(t, m, NewStay(date("2024-07-03"), date("2024-07-06")), "", "s", "r")

	require.ErrorIs(t, err, ErrRoomUnavailable)
	unavailable := AsRoomUnavailable(err)
	require.NotNil(t, unavailable)
	assert.Equal(t, "r", unavailable.RoomID)
}

func TestCheckAvailability_BackToBackStaysAllowed(t *testing.T) {
	m := availabilityStore()

	assert.NoError(t, checkAvailability(t, m, NewStay(date("2024-07-05"), date("2024-07-07")), "", "r"))
	assert.NoError(t, checkAvailability(t, m, NewStay(date("2024-06-28"), date("2024-07-01")), "", "r"))
}

func TestCheckAvailability_InactiveBookingsIgnored(t *testing.T) {
	for _, status := range []string{model.StatusCancelled, model.StatusNoShow} {
		t.Run(status, func(t *testing.T) {
			m := newMemStore()
			m.addHotel("h1", "Grand")
			m.addRoomType("t", "h1", price(100))
			m.addRoom("r", "h1", "t", "101")
			m.addBooking("b1", "r", status, "2024-07-01", "2024-07-05")

			assert.NoError(t, checkAvailability(t, m, NewStay(date("2024-07-02"), date("2024-07-03")), "", "r"))
		})
	}
}

func TestCheckAvailability_ActiveStatusesBlock(t *testing.T) {
	for _, status := range []string{model.StatusPendingPayment, model.StatusConfirmed, model.StatusCheckedIn, model.StatusCheckedOut} {
		t.Run(status, func(t *testing.T) {
			m := newMemStore()
			m.addHotel("h1", "Grand")
			m.addRoomType("t", "h1", price(100))
			m.addRoom("r", "h1", "t", "101")
			m.addBooking("b1", "r", status, "2024-07-01", "2024-07-05")

			assert.ErrorIs(t, checkAvailability(t, m, NewStay(date("2024-07-02"), date("2024-07-03")), "", "r"), ErrRoomUnavailable)
		})
	}
}

func TestCheckAvailability_DuplicateRoomRejected(t *testing.T) {
	m := availabilityStore()

	err := checkAvailability(t, m, NewStay(date("2024-08-01"), date("2024-08-02")), "", "s", "s")

	require.ErrorIs(t, err, ErrRoomUnavailable)
	assert.Equal(t, "s", AsRoomUnavailable(err).RoomID)
}

func TestCheckAvailability_ExcludedBookingIgnored(t *testing.T) {
	m := availabilityStore()

	assert.NoError(t, checkAvailability(t, m, NewStay(date("2024-07-01"), date("2024-07-05")), "b1", "r"))
}

func TestAsRoomUnavailable_OtherErrors(t *testing.T) {
	assert.Nil(t, AsRoomUnavailable(nil))
	assert.Nil(t, AsRoomUnavailable(ErrBookingNotFound))
}
