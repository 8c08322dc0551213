package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/dryad-restoration/dryad-backend/internal/domain"
)

var (
	truckOne = uuid.MustParse("70000000-0000-4000-8000-000000000001")
	truckTwo = uuid.MustParse("70000000-0000-4000-8000-000000000002")
)

func loadedScheduling(t *testing.T) (*ScheduleStore, *TruckStore) {
	t.Helper()
	set := loadFixtures(t)
	schedule := NewScheduleStore(nopLog(), &fakeList[*types.ScheduleEntry]{items: set.ScheduleEntries})
	trucks := NewTruckStore(nopLog(), &fakeList[*types.Truck]{items: set.Trucks}, schedule)
	require.NoError(t, schedule.Load(ctx()))
	require.NoError(t, trucks.Load(ctx()))
	return schedule, trucks
}

func TestScheduleStoreQueries(t *testing.T) {
	schedule, _ := loadedScheduling(t)

	assert.Len(t, schedule.Entries(), 3)
	assert.Len(t, schedule.ByDate("2026-10-16"), 2)
	assert.Len(t, schedule.ByTechnicianAndDate(techAlex, "2026-10-15"), 1)
	assert.Empty(t, schedule.ByTechnicianAndDate(techCasey, "2026-10-15"))
	assert.Empty(t, schedule.ByDate("2027-01-01"))
}

func TestTruckStoreAvailability(t *testing.T) {
	_, trucks := loadedScheduling(t)

	free := trucks.AvailableByDate("2026-10-16")
	require.Len(t, free, 1)
	assert.Equal(t, truckTwo, free[0].ID)

	free = trucks.AvailableByDate("2026-10-15")
	require.Len(t, free, 1)
	assert.Equal(t, truckOne, free[0].ID)

	assert.Len(t, trucks.AvailableByDate("2026-12-01"), 2, "the truck in maintenance never counts")
}

func TestScheduleStoreLoadError(t *testing.T) {
	s := NewScheduleStore(nopLog(), &fakeList[*types.ScheduleEntry]{err: errBackend})
	require.Error(t, s.Load(ctx()))
	assert.Equal(t, errBackend.Error(), s.Error())
	assert.Empty(t, s.Entries())
}

func TestQuoteStoreSelection(t *testing.T) {
	set := loadFixtures(t)
	src := &fakeQuotes{fakeList[*types.Quote]{items: set.Quotes}}
	s := NewQuoteStore(nopLog(), src)
	require.NoError(t, s.Load(ctx()))
	assert.Len(t, s.Quotes(), len(set.Quotes))
	assert.Nil(t, s.Selected())

	q, err := s.Select(ctx(), set.Quotes[0].ID)
	require.NoError(t, err)
	assert.Equal(t, q, s.Selected())

	require.NoError(t, s.Load(ctx()))
	require.NotNil(t, s.Selected(), "selection survives reload")
	assert.Equal(t, set.Quotes[0].ID, s.Selected().ID)

	_, err = s.Select(ctx(), uuid.New())
	assert.Error(t, err)
	assert.NotEmpty(t, s.Error())

	s.ClearSelection()
	assert.Nil(t, s.Selected())
}
