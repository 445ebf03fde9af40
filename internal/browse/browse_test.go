package browse

import (
	"strconv"
	"sync"
	"testing"

	"ebikerent/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestFilterPriceRange(t *testing.T) {
	f := NewFilterStore()
	assert.Equal(t, [2]float64{10, 200}, f.State().PriceRange)

	assert.False(t, f.Matches(models.Bike{BikeType: models.BikeCity, DailyRate: 250}))
	assert.True(t, f.Matches(models.Bike{BikeType: models.BikeCity, DailyRate: 150}))
	assert.True(t, f.PriceInRange(10))
	assert.True(t, f.PriceInRange(200))
	assert.False(t, f.PriceInRange(9.99))
}

func TestFilterSelectedTypes(t *testing.T) {
	f := NewFilterStore()
	f.Update(FilterUpdate{SelectedTypes: []models.BikeType{models.BikeMountain, models.BikeCargo}})

	assert.False(t, f.Matches(models.Bike{BikeType: models.BikeRoad, DailyRate: 50}))
	assert.True(t, f.Matches(models.Bike{BikeType: models.BikeCargo, DailyRate: 50}))

	bikes := []models.Bike{
		{ID: 1, BikeType: models.BikeRoad, DailyRate: 50},
		{ID: 2, BikeType: models.BikeCargo, DailyRate: 50},
		{ID: 3, BikeType: models.BikeMountain, DailyRate: 500},
		{ID: 4, BikeType: models.BikeMountain, DailyRate: 80},
	}
	got := f.Apply(bikes)
	assert.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, int64(4), got[1].ID)
}

func TestFilterToggleAndReset(t *testing.T) {
	f := NewFilterStore()
	var seen []FilterState
	unsubscribe := f.Subscribe(func(st FilterState) { seen = append(seen, st) })

	f.ToggleType(models.BikeCargo)
	f.ToggleType(models.BikeRoad)
	f.ToggleType(models.BikeCargo)
	assert.Equal(t, []models.BikeType{models.BikeRoad}, f.State().SelectedTypes)

	show := true
	f.Update(FilterUpdate{ShowMap: &show})
	st := f.State()
	assert.True(t, st.ShowMap)
	assert.Equal(t, []models.BikeType{models.BikeRoad}, st.SelectedTypes, "partial update keeps other fields")

	f.Reset()
	assert.Empty(t, f.State().SelectedTypes)
	assert.False(t, f.State().ShowMap)
	assert.Len(t, seen, 5)

	unsubscribe()
	f.ToggleType(models.BikeCity)
	assert.Len(t, seen, 5)
}

func TestFilterStateIsCopied(t *testing.T) {
	f := NewFilterStore()
	f.ToggleType(models.BikeCargo)
	st := f.State()
	st.SelectedTypes[0] = models.BikeRoad
	assert.Equal(t, []models.BikeType{models.BikeCargo}, f.State().SelectedTypes)
}

func TestSearchStore(t *testing.T) {
	s := NewSearchStore()
	loc := "Lisbon"
	start := "2025-07-01"
	s.Update(SearchUpdate{Location: &loc})
	s.Update(SearchUpdate{StartDate: &start})

	assert.Equal(t, SearchState{Location: "Lisbon", StartDate: "2025-07-01"}, s.State())
	assert.Equal(t, "Lisbon", s.State().Apply(models.BikeFilters{Search: "cargo"}).Location)

	s.Reset()
	assert.Equal(t, SearchState{}, s.State())
}

func TestPagination(t *testing.T) {
	p := NewPagination(0)
	assert.Equal(t, models.DefaultPageSize, p.PageSize)
	assert.Equal(t, 0, p.TotalPages())

	p.Total = 25
	assert.Equal(t, 3, p.TotalPages())
	assert.True(t, p.HasNext())
	assert.False(t, p.HasPrev())

	p.SetPage(7)
	assert.Equal(t, 3, p.Page)
	assert.False(t, p.HasNext())

	f := p.Apply(models.BikeFilters{})
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 10, f.PageSize)

	p.SetPage(0)
	assert.Equal(t, 1, p.Page)
	p.SetPage(2)
	p.Reset()
	assert.Equal(t, 1, p.Page)
}

func TestConcurrentUpdatesNotifyInOrder(t *testing.T) {
	s := NewSearchStore()
	var (
		mu   sync.Mutex
		last SearchState
	)
	s.Subscribe(func(st SearchState) {
		mu.Lock()
		last = st
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			loc := "city-" + strconv.Itoa(i)
			s.Update(SearchUpdate{Location: &loc})
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, s.State(), last)
}
