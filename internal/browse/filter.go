package browse

import (
	"slices"

	"ebikerent/internal/models"
)

var DefaultPriceRange = [2]float64{10, 200}

type FilterState struct {
	SelectedTypes []models.BikeType
	PriceRange    [2]float64
	ShowMap       bool
}

func (st FilterState) clone() FilterState {
	st.SelectedTypes = slices.Clone(st.SelectedTypes)
	return st
}

// PriceInRange reports whether price lies in the inclusive price range.
func (st FilterState) PriceInRange(price float64) bool {
	return price >= st.PriceRange[0] && price <= st.PriceRange[1]
}

// Matches reports whether bike passes the filter: its type is selected, or
// no type is, and its daily rate is within the price range.
func (st FilterState) Matches(bike models.Bike) bool {
	if len(st.SelectedTypes) > 0 && !slices.Contains(st.SelectedTypes, bike.BikeType) {
		return false
	}
	return st.PriceInRange(bike.DailyRate.Float())
}

// Apply returns the bikes passing the filter, in order.
func (st FilterState) Apply(bikes []models.Bike) []models.Bike {
	out := make([]models.Bike, 0, len(bikes))
	for _, b := range bikes {
		if st.Matches(b) {
			out = append(out, b)
		}
	}
	return out
}

type FilterUpdate struct {
	SelectedTypes []models.BikeType
	PriceRange    *[2]float64
	ShowMap       *bool
}

type FilterStore struct {
	s *store[FilterState]
}

func NewFilterStore() *FilterStore {
	initial := FilterState{SelectedTypes: []models.BikeType{}, PriceRange: DefaultPriceRange}
	return &FilterStore{s: newStore(initial, FilterState.clone)}
}

func (f *FilterStore) State() FilterState { return f.s.get() }

// Update merges u into the state. A non-nil SelectedTypes replaces the
// selection, so an empty non-nil slice clears it.
func (f *FilterStore) Update(u FilterUpdate) {
	f.s.update(func(st *FilterState) {
		if u.SelectedTypes != nil {
			st.SelectedTypes = slices.Clone(u.SelectedTypes)
		}
		if u.PriceRange != nil {
			st.PriceRange = *u.PriceRange
		}
		if u.ShowMap != nil {
			st.ShowMap = *u.ShowMap
		}
	})
}

func (f *FilterStore) Reset() { f.s.reset() }

func (f *FilterStore) Subscribe(fn func(FilterState)) func() { return f.s.subscribe(fn) }

// ToggleType adds t to the selection, or removes it when already selected.
func (f *FilterStore) ToggleType(t models.BikeType) {
	f.s.update(func(st *FilterState) {
		if i := slices.Index(st.SelectedTypes, t); i >= 0 {
			st.SelectedTypes = slices.Delete(st.SelectedTypes, i, i+1)
			return
		}
		st.SelectedTypes = append(st.SelectedTypes, t)
	})
}

func (f *FilterStore) PriceInRange(price float64) bool { return f.State().PriceInRange(price) }

func (f *FilterStore) Matches(bike models.Bike) bool { return f.State().Matches(bike) }

func (f *FilterStore) Apply(bikes []models.Bike) []models.Bike { return f.State().Apply(bikes) }
