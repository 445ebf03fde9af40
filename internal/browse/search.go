package browse

import "ebikerent/internal/models"

type SearchState struct {
	Location  string
	StartDate string
	EndDate   string
}

// SearchUpdate is a partial update; nil fields are left unchanged.
type SearchUpdate struct {
	Location  *string
	StartDate *string
	EndDate   *string
}

type SearchStore struct {
	s *store[SearchState]
}

func NewSearchStore() *SearchStore {
	return &SearchStore{s: newStore(SearchState{}, func(st SearchState) SearchState { return st })}
}

func (s *SearchStore) State() SearchState { return s.s.get() }

func (s *SearchStore) Update(u SearchUpdate) {
	s.s.update(func(st *SearchState) {
		if u.Location != nil {
			st.Location = *u.Location
		}
		if u.StartDate != nil {
			st.StartDate = *u.StartDate
		}
		if u.EndDate != nil {
			st.EndDate = *u.EndDate
		}
	})
}

func (s *SearchStore) Reset() { s.s.reset() }

func (s *SearchStore) Subscribe(fn func(SearchState)) func() { return s.s.subscribe(fn) }

// Apply copies the search location onto bike list filters.
func (st SearchState) Apply(f models.BikeFilters) models.BikeFilters {
	f.Location = st.Location
	return f
}
