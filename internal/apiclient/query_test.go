package apiclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleFilters struct {
	Owner         string  `url:"owner"`
	AvailableOnly bool    `url:"available_only"`
	MinPrice      float64 `url:"min_price"`
	Page          int     `url:"page"`
	Search        string  `url:"search"`
	Hidden        string
	Ptr           *int `url:"ptr"`
}

func TestBuildQuery(t *testing.T) {
	zero := 0
	q := BuildQuery(sampleFilters{
		Owner:         "me",
		AvailableOnly: true,
		MinPrice:      12.5,
		Search:        "cargo bike",
		Hidden:        "x",
		Ptr:           &zero,
	})
	assert.Equal(t, "available_only=true&min_price=12.5&owner=me&ptr=0&search=cargo+bike", q)
}

func TestBuildQuerySkipsEmpty(t *testing.T) {
	assert.Equal(t, "", BuildQuery(sampleFilters{}))
	assert.Equal(t, "", BuildQuery((*sampleFilters)(nil)))
	assert.Equal(t, "", BuildQuery(42))
	assert.Equal(t, "page=2", BuildQuery(&sampleFilters{Page: 2}))
}

func TestWithQuery(t *testing.T) {
	assert.Equal(t, "/bikes/", WithQuery("/bikes/", sampleFilters{}))
	assert.Equal(t, "/bikes/?page=3", WithQuery("/bikes/", sampleFilters{Page: 3}))
}
