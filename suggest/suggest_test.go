package suggest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/platy/transit-radar/suggest"
)

func TestSearchPrefixes(t *testing.T) {
	s := suggest.New[int]()
	s.Insert("U Alexanderplatz", 1)
	s.Insert("S+U Alexanderplatz", 2)
	s.Insert("Hauptbahnhof", 3)
	s.Insert("Alt-Tegel", 4)

	assert.ElementsMatch(t, []int{1, 2}, s.Search("alex"))
	assert.ElementsMatch(t, []int{1, 2}, s.Search("Alexanderplatz"))
	assert.ElementsMatch(t, []int{3}, s.Search("haupt"))
	assert.Empty(t, s.Search("zoo"))
}

func TestSearchIntersectsAllWords(t *testing.T) {
	s := suggest.New[int]()
	s.Insert("Schonhauser Allee", 1)
	s.Insert("Allee Center", 2)
	s.Insert("Schonleinstrasse", 3)

	assert.ElementsMatch(t, []int{1, 2}, s.Search("allee"))
	assert.ElementsMatch(t, []int{1, 3}, s.Search("schon"))
	assert.ElementsMatch(t, []int{1}, s.Search("schon allee"))
	assert.Empty(t, s.Search("schon center"))
}

func TestShortTokensIgnored(t *testing.T) {
	s := suggest.New[int]()
	s.Insert("U Alexanderplatz", 1)

	// "U" is too short to be indexed
	assert.Empty(t, s.Search("u"))
	assert.Equal(t, 1, s.NumWords())
}

func TestCaseInsensitive(t *testing.T) {
	s := suggest.New[int]()
	s.Insert("HAUPTBAHNHOF", 1)

	assert.ElementsMatch(t, []int{1}, s.Search("Haupt"))
}
