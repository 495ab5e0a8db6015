// Package suggest implements a basic text search map used for station
// name lookup.
//
// Keys are tokenized on whitespace boundaries and matched ignoring
// case; queries match prefixes of the stored tokens. Short tokens are
// ignored. Ranking is left to the caller.
package suggest

import (
	"sort"
	"strings"
)

// Suggester maps name tokens to payload values. Payloads are opaque;
// the station lookup stores stop ids.
type Suggester[T comparable] struct {
	tokens  []string // sorted for prefix range scans
	entries map[string]map[T]struct{}
	sorted  bool
}

// New returns an empty suggester.
func New[T comparable]() *Suggester[T] {
	return &Suggester[T]{
		entries: map[string]map[T]struct{}{},
	}
}

// Insert indexes the payload under each word of the key longer than 3
// characters.
func (s *Suggester[T]) Insert(key string, value T) {
	for _, word := range strings.Fields(key) {
		if len(word) <= 3 {
			continue
		}
		word = strings.ToLower(word)
		set := s.entries[word]
		if set == nil {
			set = map[T]struct{}{}
			s.entries[word] = set
			s.tokens = append(s.tokens, word)
			s.sorted = false
		}
		set[value] = struct{}{}
	}
}

// NumWords is the number of distinct tokens indexed.
func (s *Suggester[T]) NumWords() int {
	return len(s.entries)
}

// Search finds the payloads whose keys contain a token starting with
// every word of the query. Results are unordered.
func (s *Suggester[T]) Search(query string) []T {
	words := strings.Fields(query)
	if len(words) == 0 {
		return nil
	}
	results := s.prefixMatches(words[0])
	for _, word := range words[1:] {
		if len(results) == 0 {
			return nil
		}
		narrowed := map[T]struct{}{}
		for value := range s.prefixMatches(word) {
			if _, ok := results[value]; ok {
				narrowed[value] = struct{}{}
			}
		}
		results = narrowed
	}
	out := make([]T, 0, len(results))
	for value := range results {
		out = append(out, value)
	}
	return out
}

// prefixMatches unions the payload sets of every token with the prefix.
func (s *Suggester[T]) prefixMatches(prefix string) map[T]struct{} {
	if !s.sorted {
		sort.Strings(s.tokens)
		s.sorted = true
	}
	prefix = strings.ToLower(prefix)
	matches := map[T]struct{}{}
	i := sort.SearchStrings(s.tokens, prefix)
	for ; i < len(s.tokens) && strings.HasPrefix(s.tokens[i], prefix); i++ {
		for value := range s.entries[s.tokens[i]] {
			matches[value] = struct{}{}
		}
	}
	return matches
}
