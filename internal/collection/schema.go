package collection

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"signaldesk/internal/core"
)

// Schema describes one record kind to the generic collection.
type Schema[T any] struct {
	Kind  string
	ID    func(T) string
	SetID func(*T, string)
	// Searchable returns the string fields a search term is matched against.
	Searchable func(T) []string
	Categories map[string]Category[T]
	Toggles    map[string]func(*T)
	Normalize  func(*T, time.Time)
	Validate   func(T) error
}

// Category is one filter dimension. Values lists the accepted values
// (compared case-insensitively); nil accepts any value.
type Category[T any] struct {
	Values []string
	Match  func(rec T, value string, now time.Time) bool
}

// Equals builds a category that compares a string field case-insensitively.
func Equals[T any](field func(T) string, values ...string) Category[T] {
	return Category[T]{
		Values: values,
		Match: func(rec T, value string, _ time.Time) bool {
			return strings.EqualFold(field(rec), value)
		},
	}
}

type matcher[T any] func(rec T, now time.Time) bool

func (s Schema[T]) compile(categories map[string]string) ([]matcher[T], error) {
	keys := make([]string, 0, len(categories))
	for k := range categories {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []matcher[T]
	for _, key := range keys {
		value := strings.TrimSpace(categories[key])
		cat, ok := s.Categories[strings.ToLower(key)]
		if !ok {
			return nil, fmt.Errorf("%w: %s cannot be filtered by %q (filters: %s)",
				core.ErrUnknownFilter, s.Kind, key, strings.Join(s.CategoryNames(), ", "))
		}
		if value == "" || strings.EqualFold(value, "all") {
			continue
		}
		if cat.Values != nil && !containsFold(cat.Values, value) {
			return nil, fmt.Errorf("%w: %s %s=%q is not one of %s",
				core.ErrUnknownFilter, s.Kind, key, value, strings.Join(cat.Values, ", "))
		}
		match := cat.Match
		out = append(out, func(rec T, now time.Time) bool {
			return match(rec, value, now)
		})
	}
	return out, nil
}

func (s Schema[T]) matchesSearch(rec T, lowerTerm string) bool {
	for _, field := range s.Searchable(rec) {
		if strings.Contains(strings.ToLower(field), lowerTerm) {
			return true
		}
	}
	return false
}

func (s Schema[T]) validate(rec T) error {
	if s.Validate == nil {
		return nil
	}
	return s.Validate(rec)
}

// CategoryNames lists the filter dimensions in a stable order.
func (s Schema[T]) CategoryNames() []string {
	names := make([]string, 0, len(s.Categories))
	for k := range s.Categories {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ToggleNames lists the toggleable fields in a stable order.
func (s Schema[T]) ToggleNames() []string {
	names := make([]string, 0, len(s.Toggles))
	for k := range s.Toggles {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func containsFold(values []string, v string) bool {
	for _, candidate := range values {
		if strings.EqualFold(candidate, v) {
			return true
		}
	}
	return false
}
