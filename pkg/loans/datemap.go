package loans

import (
	"sort"
	"time"

	"github.com/iwvelando/loan-schedule/pkg/datetime"
	"github.com/iwvelando/loan-schedule/pkg/money"
)

// DateMap is an ordered-by-date mapping of calendar days to amounts. It backs
// both the principal breakpoints and the compounding entries of a period.
// Keys are normalised to UTC midnight.
type DateMap struct {
	entries map[time.Time]money.Money
}

// NewDateMap returns an empty map.
func NewDateMap() *DateMap {
	return &DateMap{entries: make(map[time.Time]money.Money)}
}

// Put sets the amount for date, replacing any previous entry.
func (m *DateMap) Put(date time.Time, amount money.Money) {
	m.entries[datetime.Truncate(date)] = amount
}

// Add accumulates amount onto the entry for date.
func (m *DateMap) Add(date time.Time, amount money.Money) {
	key := datetime.Truncate(date)
	if existing, ok := m.entries[key]; ok {
		amount = existing.Plus(amount)
	}
	m.entries[key] = amount
}

// Get returns the amount for date.
func (m *DateMap) Get(date time.Time) (money.Money, bool) {
	amount, ok := m.entries[datetime.Truncate(date)]
	return amount, ok
}

// Contains reports whether date has an entry.
func (m *DateMap) Contains(date time.Time) bool {
	_, ok := m.entries[datetime.Truncate(date)]
	return ok
}

// Len returns the number of entries.
func (m *DateMap) Len() int {
	return len(m.entries)
}

// Keys returns a sorted snapshot of the dates. Mutating the map afterwards does
// not affect the returned slice.
func (m *DateMap) Keys() []time.Time {
	keys := make([]time.Time, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	return keys
}

// Sum totals every entry, starting from zero.
func (m *DateMap) Sum(zero money.Money) money.Money {
	total := zero
	for _, amount := range m.entries {
		total = total.Plus(amount)
	}
	return total
}
