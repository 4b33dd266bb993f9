// Package timeorder sorts dispatch times by shift rather than by clock.
//
// The day shift starts at ShiftStart and runs to midnight; the night shift continues
// from midnight until the next day shift. Hours before ShiftStart are therefore pushed
// past midnight, so 19:00 sorts before 03:00, which sorts before 06:00.
package timeorder

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/xelth-com/loadboard/internal/models"
	"github.com/xelth-com/loadboard/internal/units"
)

// DefaultShiftStart is the hour the first operational shift begins
const DefaultShiftStart = 7

// Ordering maps HH:MM strings to shift-relative minutes
type Ordering struct {
	ShiftStart int
}

// Default is the ordering used by SortKey and SortOrders
var Default = Ordering{ShiftStart: DefaultShiftStart}

// SortKey returns the shift-relative sort key of a HH:MM time
func SortKey(t string) (int, error) {
	return Default.SortKey(t)
}

// SortOrders returns orders sorted by dispatch time; the input is not modified
func SortOrders(orders []models.Order) []models.Order {
	return Default.SortOrders(orders)
}

// SortKey returns minutes since ShiftStart's clock hour on the operational day
func (o Ordering) SortKey(t string) (int, error) {
	h, m, err := Parse(t)
	if err != nil {
		return 0, err
	}
	if h < o.ShiftStart {
		h += 24
	}
	return h*60 + m, nil
}

// SortOrders sorts a copy of orders by time. Unparsable times sort last.
func (o Ordering) SortOrders(orders []models.Order) []models.Order {
	return SortBy(o, orders, func(order models.Order) string { return order.Time })
}

// SortBy stably sorts a copy of items by the time each one reports
func SortBy[T any](o Ordering, items []T, timeOf func(T) string) []T {
	keys := make([]int, len(items))
	idx := make([]int, len(items))
	for i, item := range items {
		k, err := o.SortKey(timeOf(item))
		if err != nil {
			k = math.MaxInt
		}
		keys[i] = k
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return keys[idx[a]] < keys[idx[b]] })

	out := make([]T, len(items))
	for i, j := range idx {
		out[i] = items[j]
	}
	return out
}

// Parse splits a 24-hour HH:MM string. Single-digit hours are accepted.
func Parse(t string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(t), ":")
	if len(parts) != 2 || len(parts[1]) != 2 || len(parts[0]) == 0 || len(parts[0]) > 2 {
		return 0, 0, fmt.Errorf("%w: time %q is not HH:MM", units.ErrInvalidInput, t)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: hour in %q", units.ErrInvalidInput, t)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: minute in %q", units.ErrInvalidInput, t)
	}
	return hour, minute, nil
}

// Valid reports whether t is a 24-hour HH:MM time
func Valid(t string) bool {
	_, _, err := Parse(t)
	return err == nil
}
