package domain

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// RecoveryReading is one night's recovery measurement. StatusCode is set only
// for readings parsed from the recharge API.
type RecoveryReading struct {
	Date       time.Time `json:"date"`
	Value      float64   `json:"value"`
	StatusCode *int      `json:"status_code,omitempty"`
}

// SortByDate returns a copy of readings in ascending date order. Readings on
// the same date keep their input order.
func SortByDate(readings []RecoveryReading) []RecoveryReading {
	sorted := slices.Clone(readings)
	slices.SortStableFunc(sorted, func(a, b RecoveryReading) int {
		return a.Date.Compare(b.Date)
	})
	return sorted
}

// Latest returns the reading with the greatest date. When several share that
// date, the one listed last wins.
func Latest(readings []RecoveryReading) (RecoveryReading, error) {
	if len(readings) == 0 {
		return RecoveryReading{}, ErrNoData
	}
	sorted := SortByDate(readings)
	return sorted[len(sorted)-1], nil
}

// Delta returns latest minus previous value after ordering by date.
func Delta(readings []RecoveryReading) (float64, error) {
	if len(readings) < 2 {
		return 0, ErrInsufficientData
	}
	sorted := SortByDate(readings)
	n := len(sorted)
	return sorted[n-1].Value - sorted[n-2].Value, nil
}

// RoundDelta rounds to one decimal place and normalizes negative zero.
func RoundDelta(d float64) float64 {
	r := math.Round(d*10) / 10
	if r == 0 {
		return 0
	}
	return r
}

// FormatDelta renders a delta with an explicit sign and one decimal, e.g. "+5.0".
func FormatDelta(d float64) string {
	return fmt.Sprintf("%+.1f", RoundDelta(d))
}
