// Package core holds the domain records and the pure aggregation logic.
//
// This file contains parsing for monetary amounts. Amounts are carried as
// integer cents (smallest currency unit) end to end; floating point is never
// used for arithmetic.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts a user-entered amount string to cents.
//
// Only plain non-negative integers are accepted: record amounts are whole
// units of the smallest denomination, so signs, decimal separators and
// grouping characters are rejected at the boundary.
//
// Examples:
//
//	ParseAmount("2500") -> 2500, nil
//	ParseAmount("")     -> 0, ErrInvalidAmount
//	ParseAmount("-5")   -> 0, ErrInvalidAmount
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns the difference of two amounts. The result may be negative.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}
