// Package rrule wraps the RFC 5545 recurrence evaluation library for the
// day-granular windows the materialization engine works with.
package rrule

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/nate-dsc/finsync/internal/recurdate"
)

// ParseRule parses an RFC 5545 RRULE string and anchors it at the UTC
// calendar day of anchorStart. A leading "RRULE:" prefix is tolerated.
func ParseRule(ruleStr string, anchorStart time.Time) (*rrule.RRule, error) {
	ruleStr = strings.TrimPrefix(ruleStr, "RRULE:")

	opt, err := rrule.StrToROption(ruleStr)
	if err != nil {
		return nil, fmt.Errorf("parse recurrence rule: %w", err)
	}

	// Expansion runs at day granularity: the anchor is re-anchored at UTC
	// midnight so occurrences are offset-independent UTC midnights.
	opt.Dtstart = recurdate.RecurrenceDate(anchorStart)
	return rrule.NewRRule(*opt)
}

// Between returns the occurrence days of the rule within [from, to],
// inclusive on both ends, ascending. The bounds are normalized to calendar
// days; from == to is a valid single-day window. A COUNT-bounded rule that is
// already exhausted yields an empty result, never an error.
func Between(ruleStr string, anchorStart, from, to time.Time) ([]time.Time, error) {
	rule, err := ParseRule(ruleStr, anchorStart)
	if err != nil {
		return nil, err
	}

	start := recurdate.RecurrenceDate(from)
	end := recurdate.RecurrenceDate(to)
	if end.Before(start) {
		return nil, nil
	}
	return rule.Between(start, end, true), nil
}

// InstallmentRule builds the COUNT-bounded monthly rule backing a fixed-count
// installment purchase. Once the count is exhausted the rule expands to
// nothing and the definition goes dormant.
func InstallmentRule(installments int) string {
	return fmt.Sprintf("FREQ=MONTHLY;COUNT=%d", installments)
}

// IsRecurring reports whether the string looks like a usable RRULE.
func IsRecurring(ruleStr string) bool {
	return ruleStr != "" && strings.Contains(strings.ToUpper(ruleStr), "FREQ=")
}
