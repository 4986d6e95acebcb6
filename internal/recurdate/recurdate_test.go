package recurdate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nate-dsc/finsync/internal/recurdate"
)

func TestRecurrenceDate(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "strips time of day",
			in:   time.Date(2025, 3, 15, 14, 37, 59, 120, time.UTC),
			want: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "positive offset resolves to UTC day",
			in:   time.Date(2025, 3, 15, 23, 30, 0, 0, time.FixedZone("UTC+8", 8*3600)),
			want: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "negative offset resolves to UTC day",
			in:   time.Date(2025, 3, 15, 22, 0, 0, 0, time.FixedZone("UTC-5", -5*3600)),
			want: time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "midnight is a fixed point",
			in:   time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
			want: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, recurdate.RecurrenceDate(tt.in))
		})
	}
}

func TestDBTimestamp(t *testing.T) {
	in := time.Date(2025, 3, 15, 14, 7, 59, 999999, time.UTC)
	assert.Equal(t, "2025-03-15 14:07", recurdate.DBTimestamp(in))

	local := time.Date(2025, 3, 15, 22, 7, 0, 0, time.FixedZone("UTC+8", 8*3600))
	assert.Equal(t, "2025-03-15 14:07", recurdate.DBTimestamp(local))
}

func TestOccurrenceDBTimestampStableAcrossTimeOfDay(t *testing.T) {
	early := time.Date(2025, 3, 15, 0, 0, 1, 0, time.UTC)
	late := time.Date(2025, 3, 15, 23, 59, 59, 0, time.UTC)

	a := recurdate.OccurrenceDBTimestamp(early)
	b := recurdate.OccurrenceDBTimestamp(late)
	assert.Equal(t, a, b)
	assert.Equal(t, "2025-03-15 00:00", a)
}

func TestNewCalendarDayElapsed(t *testing.T) {
	tests := []struct {
		name string
		last time.Time
		now  time.Time
		want bool
	}{
		{
			name: "same day different hours",
			last: time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC),
			now:  time.Date(2025, 3, 15, 20, 0, 0, 0, time.UTC),
			want: false,
		},
		{
			name: "equal instants",
			last: time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC),
			now:  time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC),
			want: false,
		},
		{
			name: "one minute across midnight",
			last: time.Date(2025, 3, 15, 23, 59, 0, 0, time.UTC),
			now:  time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "multi-day gap",
			last: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
			now:  time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "now earlier than last",
			last: time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC),
			now:  time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC),
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, recurdate.NewCalendarDayElapsed(tt.last, tt.now))
		})
	}
}
