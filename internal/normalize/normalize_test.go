package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCellFraction(t *testing.T) {
	n := New()

	tests := []struct {
		raw  string
		want string
	}{
		{"0.5", "12:00"},                 // half a day
		{"0.3333333333333333", "08:00"},  // 8:00 as stored by real workbooks
		{"0.7083333333333334", "17:00"},
		{"0.04861111", "01:10"},          // rounds to 70 minutes
		{"0.9999999", "00:00"},           // clamped to 23:59, then bumped by the correction
		{"1.5", ""}, // not a fraction of a day
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Cell(tt.raw))
		})
	}
}

func TestCellRoundingCorrection(t *testing.T) {
	n := New()

	// 0.3118055555 * 1440 = 449.0 -> 07:29, bumped to the clean boundary.
	assert.Equal(t, "07:30", n.Cell("0.31180555555"))
	assert.Equal(t, "07:30", n.Cell("07:29"))
	assert.Equal(t, "13:00", n.Cell("12:59"))
	assert.Equal(t, "00:00", n.Cell("23:59"))
	// Minutes not one short of a 10-minute boundary pass through.
	assert.Equal(t, "07:28", n.Cell("07:28"))
	assert.Equal(t, "07:31", n.Cell("07:31"))

	off := &Normalizer{CorrectRounding: false}
	assert.Equal(t, "07:29", off.Cell("07:29"))
}

func TestCellTextFormats(t *testing.T) {
	n := New()

	assert.Equal(t, "08:00", n.Cell("08:00"))
	assert.Equal(t, "08:00", n.Cell("8:0"))
	assert.Equal(t, "08:00", n.Cell("0800"))
	assert.Equal(t, "08:00", n.Cell("8"))
	// "0" is the whole hour midnight, not an empty value; the batch
	// paths later drop "00:00" as a placeholder.
	assert.Equal(t, "00:00", n.Cell("0"))
	assert.Equal(t, "23:45", n.Cell("2345"))
	assert.Equal(t, "", n.Cell("2460"))
	assert.Equal(t, "", n.Cell("25:00"))
	assert.Equal(t, "", n.Cell("banana"))
	assert.Equal(t, "", n.Cell(""))
	assert.Equal(t, "", n.Cell("   "))
}

func TestTextIdempotent(t *testing.T) {
	// Canonical input comes back unchanged.
	for _, token := range []string{"00:00", "08:00", "12:30", "23:45"} {
		assert.Equal(t, token, Text(token))
	}
}

func TestTextWholeHour(t *testing.T) {
	assert.Equal(t, "07:00", Text("7"))
	assert.Equal(t, "23:00", Text("23"))
	// 24 is past the whole-hour range and falls through to packed HHMM.
	assert.Equal(t, "00:24", Text("24"))
	assert.Equal(t, "", Text("7.5"))
}

func TestExtractTimes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "prose with connectors",
			text: "8:00 às 12:00 e 13:30-17:30",
			want: []string{"08:00", "12:00", "13:30", "17:30"},
		},
		{
			name: "h separator",
			text: "8h00 12h00",
			want: []string{"08:00", "12:00"},
		},
		{
			name: "packed digits",
			text: "0800 1200 1300 1700",
			want: []string{"08:00", "12:00", "13:00", "17:00"},
		},
		{
			name: "mixed and duplicated",
			text: "08:00 0800; 12:00",
			want: []string{"08:00", "12:00"},
		},
		{
			name: "sorted ascending",
			text: "17:30 08:00 13:30 12:00",
			want: []string{"08:00", "12:00", "13:30", "17:30"},
		},
		{
			name: "out of range dropped",
			text: "25:00 08:00 2460",
			want: []string{"08:00"},
		},
		{
			name: "empty",
			text: "sem horários aqui",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTimes(tt.text))
		})
	}
}
