package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intPtr(n int) *int { return &n }

func TestLabelOf(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		g      Granularity
		opts   LabelOptions
		want   string
		wantOK bool
	}{
		{"day from date", "2024-01-05", GranularityDay, LabelOptions{}, "5 Jan", true},
		{"day from time", time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), GranularityDay, LabelOptions{}, "10 Mar", true},
		{"week monday", "2024-01-01", GranularityWeek, LabelOptions{}, "Week 1", true},
		{"week iso year boundary", "2024-12-30", GranularityWeek, LabelOptions{}, "Week 1", true},
		{"week 53", "2021-01-03", GranularityWeek, LabelOptions{}, "Week 53", true},
		{"week range", "2021-01-03", GranularityWeek, LabelOptions{WeekRange: true}, "Week 53 2020-12-28 2021-01-03", true},
		{"week range midweek", "2024-01-03T15:00:00Z", GranularityWeek, LabelOptions{WeekRange: true}, "Week 1 2024-01-01 2024-01-07", true},
		{"month", "2024-02-01", GranularityMonth, LabelOptions{}, "February", true},
		{"month from unix millis", int64(1704067200000), GranularityMonth, LabelOptions{}, "January", true},
		{"month unparsable", "not a date", GranularityMonth, LabelOptions{}, "", false},
		{"hour from timestamp", "2024-01-01T08:30:00", GranularityHour, LabelOptions{}, "8", true},
		{"hour bare int", 21, GranularityHour, LabelOptions{}, "21", true},
		{"hour before window", 7, GranularityHour, LabelOptions{}, "", false},
		{"hour after window", "2024-01-01T22:00:00", GranularityHour, LabelOptions{}, "", false},
		{"hour_group 7 skipped", 7, GranularityHourGroup, LabelOptions{}, "", false},
		{"hour_group 22 skipped", 22, GranularityHourGroup, LabelOptions{}, "", false},
		{"hour_group 8", 8, GranularityHourGroup, LabelOptions{}, "8:00 - 10:59", true},
		{"hour_group 10", "10", GranularityHourGroup, LabelOptions{}, "8:00 - 10:59", true},
		{"hour_group 11", 11, GranularityHourGroup, LabelOptions{}, "11:00 - 12:59", true},
		{"hour_group 14", 14, GranularityHourGroup, LabelOptions{}, "13:00 - 14:59", true},
		{"hour_group 16", 16, GranularityHourGroup, LabelOptions{}, "15:00 - 16:59", true},
		{"hour_group 17", 17, GranularityHourGroup, LabelOptions{}, "17:00 - 18:59", true},
		{"hour_group 21", 21, GranularityHourGroup, LabelOptions{}, "19:00 - 21:59", true},
		{"hour_group timestamp", "2024-05-01T19:45:00Z", GranularityHourGroup, LabelOptions{}, "19:00 - 21:59", true},
		{"total", "2024-03-05T09:15:00Z", GranularityTotal, LabelOptions{}, "2024-03-05 09", true},
		{"total outside window", "2024-03-05T23:00:00Z", GranularityTotal, LabelOptions{}, "", false},
		{"default string trimmed", "  North ", GranularityDefault, LabelOptions{}, "North", true},
		{"default integral float", 12.0, GranularityDefault, LabelOptions{}, "12", true},
		{"default fraction", 12.5, GranularityDefault, LabelOptions{}, "12.5", true},
		{"default meta decimals", 12.5, GranularityDefault, LabelOptions{Meta: Meta{Decimals: intPtr(2)}}, "12.50", true},
		{"default meta unit", 3, GranularityDefault, LabelOptions{Meta: Meta{Unit: "min"}}, "3 min", true},
		{"default date", "2024-01-01", GranularityDefault, LabelOptions{}, "2024-01-01", true},
		{"default datetime", "2024-01-01T10:30:00", GranularityDefault, LabelOptions{}, "2024-01-01 10:30", true},
		{"default bool", true, GranularityDefault, LabelOptions{}, "true", true},
		{"nil skipped", nil, GranularityDefault, LabelOptions{}, "", false},
		{"blank skipped", "   ", GranularityMonth, LabelOptions{}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LabelOf(tt.value, tt.g, tt.opts)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveLabelMissingAxis(t *testing.T) {
	_, ok := DeriveLabel(Row{"sales": 10}, "date", GranularityMonth)
	assert.False(t, ok)

	label, ok := DeriveLabel(Row{"date": "2024-07-14"}, "date", GranularityMonth)
	assert.True(t, ok)
	assert.Equal(t, "July", label)
}

func TestLabelsCollapseByteForByte(t *testing.T) {
	values := []any{
		"2024-01-01",
		"2024-01-01T00:00:00Z",
		"2024-01-01T00:00:00.000",
		"2024-01-01 00:00:00",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, g := range []Granularity{GranularityDay, GranularityWeek, GranularityMonth} {
		seen := map[string]bool{}
		for _, v := range values {
			label, ok := LabelOf(v, g, LabelOptions{})
			assert.True(t, ok, "%s %v", g, v)
			seen[label] = true
		}
		assert.Len(t, seen, 1, "granularity %s produced %v", g, seen)
	}
}

func TestOffsetsShareBucket(t *testing.T) {
	values := []any{
		"2024-01-01T10:00:00+02:00",
		"2024-01-01T08:00:00Z",
		time.Date(2024, 1, 1, 3, 0, 0, 0, time.FixedZone("EST", -5*3600)),
	}
	for _, g := range []Granularity{GranularityHour, GranularityHourGroup, GranularityTotal, GranularityDay} {
		seen := map[string]bool{}
		for _, v := range values {
			label, ok := LabelOf(v, g, LabelOptions{})
			assert.True(t, ok, "%s %v", g, v)
			seen[label] = true
		}
		assert.Len(t, seen, 1, "granularity %s produced %v", g, seen)
	}

	label, _ := LabelOf("2024-01-01T10:00:00+02:00", GranularityTotal, LabelOptions{})
	assert.Equal(t, "2024-01-01 08", label)
}

func TestParseGranularity(t *testing.T) {
	assert.Equal(t, GranularityHourGroup, ParseGranularity("hour_group"))
	assert.Equal(t, GranularityHourGroup, ParseGranularity("Hour-Group"))
	assert.Equal(t, GranularityMonth, ParseGranularity(" month "))
	assert.Equal(t, GranularityDefault, ParseGranularity("fortnight"))
	assert.Equal(t, GranularityDefault, ParseGranularity(""))

	for g, name := range granularityNames {
		assert.Equal(t, g, ParseGranularity(name))
		assert.Equal(t, name, g.String())
	}
}

func TestGranularityText(t *testing.T) {
	var g Granularity
	assert.NoError(t, g.UnmarshalText([]byte("week")))
	assert.Equal(t, GranularityWeek, g)

	b, err := GranularityTotal.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "total", string(b))
}
