package engine

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderBuckets(t *testing.T) {
	tests := []struct {
		name    string
		keys    []string
		policy  OrderingPolicy
		reverse bool
		want    []string
	}{
		{
			name:   "weekday numeric",
			keys:   []string{"3", "1", "7", "2"},
			policy: OrderWeekday,
			want:   []string{"1", "2", "3", "7"},
		},
		{
			name:   "weekday names",
			keys:   []string{"Sunday", "wed", "Monday"},
			policy: OrderWeekday,
			want:   []string{"Monday", "wed", "Sunday"},
		},
		{
			name:   "weekday unranked after ranked",
			keys:   []string{"x", "3", "9", "1"},
			policy: OrderWeekday,
			want:   []string{"1", "3", "9", "x"},
		},
		{
			name:   "month",
			keys:   []string{"March", "Foo", "January", "feb"},
			policy: OrderMonth,
			want:   []string{"January", "feb", "March", "Foo"},
		},
		{
			name:   "hour",
			keys:   []string{"21", "8", "10"},
			policy: OrderHour,
			want:   []string{"8", "10", "21"},
		},
		{
			name:    "hour reversed",
			keys:    []string{"8", "21", "10"},
			policy:  OrderHour,
			reverse: true,
			want:    []string{"21", "10", "8"},
		},
		{
			name:   "hour_group normalizes separators",
			keys:   []string{"19:00 - 21:59", "8:00-10:59", "Late", "13:00 – 14:59", "Early"},
			policy: OrderHourGroup,
			want:   []string{"8:00-10:59", "13:00 – 14:59", "19:00 - 21:59", "Early", "Late"},
		},
		{
			name:    "hour_group reversed",
			keys:    []string{"8:00 - 10:59", "19:00 - 21:59", "11:00 - 12:59"},
			policy:  OrderHourGroup,
			reverse: true,
			want:    []string{"19:00 - 21:59", "11:00 - 12:59", "8:00 - 10:59"},
		},
		{
			name:   "generic numeric",
			keys:   []string{"10", "9", "100", "-1"},
			policy: OrderGeneric,
			want:   []string{"-1", "9", "10", "100"},
		},
		{
			name:   "generic lexical when any key is not numeric",
			keys:   []string{"b", "10", "a", "9"},
			policy: OrderGeneric,
			want:   []string{"10", "9", "a", "b"},
		},
		{
			name:   "insertion keeps order",
			keys:   []string{"Week 3", "Week 1", "Week 2"},
			policy: OrderInsertion,
			want:   []string{"Week 3", "Week 1", "Week 2"},
		},
		{
			name:    "insertion reversed",
			keys:    []string{"a", "c", "b"},
			policy:  OrderInsertion,
			reverse: true,
			want:    []string{"b", "c", "a"},
		},
		{
			name:   "empty",
			keys:   nil,
			policy: OrderMonth,
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OrderBuckets(tt.keys, tt.policy, tt.reverse)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("OrderBuckets mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOrderBucketsIdempotent(t *testing.T) {
	inputs := [][]string{
		{"3", "1", "7", "2", "x"},
		{"December", "January", "Smarch", "June"},
		{"19:00-21:59", "8:00 - 10:59", "unknown", "11:00 - 12:59"},
		{"5", "15", "10", "1.5"},
		{"pear", "apple", "fig"},
	}
	policies := []OrderingPolicy{OrderInsertion, OrderGeneric, OrderWeekday, OrderMonth, OrderHour, OrderHourGroup}

	for _, keys := range inputs {
		for _, p := range policies {
			once := OrderBuckets(keys, p, false)
			twice := OrderBuckets(once, p, false)
			assert.Equal(t, once, twice, "policy %s on %v", p, keys)

			if p == OrderInsertion {
				continue
			}
			onceRev := OrderBuckets(keys, p, true)
			twiceRev := OrderBuckets(onceRev, p, true)
			assert.Equal(t, onceRev, twiceRev, "reversed policy %s on %v", p, keys)
		}
	}
}

func TestOrderBucketsDoesNotMutateInput(t *testing.T) {
	keys := []string{"3", "1", "2"}
	_ = OrderBuckets(keys, OrderWeekday, true)
	assert.Equal(t, []string{"3", "1", "2"}, keys)
}

func TestReorderMovesValues(t *testing.T) {
	table := NewSeriesTable([]Field{Named("a"), Named("b")})
	table.Add(0, "March", 3)
	table.Add(0, "January", 1)
	table.Add(1, "February", 20)

	got := Reorder(table, OrderMonth, false)
	assert.Equal(t, []string{"January", "February", "March"}, got.Buckets)
	assert.Equal(t, []float64{1, 0, 3}, got.Values[0])
	assert.Equal(t, []float64{0, 20, 0}, got.Values[1])

	// source untouched
	assert.Equal(t, []string{"March", "January", "February"}, table.Buckets)
}

func TestReorderDecodedTable(t *testing.T) {
	var table SeriesTable
	require.NoError(t, json.Unmarshal([]byte(`{"buckets":["Mar","Jan"],"values":[[3,1]]}`), &table))
	table.Metrics = []Field{Named("a")}

	assert.Equal(t, 1.0, table.Value(0, "Jan"))
	got := Reorder(&table, OrderMonth, false)
	assert.Equal(t, []string{"Jan", "Mar"}, got.Buckets)
	assert.Equal(t, []float64{1, 3}, got.Values[0])
}

func TestParseOrderingPolicy(t *testing.T) {
	assert.Equal(t, OrderWeekday, ParseOrderingPolicy("weekday"))
	assert.Equal(t, OrderHourGroup, ParseOrderingPolicy("hour-group"))
	assert.Equal(t, OrderGeneric, ParseOrderingPolicy("alphabetical-ish"))
	assert.Equal(t, OrderInsertion, ParseOrderingPolicy("insertion"))
}

func TestPolicyFor(t *testing.T) {
	assert.Equal(t, OrderHour, PolicyFor(GranularityHour))
	assert.Equal(t, OrderHourGroup, PolicyFor(GranularityHourGroup))
	assert.Equal(t, OrderMonth, PolicyFor(GranularityMonth))
	assert.Equal(t, OrderGeneric, PolicyFor(GranularityTotal))
	assert.Equal(t, OrderInsertion, PolicyFor(GranularityWeek))
	assert.Equal(t, OrderInsertion, PolicyFor(GranularityDefault))
}

func TestNormalizeHourGroup(t *testing.T) {
	assert.Equal(t, "8:00 - 10:59", NormalizeHourGroup("8:00-10:59"))
	assert.Equal(t, "8:00 - 10:59", NormalizeHourGroup("  8:00   —  10:59 "))
	assert.Equal(t, "Late", NormalizeHourGroup("Late"))
}
