package engine

import (
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// ============================================================================
// AXIS ORDERER — bucket keys → display order
// ============================================================================
// Rank policies look keys up in a fixed table. Keys a table does not know
// sort after every ranked key, lexically among themselves. Reverse is a
// separate flag and applies to every policy.
// ============================================================================

// OrderingPolicy is a total order over bucket keys.
type OrderingPolicy int

const (
	OrderInsertion OrderingPolicy = iota // keep first-seen order
	OrderGeneric                         // numeric if every key parses, else lexical
	OrderWeekday                         // 1–7 (or weekday names), Monday first
	OrderMonth                           // calendar month names
	OrderHour                            // hour of day 0–23
	OrderHourGroup                       // the six business-hour bands
)

var orderingNames = map[OrderingPolicy]string{
	OrderInsertion: "insertion",
	OrderGeneric:   "generic",
	OrderWeekday:   "weekday",
	OrderMonth:     "month",
	OrderHour:      "hour",
	OrderHourGroup: "hour_group",
}

func (p OrderingPolicy) String() string {
	if name, ok := orderingNames[p]; ok {
		return name
	}
	return "generic"
}

// ParseOrderingPolicy maps a policy name to its value.
// Unknown names fall back to OrderGeneric.
func ParseOrderingPolicy(s string) OrderingPolicy {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "-", "_")
	for p, name := range orderingNames {
		if name == key {
			return p
		}
	}
	return OrderGeneric
}

// MarshalText implements encoding.TextMarshaler.
func (p OrderingPolicy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *OrderingPolicy) UnmarshalText(b []byte) error {
	*p = ParseOrderingPolicy(string(b))
	return nil
}

// PolicyFor returns the natural ordering of labels produced by g.
func PolicyFor(g Granularity) OrderingPolicy {
	switch g {
	case GranularityHour:
		return OrderHour
	case GranularityHourGroup:
		return OrderHourGroup
	case GranularityMonth:
		return OrderMonth
	case GranularityTotal:
		return OrderGeneric
	}
	return OrderInsertion
}

// ============================================================================
// RANK TABLES
// ============================================================================

var weekdayRanks = map[string]int{
	"monday": 1, "mon": 1,
	"tuesday": 2, "tue": 2,
	"wednesday": 3, "wed": 3,
	"thursday": 4, "thu": 4,
	"friday": 5, "fri": 5,
	"saturday": 6, "sat": 6,
	"sunday": 7, "sun": 7,
}

var monthRanks = func() map[string]int {
	ranks := make(map[string]int, 24)
	for i, name := range monthNames {
		ranks[strings.ToLower(name)] = i + 1
		ranks[strings.ToLower(monthAbbrev[i])] = i + 1
	}
	return ranks
}()

var hourGroupRanks = func() map[string]int {
	ranks := make(map[string]int, len(HourGroups))
	for i, g := range HourGroups {
		ranks[NormalizeHourGroup(g)] = i
	}
	return ranks
}()

var (
	dashVariants = strings.NewReplacer("–", "-", "—", "-", "−", "-", "‐", "-")
	spacedDash   = regexp.MustCompile(`\s*-\s*`)
)

// NormalizeHourGroup collapses whitespace and unifies dash separators so
// "8:00-10:59", "8:00 – 10:59" and "8:00 - 10:59" compare equal.
func NormalizeHourGroup(key string) string {
	s := dashVariants.Replace(key)
	s = strings.Join(strings.Fields(s), " ")
	return spacedDash.ReplaceAllString(s, " - ")
}

// Ranked reports whether key has a position in the rank table of p.
func Ranked(key string, p OrderingPolicy) bool {
	_, ok := rankOf(key, p)
	return ok
}

func rankOf(key string, p OrderingPolicy) (float64, bool) {
	switch p {
	case OrderWeekday:
		if n, err := strconv.Atoi(strings.TrimSpace(key)); err == nil {
			return float64(n), n >= 1 && n <= 7
		}
		r, ok := weekdayRanks[strings.ToLower(strings.TrimSpace(key))]
		return float64(r), ok
	case OrderMonth:
		r, ok := monthRanks[strings.ToLower(strings.TrimSpace(key))]
		return float64(r), ok
	case OrderHour:
		n, err := strconv.Atoi(strings.TrimSpace(key))
		return float64(n), err == nil && n >= 0 && n <= 23
	case OrderHourGroup:
		r, ok := hourGroupRanks[NormalizeHourGroup(key)]
		return float64(r), ok
	case OrderGeneric:
		f, ok := ToFloat(key)
		return f, ok
	}
	return 0, false
}

// ============================================================================
// ORDERING
// ============================================================================

// OrderBuckets returns keys in the order given by p, reversed when reverse
// is set. The input slice is not modified.
func OrderBuckets(keys []string, p OrderingPolicy, reverse bool) []string {
	out := append([]string(nil), keys...)

	switch p {
	case OrderInsertion:
	case OrderGeneric:
		allNumeric := lo.EveryBy(out, func(k string) bool {
			_, ok := ToFloat(k)
			return ok
		})
		if allNumeric {
			sortByRank(out, p)
		} else {
			sort.Strings(out)
		}
	default:
		sortByRank(out, p)
	}

	if reverse {
		slices.Reverse(out)
	}
	return out
}

// sortByRank puts ranked keys first by rank, then unranked keys lexically.
// Ties break lexically so the result is a total order.
func sortByRank(keys []string, p OrderingPolicy) {
	sort.SliceStable(keys, func(i, j int) bool {
		ri, oki := rankOf(keys[i], p)
		rj, okj := rankOf(keys[j], p)
		switch {
		case oki && okj:
			if ri != rj {
				return ri < rj
			}
			return keys[i] < keys[j]
		case oki != okj:
			return oki
		}
		return keys[i] < keys[j]
	})
}

// Reorder returns a copy of t with buckets in the order given by p.
func Reorder(t *SeriesTable, p OrderingPolicy, reverse bool) *SeriesTable {
	ordered := OrderBuckets(t.Buckets, p, reverse)
	out := NewSeriesTable(t.Metrics)
	for _, b := range ordered {
		out.Register(b)
	}
	for m := range t.Metrics {
		for _, b := range ordered {
			out.Values[m][out.index[b]] = t.Value(m, b)
		}
	}
	return out
}
