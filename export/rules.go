package export

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ============================================================================
// COLUMN NAME RULES — warehouse column keys → readable CSV headers
// ============================================================================
// Rules run in order, case-insensitively, on the beautified header. Removal
// rules keep the column and only drop the word.
// ============================================================================

type renameRule struct {
	pattern *regexp.Regexp
	replace string
}

func rule(pattern, replace string) renameRule {
	return renameRule{pattern: regexp.MustCompile(`(?i)` + pattern), replace: replace}
}

var renameRules = []renameRule{
	rule(`round`, ""),
	rule(`despar`, ""),
	rule(`original`, ""),
	rule(`only`, ""),
	rule(`no negative`, ""),
	rule(`bool`, ""),
	rule(`euros`, ""),
	rule(`base`, ""),
	rule(`absolute not minus`, ""),
	rule(`absolute max limit`, ""),
	rule(`quote used percent`, "Used Ratio"),
	rule(`quote unused percent`, "Unused Ratio"),
	rule(`impression unfiltered calculation`, "Impressions"),
	rule(`total impressions`, "Impressions"),
	rule(`content name`, "Visual"),
	rule(`name campaign measure`, "Name Campaign"),
	rule(`date min`, "Start Date"),
	rule(`date max`, "End Date"),
	// whole word only, "window" must survive
	rule(`(^|[_\s])dow($|[_\s])`, "${1}Weekday${2}"),
	rule(`temp(erature)?`, "Temperature"),
	rule(`percentage ed`, "(in %)"),
	rule(`\d+`, ""),
}

// dropColumn matches technical columns that never reach an export.
var dropColumn = regexp.MustCompile(`(?i)agg|sort|tftf`)

var underscores = regexp.MustCompile(`_+`)

// IsTechnical reports whether a column is dropped from exports by name.
func IsTechnical(key string) bool {
	return dropColumn.MatchString(key)
}

// CleanColumnName applies the rename rules and title-cases the result.
// A name the rules reduce to nothing is returned beautified but otherwise
// untouched.
func CleanColumnName(title string) string {
	cleaned := title
	for _, r := range renameRules {
		cleaned = r.pattern.ReplaceAllString(cleaned, r.replace)
	}
	cleaned = underscores.ReplaceAllString(strings.TrimSpace(cleaned), " ")
	if out := BeautifyHeader(cleaned); out != "" {
		return out
	}
	return BeautifyHeader(title)
}

// BeautifyHeader keeps the part after the last ".", splits on "_" and spaces,
// capitalizes words longer than two characters and upper-cases the rest.
//
//	"kpi.total_impressions" → "Total Impressions"
//	"store_id"              → "Store ID"
func BeautifyHeader(key string) string {
	if i := strings.LastIndex(key, "."); i >= 0 {
		key = key[i+1:]
	}
	words := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || unicode.IsSpace(r)
	})
	for i, w := range words {
		if utf8.RuneCountInString(w) > 2 {
			r, size := utf8.DecodeRuneInString(w)
			words[i] = string(unicode.ToUpper(r)) + w[size:]
		} else {
			words[i] = strings.ToUpper(w)
		}
	}
	return strings.Join(words, " ")
}
