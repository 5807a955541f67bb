package analyzer

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	yearMonthPattern = regexp.MustCompile(`(20\d{2}-\d{2})`)
	yearPattern      = regexp.MustCompile(`(20\d{2})`)
)

// monthNames is ordered so that full names are tried before their
// abbreviations ("march" before "mar").
var monthNames = []struct {
	name string
	num  string
}{
	{"january", "01"}, {"jan", "01"},
	{"february", "02"}, {"feb", "02"},
	{"march", "03"}, {"mar", "03"},
	{"april", "04"}, {"apr", "04"},
	{"may", "05"},
	{"june", "06"}, {"jun", "06"},
	{"july", "07"}, {"jul", "07"},
	{"august", "08"}, {"aug", "08"},
	{"september", "09"}, {"sep", "09"}, {"sept", "09"},
	{"october", "10"}, {"oct", "10"},
	{"november", "11"}, {"nov", "11"},
	{"december", "12"}, {"dec", "12"},
}

// extractMonth pulls an invoice month out of the query: an explicit YYYY-MM
// wins, otherwise the first month name found, paired with an explicit year
// token or defaultYear. Empty string means no month was mentioned.
func extractMonth(query, defaultYear string) string {
	if m := yearMonthPattern.FindString(query); m != "" {
		return m
	}

	lowered := strings.ToLower(query)
	for _, month := range monthNames {
		if strings.Contains(lowered, month.name) {
			year := defaultYear
			if y := yearPattern.FindString(query); y != "" {
				year = y
			}
			return fmt.Sprintf("%s-%s", year, month.num)
		}
	}

	return ""
}
