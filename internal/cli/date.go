package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDate is returned for --date values that are not a calendar date
var ErrInvalidDate = errors.New("invalid date")

// dateLayouts are the accepted --date spellings
var dateLayouts = []string{"20060102", "2006-01-02", "2006/01/02"}

// NormalizeDate converts YYYYMMDD, YYYY-MM-DD or YYYY/MM/DD to YYYYMMDD
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if len(s) != len(layout) {
			continue
		}
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("20060102"), nil
		}
	}
	return "", fmt.Errorf("%w: %q (want YYYYMMDD, YYYY-MM-DD or YYYY/MM/DD)", ErrInvalidDate, s)
}
