package util

import (
	"strings"
	"time"

	"github.com/dafibh/envelope/envelope-backend/internal/domain"
)

// ParseDate parses a calendar date in YYYY-MM-DD form, ignoring surrounding whitespace
func ParseDate(s string) (time.Time, error) {
	return time.Parse(domain.DateLayout, strings.TrimSpace(s))
}

// FormatDate renders the calendar date of t as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}
