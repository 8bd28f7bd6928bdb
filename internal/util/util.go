// Package util contains small helpers shared across the client packages.
package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RandomString returns a random alphanumeric string of the given length,
// built from hex-encoded UUIDs.
func RandomString(length int) string {
	var b strings.Builder
	for b.Len() < length {
		b.WriteString(strings.ReplaceAll(uuid.NewString(), "-", ""))
	}
	return b.String()[:length]
}

// NewID returns a fresh UUID v4 string.
func NewID() string {
	return uuid.NewString()
}

// FormatDuration renders a millisecond duration as "250ms", "2s" or "1.5s".
func FormatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	seconds := float64(ms) / 1000.0
	if seconds == float64(int64(seconds)) {
		return fmt.Sprintf("%ds", int64(seconds))
	}
	return fmt.Sprintf("%.1fs", seconds)
}

// NowMillis returns the current time as epoch milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
