package gtfs

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseTime converts HH:MM:SS into seconds since midnight. Hours may exceed
// 23. An empty string yields MissingTime.
func ParseTime(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return MissingTime, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		v[i] = n
	}
	if v[1] > 59 || v[2] > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return v[0]*3600 + v[1]*60 + v[2], nil
}

// FormatTime renders seconds since midnight as HH:MM:SS
func FormatTime(secs int) string {
	if secs < 0 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
}

// ParseDate converts a YYYYMMDD service date into midnight UTC of that day
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("20060102", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}
