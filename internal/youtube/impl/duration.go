package impl

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseISODuration converts the API's ISO 8601 duration (e.g. "PT1M30S",
// "P1DT2H") to a time.Duration.
func parseISODuration(raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "P") {
		return 0, fmt.Errorf("invalid ISO 8601 duration %q", raw)
	}
	s = s[1:]

	datePart := s
	timePart := ""
	if idx := strings.IndexByte(s, 'T'); idx >= 0 {
		datePart, timePart = s[:idx], s[idx+1:]
	}

	var total time.Duration
	parse := func(part string, units map[byte]time.Duration) error {
		num := ""
		for i := 0; i < len(part); i++ {
			c := part[i]
			if c >= '0' && c <= '9' {
				num += string(c)
				continue
			}
			unit, ok := units[c]
			if !ok || num == "" {
				return fmt.Errorf("invalid ISO 8601 duration %q", raw)
			}
			n, err := strconv.Atoi(num)
			if err != nil {
				return fmt.Errorf("invalid ISO 8601 duration %q", raw)
			}
			total += time.Duration(n) * unit
			num = ""
		}
		if num != "" {
			return fmt.Errorf("invalid ISO 8601 duration %q", raw)
		}
		return nil
	}

	if err := parse(datePart, map[byte]time.Duration{
		'D': 24 * time.Hour,
		'W': 7 * 24 * time.Hour,
	}); err != nil {
		return 0, err
	}
	if err := parse(timePart, map[byte]time.Duration{
		'H': time.Hour,
		'M': time.Minute,
		'S': time.Second,
	}); err != nil {
		return 0, err
	}
	return total, nil
}
