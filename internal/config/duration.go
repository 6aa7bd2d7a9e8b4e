package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings, bare second
// counts, and durations with a "d" (day) unit.
type Duration time.Duration

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := parseDuration(raw)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

var dayUnitPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)d`)

// parseDuration accepts Go duration syntax, extends it with a "d" unit
// (1d = 24h), and treats a bare number as seconds for compatibility with the
// original flat config.
func parseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("duration is required")
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	if strings.ContainsRune(raw, 'd') {
		raw = dayUnitPattern.ReplaceAllStringFunc(raw, func(m string) string {
			days, err := strconv.ParseFloat(strings.TrimSuffix(m, "d"), 64)
			if err != nil {
				return m
			}
			return strconv.FormatFloat(days*24, 'f', -1, 64) + "h"
		})
	}
	return time.ParseDuration(raw)
}
