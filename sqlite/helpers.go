package sqlite

import (
	"fmt"
	"strings"
	"time"
)

// timeFormat is the layout used for every timestamp column.
const timeFormat = time.RFC3339Nano

// parseTime parses a timestamp column, naming the field on failure.
func parseTime(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(timeFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}

// seedSeparator joins seeds in the seeds column. URLs never contain it.
const seedSeparator = "\n"

func joinSeeds(seeds []string) string {
	return strings.Join(seeds, seedSeparator)
}

func splitSeeds(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, seedSeparator)
}
