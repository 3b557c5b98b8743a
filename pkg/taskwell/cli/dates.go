package cli

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// dateLayouts are tried before natural-language parsing
var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04", time.RFC3339}

// ParseDueDate accepts an exact date (YYYY-MM-DD, with optional time, or
// RFC 3339) or a natural-language expression like "tomorrow" or "next friday
// at 5pm", resolved relative to now.
func ParseDueDate(input string, now time.Time) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, input); err == nil {
			return t, nil
		}
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	result, err := w.Parse(input, now)
	if err != nil {
		return time.Time{}, err
	}
	if result == nil {
		return time.Time{}, fmt.Errorf("could not understand date %q", input)
	}
	return result.Time, nil
}
