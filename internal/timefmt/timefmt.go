// Package timefmt renders the meeting time window shown on progress cards and
// in the minutes document. The platform reports meeting boundaries as decimal
// unix-second strings and presents all times in GMT+08.
package timefmt

import (
	"fmt"
	"strconv"
	"time"
)

var platformZone = time.FixedZone("GMT+08", 8*60*60)

// Range formats a start/end unix-second pair as a single display window, for
// example "Aug 24 (Sat) 15:19 - 16:04 GMT+08".
func Range(startTS, endTS string) (string, error) {
	start, err := parseUnix(startTS)
	if err != nil {
		return "", fmt.Errorf("parse start time: %w", err)
	}
	end, err := parseUnix(endTS)
	if err != nil {
		return "", fmt.Errorf("parse end time: %w", err)
	}
	startStr := start.Format("Jan 02 (Mon) 15:04")
	endStr := end.Format("15:04")
	return fmt.Sprintf("%s - %s GMT+08", startStr, endStr), nil
}

func parseUnix(value string) (time.Time, error) {
	seconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("unix timestamp %q: %w", value, err)
	}
	return time.Unix(seconds, 0).In(platformZone), nil
}
