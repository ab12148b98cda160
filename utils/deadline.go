// utils/deadline.go - Wall-clock to UTC normalization
package utils

import (
	"os"
	"sync"
	"time"
)

// TimeSourceHint declares how a caller-supplied wall-clock value should be
// interpreted.
type TimeSourceHint string

const (
	// TimeHintUTC means the value is already an absolute UTC instant.
	TimeHintUTC TimeSourceHint = "utc"
	// TimeHintLocal means the value is wall-clock time in the server's
	// configured timezone.
	TimeHintLocal TimeSourceHint = "local"
	// TimeHintUnspecified means the value carries no marker. It is treated
	// as local; every deadline and plan-date entry point must apply the
	// same rule or the stored instants skew.
	TimeHintUnspecified TimeSourceHint = "unspecified"
)

var (
	serverLocOnce sync.Once
	serverLoc     *time.Location
)

// ServerLocation returns the timezone used to interpret local wall-clock
// input, taken from SERVER_TIMEZONE (IANA name) or the process-local zone.
func ServerLocation() *time.Location {
	serverLocOnce.Do(func() {
		serverLoc = time.Local
		if name := os.Getenv("SERVER_TIMEZONE"); name != "" {
			if loc, err := time.LoadLocation(name); err == nil {
				serverLoc = loc
			}
		}
	})
	return serverLoc
}

// SetServerLocation overrides the configured timezone; for tests.
func SetServerLocation(loc *time.Location) {
	ServerLocation()
	serverLoc = loc
}

// ToUTC converts a wall-clock value into an unambiguous UTC instant. A UTC
// hint passes the instant through; Local and Unspecified rebuild the wall
// clock in the server's configured timezone before converting.
func ToUTC(wall time.Time, hint TimeSourceHint) time.Time {
	if hint == TimeHintUTC {
		return wall.UTC()
	}
	loc := ServerLocation()
	y, m, d := wall.Date()
	h, min, sec := wall.Clock()
	return time.Date(y, m, d, h, min, sec, wall.Nanosecond(), loc).UTC()
}
