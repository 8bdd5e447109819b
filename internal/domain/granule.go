package domain

import (
	"fmt"
	"time"
)

// Run identifies an IMERG product release stream.
type Run string

const (
	// RunEarly is the low-latency early run ("E").
	RunEarly Run = "E"
	// RunLate is the gauge-adjusted late run ("L").
	RunLate Run = "L"
)

// Name returns the human-readable stream name used in blob paths.
func (r Run) Name() string {
	if r == RunEarly {
		return "early"
	}
	return "late"
}

// Valid reports whether r is one of the two known streams.
func (r Run) Valid() bool {
	return r == RunEarly || r == RunLate
}

// VersionLetter returns the revision letter embedded in granule file names:
// "B" for version 7, empty for every other version.
func VersionLetter(version int) string {
	if version == 7 {
		return "B"
	}
	return ""
}

// BlobPrefix is the remote path prefix under which all artifacts for a
// product version live. The driver lists this prefix once per run.
func BlobPrefix(version int) string {
	return fmt.Sprintf("imerg/v%d", version)
}

// BlobName is the deterministic remote path of the output artifact for one
// date, e.g. "imerg/v7/imerg-daily-late-2024-06-01.tif".
func BlobName(run Run, version int, date time.Time) string {
	return fmt.Sprintf("%s/imerg-daily-%s-%s.tif", BlobPrefix(version), run.Name(), date.Format("2006-01-02"))
}

// Date truncates t to a UTC calendar date (midnight, nanosecond precision).
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Yesterday returns the calendar date one day before today according to the
// package clock.
func Yesterday() time.Time {
	return Date(clock.Now()).AddDate(0, 0, -1)
}

// Dates returns every calendar date from start through end inclusive, in
// chronological order. Returns nil when end precedes start.
func Dates(start, end time.Time) []time.Time {
	start, end = Date(start), Date(end)
	if end.Before(start) {
		return nil
	}
	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}
