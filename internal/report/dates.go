package report

import (
	"strings"

	"archreport/internal/archive"
)

// RenderDate trims unknown components from an ISO date:
// "1950-00-00" → "1950", "1950-03-00" → "1950-03".
func RenderDate(iso string) string {
	iso = strings.TrimSpace(iso)
	for strings.HasSuffix(iso, "-00") {
		iso = strings.TrimSuffix(iso, "-00")
	}
	return iso
}

// RenderDateStartEnd renders an event's display date. A free-text date wins;
// otherwise the start and end dates are shown, joined when they differ.
func RenderDateStartEnd(date, start, end string) string {
	if strings.TrimSpace(date) != "" {
		return date
	}
	start, end = RenderDate(start), RenderDate(end)
	switch {
	case start != "" && end != "" && start != end:
		return start + " - " + end
	case start != "":
		return start
	default:
		return end
	}
}

// renderEvent is RenderDateStartEnd for an optional event.
func renderEvent(e *archive.CreationEvent) (dates, start string) {
	if e == nil {
		return "", ""
	}
	return RenderDateStartEnd(e.Date, e.StartDate, e.EndDate), e.StartDate
}
