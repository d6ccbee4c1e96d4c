package model

import "time"

// stampLayouts are the timestamp formats accepted when parsing stamps.
// The clock emits the first; the rest tolerate imported data.
var stampLayouts = []string{
	"2006-01-02T15:04:05.000Z0700",
	time.RFC3339Nano,
	time.RFC3339,
}

// ParseStamp parses an ISO-8601 stamp. Missing or unparseable stamps are
// treated as the zero time so they contribute nothing to recency.
func ParseStamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range stampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// Recency reduces a snapshot to the single comparable instant used for
// last-writer-wins arbitration: the maximum of the aggregate stamp, every
// stakeholder's created/updated stamps, and every interaction's occurrence
// stamp.
func Recency(s *AppState) time.Time {
	if s == nil {
		return time.Time{}
	}
	max := ParseStamp(s.UpdatedAt)
	for i := range s.Stakeholders {
		if t := ParseStamp(s.Stakeholders[i].CreatedAt); t.After(max) {
			max = t
		}
		if t := ParseStamp(s.Stakeholders[i].UpdatedAt); t.After(max) {
			max = t
		}
	}
	for i := range s.Interactions {
		if t := ParseStamp(s.Interactions[i].OccurredAt); t.After(max) {
			max = t
		}
	}
	return max
}

// Newer reports whether candidate is strictly more recent than current.
// Equal recency keeps the current snapshot.
func Newer(candidate, current *AppState) bool {
	return Recency(candidate).After(Recency(current))
}
