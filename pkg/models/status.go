package models

// PageStatus is the lifecycle state of a page URL.
// A URL moves unclaimed -> claimed -> fetched | fetch_failed and never returns to unclaimed.
type PageStatus string

const (
	PageStatusUnclaimed   PageStatus = ""             // Zero value = never seen
	PageStatusClaimed     PageStatus = "claimed"      // Inserted into the visited set, fetch in flight
	PageStatusFetched     PageStatus = "fetched"      // Page saved (or at least fetched and parsed)
	PageStatusFetchFailed PageStatus = "fetch_failed" // Fetch or parse failed; claim stands
)

// String implements fmt.Stringer for logging
func (s PageStatus) String() string {
	if s == "" {
		return "unclaimed"
	}
	return string(s)
}

// IsTerminal reports whether no further transition is allowed from s.
func (s PageStatus) IsTerminal() bool {
	return s == PageStatusFetched || s == PageStatusFetchFailed
}

// CanTransitionTo reports whether moving from s to next is a legal step.
func (s PageStatus) CanTransitionTo(next PageStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch s {
	case PageStatusUnclaimed:
		return next == PageStatusClaimed
	case PageStatusClaimed:
		return next.IsTerminal()
	}
	return false
}
