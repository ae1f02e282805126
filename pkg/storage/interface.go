package storage

import (
	"errors"

	"github.com/Sriram-PR/webdumper/pkg/models"
)

// ErrInvalidTransition is returned when a status update would move a page backwards
// (e.g. fetched -> claimed) or skip the claim.
var ErrInvalidTransition = errors.New("invalid page status transition")

// VisitedStore is the crawl's visited set.
// Every implementation must be safe for concurrent use by any number of goroutines.
type VisitedStore interface {
	// TryClaim atomically inserts url if absent.
	// Returns true iff this call performed the insertion; only the claimer may fetch the URL.
	TryClaim(url string) (bool, error)

	// CheckPageStatus returns the current status of url (PageStatusUnclaimed if never claimed)
	// and its entry when one exists.
	CheckPageStatus(url string) (models.PageStatus, *models.PageDBEntry, error)

	// UpdatePageStatus records a claimed URL's terminal state.
	// Fails with ErrInvalidTransition if entry.Status is not reachable from the current status.
	UpdatePageStatus(url string, entry *models.PageDBEntry) error

	// GetVisitedCount returns the number of claimed URLs.
	GetVisitedCount() (int, error)

	Close() error
}
