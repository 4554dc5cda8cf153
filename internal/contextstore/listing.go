package contextstore

import (
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/localrivet/leaveoff/internal/contextid"
	"github.com/localrivet/leaveoff/internal/errortypes"
)

// Entry is a stored item id paired with the creation time parsed from it.
type Entry struct {
	ID      string
	SavedAt time.Time
}

// ListNewest returns every item in store ordered by creation time, most
// recent first. Entries with equal timestamps keep the order List returned
// them in. Ids without a parseable timestamp are skipped with a warning.
func ListNewest(store ContextStore, logger *slog.Logger) ([]Entry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ids, err := store.List()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		savedAt, err := contextid.Parse(id)
		if err != nil {
			logger.Warn("Skipping entry with unparseable id", "context_id", id, "error", err)
			continue
		}
		entries = append(entries, Entry{ID: id, SavedAt: savedAt})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].SavedAt.After(entries[j].SavedAt)
	})
	return entries, nil
}

// Latest returns the most recently saved entry, or a not_found error when the
// store holds nothing.
func Latest(store ContextStore, logger *slog.Logger) (Entry, error) {
	entries, err := ListNewest(store, logger)
	if err != nil {
		return Entry{}, err
	}
	if len(entries) == 0 {
		return Entry{}, errortypes.NotFoundError(errors.New("store is empty"), "no saved contexts")
	}
	return entries[0], nil
}
