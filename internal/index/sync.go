package index

import (
	"log/slog"

	"github.com/starford/katha/internal/deck"
)

// Sync brings the index up to date with snap. It is a no-op when the stored
// checksum already matches and reports whether anything was written.
func Sync(db SlideIndex, snap deck.Snapshot, logger *slog.Logger) (bool, error) {
	current, err := db.Checksum()
	if err != nil {
		return false, err
	}
	if current == snap.Checksum && current != "" {
		logger.Debug("sync: index up to date", slog.String("checksum", current))
		return false, nil
	}

	if err := db.Replace(snap.Checksum, RowsFromSlides(snap.Slides)); err != nil {
		return false, err
	}
	logger.Info("sync: indexed deck",
		slog.Int("slides", len(snap.Slides)),
		slog.String("checksum", snap.Checksum))
	return true, nil
}

// Listener returns a deck reload listener that re-indexes every new snapshot.
func Listener(db SlideIndex, logger *slog.Logger) func(deck.Snapshot) {
	return func(snap deck.Snapshot) {
		if _, err := Sync(db, snap, logger); err != nil {
			logger.Warn("sync: reindex failed", slog.String("error", err.Error()))
		}
	}
}
