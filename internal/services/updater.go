package services

import (
	"context"
	"fmt"

	"github.com/vvka-141/wwlatlong/pkg/latlong"
)

// ApplyUpdates writes the coordinates of every eligible record, in input order.
//
// Records missing either coordinate are skipped without an attempt; they are
// counted in the result and reported at verbose level only. The first failed
// UPDATE aborts the remaining batch. Statements already executed stay applied,
// since each one commits on its own.
//
// An empty input is not an error: an informational message is logged and the
// updater is never used.
func ApplyUpdates(
	ctx context.Context,
	records []latlong.LocationRecord,
	updater latlong.LocationUpdater,
	logger latlong.Logger,
) (latlong.UpdateResult, error) {
	var result latlong.UpdateResult

	if len(records) == 0 {
		logger.Info("No location information provided.")
		return result, nil
	}

	for _, rec := range records {
		if !rec.Eligible() {
			result.Skipped++
			result.SkippedIDs = append(result.SkippedIDs, rec.ID)
			continue
		}

		if err := updater.UpdateLocation(ctx, rec); err != nil {
			return result, fmt.Errorf("update location %d (CSV line %d): %w: %w",
				rec.ID, rec.Line, latlong.ErrExecutionFailed, err)
		}
		result.Updated++
	}

	if len(result.SkippedIDs) > 0 {
		logger.Verbose("Skipped %d location(s) missing latitude or longitude: %v", result.Skipped, result.SkippedIDs)
	}
	logger.Verbose("Executed %d UPDATE statement(s) against %s", result.Updated, latlong.LocationsTable)

	return result, nil
}
