// Package store holds the ingested session history, most-recent first.
package store

import "github.com/KofuCodes/ReMind/internal/models"

// Store is the session history abstraction. The in-memory implementation
// is canonical; the interface exists so a bounded or persistent
// implementation can be swapped in without touching the scoring contract.
type Store interface {
	// Ingest validates a raw result, computes the derived fields against
	// the current baseline, assigns an ID and timestamp, and prepends the
	// record. On validation failure nothing is stored and the error is a
	// *models.ValidationError.
	Ingest(raw models.RawResult) (models.SessionRecord, error)

	// Latest returns the most recently ingested record, if any.
	Latest() (models.SessionRecord, bool)

	// All returns the full history, most-recent first.
	All() []models.SessionRecord

	// ApplyBaseline replaces the baseline used for future scoring and
	// recomputes the derived fields of the latest record only. Earlier
	// history keeps the scores it was ingested with.
	ApplyBaseline(baseline models.Baseline)

	// Baseline returns the currently active baseline.
	Baseline() models.Baseline

	// Merge appends an externally produced record keyed by its ID.
	// Duplicate or out-of-order delivery is a no-op; Merge reports
	// whether the record was actually added.
	Merge(rec models.SessionRecord) bool
}

// Archiver receives a best-effort copy of every ingested record. Archive
// failures are logged by the store and never fail ingestion.
type Archiver interface {
	Save(rec models.SessionRecord) error
}
