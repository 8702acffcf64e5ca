package store

import (
	"crypto/rand"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/KofuCodes/ReMind/internal/models"
	"github.com/KofuCodes/ReMind/internal/scoring"
)

// MemoryStore keeps the session history in an in-process slice guarded by
// a single mutex; each ingest is an atomic append. History growth is
// unbounded, which is accepted for this scope.
type MemoryStore struct {
	mu       sync.Mutex
	records  []models.SessionRecord
	seen     map[string]struct{}
	baseline models.Baseline
	strategy scoring.Strategy
	archive  Archiver
	entropy  *ulid.MonotonicEntropy
	now      func() time.Time
	log      *zap.Logger
}

func NewMemoryStore(log *zap.Logger, strategy scoring.Strategy, baseline models.Baseline) *MemoryStore {
	return &MemoryStore{
		seen:     make(map[string]struct{}),
		baseline: baseline,
		strategy: strategy,
		entropy:  ulid.Monotonic(rand.Reader, 0),
		now:      time.Now,
		log:      log,
	}
}

// AttachArchive wires a best-effort persistent mirror of ingested records.
func (s *MemoryStore) AttachArchive(a Archiver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archive = a
}

func (s *MemoryStore) Ingest(raw models.RawResult) (models.SessionRecord, error) {
	if err := validate(raw); err != nil {
		return models.SessionRecord{}, err
	}

	s.mu.Lock()

	now := s.now()
	rec := models.SessionRecord{
		ID:             s.newID(raw.Source, now),
		Source:         raw.Source,
		SequenceLength: raw.SequenceLength,
		RoundsPlayed:   raw.RoundsPlayed,
		RoundsCorrect:  raw.RoundsCorrect,
		AvgReactionMs:  raw.AvgReactionMs,
		Patient:        raw.Patient,
		Timestamp:      now,
	}

	if raw.Score != nil {
		rec.Score = *raw.Score
	} else {
		rec.Score = float64(raw.RoundsCorrect)
	}
	if raw.RoundsPlayed > 0 {
		rec.Accuracy = float64(raw.RoundsCorrect) / float64(raw.RoundsPlayed)
	}

	scoring.Enrich(s.strategy, &rec, s.baseline)

	s.records = append([]models.SessionRecord{rec}, s.records...)
	s.seen[rec.ID] = struct{}{}
	archive := s.archive
	s.mu.Unlock()

	// The archive write runs outside the lock so a slow or hung database
	// never stalls local ingestion or reads.
	if archive != nil {
		if err := archive.Save(rec); err != nil {
			s.log.Error("Failed to archive session record", zap.String("id", rec.ID), zap.Error(err))
		}
	}

	return rec, nil
}

func (s *MemoryStore) Latest() (models.SessionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) == 0 {
		return models.SessionRecord{}, false
	}
	return s.records[0], true
}

func (s *MemoryStore) All() []models.SessionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.SessionRecord, len(s.records))
	copy(out, s.records)
	return out
}

func (s *MemoryStore) ApplyBaseline(baseline models.Baseline) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.baseline = baseline
	if len(s.records) > 0 {
		// Only the latest record is rescored; this mirrors the original
		// behavior and is a documented limitation, not retroactive.
		scoring.Enrich(s.strategy, &s.records[0], s.baseline)
	}
}

func (s *MemoryStore) Baseline() models.Baseline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseline
}

func (s *MemoryStore) Merge(rec models.SessionRecord) bool {
	if rec.ID == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.seen[rec.ID]; dup {
		return false
	}

	// Insert by timestamp so out-of-order delivery keeps the history
	// head-first.
	idx := 0
	for idx < len(s.records) && s.records[idx].Timestamp.After(rec.Timestamp) {
		idx++
	}
	s.records = append(s.records, models.SessionRecord{})
	copy(s.records[idx+1:], s.records[idx:])
	s.records[idx] = rec
	s.seen[rec.ID] = struct{}{}
	return true
}

// newID builds "<source>-<ULID>". The ULID keeps the millisecond timestamp
// prefix and its monotonic entropy removes same-millisecond collisions.
func (s *MemoryStore) newID(source models.Source, now time.Time) string {
	id := ulid.MustNew(ulid.Timestamp(now), s.entropy)
	return fmt.Sprintf("%s-%s", source, id)
}

func validate(raw models.RawResult) error {
	if raw.SequenceLength < 0 {
		return &models.ValidationError{Field: "sequenceLength", Reason: "must not be negative"}
	}
	if raw.RoundsPlayed < 0 {
		return &models.ValidationError{Field: "roundsPlayed", Reason: "must not be negative"}
	}
	if raw.RoundsCorrect < 0 {
		return &models.ValidationError{Field: "roundsCorrect", Reason: "must not be negative"}
	}
	if raw.RoundsCorrect > raw.RoundsPlayed {
		return &models.ValidationError{Field: "roundsCorrect", Reason: "must not exceed roundsPlayed"}
	}
	if math.IsNaN(raw.AvgReactionMs) || math.IsInf(raw.AvgReactionMs, 0) {
		return &models.ValidationError{Field: "avgReactionMs", Reason: "must be finite"}
	}
	if raw.AvgReactionMs < 0 {
		return &models.ValidationError{Field: "avgReactionMs", Reason: "must not be negative"}
	}
	if raw.Score != nil && (math.IsNaN(*raw.Score) || math.IsInf(*raw.Score, 0)) {
		return &models.ValidationError{Field: "score", Reason: "must be finite"}
	}
	return nil
}
