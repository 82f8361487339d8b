package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// StalenessWindow bounds how old a round snapshot may be when it is loaded.
const StalenessWindow = 30 * time.Second

// RoundSnapshot is the persisted copy of the current round. Times are epoch
// milliseconds, Offset is signed milliseconds.
type RoundSnapshot struct {
	RoundID     string `json:"roundId"`
	Phase       string `json:"phase"`
	StartTime   int64  `json:"startTime"`
	EndTime     int64  `json:"endTime"`
	RoundNumber int    `json:"roundNumber"`
	Offset      int64  `json:"offset"`
	SavedAt     int64  `json:"savedAt"`
}

// SaveRoundSnapshot stamps SavedAt with the local clock and writes the record.
func (s *Store) SaveRoundSnapshot(ctx context.Context, snap RoundSnapshot) (RoundSnapshot, error) {
	snap.SavedAt = s.clock.Now().UnixMilli()
	data, err := json.Marshal(snap)
	if err != nil {
		return snap, fmt.Errorf("encode round snapshot: %w", err)
	}
	if err := s.kv.Put(ctx, roundSnapshotKey, data, StalenessWindow); err != nil {
		return snap, fmt.Errorf("write round snapshot: %w", err)
	}
	return snap, nil
}

// LoadRoundSnapshot returns the snapshot if one exists and is younger than
// StalenessWindow. Stale or unreadable records are removed.
func (s *Store) LoadRoundSnapshot(ctx context.Context) (RoundSnapshot, bool, error) {
	data, err := s.kv.Get(ctx, roundSnapshotKey)
	if errors.Is(err, ErrNotFound) {
		return RoundSnapshot{}, false, nil
	}
	if err != nil {
		return RoundSnapshot{}, false, fmt.Errorf("read round snapshot: %w", err)
	}

	var snap RoundSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Warn().Err(err).Msg("discarding malformed round snapshot")
		s.discardRoundSnapshot(ctx)
		return RoundSnapshot{}, false, nil
	}

	age := s.clock.Now().UnixMilli() - snap.SavedAt
	if age >= StalenessWindow.Milliseconds() {
		log.Info().
			Str("round_id", snap.RoundID).
			Int64("age_ms", age).
			Msg("discarding stale round snapshot")
		s.discardRoundSnapshot(ctx)
		return RoundSnapshot{}, false, nil
	}
	return snap, true, nil
}

func (s *Store) DeleteRoundSnapshot(ctx context.Context) error {
	if err := s.kv.Delete(ctx, roundSnapshotKey); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete round snapshot: %w", err)
	}
	return nil
}

func (s *Store) discardRoundSnapshot(ctx context.Context) {
	if err := s.DeleteRoundSnapshot(ctx); err != nil {
		log.Warn().Err(err).Msg("delete round snapshot failed")
	}
}
