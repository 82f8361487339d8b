package store

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
)

var ErrNotFound = errors.New("not found")

const (
	roundSnapshotKey  = "round-snapshot"
	ledgerSnapshotKey = "ledger-snapshot"
)

// KV is the durable key/value backend behind the two persisted records. ttl
// is a hint; backends without native expiry ignore it.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Store persists the round snapshot and the ledger snapshot.
type Store struct {
	kv    KV
	clock clockwork.Clock
}

func New(kv KV, clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{kv: kv, clock: clock}
}

func (s *Store) Close() error {
	if s.kv == nil {
		return nil
	}
	return s.kv.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.kv.Ping(ctx)
}
