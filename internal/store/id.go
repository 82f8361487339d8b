package store

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ulidEntropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	ulidEntropyMu sync.Mutex
	nameRand      = rand.New(rand.NewSource(time.Now().UnixNano()))

	displayNames = []string{"Alex", "Maria", "Dmitry", "Anna", "Sergey", "Olga", "Ivan", "Elena"}
)

func NewID() string {
	ulidEntropyMu.Lock()
	defer ulidEntropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
}

// NewPlayerID returns a stable-looking identifier for a first-time player.
func NewPlayerID() string {
	return "player_" + strings.ToLower(NewID())
}

// NewDisplayName picks a name with a numeric suffix.
func NewDisplayName() string {
	ulidEntropyMu.Lock()
	defer ulidEntropyMu.Unlock()
	return fmt.Sprintf("%s%d", displayNames[nameRand.Intn(len(displayNames))], nameRand.Intn(1000))
}
