// Package lock provides a Redis mutex keyed by journal ID.
package lock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrHeld is returned when another holder owns the lock.
var ErrHeld = errors.New("lock held by another owner")

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// JournalLocker serializes analysis runs for the same journal.
type JournalLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// Lease is a held lock. Release is safe to call more than once.
type Lease struct {
	locker *JournalLocker
	key    string
	token  string
}

func NewJournalLocker(client *redis.Client, prefix string, ttl time.Duration) (*JournalLocker, error) {
	if client == nil {
		return nil, errors.New("lock redis client is required")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "melify:lock:journal"
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &JournalLocker{client: client, prefix: prefix, ttl: ttl}, nil
}

// Acquire takes the lock for journalID or returns ErrHeld.
func (l *JournalLocker) Acquire(ctx context.Context, journalID string) (*Lease, error) {
	journalID = strings.TrimSpace(journalID)
	if journalID == "" {
		return nil, errors.New("journal id required")
	}
	key := fmt.Sprintf("%s:%s", l.prefix, journalID)
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire journal lock: %w", err)
	}
	if !ok {
		return nil, ErrHeld
	}
	return &Lease{locker: l, key: key, token: token}, nil
}

// Release deletes the lock only if this lease still owns it.
func (le *Lease) Release(ctx context.Context) error {
	if le == nil || le.locker == nil {
		return nil
	}
	_, err := releaseScript.Run(ctx, le.locker.client, []string{le.key}, le.token).Result()
	if err != nil {
		return fmt.Errorf("release journal lock: %w", err)
	}
	return nil
}
