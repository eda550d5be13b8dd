package checkpoint

import (
	"context"
	"errors"
	"strconv"
	"time"

	pkgerrors "github.com/newswirehq/newswire-backend/pkg/errors"
	"github.com/newswirehq/newswire-backend/pkg/logger"
	"github.com/newswirehq/newswire-backend/pkg/redis"
)

// checkpointName is the single checkpoint tracked today: the id of the last
// news item handed to the delivery pipeline.
const checkpointName = "last_sent_news_id"

const defaultOpTimeout = 5 * time.Second

// advanceScript sets the checkpoint only when the candidate is strictly
// greater than the stored value (or the key is absent). Running it as a
// script makes the compare and the write one atomic step.
const advanceScript = `
local current = redis.call('GET', KEYS[1])
if current == false or tonumber(ARGV[1]) > tonumber(current) then
  redis.call('SET', KEYS[1], ARGV[1])
  return 1
end
return 0
`

// kvStore is the slice of the redis client the store needs.
type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Eval(ctx context.Context, script string, keys []string, args ...any) (any, error)
	CheckpointKey(name string) string
}

// Store persists the delivery checkpoint in redis. Plain writes are
// last-writer-wins: concurrent SetLastSentID calls leave whichever value
// landed last, even if it is smaller. Dispatchers that need monotonic
// progress use AdvanceIfGreater instead.
type Store struct {
	kv        kvStore
	opTimeout time.Duration
	logg      *logger.Logger
}

func NewStore(kv kvStore, opTimeout time.Duration, logg *logger.Logger) *Store {
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	return &Store{kv: kv, opTimeout: opTimeout, logg: logg}
}

// LastSentID returns the stored checkpoint. The boolean reports whether the
// checkpoint has ever been set.
func (s *Store) LastSentID(ctx context.Context) (int64, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	raw, err := s.kv.Get(ctx, s.kv.CheckpointKey(checkpointName))
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checkpoint store unavailable")
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checkpoint value malformed")
	}

	return id, true, nil
}

// SetLastSentID overwrites the checkpoint unconditionally.
func (s *Store) SetLastSentID(ctx context.Context, id int64) error {
	if id < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkpoint id must not be negative")
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.kv.Set(ctx, s.kv.CheckpointKey(checkpointName), strconv.FormatInt(id, 10), 0); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checkpoint store unavailable")
	}

	s.logg.Debug(s.logg.WithField(ctx, "last_sent_id", id), "checkpoint written")
	return nil
}

// AdvanceIfGreater writes the checkpoint only if id exceeds the stored value.
// It reports whether the write happened.
func (s *Store) AdvanceIfGreater(ctx context.Context, id int64) (bool, error) {
	if id < 0 {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "checkpoint id must not be negative")
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	res, err := s.kv.Eval(ctx, advanceScript,
		[]string{s.kv.CheckpointKey(checkpointName)},
		strconv.FormatInt(id, 10))
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checkpoint store unavailable")
	}

	advanced, ok := res.(int64)
	if !ok {
		return false, pkgerrors.New(pkgerrors.CodeInternal, "unexpected script reply")
	}

	return advanced == 1, nil
}
