package source

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/ryo-makiyama/sessionview/internal/kvutil"
	"github.com/ryo-makiyama/sessionview/types"
)

// Default NATS layout used when NATSConfig fields are left empty.
const (
	// DefaultBucket is the JetStream KV bucket holding schedule data.
	DefaultBucket = "sessionview"
	// DefaultSubjectPrefix prefixes the subjects used for write messages.
	DefaultSubjectPrefix = "sessionview"

	sessionsKey    = "sessions"
	countKeyPrefix = "counts."
)

// NATSConfig configures the broker-backed repository.
type NATSConfig struct {
	// Bucket is the JetStream KV bucket to watch for schedule data.
	// Defaults to DefaultBucket.
	Bucket string `yaml:"bucket" json:"bucket"`

	// SubjectPrefix prefixes the subjects favorite toggles and thumbs-up
	// increments are published on. Defaults to DefaultSubjectPrefix.
	SubjectPrefix string `yaml:"subject_prefix" json:"subject_prefix"`
}

// SetDefaults fills unset fields with default values.
func (c *NATSConfig) SetDefaults() {
	if c.Bucket == "" {
		c.Bucket = DefaultBucket
	}
	if c.SubjectPrefix == "" {
		c.SubjectPrefix = DefaultSubjectPrefix
	}
}

// NATS implements types.Repository on top of a NATS deployment.
//
// Reads are JetStream KV watches: the schedule lives under the "sessions"
// key as a JSON array of sessions, and per-session thumbs-up totals live
// under "counts.<id>" as JSON integers. Writes are core NATS publishes on
// "<prefix>.favorites.toggle" and "<prefix>.thumbsup.increment", consumed
// by a backend service that applies them and updates the KV bucket.
type NATS struct {
	cfg NATSConfig
	nc  *nats.Conn
	kv  jetstream.KeyValue
}

var _ types.Repository = (*NATS)(nil)

// toggleMessage is the wire format for favorite toggle publishes.
type toggleMessage struct {
	SessionID types.SessionID `json:"session_id"`
	At        time.Time       `json:"at"`
}

// incrementMessage is the wire format for coalesced thumbs-up publishes.
type incrementMessage struct {
	SessionID types.SessionID `json:"session_id"`
	Count     int             `json:"count"`
	At        time.Time       `json:"at"`
}

// NewNATS creates a broker-backed repository over an existing connection.
//
// The KV bucket is created if it does not exist yet, so the repository can
// start before the backend has published any schedule data.
//
// Parameters:
//   - ctx: Context for bucket creation
//   - nc: Connected NATS client (caller retains ownership)
//   - cfg: Repository configuration (zero value uses defaults)
//
// Returns:
//   - *NATS: Initialized repository
//   - error: Connection or bucket setup failure
//
// Example:
//
//	nc, _ := nats.Connect(nats.DefaultURL)
//	repo, err := source.NewNATS(ctx, nc, source.NATSConfig{})
//	if err != nil { /* handle */ }
//	ctrl, err := sessionview.NewController(cfg, repo)
func NewNATS(ctx context.Context, nc *nats.Conn, cfg NATSConfig) (*NATS, error) {
	cfg.SetDefaults()

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	kv, err := kvutil.EnsureKVBucketWithRetry(ctx, js, jetstream.KeyValueConfig{
		Bucket:  cfg.Bucket,
		History: 1,
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", cfg.Bucket, err)
	}

	return &NATS{cfg: cfg, nc: nc, kv: kv}, nil
}

// SessionContents implements types.Repository.
//
// Watches the "sessions" KV key and emits the decoded schedule for the
// current value and every update, until ctx is cancelled.
func (r *NATS) SessionContents(ctx context.Context, emit func(types.SessionCollection)) error {
	return watchKey(ctx, r.kv, sessionsKey, func(data []byte) error {
		var collection types.SessionCollection
		if err := json.Unmarshal(data, &collection); err != nil {
			return fmt.Errorf("decode sessions: %w", err)
		}
		emit(collection)

		return nil
	})
}

// ThumbsUpCounts implements types.Repository.
//
// Watches "counts.<id>" and emits the decoded total for the current value
// and every update, until ctx is cancelled. If the key does not exist yet
// no value is emitted until the backend writes one.
func (r *NATS) ThumbsUpCounts(ctx context.Context, id types.SessionID, emit func(int)) error {
	return watchKey(ctx, r.kv, countKeyPrefix+id.String(), func(data []byte) error {
		var count int
		if err := json.Unmarshal(data, &count); err != nil {
			return fmt.Errorf("decode count for %s: %w", id, err)
		}
		emit(count)

		return nil
	})
}

// ToggleFavorite implements types.Repository.
//
// Publishes a toggle message for the backend to apply. The updated
// schedule arrives back through the SessionContents watch once the
// backend writes it to the KV bucket.
func (r *NATS) ToggleFavorite(ctx context.Context, id types.SessionID) error {
	return r.publish(ctx, r.cfg.SubjectPrefix+".favorites.toggle", toggleMessage{
		SessionID: id,
		At:        time.Now().UTC(),
	})
}

// IncrementThumbsUpCount implements types.Repository.
//
// Publishes one coalesced increment message. The confirmed total arrives
// back through the ThumbsUpCounts watch.
func (r *NATS) IncrementThumbsUpCount(ctx context.Context, id types.SessionID, count int) error {
	return r.publish(ctx, r.cfg.SubjectPrefix+".thumbsup.increment", incrementMessage{
		SessionID: id,
		Count:     count,
		At:        time.Now().UTC(),
	})
}

func (r *NATS) publish(ctx context.Context, subject string, msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	if err := r.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	// Flush so connectivity failures surface to the caller instead of
	// sitting in the client's outbound buffer.
	if err := r.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush %s: %w", subject, err)
	}

	return nil
}

// watchKey streams KV values for a single key into handle until ctx is
// cancelled. Deletes and purges are ignored, the last written value wins.
func watchKey(ctx context.Context, kv jetstream.KeyValue, key string, handle func([]byte) error) error {
	watcher, err := kv.Watch(ctx, key)
	if err != nil {
		return fmt.Errorf("watch %s: %w", key, err)
	}
	defer func() { _ = watcher.Stop() }()

	for {
		select {
		case entry, ok := <-watcher.Updates():
			if !ok {
				return ctx.Err()
			}
			// A nil entry marks the end of the initial replay.
			if entry == nil {
				continue
			}
			if entry.Operation() != jetstream.KeyValuePut {
				continue
			}
			if err := handle(entry.Value()); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
