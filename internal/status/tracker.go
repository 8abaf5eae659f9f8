package status

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8" // doc: https://redis.uptrace.dev/
	"github.com/sirupsen/logrus"

	"github.com/amrrdev/officetext/internal/types"
)

const keyPrefix = "officetext:status:"

type State string

const (
	StateProcessing State = "processing"
	StateDone       State = "done"
	StateCached     State = "cached"
	StateFailed     State = "failed"
)

var (
	ErrNotFound = errors.New("status not found")
	ErrDisabled = errors.New("status tracking is disabled")
)

type Status struct {
	FileName  string    `json:"file_name"`
	State     State     `json:"state"`
	FileKey   string    `json:"file_key,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Connect opens a client and pings it.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DB:           db,
		MaxRetries:   5,
		PoolSize:     50,
		MinIdleConns: 2,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// Tracker keeps the last known state of each document in a Redis hash.
// Writes are best effort: failures are logged and never returned. A nil
// *Tracker is valid and records nothing.
type Tracker struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Entry
	now    func() time.Time
}

func NewTracker(client *redis.Client, ttl time.Duration, logger *logrus.Entry) *Tracker {
	return &Tracker{client: client, ttl: ttl, logger: logger, now: time.Now}
}

func (t *Tracker) Processing(ctx context.Context, ref types.DocumentRef) {
	t.record(ctx, ref, StateProcessing, "", "")
}

func (t *Tracker) Done(ctx context.Context, ref types.DocumentRef, fileKey string, cached bool) {
	state := StateDone
	if cached {
		state = StateCached
	}
	t.record(ctx, ref, state, fileKey, "")
}

func (t *Tracker) Failed(ctx context.Context, ref types.DocumentRef, err error) {
	t.record(ctx, ref, StateFailed, "", err.Error())
}

// Get returns the last recorded status for fileName.
func (t *Tracker) Get(ctx context.Context, fileName string) (*Status, error) {
	if t == nil {
		return nil, ErrDisabled
	}

	fields, err := t.client.HGetAll(ctx, key(fileName)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read status: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	updatedAt, _ := time.Parse(time.RFC3339Nano, fields["updated_at"])

	return &Status{
		FileName:  fileName,
		State:     State(fields["state"]),
		FileKey:   fields["file_key"],
		Error:     fields["error"],
		UpdatedAt: updatedAt,
	}, nil
}

func (t *Tracker) Close() error {
	if t == nil {
		return nil
	}
	return t.client.Close()
}

func (t *Tracker) record(ctx context.Context, ref types.DocumentRef, state State, fileKey, errMsg string) {
	if t == nil {
		return
	}

	k := key(string(ref))
	fields := map[string]interface{}{
		"state":      string(state),
		"updated_at": t.now().UTC().Format(time.RFC3339Nano),
	}
	if fileKey != "" {
		fields["file_key"] = fileKey
	}
	if errMsg != "" {
		fields["error"] = errMsg
	}

	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		pipe.HSet(ctx, k, fields)
		if t.ttl > 0 {
			pipe.Expire(ctx, k, t.ttl)
		}
		return nil
	})
	if err != nil {
		t.logger.WithError(err).WithFields(logrus.Fields{
			"file_name": string(ref),
			"state":     state,
		}).Warn("failed to record status")
	}
}

func key(fileName string) string {
	return keyPrefix + fileName
}
