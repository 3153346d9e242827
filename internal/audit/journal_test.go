package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fentz26/tasklist/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	entries []models.JournalEntry
	err     error
}

func (m *memorySink) WriteJournal(_ context.Context, e models.JournalEntry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, e)
	return nil
}

func TestRecord_FansOutToSinks(t *testing.T) {
	a, b := &memorySink{}, &memorySink{}
	j := NewJournal(a)
	j.AddSink(b)

	entry := j.Record("task.add", map[string]string{"text": "x"}, OutcomeSuccess, 42, "")

	require.Len(t, a.entries, 1)
	require.Len(t, b.entries, 1)
	assert.Equal(t, entry, a.entries[0])
	assert.Equal(t, "task.add", entry.Action)
	assert.Equal(t, int64(42), entry.TaskID)
	assert.NotEmpty(t, entry.ID)
	assert.Len(t, entry.InputsHash, 64)
}

func TestRecord_FailingSinkDoesNotBlockOthers(t *testing.T) {
	bad := &memorySink{err: errors.New("disk full")}
	good := &memorySink{}
	j := NewJournal(bad, good)

	j.Record("task.delete", 1, OutcomeSuccess, 1, "")

	assert.Empty(t, bad.entries)
	assert.Len(t, good.entries, 1)
}

func TestRecord_UsesClock(t *testing.T) {
	sink := &memorySink{}
	j := NewJournal(sink)
	fixed := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	j.now = func() time.Time { return fixed }

	e := j.Record("task.sort", nil, OutcomeSuccess, 0, "")
	assert.Equal(t, fixed, e.Timestamp)
}

func TestHashInputs(t *testing.T) {
	h1 := hashInputs(map[string]int{"id": 1})
	h2 := hashInputs(map[string]int{"id": 1})
	h3 := hashInputs(map[string]int{"id": 2})

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Equal(t, "hash_error", hashInputs(make(chan int)))
}

func TestRedisSink_WriteJournal(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := NewRedisSinkWithClient(client, 10*time.Minute, "test")
	defer r.Close()

	entry := models.JournalEntry{
		ID:         "e1",
		Action:     "task.add",
		InputsHash: "abc",
		Outcome:    OutcomeSuccess,
		TaskID:     7,
		Timestamp:  time.Unix(0, 42).UTC(),
	}
	require.NoError(t, r.WriteJournal(context.Background(), entry))

	key := r.Key(entry)
	assert.Equal(t, "test:task.add:7:42", key)

	raw, err := mr.Get(key)
	require.NoError(t, err)
	var stored models.JournalEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, entry, stored)
	assert.Equal(t, 10*time.Minute, mr.TTL(key))

	mr.FastForward(11 * time.Minute)
	assert.False(t, mr.Exists(key))
}

func TestRedisSink_ServerDownIsAnError(t *testing.T) {
	mr := miniredis.RunT(t)
	r := NewRedisSink(mr.Addr(), "", 0, time.Minute, "")
	defer r.Close()
	mr.Close()

	err := r.WriteJournal(context.Background(), models.JournalEntry{Action: "task.add"})
	assert.Error(t, err)
}

func TestRedisOptionsFailFast(t *testing.T) {
	opts := redisOptions("localhost:6379", "pw", 2)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, redisTimeout, opts.DialTimeout)
	assert.Equal(t, -1, opts.MaxRetries)
}

func TestRedisSinkKey(t *testing.T) {
	r := NewRedisSink("127.0.0.1:0", "", 0, time.Minute, "")
	defer r.Close()

	ts := time.Unix(0, 1234)
	key := r.Key(models.JournalEntry{Action: "task.toggle", TaskID: 9, Timestamp: ts})
	assert.Equal(t, "tasklist:task.toggle:9:1234", key)
}
