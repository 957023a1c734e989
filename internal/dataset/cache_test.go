package dataset

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hpoannotate/domain/annotation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReader struct {
	calls   atomic.Int32
	delay   time.Duration
	records []annotation.Record
	err     error
}

func (r *stubReader) Path() string { return "stub.csv" }

func (r *stubReader) ReadRecords(ctx context.Context) ([]annotation.Record, error) {
	r.calls.Add(1)
	time.Sleep(r.delay)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.err != nil {
		return nil, r.err
	}
	return r.records, nil
}

func TestCacheLoadsOnce(t *testing.T) {
	reader := &stubReader{
		delay:   20 * time.Millisecond,
		records: []annotation.Record{{HPOLabel: "Seizure", HPOID: "HP:0001250"}},
	}
	cache := NewCache(reader)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			records, err := cache.Records(context.Background())
			assert.NoError(t, err)
			assert.Len(t, records, 1)
		}()
	}
	wg.Wait()

	_, err := cache.Records(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), reader.calls.Load())

	status := cache.Status()
	assert.True(t, status.Loaded)
	assert.Equal(t, 1, status.Count)
	assert.Equal(t, "stub.csv", status.Path)
}

func TestCacheDoesNotKeepFailures(t *testing.T) {
	reader := &stubReader{err: errors.New("missing")}
	var outcomes []error
	cache := NewCache(reader, WithLoadObserver(func(err error) {
		outcomes = append(outcomes, err)
	}))

	_, err := cache.Records(context.Background())
	require.Error(t, err)
	assert.False(t, cache.Status().Loaded)

	reader.err = nil
	records, err := cache.Records(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
	assert.Equal(t, int32(2), reader.calls.Load())
	require.Len(t, outcomes, 2)
	assert.Error(t, outcomes[0])
	assert.NoError(t, outcomes[1])
}

func TestCacheReadIgnoresCallerCancellation(t *testing.T) {
	reader := &stubReader{records: []annotation.Record{{HPOLabel: "Seizure"}}}
	cache := NewCache(reader)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	records, err := cache.Records(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.True(t, cache.Status().Loaded)
}
