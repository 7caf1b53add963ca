// FilePath: internal/loader/loader_test.go
package loader

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingFetch struct {
	mu      sync.Mutex
	batches [][]string
	fail    map[string]error
}

func (f *recordingFetch) fetch(_ context.Context, keys []string) []Result[string] {
	f.mu.Lock()
	f.batches = append(f.batches, append([]string(nil), keys...))
	f.mu.Unlock()

	results := make([]Result[string], len(keys))
	for i, key := range keys {
		if err, ok := f.fail[key]; ok {
			results[i] = Result[string]{Err: err}
			continue
		}
		results[i] = Result[string]{Value: "value-" + key}
	}
	return results
}

func TestLoaderCollapsesLookupsIntoOneBatch(t *testing.T) {
	fetch := &recordingFetch{}
	l := New(fetch.fetch, WithWait(5*time.Millisecond))
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, key := range []string{"a", "b", "c"} {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			value, err := l.Load(ctx, key)
			assert.NoError(t, err)
			assert.Equal(t, "value-"+key, value)
		}(key)
	}
	wg.Wait()

	require.Len(t, fetch.batches, 1)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, fetch.batches[0])
}

func TestLoaderDeduplicatesRepeatedKeys(t *testing.T) {
	fetch := &recordingFetch{}
	l := New(fetch.fetch, WithWait(5*time.Millisecond))
	ctx := context.Background()

	values, err := l.LoadAll(ctx, []string{"a", "b", "a", "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"value-a", "value-b", "value-a", "value-a"}, values)

	require.Len(t, fetch.batches, 1)
	assert.Equal(t, []string{"a", "b"}, fetch.batches[0])
}

func TestLoaderMemoizesAcrossBatches(t *testing.T) {
	fetch := &recordingFetch{}
	l := New(fetch.fetch, WithWait(time.Millisecond))
	ctx := context.Background()

	first, err := l.Load(ctx, "a")
	require.NoError(t, err)

	// second round trips a new batch window; "a" must not be refetched
	values, err := l.LoadAll(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, first, values[0])

	require.Len(t, fetch.batches, 2)
	assert.Equal(t, []string{"a"}, fetch.batches[0])
	assert.Equal(t, []string{"b"}, fetch.batches[1])
}

func TestLoaderPartialFailureOnlyFailsItsSlot(t *testing.T) {
	bad := errors.New("boom")
	fetch := &recordingFetch{fail: map[string]error{"b": bad}}
	l := New(fetch.fetch, WithWait(5*time.Millisecond))
	ctx := context.Background()

	thunkA := l.LoadThunk(ctx, "a")
	thunkB := l.LoadThunk(ctx, "b")

	valueA, errA := thunkA()
	assert.NoError(t, errA)
	assert.Equal(t, "value-a", valueA)

	_, errB := thunkB()
	assert.Equal(t, bad, errB)

	require.Len(t, fetch.batches, 1)
}

func TestLoaderLoadAllFailsOnFirstError(t *testing.T) {
	bad := errors.New("boom")
	fetch := &recordingFetch{fail: map[string]error{"b": bad}}
	l := New(fetch.fetch, WithWait(time.Millisecond))

	_, err := l.LoadAll(context.Background(), []string{"a", "b", "c"})
	assert.Equal(t, bad, err)
}

func TestLoaderFullBatchDispatchesImmediately(t *testing.T) {
	fetch := &recordingFetch{}
	// wait long enough that only the max-batch trigger can explain a dispatch
	l := New(fetch.fetch, WithWait(time.Minute), WithMaxBatch(2))
	ctx := context.Background()

	values, err := l.LoadAll(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"value-a", "value-b"}, values)

	require.Len(t, fetch.batches, 1)
	assert.Equal(t, []string{"a", "b"}, fetch.batches[0])
}

func TestLoaderMismatchedBatchLengthFailsAllSlots(t *testing.T) {
	l := New(func(_ context.Context, keys []string) []Result[string] {
		return nil
	}, WithWait(time.Millisecond))

	_, err := l.Load(context.Background(), "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0 results for 1 keys")
}
