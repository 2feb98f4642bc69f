package geo

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCachesSuccess(t *testing.T) {
	calls := 0
	r := NewResolverFunc(func(ctx context.Context, host string) ([]string, error) {
		calls++
		return []string{"203.0.113.7", "203.0.113.8"}, nil
	})

	ctx := context.Background()

	ip, ok := r.Resolve(ctx, "app.herokuapp.com")
	require.True(t, ok)
	assert.Equal(t, "203.0.113.7", ip)

	ip, ok = r.Resolve(ctx, "app.herokuapp.com")
	require.True(t, ok)
	assert.Equal(t, "203.0.113.7", ip)

	assert.Equal(t, 1, calls, "second lookup should come from the cache")
	assert.Equal(t, 1, r.CacheSize())
}

func TestResolveFailure(t *testing.T) {
	r := NewResolverFunc(func(ctx context.Context, host string) ([]string, error) {
		return nil, errors.New("NXDOMAIN")
	})

	_, ok := r.Resolve(context.Background(), "ghost.example.com")
	assert.False(t, ok)
	assert.Equal(t, 0, r.CacheSize())
}

func TestResolveEmptyAnswerIsFailure(t *testing.T) {
	r := NewResolverFunc(func(ctx context.Context, host string) ([]string, error) {
		return nil, nil
	})

	_, ok := r.Resolve(context.Background(), "empty.example.com")
	assert.False(t, ok)
}

func TestResolveConcurrent(t *testing.T) {
	var mu sync.Mutex
	calls := map[string]int{}

	r := NewResolverFunc(func(ctx context.Context, host string) ([]string, error) {
		mu.Lock()
		calls[host]++
		mu.Unlock()
		return []string{"198.51.100.1"}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ip, ok := r.Resolve(context.Background(), "shared.example.com")
			assert.True(t, ok)
			assert.Equal(t, "198.51.100.1", ip)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, r.CacheSize())
}
