package shortcode

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChecker struct {
	mu    sync.Mutex
	taken map[string]bool
	err   error
}

func (f *fakeChecker) SlugExists(_ context.Context, slug string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return f.taken[slug], nil
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]{7}$`)

func TestGeneratorProducesValidSlugs(t *testing.T) {
	g := NewGenerator(&fakeChecker{taken: map[string]bool{}}, zap.NewNop().Sugar())
	g.Start()
	defer g.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := g.GetCode(ctx)
		require.NoError(t, err)
		assert.Regexp(t, slugPattern, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 45)
}

func TestGeneratorGetCodeHonoursContext(t *testing.T) {
	// 查询始终失败，通道不会被填充
	g := NewGenerator(&fakeChecker{err: errors.New("db down")}, zap.NewNop().Sugar())
	g.Start()
	defer g.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := g.GetCode(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGeneratorStopTwice(t *testing.T) {
	g := NewGenerator(&fakeChecker{taken: map[string]bool{}}, zap.NewNop().Sugar())
	g.Start()
	g.Stop()
	assert.NotPanics(t, g.Stop)
}

func TestGenerateRandomString(t *testing.T) {
	s, err := generateRandomString(CodeLength)
	require.NoError(t, err)
	assert.Regexp(t, slugPattern, s)
}
