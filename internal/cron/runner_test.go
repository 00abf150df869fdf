package cron

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunnerRunsJobWithBaseContext(t *testing.T) {
	type key struct{}
	base := context.WithValue(context.Background(), key{}, "base")

	r := New(zap.NewNop(), base)
	got := make(chan any, 1)
	_, err := r.Add("@every 1s", func(ctx context.Context) {
		select {
		case got <- ctx.Value(key{}):
		default:
		}
	})
	require.NoError(t, err)

	r.Start()
	defer r.Stop()

	select {
	case v := <-got:
		assert.Equal(t, "base", v)
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestRunnerSkipsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(nil, ctx)
	var runs atomic.Int32
	_, err := r.Add("@every 1s", func(context.Context) { runs.Add(1) })
	require.NoError(t, err)

	r.Start()
	time.Sleep(1500 * time.Millisecond)
	r.Stop()
	assert.Zero(t, runs.Load())
}

func TestRunnerRejectsFiveFieldSpec(t *testing.T) {
	r := New(nil, nil)
	_, err := r.Add("*/5 * * * *", func(context.Context) {})
	assert.Error(t, err)
}
