// internal/pipeline/pipeline_test.go

package pipeline

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lockstep/internal/logging/loggingtest"
	"lockstep/internal/metrics"
	"lockstep/internal/ring"
)

// fastConfig 為預設規模但不休眠，縮短測試時間。
func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.GenerateInterval = 0
	return cfg
}

// TestRunDeliversExactlyRequested 5 generators、2 translators、兩個容量 10 的 channel，
// sink 恰好收到 100 則完整、不重複的訊息。
func TestRunDeliversExactlyRequested(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ctx = loggingtest.NewTestLoggerIntoContext(ctx, t)

	cfg := fastConfig()
	res, err := Run(ctx, cfg, nil)
	require.NoError(t, err)

	require.Len(t, res.Received, cfg.Messages)
	assert.Equal(t, cfg.Messages, res.Consumed)
	seen := map[int64]bool{}
	for _, msg := range res.Received {
		require.True(t, msg.WellFormed(cfg), "malformed message %+v", msg)
		require.False(t, seen[msg.Seq], "duplicate seq %d", msg.Seq)
		seen[msg.Seq] = true
	}
	// 已翻譯數 >= 已消費數；已產生數 >= 已翻譯數
	assert.GreaterOrEqual(t, res.Translated, int64(cfg.Messages))
	assert.GreaterOrEqual(t, res.Generated, res.Translated)
}

// TestRunPreservesPerGeneratorOrder 單一 translator 時，同一 generator 的訊息
// 須依序號遞增抵達 sink（兩段 FIFO 串接）。
func TestRunPreservesPerGeneratorOrder(t *testing.T) {
	cfg := Config{Generators: 3, Translators: 1, Capacity: 2, Messages: 300}
	res, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)

	last := map[int]int64{}
	for _, msg := range res.Received {
		assert.Greater(t, msg.Seq, last[msg.Generator], "generator %d out of order", msg.Generator)
		last[msg.Generator] = msg.Seq
	}
}

// TestRunWithSlowGenerators 使用原始示範的 100ms 間隔，確認背壓下仍能正常完成。
func TestRunWithSlowGenerators(t *testing.T) {
	if testing.Short() {
		t.Skip("slow generators")
	}
	cfg := DefaultConfig()
	cfg.Messages = 20
	res, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Len(t, res.Received, 20)
}

// TestRunRecordsMetrics 指標中的消費數等於收到的訊息數。
func TestRunRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	cfg := fastConfig()
	cfg.Messages = 50
	res, err := Run(context.Background(), cfg, m)
	require.NoError(t, err)

	assert.Equal(t, 50.0, testutil.ToFloat64(m.PipelineMessages.WithLabelValues(metrics.StageConsumed)))
	assert.Equal(t, float64(res.Translated), testutil.ToFloat64(m.PipelineMessages.WithLabelValues(metrics.StageTranslated)))
	assert.Equal(t, float64(res.Generated), testutil.ToFloat64(m.PipelineMessages.WithLabelValues(metrics.StageGenerated)))

	samples, err := metrics.Samples(reg)
	require.NoError(t, err)
	names := make([]string, 0, len(samples))
	for _, s := range samples {
		names = append(names, s.Name+"{"+s.Labels+"}")
	}
	sort.Strings(names)
	assert.Contains(t, names, "lockstep_ring_occupancy{channel=raw}")
	assert.Contains(t, names, "lockstep_ring_occupancy{channel=translated}")
}

// TestRunCancelled sink 等待中被取消：Run 返回 ErrCancelled，且所有工作者皆已結束。
func TestRunCancelled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Generators = 1
	cfg.GenerateInterval = time.Hour // 第一則之後不再產生
	cfg.Messages = 5

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	var (
		res Result
		err error
	)
	go func() {
		defer close(done)
		res, err = Run(ctx, cfg, nil)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	require.ErrorIs(t, err, ring.ErrCancelled)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, res.Received, 1)
	assert.Equal(t, int64(1), res.Generated)
}

func TestRunInvalidConfig(t *testing.T) {
	_, err := Run(context.Background(), Config{Generators: 0, Translators: 0, Capacity: 1, Messages: -1}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generators")
	assert.Contains(t, err.Error(), "translators")
	assert.Contains(t, err.Error(), "messages")

	_, err = Run(context.Background(), Config{Generators: 1, Translators: 1, Capacity: 0}, nil)
	require.ErrorIs(t, err, ring.ErrBadCapacity)
}

func TestMessageTranslate(t *testing.T) {
	raw := newRaw(2, 17)
	out := raw.translate(1)
	assert.Equal(t, 0, raw.Translator, "translate must not modify the original")
	assert.Equal(t, "translator #1 translated -> [generator #2 produced message 17]", out.String())
	assert.True(t, out.WellFormed(Config{Generators: 2, Translators: 1}))
	assert.False(t, raw.WellFormed(Config{Generators: 2, Translators: 1}))

	out.Text = "corrupted"
	assert.False(t, out.WellFormed(Config{Generators: 2, Translators: 1}))
}
