// internal/pipeline/pipeline.go

// Package pipeline 以兩個 ring.Channel 串起三種工作者：
//
//	generators ──raw──▶ translators ──translated──▶ sink
//
// 生產者在 raw 滿時被擋住（背壓），翻譯者在 raw 空時等待；sink 讀滿指定數量後
// 取消所有工作者並等待其結束，不依賴行程結束來終止背景 goroutine。
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"lockstep/internal/logging"
	"lockstep/internal/metrics"
	"lockstep/internal/ring"
)

// Config 描述管線規模。
type Config struct {
	Generators       int
	Translators      int
	Capacity         int           // 兩個 channel 的容量
	Messages         int           // sink 讀取的訊息數
	GenerateInterval time.Duration // 每個 generator 產生訊息後的間隔
}

// DefaultConfig 對應原始示範：5 generators、2 translators、容量 10、讀取 100 則、間隔 100ms。
func DefaultConfig() Config {
	return Config{
		Generators:       5,
		Translators:      2,
		Capacity:         10,
		Messages:         100,
		GenerateInterval: 100 * time.Millisecond,
	}
}

func (c Config) validate() error {
	var err error
	if c.Generators <= 0 {
		err = multierr.Append(err, fmt.Errorf("generators must be > 0, got %d", c.Generators))
	}
	if c.Translators <= 0 {
		err = multierr.Append(err, fmt.Errorf("translators must be > 0, got %d", c.Translators))
	}
	if c.Messages < 0 {
		err = multierr.Append(err, fmt.Errorf("messages must be >= 0, got %d", c.Messages))
	}
	if c.GenerateInterval < 0 {
		err = multierr.Append(err, fmt.Errorf("generate interval must be >= 0, got %v", c.GenerateInterval))
	}
	return err
}

// Result 為一次管線執行的結果。
type Result struct {
	Received   []Message     `json:"-"`
	Generated  int64         `json:"generated"`
	Translated int64         `json:"translated"`
	Consumed   int           `json:"consumed"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Run 建立兩個 channel 並執行管線，直到 sink 收到 cfg.Messages 則訊息。
// ctx 取消時 sink 停止等待，所有工作者結束後回傳包裹 ring.ErrCancelled 的錯誤。
// m 可為 nil。
func Run(ctx context.Context, cfg Config, m *metrics.Metrics) (Result, error) {
	if err := cfg.validate(); err != nil {
		return Result{}, err
	}
	raw, err := ring.New[Message](cfg.Capacity)
	if err != nil {
		return Result{}, fmt.Errorf("raw channel: %w", err)
	}
	translated, err := ring.New[Message](cfg.Capacity)
	if err != nil {
		return Result{}, fmt.Errorf("translated channel: %w", err)
	}
	if m != nil {
		if err := multierr.Combine(
			m.ObserveChannel("raw", raw.Len),
			m.ObserveChannel("translated", translated.Len),
		); err != nil {
			return Result{}, err
		}
	}

	p := &pipeline{cfg: cfg, raw: raw, translated: translated, metrics: m,
		logger: logr.FromContextOrDiscard(ctx).WithName("pipeline")}
	return p.run(ctx)
}

type pipeline struct {
	cfg        Config
	raw        *ring.Channel[Message]
	translated *ring.Channel[Message]
	metrics    *metrics.Metrics
	logger     logr.Logger

	seq        atomic.Int64 // 訊息序號，從 1 開始
	generated  atomic.Int64
	translates atomic.Int64
}

func (p *pipeline) run(ctx context.Context) (Result, error) {
	start := time.Now()
	workerCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(workerCtx)

	for i := 1; i <= p.cfg.Generators; i++ {
		g.Go(func() error { return p.generate(gctx, i) })
	}
	for i := 1; i <= p.cfg.Translators; i++ {
		g.Go(func() error { return p.translate(gctx, i) })
	}
	p.logger.Info("Pipeline started", "generators", p.cfg.Generators, "translators", p.cfg.Translators,
		"capacity", p.cfg.Capacity, "messages", p.cfg.Messages)

	received, sinkErr := p.sink(gctx)

	stop()
	workerErr := g.Wait()

	res := Result{
		Received:   received,
		Generated:  p.generated.Load(),
		Translated: p.translates.Load(),
		Consumed:   len(received),
		Elapsed:    time.Since(start),
	}
	p.logger.Info("Pipeline finished", "consumed", res.Consumed, "generated", res.Generated,
		"translated", res.Translated, "elapsed", res.Elapsed)

	if workerErr != nil {
		return res, multierr.Combine(workerErr, sinkErr)
	}
	if sinkErr != nil {
		return res, fmt.Errorf("sink stopped after %d of %d messages: %w", len(received), p.cfg.Messages, sinkErr)
	}
	return res, nil
}

// generate 持續產生訊息推入 raw，直到 ctx 結束。
func (p *pipeline) generate(ctx context.Context, id int) error {
	logger := p.logger.WithValues("generator", id)
	for ctx.Err() == nil {
		msg := newRaw(id, p.seq.Add(1))
		if err := p.raw.Push(ctx, msg); err != nil {
			return p.stopped(logger, "generator", err)
		}
		p.generated.Add(1)
		p.count(metrics.StageGenerated)
		logger.V(logging.DEBUG).Info("Generated", "seq", msg.Seq)

		if p.cfg.GenerateInterval > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(p.cfg.GenerateInterval):
			}
		}
	}
	return nil
}

// translate 自 raw 取出訊息、轉換後推入 translated，直到 ctx 結束。
// 取消發生在取出之後、推入之前時，該則訊息被捨棄，兩個 channel 的狀態皆保持一致。
func (p *pipeline) translate(ctx context.Context, id int) error {
	logger := p.logger.WithValues("translator", id)
	for {
		msg, err := p.raw.Pop(ctx)
		if err != nil {
			return p.stopped(logger, "translator", err)
		}
		out := msg.translate(id)
		if err := p.translated.Push(ctx, out); err != nil {
			return p.stopped(logger, "translator", err)
		}
		p.translates.Add(1)
		p.count(metrics.StageTranslated)
		logger.V(logging.TRACE).Info("Translated", "seq", out.Seq)
	}
}

// sink 自 translated 讀取恰好 cfg.Messages 則訊息。
func (p *pipeline) sink(ctx context.Context) ([]Message, error) {
	out := make([]Message, 0, p.cfg.Messages)
	for i := 1; i <= p.cfg.Messages; i++ {
		msg, err := p.translated.Pop(ctx)
		if err != nil {
			p.cancelled("sink")
			return out, err
		}
		out = append(out, msg)
		p.count(metrics.StageConsumed)
		p.logger.V(logging.DEFAULT).Info("Received", "n", fmt.Sprintf("%d/%d", i, p.cfg.Messages), "message", msg.Text)
	}
	return out, nil
}

// stopped 將取消視為正常停止；其他錯誤往上回傳。
func (p *pipeline) stopped(logger logr.Logger, role string, err error) error {
	if errors.Is(err, ring.ErrCancelled) {
		p.cancelled(role)
		logger.V(logging.VERBOSE).Info("Stopped")
		return nil
	}
	return fmt.Errorf("%s: %w", role, err)
}

func (p *pipeline) count(stage string) {
	if p.metrics != nil {
		p.metrics.PipelineMessages.WithLabelValues(stage).Inc()
	}
}

func (p *pipeline) cancelled(role string) {
	if p.metrics != nil {
		p.metrics.Cancellations.WithLabelValues(role).Inc()
	}
}
