// internal/workload/workload.go

// Package workload 為 bank.Ledger 產生隨機並發轉帳負載：
// 固定大小的工作者池執行 N 筆轉帳，來源、目標帳戶均勻隨機（可能相同），
// 金額落在 [0, MaxAmount)。全部完成後（靜止狀態）比對起訖總額。
package workload

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"lockstep/internal/bank"
	"lockstep/internal/logging"
	"lockstep/internal/metrics"
)

// Config 描述一次壓力負載。
type Config struct {
	Transfers int   // 轉帳筆數
	Workers   int   // 同時執行的工作者上限
	MaxAmount int64 // 金額上限（不含）
	Seed      uint64
}

// DefaultConfig 對應原始示範：20 個工作者、2000 筆、金額 [0,100)。
func DefaultConfig() Config {
	return Config{Transfers: 2000, Workers: 20, MaxAmount: 100}
}

func (c Config) validate() error {
	switch {
	case c.Transfers < 0:
		return fmt.Errorf("transfers must be >= 0, got %d", c.Transfers)
	case c.Workers <= 0:
		return fmt.Errorf("workers must be > 0, got %d", c.Workers)
	case c.MaxAmount <= 0:
		return fmt.Errorf("max amount must be > 0, got %d", c.MaxAmount)
	}
	return nil
}

// Stats 為一次負載的結果。
type Stats struct {
	StartTotal   int64         `json:"start_total"`
	EndTotal     int64         `json:"end_total"`
	Applied      int64         `json:"applied"`
	Insufficient int64         `json:"insufficient_funds"`
	SameAccount  int64         `json:"same_account"`
	Elapsed      time.Duration `json:"elapsed"`
}

// Completed 回傳已執行完畢的轉帳筆數。
func (s Stats) Completed() int64 { return s.Applied + s.Insufficient + s.SameAccount }

// Conserved 表示起訖總額相同。
func (s Stats) Conserved() bool { return s.StartTotal == s.EndTotal }

// Run 執行負載並等待所有已提交的轉帳結束後才計算終點總額。
// ctx 取消時停止提交新的轉帳，回傳目前統計與包裹 ctx.Err() 的錯誤。
// m 可為 nil。
func Run(ctx context.Context, l *bank.Ledger, cfg Config, m *metrics.Metrics) (Stats, error) {
	if err := cfg.validate(); err != nil {
		return Stats{}, err
	}
	logger := logr.FromContextOrDiscard(ctx).WithName("workload")
	accounts := l.Accounts()

	var stats Stats
	stats.StartTotal = l.TotalBalance()
	logger.Info("Starting transfers", "accounts", len(accounts), "transfers", cfg.Transfers,
		"workers", cfg.Workers, "startTotal", stats.StartTotal)

	var counts [bank.OutcomeSameAccount + 1]atomic.Int64 // 以 bank.Outcome 為索引
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	submitted := 0
	for i := 0; i < cfg.Transfers; i++ {
		if gctx.Err() != nil {
			break
		}
		r := taskRand(cfg.Seed, i)
		from := accounts[r.IntN(len(accounts))]
		to := accounts[r.IntN(len(accounts))]
		amount := r.Int64N(cfg.MaxAmount)
		submitted++
		g.Go(func() error {
			t0 := time.Now()
			o, err := l.Transfer(from, to, amount)
			if err != nil {
				return fmt.Errorf("transfer %d->%d: %w", from.ID(), to.ID(), err)
			}
			counts[o].Add(1)
			if m != nil {
				m.TransferDuration.Observe(time.Since(t0).Seconds())
				m.TransferOutcomes.WithLabelValues(o.String()).Inc()
			}
			logger.V(logging.TRACE).Info("Transfer", "from", from.ID(), "to", to.ID(), "amount", amount, "outcome", o)
			return nil
		})
	}
	err := g.Wait()

	stats.Elapsed = time.Since(start)
	stats.Applied = counts[bank.OutcomeApplied].Load()
	stats.Insufficient = counts[bank.OutcomeInsufficientFunds].Load()
	stats.SameAccount = counts[bank.OutcomeSameAccount].Load()
	stats.EndTotal = l.TotalBalance()
	logger.Info("Transfers finished", "submitted", submitted, "applied", stats.Applied,
		"insufficient", stats.Insufficient, "sameAccount", stats.SameAccount,
		"endTotal", stats.EndTotal, "elapsed", stats.Elapsed)

	if err != nil {
		return stats, err
	}
	if cerr := ctx.Err(); cerr != nil && submitted < cfg.Transfers {
		return stats, fmt.Errorf("workload interrupted after %d of %d transfers: %w", submitted, cfg.Transfers, cerr)
	}
	return stats, nil
}

// taskRand 回傳第 i 筆轉帳使用的亂數來源；Seed 為 0 時使用非決定性來源。
func taskRand(seed uint64, i int) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, uint64(i)))
}
