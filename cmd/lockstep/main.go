// cmd/lockstep/main.go

// 本程式示範兩種共享狀態協調機制：
//   - bank：100 個帳戶、20 個工作者並發執行 2000 筆隨機轉帳，依帳戶 id 順序取鎖避免死鎖，
//     結束後比對起訖總額是否守恆。
//   - pipeline：5 個 generator → 容量 10 的 ring channel → 2 個 translator →
//     第二個 ring channel → sink 讀取 100 則訊息，展示背壓與可取消的阻塞等待。
//
// SIGINT/SIGTERM 或 --timeout 會取消執行中的工作者；摘要報表輸出到 stdout。
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"

	"lockstep/internal/bank"
	"lockstep/internal/config"
	"lockstep/internal/logging"
	"lockstep/internal/metrics"
	"lockstep/internal/pipeline"
	"lockstep/internal/report"
	"lockstep/internal/workload"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	opts := config.NewOptions()
	opts.AddFlags(pflag.CommandLine)
	pflag.Parse()
	if err := opts.Validate(); err != nil {
		return err
	}

	logger, syncLog, err := logging.NewLogger(opts.LogVerbosity, opts.Development)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer syncLog()
	setupLog := logger.WithName("setup")
	setupLog.Info("Flags processed", "options", *opts)

	// 收到結束訊號時取消 context，讓所有工作者有序結束
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	ctx = logr.NewContext(ctx, logger)

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		return err
	}
	rep := report.New(opts.Mode)

	var errs error
	if opts.RunsBank() {
		errs = multierr.Append(errs, runBank(ctx, opts, m, rep))
	}
	if opts.RunsPipeline() {
		res, err := pipeline.Run(ctx, opts.PipelineConfig(), m)
		rep.SetPipeline(opts.Messages, res)
		errs = multierr.Append(errs, err)
	}

	samples, err := metrics.Samples(reg)
	if err != nil {
		setupLog.Error(err, "Failed to gather metrics")
	}
	rep.Metrics = samples
	if err := rep.Write(os.Stdout, opts.Report); err != nil {
		errs = multierr.Append(errs, err)
	}

	if errs != nil {
		return errs
	}
	if !rep.OK() {
		return errors.New("demo checks failed: see report")
	}
	return nil
}

func runBank(ctx context.Context, opts *config.Options, m *metrics.Metrics, rep *report.Report) error {
	l, err := bank.NewUniform(opts.Accounts, opts.InitialBalance)
	if err != nil {
		return fmt.Errorf("create ledger: %w", err)
	}
	stats, err := workload.Run(ctx, l, opts.WorkloadConfig(), m)
	rep.SetBank(l.Len(), stats)
	if !stats.Conserved() {
		logr.FromContextOrDiscard(ctx).Error(nil, "Total balance changed",
			"startTotal", stats.StartTotal, "endTotal", stats.EndTotal)
	}
	return err
}
