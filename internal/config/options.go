// internal/config/options.go

// Package config 定義示範程式的命令列設定，綁定 pflag 並集中驗證。
package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/multierr"

	"lockstep/internal/logging"
	"lockstep/internal/pipeline"
	"lockstep/internal/workload"
)

// 執行模式
const (
	ModeBank     = "bank"
	ModePipeline = "pipeline"
	ModeAll      = "all"
)

// 報表格式
const (
	ReportText = "text"
	ReportJSON = "json"
)

// Options contains the command-line configuration for the demo driver.
type Options struct {
	Mode string // bank | pipeline | all

	//
	// Bank demo.
	//
	Accounts       int
	InitialBalance int64
	Transfers      int
	Workers        int
	MaxAmount      int64
	Seed           uint64

	//
	// Pipeline demo.
	//
	Generators       int
	Translators      int
	Capacity         int
	Messages         int
	GenerateInterval time.Duration

	//
	// Diagnostics.
	//
	Timeout      time.Duration // 0 表示不設期限
	Report       string
	LogVerbosity int
	Development  bool
}

// NewOptions 回傳預設值（對應原始示範的規模）。
func NewOptions() *Options {
	wl := workload.DefaultConfig()
	pl := pipeline.DefaultConfig()
	return &Options{
		Mode:             ModeAll,
		Accounts:         100,
		InitialBalance:   1000,
		Transfers:        wl.Transfers,
		Workers:          wl.Workers,
		MaxAmount:        wl.MaxAmount,
		Generators:       pl.Generators,
		Translators:      pl.Translators,
		Capacity:         pl.Capacity,
		Messages:         pl.Messages,
		GenerateInterval: pl.GenerateInterval,
		Timeout:          time.Minute,
		Report:           ReportText,
		LogVerbosity:     logging.DEFAULT,
		Development:      true,
	}
}

// AddFlags binds the Options fields to command-line flags on the given FlagSet.
func (opts *Options) AddFlags(fs *pflag.FlagSet) {
	if fs == nil {
		fs = pflag.CommandLine
	}
	fs.StringVar(&opts.Mode, "mode", opts.Mode, "Which demo to run: bank, pipeline or all.")

	fs.IntVar(&opts.Accounts, "accounts", opts.Accounts, "Number of ledger accounts.")
	fs.Int64Var(&opts.InitialBalance, "initial-balance", opts.InitialBalance, "Initial balance of every account.")
	fs.IntVar(&opts.Transfers, "transfers", opts.Transfers, "Number of random concurrent transfers.")
	fs.IntVar(&opts.Workers, "workers", opts.Workers, "Size of the transfer worker pool.")
	fs.Int64Var(&opts.MaxAmount, "max-amount", opts.MaxAmount, "Exclusive upper bound of a random transfer amount.")
	fs.Uint64Var(&opts.Seed, "seed", opts.Seed, "Seed for transfer generation; 0 picks a random seed.")

	fs.IntVar(&opts.Generators, "generators", opts.Generators, "Number of pipeline generators.")
	fs.IntVar(&opts.Translators, "translators", opts.Translators, "Number of pipeline translators.")
	fs.IntVar(&opts.Capacity, "capacity", opts.Capacity, "Capacity of each pipeline channel.")
	fs.IntVar(&opts.Messages, "messages", opts.Messages, "Number of messages the sink reads.")
	fs.DurationVar(&opts.GenerateInterval, "generate-interval", opts.GenerateInterval, "Pause between messages of one generator.")

	fs.DurationVar(&opts.Timeout, "timeout", opts.Timeout, "Overall deadline; 0 disables it.")
	fs.StringVar(&opts.Report, "report", opts.Report, "Summary format: text or json.")
	fs.IntVarP(&opts.LogVerbosity, "v", "v", opts.LogVerbosity, "Number for the log level verbosity.")
	fs.BoolVar(&opts.Development, "development", opts.Development, "Use the human-readable development log encoder.")
}

// Validate checks the Options for invalid or conflicting values and reports all of them.
func (opts *Options) Validate() error {
	var errs error
	switch opts.Mode {
	case ModeBank, ModePipeline, ModeAll:
	default:
		errs = multierr.Append(errs, fmt.Errorf("invalid value %q for flag %q: must be bank, pipeline or all", opts.Mode, "mode"))
	}
	switch opts.Report {
	case ReportText, ReportJSON:
	default:
		errs = multierr.Append(errs, fmt.Errorf("invalid value %q for flag %q: must be text or json", opts.Report, "report"))
	}

	for _, pc := range []struct {
		name  string
		value int64
		min   int64
	}{
		{"accounts", int64(opts.Accounts), 1},
		{"initial-balance", opts.InitialBalance, 0},
		{"transfers", int64(opts.Transfers), 0},
		{"workers", int64(opts.Workers), 1},
		{"max-amount", opts.MaxAmount, 1},
		{"generators", int64(opts.Generators), 1},
		{"translators", int64(opts.Translators), 1},
		{"capacity", int64(opts.Capacity), 1},
		{"messages", int64(opts.Messages), 0},
		{"v", int64(opts.LogVerbosity), 0},
	} {
		if pc.value < pc.min {
			errs = multierr.Append(errs, fmt.Errorf("invalid value %d for flag %q: must be >= %d", pc.value, pc.name, pc.min))
		}
	}
	if opts.GenerateInterval < 0 {
		errs = multierr.Append(errs, fmt.Errorf("invalid value %v for flag %q: must be >= 0", opts.GenerateInterval, "generate-interval"))
	}
	if opts.Timeout < 0 {
		errs = multierr.Append(errs, fmt.Errorf("invalid value %v for flag %q: must be >= 0", opts.Timeout, "timeout"))
	}
	return errs
}

// RunsBank 表示是否執行轉帳示範。
func (opts *Options) RunsBank() bool { return opts.Mode == ModeBank || opts.Mode == ModeAll }

// RunsPipeline 表示是否執行管線示範。
func (opts *Options) RunsPipeline() bool { return opts.Mode == ModePipeline || opts.Mode == ModeAll }

// WorkloadConfig 轉為 workload.Config。
func (opts *Options) WorkloadConfig() workload.Config {
	return workload.Config{
		Transfers: opts.Transfers,
		Workers:   opts.Workers,
		MaxAmount: opts.MaxAmount,
		Seed:      opts.Seed,
	}
}

// PipelineConfig 轉為 pipeline.Config。
func (opts *Options) PipelineConfig() pipeline.Config {
	return pipeline.Config{
		Generators:       opts.Generators,
		Translators:      opts.Translators,
		Capacity:         opts.Capacity,
		Messages:         opts.Messages,
		GenerateInterval: opts.GenerateInterval,
	}
}
