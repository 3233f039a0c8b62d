// internal/report/writer.go

package report

import (
	"fmt"
	"io"

	"github.com/sugawarayuuta/sonnet"

	"lockstep/internal/pipeline"
	"lockstep/internal/workload"
)

// sampleMessages 為報表保留的訊息樣本數上限。
const sampleMessages = 5

// SetBank 記錄轉帳示範結果。
func (r *Report) SetBank(accounts int, stats workload.Stats) {
	r.Bank = &Bank{Accounts: accounts, Stats: stats, Conserved: stats.Conserved()}
}

// SetPipeline 記錄管線示範結果。
func (r *Report) SetPipeline(requested int, res pipeline.Result) {
	p := &Pipeline{Requested: requested, Result: res}
	n := min(len(res.Received), sampleMessages)
	p.Messages = append(p.Messages, res.Received[:n]...)
	r.Pipeline = p
}

// WriteJSON 以單行 JSON 輸出報表。
func (r *Report) WriteJSON(w io.Writer) error {
	b, err := sonnet.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

// WriteText 以人類可讀的格式輸出報表。
func (r *Report) WriteText(w io.Writer) error {
	ew := &errWriter{w: w}
	ew.printf("run %s (mode=%s, deadlock detector=%v)\n", r.Meta.RunID, r.Meta.Mode, r.Meta.DeadlockDetector)
	if b := r.Bank; b != nil {
		ew.printf("bank: %d accounts\n", b.Accounts)
		ew.printf("  initial total balance: %d\n", b.Stats.StartTotal)
		ew.printf("  final total balance:   %d\n", b.Stats.EndTotal)
		ew.printf("  transfers: applied=%d insufficient=%d same-account=%d in %v\n",
			b.Stats.Applied, b.Stats.Insufficient, b.Stats.SameAccount, b.Stats.Elapsed)
		if b.Conserved {
			ew.printf("  OK: total balance unchanged\n")
		} else {
			ew.printf("  FAIL: total balance changed by %d\n", b.Stats.EndTotal-b.Stats.StartTotal)
		}
	}
	if p := r.Pipeline; p != nil {
		ew.printf("pipeline: received %d/%d (generated=%d translated=%d) in %v\n",
			p.Result.Consumed, p.Requested, p.Result.Generated, p.Result.Translated, p.Result.Elapsed)
		for _, m := range p.Messages {
			ew.printf("  %s\n", m.Text)
		}
	}
	for _, s := range r.Metrics {
		if s.Labels != "" {
			ew.printf("metric %s{%s} %g\n", s.Name, s.Labels, s.Value)
		} else {
			ew.printf("metric %s %g\n", s.Name, s.Value)
		}
	}
	return ew.err
}

// Write 依 format（"text" 或 "json"）輸出報表。
func (r *Report) Write(w io.Writer, format string) error {
	switch format {
	case "json":
		return r.WriteJSON(w)
	case "text", "":
		return r.WriteText(w)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// errWriter 保留第一個寫入錯誤，後續寫入直接略過。
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
