// internal/report/model.go
//
// 定義一次示範執行的摘要結構。
// 報表只輸出到 io.Writer（通常是 stdout），不寫入任何檔案。

package report

import (
	"time"

	"github.com/google/uuid"

	"lockstep/internal/metrics"
	"lockstep/internal/pipeline"
	"lockstep/internal/syncutil"
	"lockstep/internal/workload"
)

// Version 為報表結構版本，欄位變動時遞增。
const Version = 1

// Meta 為報表的中繼資料。
type Meta struct {
	RunID            string    `json:"run_id"`
	Version          int       `json:"version"`
	Timestamp        time.Time `json:"timestamp"`
	Mode             string    `json:"mode"`
	DeadlockDetector bool      `json:"deadlock_detector"` // 是否以 -tags deadlock 建置
}

// Bank 為轉帳示範的結果。
type Bank struct {
	Accounts  int            `json:"accounts"`
	Stats     workload.Stats `json:"stats"`
	Conserved bool           `json:"conserved"`
}

// Pipeline 為管線示範的結果；Messages 只保留前幾則作為樣本。
type Pipeline struct {
	Requested int                `json:"requested"`
	Result    pipeline.Result    `json:"result"`
	Messages  []pipeline.Message `json:"messages,omitempty"`
}

// Report 為一次執行的完整摘要。
type Report struct {
	Meta     Meta             `json:"_meta"`
	Bank     *Bank            `json:"bank,omitempty"`
	Pipeline *Pipeline        `json:"pipeline,omitempty"`
	Metrics  []metrics.Sample `json:"metrics,omitempty"`
}

// New 建立帶有新 run id 的空白報表。
func New(mode string) *Report {
	return &Report{Meta: Meta{
		RunID:            uuid.NewString(),
		Version:          Version,
		Timestamp:        time.Now(),
		Mode:             mode,
		DeadlockDetector: syncutil.DeadlockEnabled,
	}}
}

// OK 表示所有已執行的示範皆達成預期：總額守恆、sink 收到要求數量的訊息。
func (r *Report) OK() bool {
	if r.Bank != nil && !r.Bank.Conserved {
		return false
	}
	if r.Pipeline != nil && r.Pipeline.Result.Consumed != r.Pipeline.Requested {
		return false
	}
	return true
}
