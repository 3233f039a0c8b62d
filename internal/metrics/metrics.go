// internal/metrics/metrics.go

// Package metrics 定義轉帳與管線示範的 Prometheus 指標。
// 指標註冊在呼叫端提供的 Registry 上（不使用全域預設 registry），
// 只在行程內收集並由 report 匯出，不提供 HTTP 端點。
package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const (
	namespace = "lockstep"

	// 管線階段標籤值
	StageGenerated  = "generated"
	StageTranslated = "translated"
	StageConsumed   = "consumed"
)

// Metrics 集中持有所有 collector。
type Metrics struct {
	reg prometheus.Registerer

	// TransferOutcomes 依 outcome（applied / insufficient_funds / same_account）計數。
	TransferOutcomes *prometheus.CounterVec
	// TransferDuration 為單筆 Transfer 呼叫（含等鎖）的耗時。
	TransferDuration prometheus.Histogram
	// PipelineMessages 依階段計數管線訊息。
	PipelineMessages *prometheus.CounterVec
	// Cancellations 計數因取消而放棄的 Push/Pop。
	Cancellations *prometheus.CounterVec
}

// New 建立並註冊所有 collector。
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		reg: reg,
		TransferOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bank",
			Name:      "transfers_total",
			Help:      "Number of transfers by outcome.",
		}, []string{"outcome"}),
		TransferDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "bank",
			Name:      "transfer_duration_seconds",
			Help:      "Latency of a single transfer including lock acquisition.",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 12),
		}),
		PipelineMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "messages_total",
			Help:      "Number of messages that completed each pipeline stage.",
		}, []string{"stage"}),
		Cancellations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "cancelled_waits_total",
			Help:      "Number of blocked channel operations abandoned on cancellation.",
		}, []string{"role"}),
	}
	for _, c := range []prometheus.Collector{m.TransferOutcomes, m.TransferDuration, m.PipelineMessages, m.Cancellations} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return m, nil
}

// ObserveChannel 註冊一個回報 channel 目前佔用量的 GaugeFunc。
func (m *Metrics) ObserveChannel(name string, length func() int) error {
	g := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   namespace,
		Subsystem:   "ring",
		Name:        "occupancy",
		Help:        "Number of items currently buffered in the channel.",
		ConstLabels: prometheus.Labels{"channel": name},
	}, func() float64 { return float64(length()) })
	if err := m.reg.Register(g); err != nil {
		return fmt.Errorf("register channel %q: %w", name, err)
	}
	return nil
}

// Sample 為單一時間序列的值，供報表輸出。
type Sample struct {
	Name   string  `json:"name"`
	Labels string  `json:"labels,omitempty"`
	Value  float64 `json:"value"`
}

// Samples 收集 gatherer 內所有 counter 與 gauge 的值（histogram 以樣本數回報），依名稱排序。
func Samples(g prometheus.Gatherer) ([]Sample, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}
	var out []Sample
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			s := Sample{Name: mf.GetName(), Labels: labelString(m.GetLabel())}
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				s.Value = m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				s.Value = m.GetGauge().GetValue()
			case dto.MetricType_HISTOGRAM:
				s.Name += "_count"
				s.Value = float64(m.GetHistogram().GetSampleCount())
			default:
				continue
			}
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Labels < out[j].Labels
	})
	return out, nil
}

func labelString(pairs []*dto.LabelPair) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.GetName()+"="+p.GetValue())
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
