// internal/report/report_test.go
//
// 驗證報表的文字與 JSON 輸出，以及 OK() 的判斷。

package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugawarayuuta/sonnet"

	"lockstep/internal/metrics"
	"lockstep/internal/pipeline"
	"lockstep/internal/workload"
)

func sampleReport() *Report {
	r := New("all")
	r.SetBank(100, workload.Stats{StartTotal: 100000, EndTotal: 100000, Applied: 1500, Insufficient: 480, SameAccount: 20})
	msgs := make([]pipeline.Message, 8)
	for i := range msgs {
		msgs[i] = pipeline.Message{Seq: int64(i + 1), Generator: 1, Translator: 2, Text: "msg"}
	}
	r.SetPipeline(8, pipeline.Result{Received: msgs, Consumed: 8, Generated: 12, Translated: 9})
	r.Metrics = []metrics.Sample{{Name: "lockstep_bank_transfers_total", Labels: "outcome=applied", Value: 1500}}
	return r
}

func TestNewMeta(t *testing.T) {
	r := New("bank")
	_, err := uuid.Parse(r.Meta.RunID)
	require.NoError(t, err)
	assert.Equal(t, Version, r.Meta.Version)
	assert.False(t, r.Meta.Timestamp.IsZero())
	assert.NotEqual(t, r.Meta.RunID, New("bank").Meta.RunID)
}

func TestOK(t *testing.T) {
	r := sampleReport()
	assert.True(t, r.OK())

	r.Bank.Stats.EndTotal = 99999
	r.SetBank(100, r.Bank.Stats)
	assert.False(t, r.OK())

	r = sampleReport()
	r.Pipeline.Result.Consumed = 7
	assert.False(t, r.OK())

	assert.True(t, New("pipeline").OK(), "empty report has nothing to fail")
}

func TestSetPipelineKeepsSample(t *testing.T) {
	r := sampleReport()
	assert.Len(t, r.Pipeline.Messages, sampleMessages)
	assert.Equal(t, int64(1), r.Pipeline.Messages[0].Seq)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().Write(&buf, "text"))
	out := buf.String()
	for _, want := range []string{
		"initial total balance: 100000",
		"final total balance:   100000",
		"OK: total balance unchanged",
		"pipeline: received 8/8",
		"metric lockstep_bank_transfers_total{outcome=applied} 1500",
	} {
		assert.Contains(t, out, want)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	r := sampleReport()
	require.NoError(t, r.Write(&buf, "json"))
	require.True(t, strings.HasSuffix(buf.String(), "\n"))

	var decoded struct {
		Meta Meta `json:"_meta"`
		Bank struct {
			Conserved bool `json:"conserved"`
		} `json:"bank"`
		Pipeline struct {
			Messages []pipeline.Message `json:"messages"`
		} `json:"pipeline"`
	}
	require.NoError(t, sonnet.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, r.Meta.RunID, decoded.Meta.RunID)
	assert.True(t, decoded.Bank.Conserved)
	assert.Len(t, decoded.Pipeline.Messages, sampleMessages)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestWriteErrors(t *testing.T) {
	r := sampleReport()
	assert.Error(t, r.Write(failingWriter{}, "text"))
	assert.Error(t, r.Write(failingWriter{}, "json"))
	assert.Error(t, r.Write(&bytes.Buffer{}, "yaml"))
}
