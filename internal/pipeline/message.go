// internal/pipeline/message.go

package pipeline

import "fmt"

// Message 為管線中傳遞的訊息。Seq 在一次 Run 內唯一；
// Translator 為 0 表示尚未經過翻譯。
type Message struct {
	Seq        int64  `json:"seq"`
	Generator  int    `json:"generator"`
	Translator int    `json:"translator,omitempty"`
	Raw        string `json:"raw"`
	Text       string `json:"text"`
}

func rawText(generator int, seq int64) string {
	return fmt.Sprintf("generator #%d produced message %d", generator, seq)
}

func translatedText(translator int, raw string) string {
	return fmt.Sprintf("translator #%d translated -> [%s]", translator, raw)
}

func newRaw(generator int, seq int64) Message {
	text := rawText(generator, seq)
	return Message{Seq: seq, Generator: generator, Raw: text, Text: text}
}

// translate 回傳由 translator 包裝後的新訊息，原訊息不變。
func (m Message) translate(translator int) Message {
	m.Translator = translator
	m.Text = translatedText(translator, m.Raw)
	return m
}

// WellFormed 檢查訊息是否為 cfg 規模下完整翻譯過、內容未損毀的訊息。
func (m Message) WellFormed(cfg Config) bool {
	return m.Seq > 0 &&
		m.Generator >= 1 && m.Generator <= cfg.Generators &&
		m.Translator >= 1 && m.Translator <= cfg.Translators &&
		m.Raw == rawText(m.Generator, m.Seq) &&
		m.Text == translatedText(m.Translator, m.Raw)
}

func (m Message) String() string { return m.Text }
