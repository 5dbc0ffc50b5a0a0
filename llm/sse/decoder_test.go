package sse

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoder_DataOnlyDialect(t *testing.T) {
	t.Parallel()

	input := "data: {\"a\":1}\n\ndata: {\"b\":2}\n\ndata: [DONE]\n\n"
	dec := NewDecoder(strings.NewReader(input))

	ev, err := dec.Next()
	require.NoError(t, err)
	assert.Empty(t, ev.Name)
	assert.Equal(t, `{"a":1}`, string(ev.Data))

	ev, err = dec.Next()
	require.NoError(t, err)
	assert.Equal(t, `{"b":2}`, string(ev.Data))

	ev, err = dec.Next()
	require.NoError(t, err)
	assert.Equal(t, "[DONE]", string(ev.Data))

	_, err = dec.Next()
	assert.Equal(t, io.EOF, err)
}

func TestDecoder_EventDataDialect(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"event: message_start",
		`data: {"type":"message_start"}`,
		"",
		"event: content_block_delta",
		`data: {"delta":{"text":"hi"}}`,
		"",
		"event: message_stop",
		`data: {"type":"message_stop"}`,
		"",
	}, "\n")
	dec := NewDecoder(strings.NewReader(input))

	ev, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, "message_start", ev.Name)

	ev, err = dec.Next()
	require.NoError(t, err)
	assert.Equal(t, "content_block_delta", ev.Name)
	assert.Contains(t, string(ev.Data), "hi")

	ev, err = dec.Next()
	require.NoError(t, err)
	assert.Equal(t, "message_stop", ev.Name)
}

// The event name persists across data lines until the next event: line
// replaces it, so multi-data events keep their tag.
func TestDecoder_EventNamePersists(t *testing.T) {
	t.Parallel()

	input := "event: delta\ndata: one\ndata: two\nevent: stop\ndata: three\n"
	dec := NewDecoder(strings.NewReader(input))

	ev, _ := dec.Next()
	assert.Equal(t, "delta", ev.Name)
	assert.Equal(t, "one", string(ev.Data))

	ev, _ = dec.Next()
	assert.Equal(t, "delta", ev.Name)
	assert.Equal(t, "two", string(ev.Data))

	ev, _ = dec.Next()
	assert.Equal(t, "stop", ev.Name)
	assert.Equal(t, "three", string(ev.Data))
}

func TestDecoder_SkipsGarbageAndComments(t *testing.T) {
	t.Parallel()

	input := ": keep-alive\n\nnot a field line\nretry: 3000\ndata: ok\n\n"
	dec := NewDecoder(strings.NewReader(input))

	ev, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, "ok", string(ev.Data))

	_, err = dec.Next()
	assert.Equal(t, io.EOF, err)
}

func TestDecoder_ValueWhitespaceTrimmed(t *testing.T) {
	t.Parallel()

	// 	字段值两侧空白应被剥掉，但内部空白保留
	dec := NewDecoder(strings.NewReader("data:   spaced value  \n"))
	ev, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, "spaced value", string(ev.Data))
}

func TestDecoder_DataSurvivesNextScan(t *testing.T) {
	t.Parallel()

	// 返回的 Data 必须是副本：scanner 会在下一次 Scan 复用内部缓冲。
	dec := NewDecoder(strings.NewReader("data: first\ndata: second\n"))
	ev1, err := dec.Next()
	require.NoError(t, err)
	_, err = dec.Next()
	require.NoError(t, err)
	assert.Equal(t, "first", string(ev1.Data))
}

func TestDecoder_LargePayload(t *testing.T) {
	t.Parallel()

	payload := strings.Repeat("x", 512<<10) // 512 KiB, under the 1 MiB cap
	dec := NewDecoder(strings.NewReader("data: " + payload + "\n"))
	ev, err := dec.Next()
	require.NoError(t, err)
	assert.Len(t, ev.Data, 512<<10)
}

func TestDecoder_EmptyStream(t *testing.T) {
	t.Parallel()

	dec := NewDecoder(strings.NewReader(""))
	_, err := dec.Next()
	assert.Equal(t, io.EOF, err)
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestDecoder_ReaderError(t *testing.T) {
	t.Parallel()

	wantErr := io.ErrUnexpectedEOF
	dec := NewDecoder(failingReader{err: wantErr})
	_, err := dec.Next()
	assert.Equal(t, wantErr, err)
}
