// Package sse decodes server-sent event streams the way LLM vendors emit
// them. The decoder is pull-based and dialect-agnostic: it surfaces every
// data-bearing line as an Event tagged with the most recently seen event
// name, and leaves the meaning of names and payloads to the caller.
package sse

import (
	"bufio"
	"bytes"
	"io"
)

// Event is one server-sent event. Name is empty on streams that never send
// event: lines (the data-only dialect).
type Event struct {
	Name string
	Data []byte
}

// Decoder scans a line-oriented SSE stream. The only state it keeps is the
// current event name, which persists until the next event: line replaces it.
type Decoder struct {
	scanner *bufio.Scanner
	event   string
}

// NewDecoder wraps r. The line buffer tolerates payloads up to 1 MiB.
func NewDecoder(r io.Reader) *Decoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	return &Decoder{scanner: sc}
}

// Next returns the next data-bearing event. io.EOF signals the end of the
// stream; any other error comes from the underlying reader. Blank lines,
// comments and unknown fields are skipped.
func (d *Decoder) Next() (Event, error) {
	for d.scanner.Scan() {
		line := d.scanner.Bytes()
		switch {
		case len(bytes.TrimSpace(line)) == 0:
			continue
		case hasField(line, "event"):
			d.event = string(fieldValue(line, "event"))
		case hasField(line, "data"):
			// Copy out: the scanner reuses its buffer on the next Scan.
			val := fieldValue(line, "data")
			data := make([]byte, len(val))
			copy(data, val)
			return Event{Name: d.event, Data: data}, nil
		}
	}
	if err := d.scanner.Err(); err != nil {
		return Event{}, err
	}
	return Event{}, io.EOF
}

func hasField(line []byte, field string) bool {
	return bytes.HasPrefix(line, []byte(field+":"))
}

func fieldValue(line []byte, field string) []byte {
	return bytes.TrimSpace(bytes.TrimPrefix(line, []byte(field+":")))
}
