// Package sse decodes the event-stream protocol used by the MevzuatGPT
// backend for scan and upload responses. The decoder is pure text
// transformation: it owns no I/O, so the same logical stream fed in at any
// chunk boundaries yields the same frame sequence.
package sse

import "strings"

const (
	eventPrefix = "event:"
	dataPrefix  = "data:"
)

// Frame is one decoded event: a name and its (possibly empty) data text.
type Frame struct {
	Event string
	Data  string
}

// Decoder reassembles frames from an incrementally delivered text stream.
// Frames are separated by a blank line; a partial trailing block is buffered
// until more input arrives.
type Decoder struct {
	buf string
}

// Feed appends a chunk and returns every frame completed by it, in arrival
// order. Blocks without an event line are discarded.
func (d *Decoder) Feed(chunk string) []Frame {
	d.buf += chunk

	parts := strings.Split(d.buf, "\n\n")
	d.buf = parts[len(parts)-1]

	var frames []Frame
	for _, block := range parts[:len(parts)-1] {
		if f, ok := parseBlock(block); ok {
			frames = append(frames, f)
		}
	}
	return frames
}

// Flush drains the buffered tail as a final frame, for streams that close
// without a trailing blank line. Returns false if the tail is empty or has
// no event line.
func (d *Decoder) Flush() (Frame, bool) {
	block := d.buf
	d.buf = ""
	return parseBlock(block)
}

// parseBlock extracts the first event: and first data: line of a block.
func parseBlock(block string) (Frame, bool) {
	var f Frame
	haveEvent := false
	haveData := false

	for _, line := range strings.Split(block, "\n") {
		switch {
		case !haveEvent && strings.HasPrefix(line, eventPrefix):
			f.Event = strings.TrimSpace(strings.TrimPrefix(line, eventPrefix))
			haveEvent = true
		case !haveData && strings.HasPrefix(line, dataPrefix):
			f.Data = strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
			haveData = true
		}
	}

	if !haveEvent {
		return Frame{}, false
	}
	return f, true
}
