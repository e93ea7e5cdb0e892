package roomcast

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// PingChannel is the reserved channel name used for heartbeat frames. It
// must not be used for application messages.
const PingChannel = "ping"

// Message holds data for a single event before addressing. ID is optional,
// when empty the id line is omitted from the frame. Data is serialized with
// the effective encoder at send time.
type Message struct {
	ID      string
	Channel string
	Data    any
}

// SendOptions carries per call overrides for a single send. A nil
// *SendOptions is valid and means no overrides.
type SendOptions struct {
	// Encode overrides the room level encoder for this send only.
	Encode Encode
}

// FormatFrame renders a single event in SSE wire format:
//
//	id: <id>\n        (only when id is non-empty)
//	event: <channel>\n
//	data: <encoded>\n
//	\n
//
// A nil encode falls back to DefaultEncode. Encoder failures are returned to
// the caller, they are per message faults and never fatal for a connection.
func FormatFrame(id, channel string, data any, encode Encode) ([]byte, error) {
	if encode == nil {
		encode = DefaultEncode
	}
	text, err := encode(data)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if id != "" {
		fmt.Fprintf(&buf, "id: %s\n", id)
	}
	fmt.Fprintf(&buf, "event: %s\n", channel)
	fmt.Fprintf(&buf, "data: %s\n\n", text)
	return buf.Bytes(), nil
}

// pingFrame renders a heartbeat frame. The payload is the raw decimal unix
// epoch millisecond timestamp, written without the codec so the frame stays
// bit-stable no matter what encoder a room is configured with.
func pingFrame(now time.Time) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "event: %s\ndata: %s\n\n",
		PingChannel, strconv.FormatInt(now.UnixMilli(), 10))
	return buf.Bytes()
}
