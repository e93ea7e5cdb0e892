package roomcast

import (
	"bytes"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFrame(t *testing.T) {
	tests := []struct {
		msg      string
		id       string
		channel  string
		data     any
		expected string
	}{
		{
			msg:      "with id",
			id:       "42",
			channel:  "chat",
			data:     map[string]any{"x": 1},
			expected: "id: 42\nevent: chat\ndata: {\"x\":1}\n\n",
		},
		{
			msg:      "without id",
			channel:  "chat",
			data:     map[string]any{"x": 1},
			expected: "event: chat\ndata: {\"x\":1}\n\n",
		},
		{
			msg:      "string payload",
			channel:  "notice",
			data:     "body",
			expected: "event: notice\ndata: \"body\"\n\n",
		},
		{
			msg:      "nil payload",
			channel:  "tick",
			data:     nil,
			expected: "event: tick\ndata: null\n\n",
		},
	}

	for _, test := range tests {
		t.Run(test.msg, func(t *testing.T) {
			frame, err := FormatFrame(test.id, test.channel, test.data, nil)
			require.NoError(t, err)
			assert.Equal(t, []byte(test.expected), frame)
		})
	}
}

func TestFormatFrameCustomEncoder(t *testing.T) {
	upper := func(v any) (string, error) { return "RAW", nil }

	frame, err := FormatFrame("", "chat", "ignored", upper)
	require.NoError(t, err)
	assert.Equal(t, []byte("event: chat\ndata: RAW\n\n"), frame)
}

func TestFormatFrameEncodeError(t *testing.T) {
	encodeErr := errors.New("bad payload")
	failing := func(v any) (string, error) { return "", encodeErr }

	_, err := FormatFrame("1", "chat", "x", failing)
	assert.ErrorIs(t, err, encodeErr)
}

func TestPingFrame(t *testing.T) {
	now := time.Now()
	frame := pingFrame(now)

	require.True(t, bytes.HasPrefix(frame, []byte("event: ping\ndata: ")))
	require.True(t, bytes.HasSuffix(frame, []byte("\n\n")))

	payload := frame[len("event: ping\ndata: ") : len(frame)-2]
	millis, err := strconv.ParseInt(string(payload), 10, 64)
	require.NoError(t, err)
	assert.Equal(t, now.UnixMilli(), millis)
}

func TestDefaultCodecRoundTrip(t *testing.T) {
	text, err := DefaultEncode(map[string]any{"x": 1})
	require.NoError(t, err)

	v, err := DefaultDecode(text)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": float64(1)}, v)
}
