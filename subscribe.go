package roomcast

import (
	"errors"
	"io"
	"net/http"
)

var errFlusherIface = errors.New("http.ResponseWriter does not implement http.Flusher interface")

// Subscribe handles an HTTP request for the SSE stream of one subscriber.
// It sets the event-stream response headers, opens a stream for user in
// this room and then blocks until the stream is closed or the client
// disconnects. The request context is the authoritative cancellation
// signal: once it is done no further frame can be written and teardown
// always runs.
//
// Subscribe panics if w does not implement http.Flusher.
func (r *Room) Subscribe(w http.ResponseWriter, req *http.Request, user string, hooks Hooks) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		panic(errFlusherIface)
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-store")
	h.Set("Connection", "keep-alive")

	c, err := r.Open(user, &flushWriter{w: w, flusher: flusher}, hooks)
	if err != nil {
		return err
	}

	select {
	case <-c.Done():
	case <-req.Context().Done():
		c.Close()
	}
	return nil
}

// flushWriter adapts an http.ResponseWriter to the StreamWriter interface.
// Every frame is flushed immediately so proxies and clients observe events
// as they happen. The owning controller serializes calls, no extra locking
// is needed here.
type flushWriter struct {
	w       io.Writer
	flusher http.Flusher
}

func (fw *flushWriter) Enqueue(p []byte) error {
	if _, err := fw.w.Write(p); err != nil {
		return err
	}
	fw.flusher.Flush()
	return nil
}

// Close is a no-op: the HTTP response body is closed by the server when the
// Subscribe handler returns.
func (fw *flushWriter) Close() error { return nil }
