// Package scanner consumes decoder output and turns it into stored scans.
package scanner

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
)

// ErrNotFound is the transient "no code in this frame" signal.
var ErrNotFound = errors.New("no code found")

// Attempt is one decoder output: either Text or Err is set. Screenshot is an
// optional frame captured with a successful decode and is never interpreted.
type Attempt struct {
	Text       string
	Screenshot []byte
	Err        error
}

// Decoder produces decode attempts until the channel is closed. Decoders
// must stop sending and close the channel once ctx is done.
type Decoder interface {
	Attempts(ctx context.Context) (<-chan Attempt, error)
}

// notFoundMarkers are substrings decoders use for frames without a code.
var notFoundMarkers = []string{"not found", "no code found", "no multiformat reader"}

// IsNotFound reports whether err only means that a frame held no code.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, m := range notFoundMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// maxLine bounds a single decoded payload read by LineDecoder.
const maxLine = 1 << 20

// LineDecoder adapts a line-oriented decoder process (for example the output
// of `zbarcam --raw`) to a Decoder. Each non-blank line is one decoded
// payload; blank lines count as frames without a code.
type LineDecoder struct {
	r io.Reader
}

func NewLineDecoder(r io.Reader) *LineDecoder {
	return &LineDecoder{r: r}
}

// Attempts starts reading in a goroutine. A read blocked on r is only
// released when r returns, so callers reading from a terminal should close r
// to stop promptly.
func (d *LineDecoder) Attempts(ctx context.Context) (<-chan Attempt, error) {
	out := make(chan Attempt)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(d.r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLine)
		for sc.Scan() {
			a := Attempt{Text: sc.Text()}
			if strings.TrimSpace(a.Text) == "" {
				a = Attempt{Err: ErrNotFound}
			}
			if !send(ctx, out, a) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			send(ctx, out, Attempt{Err: err})
		}
	}()
	return out, nil
}

func send(ctx context.Context, out chan<- Attempt, a Attempt) bool {
	select {
	case out <- a:
		return true
	case <-ctx.Done():
		return false
	}
}
