// Package clipboard copies citation text to the user's clipboard.
//
// The system clipboard is tried first. If it fails, the text is sent to the
// terminal as an OSC 52 escape sequence, which most modern terminals (and
// tmux or screen with passthrough) turn into a clipboard write.
package clipboard

import (
	"errors"
	"io"
	"os"

	"github.com/atotto/clipboard"
	osc52 "github.com/aymanbagabas/go-osc52/v2"
	"github.com/rs/zerolog/log"
)

// ErrUnavailable is returned when clipboard access is not available.
var ErrUnavailable = errors.New("clipboard unavailable")

// Copy methods reported in a Result.
const (
	MethodSystem = "system"
	MethodOSC52  = "osc52"
	MethodNone   = "none"
)

// Result describes how a copy was carried out.
type Result struct {
	Method string // MethodSystem, MethodOSC52 or MethodNone
	Err    error  // set only when every method failed
}

// Copier copies text through the system clipboard with a terminal fallback.
type Copier struct {
	primary  func(string) error
	terminal io.Writer
}

// New returns a Copier whose fallback writes to terminal. A nil terminal
// disables the fallback.
func New(terminal io.Writer) *Copier {
	return &Copier{
		primary:  writeSystem,
		terminal: terminal,
	}
}

// IsAvailable reports whether a system clipboard utility was found.
func IsAvailable() bool {
	return !clipboard.Unsupported
}

func writeSystem(text string) error {
	if !IsAvailable() {
		return ErrUnavailable
	}
	return clipboard.WriteAll(text)
}

// Copy copies text, falling back to OSC 52 when the system clipboard fails.
// Failures are logged; the returned Result says which method succeeded.
func (c *Copier) Copy(text string) Result {
	err := c.primary(text)
	if err == nil {
		return Result{Method: MethodSystem}
	}
	log.Warn().Err(err).Msg("system clipboard write failed, trying OSC 52")

	if c.terminal == nil {
		log.Error().Msg("OSC 52 fallback has no terminal to write to")
		return Result{Method: MethodNone, Err: ErrUnavailable}
	}

	if _, err := sequence(text).WriteTo(c.terminal); err != nil {
		log.Error().Err(err).Msg("OSC 52 fallback failed")
		return Result{Method: MethodNone, Err: err}
	}
	log.Debug().Int("bytes", len(text)).Msg("copied via OSC 52")
	return Result{Method: MethodOSC52}
}

// sequence wraps the OSC 52 sequence for the multiplexer we're running in.
func sequence(text string) osc52.Sequence {
	seq := osc52.New(text)
	switch {
	case os.Getenv("TMUX") != "":
		seq = seq.Tmux()
	case os.Getenv("STY") != "":
		seq = seq.Screen()
	}
	return seq
}
