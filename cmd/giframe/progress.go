package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/jdeng/gogiframe/pkg/giframe"
)

// progress prints the time each stage was reached, when w is a terminal.
type progress struct {
	w       io.Writer
	enabled bool
	start   time.Time
	last    time.Time
}

func newProgress(w *os.File) *progress {
	now := time.Now()
	return &progress{
		w:       w,
		enabled: term.IsTerminal(int(w.Fd())),
		start:   now,
		last:    now,
	}
}

func (p *progress) handle(e giframe.Event) {
	if !p.enabled {
		return
	}
	now := time.Now()
	fmt.Fprintf(p.w, "%-13s +%-10v total %v\n", e.Stage(), now.Sub(p.last).Round(time.Microsecond), now.Sub(p.start).Round(time.Microsecond))
	p.last = now
}
