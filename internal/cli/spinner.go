package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Spinner animates one status line with the elapsed time. It is used where
// there is no per-line progress to show, such as stats. It clears its line
// and stops drawing when its context ends.
type Spinner struct {
	w     io.Writer
	ctx   context.Context
	start time.Time

	stopOnce sync.Once
	quit     chan struct{}
	exited   chan struct{}

	mu      sync.Mutex
	message string
	drawn   int // width of the last frame, for clearing
}

// newSpinner draws on stderr.
func newSpinner(ctx context.Context, message string) *Spinner {
	return newSpinnerTo(ctx, os.Stderr, message)
}

func newSpinnerTo(ctx context.Context, w io.Writer, message string) *Spinner {
	return &Spinner{
		w:       w,
		ctx:     ctx,
		message: message,
		quit:    make(chan struct{}),
		exited:  make(chan struct{}),
	}
}

// Start begins drawing. Call Stop to end it.
func (s *Spinner) Start() {
	s.start = time.Now()
	go s.loop()
}

func (s *Spinner) loop() {
	defer close(s.exited)
	defer s.clear()

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()
	for frame := 0; ; frame++ {
		select {
		case <-s.ctx.Done():
			return
		case <-s.quit:
			return
		case <-ticker.C:
			s.draw(spinnerFrames[frame%len(spinnerFrames)])
		}
	}
}

// SetMessage replaces the text shown next to the spinner.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	elapsed := time.Since(s.start).Round(100 * time.Millisecond)
	text := fmt.Sprintf("%s %s", s.message, elapsed)
	pad := ""
	if n := len(text); n < s.drawn {
		pad = strings.Repeat(" ", s.drawn-n)
	} else {
		s.drawn = n
	}
	fmt.Fprintf(s.w, "\r%s %s%s", styleIconSpinner.Render(frame), StyleDim.Render(text), pad)
}

func (s *Spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drawn > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.drawn+2))
	}
}

// Stop ends the animation and clears the line. It is safe to call more than
// once and after the context ended.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() { close(s.quit) })
	<-s.exited
}

// StopWithError stops the spinner and prints "✗ message" in its place.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	fmt.Fprintln(s.w, styleFail.Render(iconError)+" "+message)
}
