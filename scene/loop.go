// Package scene drives the frame loop: input, completion requests, the model
// and the chat overlay.
package scene

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/javanhut/RavenCompanion/model"
	"github.com/javanhut/RavenCompanion/ui"
)

// State of the loop
type State int

const (
	Running State = iota
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	// ErrRecoverable marks frame errors that are logged without stopping the loop
	ErrRecoverable = errors.New("recoverable")
	ErrStopped     = errors.New("scene stopped")
)

// Recoverable wraps err so the loop keeps running after logging it
func Recoverable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrRecoverable, err)
}

// Display is the window the loop presents to
type Display interface {
	PollEvents()
	ShouldClose() bool
	SwapBuffers()
}

// Surface is what the overlay and background are drawn on
type Surface interface {
	ui.Canvas
	Begin(width, height int)
	Clear(c ui.Color)
	Metrics() ui.Metrics
}

// Completer answers a question with display text
type Completer interface {
	Complete(ctx context.Context, question string) string
}

// Options configure a Loop
type Options struct {
	Display   Display
	Surface   Surface
	Completer Completer
	Queue     *Queue
	// Model may be nil when loading failed
	Model model.Model
	// Overlay defaults to ui.NewOverlay(Width, Height)
	Overlay *ui.Overlay

	Width  int
	Height int
	// FPS caps the frame rate; zero or less runs unthrottled
	FPS float64
	// Background runs completions off the frame loop
	Background bool
	ClearColor ui.Color
	Now        func() time.Time
}

type completion struct {
	id    int
	reply string
}

// Loop is the RUNNING/STOPPED frame state machine
type Loop struct {
	display   Display
	surface   Surface
	completer Completer
	queue     *Queue
	model     model.Model
	overlay   *ui.Overlay
	width     int
	height    int
	clear     ui.Color

	state      State
	input      ui.InputBuffer
	output     string
	events     []Event
	limiter    *rate.Limiter
	now        func() time.Time
	lastFrame  time.Time
	background bool
	requestID  int
	waitingID  int
	results    chan completion
	wg         sync.WaitGroup
}

// New creates a running loop
func New(opts Options) (*Loop, error) {
	switch {
	case opts.Display == nil:
		return nil, errors.New("scene: display is required")
	case opts.Surface == nil:
		return nil, errors.New("scene: surface is required")
	case opts.Completer == nil:
		return nil, errors.New("scene: completer is required")
	case opts.Width <= 0 || opts.Height <= 0:
		return nil, fmt.Errorf("scene: invalid size %dx%d", opts.Width, opts.Height)
	}

	l := &Loop{
		display:    opts.Display,
		surface:    opts.Surface,
		completer:  opts.Completer,
		queue:      opts.Queue,
		model:      opts.Model,
		overlay:    opts.Overlay,
		width:      opts.Width,
		height:     opts.Height,
		clear:      opts.ClearColor,
		background: opts.Background,
		now:        opts.Now,
		results:    make(chan completion, 4),
	}
	if l.queue == nil {
		l.queue = &Queue{}
	}
	if l.overlay == nil {
		l.overlay = ui.NewOverlay(opts.Width, opts.Height)
	}
	if l.now == nil {
		l.now = time.Now
	}
	if opts.FPS > 0 {
		l.limiter = rate.NewLimiter(rate.Limit(opts.FPS), 1)
	} else {
		l.limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return l, nil
}

// State returns the current state
func (l *Loop) State() State {
	return l.state
}

// Stop moves the loop to STOPPED
func (l *Loop) Stop() {
	if l.state != Stopped {
		log.Printf("scene: stopping")
	}
	l.state = Stopped
}

// Queue returns the event queue the window callbacks push into
func (l *Loop) Queue() *Queue {
	return l.queue
}

// Input returns the text typed since the last submission
func (l *Loop) Input() string {
	return l.input.String()
}

// Output returns the text shown in the output box
func (l *Loop) Output() string {
	return l.output
}

// Busy reports whether a background completion is pending
func (l *Loop) Busy() bool {
	return l.waitingID != 0
}

// Run paces frames until the loop stops or ctx is cancelled. Recoverable
// frame errors are logged; any other error stops the loop and is returned.
func (l *Loop) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		l.wg.Wait()
	}()

	for l.state == Running {
		if err := l.limiter.Wait(ctx); err != nil {
			l.Stop()
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("scene: frame pacing: %w", err)
		}

		if err := l.Frame(ctx); err != nil {
			if errors.Is(err, ErrRecoverable) {
				log.Printf("scene: %v", err)
				continue
			}
			l.Stop()
			log.Printf("scene: error in main loop: %v", err)
			return err
		}
	}
	return nil
}

// Frame runs one iteration: input, completions, update, draw, present
func (l *Loop) Frame(ctx context.Context) error {
	if l.state == Stopped {
		return ErrStopped
	}

	l.display.PollEvents()
	if l.display.ShouldClose() {
		l.Stop()
		return nil
	}

	l.events = l.queue.Drain(l.events[:0])
	for _, e := range l.events {
		l.handle(ctx, e)
		if l.state == Stopped {
			return nil
		}
	}

	l.collect()

	now := l.now()
	var dt time.Duration
	if !l.lastFrame.IsZero() {
		dt = now.Sub(l.lastFrame)
	}
	l.lastFrame = now

	l.surface.Begin(l.width, l.height)
	l.surface.Clear(l.clear)

	var modelErr error
	if l.model != nil {
		if err := l.model.Update(dt); err != nil {
			modelErr = fmt.Errorf("model update: %w", err)
		} else if err := l.model.Draw(); err != nil {
			modelErr = fmt.Errorf("model draw: %w", err)
		}
	}

	// The model leaves its own GL state behind; reset before the overlay
	l.surface.Begin(l.width, l.height)
	l.overlay.Draw(l.surface, l.surface.Metrics(), l.input.String(), l.output, l.Busy())

	l.display.SwapBuffers()
	return Recoverable(modelErr)
}

func (l *Loop) handle(ctx context.Context, e Event) {
	switch e.Kind {
	case EventQuit:
		l.Stop()
	case EventSubmit:
		if l.input.IsEmpty() {
			return
		}
		l.submit(ctx, l.input.Take())
	case EventBackspace:
		l.input.Backspace()
	case EventText:
		l.input.Append(e.Rune)
	}
}

func (l *Loop) submit(ctx context.Context, question string) {
	if !l.background {
		l.output = l.completer.Complete(ctx, question)
		return
	}

	l.requestID++
	l.waitingID = l.requestID
	l.wg.Add(1)
	go func(id int, q string) {
		defer l.wg.Done()
		reply := l.completer.Complete(ctx, q)
		select {
		case l.results <- completion{id: id, reply: reply}:
		case <-ctx.Done():
		}
	}(l.requestID, question)
}

// collect applies finished background completions without blocking. Replies
// to superseded requests are dropped.
func (l *Loop) collect() {
	for {
		select {
		case res := <-l.results:
			if res.id != l.waitingID {
				continue
			}
			l.output = res.reply
			l.waitingID = 0
		default:
			return
		}
	}
}

// Wait blocks until background completions have returned
func (l *Loop) Wait() {
	l.wg.Wait()
}
