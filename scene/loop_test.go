package scene

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javanhut/RavenCompanion/ui"
)

type fakeDisplay struct {
	polls  int
	swaps  int
	closed bool
	onPoll func()
}

func (d *fakeDisplay) PollEvents() {
	d.polls++
	if d.onPoll != nil {
		d.onPoll()
	}
}
func (d *fakeDisplay) ShouldClose() bool { return d.closed }
func (d *fakeDisplay) SwapBuffers()      { d.swaps++ }

type monoMetrics struct{}

func (monoMetrics) Advance(rune) float32 { return 10 }
func (monoMetrics) Ascent() float32      { return 16 }
func (monoMetrics) LineHeight() float32  { return 20 }

type fakeSurface struct {
	begins int
	clears []ui.Color
	texts  []string
}

func (s *fakeSurface) Begin(int, int)                          { s.begins++ }
func (s *fakeSurface) Clear(c ui.Color)                        { s.clears = append(s.clears, c) }
func (s *fakeSurface) Metrics() ui.Metrics                     { return monoMetrics{} }
func (s *fakeSurface) FillRect(_, _, _, _ float32, _ ui.Color) {}
func (s *fakeSurface) DrawText(_, _ float32, text string, _ ui.Color) {
	s.texts = append(s.texts, text)
}

type fakeCompleter struct {
	mu        sync.Mutex
	questions []string
	reply     func(q string) string
	gate      chan struct{}
}

func (c *fakeCompleter) Complete(ctx context.Context, q string) string {
	c.mu.Lock()
	c.questions = append(c.questions, q)
	c.mu.Unlock()
	if c.gate != nil {
		select {
		case <-c.gate:
		case <-ctx.Done():
			return "Request failed: " + ctx.Err().Error()
		}
	}
	if c.reply != nil {
		return c.reply(q)
	}
	return "reply to " + q
}

func (c *fakeCompleter) asked() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.questions...)
}

type fakeModel struct {
	updates   []time.Duration
	draws     int
	updateErr error
	drawErr   error
}

func (m *fakeModel) Load(string) error { return nil }
func (m *fakeModel) Update(dt time.Duration) error {
	m.updates = append(m.updates, dt)
	return m.updateErr
}
func (m *fakeModel) Draw() error {
	m.draws++
	return m.drawErr
}
func (m *fakeModel) Resize(int, int) error              { return nil }
func (m *fakeModel) SetAutoBreath(bool)                 {}
func (m *fakeModel) StartMotion(string, int, int) error { return nil }

type fixture struct {
	loop      *Loop
	display   *fakeDisplay
	surface   *fakeSurface
	completer *fakeCompleter
	model     *fakeModel
}

func newFixture(t *testing.T, mutate func(*Options)) *fixture {
	t.Helper()
	f := &fixture{
		display:   &fakeDisplay{},
		surface:   &fakeSurface{},
		completer: &fakeCompleter{},
		model:     &fakeModel{},
	}
	clock := time.Unix(0, 0)
	opts := Options{
		Display:   f.display,
		Surface:   f.surface,
		Completer: f.completer,
		Model:     f.model,
		Width:     800,
		Height:    600,
		Now: func() time.Time {
			clock = clock.Add(16 * time.Millisecond)
			return clock
		},
	}
	if mutate != nil {
		mutate(&opts)
	}
	loop, err := New(opts)
	require.NoError(t, err)
	f.loop = loop
	return f
}

func (f *fixture) push(events ...Event) {
	for _, e := range events {
		f.loop.Queue().Push(e)
	}
}

func typed(s string) []Event {
	var events []Event
	for _, r := range s {
		events = append(events, Text(r))
	}
	return events
}

func TestNewValidates(t *testing.T) {
	_, err := New(Options{Surface: &fakeSurface{}, Completer: &fakeCompleter{}, Width: 800, Height: 600})
	assert.Error(t, err)
	_, err = New(Options{Display: &fakeDisplay{}, Completer: &fakeCompleter{}, Width: 800, Height: 600})
	assert.Error(t, err)
	_, err = New(Options{Display: &fakeDisplay{}, Surface: &fakeSurface{}, Width: 800, Height: 600})
	assert.Error(t, err)
	_, err = New(Options{Display: &fakeDisplay{}, Surface: &fakeSurface{}, Completer: &fakeCompleter{}})
	assert.Error(t, err)
}

func TestFrameTypingAndBackspace(t *testing.T) {
	f := newFixture(t, nil)

	f.push(typed("你好ab")...)
	f.push(Event{Kind: EventBackspace})
	require.NoError(t, f.loop.Frame(context.Background()))

	assert.Equal(t, "你好a", f.loop.Input())
	assert.Equal(t, Running, f.loop.State())
	assert.Contains(t, f.surface.texts, "你好a_")
	assert.Equal(t, 1, f.display.swaps)
}

func TestFrameSubmitSynchronous(t *testing.T) {
	f := newFixture(t, nil)

	f.push(typed("hi")...)
	f.push(Event{Kind: EventSubmit})
	require.NoError(t, f.loop.Frame(context.Background()))

	assert.Equal(t, []string{"hi"}, f.completer.asked())
	assert.Equal(t, "reply to hi", f.loop.Output())
	assert.Empty(t, f.loop.Input())
	assert.Contains(t, f.surface.texts, "reply to hi")
}

func TestFrameSubmitEmptyIsIgnored(t *testing.T) {
	f := newFixture(t, nil)

	f.push(Event{Kind: EventSubmit}, Event{Kind: EventBackspace}, Event{Kind: EventSubmit})
	require.NoError(t, f.loop.Frame(context.Background()))

	assert.Empty(t, f.completer.asked())
	assert.Empty(t, f.loop.Output())
}

func TestFrameSubmitErrorTextIsShown(t *testing.T) {
	f := newFixture(t, nil)
	f.completer.reply = func(string) string { return "Request failed: status 401" }

	f.push(typed("q")...)
	f.push(Event{Kind: EventSubmit})
	require.NoError(t, f.loop.Frame(context.Background()))

	assert.Equal(t, "Request failed: status 401", f.loop.Output())
	assert.Equal(t, Running, f.loop.State())
}

func TestFrameQuitStops(t *testing.T) {
	f := newFixture(t, nil)

	f.push(Event{Kind: EventQuit}, Text('x'))
	require.NoError(t, f.loop.Frame(context.Background()))

	assert.Equal(t, Stopped, f.loop.State())
	assert.Empty(t, f.loop.Input(), "events after quit are not applied")
	assert.Zero(t, f.display.swaps)

	assert.ErrorIs(t, f.loop.Frame(context.Background()), ErrStopped)
}

func TestFrameWindowCloseStops(t *testing.T) {
	f := newFixture(t, nil)
	f.display.closed = true

	require.NoError(t, f.loop.Frame(context.Background()))
	assert.Equal(t, Stopped, f.loop.State())
}

func TestFrameDrivesModel(t *testing.T) {
	f := newFixture(t, nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, f.loop.Frame(context.Background()))
	}

	assert.Equal(t, []time.Duration{0, 16 * time.Millisecond, 16 * time.Millisecond}, f.model.updates)
	assert.Equal(t, 3, f.model.draws)
	assert.Len(t, f.surface.clears, 3)
}

func TestFrameWithoutModel(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.Model = nil })

	require.NoError(t, f.loop.Frame(context.Background()))
	assert.Equal(t, 1, f.display.swaps)
}

func TestFrameModelErrorIsRecoverable(t *testing.T) {
	f := newFixture(t, nil)
	f.model.updateErr = errors.New("boom")

	err := f.loop.Frame(context.Background())
	require.ErrorIs(t, err, ErrRecoverable)
	assert.Contains(t, err.Error(), "boom")
	assert.Zero(t, f.model.draws, "draw is skipped after a failed update")
	assert.Equal(t, 1, f.display.swaps, "the overlay is still presented")
	assert.Equal(t, Running, f.loop.State())
}

func TestRecoverable(t *testing.T) {
	assert.NoError(t, Recoverable(nil))

	base := errors.New("base")
	err := Recoverable(base)
	assert.ErrorIs(t, err, ErrRecoverable)
	assert.ErrorIs(t, err, base)
}

func TestBackgroundCompletion(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.Background = true })
	f.completer.gate = make(chan struct{})
	ctx := context.Background()

	f.push(typed("slow")...)
	f.push(Event{Kind: EventSubmit})
	require.NoError(t, f.loop.Frame(ctx))

	assert.True(t, f.loop.Busy())
	assert.Empty(t, f.loop.Input())
	assert.Contains(t, f.surface.texts, ui.DefaultPrompt+" ...")

	// Typing continues while the reply is pending
	f.push(typed("x")...)
	require.NoError(t, f.loop.Frame(ctx))
	assert.Equal(t, "x", f.loop.Input())

	close(f.completer.gate)
	f.loop.Wait()
	require.NoError(t, f.loop.Frame(ctx))

	assert.False(t, f.loop.Busy())
	assert.Equal(t, "reply to slow", f.loop.Output())
}

func TestBackgroundDropsSupersededReplies(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.Background = true })
	gate := make(chan struct{})
	f.completer.gate = gate
	ctx := context.Background()

	f.push(typed("first")...)
	f.push(Event{Kind: EventSubmit})
	f.push(typed("second")...)
	f.push(Event{Kind: EventSubmit})
	require.NoError(t, f.loop.Frame(ctx))

	close(gate)
	f.loop.Wait()
	require.NoError(t, f.loop.Frame(ctx))

	assert.ElementsMatch(t, []string{"first", "second"}, f.completer.asked())
	assert.Equal(t, "reply to second", f.loop.Output())
	assert.False(t, f.loop.Busy())
}

func TestRunStopsOnQuit(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.FPS = 1000 })
	frames := 0
	f.display.onPoll = func() {
		frames++
		if frames == 3 {
			f.push(Event{Kind: EventQuit})
		}
	}

	require.NoError(t, f.loop.Run(context.Background()))
	assert.Equal(t, Stopped, f.loop.State())
	assert.Equal(t, 3, frames)
	assert.Equal(t, 2, f.display.swaps)
}

func TestRunContinuesAfterRecoverableErrors(t *testing.T) {
	f := newFixture(t, nil)
	f.model.drawErr = errors.New("lost context")
	f.display.onPoll = func() {
		if f.display.polls == 5 {
			f.display.closed = true
		}
	}

	require.NoError(t, f.loop.Run(context.Background()))
	assert.Equal(t, 4, f.model.draws)
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.FPS = 1 })
	ctx, cancel := context.WithCancel(context.Background())
	f.display.onPoll = cancel

	// The first frame takes the limiter's burst token; the second Wait sees
	// the cancelled context
	require.NoError(t, f.loop.Run(ctx))
	assert.Equal(t, Stopped, f.loop.State())
	assert.Equal(t, 1, f.display.polls)
}

func TestRunCancelsPendingCompletion(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.Background = true })
	f.completer.gate = make(chan struct{})
	f.push(typed("never")...)
	f.push(Event{Kind: EventSubmit})
	f.display.onPoll = func() {
		if f.display.polls == 2 {
			f.push(Event{Kind: EventQuit})
		}
	}

	done := make(chan error, 1)
	go func() { done <- f.loop.Run(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.Equal(t, []string{"never"}, f.completer.asked())
}

func TestQueueDrain(t *testing.T) {
	var q Queue
	q.Push(Text('a'))
	q.Push(Event{Kind: EventSubmit})
	assert.Equal(t, 2, q.Len())

	events := q.Drain(nil)
	assert.Equal(t, []Event{{Kind: EventText, Rune: 'a'}, {Kind: EventSubmit}}, events)
	assert.Zero(t, q.Len())
	assert.Empty(t, q.Drain(nil))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "stopped", Stopped.String())
	assert.Equal(t, "State(7)", State(7).String())
}
