package term

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"emergence/internal/monitor"
	"emergence/internal/sims/universe"
)

// RedrawInterval paces terminal redraws independently of the tick rate.
const RedrawInterval = 50 * time.Millisecond

// Session ties a runner to a terminal screen.
type Session struct {
	screen tcell.Screen
	runner *universe.Runner
	logger *log.Logger

	mu     sync.Mutex
	notice string
}

// NewSession installs runner hooks that feed the notice line.
func NewSession(screen tcell.Screen, runner *universe.Runner, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}
	s := &Session{screen: screen, runner: runner, logger: logger}
	runner.SetHooks(universe.Hooks{
		OnAnomaly:   s.onAnomaly,
		OnInflation: s.onInflation,
		OnError:     func(err error) { s.setNotice(fmt.Sprintf("error: %v", err)) },
	})
	return s
}

func (s *Session) onAnomaly(a monitor.Anomaly) {
	s.setNotice(fmt.Sprintf("tick %d  %s  severity %.2f", a.Tick, a.Description, a.Severity))
}

func (s *Session) onInflation(ev monitor.InflationEvent) {
	if ev.EndTick == 0 {
		s.setNotice(fmt.Sprintf("inflation #%d started at tick %d (%s)", ev.ID, ev.Tick, ev.Trigger))
		return
	}
	s.setNotice(fmt.Sprintf("inflation #%d ended: %d -> %d particles", ev.ID, ev.ParticlesBefore, ev.ParticlesAfter))
}

func (s *Session) setNotice(n string) {
	s.mu.Lock()
	s.notice = n
	s.mu.Unlock()
}

// Notice returns the latest notice line.
func (s *Session) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

// HandleKey applies one key press and reports whether the session should end.
func (s *Session) HandleKey(ctx context.Context, ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
	default:
		return false
	}
	switch ev.Rune() {
	case 'q', 'Q':
		return true
	case ' ':
		if !s.runner.Stop() {
			s.runner.Start(ctx)
		}
	case 'n', 'N':
		if !s.runner.Running() {
			s.runner.Step()
		}
	case 'r', 'R':
		s.runner.Reset()
		s.setNotice("reset")
	case 's', 'S':
		s.runner.Reinitialize(time.Now().UnixNano())
		s.setNotice("reseeded")
	case 'm', 'M':
		s.setNotice("render mode: " + string(s.runner.CycleRenderMode()))
	}
	return false
}

// Render draws one frame and shows it.
func (s *Session) Render() {
	stats := s.runner.Stats()
	Draw(s.screen, Frame{View: s.runner.View(), Lines: stats.Lines(), Notice: s.Notice()})
	s.screen.Show()
}

// Run processes input and redraws until ctx is cancelled or the user quits.
// The runner is closed on return; the screen is left for the caller to Fini.
func (s *Session) Run(ctx context.Context) error {
	defer s.runner.Close()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := s.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(RedrawInterval)
	defer ticker.Stop()
	s.Render()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if s.HandleKey(ctx, ev) {
					return nil
				}
				s.Render()
			case *tcell.EventResize:
				s.screen.Sync()
				s.Render()
			}
		case <-ticker.C:
			s.Render()
		}
	}
}
