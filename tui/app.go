package tui

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/esimov/clipper"
)

const (
	// Step is the size and position increment of a single key press.
	Step = 5.0
	// RotationStep is the rotation increment of a single key press, in degrees.
	RotationStep = 15.0
)

var (
	maskStyle   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
	helpStyle   = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

const help = "tab shape · ←↑↓→ move · +/- size · r/R rotate · 1-8 presets · space animate · c clear · 0 reset · q quit"

// App is an interactive terminal preview of a single Clipper. It doubles as the
// frame scheduler of the clipper's animations, flushed from its render loop.
type App struct {
	clipper.FrameQueue

	screen  tcell.Screen
	target  *Target
	clipper *clipper.Clipper

	// Duration is the length of the animations started with the space key.
	Duration time.Duration

	nextPreset int
	cleared    bool
}

var _ clipper.FrameScheduler = (*App)(nil)

// New binds a new Clipper, created from patch, to the terminal screen.
// The screen must be initialized by the caller.
func New(screen tcell.Screen, patch clipper.Patch, opts ...clipper.Option) (*App, error) {
	a := &App{
		screen:   screen,
		target:   NewTarget(),
		Duration: clipper.DefaultDuration,
	}
	c, err := clipper.New(a.target, patch, append(opts, clipper.WithScheduler(a))...)
	if err != nil {
		return nil, err
	}
	a.clipper = c

	return a, nil
}

// Clipper returns the clipper driven by the key bindings.
func (a *App) Clipper() *clipper.Clipper {
	return a.clipper
}

// Target returns the render target drawn on the screen.
func (a *App) Target() *Target {
	return a.target
}

// RequestTick implements clipper.FrameScheduler.
func (a *App) RequestTick(fn func(now time.Time)) {
	a.Push(fn)
}

// HandleKey applies the key binding of a key press. It returns false when the
// preview should quit.
func (a *App) HandleKey(key tcell.Key, r rune) bool {
	c := a.clipper
	p := c.Get()
	a.cleared = false

	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyTab:
		c.SetShape(p.Shape.Next())
	case tcell.KeyLeft:
		c.SetX(p.X - Step)
	case tcell.KeyRight:
		c.SetX(p.X + Step)
	case tcell.KeyUp:
		c.SetY(p.Y - Step)
	case tcell.KeyDown:
		c.SetY(p.Y + Step)
	case tcell.KeyRune:
		switch {
		case r == 'q':
			return false
		case r == '+' || r == '=':
			c.SetSize(p.Size + Step)
		case r == '-' || r == '_':
			c.SetSize(p.Size - Step)
		case r == 'r':
			c.SetRotation(p.Rotation + RotationStep)
		case r == 'R':
			c.SetRotation(p.Rotation - RotationStep)
		case r >= '1' && r <= '8':
			idx := int(r - '1')
			if idx < len(clipper.PresetNames) {
				c.Preset(clipper.PresetNames[idx])
				a.nextPreset = (idx + 1) % len(clipper.PresetNames)
			}
		case r == ' ':
			name := clipper.PresetNames[a.nextPreset]
			a.nextPreset = (a.nextPreset + 1) % len(clipper.PresetNames)
			if to, ok := clipper.LookupPreset(name); ok {
				c.Animate(to, a.Duration)
			}
		case r == 'c':
			c.Clear()
			a.cleared = true
		case r == '0':
			c.Reset()
		}
	}
	return true
}

// StatusLine mirrors the current parameters.
func (a *App) StatusLine() string {
	p := a.clipper.Get()
	if a.cleared {
		return fmt.Sprintf(" %s · cleared", p.Shape)
	}
	line := fmt.Sprintf(" %s · size %.0f%% · x %.0f%% · y %.0f%% · rotation %.0f°",
		p.Shape, p.Size, p.X, p.Y, p.Rotation)
	if a.clipper.Animating() {
		line += " · animating"
	}
	return line
}

// Draw renders the mask, the status line and the key bindings help.
func (a *App) Draw() {
	a.screen.Clear()
	cols, rows := a.screen.Size()

	// Keep two rows for the status and help lines.
	maskRows := rows - 2
	if maskRows > 0 {
		for y, line := range a.target.Cells(cols, maskRows) {
			for x, r := range line {
				a.screen.SetContent(x, y, r, nil, maskStyle)
			}
		}
	}
	if rows > 1 {
		a.drawText(0, rows-2, cols, a.StatusLine(), statusStyle)
	}
	if rows > 0 {
		a.drawText(0, rows-1, cols, help, helpStyle)
	}
	a.screen.Show()
}

// drawText writes s on row y, padding it with the style background up to width.
func (a *App) drawText(x, y, width int, s string, style tcell.Style) {
	col := x
	for _, r := range s {
		if col >= width {
			return
		}
		a.screen.SetContent(col, y, r, nil, style)
		col++
	}
	for ; col < width; col++ {
		a.screen.SetContent(col, y, ' ', nil, style)
	}
}

// Run processes the terminal events and renders the frames at clipper.FrameInterval
// until the quit key is pressed.
func (a *App) Run() error {
	ticker := time.NewTicker(clipper.FrameInterval) // ~60 FPS
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				// The screen has been finalized.
				close(eventChan)
				return
			}
			eventChan <- ev
		}
	}()

	a.Draw()
	for {
		select {
		case ev, ok := <-eventChan:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !a.HandleKey(ev.Key(), ev.Rune()) {
					return nil
				}
				a.Draw()
			case *tcell.EventResize:
				a.screen.Sync()
				a.Draw()
			}
		case now := <-ticker.C:
			if a.Flush(now) > 0 {
				a.Draw()
			}
		}
	}
}
