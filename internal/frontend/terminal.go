package frontend

import (
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/scenedit/internal/input/key"
	"github.com/dshills/scenedit/internal/input/mouse"
	"github.com/dshills/scenedit/internal/rendering"
)

// upperHalf draws the top pixel of a cell as foreground and the bottom
// pixel as background.
const upperHalf = '▀'

// Terminal is a tcell front end. Every character cell shows two
// vertically stacked pixels. Terminals report no key releases, so only
// press bindings fire.
type Terminal struct {
	mu     sync.Mutex
	screen tcell.Screen

	// tracker is owned by the poll goroutine.
	tracker *mouse.Tracker
	now     func() time.Time

	events chan Event
	done   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// NewTerminal creates a terminal front end on the controlling terminal.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewTerminalWithScreen(screen), nil
}

// NewTerminalWithScreen creates a terminal front end on screen.
func NewTerminalWithScreen(screen tcell.Screen) *Terminal {
	return &Terminal{
		screen:  screen,
		tracker: mouse.NewTracker(mouse.DefaultConfig()),
		now:     time.Now,
		events:  make(chan Event, 64),
		done:    make(chan struct{}),
	}
}

// Init implements Frontend.
func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnableMouse(tcell.MouseMotionEvents)
	t.screen.HideCursor()

	t.wg.Add(1)
	go t.poll()
	return nil
}

// Size implements Frontend.
func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cols, rows := t.screen.Size()
	return cols, rows * 2
}

// Events implements Frontend.
func (t *Terminal) Events() <-chan Event {
	return t.events
}

func (t *Terminal) poll() {
	defer t.wg.Done()
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		for _, out := range t.convert(ev) {
			select {
			case t.events <- out:
			case <-t.done:
				return
			}
		}
	}
}

func (t *Terminal) convert(ev tcell.Event) []Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		if isInterrupt(e) {
			return []Event{{Kind: EventQuit}}
		}
		k, ok := convertKey(e)
		if !ok {
			return nil
		}
		return []Event{KeyEvent(k)}
	case *tcell.EventMouse:
		return t.convertMouse(e)
	case *tcell.EventResize:
		w, h := e.Size()
		return []Event{{Kind: EventResize, Width: w, Height: h * 2}}
	default:
		return nil
	}
}

func (t *Terminal) convertMouse(e *tcell.EventMouse) []Event {
	x, y := e.Position()
	pos := mouse.Position{X: float64(x), Y: float64(y * 2)}
	mods := convertMod(e.Modifiers())
	now := t.now()
	mask := e.Buttons()

	var held []mouse.Button
	for _, b := range []struct {
		mask   tcell.ButtonMask
		button mouse.Button
	}{
		{tcell.Button1, mouse.ButtonLeft},
		{tcell.Button2, mouse.ButtonRight},
		{tcell.Button3, mouse.ButtonMiddle},
		{tcell.Button4, mouse.ButtonX1},
		{tcell.Button5, mouse.ButtonX2},
	} {
		if mask&b.mask != 0 {
			held = append(held, b.button)
		}
	}

	buttons, motion := t.tracker.Update(pos, held, now)

	var out []Event
	if motion != nil {
		motion.Modifiers = mods
		out = append(out, MotionEvent(*motion))
	}
	for _, b := range buttons {
		b.Modifiers = mods
		out = append(out, ButtonEvent(b))
	}

	var wheel mouse.Position
	switch {
	case mask&tcell.WheelUp != 0:
		wheel.Y = 1
	case mask&tcell.WheelDown != 0:
		wheel.Y = -1
	case mask&tcell.WheelLeft != 0:
		wheel.X = -1
	case mask&tcell.WheelRight != 0:
		wheel.X = 1
	}
	if wheel != (mouse.Position{}) {
		out = append(out, WheelEvent(mouse.WheelEvent{Delta: wheel, Modifiers: mods, Timestamp: now}))
	}
	return out
}

var namedKeys = map[tcell.Key]key.Key{
	tcell.KeyEscape:     key.KeyEscape,
	tcell.KeyEnter:      key.KeyEnter,
	tcell.KeyTab:        key.KeyTab,
	tcell.KeyBackspace:  key.KeyBackspace,
	tcell.KeyBackspace2: key.KeyBackspace,
	tcell.KeyDelete:     key.KeyDelete,
	tcell.KeyInsert:     key.KeyInsert,
	tcell.KeyHome:       key.KeyHome,
	tcell.KeyEnd:        key.KeyEnd,
	tcell.KeyPgUp:       key.KeyPageUp,
	tcell.KeyPgDn:       key.KeyPageDown,
	tcell.KeyUp:         key.KeyUp,
	tcell.KeyDown:       key.KeyDown,
	tcell.KeyLeft:       key.KeyLeft,
	tcell.KeyRight:      key.KeyRight,
	tcell.KeyF1:         key.KeyF1,
	tcell.KeyF2:         key.KeyF2,
	tcell.KeyF3:         key.KeyF3,
	tcell.KeyF4:         key.KeyF4,
	tcell.KeyF5:         key.KeyF5,
	tcell.KeyF6:         key.KeyF6,
	tcell.KeyF7:         key.KeyF7,
	tcell.KeyF8:         key.KeyF8,
	tcell.KeyF9:         key.KeyF9,
	tcell.KeyF10:        key.KeyF10,
	tcell.KeyF11:        key.KeyF11,
	tcell.KeyF12:        key.KeyF12,
	tcell.KeyPause:      key.KeyPause,
	tcell.KeyPrint:      key.KeyPrintScreen,
}

func isInterrupt(e *tcell.EventKey) bool {
	if e.Key() == tcell.KeyCtrlC {
		return true
	}
	return e.Key() == tcell.KeyRune && e.Rune() == 'c' && e.Modifiers()&tcell.ModCtrl != 0
}

func convertKey(e *tcell.EventKey) (key.Event, bool) {
	mods := convertMod(e.Modifiers())
	if k, ok := namedKeys[e.Key()]; ok {
		return key.Press(k, mods), true
	}
	switch {
	case e.Key() == tcell.KeyRune:
		if e.Rune() == ' ' {
			return key.Press(key.KeySpace, mods), true
		}
		return key.RunePress(e.Rune(), mods), true
	case e.Key() >= tcell.KeyCtrlA && e.Key() <= tcell.KeyCtrlZ:
		r := rune('a' + e.Key() - tcell.KeyCtrlA)
		return key.RunePress(r, mods.With(key.ModCtrl)), true
	default:
		return key.Event{}, false
	}
}

func convertMod(m tcell.ModMask) key.Modifier {
	mods := key.ModNone
	if m&tcell.ModShift != 0 {
		mods = mods.With(key.ModShift)
	}
	if m&tcell.ModCtrl != 0 {
		mods = mods.With(key.ModCtrl)
	}
	if m&tcell.ModAlt != 0 {
		mods = mods.With(key.ModAlt)
	}
	if m&tcell.ModMeta != 0 {
		mods = mods.With(key.ModMeta)
	}
	return mods
}

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// Present implements Frontend. Labels are centered on their anchor and
// clipped at the screen edge.
func (t *Terminal) Present(frame *image.RGBA, labels []rendering.PlacedLabel) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	cols, rows := t.screen.Size()
	for cy := 0; cy < rows; cy++ {
		for x := 0; x < cols; x++ {
			top := frame.RGBAAt(x, cy*2)
			bottom := frame.RGBAAt(x, cy*2+1)
			style := tcell.StyleDefault.Foreground(rgb(top)).Background(rgb(bottom))
			t.screen.SetContent(x, cy, upperHalf, nil, style)
		}
	}

	for _, l := range labels {
		row := l.Y / 2
		if row < 0 || row >= rows {
			continue
		}
		fg := color.RGBA{R: unorm8(l.Color[0]), G: unorm8(l.Color[1]), B: unorm8(l.Color[2]), A: 255}
		bg := frame.RGBAAt(l.X, l.Y)
		style := tcell.StyleDefault.Foreground(rgb(fg)).Background(rgb(bg))

		x := l.X - LabelWidth(l.Text)/2
		g := uniseg.NewGraphemes(l.Text)
		for g.Next() {
			w := g.Width()
			if x+w > cols {
				break
			}
			if x >= 0 && w > 0 {
				runes := g.Runes()
				t.screen.SetContent(x, row, runes[0], runes[1:], style)
			}
			x += w
		}
	}

	t.screen.Show()
	return nil
}

// LabelWidth returns the number of terminal cells text occupies.
func LabelWidth(text string) int {
	return uniseg.StringWidth(text)
}

func unorm8(v float32) uint8 {
	return uint8(min(max(v, 0), 1)*255 + 0.5)
}

// Close implements Frontend.
func (t *Terminal) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	close(t.done)
	t.screen.Fini()
	t.mu.Unlock()

	t.wg.Wait()
	close(t.events)
}
