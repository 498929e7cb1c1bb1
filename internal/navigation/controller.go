package navigation

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang/geo/r2"
)

type MediaKind string

const (
	MediaVideo      MediaKind = "media"
	MediaTrajectory MediaKind = "trajectory"
)

type Media struct {
	ID               string
	Kind             MediaKind
	FrameRate        float64
	DurationInFrames int
}

func (m Media) Duration() float64 {
	return FrameToSecond(m.DurationInFrames, m.FrameRate)
}

// Listener receives everything the controller wants the client to show.
// Calls happen on the controller's event thread and must not call back into
// the controller.
type Listener interface {
	CursorChanged(change Change, display string)
	PlayStateChanged(playing bool)
	PlaybackEnded()
	StrategyUnavailable(kind Kind, err error)
	LoadError(mediaID string, err error)
}

type NopListener struct{}

func (NopListener) CursorChanged(Change, string) {}
func (NopListener) PlayStateChanged(bool) {}
func (NopListener) PlaybackEnded() {}
func (NopListener) StrategyUnavailable(Kind, error) {}
func (NopListener) LoadError(string, error) {}

type Config struct {
	Context          ContextConfig
	Rudder           ContextConfig
	Subpixel         SubpixelConfig
	Zoom             ZoomConfig
	ActivationRadius float64
	StepDelta        float64
	ShowMilliseconds bool
	NewTicker        TickerFunc
}

func DefaultConfig() Config {
	return Config{
		Context:          DefaultContextConfig(),
		Rudder:           DefaultRudderConfig(),
		Subpixel:         DefaultSubpixelConfig(),
		Zoom:             DefaultZoomConfig(),
		ActivationRadius: DefaultActivationRadius,
		StepDelta:        5,
		ShowMilliseconds: true,
		NewTicker:        NewRealTicker,
	}
}

type Deps struct {
	Clock       MediaClock
	PointerLock PointerLock
	Listener    Listener
	Logger      *slog.Logger
}

// Controller owns the time cursor of one media item and the navigation
// strategies writing to it. Every entry point runs under one mutex so
// events, including scheduler ticks, are handled one at a time.
type Controller struct {
	mu sync.Mutex

	cfg      Config
	logger   *slog.Logger
	clock    MediaClock
	lock     PointerLock
	listener Listener

	cursor  *TimeCursor
	widget  Widget
	media   *Media
	locator *Locator

	strategies  map[Kind]Strategy
	order       []Kind
	active      Strategy
	unavailable map[Kind]error

	keys     *KeyBindings
	playback *Playback
	playing  bool

	unsubscribe func()
	closed      bool
}

type State struct {
	MediaID       string          `json:"media_id"`
	MediaKind     MediaKind       `json:"media_kind"`
	Position      float64         `json:"position"`
	Duration      float64         `json:"duration"`
	FrameRate     float64         `json:"frame_rate"`
	Frame         int             `json:"frame"`
	Display       string          `json:"display"`
	Playing       bool            `json:"playing"`
	Strategy      Kind            `json:"strategy"`
	StrategyState any             `json:"strategy_state,omitempty"`
	Keys          KeyBindings     `json:"keys"`
	Widget        Widget          `json:"widget"`
	Unavailable   map[Kind]string `json:"unavailable,omitempty"`
}

func NewController(cfg Config, deps Deps) *Controller {
	if cfg.NewTicker == nil {
		cfg.NewTicker = NewRealTicker
	}
	if deps.Listener == nil {
		deps.Listener = NopListener{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	c := &Controller{
		cfg:         cfg,
		logger:      deps.Logger,
		clock:       deps.Clock,
		lock:        deps.PointerLock,
		listener:    deps.Listener,
		cursor:      NewTimeCursor(0, 0),
		strategies:  make(map[Kind]Strategy),
		unavailable: make(map[Kind]error),
		keys:        NewKeyBindings(cfg.StepDelta),
	}
	c.cursor.ShowMilliseconds(cfg.ShowMilliseconds)

	for _, s := range []Strategy{
		NewDirectStrategy(),
		NewContextStrategy(cfg.Context),
		NewContextStrategy(cfg.Rudder),
		NewSubpixelStrategy(cfg.Subpixel),
		NewZoomStrategy(cfg.Zoom),
		NewDIMPStrategy(),
	} {
		c.strategies[s.Kind()] = s
		c.order = append(c.order, s.Kind())
	}

	c.unsubscribe = c.cursor.Subscribe(c.onCursorChange)

	return c
}

type host struct {
	c *Controller
	s Strategy
}

func (h host) Position() float64 { return h.c.cursor.Get() }
func (h host) Duration() float64 { return h.c.cursor.Duration() }
func (h host) FrameRate() float64 { return h.c.cursor.FrameRate() }
func (h host) Frame() int { return h.c.cursor.FrameIndex() }
func (h host) Widget() Widget { return h.c.widget }
func (h host) PointerLock() PointerLock { return h.c.lock }
func (h host) Locator() *Locator { return h.c.locator }

func (h host) Seek(value float64) {
	if h.c.active != h.s {
		return
	}
	h.c.cursor.Set(value, SourceStrategy)
}

func (h host) NewScheduler(period time.Duration, task func()) *Scheduler {
	return h.c.newScheduler(period, func() {
		if h.c.active == h.s {
			task()
		}
	})
}

// newScheduler runs task on the controller's event thread.
func (c *Controller) newScheduler(period time.Duration, task func()) *Scheduler {
	return NewScheduler(period, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			return
		}
		task()
	}, c.cfg.NewTicker)
}

func (c *Controller) onCursorChange(ch Change) {
	for _, kind := range c.order {
		c.strategies[kind].Sync(ch.Position)
	}

	if c.playback != nil && ch.Source != SourcePlayback {
		c.playback.Seek(ch.Frame)
	}

	if ch.Source != SourceMedia && c.clock != nil && c.media != nil && c.media.Kind == MediaVideo {
		if err := c.clock.Seek(ch.Position); err != nil {
			c.logger.Warn("failed to seek media clock", "position", ch.Position, "error", err)
		}
	}

	c.listener.CursorChanged(ch, c.cursor.Display())
}

// Cursor is exposed for observers. Writes must go through the controller.
func (c *Controller) Cursor() *TimeCursor {
	return c.cursor
}

// LoadMedia switches to a new media item. For trajectory media, points and
// loadErr are the outcome of loading its keyframes; on error the DIMP
// strategy is disabled for this item.
func (c *Controller) LoadMedia(media Media, points []r2.Point, loadErr error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if media.FrameRate <= 0 || media.DurationInFrames < 0 {
		return fmt.Errorf("%w: frame rate %v, duration %d", ErrInvalidMedia, media.FrameRate, media.DurationInFrames)
	}

	c.stopPlaybackLocked()

	prev := c.active
	if prev != nil {
		prev.Deactivate()
	}

	c.media = &media
	c.locator = nil
	c.playback = nil
	delete(c.unavailable, KindDIMP)

	if media.Kind == MediaTrajectory {
		if loadErr == nil && len(points) == 0 {
			loadErr = errors.New("empty trajectory")
		}
		if loadErr != nil {
			c.unavailable[KindDIMP] = fmt.Errorf("%w: %v", ErrTrajectoryUnavailable, loadErr)
			c.logger.Warn("trajectory unavailable", "media_id", media.ID, "error", loadErr)
			c.listener.LoadError(media.ID, loadErr)
		} else {
			c.locator = NewLocator(points, c.cfg.ActivationRadius)
		}

		c.playback = newPlayback(media.FrameRate, media.DurationInFrames, c.newScheduler,
			func(frame int) {
				c.cursor.Set(FrameToSecond(frame, media.FrameRate), SourcePlayback)
			},
			func() {
				c.playing = false
				c.listener.PlayStateChanged(false)
				c.listener.PlaybackEnded()
			},
		)
	}

	c.cursor.Reset(media.Duration(), media.FrameRate)

	if prev != nil {
		c.active = nil
		if err := c.activateLocked(prev); err != nil {
			c.logger.Warn("strategy dropped after media change", "strategy", prev.Kind(), "error", err)
			c.listener.StrategyUnavailable(prev.Kind(), err)
		}
	}

	return nil
}

func (c *Controller) activateLocked(s Strategy) error {
	if err, ok := c.unavailable[s.Kind()]; ok {
		return fmt.Errorf("%w: %v", ErrStrategyUnavailable, err)
	}

	h := host{c: c, s: s}
	if err := s.Check(h); err != nil {
		return err
	}

	if c.active != nil {
		c.active.Deactivate()
	}
	c.active = s
	s.Activate(h)

	return nil
}

// SwitchStrategy hands input over to kind. When kind cannot be activated the
// previous strategy stays active.
func (c *Controller) SwitchStrategy(kind Kind) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if kind == KindNone || kind == "" {
		if c.active != nil {
			c.active.Deactivate()
			c.active = nil
		}
		return nil
	}

	s, ok := c.strategies[kind]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStrategy, kind)
	}
	if c.active == s {
		return nil
	}
	if c.media == nil {
		return ErrNoMedia
	}

	if err := c.activateLocked(s); err != nil {
		c.logger.Warn("strategy switch aborted", "strategy", kind, "error", err)
		return fmt.Errorf("failed to activate %s: %w", kind, err)
	}

	return nil
}

func (c *Controller) markUnavailableLocked(s Strategy, err error) {
	s.Deactivate()
	c.unavailable[s.Kind()] = err
	if c.active == s {
		c.active = nil
	}
	c.logger.Warn("strategy unavailable", "strategy", s.Kind(), "error", err)
	c.listener.StrategyUnavailable(s.Kind(), err)
}

// SetPointerLock replaces the pointer lock and lifts any unavailability
// caused by the previous one.
func (c *Controller) SetPointerLock(lock PointerLock) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		c.active.Deactivate()
		c.active.Activate(host{c: c, s: c.active})
	}
	c.lock = lock
	for kind, err := range c.unavailable {
		if errors.Is(err, ErrPointerLockUnavailable) {
			delete(c.unavailable, kind)
		}
	}
}

func (c *Controller) PointerDown(ev PointerEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return nil
	}

	s := c.active
	if err := s.PointerDown(ev); err != nil {
		if errors.Is(err, ErrPointerLockUnavailable) {
			c.markUnavailableLocked(s, err)
		}
		return fmt.Errorf("failed to handle pointer down: %w", err)
	}

	return nil
}

func (c *Controller) PointerMove(ev PointerEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		c.active.PointerMove(ev)
	}
}

func (c *Controller) PointerUp(ev PointerEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		c.active.PointerUp(ev)
	}
}

func (c *Controller) KeyDown(code string) (KeyAction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	action, direction := c.keys.Handle(code)
	switch action {
	case KeyStep:
		if c.media == nil {
			return action, ErrNoMedia
		}
		step := c.keys.StepSeconds(c.cursor.FrameRate(), c.widget.Width, c.cursor.Duration())
		c.cursor.Add(direction*step, SourceKeyboard)
	case KeyTogglePlay:
		return action, c.togglePlayLocked()
	}

	return action, nil
}

func (c *Controller) TogglePlay() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.togglePlayLocked()
}

func (c *Controller) togglePlayLocked() error {
	if c.media == nil {
		return ErrNoMedia
	}

	if c.media.Kind == MediaTrajectory {
		if c.playing {
			c.playback.Stop()
		} else {
			c.playback.Start(c.cursor.FrameIndex())
		}
	} else {
		if c.clock == nil {
			return fmt.Errorf("%w: media clock", ErrMissingTarget)
		}
		var err error
		if c.playing {
			err = c.clock.Pause()
		} else {
			err = c.clock.Play()
		}
		if err != nil {
			return fmt.Errorf("failed to toggle play: %w", err)
		}
	}

	c.playing = !c.playing
	c.listener.PlayStateChanged(c.playing)

	return nil
}

func (c *Controller) stopPlaybackLocked() {
	if c.playback != nil {
		c.playback.Stop()
	}
	if c.playing && c.media != nil && c.media.Kind == MediaVideo && c.clock != nil {
		if err := c.clock.Pause(); err != nil {
			c.logger.Warn("failed to pause media clock", "error", err)
		}
	}
	c.playing = false
}

// OnTimeUpdate mirrors the media clock into the cursor.
func (c *Controller) OnTimeUpdate(current, duration float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.media == nil {
		return
	}
	if duration > 0 {
		c.cursor.SetDuration(duration)
	}
	c.cursor.Set(current, SourceMedia)
}

// OnMediaEnded is called when the media clock reached its end.
func (c *Controller) OnMediaEnded() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.playing {
		return
	}
	c.playing = false
	c.listener.PlayStateChanged(false)
	c.listener.PlaybackEnded()
}

func (c *Controller) Resize(w Widget) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.widget = w
	position := c.cursor.Get()
	for _, kind := range c.order {
		c.strategies[kind].Sync(position)
	}

	if c.active != nil {
		if err := c.active.Check(host{c: c, s: c.active}); err != nil {
			s := c.active
			s.Deactivate()
			c.active = nil
			c.logger.Warn("strategy dropped after resize", "strategy", s.Kind(), "error", err)
			c.listener.StrategyUnavailable(s.Kind(), err)
		}
	}
}

// SetInterval changes the window half width of the active context strategy.
func (c *Controller) SetInterval(n float64) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.active.(*ContextStrategy)
	if !ok {
		return 0, ErrNotSupported
	}
	return s.SetInterval(n), nil
}

func (c *Controller) SetZoomDirection(d Direction) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d != DirectionUpward && d != DirectionDownward {
		return fmt.Errorf("%w: direction %q", ErrNotSupported, d)
	}
	c.strategies[KindZoom].(*ZoomStrategy).SetDirection(d)
	return nil
}

// Restore puts back a saved position and key bindings, e.g. on reconnect.
func (c *Controller) Restore(position float64, keys KeyBindings) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if keys.Unit != "" {
		*c.keys = keys
	}
	if c.media != nil {
		c.cursor.Set(position, SourceRestore)
	}
}

func (c *Controller) ActiveKind() Kind {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return KindNone
	}
	return c.active.Kind()
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := State{
		Position:  c.cursor.Get(),
		Duration:  c.cursor.Duration(),
		FrameRate: c.cursor.FrameRate(),
		Frame:     c.cursor.FrameIndex(),
		Display:   c.cursor.Display(),
		Playing:   c.playing,
		Strategy:  KindNone,
		Keys:      *c.keys,
		Widget:    c.widget,
	}
	if c.media != nil {
		st.MediaID = c.media.ID
		st.MediaKind = c.media.Kind
	}
	if c.active != nil {
		st.Strategy = c.active.Kind()
		st.StrategyState = c.active.Snapshot()
	}
	if len(c.unavailable) > 0 {
		st.Unavailable = make(map[Kind]string, len(c.unavailable))
		for kind, err := range c.unavailable {
			st.Unavailable[kind] = err.Error()
		}
	}

	return st
}

// Close releases every resource. The controller must not be used after.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.stopPlaybackLocked()
	if c.active != nil {
		c.active.Deactivate()
		c.active = nil
	}
	c.closed = true
	c.unsubscribe()
}
