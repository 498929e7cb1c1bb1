package navigation

import (
	"fmt"
	"math"
	"sync"
)

// Source tells observers who moved the cursor.
type Source string

const (
	SourceStrategy Source = "strategy"
	SourceKeyboard Source = "keyboard"
	SourceMedia    Source = "media"
	SourcePlayback Source = "playback"
	SourceReset    Source = "reset"
	SourceRestore  Source = "restore"
)

type Change struct {
	Position float64 `json:"position"`
	Frame    int     `json:"frame"`
	Source   Source  `json:"source"`
}

type Observer func(Change)

// TimeCursor is the single source of truth for the playback position. Every
// write is clamped into [0, duration].
type TimeCursor struct {
	mu         sync.RWMutex
	position   float64
	duration   float64
	frameRate  float64
	showMillis bool
	observers  map[int]Observer
	nextID     int
}

func NewTimeCursor(duration, frameRate float64) *TimeCursor {
	return &TimeCursor{
		duration:  math.Max(duration, 0),
		frameRate: frameRate,
		observers: make(map[int]Observer),
	}
}

// Subscribe registers o and returns a func removing it.
func (c *TimeCursor) Subscribe(o Observer) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.observers[id] = o

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

func (c *TimeCursor) Get() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.position
}

func (c *TimeCursor) Duration() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.duration
}

func (c *TimeCursor) FrameRate() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frameRate
}

func (c *TimeCursor) FrameIndex() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return SecondToFrame(c.position, c.frameRate)
}

// Set clamps value, stores it and notifies observers. It returns the stored
// value.
func (c *TimeCursor) Set(value float64, source Source) float64 {
	c.mu.Lock()
	if math.IsNaN(value) {
		value = c.position
	}
	c.position = Restrict(value, 0, c.duration)
	change := c.changeLocked(source)
	observers := c.snapshotLocked()
	c.mu.Unlock()

	for _, o := range observers {
		o(change)
	}

	return change.Position
}

func (c *TimeCursor) Add(delta float64, source Source) float64 {
	return c.Set(c.Get()+delta, source)
}

// Reset moves the cursor to 0 for a new media item.
func (c *TimeCursor) Reset(duration, frameRate float64) {
	c.mu.Lock()
	c.duration = math.Max(duration, 0)
	c.frameRate = frameRate
	c.position = 0
	change := c.changeLocked(SourceReset)
	observers := c.snapshotLocked()
	c.mu.Unlock()

	for _, o := range observers {
		o(change)
	}
}

// SetDuration updates the upper bound, reclamping the position silently.
func (c *TimeCursor) SetDuration(duration float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.duration = math.Max(duration, 0)
	c.position = Restrict(c.position, 0, c.duration)
}

func (c *TimeCursor) ShowMilliseconds(show bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showMillis = show
}

func (c *TimeCursor) Display() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return FormatTime(c.position, c.showMillis)
}

func (c *TimeCursor) changeLocked(source Source) Change {
	return Change{
		Position: c.position,
		Frame:    SecondToFrame(c.position, c.frameRate),
		Source:   source,
	}
}

func (c *TimeCursor) snapshotLocked() []Observer {
	observers := make([]Observer, 0, len(c.observers))
	for id := 0; id < c.nextID; id++ {
		if o, ok := c.observers[id]; ok {
			observers = append(observers, o)
		}
	}
	return observers
}

// FormatTime renders seconds as MM:SS, prefixed by HH: from one hour on, and
// suffixed by ,mmm when millis is set.
func FormatTime(seconds float64, millis bool) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}

	totalMs := int64(math.Floor(seconds*1000 + 1e-6))
	hours := totalMs / 3_600_000
	minutes := totalMs / 60_000 % 60
	secs := totalMs / 1000 % 60
	ms := totalMs % 1000

	s := fmt.Sprintf("%02d:%02d", minutes, secs)
	if seconds >= 3600 {
		s = fmt.Sprintf("%02d:%s", hours, s)
	}
	if millis {
		s = fmt.Sprintf("%s,%03d", s, ms)
	}

	return s
}
