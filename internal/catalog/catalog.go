package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/scrublab/server/internal/navigation"
	"github.com/scrublab/server/pkg/validator"
)

var (
	ErrNotFound     = errors.New("media not found")
	ErrDuplicateID  = errors.New("duplicate media id")
	ErrInvalidEntry = errors.New("invalid catalog entry")
)

// Entry describes one navigable item. For trajectory entries URL points to
// the keyframe positions, one [x, y] pair per frame.
type Entry struct {
	ID               string  `yaml:"id" json:"id" validate:"required"`
	Title            string  `yaml:"title,omitempty" json:"title,omitempty"`
	URL              string  `yaml:"url" json:"url" validate:"required"`
	Kind             string  `yaml:"kind" json:"kind" validate:"required,oneof=media trajectory"`
	FrameRate        float64 `yaml:"frame_rate" json:"frame_rate" validate:"gt=0"`
	DurationInFrames int     `yaml:"duration_in_frames" json:"duration_in_frames" validate:"gt=0"`
}

func (e Entry) IsTrajectory() bool {
	return e.Kind == string(navigation.MediaTrajectory)
}

// Duration in seconds.
func (e Entry) Duration() float64 {
	return navigation.FrameToSecond(e.DurationInFrames, e.FrameRate)
}

func (e Entry) Media() navigation.Media {
	return navigation.Media{
		ID:               e.ID,
		Kind:             navigation.MediaKind(e.Kind),
		FrameRate:        e.FrameRate,
		DurationInFrames: e.DurationInFrames,
	}
}

type file struct {
	Media []Entry `yaml:"media"`
}

// Catalog is read-only once built and safe for concurrent use.
type Catalog struct {
	entries []Entry
	byID    map[string]int
}

func New(entries []Entry) (*Catalog, error) {
	v := validator.NewValidator()
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		byID:    make(map[string]int, len(entries)),
	}

	for i, e := range entries {
		if err := v.Err(e); err != nil {
			return nil, fmt.Errorf("%w: entry %d (%q): %w", ErrInvalidEntry, i, e.ID, err)
		}
		if _, ok := c.byID[e.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
		}

		c.byID[e.ID] = len(c.entries)
		c.entries = append(c.entries, e)
	}

	return c, nil
}

func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	return New(f.Media)
}

func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	return Parse(data)
}

func (c *Catalog) Get(id string) (Entry, error) {
	i, ok := c.byID[id]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return c.entries[i], nil
}

// List returns the entries in file order.
func (c *Catalog) List() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Catalog) Trajectories() []Entry {
	var out []Entry
	for _, e := range c.entries {
		if e.IsTrajectory() {
			out = append(out, e)
		}
	}
	return out
}
