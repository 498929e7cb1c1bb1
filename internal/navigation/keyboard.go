package navigation

type Unit string

const (
	UnitSeconds Unit = "seconds"
	UnitFrames  Unit = "frames"
	UnitPixels  Unit = "pixels"
)

type KeyAction int

const (
	KeyIgnored KeyAction = iota
	KeyStep
	KeyTogglePlay
	KeyChanged
)

// KeyBindings turns key codes into cursor steps. The step is expressed in
// the active unit.
type KeyBindings struct {
	Delta float64 `json:"delta"`
	Unit  Unit    `json:"unit"`
}

func NewKeyBindings(delta float64) *KeyBindings {
	return &KeyBindings{Delta: delta, Unit: UnitSeconds}
}

// Handle applies code to the bindings. For KeyStep, direction is +1 or -1.
func (k *KeyBindings) Handle(code string) (action KeyAction, direction float64) {
	switch code {
	case "ArrowRight":
		return KeyStep, 1
	case "ArrowLeft":
		return KeyStep, -1
	case "ArrowUp":
		k.Delta++
		return KeyChanged, 0
	case "ArrowDown":
		if k.Delta > 0 {
			k.Delta--
		}
		return KeyChanged, 0
	case "Digit1", "Numpad1":
		k.Unit = UnitSeconds
		return KeyChanged, 0
	case "Digit2", "Numpad2":
		k.Unit = UnitFrames
		return KeyChanged, 0
	case "Digit3", "Numpad3":
		k.Unit = UnitPixels
		return KeyChanged, 0
	case "Space":
		return KeyTogglePlay, 0
	}
	return KeyIgnored, 0
}

// StepSeconds converts one step of Delta units into seconds.
func (k *KeyBindings) StepSeconds(fps, width, duration float64) float64 {
	switch k.Unit {
	case UnitFrames:
		if fps <= 0 {
			return 0
		}
		return k.Delta / fps
	case UnitPixels:
		pixelsPerSecond := 1.0
		if width > 0 && duration > 0 {
			pixelsPerSecond = width / duration
		}
		return k.Delta / pixelsPerSecond
	default:
		return k.Delta
	}
}
