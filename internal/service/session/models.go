package session

import (
	"github.com/scrublab/server/internal/catalog"
	"github.com/scrublab/server/internal/navigation"
)

// Output is every message pushed to a client.
type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

const (
	TypeState               = "STATE"
	TypeCursorChanged       = "CURSOR_CHANGED"
	TypeSeek                = "SEEK"
	TypePlay                = "PLAY"
	TypePause               = "PAUSE"
	TypePlayState           = "PLAY_STATE"
	TypePointerLock         = "POINTER_LOCK"
	TypePointerUnlock       = "POINTER_UNLOCK"
	TypePlaybackEnded       = "PLAYBACK_ENDED"
	TypeLoadError           = "LOAD_ERROR"
	TypeStrategyUnavailable = "STRATEGY_UNAVAILABLE"
	TypeError               = "ERROR"
)

type State struct {
	navigation.State
	Media *catalog.Entry `json:"media,omitempty"`
}

type CursorChanged struct {
	Position float64           `json:"position"`
	Frame    int               `json:"frame"`
	Display  string            `json:"display"`
	Source   navigation.Source `json:"source"`
}

type Seek struct {
	Time float64 `json:"time"`
}

type PlayState struct {
	Playing bool `json:"playing"`
}

type LoadError struct {
	MediaID string `json:"media_id"`
	Error   string `json:"error"`
}

type StrategyUnavailable struct {
	Strategy navigation.Kind `json:"strategy"`
	Error    string          `json:"error"`
}

type Error struct {
	MessageType string `json:"message_type,omitempty"`
	Error       string `json:"error"`
}
