package session

// Session is the resumable part of a scrubbing session.
type Session struct {
	MediaID   string  `redis:"media_id"`
	Position  float64 `redis:"position"`
	Strategy  string  `redis:"strategy"`
	StepDelta float64 `redis:"step_delta"`
	StepUnit  string  `redis:"step_unit"`
	UpdatedAt int64   `redis:"updated_at"`
}

type SetSessionParams struct {
	SessionID string
	MediaID   string
	CreatedAt int64
}

type UpdateSessionParams struct {
	SessionID string
	MediaID   string
	Position  float64
	Strategy  string
	StepDelta float64
	StepUnit  string
	UpdatedAt int64
}
