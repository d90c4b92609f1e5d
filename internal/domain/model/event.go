// Package model contains domain models passed between layers.
package model

// Classification is the outcome of a classified attempt.
type Classification string

const (
	Make Classification = "MAKE"
	Miss Classification = "MISS"
)

// Valid reports whether c is one of the known classifications.
func (c Classification) Valid() bool {
	return c == Make || c == Miss
}

// State is the lifecycle state of the attempt classifier.
type State string

const (
	StateWaiting        State = "WAITING"
	StateInProgress     State = "IN_PROGRESS"
	StateAwaitingReturn State = "AWAITING_RETURN"
)

// PuttEvent is emitted once per classified attempt. It is never mutated
// after it leaves the classifier.
type PuttEvent struct {
	FrameTime         float64        `json:"frame_time"`
	Classification    Classification `json:"classification"`
	Detail            string         `json:"detail"`
	BallCenter        *Point         `json:"ball_center,omitempty"`
	TransitionHistory []string       `json:"transition_history,omitempty"`
}

// IsMake reports whether the event counts as a make.
func (e PuttEvent) IsMake() bool {
	return e.Classification == Make
}
