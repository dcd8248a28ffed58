package monitor

// State represents where a poller is in its lifecycle
type State string

const (
	StateIdle    State = "idle"
	StatePolling State = "polling"
	StateSuccess State = "success"
	StateFailure State = "failure"
	StateStopped State = "stopped"
)
