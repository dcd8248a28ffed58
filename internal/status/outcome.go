package status

// ErrorKind classifies why a poll failed
type ErrorKind string

const (
	KindNone       ErrorKind = ""
	KindTransport  ErrorKind = "transport"
	KindTimeout    ErrorKind = "timeout"
	KindHTTPStatus ErrorKind = "http_status"
	KindDecode     ErrorKind = "decode"
)

// Outcome is the result of a single poll: either a parsed status or a classified failure
type Outcome struct {
	Kind  ErrorKind
	Err   error
	value ServerStatus
}

// Success wraps a parsed status
func Success(s ServerStatus) Outcome {
	return Outcome{value: s}
}

// Failure records a failed poll
func Failure(kind ErrorKind, err error) Outcome {
	return Outcome{Kind: kind, Err: err}
}

// OK reports whether the poll produced a parsed status
func (o Outcome) OK() bool {
	return o.Kind == KindNone
}

// Value returns the parsed status and whether there was one
func (o Outcome) Value() (ServerStatus, bool) {
	return o.value, o.OK()
}

// Status returns what a renderer should display: the parsed status, or the
// sentinel for host when the poll failed.
func (o Outcome) Status(host string) ServerStatus {
	if o.OK() {
		return o.value
	}
	return Sentinel(host)
}
