package grest

// Status is the lifecycle state of a Request.
type Status string

const (
	// StatusPending means a transport call is in flight.
	StatusPending Status = "pending"
	// StatusOK means the last call succeeded and a Result is cached.
	StatusOK Status = "ok"
	// StatusFail means the last call failed and an Error is cached.
	StatusFail Status = "fail"
)

// Message is broadcast to subscribers on every Request transition.
//
// Endpoint is empty for requests dispatched with Client.Do.
type Message struct {
	Endpoint string `json:"endpoint"`
	Method   string `json:"method"`
	Status   Status `json:"status"`
}
