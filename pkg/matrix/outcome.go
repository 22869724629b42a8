package matrix

import "fmt"

// Status classifies the result of a delivery attempt for the caller's
// retry contract.
type Status int

const (
	// StatusSent means the homeserver accepted the message.
	StatusSent Status = iota
	// StatusRetryable means a later attempt may succeed (network
	// failure, timeout, rate limiting, server-side error).
	StatusRetryable
	// StatusPermanent means retrying cannot help (bad credential, bad
	// room, malformed request).
	StatusPermanent
)

func (s Status) String() string {
	switch s {
	case StatusSent:
		return "sent"
	case StatusRetryable:
		return "retryable"
	case StatusPermanent:
		return "permanent"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is the result of exactly one delivery attempt. HTTPStatus is
// zero when no response was received. Reason never contains the access
// token.
type Outcome struct {
	Status     Status
	HTTPStatus int
	Reason     string
}

func sent(httpStatus int) Outcome {
	return Outcome{Status: StatusSent, HTTPStatus: httpStatus}
}

func retryable(httpStatus int, reason string) Outcome {
	return Outcome{Status: StatusRetryable, HTTPStatus: httpStatus, Reason: reason}
}

func permanent(httpStatus int, reason string) Outcome {
	return Outcome{Status: StatusPermanent, HTTPStatus: httpStatus, Reason: reason}
}

// classify maps an HTTP response status to an outcome. 429 is rate
// limiting and therefore transient; other 4xx mean the request itself
// is wrong and a retry would repeat the failure.
func classify(httpStatus int) Outcome {
	switch {
	case httpStatus >= 200 && httpStatus < 300:
		return sent(httpStatus)
	case httpStatus == 429:
		return retryable(httpStatus, "rate limited by homeserver")
	case httpStatus >= 400 && httpStatus < 500:
		return permanent(httpStatus, fmt.Sprintf("homeserver rejected request with status %d", httpStatus))
	default:
		return retryable(httpStatus, fmt.Sprintf("homeserver returned status %d", httpStatus))
	}
}
