package badge

import (
	"errors"
	"net/http"

	"github.com/junkd0g/streakcal/internal/profile"
)

// Outcome is the terminal state of one render request.
type Outcome int

const (
	Success Outcome = iota
	MissingInput
	InvalidInput
	UpstreamNotFound
	UpstreamError
)

var outcomeNames = map[Outcome]string{
	Success:          "success",
	MissingInput:     "missing_input",
	InvalidInput:     "invalid_input",
	UpstreamNotFound: "upstream_not_found",
	UpstreamError:    "upstream_error",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// Message is the text drawn on the fallback image. Success has none.
func (o Outcome) Message() string {
	switch o {
	case MissingInput:
		return "Missing username parameter"
	case InvalidInput:
		return "Invalid request"
	case UpstreamNotFound:
		return "User not found"
	case UpstreamError:
		return "Error generating image"
	default:
		return ""
	}
}

// Status is the HTTP status returned alongside the image.
func (o Outcome) Status() int {
	switch o {
	case Success:
		return http.StatusOK
	case MissingInput, InvalidInput:
		return http.StatusBadRequest
	case UpstreamNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// Outcomes lists every state, success first.
var Outcomes = []Outcome{Success, MissingInput, InvalidInput, UpstreamNotFound, UpstreamError}

// OutcomeFor classifies err. Unknown errors are upstream failures.
func OutcomeFor(err error) Outcome {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, ErrMissingInput):
		return MissingInput
	case errors.Is(err, ErrInvalidInput):
		return InvalidInput
	case errors.Is(err, profile.ErrNotFound):
		return UpstreamNotFound
	default:
		return UpstreamError
	}
}

// ParseOutcome is the inverse of Outcome.String.
func ParseOutcome(name string) (Outcome, bool) {
	for o, n := range outcomeNames {
		if n == name {
			return o, true
		}
	}
	return UpstreamError, false
}
