package convert

import "fmt"

// Status is the controller's lifecycle state. Exactly one is active.
type Status int

const (
	StatusIdle Status = iota
	StatusLoadingEngine
	StatusConverting
	StatusDone
	StatusError
)

var statusNames = map[Status]string{
	StatusIdle:          "idle",
	StatusLoadingEngine: "loading_engine",
	StatusConverting:    "converting",
	StatusDone:          "done",
	StatusError:         "error",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalText renders the status name in JSON payloads.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name produced by MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	for status, name := range statusNames {
		if name == string(text) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// Terminal reports whether the status ends a conversion.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// validTransition enforces the controller state machine edges.
func validTransition(from, to Status) bool {
	switch from {
	case StatusIdle:
		return to == StatusLoadingEngine || to == StatusConverting
	case StatusLoadingEngine:
		return to == StatusIdle
	case StatusConverting:
		return to == StatusDone || to == StatusError
	case StatusDone, StatusError:
		return to == StatusIdle || to == StatusConverting
	default:
		return false
	}
}
