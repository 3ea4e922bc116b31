package domain

import (
	"encoding/json"
	"fmt"
)

// FetchStatus is the lifecycle of one list fetch session.
// A single tag makes "loading and error" or "loaded and loading" unrepresentable.
type FetchStatus int

const (
	// StatusIdle is the "not yet requested" state.
	StatusIdle FetchStatus = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

var statusNames = map[FetchStatus]string{
	StatusIdle:    "idle",
	StatusLoading: "loading",
	StatusLoaded:  "loaded",
	StatusFailed:  "failed",
}

func (s FetchStatus) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("FetchStatus(%d)", int(s))
}

// ParseFetchStatus is the inverse of FetchStatus.String.
func ParseFetchStatus(s string) (FetchStatus, error) {
	for st, n := range statusNames {
		if n == s {
			return st, nil
		}
	}
	return StatusIdle, fmt.Errorf("%w: unknown fetch status %q", ErrValidation, s)
}

// TripFlag is the status block rendered next to a trip list.
// Renderers read Loading, Loaded and Error; only the aggregator sets Status.
type TripFlag struct {
	Status FetchStatus
}

func (f TripFlag) Loading() bool { return f.Status == StatusLoading }
func (f TripFlag) Loaded() bool  { return f.Status == StatusLoaded }
func (f TripFlag) Error() bool   { return f.Status == StatusFailed }

// tripFlagJSON is the wire shape. The three booleans are derived; status is
// what UnmarshalJSON trusts.
type tripFlagJSON struct {
	Loading bool   `json:"loading"`
	Loaded  bool   `json:"loaded"`
	Error   bool   `json:"error"`
	Status  string `json:"status"`
}

func (f TripFlag) MarshalJSON() ([]byte, error) {
	return json.Marshal(tripFlagJSON{
		Loading: f.Loading(),
		Loaded:  f.Loaded(),
		Error:   f.Error(),
		Status:  f.Status.String(),
	})
}

func (f *TripFlag) UnmarshalJSON(b []byte) error {
	var raw tripFlagJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	st, err := ParseFetchStatus(raw.Status)
	if err != nil {
		return err
	}
	f.Status = st
	return nil
}
