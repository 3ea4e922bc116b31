package messages

import (
	"encoding/json"
	"strconv"
	"time"
)

// OverviewRefreshed is published after every completed trip list fetch
// session. Dropped counts records the normalizer rejected.
type OverviewRefreshed struct {
	SessionID   uint64    `json:"session_id"`
	Status      string    `json:"status"`
	Total       int       `json:"total"`
	Kept        int       `json:"kept"`
	Dropped     int       `json:"dropped"`
	Reasons     []Drop    `json:"reasons,omitempty"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

type Drop struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Key partitions events by session so one session's events stay ordered.
func (m OverviewRefreshed) Key() []byte {
	return []byte(strconv.FormatUint(m.SessionID, 10))
}

func (m OverviewRefreshed) Value() ([]byte, error) {
	return json.Marshal(m)
}
