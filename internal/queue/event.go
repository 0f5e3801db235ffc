// Package queue defines message payloads exchanged over the message broker.
package queue

// ActivityEvent mirrors one audit record onto the broker so downstream
// consumers can tail activity without reading the primary log files.
type ActivityEvent struct {
	Timestamp string `json:"timestamp"`
	Username  string `json:"username"`
	UserID    uint64 `json:"user_id,omitempty"`
	Action    string `json:"action"`
	Details   string `json:"details"`
	IPAddress string `json:"ip_address"`
	Success   bool   `json:"success"`
}
