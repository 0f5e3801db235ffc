// Package audit implements the append-only activity and authentication
// logs.  Records are stored as JSON arrays in flat files; all writes go
// through a single in-process owner (a mutex around read-modify-write) so
// concurrent requests cannot corrupt the array.  Logging never fails the
// caller: every error is swallowed, reported through zap and surfaced
// only as a false return.
package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Adira-Medica/inventory-app/internal/queue"
)

// ActivityEntry is one row of the main audit log (audit.json).
type ActivityEntry struct {
	ID        float64 `json:"id"` // creation timestamp doubles as unique id
	Timestamp string  `json:"timestamp"`
	Username  string  `json:"username"`
	UserID    uint64  `json:"user_id,omitempty"`
	Action    string  `json:"action"`
	Details   string  `json:"details"`
	IPAddress string  `json:"ipAddress"`
}

// AuthEntry is one row of the authentication log (auth_audit.json).  It
// carries an explicit success flag plus user-agent capture.
type AuthEntry struct {
	ID        float64 `json:"id"`
	Timestamp string  `json:"timestamp"`
	EventType string  `json:"event_type"` // always "authentication"
	Action    string  `json:"action"`     // login, logout, password_change, ...
	Username  string  `json:"username"`
	UserID    uint64  `json:"user_id,omitempty"`
	Success   bool    `json:"success"`
	Details   string  `json:"details,omitempty"`
	IPAddress string  `json:"ip_address"`
	UserAgent string  `json:"user_agent"`
}

// Filter narrows the admin audit-log listing.  Zero values mean "no
// constraint".  Username matches as a case-insensitive substring.
type Filter struct {
	StartDate string // inclusive, YYYY-MM-DD
	EndDate   string // inclusive, YYYY-MM-DD
	Username  string
	Action    string
}

// Store owns the two log files.  Publish, when set, mirrors every
// activity record to the message broker fire-and-forget.
type Store struct {
	mu           sync.Mutex
	activityPath string
	authPath     string
	log          *zap.Logger
	Publish      func(queue.ActivityEvent)
}

// NewStore creates a store rooted at dir.  The directory is created on
// first write, not here, so a read-only deployment can still boot.
func NewStore(dir string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		activityPath: filepath.Join(dir, "audit.json"),
		authPath:     filepath.Join(dir, "auth_audit.json"),
		log:          log,
	}
}

// LogActivity appends a record to the activity log.  Returns false on
// failure instead of an error so callers can fire and forget.
func (s *Store) LogActivity(action, details, username string, userID uint64, ip string) bool {
	now := time.Now()
	entry := ActivityEntry{
		ID:        float64(now.UnixNano()) / 1e9,
		Timestamp: now.Format(time.RFC3339),
		Username:  orAnonymous(username),
		UserID:    userID,
		Action:    action,
		Details:   details,
		IPAddress: ip,
	}
	if err := s.append(s.activityPath, entry); err != nil {
		s.log.Warn("audit: activity write failed", zap.String("action", action), zap.Error(err))
		return false
	}
	if s.Publish != nil {
		s.Publish(queue.ActivityEvent{
			Timestamp: entry.Timestamp,
			Username:  entry.Username,
			UserID:    entry.UserID,
			Action:    entry.Action,
			Details:   entry.Details,
			IPAddress: entry.IPAddress,
			Success:   true,
		})
	}
	return true
}

// LogAuthEvent appends a record to the authentication log.  Failed
// attempts are recorded too, with Success=false.
func (s *Store) LogAuthEvent(action, username string, userID uint64, success bool, details, ip, userAgent string) bool {
	now := time.Now()
	entry := AuthEntry{
		ID:        float64(now.UnixNano()) / 1e9,
		Timestamp: now.Format(time.RFC3339),
		EventType: "authentication",
		Action:    action,
		Username:  orAnonymous(username),
		UserID:    userID,
		Success:   success,
		Details:   details,
		IPAddress: ip,
		UserAgent: userAgent,
	}
	if err := s.append(s.authPath, entry); err != nil {
		s.log.Warn("audit: auth write failed", zap.String("action", action), zap.Error(err))
		return false
	}
	if s.Publish != nil {
		s.Publish(queue.ActivityEvent{
			Timestamp: entry.Timestamp,
			Username:  entry.Username,
			UserID:    entry.UserID,
			Action:    entry.Action,
			Details:   entry.Details,
			IPAddress: entry.IPAddress,
			Success:   entry.Success,
		})
	}
	return true
}

// Activities returns the filtered activity log, newest first.
func (s *Store) Activities(f Filter) ([]ActivityEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var entries []ActivityEntry
	if err := s.readAll(s.activityPath, &entries); err != nil {
		return nil, err
	}
	out := entries[:0]
	for _, e := range entries {
		if matches(f, e.Timestamp, e.Username, e.Action) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}

// AuthEvents returns the filtered authentication log, newest first.
func (s *Store) AuthEvents(f Filter) ([]AuthEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var entries []AuthEntry
	if err := s.readAll(s.authPath, &entries); err != nil {
		return nil, err
	}
	out := entries[:0]
	for _, e := range entries {
		if matches(f, e.Timestamp, e.Username, e.Action) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}

// Clear archives the current activity log and truncates it to an empty
// array.  The archive path is returned so the action can be audited.
func (s *Store) Clear() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := os.Stat(s.activityPath); errors.Is(err, os.ErrNotExist) {
		return "", nil // nothing to clear
	}
	data, err := os.ReadFile(s.activityPath)
	if err != nil {
		return "", err
	}
	archive := filepath.Join(filepath.Dir(s.activityPath),
		fmt.Sprintf("audit_backup_%s.json", time.Now().Format("20060102_150405")))
	if err := os.WriteFile(archive, data, 0o644); err != nil {
		return "", err
	}
	if err := os.WriteFile(s.activityPath, []byte("[]"), 0o644); err != nil {
		return "", err
	}
	return archive, nil
}

// append performs the serialized read-modify-write of one JSON array file.
func (s *Store) append(path string, entry any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var raw []json.RawMessage
	if err := s.readAll(path, &raw); err != nil {
		return err
	}
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	raw = append(raw, b)
	out, err := json.MarshalIndent(raw, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

// readAll decodes a JSON array file into dst.  A missing file, corrupt
// JSON or non-array content all read as an empty log rather than an
// error; only I/O failures propagate.
func (s *Store) readAll(path string, dst any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.log.Warn("audit: log file unreadable, treating as empty", zap.String("path", path), zap.Error(err))
	}
	return nil
}

func matches(f Filter, timestamp, username, action string) bool {
	if f.StartDate != "" && timestamp < f.StartDate {
		return false
	}
	if f.EndDate != "" {
		// Add one day so the end date is inclusive; timestamps are
		// RFC3339 and sort lexicographically.
		if end, err := time.Parse("2006-01-02", f.EndDate); err == nil {
			if timestamp >= end.AddDate(0, 0, 1).Format("2006-01-02") {
				return false
			}
		}
	}
	if f.Username != "" && !strings.Contains(strings.ToLower(username), strings.ToLower(f.Username)) {
		return false
	}
	if f.Action != "" && action != f.Action {
		return false
	}
	return true
}

func orAnonymous(username string) string {
	if username == "" {
		return "Anonymous"
	}
	return username
}
