package history

import "time"

// Approval methods recorded in the audit log.
const (
	MethodAuto   = "auto"
	MethodManual = "manual"
	MethodBulk   = "bulk"
)

// Entry is one recorded approval.
type Entry struct {
	Chat       string
	UserID     int64
	Method     string
	RunID      string
	ApprovedAt time.Time
}

// Store is the append-mostly approval audit log. It is observability
// only: nothing is ever read back to restore process state.
type Store interface {
	// Record appends an approval.
	Record(e Entry) error

	// CountByChat returns the number of recorded approvals for a chat.
	CountByChat(chat string) (int64, error)

	// TotalApproved returns the number of recorded approvals overall.
	TotalApproved() (int64, error)

	// Close releases resources.
	Close() error
}

// Disabled returns a Store that drops writes and reports zero counts,
// used when no db path is configured.
func Disabled() Store {
	return noopStore{}
}

type noopStore struct{}

func (noopStore) Record(Entry) error                { return nil }
func (noopStore) CountByChat(string) (int64, error) { return 0, nil }
func (noopStore) TotalApproved() (int64, error)     { return 0, nil }
func (noopStore) Close() error                      { return nil }
