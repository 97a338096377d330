package terminal

import "time"

// SuccessNoticeTTL is how long a sale confirmation stays on screen.
const SuccessNoticeTTL = 3 * time.Second

type NoticeKind int

const (
	NoticeSuccess NoticeKind = iota + 1
	NoticeError
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeSuccess:
		return "success"
	case NoticeError:
		return "error"
	}
	return "unknown"
}

// Notice is an inline status message. A zero ExpiresAt means it stays until
// replaced or dismissed.
type Notice struct {
	Kind      NoticeKind
	Text      string
	ExpiresAt time.Time
}

// ActiveAt reports whether the notice is still showing at now.
func (n Notice) ActiveAt(now time.Time) bool {
	return n.ExpiresAt.IsZero() || now.Before(n.ExpiresAt)
}
