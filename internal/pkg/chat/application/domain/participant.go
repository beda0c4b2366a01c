package chat

import "strings"

// Pair is the canonical, order-independent identity of a direct
// conversation: Low sorts before High.
type Pair struct {
	Low  string
	High string
}

// NewPair builds the canonical pair for two distinct user ids.
func NewPair(a, b string) (Pair, error) {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return Pair{}, invalid("both participants are required")
	}
	if a == b {
		return Pair{}, invalid("cannot open a conversation with yourself")
	}
	if b < a {
		a, b = b, a
	}
	return Pair{Low: a, High: b}, nil
}

func (p Pair) Contains(userID string) bool {
	return userID != "" && (userID == p.Low || userID == p.High)
}

// Other returns the participant that is not userID.
func (p Pair) Other(userID string) (string, bool) {
	switch userID {
	case p.Low:
		return p.High, true
	case p.High:
		return p.Low, true
	}
	return "", false
}

func (p Pair) Users() []string {
	return []string{p.Low, p.High}
}
