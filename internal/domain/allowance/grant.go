package allowance

import (
	"encoding/json"
	"fmt"
)

// Grant is how many one-shot uses a tier receives. Unlimited is a distinct
// state, not a large count.
type Grant struct {
	count     int
	unlimited bool
}

func Limited(n int) Grant {
	if n < 0 {
		n = 0
	}
	return Grant{count: n}
}

func Unlimited() Grant {
	return Grant{unlimited: true}
}

func (g Grant) IsUnlimited() bool { return g.unlimited }

// Count is the granted number of uses; meaningless when IsUnlimited.
func (g Grant) Count() int { return g.count }

// Allows reports whether another use fits after used uses.
func (g Grant) Allows(used int) bool {
	return g.unlimited || used < g.count
}

// Remaining returns uses left and false when unlimited.
func (g Grant) Remaining(used int) (int, bool) {
	if g.unlimited {
		return 0, false
	}
	if used >= g.count {
		return 0, true
	}
	return g.count - used, true
}

func (g Grant) String() string {
	if g.unlimited {
		return "unlimited"
	}
	return fmt.Sprintf("%d", g.count)
}

type grantJSON struct {
	Granted   *int `json:"granted"`
	Unlimited bool `json:"unlimited"`
}

func (g Grant) MarshalJSON() ([]byte, error) {
	if g.unlimited {
		return json.Marshal(grantJSON{Unlimited: true})
	}
	n := g.count
	return json.Marshal(grantJSON{Granted: &n})
}
