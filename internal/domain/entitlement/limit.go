package entitlement

import (
	"encoding/json"
	"strconv"
)

// Limit is a numeric cap that is either bounded or unlimited. The source of a
// whole class of off-by-sign bugs is encoding "unlimited" as a magic negative
// number, so the unlimited case is a distinct tagged state instead.
type Limit struct {
	value     int
	unlimited bool
}

// Bounded returns a finite limit of n
func Bounded(n int) Limit {
	return Limit{value: n}
}

// Unlimited returns the unlimited sentinel
func Unlimited() Limit {
	return Limit{unlimited: true}
}

// IsUnlimited reports whether the limit is the unlimited sentinel
func (l Limit) IsUnlimited() bool {
	return l.unlimited
}

// Allows reports whether one more item may be added given the current count
func (l Limit) Allows(current int) bool {
	if l.unlimited {
		return true
	}
	return current < l.value
}

// Value returns the finite bound. Only meaningful when IsUnlimited is false.
func (l Limit) Value() int {
	return l.value
}

// AtLeast reports whether l grants at least as much as other. Used to verify
// that higher tiers never shrink a limit.
func (l Limit) AtLeast(other Limit) bool {
	if l.unlimited {
		return true
	}
	if other.unlimited {
		return false
	}
	return l.value >= other.value
}

// String returns "unlimited" or the decimal bound
func (l Limit) String() string {
	if l.unlimited {
		return "unlimited"
	}
	return strconv.Itoa(l.value)
}

// MarshalJSON encodes the limit as a number or the string "unlimited"
func (l Limit) MarshalJSON() ([]byte, error) {
	if l.unlimited {
		return json.Marshal("unlimited")
	}
	return json.Marshal(l.value)
}

// UnmarshalJSON decodes a number or the string "unlimited"
func (l *Limit) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil && s == "unlimited" {
		*l = Unlimited()
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*l = Bounded(n)
	return nil
}
