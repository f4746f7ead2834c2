package domain

import (
	"strings"

	"go-storefront/pkg/errors"
)

// Status is the lifecycle state of an order
type Status string

const (
	StatusPending   Status = "Pending"
	StatusPaid      Status = "Paid"
	StatusCancelled Status = "Cancelled"
	StatusShipped   Status = "Shipped"
)

// transitions lists, per source status, the statuses it may move to.
// A status missing from the map, or mapped to an empty set, is terminal.
var transitions = map[Status]map[Status]struct{}{
	StatusPending: {
		StatusPaid:      {},
		StatusCancelled: {},
	},
	StatusPaid: {
		StatusShipped: {},
	},
	StatusCancelled: {},
	StatusShipped:   {},
}

// ParseStatus trims and case-folds s into a known Status
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	for status := range transitions {
		if strings.EqualFold(string(status), s) {
			return status, nil
		}
	}
	return "", errors.NewValidation("unknown order status", map[string]string{"status": s})
}

// CanTransition reports whether an order in status from may move to status to
func CanTransition(from, to Status) bool {
	_, ok := transitions[from][to]
	return ok
}

// IsTerminal reports whether no transition leaves s
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// AllowedTargets returns the statuses reachable from s in one step
func (s Status) AllowedTargets() []Status {
	targets := make([]Status, 0, len(transitions[s]))
	for _, to := range []Status{StatusPending, StatusPaid, StatusCancelled, StatusShipped} {
		if CanTransition(s, to) {
			targets = append(targets, to)
		}
	}
	return targets
}

// ReleasesStock reports whether entering s hands reserved stock back to the catalog
func (s Status) ReleasesStock() bool {
	return s == StatusCancelled
}

func (s Status) String() string {
	return string(s)
}
