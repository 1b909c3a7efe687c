package orders

import (
	"fmt"
	"strings"

	"github.com/cloudclutches/storefront/internal/apperr"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var allStatuses = []Status{StatusPending, StatusApproved, StatusShipped, StatusDelivered, StatusCancelled}

// Forward moves may skip steps; cancelled is reachable until delivery.
var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusApproved: true, StatusShipped: true, StatusDelivered: true, StatusCancelled: true},
	StatusApproved:  {StatusShipped: true, StatusDelivered: true, StatusCancelled: true},
	StatusShipped:   {StatusDelivered: true, StatusCancelled: true},
	StatusDelivered: {},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

func (s Status) Terminal() bool {
	return s.Valid() && len(validNext[s]) == 0
}

// ParseStatus accepts the five lifecycle values, case-insensitively.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		names := make([]string, len(allStatuses))
		for i, st := range allStatuses {
			names[i] = string(st)
		}
		return "", apperr.Invalid("status", "status must be one of: %s", strings.Join(names, ", "))
	}
	return s, nil
}

// Policy decides which edges UpdateStatus accepts.
type Policy int

const (
	// Strict follows validNext; terminal states stay terminal.
	Strict Policy = iota
	// Lenient accepts any known status from any state.
	Lenient
)

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "", "strict":
		return Strict, nil
	case "lenient":
		return Lenient, nil
	}
	return Strict, fmt.Errorf("unknown status policy %q", s)
}

func (p Policy) Allows(from, to Status) bool {
	if p == Lenient {
		return to.Valid()
	}
	return CanTransition(from, to)
}

func transitionError(from, to Status) error {
	return apperr.Invalid("status", "cannot change status from %s to %s", from, to)
}
