package portfolio

import (
	"errors"
	"fmt"

	"github.com/mselser95/gasfutures/pkg/types"
)

// ErrInvalidTransition is returned for a status change the lifecycle does not
// allow.
var ErrInvalidTransition = errors.New("invalid position transition")

// Event is something that happens to a position.
type Event string

const (
	EventResolvedWon  Event = "resolved-won"
	EventResolvedLost Event = "resolved-lost"
	EventClaimed      Event = "claimed"
	EventExited       Event = "exited"
)

// Transition applies ev to a position in status from.
func Transition(from types.PositionStatus, ev Event) (types.PositionStatus, error) {
	switch {
	case from == types.PositionOngoing && ev == EventResolvedWon:
		return types.PositionWon, nil
	case from == types.PositionOngoing && ev == EventResolvedLost:
		return types.PositionLost, nil
	case from == types.PositionOngoing && ev == EventExited:
		return types.PositionSold, nil
	case from == types.PositionWon && ev == EventClaimed:
		return types.PositionClaimed, nil
	}

	return from, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev, from)
}
