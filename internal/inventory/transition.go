package inventory

import (
	"errors"
	"fmt"
)

// Action is an admin operation that moves a product between location states.
type Action string

const (
	ActionSendToMaintenance   Action = "send-to-maintenance"
	ActionCompleteMaintenance Action = "complete-maintenance"
	ActionCheckout            Action = "checkout"
	ActionAuthorizeOut        Action = "authorize-out"
	ActionReturn              Action = "return"
	ActionRetire              Action = "retire"
)

var (
	ErrUnknownAction     = errors.New("unknown product action")
	ErrInvalidTransition = errors.New("product action not allowed in current state")
)

type rule struct {
	from []LocationState
	to   LocationState
}

var rules = map[Action]rule{
	ActionSendToMaintenance:   {from: []LocationState{StateAvailable}, to: StateMaintenance},
	ActionCompleteMaintenance: {from: []LocationState{StateMaintenance}, to: StateAvailable},
	ActionCheckout:            {from: []LocationState{StateAvailable}, to: StateInUse},
	ActionAuthorizeOut:        {from: []LocationState{StateAvailable}, to: StateAuthorizedOut},
	ActionReturn:              {from: []LocationState{StateInUse, StateAuthorizedOut}, to: StateAvailable},
	ActionRetire:              {from: []LocationState{StateAvailable, StateInUse, StateMaintenance, StateAuthorizedOut}, to: StateRetired},
}

// Actions lists every known action.
func Actions() []Action {
	return []Action{
		ActionSendToMaintenance,
		ActionCompleteMaintenance,
		ActionCheckout,
		ActionAuthorizeOut,
		ActionReturn,
		ActionRetire,
	}
}

// ParseAction validates an action name from a URL.
func ParseAction(raw string) (Action, error) {
	a := Action(raw)
	if _, ok := rules[a]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, raw)
	}
	return a, nil
}

// Apply returns the state the product ends in after the action, or an error
// wrapping ErrInvalidTransition when the action cannot start from current.
func Apply(current LocationState, action Action) (LocationState, error) {
	r, ok := rules[action]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	for _, from := range r.from {
		if from == current {
			return r.to, nil
		}
	}
	return "", fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, current)
}
