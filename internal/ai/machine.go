package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/looplab/fsm"

	"github.com/udisondev/horde/internal/model"
)

func eventName(s model.AIState) string {
	return "to_" + s.String()
}

// transitionTable allows any live state to move to any other state.
// Nothing leaves Dead.
func transitionTable() fsm.Events {
	live := make([]string, 0, len(model.AllStates))
	for _, s := range model.AllStates {
		if s != model.StateDead {
			live = append(live, s.String())
		}
	}

	events := make(fsm.Events, 0, len(model.AllStates))
	for _, s := range model.AllStates {
		events = append(events, fsm.EventDesc{
			Name: eventName(s),
			Src:  live,
			Dst:  s.String(),
		})
	}
	return events
}

// newMachine builds a machine starting in Idle. onEnter runs after every
// accepted transition; rejected events never reach it.
func newMachine(onEnter func(prev, next model.AIState)) *fsm.FSM {
	callbacks := fsm.Callbacks{}
	if onEnter != nil {
		callbacks["enter_state"] = func(_ context.Context, e *fsm.Event) {
			prev, errSrc := model.ParseState(e.Src)
			next, errDst := model.ParseState(e.Dst)
			if err := errors.Join(errSrc, errDst); err != nil {
				slog.Error("AI machine entered unknown state", "event", e.Event, "err", err)
				return
			}
			onEnter(prev, next)
		}
	}
	return fsm.NewFSM(model.StateIdle.String(), transitionTable(), callbacks)
}

// fire moves the machine to next. A transition to the current state is not an error.
func fire(m *fsm.FSM, from, next model.AIState) error {
	err := m.Event(context.Background(), eventName(next))
	if err == nil {
		return nil
	}
	var noop fsm.NoTransitionError
	if errors.As(err, &noop) {
		return nil
	}
	return fmt.Errorf("%s -> %s: %w: %v", from, next, model.ErrInvalidTransition, err)
}
