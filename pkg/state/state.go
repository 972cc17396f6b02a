// SPDX-License-Identifier: BSD-3-Clause

package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/qmuntal/stateless"
)

// FSM is a thread-safe finite state machine with guards, actions, a
// per-transition timeout, and persistence/broadcast callbacks invoked
// after the internal lock is released.
type FSM struct {
	config  *Config
	machine *stateless.StateMachine

	mu      sync.RWMutex
	started bool
	stopped bool

	currentState      string
	persistCallback   PersistenceCallback
	broadcastCallback BroadcastCallback
}

// New creates a new state machine with the provided configuration.
func New(config *Config) (*FSM, error) {
	if config == nil {
		return nil, ErrInvalidConfig
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	sm := &FSM{
		config:            config,
		currentState:      config.InitialState,
		persistCallback:   config.PersistenceCallback,
		broadcastCallback: config.BroadcastCallback,
	}

	sm.machine = stateless.NewStateMachine(config.InitialState)

	for _, s := range config.States {
		cfg := sm.machine.Configure(s)
		if config.OnStateEntry != nil {
			state := s
			cfg.OnEntry(func(ctx context.Context, _ ...any) error {
				return config.OnStateEntry(ctx, sm.config.Name, state)
			})
		}
		if config.OnStateExit != nil {
			state := s
			cfg.OnExit(func(ctx context.Context, _ ...any) error {
				return config.OnStateExit(ctx, sm.config.Name, state)
			})
		}
	}

	for _, t := range config.Transitions {
		sm.configureTransition(t)
	}

	return sm, nil
}

func (sm *FSM) configureTransition(t Transition) {
	fromCfg := sm.machine.Configure(t.From)

	if t.Guard != nil {
		fromCfg.PermitIf(t.Trigger, t.To, func(context.Context, ...any) (bool, error) {
			return t.Guard(), nil
		})
	} else {
		fromCfg.Permit(t.Trigger, t.To)
	}

	if t.Action != nil {
		toCfg := sm.machine.Configure(t.To)
		toCfg.OnEntryFrom(t.Trigger, func(context.Context, ...any) error {
			return t.Action(t.From, t.To, t.Trigger)
		})
	}
}

// SetPersistenceCallback sets the callback invoked on Start and after
// every transition. Must be called before Start.
func (sm *FSM) SetPersistenceCallback(callback PersistenceCallback) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.started {
		return ErrStateMachineAlreadyStarted
	}
	sm.persistCallback = callback
	return nil
}

// SetBroadcastCallback sets the callback invoked after every transition.
// Must be called before Start.
func (sm *FSM) SetBroadcastCallback(callback BroadcastCallback) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.started {
		return ErrStateMachineAlreadyStarted
	}
	sm.broadcastCallback = callback
	return nil
}

// Start marks the machine started and, if configured, persists the
// initial state.
func (sm *FSM) Start(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.started {
		return nil
	}
	if sm.stopped {
		return ErrStateMachineStopped
	}
	sm.started = true

	if sm.persistCallback != nil {
		if err := sm.persistCallback(ctx, sm.config.Name, sm.currentState); err != nil {
			return fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
		}
	}
	return nil
}

// Stop marks the machine stopped; further Fire calls return
// ErrStateMachineStopped.
func (sm *FSM) Stop(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if !sm.started || sm.stopped {
		return nil
	}
	sm.stopped = true
	return nil
}

// Fire triggers a state transition, bounded by the configured
// StateTimeout (default 30s). Persistence/broadcast callbacks run after
// the internal lock is released.
func (sm *FSM) Fire(ctx context.Context, trigger string) error {
	sm.mu.Lock()
	if !sm.started {
		sm.mu.Unlock()
		return ErrStateMachineNotStarted
	}
	if sm.stopped {
		sm.mu.Unlock()
		return ErrStateMachineStopped
	}

	if ok, err := sm.machine.CanFire(trigger); err != nil {
		sm.mu.Unlock()
		return fmt.Errorf("%w: trigger %s in state %s: %w", ErrInvalidTrigger, trigger, sm.currentState, err)
	} else if !ok {
		sm.mu.Unlock()
		return fmt.Errorf("%w: trigger %s not valid in state %s", ErrInvalidTrigger, trigger, sm.currentState)
	}

	previousState := sm.currentState

	timeout := sm.config.StateTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	fireCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- sm.machine.FireCtx(fireCtx, trigger)
	}()

	var fireErr error
	select {
	case fireErr = <-done:
	case <-fireCtx.Done():
		sm.mu.Unlock()
		if fireCtx.Err() == context.DeadlineExceeded {
			return ErrTransitionTimeout
		}
		return fireCtx.Err()
	}
	if fireErr != nil {
		sm.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrInvalidTransition, fireErr)
	}

	state, err := sm.machine.State(ctx)
	if err != nil {
		sm.mu.Unlock()
		return fmt.Errorf("failed to get current state: %w", err)
	}
	sm.currentState = fmt.Sprintf("%v", state)

	name := sm.config.Name
	curr := sm.currentState
	persistCb := sm.persistCallback
	broadcastCb := sm.broadcastCallback
	sm.mu.Unlock()

	if persistCb != nil {
		if perr := persistCb(ctx, name, curr); perr != nil {
			return fmt.Errorf("%w: %w", ErrPersistenceFailed, perr)
		}
	}
	if broadcastCb != nil {
		_ = broadcastCb(ctx, name, previousState, curr, trigger)
	}
	return nil
}

// CurrentState returns the current state.
func (sm *FSM) CurrentState() string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.currentState
}

// CanFire reports whether trigger is valid from the current state.
func (sm *FSM) CanFire(trigger string) (bool, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.machine.CanFire(trigger)
}

// PermittedTriggers returns every trigger valid from the current state.
func (sm *FSM) PermittedTriggers() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	triggers, err := sm.machine.PermittedTriggers()
	if err != nil {
		return nil
	}
	out := make([]string, len(triggers))
	for i, t := range triggers {
		out[i] = fmt.Sprintf("%v", t)
	}
	return out
}

// IsInState reports whether the machine is currently in state.
func (sm *FSM) IsInState(state string) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.currentState == state
}

// Name returns the machine's configured name.
func (sm *FSM) Name() string { return sm.config.Name }

// ToGraph returns a DOT graph representation, useful for debugging.
func (sm *FSM) ToGraph() string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.machine.ToGraph()
}
