// SPDX-License-Identifier: BSD-3-Clause

package detect

import (
	"context"
	"sync"

	"github.com/lfcd/lfcd/pkg/state"
)

// Phase is one step of the detection sweep.
type Phase string

const (
	PhaseBaseline Phase = "BASELINE"
	PhaseRamp     Phase = "RAMP"
	PhaseSettle   Phase = "SETTLE"
	PhaseRecord   Phase = "RECORD"
	PhaseRestore  Phase = "RESTORE"
)

// JobState is the overall lifecycle state of a detection job.
type JobState string

const (
	StateIdle    JobState = "IDLE"
	StateRunning JobState = "RUNNING"
	StateDone    JobState = "DONE"
	StateAborted JobState = "ABORTED"
)

// Status is a read-only snapshot of a Job, safe to serialize for RPC.
type Status struct {
	ID            string   `json:"id"`
	State         JobState `json:"state"`
	Phase         Phase    `json:"phase"`
	CurrentIndex  int      `json:"currentIndex"`
	Total         int      `json:"total"`
	PwmPaths      []string `json:"pwmPaths"`
	PerPwmPeakRpm []int    `json:"perPwmPeakRpm"`
	Error         string   `json:"error,omitempty"`
}

// Job tracks one detection sweep's progress. Safe for concurrent
// status reads while the sweep runs on its own goroutine. Its lifecycle
// (IDLE/RUNNING/DONE/ABORTED) and sweep phase (BASELINE/RAMP/SETTLE/
// RECORD/RESTORE) are each driven by their own pkg/state machine, so
// every transition below is one this sweep is actually permitted to
// make, not just a field assignment.
type Job struct {
	id       string
	pwmPaths []string

	lifecycle *state.FSM
	phase     *state.FSM

	mu            sync.Mutex
	currentIndex  int
	perPwmPeakRpm []int
	err           error

	abortOnce sync.Once
	abortCh   chan struct{}
	doneCh    chan struct{}
}

func newJob(ctx context.Context, id string, pwmPaths []string) (*Job, error) {
	lifecycle, err := state.New(state.NewConfig(
		state.WithName("detect-lifecycle-"+id),
		state.WithInitialState(string(StateIdle)),
		state.WithStates(string(StateIdle), string(StateRunning), string(StateDone), string(StateAborted)),
		state.WithTransition(string(StateIdle), string(StateRunning), "start"),
		state.WithTransition(string(StateRunning), string(StateDone), "complete"),
		state.WithTransition(string(StateRunning), string(StateAborted), "abort"),
	))
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Start(ctx); err != nil {
		return nil, err
	}

	phase, err := state.New(state.NewConfig(
		state.WithName("detect-phase-"+id),
		state.WithInitialState(string(PhaseBaseline)),
		state.WithStates(string(PhaseBaseline), string(PhaseRamp), string(PhaseSettle), string(PhaseRecord), string(PhaseRestore)),
		state.WithTransition(string(PhaseBaseline), string(PhaseRamp), "ramp"),
		state.WithTransition(string(PhaseBaseline), string(PhaseRestore), "restore"),
		state.WithTransition(string(PhaseRamp), string(PhaseSettle), "settle"),
		state.WithTransition(string(PhaseSettle), string(PhaseRecord), "record"),
		state.WithTransition(string(PhaseRecord), string(PhaseRamp), "ramp"),
		state.WithTransition(string(PhaseRecord), string(PhaseRestore), "restore"),
	))
	if err != nil {
		return nil, err
	}
	if err := phase.Start(ctx); err != nil {
		return nil, err
	}

	return &Job{
		id:            id,
		pwmPaths:      pwmPaths,
		lifecycle:     lifecycle,
		phase:         phase,
		perPwmPeakRpm: make([]int, len(pwmPaths)),
		abortCh:       make(chan struct{}),
		doneCh:        make(chan struct{}),
	}, nil
}

// Abort requests cooperative cancellation; safe to call multiple times.
func (j *Job) Abort() {
	j.abortOnce.Do(func() { close(j.abortCh) })
}

// Done returns a channel closed when the sweep (including RESTORE) has
// finished, whether normally or aborted.
func (j *Job) Done() <-chan struct{} {
	return j.doneCh
}

func (j *Job) aborted() bool {
	select {
	case <-j.abortCh:
		return true
	default:
		return false
	}
}

// setRunning fires the lifecycle machine's IDLE->RUNNING transition.
func (j *Job) setRunning(ctx context.Context) {
	_ = j.lifecycle.Fire(ctx, "start")
}

// setPhase advances the sweep's phase machine by trigger ("ramp",
// "settle", "record", or "restore").
func (j *Job) setPhase(ctx context.Context, trigger string) {
	_ = j.phase.Fire(ctx, trigger)
}

func (j *Job) setIndex(i int) {
	j.mu.Lock()
	j.currentIndex = i
	j.mu.Unlock()
}

func (j *Job) recordPeak(i, rpm int) {
	j.mu.Lock()
	if rpm > j.perPwmPeakRpm[i] {
		j.perPwmPeakRpm[i] = rpm
	}
	j.mu.Unlock()
}

// finish fires the lifecycle machine's terminal transition ("complete"
// or "abort") and records the sweep's outcome.
func (j *Job) finish(ctx context.Context, target JobState, err error) {
	trigger := "complete"
	if target == StateAborted {
		trigger = "abort"
	}
	_ = j.lifecycle.Fire(ctx, trigger)

	j.mu.Lock()
	j.err = err
	j.mu.Unlock()
	close(j.doneCh)
}

// Status returns a point-in-time snapshot of the job.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	s := Status{
		ID:            j.id,
		State:         JobState(j.lifecycle.CurrentState()),
		Phase:         Phase(j.phase.CurrentState()),
		CurrentIndex:  j.currentIndex,
		Total:         len(j.pwmPaths),
		PwmPaths:      j.pwmPaths,
		PerPwmPeakRpm: append([]int(nil), j.perPwmPeakRpm...),
	}
	if j.err != nil {
		s.Error = j.err.Error()
	}
	return s
}
