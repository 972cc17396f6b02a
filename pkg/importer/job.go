// SPDX-License-Identifier: BSD-3-Clause

package importer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/lfcd/lfcd/pkg/hwmon"
	"github.com/lfcd/lfcd/pkg/profile"
	"github.com/lfcd/lfcd/pkg/state"
	"github.com/lfcd/lfcd/pkg/vendormap"
)

// Stage is one step of an asynchronous import job.
type Stage string

const (
	StageParsing    Stage = "PARSING"
	StageMapping    Stage = "MAPPING"
	StageValidating Stage = "VALIDATING"
	StageDetecting  Stage = "DETECTING"
	StageDone       Stage = "DONE"
)

// JobState is the lifecycle state of an asynchronous import job.
type JobState string

const (
	StateRunning   JobState = "RUNNING"
	StateSucceeded JobState = "SUCCEEDED"
	StateFailed    JobState = "FAILED"
	StateCanceled  JobState = "CANCELED"
)

// Status is a read-only snapshot of a Job, safe to serialize for RPC.
type Status struct {
	ID                string                   `json:"id"`
	State             JobState                 `json:"state"`
	Progress          int                      `json:"progress"`
	Stage             Stage                    `json:"stage"`
	CurrentIdentifier string                   `json:"currentIdentifier,omitempty"`
	MappedPath        string                   `json:"mappedPath,omitempty"`
	ValidationReport  profile.ValidationReport `json:"validationReport"`
	Warnings          []string                 `json:"warnings,omitempty"`
	Error             string                   `json:"error,omitempty"`
}

// Committer is the subset of the control engine a commit needs: swap in
// the freshly imported profile and report whether it validated.
type Committer interface {
	ApplyProfile(p *profile.Profile) profile.ValidationReport
}

// Job tracks one asynchronous import's progress. Multiple jobs may coexist;
// finalisation (persisting + activating) is the separate Commit step. Its
// lifecycle (RUNNING/SUCCEEDED/FAILED/CANCELED) and stage
// (PARSING/MAPPING/VALIDATING/DETECTING/DONE) are each driven by their own
// pkg/state machine, so a job can only report a stage or outcome it
// actually passed through.
type Job struct {
	id string

	lifecycle *state.FSM
	stage     *state.FSM

	mu       sync.Mutex
	progress int
	current  string
	mapped   string
	report   profile.ValidationReport
	warnings []string
	result   *profile.Profile
	err      error

	abortOnce sync.Once
	abortCh   chan struct{}
	doneCh    chan struct{}
}

func newJob(ctx context.Context, id string) (*Job, error) {
	lifecycle, err := state.New(state.NewConfig(
		state.WithName("import-lifecycle-"+id),
		state.WithInitialState(string(StateRunning)),
		state.WithStates(string(StateRunning), string(StateSucceeded), string(StateFailed), string(StateCanceled)),
		state.WithTransition(string(StateRunning), string(StateSucceeded), "succeed"),
		state.WithTransition(string(StateRunning), string(StateFailed), "fail"),
		state.WithTransition(string(StateRunning), string(StateCanceled), "cancel"),
	))
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Start(ctx); err != nil {
		return nil, err
	}

	stageFSM, err := state.New(state.NewConfig(
		state.WithName("import-stage-"+id),
		state.WithInitialState(string(StageParsing)),
		state.WithStates(string(StageParsing), string(StageMapping), string(StageValidating), string(StageDetecting), string(StageDone)),
		state.WithTransition(string(StageParsing), string(StageMapping), "mapping"),
		state.WithTransition(string(StageMapping), string(StageMapping), "mapping"),
		state.WithTransition(string(StageMapping), string(StageValidating), "validating"),
		state.WithTransition(string(StageValidating), string(StageDetecting), "detecting"),
		state.WithTransition(string(StageValidating), string(StageDone), "done"),
		state.WithTransition(string(StageDetecting), string(StageDone), "done"),
	))
	if err != nil {
		return nil, err
	}
	if err := stageFSM.Start(ctx); err != nil {
		return nil, err
	}

	return &Job{
		id:        id,
		lifecycle: lifecycle,
		stage:     stageFSM,
		abortCh:   make(chan struct{}),
		doneCh:    make(chan struct{}),
	}, nil
}

// Cancel requests cooperative cancellation. Returns ErrNotCancelable once
// the job has left the running state.
func (j *Job) Cancel() error {
	if j.lifecycle.CurrentState() != string(StateRunning) {
		return ErrNotCancelable
	}
	j.abortOnce.Do(func() { close(j.abortCh) })
	return nil
}

func (j *Job) aborted() bool {
	select {
	case <-j.abortCh:
		return true
	default:
		return false
	}
}

// Done returns a channel closed once the job reaches a terminal state.
func (j *Job) Done() <-chan struct{} { return j.doneCh }

// Status returns a point-in-time snapshot of the job.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	s := Status{
		ID:                j.id,
		State:             JobState(j.lifecycle.CurrentState()),
		Progress:          j.progress,
		Stage:             Stage(j.stage.CurrentState()),
		CurrentIdentifier: j.current,
		MappedPath:        j.mapped,
		ValidationReport:  j.report,
		Warnings:          append([]string(nil), j.warnings...),
	}
	if j.err != nil {
		s.Error = j.err.Error()
	}
	return s
}

func (j *Job) setProgress(ctx context.Context, target Stage, identifier string, progress int) {
	if trigger := stageTrigger(target); trigger != "" {
		_ = j.stage.Fire(ctx, trigger)
	}

	j.mu.Lock()
	j.current = identifier
	j.progress = progress
	j.mu.Unlock()
}

func (j *Job) setMapped(path string) {
	j.mu.Lock()
	j.mapped = path
	j.mu.Unlock()
}

func (j *Job) finish(ctx context.Context, target JobState, result *profile.Profile, report profile.ValidationReport, warnings []string, err error) {
	trigger := "fail"
	switch target {
	case StateSucceeded:
		trigger = "succeed"
	case StateCanceled:
		trigger = "cancel"
	}
	_ = j.lifecycle.Fire(ctx, trigger)

	j.mu.Lock()
	j.result = result
	j.report = report
	j.warnings = warnings
	j.err = err
	if target == StateSucceeded {
		j.progress = 100
	}
	j.mu.Unlock()

	if target == StateSucceeded {
		_ = j.stage.Fire(ctx, "done")
	}
	close(j.doneCh)
}

// stageTrigger maps a target Stage onto the stage machine's trigger name.
// StageParsing is the machine's initial state and StageDone is only
// reached via finish's own "done" trigger on success, so neither is fired
// from setProgress.
func stageTrigger(s Stage) string {
	switch s {
	case StageMapping:
		return "mapping"
	case StageValidating:
		return "validating"
	case StageDetecting:
		return "detecting"
	default:
		return ""
	}
}

// Manager runs asynchronous import jobs, keyed by ID so several may coexist.
type Manager struct {
	inv *hwmon.Inventory
	vm  *vendormap.Mapper
	log *slog.Logger

	mu   sync.Mutex
	jobs map[string]*Job
}

// NewManager builds an import job manager over the given inventory and
// vendor map.
func NewManager(inv *hwmon.Inventory, vm *vendormap.Mapper, log *slog.Logger) *Manager {
	return &Manager{inv: inv, vm: vm, log: log, jobs: make(map[string]*Job)}
}

// Start launches an asynchronous import of data under the given options and
// returns immediately with a job handle; the caller polls Status/Done.
func (m *Manager) Start(ctx context.Context, data []byte, opts Options) (*Job, error) {
	job, err := newJob(ctx, uuid.NewString())
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.jobs[job.id] = job
	m.mu.Unlock()

	go m.run(ctx, job, data, opts)

	return job, nil
}

// Job looks up a job by ID.
func (m *Manager) Job(id string) (*Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	return j, ok
}

// Jobs returns a status snapshot of every job the manager has ever
// started, for profile.importJobs.
func (m *Manager) Jobs() []Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Status, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, j.Status())
	}
	return out
}

// Cancel aborts a running job by ID.
func (m *Manager) Cancel(id string) error {
	j, ok := m.Job(id)
	if !ok {
		return ErrJobNotFound
	}
	return j.Cancel()
}

// Commit persists the completed job's mapped profile under profilesDir and
// applies it via committer, returning the saved path. Only a job in
// StateSucceeded may be committed.
func (m *Manager) Commit(id, profilesDir string, committer Committer) (string, profile.ValidationReport, error) {
	j, ok := m.Job(id)
	if !ok {
		return "", profile.ValidationReport{}, ErrJobNotFound
	}
	j.mu.Lock()
	succeeded := j.lifecycle.CurrentState() == string(StateSucceeded)
	if !succeeded || j.result == nil {
		j.mu.Unlock()
		return "", profile.ValidationReport{}, fmt.Errorf("%w: job %s is not in a committable state", ErrValidationFailed, id)
	}
	result := j.result
	j.mu.Unlock()

	path, err := profile.Save(profilesDir, result)
	if err != nil {
		return "", profile.ValidationReport{}, err
	}
	report := committer.ApplyProfile(result)
	return path, report, nil
}

func (m *Manager) run(ctx context.Context, job *Job, data []byte, opts Options) {
	job.setProgress(ctx, StageParsing, "", 0)
	legacyRules, err := parse(data)
	if err != nil {
		job.finish(ctx, StateFailed, nil, profile.ValidationReport{}, nil, err)
		return
	}

	result := &profile.Profile{
		Name:          opts.ProfileName,
		SchemaVersion: profile.CurrentSchemaVersion,
		Description:   opts.Description,
	}
	var warnings []string

	job.setProgress(ctx, StageMapping, "", 5)
	total := len(legacyRules)
	for i, lr := range legacyRules {
		if job.aborted() {
			job.finish(ctx, StateCanceled, nil, profile.ValidationReport{}, warnings, nil)
			return
		}

		ident := lr.Identifier
		if ident == "" {
			ident = lr.FanID
		}
		progress := 5 + int(float64(i)/float64(maxInt(total, 1))*70.0)
		job.setProgress(ctx, StageMapping, ident, progress)

		tempPath, err := resolveTemp(m.inv, lr.Sensor)
		if err != nil {
			job.finish(ctx, StateFailed, nil, profile.ValidationReport{}, warnings, err)
			return
		}
		pwmPath, warn, err := resolvePwm(m.inv, m.vm, lr.FanID)
		if err != nil {
			job.finish(ctx, StateFailed, nil, profile.ValidationReport{}, warnings, err)
			return
		}
		if warn != "" {
			warnings = append(warnings, warn)
		}
		job.setMapped(pwmPath)

		result.Rules = append(result.Rules, profile.Rule{
			PwmPath:  pwmPath,
			Nickname: ident,
			Sources: []profile.Source{{
				TempPaths: []string{tempPath},
				Points:    normalizeCurve(lr.Points),
				Settings: profile.Settings{
					MinPercent:         0,
					MaxPercent:         100,
					MixFunction:        profile.MixMax,
					HysteresisC:        lr.Hysteresis,
					ResponseTauSeconds: lr.ResponseTime,
				},
			}},
		})
	}

	job.setProgress(ctx, StageValidating, "", 80)
	report := profile.Validate(result, m.inv)
	if !report.Valid {
		job.finish(ctx, StateFailed, nil, report, warnings, fmt.Errorf("%w: %d error(s)", ErrValidationFailed, len(report.Errors)))
		return
	}

	if opts.ValidateDetect {
		if job.aborted() {
			job.finish(ctx, StateCanceled, nil, report, warnings, nil)
			return
		}
		job.setProgress(ctx, StageDetecting, "", 90)
		if err := validateDetect(ctx, m.inv, result, opts); err != nil {
			report.Valid = false
			report.Errors = append(report.Errors, err.Error())
			job.finish(ctx, StateFailed, nil, report, warnings, fmt.Errorf("%w: %v", ErrValidationFailed, err))
			return
		}
	}

	job.finish(ctx, StateSucceeded, result, report, warnings, nil)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
