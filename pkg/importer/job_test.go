// SPDX-License-Identifier: BSD-3-Clause

package importer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lfcd/lfcd/pkg/profile"
)

type fakeCommitter struct {
	applied *profile.Profile
	report  profile.ValidationReport
}

func (f *fakeCommitter) ApplyProfile(p *profile.Profile) profile.ValidationReport {
	f.applied = p
	return f.report
}

func discardTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestManagerRunSucceedsAndCommits(t *testing.T) {
	inv := buildLabeledInventory(t)
	mgr := NewManager(inv, nil, discardTestLogger())

	doc := `{"Controls": [{"Sensor": "CPU Package", "FanId": "nct6779/1", "Curve": [{"X": 30, "Y": 20}, {"X": 70, "Y": 80}]}]}`

	job, err := mgr.Start(context.Background(), []byte(doc), Options{ProfileName: "imported"})
	require.NoError(t, err)

	select {
	case <-job.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("job did not finish")
	}

	status := job.Status()
	require.Equal(t, StateSucceeded, status.State)
	require.Equal(t, 100, status.Progress)
	require.Equal(t, StageDone, status.Stage)

	committer := &fakeCommitter{report: profile.ValidationReport{Valid: true}}
	profilesDir := t.TempDir()
	path, report, err := mgr.Commit(job.id, profilesDir, committer)
	require.NoError(t, err)
	require.True(t, report.Valid)
	require.FileExists(t, filepath.Join(profilesDir, "imported.json"))
	require.Equal(t, filepath.Join(profilesDir, "imported.json"), path)
	require.NotNil(t, committer.applied)
	require.Equal(t, "imported", committer.applied.Name)
}

func TestManagerRunFailsOnUnresolvedSensor(t *testing.T) {
	inv := buildLabeledInventory(t)
	mgr := NewManager(inv, nil, discardTestLogger())

	doc := `{"Controls": [{"Sensor": "missing", "FanId": "nct6779/1", "Curve": [{"X": 30, "Y": 20}]}]}`
	job, err := mgr.Start(context.Background(), []byte(doc), Options{ProfileName: "x"})
	require.NoError(t, err)

	select {
	case <-job.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("job did not finish")
	}

	status := job.Status()
	require.Equal(t, StateFailed, status.State)
	require.NotEmpty(t, status.Error)
}

func TestManagerCancelStopsRunningJob(t *testing.T) {
	inv := buildLabeledInventory(t)
	mgr := NewManager(inv, nil, discardTestLogger())

	doc := `{"Controls": [
		{"Sensor": "CPU Package", "FanId": "nct6779/1", "Curve": [{"X": 30, "Y": 20}]},
		{"Sensor": "CPU Package", "FanId": "nct6779/1", "Curve": [{"X": 30, "Y": 20}]}
	]}`
	job, err := mgr.Start(context.Background(), []byte(doc), Options{ProfileName: "x"})
	require.NoError(t, err)
	require.NoError(t, mgr.Cancel(job.id))

	select {
	case <-job.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("job did not finish")
	}

	require.Contains(t, []JobState{StateCanceled, StateSucceeded}, job.Status().State)
}

func TestCommitRejectsUnknownJob(t *testing.T) {
	inv := buildLabeledInventory(t)
	mgr := NewManager(inv, nil, discardTestLogger())

	_, _, err := mgr.Commit("no-such-job", t.TempDir(), &fakeCommitter{})
	require.ErrorIs(t, err, ErrJobNotFound)
}
