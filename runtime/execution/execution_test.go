package execution

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecution_Lifecycle(t *testing.T) {
	exec := New("e1", "wf1", "corr-1", map[string]interface{}{"a": 1})
	assert.Equal(t, StatusPending, exec.Status)
	assert.False(t, exec.IsTerminal())

	exec.Start("s1")
	assert.Equal(t, StatusRunning, exec.Status)
	assert.Equal(t, "s1", exec.CurrentStep)

	exec.AppendLog(&LogEntry{StepID: "s1", Status: LogCompleted})
	exec.Complete()
	assert.Equal(t, StatusCompleted, exec.Status)
	assert.True(t, exec.IsTerminal())
	assert.NotNil(t, exec.CompletedAt)
	assert.Len(t, exec.Log, 1)
}

func TestExecution_CancelIdempotent(t *testing.T) {
	exec := New("e1", "wf1", "", nil)
	assert.True(t, exec.Cancel())
	assert.False(t, exec.Cancel())
	assert.Equal(t, StatusCancelled, exec.Status)

	done := New("e2", "wf1", "", nil)
	done.Complete()
	assert.False(t, done.Cancel())
	assert.Equal(t, StatusCompleted, done.Status)
}

func TestExecution_MergeOutput(t *testing.T) {
	exec := New("e1", "wf1", "", map[string]interface{}{"seed": true})
	exec.MergeOutput("s1", map[string]interface{}{"total": 10})
	exec.MergeOutput("s2", "scalar")
	snapshot := exec.ContextSnapshot()
	assert.Equal(t, true, snapshot["seed"])
	assert.Equal(t, 10, snapshot["total"])
	assert.Equal(t, "scalar", snapshot["result_s2"])
}

func TestExecution_CloneIndependence(t *testing.T) {
	exec := New("e1", "wf1", "", map[string]interface{}{"a": 1})
	exec.AppendLog(&LogEntry{StepID: "s1", Status: LogStarted})
	clone := exec.Clone()
	clone.Context["a"] = 2
	clone.Log[0].StepID = "changed"
	assert.Equal(t, 1, exec.Context["a"])
	assert.Equal(t, "s1", exec.Log[0].StepID)
}
