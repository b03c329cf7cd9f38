package shutdown

import "time"

// Trigger names used in Result.Trigger besides OS signal names.
const TriggerProgrammatic = "programmatic"

// TaskResult is the outcome of one registered task.
type TaskResult struct {
	Name     string
	Duration time.Duration
	// Err is nil when the task returned nil or stopped because of cancellation.
	Err error
}

// Result describes a completed (or timed out) shutdown sequence.
type Result struct {
	// Trigger is the signal name, or TriggerProgrammatic.
	Trigger string

	// Duration of the sequence, from trigger to the last task.
	Duration time.Duration

	// Tasks in registration order.
	Tasks []TaskResult

	// Pending lists tasks still running when the timeout fired.
	Pending []string
}

// Failed reports whether any task failed or did not finish.
func (r *Result) Failed() bool {
	return len(r.FailedTasks()) > 0 || len(r.Pending) > 0
}

// FailedTasks returns the names of the tasks that returned an error.
func (r *Result) FailedTasks() []string {
	var failed []string
	for _, tr := range r.Tasks {
		if tr.Err != nil {
			failed = append(failed, tr.Name)
		}
	}
	return failed
}
