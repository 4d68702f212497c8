// Package processor hosts the workers that drive workflow executions.  Every
// worker consumes kickoff tasks from the queue owned by the orchestrator and
// spawns one walk goroutine per execution, so a delayed execution suspends
// only itself while the worker keeps consuming.
package processor
