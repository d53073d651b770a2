// Package taskmanager provides an in-process facility for running named
// background tasks on a bounded pool of workers. Callers submit a callable
// under a task name and immediately receive a handle to its eventual result;
// at most one execution is ever live for a given name. Terminal task records
// are retained for introspection and evicted by age and by a history cap.
package taskmanager
