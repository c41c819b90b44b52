// Package reconciler keeps a client-side task list in sync with the event
// stream of a workspace channel. Events are applied in arrival order and are
// safe to replay: a client that receives the echo of its own write converges
// to the same state.
package reconciler

import (
	"sync"

	"github.com/google/uuid"

	"github.com/velmar/taskrelay-api/pkg/dto"
)

// Reconciler is a local replica of one workspace's tasks. The list keeps
// snapshot order, with tasks created after the snapshot at the front.
type Reconciler struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]dto.TaskResponse
	order []uuid.UUID
}

func New() *Reconciler {
	return &Reconciler{tasks: make(map[uuid.UUID]dto.TaskResponse)}
}

// Reset replaces the replica with a full snapshot, typically the result of a
// re-fetch after (re)subscribing.
func (r *Reconciler) Reset(tasks []dto.TaskResponse) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = make(map[uuid.UUID]dto.TaskResponse, len(tasks))
	r.order = make([]uuid.UUID, 0, len(tasks))
	for _, t := range tasks {
		if _, ok := r.tasks[t.ID]; ok {
			continue
		}
		r.tasks[t.ID] = t
		r.order = append(r.order, t.ID)
	}
}

// Apply folds one event into the replica. Unknown event types are ignored.
// It reports whether the replica changed.
func (r *Reconciler) Apply(event dto.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch event.Type {
	case dto.EventTaskCreated:
		if event.Task == nil {
			return false
		}
		if _, ok := r.tasks[event.Task.ID]; ok {
			return false
		}
		r.insertFront(*event.Task)
		return true

	case dto.EventTaskUpdated:
		if event.Task == nil {
			return false
		}
		// The incoming state wins. An update for a task we never saw is
		// treated as an insert so a missed create does not wedge the replica.
		if _, ok := r.tasks[event.Task.ID]; ok {
			r.tasks[event.Task.ID] = *event.Task
		} else {
			r.insertFront(*event.Task)
		}
		return true

	case dto.EventTaskDeleted:
		if event.TaskID == nil {
			return false
		}
		if _, ok := r.tasks[*event.TaskID]; !ok {
			return false
		}
		delete(r.tasks, *event.TaskID)
		for i, id := range r.order {
			if id == *event.TaskID {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
		return true
	}

	return false
}

func (r *Reconciler) insertFront(t dto.TaskResponse) {
	r.tasks[t.ID] = t
	r.order = append([]uuid.UUID{t.ID}, r.order...)
}

// Get returns the task with the given id, if present.
func (r *Reconciler) Get(id uuid.UUID) (dto.TaskResponse, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	return t, ok
}

// Tasks returns a snapshot of the replica in list order.
func (r *Reconciler) Tasks() []dto.TaskResponse {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]dto.TaskResponse, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.tasks[id])
	}
	return out
}

// Len returns the number of tasks in the replica.
func (r *Reconciler) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}
