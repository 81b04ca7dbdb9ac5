package store

import "minitodo/internal/task"

// UndoBuffer holds the batch removed by the most recent delete-type
// operation. A new capture replaces the previous batch entirely.
type UndoBuffer struct {
	batch []task.Task
}

func (u *UndoBuffer) Capture(tasks []task.Task) {
	u.batch = make([]task.Task, len(tasks))
	for i, t := range tasks {
		t.Selected = false
		u.batch[i] = t
	}
}

// Restore returns the batch and empties the buffer.
func (u *UndoBuffer) Restore() []task.Task {
	b := u.batch
	u.batch = nil
	return b
}

func (u *UndoBuffer) Len() int {
	return len(u.batch)
}

func (u *UndoBuffer) Pending() bool {
	return len(u.batch) > 0
}
