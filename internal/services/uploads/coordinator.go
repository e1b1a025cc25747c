// Package uploads tracks in-flight upload tasks so clients can show
// per-file progress. Tasks are local to the process; the durable outcome
// of an upload lives in the photo feed.
package uploads

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/snapfest/snapfest/internal/model"
)

// DefaultRetention is how long finished tasks stay visible before being
// swept from the list.
const DefaultRetention = 3 * time.Second

// Coordinator is a registry of upload tasks with progress fanout.
type Coordinator struct {
	mu     sync.Mutex
	tasks  map[model.UploadTaskID]*model.UploadTask
	order  []model.UploadTaskID
	timers map[model.UploadTaskID]*time.Timer

	subscribers map[int]func([]model.UploadTask)
	nextSub     int

	retention time.Duration
	closed    bool
}

// New creates a Coordinator that sweeps finished tasks after retention.
// A non-positive retention falls back to DefaultRetention.
func New(retention time.Duration) *Coordinator {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Coordinator{
		tasks:       make(map[model.UploadTaskID]*model.UploadTask),
		timers:      make(map[model.UploadTaskID]*time.Timer),
		subscribers: make(map[int]func([]model.UploadTask)),
		retention:   retention,
	}
}

// Begin registers a new uploading task and returns its id.
func (c *Coordinator) Begin(fileName string) model.UploadTaskID {
	id := model.UploadTaskID(uuid.NewString())

	c.mu.Lock()
	c.tasks[id] = &model.UploadTask{
		ID:       id,
		FileName: fileName,
		Status:   model.UploadStatusUploading,
	}
	c.order = append(c.order, id)
	c.mu.Unlock()

	c.notify()
	return id
}

// SetProgress updates a task's progress percentage, clamped to 0..100.
func (c *Coordinator) SetProgress(id model.UploadTaskID, percent float64) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	c.mu.Lock()
	task, ok := c.tasks[id]
	if !ok {
		c.mu.Unlock()
		return model.ErrUploadTaskNotFound
	}
	task.Progress = percent
	c.mu.Unlock()

	c.notify()
	return nil
}

// Complete marks a task finished and schedules its removal.
func (c *Coordinator) Complete(id model.UploadTaskID) error {
	return c.finish(id, func(task *model.UploadTask) {
		task.Status = model.UploadStatusCompleted
		task.Progress = 100
	})
}

// Fail marks a task errored and schedules its removal.
func (c *Coordinator) Fail(id model.UploadTaskID, cause error) error {
	msg := "upload failed"
	if cause != nil {
		msg = cause.Error()
	}
	return c.finish(id, func(task *model.UploadTask) {
		task.Status = model.UploadStatusError
		task.Error = msg
	})
}

func (c *Coordinator) finish(id model.UploadTaskID, apply func(*model.UploadTask)) error {
	c.mu.Lock()
	task, ok := c.tasks[id]
	if !ok {
		c.mu.Unlock()
		return model.ErrUploadTaskNotFound
	}
	apply(task)
	if !c.closed {
		c.timers[id] = time.AfterFunc(c.retention, func() {
			c.remove(id)
		})
	}
	c.mu.Unlock()

	c.notify()
	return nil
}

// Tasks returns the current tasks in the order they began.
func (c *Coordinator) Tasks() []model.UploadTask {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn to receive the task list on every change. The
// returned function unsubscribes.
func (c *Coordinator) Subscribe(fn func([]model.UploadTask)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = fn
	c.mu.Unlock()

	c.notify()

	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

// Close cancels all pending sweeps. Tasks stay as they are.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for id, timer := range c.timers {
		timer.Stop()
		delete(c.timers, id)
	}
}

func (c *Coordinator) remove(id model.UploadTaskID) {
	c.mu.Lock()
	if _, ok := c.tasks[id]; !ok {
		c.mu.Unlock()
		return
	}
	delete(c.tasks, id)
	delete(c.timers, id)
	for i, other := range c.order {
		if other == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	c.notify()
}

func (c *Coordinator) snapshotLocked() []model.UploadTask {
	tasks := make([]model.UploadTask, 0, len(c.order))
	for _, id := range c.order {
		if task, ok := c.tasks[id]; ok {
			tasks = append(tasks, *task)
		}
	}
	return tasks
}

func (c *Coordinator) notify() {
	c.mu.Lock()
	snapshot := c.snapshotLocked()
	fns := make([]func([]model.UploadTask), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}
