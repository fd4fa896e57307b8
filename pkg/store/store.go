// Package store owns the board's task collection for one running session.
//
// A Store is created explicitly and handed to whatever needs it. Every
// mutation that changes the collection is followed by a synchronous save
// through the injected Persister.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/harrisonrobin/taskboard/pkg/logging"
	"github.com/harrisonrobin/taskboard/pkg/model"
)

// Persister loads and saves the full task collection.
type Persister interface {
	// Load returns the stored tasks. found is false when nothing was ever
	// saved.
	Load() (tasks []model.Task, found bool, err error)
	Save(tasks []model.Task) error
}

// Seeder produces demo tasks for an empty board.
type Seeder func() []model.Task

// Store owns the task collection and saves it through a Persister after
// every change.
type Store struct {
	mu      sync.Mutex
	tasks   []model.Task
	persist Persister
	seed    Seeder
	log     *logrus.Entry
}

// Option configures a Store.
type Option func(*Store)

// WithSeeder sets the generator run by Initialize when the board is empty.
func WithSeeder(seed Seeder) Option {
	return func(s *Store) { s.seed = seed }
}

// WithLogger replaces the store's component logger.
func WithLogger(log *logrus.Entry) Option {
	return func(s *Store) { s.log = log }
}

// New returns an empty store backed by p. Call Initialize to load it.
func New(p Persister, opts ...Option) *Store {
	s := &Store{
		persist: p,
		log:     logging.Component("store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize loads the persisted collection. When nothing is stored, or the
// stored collection is empty, the seeder runs and its output is saved.
// Decode failures are returned as-is; there is no fallback to seeding.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, found, err := s.persist.Load()
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}

	if found && len(tasks) > 0 {
		s.tasks = tasks
		s.log.Debugf("Event ID: STORE_LOADED, Description: Loaded %d tasks", len(tasks))
		return nil
	}

	s.tasks = nil
	if s.seed == nil {
		return nil
	}
	s.tasks = s.seed()
	s.log.Infof("Event ID: STORE_SEEDED, Description: Seeded %d demo tasks", len(s.tasks))
	return s.save()
}

// AddTask creates a task from in, appends it and saves.
func (s *Store) AddTask(in model.TaskInput) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := model.NewTask(in)
	s.tasks = append(s.tasks, task)
	s.log.WithField("task", task.ID).Debug("Event ID: TASK_ADDED, Description: Task added")
	return task.Clone(), s.save()
}

// DeleteTask removes the task with id. Unknown ids are ignored.
func (s *Store) DeleteTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	s.log.WithField("task", id).Debug("Event ID: TASK_DELETED, Description: Task deleted")
	return s.save()
}

// EditTask merges patch onto the task with id. Credits are left as they were
// at creation. Unknown ids are ignored.
func (s *Store) EditTask(id string, patch model.TaskPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	s.tasks[i] = model.ApplyPatch(s.tasks[i], patch)
	s.log.WithField("task", id).Debug("Event ID: TASK_EDITED, Description: Task edited")
	return s.save()
}

// CompleteTask flips the completed flag of the task with id. Unknown ids are
// ignored.
func (s *Store) CompleteTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	s.log.WithFields(logrus.Fields{"task": id, "completed": s.tasks[i].Completed}).
		Debug("Event ID: TASK_TOGGLED, Description: Task completion toggled")
	return s.save()
}

// TasksByDateRange returns the tasks dated within [start, end], in
// collection order.
func (s *Store) TasksByDateRange(start, end time.Time) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Task
	for _, t := range s.tasks {
		if !t.Date.Before(start) && !t.Date.After(end) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Tasks returns a copy of the whole collection.
func (s *Store) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Task looks a single task up by id.
func (s *Store) Task(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Task{}, false
	}
	return s.tasks[i].Clone(), true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *Store) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// save must be called with mu held. The in-memory change is kept even when
// the save fails.
func (s *Store) save() error {
	if err := s.persist.Save(s.tasks); err != nil {
		s.log.Warnf("Event ID: STORE_SAVE_FAILED, Description: %v", err)
		return fmt.Errorf("failed to save tasks: %w", err)
	}
	return nil
}
