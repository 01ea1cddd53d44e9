package scheduler

import (
	"sync"
	"time"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("hql.scheduler")

type Task struct {
	Name    string
	Execute func() error
}

// Scheduler runs tasks one at a time on a single goroutine. High-priority
// tasks wait for room in the queue; periodic tasks are dropped for a tick
// when it is full.
type Scheduler struct {
	taskQueue chan Task
	stopChan  chan struct{}
	done      chan struct{}

	mu      sync.Mutex
	running bool
	stopped bool

	periodic sync.WaitGroup
}

// NewScheduler creates a new Scheduler with the specified queue size
func NewScheduler(queueSize int) *Scheduler {
	return &Scheduler{
		taskQueue: make(chan Task, max(queueSize, 1)),
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// RunScheduler starts the scheduler loop
func (s *Scheduler) RunScheduler() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || s.stopped {
		return
	}
	s.running = true

	go func() {
		defer close(s.done)
		for {
			select {
			case task := <-s.taskQueue:
				run(task)
			case <-s.stopChan:
				// nothing is enqueued after stopChan closes
				for {
					select {
					case task := <-s.taskQueue:
						log.Debugf("draining task: %s", task.Name)
						run(task)
					default:
						return
					}
				}
			}
		}
	}()
}

func run(task Task) {
	log.Debugf("executing %s task", task.Name)
	if err := task.Execute(); err != nil {
		log.Errorf("task %s failed: %s", task.Name, err)
	}
}

// SchedulePeriodicTask enqueues task now and then on every interval until
// the scheduler stops.
func (s *Scheduler) SchedulePeriodicTask(interval time.Duration, task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.enqueue(task, false)

	s.periodic.Add(1)
	go func() {
		defer s.periodic.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.mu.Lock()
				if !s.stopped {
					s.enqueue(task, false)
				}
				s.mu.Unlock()
			case <-s.stopChan:
				return
			}
		}
	}()
}

// ScheduleHighPriorityTask runs a task asap. It reports false when the
// scheduler has already stopped.
func (s *Scheduler) ScheduleHighPriorityTask(task Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	return s.enqueue(task, true)
}

// enqueue must be called with mu held.
func (s *Scheduler) enqueue(task Task, wait bool) bool {
	if wait {
		s.taskQueue <- task
		return true
	}
	select {
	case s.taskQueue <- task:
		return true
	default:
		log.Debugf("skipped scheduling %s: queue is full", task.Name)
		return false
	}
}

// StopScheduler runs the queued tasks and stops the scheduler. It is safe
// to call more than once.
func (s *Scheduler) StopScheduler() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	running := s.running
	close(s.stopChan)
	s.mu.Unlock()

	s.periodic.Wait()
	if running {
		<-s.done
	}
	log.Debug("scheduler stopped")
}
