// Package jobs implements the job controller and the workers it
// schedules: the order matcher, position revaluer,
// market-data refresher, and trading bot, plus a
// supplemental maintenance job. The controller is hand-rolled rather
// than built on a cron library: each job needs its own start/stop and
// a wait that a stop can interrupt mid-sleep, which a shared cron
// schedule cannot give per-job.
package jobs

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrAlreadyRegistered is returned by Register when a job of the same
// name is already running.
var ErrAlreadyRegistered = errors.New("job already registered and running")

// Task is the unit of recurring work a job performs each tick.
type Task func() error

// Status is a read-only snapshot of one job's run state.
type Status struct {
	Name        string
	Running     bool
	Interval    time.Duration
	LastRunAt   time.Time
	LastErr     string
	RunCount    int64
	ErrorCount  int64
}

type job struct {
	name     string
	task     Task
	interval time.Duration
	cancel   chan struct{}
	done     chan struct{}
	running  bool

	mu         sync.Mutex
	lastRunAt  time.Time
	lastErr    string
	runCount   int64
	errorCount int64
}

// Controller hosts a name -> job mapping and runs one goroutine per
// started job.
type Controller struct {
	mu   sync.Mutex
	jobs map[string]*job
	log  zerolog.Logger
}

// NewController builds an empty controller.
func NewController(log zerolog.Logger) *Controller {
	return &Controller{
		jobs: make(map[string]*job),
		log:  log.With().Str("component", "job_controller").Logger(),
	}
}

// Register adds a job definition. A duplicate name is only replaced
// if the existing job isn't currently running; otherwise it fails
// with ErrAlreadyRegistered.
func (c *Controller) Register(name string, task Task, interval time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.jobs[name]; ok && existing.running {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}

	c.jobs[name] = &job{name: name, task: task, interval: interval}
	return nil
}

// Start spawns the worker goroutine for the named job, or for every
// registered job if name is empty. Starting an already-running job is
// a no-op with a warning.
func (c *Controller) Start(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if name == "" {
		for n := range c.jobs {
			c.startLocked(n)
		}
		return
	}
	c.startLocked(name)
}

func (c *Controller) startLocked(name string) {
	j, ok := c.jobs[name]
	if !ok {
		c.log.Warn().Str("job", name).Msg("start requested for unregistered job")
		return
	}
	if j.running {
		c.log.Warn().Str("job", name).Msg("start requested for already-running job, ignoring")
		return
	}

	j.cancel = make(chan struct{})
	j.done = make(chan struct{})
	j.running = true

	go c.runLoop(j)
}

// runLoop is: while not cancelled { try task; catch -> log ERROR;
// wait(interval or cancel) }. A task panic or error never stops the
// loop; the next tick proceeds regardless.
func (c *Controller) runLoop(j *job) {
	defer close(j.done)

	log := c.log.With().Str("job", j.name).Logger()

	for {
		select {
		case <-j.cancel:
			return
		default:
		}

		func() {
			defer func() {
				if r := recover(); r != nil {
					j.mu.Lock()
					j.errorCount++
					j.lastErr = fmt.Sprintf("panic: %v", r)
					j.mu.Unlock()
					log.Error().Interface("panic", r).Msg("job task panicked")
				}
			}()

			err := j.task()
			j.mu.Lock()
			j.lastRunAt = time.Now()
			j.runCount++
			if err != nil {
				j.errorCount++
				j.lastErr = err.Error()
			} else {
				j.lastErr = ""
			}
			j.mu.Unlock()

			if err != nil {
				log.Error().Err(err).Msg("job task failed")
			}
		}()

		select {
		case <-j.cancel:
			return
		case <-time.After(j.interval):
		}
	}
}

// Stop signals cancellation and joins with a bounded timeout, for the
// named job or all jobs if name is empty. Stopping an already-stopped
// job is a no-op.
func (c *Controller) Stop(name string) {
	c.mu.Lock()
	var targets []*job
	if name == "" {
		for _, j := range c.jobs {
			targets = append(targets, j)
		}
	} else if j, ok := c.jobs[name]; ok {
		targets = append(targets, j)
	}
	c.mu.Unlock()

	for _, j := range targets {
		c.stopOne(j)
	}
}

func (c *Controller) stopOne(j *job) {
	c.mu.Lock()
	if !j.running {
		c.mu.Unlock()
		return
	}
	cancel, done := j.cancel, j.done
	c.mu.Unlock()

	close(cancel)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		c.log.Warn().Str("job", j.name).Msg("stop timed out waiting for job to join")
	}

	c.mu.Lock()
	j.running = false
	c.mu.Unlock()
}

// Remove stops (if running) and deregisters a job. Removing a missing
// job is a no-op.
func (c *Controller) Remove(name string) {
	c.mu.Lock()
	j, ok := c.jobs[name]
	c.mu.Unlock()
	if !ok {
		return
	}

	c.stopOne(j)

	c.mu.Lock()
	delete(c.jobs, name)
	c.mu.Unlock()
}

// Status returns a read-only snapshot of every registered job.
func (c *Controller) Status() map[string]Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]Status, len(c.jobs))
	for name, j := range c.jobs {
		j.mu.Lock()
		out[name] = Status{
			Name:       name,
			Running:    j.running,
			Interval:   j.interval,
			LastRunAt:  j.lastRunAt,
			LastErr:    j.lastErr,
			RunCount:   j.runCount,
			ErrorCount: j.errorCount,
		}
		j.mu.Unlock()
	}
	return out
}
