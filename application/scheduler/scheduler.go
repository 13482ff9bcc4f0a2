// application/scheduler/scheduler.go
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rsi-radar/pkg/logger"
	"rsi-radar/pkg/utils"
)

const (
	defaultTick    = time.Second
	defaultTimeout = 5 * time.Minute
	timeLayout     = "2006-01-02 15:04:05 UTC"
)

// Schedule определяет расписание задачи
type Schedule struct {
	kind     scheduleKind
	hour     int
	minute   int
	interval time.Duration
}

type scheduleKind int

const (
	kindDaily    scheduleKind = iota // раз в сутки в HH:MM UTC
	kindInterval                     // каждые N единиц времени
)

// DailyAt создает расписание "каждый день в HH:MM UTC"
func DailyAt(hour, minute int) Schedule {
	return Schedule{kind: kindDaily, hour: hour, minute: minute}
}

// Every создает расписание "каждые N времени"
func Every(d time.Duration) Schedule {
	return Schedule{kind: kindInterval, interval: d}
}

func (s Schedule) String() string {
	if s.kind == kindDaily {
		return fmt.Sprintf("daily at %02d:%02d UTC", s.hour, s.minute)
	}
	return "every " + s.interval.String()
}

// nextRun вычисляет время следующего запуска относительно now
func (s Schedule) nextRun(now time.Time) time.Time {
	now = now.UTC()
	switch s.kind {
	case kindDaily:
		next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, time.UTC)
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}
		return next
	case kindInterval:
		return now.Add(s.interval)
	default:
		return now.Add(24 * time.Hour)
	}
}

// Job описывает одну планируемую задачу
type Job struct {
	Name     string
	Schedule Schedule
	Handler  func(ctx context.Context) error
	// RunOnStart - первый запуск сразу после Start, не дожидаясь расписания
	RunOnStart bool
	// Timeout ограничивает один запуск; 0 - таймаут планировщика
	Timeout time.Duration

	mu      sync.Mutex
	running bool
	nextRun time.Time
	lastRun time.Time
	lastDur time.Duration
	lastErr error
	runs    int
	skipped int
}

// JobStatus снапшот состояния задачи
type JobStatus struct {
	Name     string        `json:"name"`
	Schedule string        `json:"schedule"`
	Running  bool          `json:"running"`
	NextRun  time.Time     `json:"nextRun"`
	LastRun  time.Time     `json:"lastRun"`
	LastTook time.Duration `json:"lastTook"`
	LastErr  string        `json:"lastError,omitempty"`
	Runs     int           `json:"runs"`
	Skipped  int           `json:"skipped"`
}

// Status возвращает текущее состояние задачи
func (j *Job) Status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	st := JobStatus{
		Name:     j.Name,
		Schedule: j.Schedule.String(),
		Running:  j.running,
		NextRun:  j.nextRun,
		LastRun:  j.lastRun,
		LastTook: j.lastDur,
		Runs:     j.runs,
		Skipped:  j.skipped,
	}
	if j.lastErr != nil {
		st.LastErr = j.lastErr.Error()
	}
	return st
}

// Options настраивает планировщик
type Options struct {
	Now     func() time.Time // источник времени, по умолчанию time.Now
	Tick    time.Duration    // период проверки расписания
	Timeout time.Duration    // таймаут запуска по умолчанию
}

// Scheduler запускает задачи по расписанию. Запуски одной задачи не перекрываются:
// если предыдущий еще идет, очередной пропускается.
type Scheduler struct {
	now     func() time.Time
	tick    time.Duration
	timeout time.Duration

	mu     sync.RWMutex
	jobs   []*Job
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New создает новый планировщик
func New(opts Options) *Scheduler {
	s := &Scheduler{now: opts.Now, tick: opts.Tick, timeout: opts.Timeout}
	if s.now == nil {
		s.now = time.Now
	}
	if s.tick <= 0 {
		s.tick = defaultTick
	}
	if s.timeout <= 0 {
		s.timeout = defaultTimeout
	}
	return s
}

// Register добавляет задачу в планировщик.
// Должен вызываться до Start().
func (s *Scheduler) Register(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if job.RunOnStart {
		job.nextRun = now
	} else {
		job.nextRun = job.Schedule.nextRun(now)
	}
	s.jobs = append(s.jobs, job)

	logger.Info("📋 [Scheduler] Зарегистрирована задача %q (%s), первый запуск в %s",
		job.Name, job.Schedule, job.nextRun.Format(timeLayout))
}

// Start запускает цикл планировщика. Отмена ctx или Stop останавливает цикл
// и отменяет контексты выполняющихся задач.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancel = cancel
	count := len(s.jobs)
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(ctx)
	}()
	logger.Info("✅ [Scheduler] Запущен (%d задач)", count)
}

// Stop останавливает планировщик и ждёт завершения текущих задач
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	s.mu.RUnlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	logger.Info("🛑 [Scheduler] Остановлен")
}

// Jobs возвращает статус всех задач
func (s *Scheduler) Jobs() []JobStatus {
	statuses := make([]JobStatus, 0)
	for _, j := range s.snapshot() {
		statuses = append(statuses, j.Status())
	}
	return statuses
}

func (s *Scheduler) snapshot() []*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jobs := make([]*Job, len(s.jobs))
	copy(jobs, s.jobs)
	return jobs
}

// loop - основной цикл: проверяет, какие задачи нужно запустить
func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	s.dispatch(ctx)
	for {
		select {
		case <-ticker.C:
			s.dispatch(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// dispatch запускает задачи, у которых наступило время
func (s *Scheduler) dispatch(ctx context.Context) {
	now := s.now().UTC()
	for _, job := range s.snapshot() {
		job.mu.Lock()
		due := !now.Before(job.nextRun)
		switch {
		case !due:
		case job.running:
			job.skipped++
			job.nextRun = job.Schedule.nextRun(now)
			logger.Warn("⏭️ [Scheduler] Задача %q еще выполняется, запуск пропущен", job.Name)
			due = false
		default:
			job.running = true
		}
		job.mu.Unlock()

		if due {
			s.wg.Add(1)
			go s.run(ctx, job)
		}
	}
}

// run выполняет одну задачу и обновляет её состояние
func (s *Scheduler) run(ctx context.Context, job *Job) {
	defer s.wg.Done()

	timeout := job.Timeout
	if timeout <= 0 {
		timeout = s.timeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger.Info("▶️  [Scheduler] Запуск задачи %q", job.Name)
	start := s.now()

	err := safeCall(runCtx, job.Handler)
	elapsed := s.now().Sub(start)

	job.mu.Lock()
	job.running = false
	job.lastRun = start
	job.lastDur = elapsed
	job.lastErr = err
	job.runs++
	job.nextRun = job.Schedule.nextRun(s.now())
	nextRun := job.nextRun
	job.mu.Unlock()

	if err != nil {
		logger.Error("❌ [Scheduler] Задача %q завершилась с ошибкой за %s: %v", job.Name, utils.FormatDuration(elapsed), err)
		return
	}
	logger.Info("✅ [Scheduler] Задача %q выполнена за %s. Следующий запуск: %s",
		job.Name, utils.FormatDuration(elapsed), nextRun.Format(timeLayout))
}

func safeCall(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}
