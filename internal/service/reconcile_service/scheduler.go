package reconcile_service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/arena_errors"
)

// Start launches the scheduler goroutines. They stop when ctx is done;
// Wait blocks until they have.
func (r *ReconcileService) Start(ctx context.Context) {
	if r.DB == nil {
		panic("reconcile service expects non-nil database")
	}
	if r.Interval <= 0 {
		r.Interval = defaultInterval
	}
	if r.QueueBuffer <= 0 {
		r.QueueBuffer = defaultQueueBuffer
	}

	logger.Info("initializing reconcile run queue with buffer size ", r.QueueBuffer)
	r.runQueue = make(chan string, r.QueueBuffer)
	r.inFlight = make(map[string]*Run)
	r.runs = make(map[uuid.UUID]*Run)

	logger.Info("starting a 'launch' goroutine")
	r.wg.Add(1)
	go r.launch(ctx)

	logger.Infof("starting a ticker with interval %v", r.Interval)
	r.wg.Add(1)
	go r.tick(ctx)

	if r.Queue != nil {
		logger.Info("starting a trigger queue consumer")
		r.wg.Add(1)
		go r.consume(ctx)
	}
}

func (r *ReconcileService) Wait() {
	r.wg.Wait()
}

// Trigger asks for a reconcile of the domain. With a trigger queue any
// instance may pick it up and the returned run id is uuid.Nil, otherwise it
// runs here.
func (r *ReconcileService) Trigger(ctx context.Context, domainID string) (uuid.UUID, error) {
	if domainID == "" {
		return uuid.Nil, fmt.Errorf("%w, domain id is required", arena_errors.ErrValidation)
	}
	if r.Queue != nil {
		return uuid.Nil, r.Queue.Push(ctx, domainID)
	}
	return r.enqueue(domainID)
}

// enqueue returns the run that will reconcile the domain. A domain already
// queued or running is not queued again.
func (r *ReconcileService) enqueue(domainID string) (uuid.UUID, error) {
	if r.runQueue == nil {
		return uuid.Nil, fmt.Errorf(
			"%w, reconcile scheduler is not started",
			arena_errors.ErrInternal,
		)
	}

	r.runLock.Lock()
	defer r.runLock.Unlock()

	if run, ok := r.inFlight[domainID]; ok {
		logger.Debugf("domain %s already has run %v in flight", domainID, run.RunID)
		return run.RunID, nil
	}

	run := &Run{
		RunID:     uuid.New(),
		DomainID:  domainID,
		QueueTime: time.Now(),
		State:     StateQueued,
	}

	select {
	case r.runQueue <- domainID:
	default:
		err := fmt.Errorf(
			"%w, reconcile queue is full, dropping domain %s",
			arena_errors.ErrInternal,
			domainID,
		)
		logger.Warn(err)
		return uuid.Nil, err
	}

	r.inFlight[domainID] = run
	r.runs[run.RunID] = run
	return run.RunID, nil
}

func (r *ReconcileService) launch(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case domainID := <-r.runQueue:
			r.wg.Add(1)
			go r.execute(ctx, domainID)
		}
	}
}

func (r *ReconcileService) execute(ctx context.Context, domainID string) {
	defer r.wg.Done()

	r.runLock.Lock()
	run, ok := r.inFlight[domainID]
	if !ok {
		r.runLock.Unlock()
		logger.Errorf("domain %s is absent in the in-flight map while launching", domainID)
		return
	}
	run.State = StateRunning
	run.LaunchTime = time.Now()
	r.runLock.Unlock()

	runLogger := run.getLogger()
	runLogger.Debug("reconcile run launched")

	results, err := r.RunDomain(ctx, domainID)

	r.runLock.Lock()
	defer r.runLock.Unlock()

	run.Results = results
	run.FinishTime = time.Now()
	if err != nil {
		run.State = StateFailed
		run.Error = err.Error()
		runLogger.Errorf("reconcile run failed, retried on next schedule, %v", err)
	} else {
		run.State = StateCompleted
		runLogger.Info("reconcile run completed")
	}

	delete(r.inFlight, domainID)
	r.finished = append(r.finished, run.RunID)
	// forget the oldest runs
	for len(r.finished) > maxFinishedRunsKept {
		delete(r.runs, r.finished[0])
		r.finished = r.finished[1:]
	}
}

func (r *ReconcileService) tick(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.scheduleAll(ctx)
		}
	}
}

// scheduleAll queues every domain that has contests or problems
func (r *ReconcileService) scheduleAll(ctx context.Context) {
	domainIDs, err := r.DB.GetDomainIDs(ctx)
	if err != nil {
		logger.Errorf("cannot list domains to reconcile, %v", err)
		return
	}
	for _, domainID := range domainIDs {
		// a full queue is logged by enqueue, the domain is picked up next tick
		_, _ = r.enqueue(domainID)
	}
}

func (r *ReconcileService) consume(ctx context.Context) {
	defer r.wg.Done()
	for {
		if ctx.Err() != nil {
			return
		}

		domainID, err := r.Queue.Pop(ctx, redisPopTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			logger.Error(err)
			// do not spin on a broken connection
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if domainID == "" {
			continue
		}

		_, _ = r.enqueue(domainID)
	}
}

// GetRun returns a copy of a queued, running or recently finished run
func (r *ReconcileService) GetRun(runID uuid.UUID) (Run, error) {
	r.runLock.RLock()
	defer r.runLock.RUnlock()

	run, ok := r.runs[runID]
	if !ok {
		return Run{}, fmt.Errorf(
			"%w, run with id %v does not exist",
			arena_errors.ErrNotFound,
			runID,
		)
	}
	return *run, nil
}

func (run *Run) getLogger() *logrus.Entry {
	return logger.WithFields(
		logrus.Fields{
			"run_id":    run.RunID,
			"domain_id": run.DomainID,
		},
	)
}
