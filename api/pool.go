package api

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"alignzo-api/domain"
)

// linkJob carries one task's category links to the async sender.
type linkJob struct {
	taskID    string
	userID    string
	userEmail string
	links     []domain.CategoryLink
	added     []string // idempotency keys to roll back if delivery fails
}

var (
	once           sync.Once
	jobs           chan linkJob
	workerCount    int
	jobBuf         int
	sendTimeout    time.Duration
	handoffTimeout time.Duration
	bg             = context.Background()
	globalUpstream Upstream
	globalDeduper  Deduper
	globalLog      *log.Logger
	workerWG       sync.WaitGroup
)

// shutdownLinkSender stops worker goroutines and clears shared state. It is intended for tests.
func shutdownLinkSender() {
	if jobs != nil {
		close(jobs)
		jobs = nil
	}

	workerWG.Wait()

	globalUpstream = nil
	globalDeduper = nil
	globalLog = nil
	workerCount = 0
	jobBuf = 0
	sendTimeout = 0
	handoffTimeout = 0
	once = sync.Once{}
	workerWG = sync.WaitGroup{}
}

func initLinkSender(up Upstream, deduper Deduper, logger *log.Logger) {
	once.Do(func() {
		globalUpstream = up
		globalDeduper = deduper
		if logger == nil {
			panic("Logger is not initialized")
		}
		globalLog = logger

		workerCount = envInt("LINK_WORKERS", 8)
		jobBuf = envInt("LINK_BUFFER", 1024)
		sendTimeout = envDur("LINK_SEND_TIMEOUT", 30*time.Second)
		handoffTimeout = envDur("LINK_HANDOFF_TIMEOUT", 15*time.Millisecond)

		jobs = make(chan linkJob, jobBuf)
		for i := 0; i < workerCount; i++ {
			workerWG.Add(1)
			go worker(i, jobs)
		}
		globalLog.Infof("link sender started, workers: %d, buffer: %d, timeout: %v, handoff: %v", workerCount, jobBuf, sendTimeout, handoffTimeout)
	})
}

func worker(id int, jobCh <-chan linkJob) {
	defer workerWG.Done()
	for j := range jobCh {
		ctx, cancel := context.WithTimeout(bg, sendTimeout)
		err := globalUpstream.SaveTaskCategories(ctx, j.taskID, j.links, j.userEmail)
		cancel()

		if err != nil {
			if globalDeduper != nil {
				for _, k := range j.added {
					if rerr := globalDeduper.Remove(bg, j.userID, k); rerr != nil {
						globalLog.Errorf("dedupe rollback failed, err: %v, key: %s, user: %s", rerr, k, j.userID)
					}
				}
			}
			globalLog.Errorf("task-categories save failed, err: %v, task: %s, links: %d, worker: %d", err, j.taskID, len(j.links), id)
		}
	}
}

func tryEnqueueJob(job linkJob) bool {
	if jobs == nil {
		return false
	}

	if ok, closed := trySendNonBlocking(jobs, job); closed {
		return false
	} else if ok {
		return true
	}

	if handoffTimeout <= 0 {
		return false
	}

	timer := time.NewTimer(handoffTimeout)
	defer timer.Stop()

	ok, closed := sendWithTimer(jobs, job, timer.C)
	if closed {
		return false
	}
	return ok
}

func trySendNonBlocking(ch chan linkJob, job linkJob) (ok bool, closed bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			closed = true
		}
	}()

	select {
	case ch <- job:
		return true, false
	default:
		return false, false
	}
}

func sendWithTimer(ch chan linkJob, job linkJob, timer <-chan time.Time) (ok bool, closed bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			closed = true
		}
	}()

	select {
	case ch <- job:
		return true, false
	case <-timer:
		return false, false
	}
}
