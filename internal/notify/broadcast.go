package notify

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type Report struct {
	ID      string
	Total   int
	Sent    int
	Failed  int
	Skipped int
}

// Broadcaster fans a message out to many chats with a worker pool, pacing
// sends with a shared rate limiter. Each recipient is isolated: a failed send
// is counted and the batch goes on.
type Broadcaster struct {
	notifier *Notifier
	limiter  *rate.Limiter
	workers  int
	log      *logrus.Entry
	wg       sync.WaitGroup
}

func NewBroadcaster(n *Notifier, perSecond float64, workers int, log *logrus.Entry) *Broadcaster {
	if perSecond <= 0 {
		perSecond = 20
	}
	if workers <= 0 {
		workers = 1
	}
	return &Broadcaster{
		notifier: n,
		limiter:  rate.NewLimiter(rate.Limit(perSecond), 1),
		workers:  workers,
		log:      log.WithField("component", "broadcaster"),
	}
}

// Broadcast sends msg to every recipient except exclude and blocks until the
// batch is done or ctx is cancelled. Recipients not reached before
// cancellation are reported as skipped.
func (b *Broadcaster) Broadcast(ctx context.Context, recipients []int64, msg Message, exclude ...int64) Report {
	report := Report{ID: uuid.NewString()}
	skip := make(map[int64]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}

	jobs := make(chan int64)
	var sent, failed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chatID := range jobs {
				if err := b.limiter.Wait(ctx); err != nil {
					continue
				}
				if err := b.notifier.send(ctx, chatID, msg); err != nil {
					failed.Add(1)
					b.log.WithFields(logrus.Fields{
						"broadcast_id": report.ID,
						"chat_id":      chatID,
						"error":        err,
					}).Debug("Broadcast delivery failed")
					continue
				}
				sent.Add(1)
			}
		}()
	}

	for _, id := range recipients {
		if _, excluded := skip[id]; excluded {
			continue
		}
		report.Total++
		select {
		case jobs <- id:
		case <-ctx.Done():
		}
	}
	close(jobs)
	wg.Wait()

	report.Sent = int(sent.Load())
	report.Failed = int(failed.Load())
	report.Skipped = report.Total - report.Sent - report.Failed
	b.log.WithFields(logrus.Fields{
		"broadcast_id": report.ID,
		"total":        report.Total,
		"sent":         report.Sent,
		"failed":       report.Failed,
		"skipped":      report.Skipped,
	}).Info("Broadcast finished")
	return report
}

// Go runs Broadcast in the background. Wait blocks until every background
// broadcast has returned.
func (b *Broadcaster) Go(ctx context.Context, recipients []int64, msg Message, exclude ...int64) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.Broadcast(ctx, recipients, msg, exclude...)
	}()
}

func (b *Broadcaster) Wait() {
	b.wg.Wait()
}
