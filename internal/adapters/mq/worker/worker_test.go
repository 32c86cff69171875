package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/Ritik-JS/alumni-careerpath/internal/adapters/mq/queue"
	worker "github.com/Ritik-JS/alumni-careerpath/internal/adapters/mq/worker"
	model "github.com/Ritik-JS/alumni-careerpath/internal/domain/model"
	logging "github.com/Ritik-JS/alumni-careerpath/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// recordingHandler tracks handled jobs and whether any two overlapped.
type recordingHandler struct {
	mu         sync.Mutex
	handled    []string
	running    int
	overlapped bool
	errs       map[string]error
	ctxErrs    []error
	delay      time.Duration
	panicOn    string
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{errs: make(map[string]error)}
}

func (h *recordingHandler) Handle(ctx context.Context, job model.Job) error {
	h.mu.Lock()
	h.running++
	if h.running > 1 {
		h.overlapped = true
	}
	h.mu.Unlock()

	if h.delay > 0 {
		time.Sleep(h.delay)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.running--
	h.handled = append(h.handled, job.ID)
	h.ctxErrs = append(h.ctxErrs, ctx.Err())
	if job.ID == h.panicOn {
		panic("boom")
	}
	return h.errs[job.ID]
}

func (h *recordingHandler) snapshot() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.handled...)
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a queue and a worker", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		h := newRecordingHandler()
		w := worker.NewInMemoryWorker(q, h, worker.WithName("jobs"), worker.WithLogger(logging.Get()))
		convey.So(w, convey.ShouldNotBeNil)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		convey.Convey("When several jobs are queued", func() {
			h.delay = 10 * time.Millisecond
			go w.Run(ctx)
			for _, id := range []string{"a", "b", "c"} {
				convey.So(q.Enqueue(ctx, model.Job{ID: id, Kind: model.JobTrain}), convey.ShouldBeNil)
			}

			convey.Convey("Then they run one at a time in order", func() {
				convey.So(waitFor(func() bool { return len(h.snapshot()) == 3 }), convey.ShouldBeTrue)
				convey.So(h.snapshot(), convey.ShouldResemble, []string{"a", "b", "c"})
				convey.So(h.overlapped, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When a job fails or panics", func() {
			h.errs["bad"] = errors.New("insufficient data")
			h.panicOn = "worse"
			go w.Run(ctx)
			convey.So(q.Enqueue(ctx, model.Job{ID: "bad"}), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, model.Job{ID: "worse"}), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, model.Job{ID: "good"}), convey.ShouldBeNil)

			convey.Convey("Then the worker keeps going", func() {
				convey.So(waitFor(func() bool { return len(h.snapshot()) == 3 }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the run context is cancelled mid-job", func() {
			h.delay = 50 * time.Millisecond
			go w.Run(ctx)
			convey.So(q.Enqueue(ctx, model.Job{ID: "long"}), convey.ShouldBeNil)
			time.Sleep(10 * time.Millisecond)
			cancel()

			convey.Convey("Then the job finishes on a detached context", func() {
				convey.So(waitFor(func() bool { return len(h.snapshot()) == 1 }), convey.ShouldBeTrue)
				h.mu.Lock()
				defer h.mu.Unlock()
				convey.So(h.ctxErrs[0], convey.ShouldBeNil)
			})
		})

		convey.Convey("When shutting down", func() {
			go w.Run(ctx)
			err := w.Shutdown(context.Background())

			convey.Convey("Then it stops gracefully and a second call is safe", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the queue is closed", func() {
			convey.So(q.Close(), convey.ShouldBeNil)
			go w.Run(ctx)

			convey.Convey("Then Run returns", func() {
				select {
				case <-w.Done():
					convey.So(true, convey.ShouldBeTrue)
				case <-time.After(time.Second):
					convey.So("worker still running", convey.ShouldBeEmpty)
				}
			})
		})
	})
}

func TestHandlerFunc(t *testing.T) {
	convey.Convey("Given a HandlerFunc", t, func() {
		var got model.Job
		f := worker.HandlerFunc(func(_ context.Context, j model.Job) error {
			got = j
			return nil
		})

		convey.Convey("Then Handle delegates to it", func() {
			convey.So(f.Handle(context.Background(), model.Job{ID: "x"}), convey.ShouldBeNil)
			convey.So(got.ID, convey.ShouldEqual, "x")
		})
	})
}
