package worker_test

import (
	"context"
	"testing"
	"time"

	queue "github.com/ngage-io/tally/internal/adapters/mq/queue"
	worker "github.com/ngage-io/tally/internal/adapters/mq/worker"
	repository "github.com/ngage-io/tally/internal/adapters/repository"
	dedupe "github.com/ngage-io/tally/internal/domain/dedupe"
	model "github.com/ngage-io/tally/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

type fixture struct {
	ctx     context.Context
	cancel  context.CancelFunc
	queue   *queue.InMemoryQueue
	scores  repository.ScoreStore
	rubrics repository.RubricStore
	deduper dedupe.Deduper
	rubric  model.ScoringRubric
}

func newFixture() *fixture {
	ctx, cancel := context.WithCancel(context.Background())
	f := &fixture{
		ctx:     ctx,
		cancel:  cancel,
		queue:   queue.NewInMemoryQueue(queue.WithCapacity(16)),
		scores:  repository.NewMemScoreStore(),
		rubrics: repository.NewMemRubricStore(),
		deduper: dedupe.NewInMemoryDeduper(),
	}

	rubric, err := f.rubrics.Create(ctx, model.ScoringRubric{
		Name: "Judging",
		Criteria: []model.ScoringCriterion{
			{Key: "design", Name: "Design", Type: model.CriterionNumeric, MaxScore: 50, Weight: 1, Required: true},
			{Key: "demo", Name: "Demo", Type: model.CriterionBoolean, MaxScore: 10, Weight: 1},
		},
	})
	if err != nil {
		panic(err)
	}
	f.rubric = rubric
	return f
}

func (f *fixture) start() *worker.IngestWorker {
	w := worker.NewIngestWorker(f.queue, f.scores, f.rubrics, f.deduper, worker.WithName("test-worker"))
	go w.Run(f.ctx)
	return w
}

func TestWorkerIngestsValidSubmission(t *testing.T) {
	Convey("Given a running worker", t, func() {
		f := newFixture()
		defer f.cancel()
		f.start()

		Convey("When a valid submission is enqueued", func() {
			key := dedupe.Key("s1", "judge-1", "v1")
			f.deduper.SeenAndRecord(f.ctx, key)
			ok := f.queue.Enqueue(f.ctx, worker.Submission{
				SubmissionID: "s1",
				JudgeID:      "judge-1",
				EventID:      "ev-1",
				RubricID:     f.rubric.ID,
				Values:       map[string]any{"design": 42.0, "demo": "yes"},
				DedupeKey:    key,
				ReceivedAt:   time.Now(),
			})
			So(ok, ShouldBeTrue)

			Convey("Then a normalized record lands in the store", func() {
				So(waitFor(func() bool { return f.scores.Count(f.ctx) == 1 }), ShouldBeTrue)

				records, err := f.scores.GetBySubmissionID(f.ctx, "s1")
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 1)
				So(records[0].Values["design"].Number, ShouldEqual, 42.0)
				So(records[0].Values["demo"].Bool, ShouldBeTrue)
			})

			Convey("And the rubric becomes immutable", func() {
				So(waitFor(func() bool { return f.scores.Count(f.ctx) == 1 }), ShouldBeTrue)

				_, err := f.rubrics.Update(f.ctx, f.rubric)
				So(err, ShouldEqual, repository.ErrRubricInUse)
			})
		})
	})
}

func TestWorkerRejectsInvalidSubmission(t *testing.T) {
	Convey("Given a running worker", t, func() {
		f := newFixture()
		defer f.cancel()
		f.start()

		Convey("When a submission misses a required criterion", func() {
			key := dedupe.Key("s1", "judge-1", "v1")
			f.deduper.SeenAndRecord(f.ctx, key)
			f.queue.Enqueue(f.ctx, worker.Submission{
				SubmissionID: "s1",
				JudgeID:      "judge-1",
				EventID:      "ev-1",
				RubricID:     f.rubric.ID,
				Values:       map[string]any{"demo": true},
				DedupeKey:    key,
			})

			Convey("Then no record is stored and the key is released", func() {
				So(waitFor(func() bool { return f.deduper.Size() == 0 }), ShouldBeTrue)
				So(f.scores.Count(f.ctx), ShouldEqual, 0)
			})
		})

		Convey("When a submission names an unknown rubric", func() {
			key := dedupe.Key("s2", "judge-1", "v1")
			f.deduper.SeenAndRecord(f.ctx, key)
			f.queue.Enqueue(f.ctx, worker.Submission{
				SubmissionID: "s2",
				JudgeID:      "judge-1",
				EventID:      "ev-1",
				RubricID:     "missing",
				Values:       map[string]any{"design": 10.0},
				DedupeKey:    key,
			})

			Convey("Then the submission is dropped and retryable", func() {
				So(waitFor(func() bool { return f.deduper.Size() == 0 }), ShouldBeTrue)
				So(f.scores.Count(f.ctx), ShouldEqual, 0)
			})
		})
	})
}

func TestWorkerWithoutRubric(t *testing.T) {
	Convey("Given a running worker", t, func() {
		f := newFixture()
		defer f.cancel()
		f.start()

		Convey("When a submission carries no rubric", func() {
			f.queue.Enqueue(f.ctx, worker.Submission{
				SubmissionID: "s1",
				JudgeID:      "judge-1",
				EventID:      "ev-1",
				Values:       map[string]any{"overall": 88.0, "note": "ignored", "passed": true},
			})

			Convey("Then numbers and booleans pass through untouched", func() {
				So(waitFor(func() bool { return f.scores.Count(f.ctx) == 1 }), ShouldBeTrue)

				records, err := f.scores.GetBySubmissionID(f.ctx, "s1")
				So(err, ShouldBeNil)
				So(records[0].Values["overall"].Number, ShouldEqual, 88.0)
				So(records[0].Values["passed"].Bool, ShouldBeTrue)
				_, kept := records[0].Values["note"]
				So(kept, ShouldBeFalse)
			})
		})
	})
}

func TestPoolStop(t *testing.T) {
	Convey("Given a running pool", t, func() {
		f := newFixture()
		defer f.cancel()
		pool := worker.NewPool(4, f.queue, f.scores, f.rubrics, f.deduper)
		pool.Start(f.ctx)

		f.queue.Enqueue(f.ctx, worker.Submission{
			SubmissionID: "s1",
			JudgeID:      "judge-1",
			EventID:      "ev-1",
			Values:       map[string]any{"overall": 50.0},
		})
		So(waitFor(func() bool { return f.scores.Count(f.ctx) == 1 }), ShouldBeTrue)

		Convey("When the pool is stopped", func() {
			start := time.Now()
			pool.Stop()
			elapsed := time.Since(start)

			Convey("Then all workers exit promptly", func() {
				So(elapsed, ShouldBeLessThan, 2*time.Second)
			})

			Convey("And later submissions are no longer processed", func() {
				f.queue.Enqueue(f.ctx, worker.Submission{
					SubmissionID: "s1",
					JudgeID:      "judge-2",
					EventID:      "ev-1",
					Values:       map[string]any{"overall": 60.0},
				})
				time.Sleep(100 * time.Millisecond)
				So(f.scores.Count(f.ctx), ShouldEqual, 1)
			})
		})
	})
}

func TestPoolShutdown(t *testing.T) {
	Convey("Given a running pool", t, func() {
		f := newFixture()
		defer f.cancel()
		pool := worker.NewPool(4, f.queue, f.scores, f.rubrics, f.deduper)
		pool.Start(f.ctx)
		So(pool.Size(), ShouldEqual, 4)

		Convey("When submissions are enqueued and the pool shuts down", func() {
			for i := 0; i < 8; i++ {
				f.queue.Enqueue(f.ctx, worker.Submission{
					SubmissionID: "s1",
					JudgeID:      "judge-" + string(rune('a'+i)),
					EventID:      "ev-1",
					Values:       map[string]any{"overall": float64(i)},
				})
			}
			err := pool.Shutdown(context.Background())

			Convey("Then the backlog drains before workers exit", func() {
				So(err, ShouldBeNil)
				So(f.queue.IsClosed(), ShouldBeTrue)
				So(f.scores.Count(f.ctx), ShouldEqual, 8)
			})
		})
	})
}
