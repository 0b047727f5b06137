package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/ngage-io/tally/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestKey(t *testing.T) {
	Convey("Given submission and judge identifiers", t, func() {
		Convey("When building the compound key", func() {
			key := dedupe.Key("sub-1", "judge-9", "abc123")

			Convey("Then it should join all parts", func() {
				So(key, ShouldEqual, "sub-1:judge-9:abc123")
			})
		})

		Convey("When the digest differs", func() {
			Convey("Then the keys differ, so edits are not deduplicated", func() {
				So(dedupe.Key("s", "j", "v1"), ShouldNotEqual, dedupe.Key("s", "j", "v2"))
			})
		})
	})
}

func TestSeenAndRecord(t *testing.T) {
	Convey("Given a fresh deduper", t, func() {
		d := dedupe.NewInMemoryDeduper()
		ctx := context.Background()

		Convey("When recording a new key", func() {
			seen := d.SeenAndRecord(ctx, "k1")

			Convey("Then it should not have been seen", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And recording it again reports it as seen", func() {
				So(d.SeenAndRecord(ctx, "k1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When unrecording a key", func() {
			d.SeenAndRecord(ctx, "k1")
			d.Unrecord(ctx, "k1")

			Convey("Then it can be recorded again", func() {
				So(d.SeenAndRecord(ctx, "k1"), ShouldBeFalse)
			})
		})

		Convey("When unrecording an unknown key", func() {
			d.Unrecord(ctx, "missing")

			Convey("Then size stays at zero", func() {
				So(d.Size(), ShouldEqual, 0)
			})
		})
	})
}

func TestBoundedEviction(t *testing.T) {
	Convey("Given a deduper bounded to three keys", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		ctx := context.Background()

		Convey("When a fourth key arrives", func() {
			for i := 0; i < 4; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("k%d", i))
			}

			Convey("Then the oldest key is evicted", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "k0"), ShouldBeFalse) // evicted, so recordable again
				So(d.SeenAndRecord(ctx, "k3"), ShouldBeTrue)
			})
		})
	})
}

func TestConcurrentAccess(t *testing.T) {
	Convey("Given concurrent writers", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		ctx := context.Background()

		Convey("When many goroutines record the same key", func() {
			const goroutines = 32
			var wg sync.WaitGroup
			var firsts atomic32

			for i := 0; i < goroutines; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if !d.SeenAndRecord(ctx, "shared") {
						firsts.inc()
					}
				}()
			}
			wg.Wait()

			Convey("Then exactly one records it first", func() {
				So(firsts.load(), ShouldEqual, 1)
				So(d.Size(), ShouldEqual, 1)
			})
		})
	})
}

type atomic32 struct {
	mu sync.Mutex
	n  int
}

func (a *atomic32) inc() {
	a.mu.Lock()
	a.n++
	a.mu.Unlock()
}

func (a *atomic32) load() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.n
}
