package view_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/folio/internal/domain/content"
	"github.com/okian/folio/internal/domain/section"
	view "github.com/okian/folio/internal/domain/view"
	. "github.com/smartystreets/goconvey/convey"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type removed struct {
	mu      sync.Mutex
	reasons map[string]view.Reason
}

func (r *removed) record(v *view.View, reason view.Reason) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons[v.ID] = reason
}

func TestView(t *testing.T) {
	Convey("Given a new view", t, func() {
		v := view.New(context.Background(), "v1", section.WithPerPage(3))

		Convey("Then its sections start pending in page order", func() {
			loaders := v.Loaders()
			So(len(loaders), ShouldEqual, 3)
			So(loaders[0], ShouldEqual, v.Experience)
			So(loaders[2], ShouldEqual, v.Works)
			status, _ := v.Works.Status()
			So(status, ShouldEqual, content.StatusPending)
			So(v.Closed(), ShouldBeFalse)
		})

		Convey("Then waiting gives up when the deadline passes", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer cancel()
			So(v.Wait(ctx), ShouldBeFalse)
		})

		Convey("When it is closed", func() {
			v.Close()
			v.Close()

			Convey("Then its context is done", func() {
				So(v.Closed(), ShouldBeTrue)
				So(v.Context().Err(), ShouldEqual, context.Canceled)
			})
		})
	})
}

func TestInMemoryStore(t *testing.T) {
	Convey("Given a store of at most three views", t, func() {
		clk := &clock{now: time.Unix(1700000000, 0)}
		rec := &removed{reasons: map[string]view.Reason{}}
		ctx := context.Background()
		s := view.NewInMemoryStore(
			view.WithMaxViews(3),
			view.WithTTL(time.Minute),
			view.WithClock(clk.Now),
			view.WithOnRemove(rec.record),
		)

		views := make([]*view.View, 4)
		for i := range views {
			views[i] = view.New(ctx, fmt.Sprintf("v%d", i))
		}
		for _, v := range views[:3] {
			s.Add(ctx, v)
		}
		So(s.Len(), ShouldEqual, 3)

		Convey("When a fourth view is added", func() {
			_, ok := s.Get(ctx, "v0")
			So(ok, ShouldBeTrue)
			s.Add(ctx, views[3])

			Convey("Then the least recently used one is evicted and closed", func() {
				So(s.Len(), ShouldEqual, 3)
				_, ok := s.Get(ctx, "v1")
				So(ok, ShouldBeFalse)
				So(rec.reasons["v1"], ShouldEqual, view.ReasonEvicted)
				So(views[1].Closed(), ShouldBeTrue)
				_, ok = s.Get(ctx, "v0")
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When views sit idle past the TTL", func() {
			clk.Advance(30 * time.Second)
			_, _ = s.Get(ctx, "v2")
			clk.Advance(45 * time.Second)

			Convey("Then a sweep removes only the idle ones", func() {
				So(s.Sweep(ctx), ShouldEqual, 2)
				So(s.Len(), ShouldEqual, 1)
				So(rec.reasons["v0"], ShouldEqual, view.ReasonExpired)
				So(rec.reasons["v1"], ShouldEqual, view.ReasonExpired)
				So(views[2].Closed(), ShouldBeFalse)
			})

			Convey("Then Get treats an expired view as missing", func() {
				_, ok := s.Get(ctx, "v0")
				So(ok, ShouldBeFalse)
				So(views[0].Closed(), ShouldBeTrue)
			})
		})

		Convey("When a view is removed", func() {
			So(s.Remove(ctx, "v1"), ShouldBeTrue)
			So(s.Remove(ctx, "v1"), ShouldBeFalse)

			Convey("Then it is unmounted", func() {
				So(rec.reasons["v1"], ShouldEqual, view.ReasonDeleted)
				So(views[1].Closed(), ShouldBeTrue)
				So(s.Len(), ShouldEqual, 2)
			})
		})

		Convey("When the store is cleared", func() {
			So(s.Clear(ctx), ShouldEqual, 3)

			Convey("Then every view is closed", func() {
				So(s.Len(), ShouldEqual, 0)
				for _, v := range views[:3] {
					So(v.Closed(), ShouldBeTrue)
					So(rec.reasons[v.ID], ShouldEqual, view.ReasonShutdown)
				}
			})
		})
	})

	Convey("Given an unbounded store without expiry", t, func() {
		ctx := context.Background()
		s := view.NewInMemoryStore(view.WithMaxViews(0), view.WithTTL(0))
		for i := 0; i < 50; i++ {
			s.Add(ctx, view.New(ctx, fmt.Sprintf("v%d", i)))
		}
		So(s.Len(), ShouldEqual, 50)
		So(s.Sweep(ctx), ShouldEqual, 0)
	})

	Convey("Given concurrent access", t, func() {
		ctx := context.Background()
		s := view.NewInMemoryStore(view.WithMaxViews(10))
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id := fmt.Sprintf("v%d", i)
				s.Add(ctx, view.New(ctx, id))
				s.Get(ctx, id)
				if i%3 == 0 {
					s.Remove(ctx, id)
				}
			}(i)
		}
		wg.Wait()
		So(s.Len(), ShouldBeLessThanOrEqualTo, 10)
	})
}
