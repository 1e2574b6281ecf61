package paging_test

import (
	"testing"

	"github.com/okian/folio/internal/domain/paging"
	. "github.com/smartystreets/goconvey/convey"
)

func items(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPaginator(t *testing.T) {
	Convey("Given 13 works and 6 per page", t, func() {
		p := paging.New(6)
		list := items(13)

		Convey("Then there are 3 pages and page 1 holds the first 6", func() {
			So(p.Current(), ShouldEqual, 1)
			So(p.TotalPages(len(list)), ShouldEqual, 3)
			So(paging.Slice(p, list), ShouldResemble, []int{0, 1, 2, 3, 4, 5})
			So(p.Pages(len(list)), ShouldResemble, []int{1, 2, 3})
		})

		Convey("When jumping to page 3", func() {
			p.Paginate(3)

			Convey("Then exactly one item is visible", func() {
				So(paging.Slice(p, list), ShouldResemble, []int{12})
			})

			Convey("And advancing is a no-op", func() {
				So(p.Next(len(list)), ShouldBeFalse)
				So(p.Next(len(list)), ShouldBeFalse)
				So(p.Current(), ShouldEqual, 3)
			})
		})

		Convey("When retreating on page 1", func() {
			moved := p.Prev()

			Convey("Then the page does not change", func() {
				So(moved, ShouldBeFalse)
				So(p.Current(), ShouldEqual, 1)
			})
		})

		Convey("When walking forward and back", func() {
			So(p.Next(len(list)), ShouldBeTrue)
			So(paging.Slice(p, list), ShouldResemble, []int{6, 7, 8, 9, 10, 11})
			So(p.Prev(), ShouldBeTrue)
			So(p.Current(), ShouldEqual, 1)
		})
	})

	Convey("Given any list length", t, func() {
		p := paging.New(6)
		for n := 0; n <= 40; n++ {
			total := p.TotalPages(n)
			So(total, ShouldEqual, (n+5)/6)
			for page := 1; page <= total; page++ {
				p.Paginate(page)
				want := n - (page-1)*6
				if want > 6 {
					want = 6
				}
				So(len(paging.Slice(p, items(n))), ShouldEqual, want)
			}
		}
	})

	Convey("Given an empty list", t, func() {
		p := paging.New(6)

		Convey("Then there are no pages and nothing is visible", func() {
			So(p.TotalPages(0), ShouldEqual, 0)
			So(p.Pages(0), ShouldBeEmpty)
			So(paging.Slice(p, []string{}), ShouldBeEmpty)
			So(p.Next(0), ShouldBeFalse)
			So(p.Current(), ShouldEqual, 1)
		})
	})

	Convey("Given a page left past the end by a shrinking list", t, func() {
		p := paging.New(6)
		p.Paginate(3)

		Convey("Then the visible slice is empty instead of panicking", func() {
			So(paging.Slice(p, items(4)), ShouldBeEmpty)
		})
	})

	Convey("Given an unvalidated jump below page 1", t, func() {
		p := paging.New(6)
		p.Paginate(0)

		Convey("Then bounds clip to the start of the list", func() {
			start, end := p.Bounds(10)
			So(start, ShouldEqual, 0)
			So(end, ShouldEqual, 0)
		})
	})

	Convey("Given a non-positive page size", t, func() {
		So(paging.New(0).PerPage(), ShouldEqual, paging.DefaultPerPage)
	})
}
