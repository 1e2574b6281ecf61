package effects

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaults(t *testing.T) {
	Convey("Given the default effects", t, func() {
		cfg := Defaults()

		Convey("Tilt matches the card hover of the site", func() {
			So(cfg.Tilt, ShouldResemble, Tilt{Max: 45, Scale: 1, Speed: 450})
			So(cfg.Tilt.Attrs(), ShouldResemble, map[string]string{
				"data-tilt-max":   "45",
				"data-tilt-scale": "1",
				"data-tilt-speed": "450",
			})
		})

		Convey("Cards slide up with a half second stagger", func() {
			third := cfg.Card.CardFadeIn(2)
			So(third.Delay, ShouldEqual, 1.0)
			So(third.Duration, ShouldEqual, 0.75)
			x, y := third.Offset()
			So(x, ShouldEqual, 0)
			So(y, ShouldEqual, 100)
			So(third.Style(), ShouldEqual, "--fade-x:0px;--fade-y:100px;--fade-delay:1s;--fade-duration:0.75s;--fade-ease:ease-out")
			So(cfg.Card.CardFadeIn(0).Delay, ShouldEqual, 0)
		})

		Convey("Timeline styles use the accent color when present", func() {
			So(cfg.Timeline.ContentStyle(), ShouldEqual, "background:#1d1836;color:#fff")
			So(cfg.Timeline.IconStyle("#383E56"), ShouldEqual, "background:#383E56")
			So(cfg.Timeline.IconStyle(""), ShouldEqual, "background:#1d1836")
			So(cfg.Timeline.ArrowStyle(), ShouldStartWith, "border-right:7px")
		})

		Convey("Headings carry their own timing", func() {
			So(cfg.Heading.Style(), ShouldEqual, "--text-delay:0s;--text-duration:1.25s")
		})
	})
}

func TestFadeInOffsets(t *testing.T) {
	Convey("Each direction starts from the opposite side", t, func() {
		cases := map[Direction][2]int{
			DirectionLeft:  {100, 0},
			DirectionRight: {-100, 0},
			DirectionUp:    {0, 100},
			DirectionDown:  {0, -100},
			DirectionNone:  {0, 0},
		}
		for dir, want := range cases {
			x, y := FadeIn{Direction: dir}.Offset()
			So([2]int{x, y}, ShouldResemble, want)
		}
	})
}
