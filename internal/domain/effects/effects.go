// Package effects holds the typed parameters of the visual effects applied to
// sections and cards. Values are rendered into markup as data attributes and
// CSS custom properties; the browser side owns the animation itself.
package effects

import (
	"fmt"
	"strconv"
)

// Direction is where an element slides in from.
type Direction string

// Directions understood by FadeIn. DirectionNone fades in place.
const (
	DirectionNone  Direction = ""
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// Transition is the easing family of an animation.
type Transition string

// Transition kinds.
const (
	TransitionTween  Transition = "tween"
	TransitionSpring Transition = "spring"
)

// slideOffset is the starting distance, in pixels, of a sliding element.
const slideOffset = 100

// FadeIn slides an element in from Direction while fading it in.
type FadeIn struct {
	Direction Direction  `koanf:"direction"`
	Type      Transition `koanf:"type"`
	Delay     float64    `koanf:"delay"`    // seconds
	Duration  float64    `koanf:"duration"` // seconds
	Ease      string     `koanf:"ease"`
}

// Offset returns the starting x/y translation for the direction.
func (f FadeIn) Offset() (x, y int) {
	switch f.Direction {
	case DirectionLeft:
		return slideOffset, 0
	case DirectionRight:
		return -slideOffset, 0
	case DirectionUp:
		return 0, slideOffset
	case DirectionDown:
		return 0, -slideOffset
	}
	return 0, 0
}

// Style renders the CSS custom properties consumed by the fade-in keyframes.
func (f FadeIn) Style() string {
	x, y := f.Offset()
	return fmt.Sprintf("--fade-x:%dpx;--fade-y:%dpx;--fade-delay:%ss;--fade-duration:%ss;--fade-ease:%s",
		x, y, seconds(f.Delay), seconds(f.Duration), f.Ease)
}

// CardFadeIn returns the staggered fade-in of the index-th project card:
// each card starts half a second after the previous one.
func (f FadeIn) CardFadeIn(index int) FadeIn {
	f.Delay = float64(index) * f.Delay
	return f
}

// TextVariant drops a heading in from above.
type TextVariant struct {
	Delay    float64 `koanf:"delay"`
	Duration float64 `koanf:"duration"`
}

// Style renders the CSS custom properties of the heading animation.
func (t TextVariant) Style() string {
	return fmt.Sprintf("--text-delay:%ss;--text-duration:%ss", seconds(t.Delay), seconds(t.Duration))
}

// Tilt is the 3D hover tilt of a project card.
type Tilt struct {
	Max   float64 `koanf:"max"`   // maximum tilt in degrees
	Scale float64 `koanf:"scale"` // hover zoom factor
	Speed int     `koanf:"speed"` // transition speed in milliseconds
}

// Attrs returns the data attributes read by the tilt script.
func (t Tilt) Attrs() map[string]string {
	return map[string]string{
		"data-tilt-max":   seconds(t.Max),
		"data-tilt-scale": seconds(t.Scale),
		"data-tilt-speed": strconv.Itoa(t.Speed),
	}
}

// Timeline styles the experience timeline entries.
type Timeline struct {
	ContentBackground string `koanf:"content_background"`
	ContentColor      string `koanf:"content_color"`
	ArrowBorder       string `koanf:"arrow_border"`
}

// ContentStyle is the inline style of an entry's content box.
func (t Timeline) ContentStyle() string {
	return fmt.Sprintf("background:%s;color:%s", t.ContentBackground, t.ContentColor)
}

// ArrowStyle is the inline style of an entry's pointer arrow.
func (t Timeline) ArrowStyle() string {
	return "border-right:" + t.ArrowBorder
}

// IconStyle is the inline style of an entry's icon disc.
func (t Timeline) IconStyle(bgColor string) string {
	if bgColor == "" {
		bgColor = t.ContentBackground
	}
	return "background:" + bgColor
}

// Config groups every effect of the site.
type Config struct {
	Heading  TextVariant `koanf:"heading"`
	Intro    FadeIn      `koanf:"intro"`
	Card     FadeIn      `koanf:"card"`
	Tilt     Tilt        `koanf:"tilt"`
	Timeline Timeline    `koanf:"timeline"`
}

// Defaults returns the stock effect parameters.
//
//	Heading:  drop in, spring, 1.25s
//	Intro:    fade in place after 0.1s over 1s
//	Card:     slide up, spring, 0.5s stagger per card, 0.75s
//	Tilt:     45 degrees, no zoom, 450ms
//	Timeline: #1d1836 boxes, white text, 7px #232631 arrow
func Defaults() Config {
	return Config{
		Heading: TextVariant{Delay: 0, Duration: 1.25},
		Intro:   FadeIn{Direction: DirectionNone, Type: TransitionTween, Delay: 0.1, Duration: 1, Ease: "ease-out"},
		Card:    FadeIn{Direction: DirectionUp, Type: TransitionSpring, Delay: 0.5, Duration: 0.75, Ease: "ease-out"},
		Tilt:    Tilt{Max: 45, Scale: 1, Speed: 450},
		Timeline: Timeline{
			ContentBackground: "#1d1836",
			ContentColor:      "#fff",
			ArrowBorder:       "7px solid #232631",
		},
	}
}

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
