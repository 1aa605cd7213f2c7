// Package tween eases a value between two numbers over an animation.
package tween

import (
	"fmt"
	"sort"
	"time"

	"github.com/aretw0/scripter"
	"github.com/aretw0/scripter/pkg/domain"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Animator starts animations. *scripter.Env implements it.
type Animator interface {
	Animate(fn scripter.FrameFunc) *scripter.Animation
}

// Apply receives the eased value once per frame. Returning an error rejects
// the animation; returning domain.ErrStop ends it early.
type Apply func(value float64) error

var easings = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"inQuad":       ease.InQuad,
	"outQuad":      ease.OutQuad,
	"inOutQuad":    ease.InOutQuad,
	"inCubic":      ease.InCubic,
	"outCubic":     ease.OutCubic,
	"inOutCubic":   ease.InOutCubic,
	"inSine":       ease.InSine,
	"outSine":      ease.OutSine,
	"inOutSine":    ease.InOutSine,
	"inExpo":       ease.InExpo,
	"outExpo":      ease.OutExpo,
	"inOutExpo":    ease.InOutExpo,
	"inBack":       ease.InBack,
	"outBack":      ease.OutBack,
	"outBounce":    ease.OutBounce,
	"outElastic":   ease.OutElastic,
	"inOutElastic": ease.InOutElastic,
}

// Easing returns the easing function registered under name.
func Easing(name string) (ease.TweenFunc, error) {
	fn, ok := easings[name]
	if !ok {
		return nil, fmt.Errorf("unknown easing %q", name)
	}
	return fn, nil
}

// Names lists the registered easing names in lexical order.
func Names() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run animates from → to over d. apply sees from on the first frame and
// exactly to on the last one, after which the animation resolves. A nil
// easing is linear.
func Run(a Animator, from, to float64, d time.Duration, fn ease.TweenFunc, apply Apply) *scripter.Animation {
	if fn == nil {
		fn = ease.Linear
	}
	if d <= 0 {
		return a.Animate(func(float64) error {
			if err := apply(to); err != nil {
				return err
			}
			return domain.ErrStop
		})
	}

	tw := gween.New(float32(from), float32(to), float32(d.Seconds()), fn)
	return a.Animate(func(t float64) error {
		v, finished := tw.Set(float32(t))
		value := float64(v)
		if finished {
			value = to
		}
		if err := apply(value); err != nil {
			return err
		}
		if finished {
			return domain.ErrStop
		}
		return nil
	})
}
