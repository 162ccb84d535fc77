package common

import (
	"strings"

	"github.com/tanema/gween/ease"
)

// Bezier evaluates a one-dimensional Bezier curve with fixed endpoints 0 and 1 at parameter t.
// The interior control points are supplied by the caller; an empty slice gives a straight line.
// Evaluation uses de Casteljau's algorithm so any number of control points is supported.
//
// Parameters:
//   - t: the curve parameter, clamped to [0, 1]
//   - controlPoints: the interior control points between the implicit 0 and 1 endpoints
//
// Returns:
//   - float32: the curve value at t
func Bezier(t float32, controlPoints []float32) float32 {
	t = Clamp01(t)
	n := len(controlPoints) + 2
	var stack [8]float32
	var pts []float32
	if n <= len(stack) {
		pts = stack[:n]
	} else {
		pts = make([]float32, n)
	}
	pts[0] = 0
	copy(pts[1:], controlPoints)
	pts[n-1] = 1

	for k := n - 1; k > 0; k-- {
		for i := 0; i < k; i++ {
			pts[i] = pts[i] + (pts[i+1]-pts[i])*t
		}
	}
	return pts[0]
}

var easings = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"inquad":       ease.InQuad,
	"outquad":      ease.OutQuad,
	"inoutquad":    ease.InOutQuad,
	"outinquad":    ease.OutInQuad,
	"incubic":      ease.InCubic,
	"outcubic":     ease.OutCubic,
	"inoutcubic":   ease.InOutCubic,
	"outincubic":   ease.OutInCubic,
	"inquart":      ease.InQuart,
	"outquart":     ease.OutQuart,
	"inoutquart":   ease.InOutQuart,
	"outinquart":   ease.OutInQuart,
	"inquint":      ease.InQuint,
	"outquint":     ease.OutQuint,
	"inoutquint":   ease.InOutQuint,
	"outinquint":   ease.OutInQuint,
	"insine":       ease.InSine,
	"outsine":      ease.OutSine,
	"inoutsine":    ease.InOutSine,
	"outinsine":    ease.OutInSine,
	"inexpo":       ease.InExpo,
	"outexpo":      ease.OutExpo,
	"inoutexpo":    ease.InOutExpo,
	"outinexpo":    ease.OutInExpo,
	"incirc":       ease.InCirc,
	"outcirc":      ease.OutCirc,
	"inoutcirc":    ease.InOutCirc,
	"outincirc":    ease.OutInCirc,
	"inelastic":    ease.InElastic,
	"outelastic":   ease.OutElastic,
	"inoutelastic": ease.InOutElastic,
	"outinelastic": ease.OutInElastic,
	"inback":       ease.InBack,
	"outback":      ease.OutBack,
	"inoutback":    ease.InOutBack,
	"outinback":    ease.OutInBack,
	"inbounce":     ease.InBounce,
	"outbounce":    ease.OutBounce,
	"inoutbounce":  ease.InOutBounce,
	"outinbounce":  ease.OutInBounce,
}

// EaseByName looks up a named easing curve. Names are case-insensitive and match the
// gween easing function names (for example "InOutQuad" or "OutCubic").
//
// Parameters:
//   - name: the easing function name
//
// Returns:
//   - ease.TweenFunc: the easing function
//   - bool: false when no curve has that name
func EaseByName(name string) (ease.TweenFunc, bool) {
	fn, ok := easings[strings.ToLower(strings.TrimSpace(name))]
	return fn, ok
}

// Ease evaluates a normalized easing curve at t in [0, 1].
//
// Parameters:
//   - fn: the easing function
//   - t: the normalized progress, clamped to [0, 1]
//
// Returns:
//   - float32: the eased value, 0 at t = 0 and 1 at t = 1
func Ease(fn ease.TweenFunc, t float32) float32 {
	return fn(Clamp01(t), 0, 1, 1)
}
