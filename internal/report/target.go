package report

import (
	"math"

	"github.com/okian/gridiron/internal/domain/model"
)

// checkdownT is when the quarterback gives up waiting for someone to open.
const checkdownT = 0.5

// target is the receiver a run throws to and when.
type target struct {
	receiver model.ReceiverID
	t        float64
	opened   bool
}

// pickTarget throws to the eligible receiver that comes open first, ties
// going to the canonical receiver order. When nobody opens it checks down
// to whoever is most open at checkdownT.
func pickTarget(firstOpen map[model.ReceiverID]float64, eligible func(model.ReceiverID) bool, openAt func(model.ReceiverID, float64) (float64, error)) (target, error) {
	best := target{t: math.Inf(1)}
	for _, r := range model.Receivers {
		t, ok := firstOpen[r]
		if !ok || !eligible(r) {
			continue
		}
		if t < best.t {
			best = target{receiver: r, t: t, opened: true}
		}
	}
	if best.opened {
		return best, nil
	}

	best = target{t: checkdownT}
	score := -1.0
	for _, r := range model.Receivers {
		if !eligible(r) {
			continue
		}
		s, err := openAt(r, checkdownT)
		if err != nil {
			return target{}, err
		}
		if s > score {
			best.receiver, score = r, s
		}
	}
	if best.receiver == "" {
		return target{}, ErrNoTarget
	}
	return best, nil
}
