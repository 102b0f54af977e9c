package signal

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ironsheep/curve-digitizer-mcp/internal/option"
)

// ErrLengthMismatch is returned when the X and Y series differ in length.
var ErrLengthMismatch = errors.New("x and y series differ in length")

// Peak is an accepted local maximum.
type Peak struct {
	// Index is the position in the series passed to FindPeaks.
	Index int     `json:"index"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// PeakParams controls candidate filtering.
type PeakParams struct {
	// MinHeight drops candidates below it when set.
	MinHeight option.Float `json:"min_height"`

	// MinDistance is the minimum X separation between accepted peaks.
	// Zero, negative and NaN disable the check.
	MinDistance float64 `json:"min_distance"`
}

// FindPeaks returns local maxima of y filtered by height and separation.
//
// Parameters:
//   - x: Physical X positions, normally strictly ascending.
//   - y: Values to search, same length as x.
//   - params: Height threshold and minimum X separation.
//
// Returns:
//   - []Peak: Accepted peaks sorted ascending by Index. Never nil.
//   - error: ErrLengthMismatch if len(x) != len(y).
//
// # Algorithm
//
//  1. Candidates: index i in [1, n-2] with y[i] > y[i-1] and y[i] >= y[i+1].
//     A flat top reports its first sample only.
//  2. Height: drop candidates with y < MinHeight when MinHeight is set.
//  3. Separation: visit candidates tallest first (ties by lower index) and
//     accept one only if |x - x_k| >= MinDistance for every accepted k.
//  4. Sort accepted peaks by index.
func FindPeaks(x, y []float64, params PeakParams) ([]Peak, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(x), len(y))
	}

	n := len(y)
	candidates := make([]Peak, 0)
	for i := 1; i < n-1; i++ {
		if y[i] > y[i-1] && y[i] >= y[i+1] {
			candidates = append(candidates, Peak{Index: i, X: x[i], Y: y[i]})
		}
	}

	if minHeight, ok := params.MinHeight.Get(); ok {
		kept := candidates[:0]
		for _, c := range candidates {
			if c.Y >= minHeight {
				kept = append(kept, c)
			}
		}
		candidates = kept
	}

	// Candidates are in index order, so a stable sort breaks height ties by index.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Y > candidates[j].Y
	})

	minDist := params.MinDistance
	if math.IsNaN(minDist) || minDist < 0 {
		minDist = 0
	}

	accepted := make([]Peak, 0, len(candidates))
	for _, c := range candidates {
		ok := true
		for _, k := range accepted {
			if math.Abs(c.X-k.X) < minDist {
				ok = false
				break
			}
		}
		if ok {
			accepted = append(accepted, c)
		}
	}

	sort.Slice(accepted, func(i, j int) bool {
		return accepted[i].Index < accepted[j].Index
	})
	return accepted, nil
}
