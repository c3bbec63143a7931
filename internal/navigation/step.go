package navigation

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// AllSteps is the step used by surfaces that show every reveal at once,
// such as the print view.
const AllSteps = math.MaxInt

var braceStripper = strings.NewReplacer("{", "", "}", "")

// StepAt normalises the "at" attribute of a reveal element as it arrives
// from markup: a string (braces stripped), a number, or a single-key object
// left behind by some markdown parsers. Anything unparseable yields 1.
func StepAt(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 1
		}
		return int(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(braceStripper.Replace(t)))
		if err != nil {
			return 1
		}
		return n
	case map[string]any:
		if len(t) == 0 {
			return 1
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return StepAt(keys[0])
	case fmt.Stringer:
		return StepAt(t.String())
	default:
		return 1
	}
}

// Revealed reports whether an element bound to step at is visible at the
// current step. In hide mode the element is visible only before at.
func Revealed(at, current int, hide bool) bool {
	if hide {
		return current < at
	}
	return current >= at
}
