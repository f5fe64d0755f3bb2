// SPDX-License-Identifier: EPL-2.0

package manager

// Category groups effects for recent-activity checks. Each category keeps
// only its latest trigger.
type Category int

const (
	CategoryRiser Category = iota
	CategoryFilter
	CategoryVolume
	CategorySample
	CategorySpeed

	numCategories
)

var categoryNames = [numCategories]string{
	CategoryRiser:  "riser",
	CategoryFilter: "filter",
	CategoryVolume: "volume",
	CategorySample: "sample",
	CategorySpeed:  "speed",
}

func (c Category) String() string {
	if c < 0 || c >= numCategories {
		return "invalid"
	}
	return categoryNames[c]
}

// triggers holds the render-clock frame of the last trigger per category.
type triggers struct {
	frame [numCategories]int
	set   [numCategories]bool
}

func (t *triggers) record(c Category, frame int) {
	t.frame[c] = frame
	t.set[c] = true
}

func (t *triggers) clear(c Category) {
	t.frame[c] = 0
	t.set[c] = false
}

func (t *triggers) last(c Category) (int, bool) {
	return t.frame[c], t.set[c]
}
