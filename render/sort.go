package render

import (
	"sort"

	"github.com/tsawler/pagecrop/model"
)

// DefaultLineTolerance is how far apart, in pixels, two elements may sit
// vertically and still be read as one line
const DefaultLineTolerance = 5

// SortByPosition puts elements into reading order: top to bottom, and left
// to right within a line. A line starts at its topmost element and takes
// every element within DefaultLineTolerance pixels below it. Equal
// elements keep their order, and sorting sorted output changes nothing.
func SortByPosition(elems []model.RenderedElement) {
	sort.SliceStable(elems, func(i, j int) bool { return elems[i].Y < elems[j].Y })

	for start := 0; start < len(elems); {
		end := start + 1
		for end < len(elems) && elems[end].Y-elems[start].Y <= DefaultLineTolerance {
			end++
		}
		line := elems[start:end]
		sort.SliceStable(line, func(i, j int) bool {
			if line[i].X != line[j].X {
				return line[i].X < line[j].X
			}
			return line[i].Y < line[j].Y
		})
		start = end
	}
}
