package labeling

import (
	"fmt"

	"blobscope/internal/binimg"

	"github.com/theodesp/unionfind"
)

// Conflict records that two provisional labels touch and therefore name
// the same component. A is always the smaller label.
type Conflict struct {
	A, B int
}

// Equivalence maps provisional labels to resolved labels. Index 0 is
// background and always maps to 0.
type Equivalence []int

// TwoPass labels components with the classic raster algorithm: provisional
// labels from a causal neighborhood, union-find resolution of the recorded
// conflicts, then a remap scan.
type TwoPass struct {
	Options Options
}

// Label implements Labeler.
func (t *TwoPass) Label(img *binimg.Image) (*LabelMap, error) {
	m, count, conflicts, err := t.Provisional(img)
	if err != nil {
		return nil, err
	}

	eq := Resolve(count, conflicts)
	if err := t.Options.checkCapacity(eq.Count()); err != nil {
		return nil, err
	}
	if err := eq.Remap(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Provisional runs the first pass. Each foreground pixel looks only at its
// already-visited neighbors (W, NW, N, NE). With no labeled neighbor it gets
// a fresh label; otherwise it takes the smallest neighbor label and a
// conflict is recorded against every other distinct neighbor label.
// It returns the provisional map, the number of provisional labels and the
// deduplicated conflicts in discovery order.
func (t *TwoPass) Provisional(img *binimg.Image) (*LabelMap, int, []Conflict, error) {
	if err := img.Validate(); err != nil {
		return nil, 0, nil, err
	}

	m := NewLabelMap(img.Width, img.Height)
	next := 0
	seen := make(map[Conflict]struct{})
	var conflicts []Conflict
	var found [len(causal4)]int

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			if !img.IsForeground(x, y) {
				continue
			}

			n := 0
			smallest := 0
			for _, d := range causal4 {
				l := m.At(x+d[0], y+d[1])
				if l == 0 {
					continue
				}
				found[n] = l
				n++
				if smallest == 0 || l < smallest {
					smallest = l
				}
			}

			if n == 0 {
				next++
				m.pix[y*m.Width+x] = next
				continue
			}

			m.pix[y*m.Width+x] = smallest
			for _, l := range found[:n] {
				if l == smallest {
					continue
				}
				c := Conflict{A: smallest, B: l}
				if _, dup := seen[c]; dup {
					continue
				}
				seen[c] = struct{}{}
				conflicts = append(conflicts, c)
			}
		}
	}

	return m, next, conflicts, nil
}

// Resolve merges provisional labels 1..count along the conflict edges and
// numbers the resulting classes densely, in order of their smallest member.
func Resolve(count int, conflicts []Conflict) Equivalence {
	uf := unionfind.New(count + 1)
	for _, c := range conflicts {
		uf.Union(c.A, c.B)
	}

	eq := make(Equivalence, count+1)
	final := make([]int, count+1) // union-find root -> resolved label
	next := 0
	for l := 1; l <= count; l++ {
		root := uf.Root(l)
		if final[root] == 0 {
			next++
			final[root] = next
		}
		eq[l] = final[root]
	}
	return eq
}

// Count returns the number of resolved labels.
func (e Equivalence) Count() int {
	n := 0
	for _, l := range e {
		if l > n {
			n = l
		}
	}
	return n
}

// IsIdentity reports whether every label maps to itself.
func (e Equivalence) IsIdentity() bool {
	for i, l := range e {
		if i != l {
			return false
		}
	}
	return true
}

// Remap rewrites every labeled pixel of m through the table in place.
func (e Equivalence) Remap(m *LabelMap) error {
	for i, l := range m.pix {
		if l == 0 {
			continue
		}
		if l >= len(e) {
			return fmt.Errorf("labeling: provisional label %d outside equivalence table of %d", l, len(e)-1)
		}
		m.pix[i] = e[l]
	}
	return nil
}
