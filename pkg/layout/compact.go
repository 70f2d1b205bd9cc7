package layout

import (
	"cmp"
	"slices"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/index"
)

// compactRows tightens each row so no node sits further right than
// NodeWidth+SiblingSpacing past its left neighbour. A clamped person drags
// an adjacent partner on its right along by the same delta.
func compactRows(l *Layout, ix *index.Index, o Options) {
	rank := make(map[string]int, len(l.Order))
	rows := make(map[float64][]string)
	var ys []float64
	for i, id := range l.Order {
		rank[id] = i
		y := l.Positions[id].Y
		if _, ok := rows[y]; !ok {
			ys = append(ys, y)
		}
		rows[y] = append(rows[y], id)
	}
	slices.Sort(ys)

	step := o.NodeWidth + o.SiblingSpacing
	for _, y := range ys {
		row := rows[y]
		slices.SortStableFunc(row, func(a, b string) int {
			if r := cmp.Compare(l.Positions[a].X, l.Positions[b].X); r != 0 {
				return r
			}
			return cmp.Compare(rank[a], rank[b])
		})
		for i := 1; i < len(row); i++ {
			prev, cur := l.Positions[row[i-1]], l.Positions[row[i]]
			limit := prev.X + step
			if cur.X <= limit {
				continue
			}
			delta := limit - cur.X
			l.Positions[row[i]] = positionAt(cur.X+delta, y, o.NodeWidth, o.NodeHeight)
			// Only the immediate right neighbour is dragged, which keeps the
			// row sorted.
			if i+1 < len(row) {
				if s, ok := ix.SpouseOf(row[i]); ok && s == row[i+1] {
					sp := l.Positions[s]
					l.Positions[s] = positionAt(sp.X+delta, y, o.NodeWidth, o.NodeHeight)
				}
			}
		}
	}
}
