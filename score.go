package lenient

// Score sums the weights of flags. Lower is better.
func Score(flags []Flag) int {
	s := 0
	for _, f := range flags {
		s += f.Kind.Weight()
	}
	return s
}

// Rank totally orders successful interpretations: total score, then how
// deep the recoveries sit (fewer nested recoveries wins), then discovery
// order.
type Rank struct {
	Score int
	Depth int
	Order int
}

// RankOf ranks a flag set discovered at position order.
func RankOf(flags []Flag, order int) Rank {
	r := Rank{Score: Score(flags), Order: order}
	for _, f := range flags {
		r.Depth += pointerDepth(f.Path)
	}
	return r
}

// Less reports whether r beats o.
func (r Rank) Less(o Rank) bool {
	if r.Score != o.Score {
		return r.Score < o.Score
	}
	if r.Depth != o.Depth {
		return r.Depth < o.Depth
	}
	return r.Order < o.Order
}

// candidate is one successful interpretation awaiting selection.
type candidate struct {
	typed *Typed
	rank  Rank
	class bool // result of a class-typed union option
}

// best returns the index of the winning candidate, or -1 when cands is
// empty. preferClass lets class results win score ties.
func best(cands []candidate, preferClass bool) int {
	win := -1
	for i, c := range cands {
		if win < 0 || beats(c, cands[win], preferClass) {
			win = i
		}
	}
	return win
}

func beats(a, b candidate, preferClass bool) bool {
	if a.rank.Score != b.rank.Score {
		return a.rank.Score < b.rank.Score
	}
	if preferClass && a.class != b.class {
		return a.class
	}
	return a.rank.Less(b.rank)
}
