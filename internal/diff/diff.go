// Package diff measures how much a summary changed between two builds.
// Bullets are compared as opaque strings.
package diff

// Tag names the kind of an edit block.
type Tag string

const (
	Equal   Tag = "equal"
	Insert  Tag = "insert"
	Delete  Tag = "delete"
	Replace Tag = "replace"
)

// Opcode describes how old[I1:I2] becomes new[J1:J2].
type Opcode struct {
	Tag    Tag
	I1, I2 int
	J1, J2 int
}

// Stats counts bullets added and removed by an edit.
type Stats struct {
	Added   int
	Removed int
}

// Bullets returns the added/removed counts for turning old into new.
// Insertions count as added, deletions as removed, and a replacement block
// counts its old span as removed and its new span as added.
func Bullets(old, new []string) Stats {
	var s Stats
	for _, op := range Opcodes(old, new) {
		switch op.Tag {
		case Insert:
			s.Added += op.J2 - op.J1
		case Delete:
			s.Removed += op.I2 - op.I1
		case Replace:
			s.Removed += op.I2 - op.I1
			s.Added += op.J2 - op.J1
		}
	}
	return s
}

// Opcodes aligns old and new along a longest common subsequence and returns
// the edit blocks in order. Adjacent deletions and insertions between two
// matches are merged into a single Replace block.
func Opcodes(old, new []string) []Opcode {
	n, m := len(old), len(new)

	// lcs[i][j] is the LCS length of old[i:] and new[j:].
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if old[i] == new[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	var ops []Opcode
	emit := func(tag Tag, i1, i2, j1, j2 int) {
		if i1 == i2 && j1 == j2 {
			return
		}
		if len(ops) > 0 && ops[len(ops)-1].Tag == tag {
			last := &ops[len(ops)-1]
			last.I2, last.J2 = i2, j2
			return
		}
		ops = append(ops, Opcode{Tag: tag, I1: i1, I2: i2, J1: j1, J2: j2})
	}
	flush := func(i1, i2, j1, j2 int) {
		switch {
		case i1 < i2 && j1 < j2:
			emit(Replace, i1, i2, j1, j2)
		case i1 < i2:
			emit(Delete, i1, i2, j1, j2)
		case j1 < j2:
			emit(Insert, i1, i2, j1, j2)
		}
	}

	i, j := 0, 0
	gi, gj := 0, 0 // start of the pending unmatched gap
	for i < n && j < m {
		switch {
		case old[i] == new[j]:
			flush(gi, i, gj, j)
			emit(Equal, i, i+1, j, j+1)
			i, j = i+1, j+1
			gi, gj = i, j
		case lcs[i+1][j] >= lcs[i][j+1]:
			i++
		default:
			j++
		}
	}
	flush(gi, n, gj, m)
	return ops
}
