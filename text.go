package textdiff

import (
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineScript computes line edit scripts with diff-match-patch, treating
// every distinct line as one rune.
type LineScript struct{}

// Makesure LineScript implements the EditScriptProvider interface
var _ EditScriptProvider = &LineScript{}

func NewLineScript() *LineScript {
	return &LineScript{}
}

// maxLineIDs is the number of distinct lines that map onto valid,
// non-surrogate runes.
const maxLineIDs = utf8.MaxRune + 1 - 0x800

// EditScript returns the operations turning a into b. Runs of deletions and
// insertions with no matched line in between become a single replace.
func (p *LineScript) EditScript(a, b []string) []EditOperation {
	return editScript(a, b, maxLineIDs)
}

// editScript falls back to a single operation between the common prefix and
// suffix when a and b hold more than limit distinct lines.
func editScript(a, b []string, limit int) []EditOperation {
	ids := make(map[string]int, len(a)+len(b))
	ra := linesToRunes(a, ids)
	rb := linesToRunes(b, ids)
	if len(ids) > limit {
		return boundaryScript(a, b)
	}

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	diffs := dmp.DiffCleanupMerge(dmp.DiffMainRunes(ra, rb, false))

	var ops []EditOperation
	oldPos, newPos := 0, 0
	dels, ins := 0, 0

	flush := func() {
		if dels == 0 && ins == 0 {
			return
		}
		ops = append(ops, operation(oldPos, dels, newPos, ins))

		oldPos += dels
		newPos += ins
		dels, ins = 0, 0
	}

	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			oldPos += n
			newPos += n
		case diffmatchpatch.DiffDelete:
			dels += n
		case diffmatchpatch.DiffInsert:
			ins += n
		}
	}
	flush()

	return ops
}

// boundaryScript matches the common prefix and suffix of a and b and covers
// everything in between with one operation.
func boundaryScript(a, b []string) []EditOperation {
	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix++
	}

	suffix := 0
	for suffix < len(a)-prefix && suffix < len(b)-prefix &&
		a[len(a)-1-suffix] == b[len(b)-1-suffix] {
		suffix++
	}

	dels, ins := len(a)-prefix-suffix, len(b)-prefix-suffix
	if dels == 0 && ins == 0 {
		return nil
	}
	return []EditOperation{operation(prefix, dels, prefix, ins)}
}

// operation covers dels old lines from oldPos and ins new lines from newPos.
func operation(oldPos, dels, newPos, ins int) EditOperation {
	op := EditOperation{
		Old: Range{Begin: oldPos, End: oldPos + dels - 1},
		New: Range{Begin: newPos, End: newPos + ins - 1},
	}
	switch {
	case dels > 0 && ins > 0:
		op.Kind = OpReplace
	case dels > 0:
		op.Kind = OpDelete
	default:
		op.Kind = OpInsert
	}
	return op
}

// linesToRunes maps each distinct line to its own rune. Surrogate code
// points are skipped since they do not survive a string round trip. Ids past
// maxLineIDs have no valid rune, callers check len(ids) first.
func linesToRunes(lines []string, ids map[string]int) []rune {
	out := make([]rune, len(lines))
	for i, line := range lines {
		id, ok := ids[line]
		if !ok {
			id = len(ids)
			ids[line] = id
		}
		out[i] = lineRune(id)
	}
	return out
}

func lineRune(id int) rune {
	if id >= 0xD800 {
		id += 0x800
	}
	return rune(id)
}
