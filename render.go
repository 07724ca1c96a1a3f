package textdiff

import "fmt"

// RenderInput is one side of a rendering: the original, non-normalized lines
// and whether the last of them lacks its separator.
type RenderInput struct {
	Name                  string
	Lines                 []string
	MissingFinalSeparator bool
}

// Render walks script and writes one block per operation to w. StyleFull
// also writes a Common block for every run of matched lines.
func Render(w BlockWriter, script []EditOperation, old, new RenderInput, style Style) error {
	return render(w, script, old, new, style == StyleFull)
}

func render(w BlockWriter, script []EditOperation, old, new RenderInput, emitCommon bool) error {
	if err := checkScript(script, len(old.Lines), len(new.Lines)); err != nil {
		return err
	}

	w.SetTotalLines(max(len(old.Lines), len(new.Lines)))

	oldPos, newPos := 0, 0
	common := func(oldEnd, newEnd int) error {
		if !emitCommon || oldEnd < oldPos {
			return nil
		}
		b := ChangeBlock{
			Type: BlockCommon,
			Old:  Range{Begin: oldPos, End: oldEnd},
			New:  Range{Begin: newPos, End: newEnd},
		}
		return w.WriteBlock(b, b.Old.Slice(old.Lines), b.New.Slice(new.Lines))
	}

	for _, op := range script {
		if err := common(op.Old.Begin-1, op.New.Begin-1); err != nil {
			return err
		}

		b := ChangeBlock{Type: blockType(op.Kind), Old: op.Old, New: op.New}
		if err := w.WriteBlock(b, op.Old.Slice(old.Lines), op.New.Slice(new.Lines)); err != nil {
			return err
		}

		oldPos = op.Old.Begin + op.Old.Len()
		newPos = op.New.Begin + op.New.Len()
	}

	if err := common(len(old.Lines)-1, len(new.Lines)-1); err != nil {
		return err
	}

	if b, msg, ok := separatorWarning(old, new); ok {
		return w.WriteWarning(b, msg)
	}
	return nil
}

func blockType(k OpKind) BlockType {
	switch k {
	case OpInsert:
		return BlockNewOnly
	case OpDelete:
		return BlockOldOnly
	default:
		return BlockChanged
	}
}

// checkScript rejects a script before anything is written: every range must
// fit its side and follow the previous operation, and the matched runs
// between operations must be equally long on both sides.
func checkScript(script []EditOperation, oldLen, newLen int) error {
	oldPos, newPos := 0, 0
	for i, op := range script {
		if err := checkRange(op.Old, oldPos, oldLen); err != nil {
			return fmt.Errorf("old side of %s operation %d: %w", op.Kind, i, err)
		}
		if err := checkRange(op.New, newPos, newLen); err != nil {
			return fmt.Errorf("new side of %s operation %d: %w", op.Kind, i, err)
		}
		if op.Old.Begin-oldPos != op.New.Begin-newPos {
			return fmt.Errorf("%s operation %d: matched run of %d old and %d new lines",
				op.Kind, i, op.Old.Begin-oldPos, op.New.Begin-newPos)
		}

		oldPos = op.Old.Begin + op.Old.Len()
		newPos = op.New.Begin + op.New.Len()
	}

	if oldLen-oldPos != newLen-newPos {
		return fmt.Errorf("trailing matched run of %d old and %d new lines", oldLen-oldPos, newLen-newPos)
	}
	return nil
}

// checkRange rejects ranges that overlap the previous operation or run past
// the end of the side.
func checkRange(r Range, pos, n int) error {
	if r.Begin < pos || r.End < r.Begin-1 || r.End >= n {
		return fmt.Errorf("range [%d,%d] invalid at position %d of %d lines", r.Begin, r.End, pos, n)
	}
	return nil
}

// separatorWarning reports a side whose last line has no separator while
// the other side's last line has one and is not empty.
func separatorWarning(old, new RenderInput) (ChangeBlock, string, bool) {
	var side Side
	var name string

	switch {
	case old.MissingFinalSeparator && !new.MissingFinalSeparator && len(new.Lines) > 0:
		side, name = SideOld, old.Name
	case new.MissingFinalSeparator && !old.MissingFinalSeparator && len(old.Lines) > 0:
		side, name = SideNew, new.Name
	default:
		return ChangeBlock{}, "", false
	}

	b := ChangeBlock{
		Type: BlockWarning,
		Old:  lastLine(len(old.Lines)),
		New:  lastLine(len(new.Lines)),
	}
	return b, fmt.Sprintf("no line separator at end of %s file %q", side, name), true
}

func lastLine(n int) Range {
	if n == 0 {
		return EmptyAt(0)
	}
	return Range{Begin: n - 1, End: n - 1}
}
