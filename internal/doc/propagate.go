package doc

// PropagateBreaks marks every group that contains a hard line or a
// BreakParent as broken, outward to the root. Contents of Deferred and
// LineSuffix are printed outside the current line and do not count.
func PropagateBreaks(d Doc) {
	propagate(d)
}

func propagate(d Doc) bool {
	switch d := d.(type) {
	case Concat:
		forced := false
		for _, p := range d {
			if propagate(p) {
				forced = true
			}
		}
		return forced
	case Indent:
		return propagate(d.Contents)
	case *Group:
		if propagate(d.Contents) {
			d.Break = true
		}
		return d.Break
	case IfBreak:
		// the broken branch only prints once the group has broken, so its
		// hard lines mark inner groups but never the enclosing one
		propagate(d.Broken)
		return propagate(d.Flat)
	case Leading:
		l := propagate(d.Lines)
		c := propagate(d.Contents)
		return l || c
	case Line:
		return d.Kind == LineHard || d.Kind == LineLiteral
	case BreakParent:
		return true
	case Deferred:
		propagate(d.Contents)
		return false
	case LineSuffix:
		propagate(d.Contents)
		return false
	}
	return false
}
