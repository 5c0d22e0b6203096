package render

import "reflow/internal/doc"

// fits reports whether next, rendered flat, plus whatever follows it on the
// current line stays within width columns. The probe walks rest (the pending
// stack, top first) in each frame's own mode and succeeds as soon as it meets
// a genuine line end; content past that end is on a new line. Suffixes are
// free until a boundary flushes them into the middle of the line.
func (p *printer) fits(next frame, rest []frame, width int) bool {
	restIdx := len(rest)
	cmds := []frame{next}
	suffix := append([]frame(nil), p.suffix...)
	for width >= 0 {
		if len(cmds) == 0 {
			if restIdx == 0 {
				return true
			}
			restIdx--
			cmds = append(cmds, rest[restIdx])
			continue
		}
		f := cmds[len(cmds)-1]
		cmds = cmds[:len(cmds)-1]

		switch d := f.d; d.Kind {
		case doc.KindText:
			width -= doc.Width(d.Text)

		case doc.KindConcat:
			for i := len(d.Parts) - 1; i >= 0; i-- {
				cmds = append(cmds, frame{f.indent, f.mode, d.Parts[i]})
			}

		case doc.KindJoin:
			for i := len(d.Parts) - 1; i >= 0; i-- {
				cmds = append(cmds, frame{f.indent, f.mode, d.Parts[i]})
				if i > 0 && d.Sep != nil {
					cmds = append(cmds, frame{f.indent, f.mode, d.Sep})
				}
			}

		case doc.KindIndent, doc.KindAlign:
			cmds = append(cmds, frame{f.indent, f.mode, d.Body})

		case doc.KindLineSuffix:
			suffix = append(suffix, frame{f.indent, modeFlat, d.Body})

		case doc.KindLineSuffixBoundary:
			if len(suffix) > 0 {
				width-- // separating space
				for i := len(suffix) - 1; i >= 0; i-- {
					cmds = append(cmds, frame{suffix[i].indent, modeFlat, suffix[i].d})
				}
				suffix = suffix[:0]
			}

		case doc.KindGroup:
			m := f.mode
			if d.Break {
				m = modeBreak
			}
			cmds = append(cmds, frame{f.indent, m, d.Body})

		case doc.KindIfBreak:
			branch := d.Flat
			if f.mode == modeBreak {
				branch = d.Body
			}
			if branch != nil {
				cmds = append(cmds, frame{f.indent, f.mode, branch})
			}

		case doc.KindLine, doc.KindSoftLine, doc.KindDoubleSoftLine:
			if f.mode == modeBreak {
				return true
			}
			if d.Kind == doc.KindLine {
				width--
			}

		case doc.KindVerbatim:
			if len(d.Lines) > 0 {
				width -= doc.Width(d.Lines[0])
			}
			if len(d.Lines) > 1 {
				return width >= 0
			}
		}
	}
	return false
}
