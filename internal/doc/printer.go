package doc

type mode uint8

const (
	modeBreak mode = iota
	modeFlat
)

type cmd struct {
	level int
	mode  mode
	doc   Doc
}

// Options configures Print.
type Options struct {
	Width       int
	IndentWidth int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 100
	}
	if o.IndentWidth <= 0 {
		o.IndentWidth = 2
	}
	return o
}

type printer struct {
	opts       Options
	w          *writer
	groupModes map[GroupID]mode
	suffixes   []cmd
	deferred   []cmd
	// lineLevel is the indentation level of the current output line.
	lineLevel int
}

// Print lays out d. Groups are propagated first, so d must not be printed
// twice concurrently.
func Print(d Doc, opts Options) []byte {
	opts = opts.withDefaults()
	PropagateBreaks(d)
	p := &printer{
		opts:       opts,
		w:          newWriter(4096, opts.IndentWidth),
		groupModes: make(map[GroupID]mode),
	}
	p.run(d)
	return p.w.buf
}

func (p *printer) run(root Doc) {
	stack := []cmd{{level: 0, mode: modeBreak, doc: root}}
	for {
		if len(stack) == 0 {
			switch {
			case len(p.suffixes) > 0:
				stack = p.pushReversed(stack, p.suffixes)
				p.suffixes = nil
			case len(p.deferred) > 0:
				stack = p.pushReversed(stack, p.deferred)
				p.deferred = nil
			default:
				return
			}
			continue
		}
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch d := c.doc.(type) {
		case nil:
		case Text:
			p.w.text(string(d), false)
		case Raw:
			p.w.text(string(d), true)
		case Concat:
			for i := len(d) - 1; i >= 0; i-- {
				stack = append(stack, cmd{level: c.level, mode: c.mode, doc: d[i]})
			}
		case Indent:
			stack = append(stack, cmd{level: c.level + 1, mode: c.mode, doc: d.Contents})
		case *Group:
			m := c.mode
			switch {
			case d.NoBreak:
				m = modeFlat
			case c.mode == modeFlat && !d.Break:
				m = modeFlat
			default:
				next := cmd{level: c.level, mode: modeFlat, doc: d.Contents}
				if !d.Break && p.fits(next, stack, p.opts.Width-p.w.col, false) {
					m = modeFlat
				} else {
					m = modeBreak
				}
			}
			if d.ID != 0 {
				p.groupModes[d.ID] = m
			}
			stack = append(stack, cmd{level: c.level, mode: m, doc: d.Contents})
		case IfBreak:
			m := c.mode
			if d.GroupID != 0 {
				if gm, ok := p.groupModes[d.GroupID]; ok {
					m = gm
				}
			}
			next := d.Flat
			if m == modeBreak {
				next = d.Broken
			}
			if next != nil {
				stack = append(stack, cmd{level: c.level, mode: c.mode, doc: next})
			}
		case LineSuffix:
			p.suffixes = append(p.suffixes, cmd{level: c.level, mode: c.mode, doc: d.Contents})
		case BreakParent:
		case Deferred:
			p.deferred = append(p.deferred, cmd{level: p.lineLevel, mode: modeBreak, doc: d.Contents})
		case Leading:
			if p.w.atLineStart {
				stack = append(stack,
					cmd{level: c.level, mode: c.mode, doc: d.Contents},
					cmd{level: c.level, mode: c.mode, doc: d.Lines})
				continue
			}
			stack = append(stack, cmd{level: c.level + 1, mode: c.mode, doc: Cat(HardLine, d.Lines, d.Contents)})
		case Outdent:
			p.w.outdent()
			if p.w.atLineStart {
				p.lineLevel = 0
			}
		case Line:
			if c.mode == modeFlat && (d.Kind == LineSpace || d.Kind == LineSoft) {
				if d.Kind == LineSpace {
					p.w.text(" ", false)
				}
				continue
			}
			if len(p.suffixes) > 0 {
				stack = append(stack, c)
				stack = p.pushReversed(stack, p.suffixes)
				p.suffixes = nil
				continue
			}
			if len(p.deferred) > 0 {
				stack = append(stack, c)
				stack = p.pushReversed(stack, p.deferred)
				p.deferred = nil
				continue
			}
			level := c.level
			if d.Kind == LineLiteral {
				level = 0
			}
			p.w.newline(level)
			p.lineLevel = level
		}
	}
}

func (p *printer) pushReversed(stack, cmds []cmd) []cmd {
	for i := len(cmds) - 1; i >= 0; i-- {
		stack = append(stack, cmds[i])
	}
	return stack
}

// fits reports whether next, followed by the rest of the current line from
// rest, fits in width cells. The rest is measured in its own modes, so a
// broken enclosing group ends the measurement at its next line.
func (p *printer) fits(next cmd, rest []cmd, width int, mustBeFlat bool) bool {
	restIdx := len(rest)
	stack := []cmd{next}
	for width >= 0 {
		if len(stack) == 0 {
			if restIdx == 0 {
				return true
			}
			restIdx--
			stack = append(stack, rest[restIdx])
			continue
		}
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch d := c.doc.(type) {
		case Text:
			width -= Width(string(d))
		case Raw:
			width -= Width(string(d))
		case Concat:
			for i := len(d) - 1; i >= 0; i-- {
				stack = append(stack, cmd{level: c.level, mode: c.mode, doc: d[i]})
			}
		case Indent:
			stack = append(stack, cmd{level: c.level + 1, mode: c.mode, doc: d.Contents})
		case *Group:
			if mustBeFlat && d.Break {
				return false
			}
			m := c.mode
			if d.Break {
				m = modeBreak
			}
			if d.NoBreak {
				m = modeFlat
			}
			stack = append(stack, cmd{level: c.level, mode: m, doc: d.Contents})
		case IfBreak:
			m := c.mode
			if d.GroupID != 0 {
				if gm, ok := p.groupModes[d.GroupID]; ok {
					m = gm
				} else {
					m = modeFlat
				}
			}
			next := d.Flat
			if m == modeBreak {
				next = d.Broken
			}
			if next != nil {
				stack = append(stack, cmd{level: c.level, mode: c.mode, doc: next})
			}
		case Leading:
			// a line break comes before Contents either way
			return true
		case Line:
			if c.mode == modeBreak || d.Kind == LineHard || d.Kind == LineLiteral {
				return true
			}
			if d.Kind == LineSpace {
				width--
			}
		}
	}
	return false
}
