// Package doc is a small document algebra and a fit-or-break printer.
//
// Layout code builds a Doc tree of text, line breaks, indentation and
// groups. The printer lays each group out on one line when it fits in the
// remaining width and breaks all of its lines otherwise. Forced breaks
// (hard lines, BreakParent) mark every enclosing group broken before
// printing starts.
//
// Two additions serve Ruby specifically: LineSuffix holds trailing
// comments until the next line break, and Deferred holds heredoc bodies
// until the end of the line their opening was printed on.
package doc
