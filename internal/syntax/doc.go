// Package syntax adapts tree-sitter's Ruby grammar to the formatter.
//
// It owns the concrete tree for the duration of one file: Parse returns a
// Tree that must be closed once the meaning tree has been built. Nodes are
// thin value wrappers over *sitter.Node exposing only what the meaning
// builder needs: kind, named/anonymous status, byte span, field name per
// child and the comment extras.
//
// Parse failures (ERROR or MISSING nodes anywhere in the tree) are reported
// as *ParseError carrying the offset of the first offending node; the
// formatter never tries to lay out a tree with errors.
package syntax
