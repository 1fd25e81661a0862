// Package meaning builds the normalized semantic tree ("meaning tree") the
// formatter lays out.
//
// The builder walks the tree-sitter concrete tree once. Every concrete kind
// is looked up in a static dispatch table (table.go) describing the shape of
// its grammar fields:
//
//	required / optional child  -> Value{Kind: ValueNode}
//	repeated child             -> Value{Kind: ValueList}
//	anonymous token in a field -> Value{Kind: ValueText}   (operators)
//	unfielded anonymous token  -> dropped                  (keywords, delimiters)
//	unfielded named children   -> "children" list
//
// A small (kind, field) exception table drops fields that carry no meaning
// for one specific kind, and a handful of flag checks rewrite the kind tag
// itself (endless def, command argument lists, heredoc variants, numbered
// block parameters).
//
// Extras are handled outside the table: comments are collected as spans for
// the trivia pass, heredoc bodies are paired with their openings first in,
// first out, and node spans are recomputed without extras so they cover code
// only.
//
// Dump renders the tree for debugging; Encode produces a canonical msgpack
// form used to check that formatting did not change the program.
package meaning
