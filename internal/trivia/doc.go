// Package trivia attaches comments and blank lines to meaning nodes.
//
// Each comment ends up in exactly one place:
//
//   - Leading: on its own line before a node;
//   - Trailing: after a node on the line where that node ends (the
//     outermost node ending there wins);
//   - Floating: inside a node after its last child, or inside an empty
//     container.
//
// Blank lines are only counted, and runs collapse to one.
package trivia
