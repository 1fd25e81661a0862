// Package format lowers an annotated meaning tree into a layout document and
// prints it.
//
// Назначение: полный pretty-print Ruby-файла поверх дерева смыслов.
// Не делает: разбора, IO, поиска файлов.
// Зависимости: internal/syntax, internal/meaning, internal/trivia, internal/doc.
//
// Constructs without a dedicated lowering are copied from the source byte
// for byte, comments inside them included.
package format
