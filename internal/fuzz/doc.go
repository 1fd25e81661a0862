// Package fuzztests houses Go fuzz harnesses that push arbitrary bytes
// through the whole formatting pipeline (source -> syntax -> meaning ->
// trivia -> doc -> printer). Its goal is to smoke test robustness: no
// panics, no hangs, and no output that fails to reparse.
//
// Назначение: запускать fuzz-обработчики поверх format.FormatContext.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/format, internal/testkit, internal/driver.

package fuzztests
