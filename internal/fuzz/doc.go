
// Package fuzztests houses Go fuzz harnesses for the rewrite pipeline
// (source -> syntax -> rewrite -> srcmap). They guard against panics,
// internal edit collisions and non-idempotent output on arbitrary inputs.
//
// Назначение: прогонять байты через FileSet, парсер и переписывание.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/syntax, internal/rewrite,
// internal/testkit, internal/diag.

package fuzztests
