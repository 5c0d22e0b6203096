// Package format runs the full layout pipeline: render a document, then
// apply the alignment, call-shape and compaction corrections in that order.
//
// Назначение: единая точка входа format(doc, width, side tables).
// Не делает: построения документа из синтаксического дерева, IO.
// Зависимости: internal/doc, internal/render, internal/ledger,
// internal/shape, internal/compact, internal/textbuf, internal/trace,
// internal/observ.
package format
