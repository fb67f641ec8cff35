// Package pipeline orchestrates a full document run: parse, per-page
// analysis, translation, reflow and render.
//
// Pages analyze concurrently on a bounded worker pool; output page
// order always equals source order regardless of completion order.
// A failed page degrades to a passthrough copy of its source instead
// of failing the run. The run itself fails only when the document
// cannot be parsed at all, when it exceeds the page limit, or when
// every translation batch fails.
//
// Analyzed page models cache by document digest and page index, so a
// figure or overlay run over a document just translated skips the
// layout analysis.
package pipeline
