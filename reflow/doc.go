// Package reflow fits translated text back into the boxes the source
// text occupied.
//
// Translated text rarely matches the source length, so each block goes
// through a fitting loop: wrap the text at the current font size,
// check the wrapped height against the block box, and either accept
// the fit, shrink the font by one step, or give up at the minimum size
// and mark the plan as overflowing. Overflowing plans still render;
// the flag tells the caller the block will visually spill.
//
// Width measurement is pluggable. The default measurer approximates
// from per-rune advance factors; a TrueType-backed measurer gives
// exact advances when the output font is known.
package reflow
