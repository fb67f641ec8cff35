// Package layout groups a page's positioned text runs into semantic
// units: runs into lines, lines into paragraph blocks, and blocks into
// column bands.
//
// The Merger assigns every block a stable reading-order index (top to
// bottom, then left to right). The Segmenter derives column boundaries
// from the horizontal occupancy of the merged blocks; blocks that
// straddle a detected boundary, such as titles and captions, are
// assigned to a synthetic full-width column so they do not distort the
// bands.
//
// All thresholds are relative to font size and are carried in explicit
// configuration values, so threshold edge cases can be tested
// deterministically.
package layout
