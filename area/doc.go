// Package area partitions a page into classified regions: text,
// figure, table, and (implicitly) whitespace.
//
// Image primitives become figure regions. Ruled lines that form a
// grid become table regions. Merged text blocks become text regions
// unless they sit inside a figure or table, in which case they are
// presumed to be captions or labels and are kept only as part of the
// raster capture. Overlaps resolve by priority: table > figure > text.
package area
