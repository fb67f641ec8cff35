// Package figure isolates the non-text areas of a classified page and
// turns them into rasterized figure units.
//
// Figure and table regions that sit close together are unioned before
// rasterization so one logical figure does not fragment into several
// crops. Pages without any figure yield no units; the pipeline emits a
// blank-page marker instead so figure-only output keeps the source
// page count and ordering.
package figure
