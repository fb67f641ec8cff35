// Package model defines the shared data types for the document
// reconstruction pipeline: page geometry, extracted primitives
// (text runs, images, rules), classified regions, translation units,
// and the layout plans produced for substitute text.
//
// Types in this package are pure data. They carry no behavior beyond
// geometric helpers and are created fresh for every processing run.
package model
