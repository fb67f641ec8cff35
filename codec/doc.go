// Package codec is the document boundary: it parses source documents
// into page primitives and renders page layouts back out.
//
// The engine itself is format-agnostic. A Codec implementation owns
// one interchange format; implementations register by name so callers
// can select one at runtime. The built-in codec speaks a structured
// JSON format modeled on MuPDF's stext output, with vector and image
// content alongside the text spans.
//
// Scanned pages carry images and no text runs. A PageExtractor can
// recover runs from those images; the Tesseract-backed extractor
// compiles in behind the "ocr" build tag and is a stub otherwise.
package codec
