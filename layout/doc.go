// Package layout refines word-level text elements into the shape the rest
// of the pipeline expects.
//
// Two passes run in order:
//
//   - [Reclassify] turns isolated horizontal words that sit in a column of
//     vertical words into vertical words. Short words such as "No." in a
//     rotated label are too wide to be caught by aspect ratio alone.
//   - [LineDetector.Group] merges words of the same orientation into lines.
//
// Both passes work on top-left boxes and return new slices; their inputs
// are not modified.
//
//	words = layout.Reclassify(words, layout.DefaultConfig())
//	lines := layout.NewLineDetector().Group(words)
package layout
