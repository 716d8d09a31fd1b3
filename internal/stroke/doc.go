// Package stroke converts stroked polylines into filled outlines.
//
// Stroke expansion builds two offset paths for each subpath:
//   - forward: offset by -width/2 along the normal
//   - backward: offset by +width/2 along the normal
//
// The outline is the forward path, the end cap, the reversed backward path
// and the start cap. Closed subpaths produce two rings instead. Outlines
// overlap where the input turns sharply and must be filled with the
// non-zero rule.
//
// # Usage
//
//	e := stroke.NewExpander(carto.Stroke{Width: 2, Join: carto.JoinRound})
//	outline := e.Expand(path)
//	surface.Fill(outline)
//
// # References
//
// The algorithm follows the tiny-skia and kurbo stroke expanders.
package stroke
