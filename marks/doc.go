// Package marks renders point features such as vector field arrows, sample
// markers, icons and labels.
//
// Marks are read through a MarkIterator, a cursor over any data source.
// RenderedMarks projects every mark once, keeps the survivors of viewport
// culling in compact parallel arrays and replays those arrays on later
// passes until the view or the data changes:
//
//	src := marks.NewSliceMarks(carto.Geographic(), []marks.Mark{
//		{Position: carto.Point{X: 2.35, Y: 48.85}, Label: "Paris"},
//	})
//	r.Add(marks.NewRenderedMarks("cities", src))
//
// GridMarks exposes one or two band rasters (a scalar field, or the u and v
// components of a vector field) as marks, thinning grid cells so that marks
// stay a minimum number of pixels apart.
package marks
