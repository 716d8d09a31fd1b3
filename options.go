package carto

// RendererOption configures a Renderer during creation.
//
// Example:
//
//	reg := carto.NewRegistry()
//	reg.RegisterAffine(utm, carto.Geographic(), m)
//	r := carto.NewRenderer(carto.Geographic(),
//		carto.WithTransformFactory(reg),
//		carto.WithResolution(1))
type RendererOption func(*rendererOptions)

// rendererOptions holds optional configuration for Renderer creation.
type rendererOptions struct {
	factory    TransformFactory
	resolution float64
	queue      *RepaintQueue
	styles     StyleProvider
	labeler    Labeler
}

// defaultRendererOptions returns the default renderer options.
func defaultRendererOptions() rendererOptions {
	return rendererOptions{
		factory:    nil, // an empty Registry
		resolution: 0,   // finest
		styles:     DefaultStyles{},
	}
}

// WithTransformFactory sets the factory used to create transforms between
// layer systems and the display system. Defaults to an empty Registry,
// which only handles equivalent systems.
func WithTransformFactory(f TransformFactory) RendererOption {
	return func(o *rendererOptions) {
		o.factory = f
	}
}

// WithResolution sets the initial rendering resolution in device pixels.
// Invalid values are ignored and leave the default of 0 (finest).
func WithResolution(res float64) RendererOption {
	return func(o *rendererOptions) {
		if validResolution(res) {
			o.resolution = res
		}
	}
}

// WithRepaintQueue shares an existing repaint queue with the renderer.
func WithRepaintQueue(q *RepaintQueue) RendererOption {
	return func(o *rendererOptions) {
		o.queue = q
	}
}

// WithStyles sets the style provider. Defaults to DefaultStyles.
func WithStyles(s StyleProvider) RendererOption {
	return func(o *rendererOptions) {
		if s != nil {
			o.styles = s
		}
	}
}

// WithLabeler sets the text layout used for placeholders and by layers that
// label their content. Without a labeler placeholders are drawn as a crossed
// box only.
func WithLabeler(l Labeler) RendererOption {
	return func(o *rendererOptions) {
		o.labeler = l
	}
}
