package label

// FaceOption configures a Face during creation.
type FaceOption func(*faceOptions)

type faceOptions struct {
	layoutCacheSize  int
	outlineCacheSize int
	tolerance        float64
	language         string
}

func defaultFaceOptions() faceOptions {
	return faceOptions{
		layoutCacheSize:  512,
		outlineCacheSize: 1024,
		tolerance:        0.1,
		language:         "en",
	}
}

// WithLayoutCacheSize sets the number of shaped runs kept. Defaults to 512.
func WithLayoutCacheSize(n int) FaceOption {
	return func(o *faceOptions) {
		if n > 0 {
			o.layoutCacheSize = n
		}
	}
}

// WithOutlineCacheSize sets the number of glyph outlines kept.
// Defaults to 1024.
func WithOutlineCacheSize(n int) FaceOption {
	return func(o *faceOptions) {
		if n > 0 {
			o.outlineCacheSize = n
		}
	}
}

// WithTolerance sets the curve flattening tolerance in points.
// Defaults to 0.1.
func WithTolerance(tol float64) FaceOption {
	return func(o *faceOptions) {
		if tol > 0 {
			o.tolerance = tol
		}
	}
}

// WithLanguage sets the BCP 47 language used for shaping. Defaults to "en".
func WithLanguage(lang string) FaceOption {
	return func(o *faceOptions) {
		if lang != "" {
			o.language = lang
		}
	}
}
