// Command cartoview shows GeoJSON, WKT and CSV files on a terminal map.
//
// Usage:
//
//	cartoview [flags] [file ...]
//
// Without files a demonstration wind field is shown. With -png the map is
// rendered once to an image file instead.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gogpu/carto"
	"github.com/gogpu/carto/label"
	"github.com/gogpu/carto/surface"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("cartoview: %v", err)
	}
}

func run() error {
	var (
		backend    = flag.String("surface", "braille", "terminal surface backend")
		resolution = flag.Float64("resolution", 1, "rendering resolution in device pixels")
		logFile    = flag.String("log", "", "write debug logs to this file")
		output     = flag.String("png", "", "render once to this PNG file and exit")
		width      = flag.Int("width", 800, "image width for -png")
		height     = flag.Int("height", 600, "image height for -png")
	)
	flag.Parse()

	if *logFile != "" {
		f, err := os.Create(*logFile)
		if err != nil {
			return err
		}
		defer f.Close()
		carto.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	r := carto.NewRenderer(carto.Geographic(),
		carto.WithResolution(*resolution),
		carto.WithLabeler(label.DefaultFace()))
	defer r.Dispose()

	layers, bounds, err := loadLayers(flag.Args())
	if err != nil {
		return err
	}
	for _, l := range layers {
		if err := r.Add(l); err != nil {
			return err
		}
	}

	if *output != "" {
		return export(r, bounds, *output, *width, *height)
	}

	m, err := newModel(r, *backend, bounds)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	m.wake.send = p.Send
	r.Queue().SetWakeup(m.wake.notify)
	_, err = p.Run()
	return err
}

// export renders the map once to a PNG file.
func export(r *carto.Renderer, bounds carto.Rect, path string, width, height int) error {
	s, err := surface.New("image", width, height, surface.WithBackground(carto.White))
	if err != nil {
		return err
	}
	img, ok := s.(*surface.ImageSurface)
	if !ok {
		return fmt.Errorf("image backend returned %T", s)
	}
	r.SetZoom(fit(bounds, s.Bounds()))
	if err := r.Paint(s, nil); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img.Image()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// fit returns the zoom showing data bounds centred in a device area, north
// up.
func fit(data, device carto.Rect) carto.Affine {
	if data.IsEmpty() || device.IsEmpty() {
		return carto.Identity()
	}
	k := 0.9 * min(device.Width()/max(data.Width(), 1e-9), device.Height()/max(data.Height(), 1e-9))
	c, dc := data.Center(), device.Center()
	return carto.Translate(dc.X, dc.Y).
		Multiply(carto.Scale(k, -k)).
		Multiply(carto.Translate(-c.X, -c.Y))
}
