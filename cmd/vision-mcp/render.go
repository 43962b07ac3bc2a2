package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image"
	"os"

	"github.com/anthonynsimon/bild/imgio"

	"github.com/ironsheep/vision-tools-mcp/internal/config"
	"github.com/ironsheep/vision-tools-mcp/internal/detection"
	"github.com/ironsheep/vision-tools-mcp/internal/imaging"
)

// runRender applies one operation to an image file outside the MCP loop.
// Image results go to -out as PNG; detections are printed to stdout as JSON.
func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	op := fs.String("op", "canny", "operation: blur, sobel, canny, lines or stop")
	in := fs.String("in", "", "input image")
	out := fs.String("out", "", "output PNG")
	configPath := fs.String("config", "", "YAML config file")
	width := fs.Int("width", 0, "resize the input to this width first (keeps aspect ratio)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("-in is required")
	}

	cfg, err := config.FromEnv(*configPath)
	if err != nil {
		return err
	}

	img, err := imgio.Open(*in)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	var src *imaging.Buffer
	if *width > 0 {
		b := img.Bounds()
		src = imaging.Resize(img, *width, *width*b.Dy()/b.Dx())
	} else {
		src = imaging.FromImage(img)
	}

	var result *imaging.Buffer
	var report interface{}
	switch *op {
	case "blur":
		result, err = imaging.GaussianBlur(src, cfg.Canny.GaussianRadius, imaging.Uint8Clamped)
	case "sobel":
		result, err = imaging.SobelGradient(src, cfg.Canny.GaussianRadius)
	case "canny":
		result, err = imaging.CannyEdges(src, cfg.Canny)
	case "lines":
		var set *detection.LineSet
		if set, err = detection.DetectLineSet(src, cfg.Lines); err == nil {
			result = detection.RenderLineLabels(set)
			report = set.Lines
		}
	case "stop":
		var regions []detection.Region
		regions, err = detection.NewStopSignDetector(cfg.StopSign.StopSignOptions, stopTemplate(cfg)).Detect(src)
		if err == nil {
			result, err = imaging.ThresholdColor(src, cfg.StopSign.Color)
			report = regions
		}
	default:
		return fmt.Errorf("unknown operation %q", *op)
	}
	if err != nil {
		return err
	}

	if report != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	}

	if *out == "" {
		return nil
	}
	rendered, err := result.Image()
	if err != nil {
		return err
	}
	return imgio.Save(*out, rendered, imgio.PNGEncoder())
}

func stopTemplate(cfg *config.Config) *detection.Template {
	if cfg.StopSign.TemplatePath == "" {
		return nil
	}
	return detection.NewTemplate(func() (image.Image, error) {
		return imgio.Open(cfg.StopSign.TemplatePath)
	})
}
