package svg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strings"
	"time"

	"github.com/c3nav/maprender"
	"golang.org/x/image/draw"
)

// Rasterizer is an external program converting SVG to PNG.
type Rasterizer string

const (
	RSVGConvert Rasterizer = "rsvg-convert"
	Inkscape    Rasterizer = "inkscape"
)

var pngMagic = []byte("\x89PNG")

// waitDelay bounds how long a killed rasterizer may keep its output pipes open through child processes.
const waitDelay = time.Second

// ParseRasterizer returns the rasterizer by name.
func ParseRasterizer(name string) (Rasterizer, error) {
	switch r := Rasterizer(name); r {
	case RSVGConvert, Inkscape:
		return r, nil
	}
	return "", fmt.Errorf("invalid SVG rasterizer: %s", name)
}

func (r Rasterizer) args() []string {
	if r == Inkscape {
		return []string{string(r), "-z", "-e", "/dev/stderr", "/dev/stdin"}
	}
	return []string{string(r), "--format", "png"}
}

// Rasterize pipes the SVG document through the external rasterizer and returns the PNG it produced. Exiting non-zero, hitting the timeout or producing no PNG is an ExternalToolError.
func Rasterize(ctx context.Context, doc []byte, opts *Options) ([]byte, error) {
	rasterizer := opts.Rasterizer
	if rasterizer == "" {
		rasterizer = RSVGConvert
	}
	args := opts.Command
	if len(args) == 0 {
		args = rasterizer.args()
	}
	if 0 < opts.Timeout {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdin = bytes.NewReader(doc)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, &maprender.ExternalToolError{
			Tool:   string(rasterizer),
			Err:    err,
			Stderr: strings.TrimSpace(stderr.String()),
		}
	}

	out := stdout.Bytes()
	if rasterizer == Inkscape {
		out = stderr.Bytes()
	}
	i := bytes.Index(out, pngMagic)
	if i == -1 {
		return nil, &maprender.ExternalToolError{
			Tool: string(rasterizer),
			Err:  errors.New("no PNG in output"),
		}
	}
	return out[i:], nil
}

func (r *SVG) renderPNG(ctx context.Context) ([]byte, error) {
	out, err := Rasterize(ctx, []byte(r.Document(true).String()), &r.opts)
	if err != nil {
		return nil, err
	}
	src, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, &maprender.ExternalToolError{
			Tool: string(r.opts.Rasterizer),
			Err:  fmt.Errorf("invalid PNG: %w", err),
		}
	}

	// crop the buffer margin
	w, h := r.Size(false)
	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	offset := src.Bounds().Min.Add(image.Pt(r.bufferPx, r.bufferPx))
	draw.Draw(img, img.Bounds(), src, offset, draw.Src)

	b := &bytes.Buffer{}
	if err := png.Encode(b, img); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
