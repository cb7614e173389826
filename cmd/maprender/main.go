package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/c3nav/maprender"
	"github.com/c3nav/maprender/internal/config"
	"github.com/c3nav/maprender/internal/logger"
	"github.com/c3nav/maprender/internal/metrics"
	"github.com/c3nav/maprender/mapdata"
	"github.com/c3nav/maprender/renderers"
	"github.com/paulmach/orb"
	"github.com/tdewolff/argp"
)

func main() {
	var configFile, level, format, output, bbox, permissions, metricsFile, logLevel string
	var scale float64 = 1.0
	var singleLevel bool
	var inputs []string

	cmd := argp.New("Render a map level to SVG, PNG or a Blender script")
	cmd.AddOpt(&configFile, "c", "config", "YAML configuration file")
	cmd.AddOpt(&level, "l", "level", "Level id")
	cmd.AddOpt(&format, "f", "format", "Output format: "+strings.Join(renderers.Formats(), ", ")+", default from output extension")
	cmd.AddOpt(&output, "o", "output", "Output file, leave blank to use stdout")
	cmd.AddOpt(&bbox, "b", "bbox", "Bounding box as minx,miny,maxx,maxy, default is the extent of the level")
	cmd.AddOpt(&scale, "s", "scale", "Pixels per model unit")
	cmd.AddOpt(&permissions, "p", "permissions", "Comma separated access restrictions held by the viewer")
	cmd.AddOpt(&singleLevel, "", "single-level", "Draw only the first full level")
	cmd.AddOpt(&metricsFile, "", "metrics", "Write Prometheus metrics to this file")
	cmd.AddOpt(&logLevel, "", "log-level", "Log level, overrides the configuration")
	cmd.AddRest(&inputs, "input", "Map data file (.yaml or .geojson)")
	cmd.Parse()

	cfg, err := config.Load(configFile)
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	log := logger.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if len(inputs) != 1 {
		log.Fatal().Msg("must pass one map data file")
	} else if level == "" {
		log.Fatal().Msg("must pass a level")
	}
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(output), ".")
		if strings.HasSuffix(output, ".blend.py") {
			format = "blend.py"
		} else if format == "" {
			format = "svg"
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source := mapdata.NewFile(inputs[0])
	m := metrics.New()
	opts := &maprender.RendererOptions{
		RenderData:         maprender.NewTTLCache[maprender.RenderDataKey, *maprender.LevelRenderData](cfg.Cache.RenderDataCapacity),
		RenderDataTTL:      cfg.Cache.RenderDataTTL,
		ResponseTTL:        cfg.Cache.ResponseTTL,
		Observer:           m,
		DefaultMinAltitude: cfg.Render.DefaultMinAltitude,
		Style:              cfg.Style(),
	}
	if cfg.Cache.Responses {
		opts.Responses = maprender.NewTTLCache[uint64, []byte](cfg.Cache.ResponseCapacity)
	}
	renderer := maprender.NewRenderer(source, renderers.Factory(cfg.RendererOptions()), opts)

	req := maprender.Request{
		Level:       maprender.LevelID(level),
		Scale:       scale,
		Format:      format,
		Permissions: parsePermissions(permissions),
		SingleLevel: singleLevel,
	}
	if bbox != "" {
		if req.Bounds, err = parseBounds(bbox); err != nil {
			log.Fatal().Err(err).Msg("invalid bounding box")
		}
	} else if req.Bounds, err = levelBounds(ctx, renderer, source, req.Level); err != nil {
		log.Fatal().Err(err).Str("level", level).Msg("failed to determine level extent")
	}

	start := time.Now()
	b, err := renderer.Render(ctx, req)
	if err != nil {
		log.Fatal().Err(err).Str("level", level).Str("format", format).Msg("render failed")
	}
	log.Info().Str("level", level).Str("format", format).Int("bytes", len(b)).Dur("duration", time.Since(start)).Msg("rendered")

	if output == "" || output == "-" {
		_, err = os.Stdout.Write(b)
	} else {
		err = os.WriteFile(output, b, 0644)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to write output")
	}

	if metricsFile != "" {
		if err := m.WriteToTextfile(metricsFile); err != nil {
			log.Error().Err(err).Msg("failed to write metrics")
		}
	}
}

func parsePermissions(s string) maprender.Permissions {
	var ids []maprender.AccessRestriction
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, maprender.AccessRestriction(id))
		}
	}
	return maprender.NewPermissions(ids...)
}

func parseBounds(s string) (orb.Bound, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 4 {
		return orb.Bound{}, fmt.Errorf("expected minx,miny,maxx,maxy: %s", s)
	}
	var v [4]float64
	for i, field := range fields {
		f, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return orb.Bound{}, err
		}
		v[i] = f
	}
	return orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}, nil
}

// levelBounds returns the extent of all altitude areas of the full levels.
func levelBounds(ctx context.Context, renderer *maprender.Renderer, source maprender.MapSource, level maprender.LevelID) (orb.Bound, error) {
	version, err := source.Version(ctx)
	if err != nil {
		return orb.Bound{}, err
	}
	data, err := renderer.LevelRenderData(ctx, level, version)
	if err != nil {
		return orb.Bound{}, err
	}
	var areas []maprender.Geometry
	for _, l := range data.FullLevels() {
		for _, area := range l.AltitudeAreas {
			areas = append(areas, area.Geometry)
		}
	}
	if len(areas) == 0 {
		return orb.Bound{}, fmt.Errorf("level has no altitude areas")
	}
	bound := areas[0].Bound()
	for _, area := range areas[1:] {
		bound = bound.Union(area.Bound())
	}
	return bound, nil
}
