// Package maprender turns the stored geometry of indoor map levels into altitude ordered, permission filtered SVG, PNG or 3D scene output.
package maprender

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/paulmach/orb"
	"golang.org/x/sync/singleflight"
)

// MapSource provides the persisted map data. Version must change whenever the data changes.
type MapSource interface {
	Version(ctx context.Context) (uint64, error)
	Levels(ctx context.Context) ([]LevelRecord, error)
}

// Observer is notified of renders and cache lookups, e.g. for metrics.
type Observer interface {
	ObserveRender(format string, duration time.Duration, err error)
	CacheHit(cache string)
	CacheMiss(cache string)
}

// Cache names passed to Observer.
const (
	RenderDataCache = "render_data"
	ResponseCache   = "response"
)

// RenderDataKey identifies cached render data. Entries of older data versions are never hit again.
type RenderDataKey struct {
	Level   LevelID
	Version uint64
}

// Request is a render request as received from the request boundary.
type Request struct {
	Level       LevelID
	Bounds      orb.Bound
	Scale       float64 // pixels per model unit
	Format      string
	Permissions Permissions
	SingleLevel bool
}

// RendererOptions configures a Renderer.
type RendererOptions struct {
	RenderData    Cache[RenderDataKey, *LevelRenderData]
	RenderDataTTL time.Duration

	// Responses caches rendered bytes, disabled when nil.
	Responses   Cache[uint64, []byte]
	ResponseTTL time.Duration

	Observer           Observer
	DefaultMinAltitude int
	Style              Style
}

// DefaultRendererOptions caches render data in memory for ten minutes and does not cache responses.
var DefaultRendererOptions = RendererOptions{
	RenderDataTTL: 10 * time.Minute,
	ResponseTTL:   time.Minute,
}

// Renderer serves render requests. It is safe for concurrent use; every request composes on its own engine and reads only shared, immutable render data.
type Renderer struct {
	source  MapSource
	engines EngineFactory
	opts    RendererOptions
	group   singleflight.Group
}

// NewRenderer returns a renderer reading from source and drawing with engines created by the factory.
func NewRenderer(source MapSource, engines EngineFactory, opts *RendererOptions) *Renderer {
	if opts == nil {
		defaultOptions := DefaultRendererOptions
		opts = &defaultOptions
	}
	r := &Renderer{
		source:  source,
		engines: engines,
		opts:    *opts,
	}
	if r.opts.RenderData == nil {
		r.opts.RenderData = NewTTLCache[RenderDataKey, *LevelRenderData](DefaultRenderDataCapacity)
	}
	if r.opts.Observer == nil {
		r.opts.Observer = nopObserver{}
	}
	return r
}

// Render renders the request and returns the serialized output.
func (r *Renderer) Render(ctx context.Context, req Request) ([]byte, error) {
	start := time.Now()
	b, err := r.render(ctx, req)
	r.opts.Observer.ObserveRender(req.Format, time.Since(start), err)
	return b, err
}

func (r *Renderer) render(ctx context.Context, req Request) ([]byte, error) {
	if !(0.0 < req.Scale) || math.IsInf(req.Scale, 0) {
		return nil, Preconditionf("invalid scale %v", req.Scale)
	} else if !(req.Bounds.Min[0] < req.Bounds.Max[0] && req.Bounds.Min[1] < req.Bounds.Max[1]) {
		return nil, Preconditionf("empty bounds %v", req.Bounds)
	}

	version, err := r.source.Version(ctx)
	if err != nil {
		return nil, err
	}

	var key uint64
	if r.opts.Responses != nil {
		key = responseKey(version, req)
		if b, ok := r.opts.Responses.Get(key); ok {
			r.opts.Observer.CacheHit(ResponseCache)
			return b, nil
		}
		r.opts.Observer.CacheMiss(ResponseCache)
	}

	data, err := r.LevelRenderData(ctx, req.Level, version)
	if err != nil {
		return nil, err
	}

	e, err := r.engines(req.Format, req.Bounds, req.Scale)
	if err != nil {
		return nil, err
	}
	err = Composite(e, data, CompositeRequest{
		Bounds:             req.Bounds,
		Permissions:        req.Permissions,
		DefaultMinAltitude: r.opts.DefaultMinAltitude,
		SingleLevel:        req.SingleLevel,
		Style:              r.opts.Style,
	})
	if err != nil {
		return nil, err
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	b, err := e.Render(ctx)
	if err != nil {
		return nil, err
	}
	if r.opts.Responses != nil {
		r.opts.Responses.Set(key, b, r.opts.ResponseTTL)
	}
	return b, nil
}

// LevelRenderData returns the render data of a level at a data version, building it from the map source on a cache miss. Concurrent misses for the same key share one build.
func (r *Renderer) LevelRenderData(ctx context.Context, level LevelID, version uint64) (*LevelRenderData, error) {
	key := RenderDataKey{level, version}
	if data, ok := r.opts.RenderData.Get(key); ok {
		r.opts.Observer.CacheHit(RenderDataCache)
		return data, nil
	}
	r.opts.Observer.CacheMiss(RenderDataCache)

	v, err, _ := r.group.Do(fmt.Sprintf("%s@%d", level, version), func() (interface{}, error) {
		records, err := r.source.Levels(ctx)
		if err != nil {
			return nil, err
		}
		data, err := BuildLevelRenderData(records, level)
		if err != nil {
			return nil, err
		}
		r.opts.RenderData.Set(key, data, r.opts.RenderDataTTL)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*LevelRenderData), nil
}

// responseKey hashes everything that influences the rendered bytes.
func responseKey(version uint64, req Request) uint64 {
	h := xxhash.New()
	buf := make([]byte, 8)
	writeUint := func(v uint64) {
		binary.LittleEndian.PutUint64(buf, v)
		h.Write(buf)
	}
	writeString := func(s string) {
		writeUint(uint64(len(s)))
		h.WriteString(s)
	}

	writeUint(version)
	writeString(string(req.Level))
	for _, f := range []float64{req.Bounds.Min[0], req.Bounds.Min[1], req.Bounds.Max[0], req.Bounds.Max[1], req.Scale} {
		writeUint(math.Float64bits(f))
	}
	writeString(req.Format)
	writeString(strconv.FormatBool(req.SingleLevel))
	for _, id := range req.Permissions.Sorted() {
		writeString(string(id))
	}
	return h.Sum64()
}

type nopObserver struct{}

func (nopObserver) ObserveRender(string, time.Duration, error) {}
func (nopObserver) CacheHit(string)                            {}
func (nopObserver) CacheMiss(string)                           {}
