package maprender

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/tdewolff/test"
)

type testSource struct {
	mu      sync.Mutex
	version uint64
	records []LevelRecord
	loads   int
}

func (s *testSource) Version(context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version, nil
}

func (s *testSource) Levels(context.Context) ([]LevelRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	return s.records, nil
}

type testObserver struct {
	renders int
	errs    []error
	hits    map[string]int
	misses  map[string]int
}

func newTestObserver() *testObserver {
	return &testObserver{hits: map[string]int{}, misses: map[string]int{}}
}

func (o *testObserver) ObserveRender(format string, _ time.Duration, err error) {
	o.renders++
	o.errs = append(o.errs, err)
}
func (o *testObserver) CacheHit(cache string)  { o.hits[cache]++ }
func (o *testObserver) CacheMiss(cache string) { o.misses[cache]++ }

func recorderFactory(engines *[]*recorder) EngineFactory {
	return func(format string, bounds orb.Bound, scale float64) (Engine, error) {
		if format != "test" {
			return nil, ErrUnknownFormat
		}
		e := &recorder{}
		*engines = append(*engines, e)
		return e, nil
	}
}

func testRequest() Request {
	return Request{
		Level:  "0",
		Bounds: testBounds,
		Scale:  1.0,
		Format: "test",
	}
}

func TestRendererRenderDataCache(t *testing.T) {
	source := &testSource{version: 1, records: testRecords()}
	observer := newTestObserver()
	var engines []*recorder
	r := NewRenderer(source, recorderFactory(&engines), &RendererOptions{Observer: observer})

	b, err := r.Render(context.Background(), testRequest())
	test.Error(t, err)
	test.T(t, b, []byte{2})
	test.T(t, source.loads, 1)
	test.T(t, observer.misses[RenderDataCache], 1)

	_, err = r.Render(context.Background(), testRequest())
	test.Error(t, err)
	test.T(t, source.loads, 1)
	test.T(t, observer.hits[RenderDataCache], 1)
	test.T(t, len(engines), 2)

	// a new data version is never served from older entries
	source.version = 2
	_, err = r.Render(context.Background(), testRequest())
	test.Error(t, err)
	test.T(t, source.loads, 2)
	test.T(t, observer.misses[RenderDataCache], 2)
	test.T(t, observer.renders, 3)
}

func TestRendererResponseCache(t *testing.T) {
	source := &testSource{version: 1, records: testRecords()}
	observer := newTestObserver()
	var engines []*recorder
	r := NewRenderer(source, recorderFactory(&engines), &RendererOptions{
		Observer:  observer,
		Responses: NewTTLCache[uint64, []byte](DefaultResponseCapacity),
	})

	req := testRequest()
	req.Permissions = NewPermissions("a", "b")
	_, err := r.Render(context.Background(), req)
	test.Error(t, err)
	test.T(t, observer.misses[ResponseCache], 1)

	req.Permissions = NewPermissions("b", "a")
	_, err = r.Render(context.Background(), req)
	test.Error(t, err)
	test.T(t, observer.hits[ResponseCache], 1)
	test.T(t, len(engines), 1)

	req.Permissions = NewPermissions("a")
	_, err = r.Render(context.Background(), req)
	test.Error(t, err)
	test.T(t, observer.misses[ResponseCache], 2)
	test.T(t, len(engines), 2)
}

func TestResponseKey(t *testing.T) {
	req := testRequest()
	key := responseKey(1, req)
	test.T(t, responseKey(1, req), key)
	test.That(t, responseKey(2, req) != key)

	other := req
	other.Scale = 2.0
	test.That(t, responseKey(1, other) != key)
	other = req
	other.SingleLevel = true
	test.That(t, responseKey(1, other) != key)
	other = req
	other.Format = "svg"
	test.That(t, responseKey(1, other) != key)
}

func TestRendererErrors(t *testing.T) {
	source := &testSource{version: 1, records: testRecords()}
	observer := newTestObserver()
	var engines []*recorder
	r := NewRenderer(source, recorderFactory(&engines), &RendererOptions{Observer: observer})

	var tts = []struct {
		modify func(*Request)
		err    error
	}{
		{func(req *Request) { req.Scale = 0.0 }, ErrPrecondition},
		{func(req *Request) { req.Scale = -1.0 }, ErrPrecondition},
		{func(req *Request) { req.Bounds = orb.Bound{} }, ErrPrecondition},
		{func(req *Request) { req.Level = "9" }, ErrUnknownLevel},
		{func(req *Request) { req.Format = "gif" }, ErrUnknownFormat},
	}
	for _, tt := range tts {
		req := testRequest()
		tt.modify(&req)
		_, err := r.Render(context.Background(), req)
		test.That(t, errors.Is(err, tt.err), err)
	}
	test.T(t, observer.renders, len(tts))
	test.T(t, len(engines), 0)
}

func TestRendererCanceled(t *testing.T) {
	source := &testSource{version: 1, records: testRecords()}
	var engines []*recorder
	r := NewRenderer(source, recorderFactory(&engines), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Render(ctx, testRequest())
	test.That(t, errors.Is(err, context.Canceled), err)
}
