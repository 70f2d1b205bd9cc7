package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/cache"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/family"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/index"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/layout"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/observability"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/visibility"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner holds no per-run state, so multiple goroutines can share one
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    cache.DefaultTTL,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	t, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Tree = t
	result.TreeID = family.Identity(t)
	result.TreeHash, err = cache.HashJSON(t)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.PersonCount = len(t.Persons)

	logger.Debug("loaded tree",
		"tree", result.TreeID,
		"persons", len(t.Persons),
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	f, l, layoutHit, err := r.GenerateLayoutWithCacheInfo(ctx, t, result.TreeHash, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Filter = f
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.VisibleCount = len(l.Order)
	result.Stats.CoupleCount = len(l.Couples)
	result.CacheInfo.LayoutHit = layoutHit

	logger.Info("computed layout",
		"persons", len(l.Order),
		"couples", len(l.Couples),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, t, f, l, result.TreeHash, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads the tree named by opts and reports the load hooks.
func (r *Runner) Load(ctx context.Context, opts Options) (*family.Tree, error) {
	source := opts.Source
	if source == "" {
		source = "inline"
	}
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)
	start := time.Now()

	t, err := Load(opts)

	persons := 0
	if t != nil {
		persons = len(t.Persons)
	}
	hooks.OnLoadComplete(ctx, source, persons, time.Since(start), err)
	return t, err
}

// GenerateLayoutWithCacheInfo computes the visibility filter and layout,
// reusing a cached layout when one exists for the same tree hash,
// collapsed set and geometry. Overrides are merged after the cache. The filter is always recomputed since it is
// cheap and not serializable.
func (r *Runner) GenerateLayoutWithCacheInfo(ctx context.Context, t *family.Tree, treeHash string, opts Options) (*visibility.Filter, *layout.Layout, bool, error) {
	r.applyLogger(&opts)
	opts.SetLayoutDefaults()

	treeID := family.Identity(t)
	hooks := observability.Pipeline()
	cacheHooks := observability.Cache()
	key := r.Keyer.LayoutKey(treeHash, opts.LayoutKeyOpts())

	ix := index.FromTree(t)
	f := visibility.New(ix, opts.Collapsed)
	hooks.OnLayoutStart(ctx, treeID, len(f.VisibleIDs()))
	start := time.Now()

	if !opts.Refresh {
		var cached layout.Layout
		if err := cache.GetJSON(ctx, r.Cache, key, &cached); err == nil {
			cacheHooks.OnCacheHit(ctx, "layout")
			hooks.OnLayoutComplete(ctx, treeID, len(cached.Order), time.Since(start), nil)
			return f, applyOverrides(&cached, opts), true, nil
		}
		cacheHooks.OnCacheMiss(ctx, "layout")
	}

	l := layout.ComputeIndexed(ix, f.VisibleIDs(), layoutOptions(opts)...)

	if data, err := json.Marshal(l); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			opts.Logger.Warn("cache layout", "err", err)
		} else {
			cacheHooks.OnCacheSet(ctx, "layout", len(data))
		}
	}

	hooks.OnLayoutComplete(ctx, treeID, len(l.Order), time.Since(start), nil)
	return f, applyOverrides(l, opts), false, nil
}

// GenerateLayout is a convenience wrapper that discards the cache hit info.
func (r *Runner) GenerateLayout(ctx context.Context, t *family.Tree, opts Options) (*visibility.Filter, *layout.Layout, error) {
	treeHash, err := cache.HashJSON(t)
	if err != nil {
		return nil, nil, err
	}
	f, l, _, err := r.GenerateLayoutWithCacheInfo(ctx, t, treeHash, opts)
	return f, l, err
}

// RenderWithCacheInfo renders every requested format, returning cached
// artifacts when all of them are present.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, t *family.Tree, f *visibility.Filter, l *layout.Layout, treeHash string, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	cacheHooks := observability.Cache()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	base := cache.Hash([]byte(r.Keyer.LayoutKey(treeHash, opts.LayoutKeyOpts())))

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(base, opts.ArtifactKeyOpts(format)))
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			cacheHooks.OnCacheHit(ctx, "artifact")
			hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
			return artifacts, true, nil
		}
		cacheHooks.OnCacheMiss(ctx, "artifact")
	}

	rendered, err := Render(ctx, t, f, l, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(base, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			opts.Logger.Warn("cache artifact", "format", format, "err", err)
			continue
		}
		cacheHooks.OnCacheSet(ctx, "artifact", len(data))
	}
	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
