package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/xtding233/loot-backend/internal/logger"
	"github.com/xtding233/loot-backend/internal/loot"
	"github.com/xtding233/loot-backend/internal/metrics"
	"github.com/xtding233/loot-backend/internal/table"
)

var (
	ErrCatalogNotFound = errors.New("catalog not found")
	ErrTableNotFound   = errors.New("table not found")
	ErrInvalidRequest  = errors.New("invalid request")
)

// DefaultTrials is the simulation size when a request does not name one.
const DefaultTrials = 1000

// Definitions is the read side of the definition loader.
type Definitions interface {
	table.Resolver
	LoadCatalog(name string) (*loot.Catalog, error)
	Names(dir string) ([]string, error)
	Paths() table.Paths
	Invalidate()
}

// Options tunes a Service.
type Options struct {
	CacheSize int
	CacheTTL  time.Duration
	MaxTrials int
	// MaxStack bounds the copies a single drop may produce. It must not
	// exceed loot.MaxStack.
	MaxStack int
}

// Service rolls loot against the loaded definitions. It checks every
// request up front so that the loot package's contract panics cannot be
// reached from outside input.
type Service struct {
	defs      Definitions
	cache     *resultCache
	maxTrials int
	maxStack  int
}

func New(defs Definitions, opts Options) (*Service, error) {
	if opts.CacheSize <= 0 {
		return nil, fmt.Errorf("cache size must be > 0, got %d", opts.CacheSize)
	}
	if opts.MaxTrials <= 0 {
		return nil, fmt.Errorf("max trials must be > 0, got %d", opts.MaxTrials)
	}
	if opts.MaxStack <= 0 || opts.MaxStack > loot.MaxStack {
		return nil, fmt.Errorf("max stack must be in [1, %d], got %d", loot.MaxStack, opts.MaxStack)
	}
	return &Service{
		defs:      defs,
		cache:     newResultCache(opts.CacheSize, opts.CacheTTL),
		maxTrials: opts.MaxTrials,
		maxStack:  opts.MaxStack,
	}, nil
}

// Catalogs lists the catalog names.
func (s *Service) Catalogs(ctx context.Context) ([]string, error) {
	return s.defs.Names(s.defs.Paths().CatalogDir())
}

// Tables lists the drop table names.
func (s *Service) Tables(ctx context.Context) ([]string, error) {
	return s.defs.Names(s.defs.Paths().TableDir())
}

// Tree renders a catalog as a text tree.
func (s *Service) Tree(ctx context.Context, name string) (string, error) {
	c, err := s.catalog(name)
	if err != nil {
		return "", err
	}
	return c.Render(name), nil
}

// Roll picks at most one item from a catalog branch.
func (s *Service) Roll(ctx context.Context, req RollRequest) (RollResult, error) {
	c, err := s.catalog(req.Catalog)
	if err != nil {
		return RollResult{}, err
	}

	depth, luck := loot.MaxDepth, 1.0
	if req.Depth != nil {
		depth = *req.Depth
	}
	if req.Luck != nil {
		luck = *req.Luck
	}
	if depth < 0 {
		return RollResult{}, fmt.Errorf("%w: depth must be >= 0", ErrInvalidRequest)
	}
	if math.IsNaN(luck) {
		return RollResult{}, fmt.Errorf("%w: %w", ErrInvalidRequest, loot.ErrInvalidLuck)
	}
	if err := checkPath(c, req.Path); err != nil {
		return RollResult{}, err
	}

	seed := seedOrNew(req.Seed)
	res := RollResult{Catalog: req.Catalog, Path: req.Path, Seed: seed}
	if it, ok := c.RollSeeded(req.Path, depth, luck, loot.NewSeededRNG(seed)); ok {
		res.Item = &it
	}

	s.observe("roll", req.Catalog, boolCount(res.Item != nil))
	logger.FromContext(ctx).Debug("roll",
		"catalog", req.Catalog, "path", req.Path, "depth", depth, "luck", luck,
		"seed", seed, "found", res.Item != nil)
	return res, nil
}

// Loot evaluates a client supplied drop list against a catalog.
func (s *Service) Loot(ctx context.Context, req LootRequest) (LootResult, error) {
	c, err := s.catalog(req.Catalog)
	if err != nil {
		return LootResult{}, err
	}
	if len(req.Drops) == 0 {
		return LootResult{}, fmt.Errorf("%w: at least one drop is required", ErrInvalidRequest)
	}

	drops := make([]loot.Drop, len(req.Drops))
	for i, spec := range req.Drops {
		drops[i] = spec.Drop()
	}
	if err := s.checkDrops(c, drops); err != nil {
		return LootResult{}, err
	}

	seed := seedOrNew(req.Seed)
	rewards := c.LootSeeded(drops, loot.NewSeededRNG(seed))

	s.observe("loot", req.Catalog, len(rewards))
	logger.FromContext(ctx).Debug("loot",
		"catalog", req.Catalog, "drops", len(drops), "seed", seed, "rewards", len(rewards))
	return LootResult{Catalog: req.Catalog, Rewards: nonNil(rewards), Seed: seed}, nil
}

// LootTable evaluates a drop table. Seeded results are served from cache.
func (s *Service) LootTable(ctx context.Context, req TableRequest) (TableResult, error) {
	resolved, c, err := s.resolve(req.Table, req.Overrides)
	if err != nil {
		return TableResult{}, err
	}

	res := TableResult{Table: req.Table, Catalog: resolved.Catalog, Version: resolved.Version}
	log := logger.FromContext(ctx).With("table", req.Table, "catalog", resolved.Catalog)

	var key string
	if req.Seed != nil {
		key = cacheKey(req.Table, req.Overrides, *req.Seed)
		if rewards, ok := s.cache.Get(key); ok {
			metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
			res.Rewards, res.Seed, res.Cached = nonNil(rewards), *req.Seed, true
			log.Debug("loot table cache hit", "seed", res.Seed)
			return res, nil
		}
		metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()
	}

	res.Seed = seedOrNew(req.Seed)
	res.Rewards = nonNil(c.LootSeeded(resolved.Drops, loot.NewSeededRNG(res.Seed)))
	if key != "" {
		s.cache.Set(key, res.Rewards)
	}

	s.observe("table", resolved.Catalog, len(res.Rewards))
	log.Debug("loot table", "seed", res.Seed, "rewards", len(res.Rewards))
	return res, nil
}

// Simulate runs a drop table many times and reports the distribution.
func (s *Service) Simulate(ctx context.Context, req SimulateRequest) (SimulateResult, error) {
	trials := req.Trials
	if trials == 0 {
		trials = DefaultTrials
	}
	if trials < 0 || trials > s.maxTrials {
		return SimulateResult{}, fmt.Errorf("%w: trials must be in [1, %d]", ErrInvalidRequest, s.maxTrials)
	}

	resolved, c, err := s.resolve(req.Table, table.Overrides{})
	if err != nil {
		return SimulateResult{}, err
	}

	seed := seedOrNew(req.Seed)
	start := time.Now()
	report, err := loot.RunMonteCarlo(c, resolved.Drops, trials, loot.NewSeededRNG(seed))
	if err != nil {
		return SimulateResult{}, err
	}

	metrics.RollsTotal.WithLabelValues("simulate", resolved.Catalog).Add(float64(trials))
	logger.FromContext(ctx).Info("simulation done",
		"table", req.Table, "trials", trials, "seed", seed,
		"mean_rewards", report.Rewards.Mean, "duration", time.Since(start))
	return SimulateResult{Table: req.Table, Catalog: resolved.Catalog, Seed: seed, Report: report}, nil
}

// Reload drops every cached definition and result. trigger labels the
// reload in metrics and logs.
func (s *Service) Reload(ctx context.Context, trigger string) {
	s.defs.Invalidate()
	purged := s.cache.Len()
	s.cache.Clear()
	metrics.ReloadsTotal.WithLabelValues(trigger).Inc()
	logger.FromContext(ctx).Info("definitions reloaded", "trigger", trigger, "purged_results", purged)
}

func (s *Service) catalog(name string) (*loot.Catalog, error) {
	c, err := s.defs.LoadCatalog(name)
	switch {
	case err == nil:
		return c, nil
	case errors.Is(err, table.ErrNotFound):
		return nil, fmt.Errorf("%w: %q", ErrCatalogNotFound, name)
	case errors.Is(err, table.ErrInvalidName):
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	default:
		return nil, err
	}
}

func (s *Service) resolve(name string, o table.Overrides) (table.Resolved, *loot.Catalog, error) {
	if o.Luck != nil && math.IsNaN(*o.Luck) {
		return table.Resolved{}, nil, fmt.Errorf("%w: %w", ErrInvalidRequest, loot.ErrInvalidLuck)
	}
	resolved, err := s.defs.Resolve(name, o)
	switch {
	case errors.Is(err, table.ErrNotFound):
		return table.Resolved{}, nil, fmt.Errorf("%w: %q", ErrTableNotFound, name)
	case errors.Is(err, table.ErrInvalidName):
		return table.Resolved{}, nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	case errors.Is(err, loot.ErrInvalidDrop):
		// only overrides can break drops that passed table validation
		return table.Resolved{}, nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	case err != nil:
		return table.Resolved{}, nil, err
	}

	c, err := s.catalog(resolved.Catalog)
	if err != nil {
		return table.Resolved{}, nil, fmt.Errorf("table %q: %w", name, err)
	}
	if err := s.checkDrops(c, resolved.Drops); err != nil {
		return table.Resolved{}, nil, fmt.Errorf("table %q: %w", name, err)
	}
	return resolved, c, nil
}

func (s *Service) observe(op, catalog string, rewards int) {
	metrics.RollsTotal.WithLabelValues(op, catalog).Inc()
	metrics.RewardsTotal.WithLabelValues(catalog).Add(float64(rewards))
	if rewards == 0 {
		metrics.EmptyRollsTotal.WithLabelValues(catalog).Inc()
	}
}

// checkDrops reports what LootSeeded would panic on, and stacks larger
// than the service allows.
func (s *Service) checkDrops(c *loot.Catalog, drops []loot.Drop) error {
	if err := loot.ValidateDrops(drops); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	for i, d := range drops {
		if d.Stack.Max > s.maxStack {
			return fmt.Errorf("%w: drops[%d]: stack max %d exceeds %d", ErrInvalidRequest, i, d.Stack.Max, s.maxStack)
		}
		if err := checkPath(c, d.Path); err != nil {
			return fmt.Errorf("drops[%d]: %w", i, err)
		}
	}
	return nil
}

func checkPath(c *loot.Catalog, path string) error {
	if path == loot.Root {
		return nil
	}
	_, err := c.Find(path)
	return err
}

func seedOrNew(seed *uint64) uint64 {
	if seed != nil {
		return *seed
	}
	return loot.NewSeed()
}

func boolCount(ok bool) int {
	if ok {
		return 1
	}
	return 0
}

func nonNil(items []loot.Item) []loot.Item {
	if items == nil {
		return []loot.Item{}
	}
	return items
}
