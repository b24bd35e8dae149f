// Package curation runs the AI recommendation pipeline for a profile: fetch
// candidates per category, match them against the cached catalog, and commit
// the new collection generation together with the profile update.
package curation

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/purestream711/PureStream-sub004/internal/cache"
	"github.com/purestream711/PureStream-sub004/internal/db"
	"github.com/purestream711/PureStream-sub004/internal/matcher"
	"github.com/purestream711/PureStream-sub004/internal/models"
	"github.com/purestream711/PureStream-sub004/internal/recommend"
	"github.com/purestream711/PureStream-sub004/internal/telemetry"
	"golang.org/x/sync/singleflight"
)

// Store is the persisted state a run reads and commits.
type Store interface {
	GetProfile(id string) (*models.Profile, error)
	GetMetadata(key string) (*models.CacheMetadata, error)
	CommitCuration(ctx context.Context, c db.CurationCommit) error
}

// CatalogProvider returns cached catalog items for a profile's libraries.
type CatalogProvider interface {
	GetCatalogItems(ctx context.Context, profileID string, libraryIDs []string) ([]models.CatalogItem, error)
}

// Options configures an Orchestrator. Zero values take defaults.
type Options struct {
	Categories     []models.Category
	CandidateLimit int
	FailurePolicy  FailurePolicy
	Matcher        *matcher.Matcher
	Policy         cache.Policy

	// LockDir holds per-profile lock files. Empty disables cross-process locking.
	LockDir string

	Logger    *log.Logger
	Observer  Observer
	Telemetry telemetry.Client

	// NewRand returns the generator for one run. The default seeds each run afresh.
	NewRand func() *rand.Rand
}

// DefaultCandidateLimit is the per-category candidate request size.
const DefaultCandidateLimit = 20

// CategoryResult is the outcome of one category within a run.
type CategoryResult struct {
	Category   models.Category
	Candidates int
	Malformed  int
	Matches    []matcher.MatchResult
	ItemIDs    []string // shuffled, deduplicated; the persisted order
	Err        error
}

// Result describes a committed run.
type Result struct {
	RunID          string
	ProfileID      string
	Categories     []CategoryResult
	Collections    []models.DashboardCollection
	FeaturedItemID *string
	CompletedAt    time.Time
	Duration       time.Duration
}

// MatchCount returns the number of persisted entries across categories.
func (r *Result) MatchCount() int {
	n := 0
	for _, c := range r.Categories {
		n += len(c.ItemIDs)
	}
	return n
}

// Orchestrator runs curation. Runs for the same profile never overlap: callers
// arriving while a run is in flight share its outcome.
type Orchestrator struct {
	store   Store
	catalog CatalogProvider
	source  recommend.Source
	opts    Options
	group   singleflight.Group

	mu      sync.Mutex
	flights map[string]*flight
	serial  sync.Map // profile id -> *sync.Mutex held while a run executes
}

// flight is the context shared by every caller waiting on one profile's run.
// It is cancelled once the last waiter leaves.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// New creates an Orchestrator.
func New(store Store, catalog CatalogProvider, source recommend.Source, opts Options) *Orchestrator {
	if len(opts.Categories) == 0 {
		opts.Categories = models.DefaultCategories()
	}
	if opts.CandidateLimit <= 0 {
		opts.CandidateLimit = DefaultCandidateLimit
	}
	if opts.Matcher == nil {
		opts.Matcher = matcher.New()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Telemetry == nil {
		opts.Telemetry = telemetry.NewNoop()
	}
	if opts.NewRand == nil {
		opts.NewRand = func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
	}
	return &Orchestrator{
		store:   store,
		catalog: catalog,
		source:  source,
		opts:    opts,
		flights: make(map[string]*flight),
	}
}

// Run curates profileID. Concurrent calls for the same profile share the
// in-flight run. Cancelling ctx returns this caller early; the run itself is
// cancelled only when every caller waiting on it has gone.
func (o *Orchestrator) Run(ctx context.Context, profileID string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("curation cancelled: %w", err)
	}

	f := o.join(ctx, profileID)
	defer o.leave(profileID, f)

	ch := o.group.DoChan(profileID, func() (any, error) {
		// A run abandoned by all its callers may still be unwinding.
		mu, _ := o.serial.LoadOrStore(profileID, &sync.Mutex{})
		mu.(*sync.Mutex).Lock()
		defer mu.(*sync.Mutex).Unlock()
		return o.run(f.ctx, profileID)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Result), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("curation cancelled: %w", ctx.Err())
	}
}

func (o *Orchestrator) join(ctx context.Context, profileID string) *flight {
	o.mu.Lock()
	defer o.mu.Unlock()
	f, ok := o.flights[profileID]
	if !ok {
		runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: runCtx, cancel: cancel}
		o.flights[profileID] = f
	}
	f.waiters++
	return f
}

func (o *Orchestrator) leave(profileID string, f *flight) {
	o.mu.Lock()
	defer o.mu.Unlock()
	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if o.flights[profileID] == f {
		delete(o.flights, profileID)
	}
	// Later callers start a fresh run instead of joining the cancelled one.
	o.group.Forget(profileID)
}

// RunIfStale runs only when the profile's dashboard cache has expired or force
// is set. The bool reports whether a run happened.
func (o *Orchestrator) RunIfStale(ctx context.Context, profileID string, force bool) (*Result, bool, error) {
	meta, err := o.store.GetMetadata(cache.DashboardKey(profileID))
	if err != nil {
		return nil, false, &Error{Kind: PersistenceFailure, Stage: StageIdle, Err: err}
	}
	if !o.opts.Policy.MetadataNeedsRefresh(meta, force) {
		o.opts.Logger.Debug("dashboard cache fresh, skipping curation", "profile", profileID,
			"age", o.opts.Policy.Age(meta.LastRefreshed).Round(time.Second))
		return nil, false, nil
	}
	res, err := o.Run(ctx, profileID)
	return res, err == nil, err
}

type run struct {
	o         *Orchestrator
	profileID string
	stage     Stage
	started   time.Time
	logger    *log.Logger
}

func (r *run) enter(s Stage) {
	r.stage = s
	if r.o.opts.Observer != nil {
		r.o.opts.Observer(r.profileID, s)
	}
}

// fail moves the run to Failed and reports it.
func (r *run) fail(err error) error {
	stage := r.stage
	r.enter(StageFailed)
	kind := KindOf(err)
	r.logger.Error("curation failed", "stage", stage, "kind", kind, "err", err)
	r.o.opts.Telemetry.TrackCurationFailed(kind.String(), stage.String(), time.Since(r.started).Milliseconds())
	return err
}

func (r *run) cancelled(ctx context.Context) error {
	return r.fail(fmt.Errorf("curation cancelled during %s: %w", r.stage, ctx.Err()))
}

func (o *Orchestrator) run(ctx context.Context, profileID string) (*Result, error) {
	r := &run{
		o:         o,
		profileID: profileID,
		started:   time.Now(),
		logger:    o.opts.Logger.With("profile", profileID),
	}
	r.enter(StageIdle)

	if o.opts.LockDir != "" {
		lock, err := acquireProfileLock(o.opts.LockDir, profileID)
		if err != nil {
			return nil, r.fail(err)
		}
		defer func() {
			if err := lock.release(); err != nil {
				r.logger.Warn("failed to release curation lock", "err", err)
			}
		}()
	}

	profile, err := o.store.GetProfile(profileID)
	if err != nil {
		return nil, r.fail(&Error{Kind: PersistenceFailure, Stage: StageIdle, Err: err})
	}

	res := &Result{RunID: uuid.NewString(), ProfileID: profileID}
	rng := o.opts.NewRand()

	// FetchingCandidates
	r.enter(StageFetchingCandidates)
	batches, err := r.fetch(ctx)
	if err != nil {
		return nil, err
	}

	// Matching
	r.enter(StageMatching)
	items, err := o.catalog.GetCatalogItems(ctx, profileID, profile.SelectedLibraries)
	if err != nil {
		if ctx.Err() != nil {
			return nil, r.cancelled(ctx)
		}
		return nil, r.fail(&Error{Kind: SourceUnavailable, Stage: StageMatching, Source: CatalogSource,
			Err: fmt.Errorf("read catalog: %w", err)})
	}
	if len(items) == 0 {
		return nil, r.fail(&Error{Kind: EmptyCatalog, Stage: StageMatching,
			Err: fmt.Errorf("no cached items in %d selected libraries", len(profile.SelectedLibraries))})
	}
	for i := range batches {
		if batches[i].Err != nil {
			continue
		}
		batches[i].Matches = o.opts.Matcher.MatchCandidates(batches[i].candidates, items)
		batches[i].ItemIDs = uniqueItemIDs(batches[i].Matches)
		r.logger.Debug("matched category", "category", batches[i].Category.ID,
			"candidates", batches[i].Candidates, "matches", len(batches[i].ItemIDs))
	}

	// Persisting: buffer the generation, committed with the profile below.
	r.enter(StagePersisting)
	var generations []models.CollectionGeneration
	for i := range batches {
		ids := batches[i].ItemIDs
		if len(ids) == 0 {
			continue
		}
		rng.Shuffle(len(ids), func(a, b int) { ids[a], ids[b] = ids[b], ids[a] })
		generations = append(generations, models.CollectionGeneration{
			CollectionID: batches[i].Category.CollectionID(),
			ItemIDs:      ids,
		})
	}

	// SelectingFeatured
	r.enter(StageSelectingFeatured)
	res.FeaturedItemID = pickFeatured(batches, rng)

	// UpdatingProfile
	r.enter(StageUpdatingProfile)
	if ctx.Err() != nil {
		return nil, r.cancelled(ctx)
	}
	now := o.opts.Policy.Now
	committedAt := time.Now().UTC()
	if now != nil {
		committedAt = now().UTC()
	}

	updated := *profile
	updated.DashboardCollections = mergeCollections(profile.DashboardCollections, aiCollections(batches))
	updated.LastCurationAt = &committedAt
	updated.FeaturedItemID = res.FeaturedItemID

	total := 0
	for _, g := range generations {
		total += len(g.ItemIDs)
	}
	err = o.store.CommitCuration(ctx, db.CurationCommit{
		ProfileID:   profileID,
		Generations: generations,
		Profile:     &updated,
		Metadata: &models.CacheMetadata{
			Key:           cache.DashboardKey(profileID),
			CacheType:     models.CacheTypeDashboard,
			ProfileID:     profileID,
			LastRefreshed: committedAt,
			ItemCount:     total,
			IsComplete:    true,
		},
		CommittedAt: committedAt,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, r.cancelled(ctx)
		}
		return nil, r.fail(&Error{Kind: PersistenceFailure, Stage: StageUpdatingProfile, Err: err})
	}

	r.enter(StageDone)
	res.Collections = updated.DashboardCollections
	res.CompletedAt = committedAt
	res.Duration = time.Since(r.started)
	res.Categories = make([]CategoryResult, len(batches))
	for i := range batches {
		res.Categories[i] = batches[i].CategoryResult
	}

	r.logger.Info("curation complete", "run", res.RunID, "entries", total,
		"collections", len(generations), "duration", res.Duration.Round(time.Millisecond))
	o.opts.Telemetry.TrackCurationCompleted(len(generations), total, o.opts.FailurePolicy.String(), res.Duration.Milliseconds())
	return res, nil
}

type categoryBatch struct {
	CategoryResult
	candidates []models.CandidateRecommendation
}

// fetch calls the source once per category, in order.
func (r *run) fetch(ctx context.Context) ([]categoryBatch, error) {
	o := r.o
	source := recommend.SourceName(o.source)
	batches := make([]categoryBatch, 0, len(o.opts.Categories))
	var errs []error

	for _, cat := range o.opts.Categories {
		if ctx.Err() != nil {
			return nil, r.cancelled(ctx)
		}

		batch, err := o.source.GetCandidates(ctx, cat, o.opts.CandidateLimit)
		if err != nil {
			if ctx.Err() != nil {
				return nil, r.cancelled(ctx)
			}
			cerr := &Error{Kind: SourceUnavailable, Stage: StageFetchingCandidates, Category: cat.ID, Source: source, Err: err}
			if o.opts.FailurePolicy == FailFast {
				return nil, r.fail(cerr)
			}
			r.logger.Warn("category failed, continuing", "category", cat.ID, "source", source, "err", err)
			errs = append(errs, cerr)
			batches = append(batches, categoryBatch{CategoryResult: CategoryResult{Category: cat, Err: cerr}})
			continue
		}

		if len(batch.Malformed) > 0 {
			r.logger.Warn("malformed candidates skipped", "category", cat.ID,
				"kind", MalformedCandidate, "count", len(batch.Malformed))
		}
		batches = append(batches, categoryBatch{
			CategoryResult: CategoryResult{
				Category:   cat,
				Candidates: len(batch.Candidates),
				Malformed:  len(batch.Malformed),
			},
			candidates: batch.Candidates,
		})
	}

	if len(errs) > 0 && len(errs) == len(batches) {
		return nil, r.fail(&Error{
			Kind:   SourceUnavailable,
			Stage:  StageFetchingCandidates,
			Source: source,
			Err:    fmt.Errorf("all %d categories failed: %w", len(errs), errors.Join(errs...)),
		})
	}
	return batches, nil
}

// uniqueItemIDs keeps the first match of each item, in candidate order.
func uniqueItemIDs(matches []matcher.MatchResult) []string {
	seen := make(map[string]bool, len(matches))
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m.Item.ID] {
			continue
		}
		seen[m.Item.ID] = true
		ids = append(ids, m.Item.ID)
	}
	return ids
}

// pickFeatured draws uniformly from the union of matched items.
func pickFeatured(batches []categoryBatch, rng *rand.Rand) *string {
	seen := make(map[string]bool)
	var pool []string
	for _, b := range batches {
		for _, id := range b.ItemIDs {
			if !seen[id] {
				seen[id] = true
				pool = append(pool, id)
			}
		}
	}
	if len(pool) == 0 {
		return nil
	}
	id := pool[rng.IntN(len(pool))]
	return &id
}
