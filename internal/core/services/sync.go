package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/archibald-labs/archisync/internal/contenthash"
	"github.com/archibald-labs/archisync/internal/core/domain"
	"github.com/archibald-labs/archisync/internal/core/ports/driven"
	"github.com/archibald-labs/archisync/internal/core/ports/driving"
	"github.com/archibald-labs/archisync/internal/logger"
	"github.com/archibald-labs/archisync/internal/pagecycle"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncOrchestrator = (*SyncOrchestrator)(nil)

// errStopped ends a decode when the caller asked to stop.
var errStopped = errors.New("sync stopped")

// SyncOrchestrator coordinates the entity pipelines: decode, normalise,
// filter, upsert, then match.
type SyncOrchestrator struct {
	catalog    driven.EntityCatalog
	locator    driven.PDFLocator
	opener     driven.PDFOpener
	normaliser driven.FieldNormaliser
	delta      *DeltaStore
	sessions   driving.SessionTracker
	matcher    driving.Matcher
	settings   domain.SyncSettings

	// Status tracking
	mu          sync.RWMutex
	activeSyncs map[domain.EntityType]*driving.SyncStatus
}

// NewSyncOrchestrator creates a new sync orchestrator.
// The matcher is optional; if nil, no matching runs after a sync.
func NewSyncOrchestrator(
	catalog driven.EntityCatalog,
	locator driven.PDFLocator,
	opener driven.PDFOpener,
	normaliser driven.FieldNormaliser,
	delta *DeltaStore,
	sessions driving.SessionTracker,
	matcher driving.Matcher,
	settings domain.SyncSettings,
) *SyncOrchestrator {
	if settings.StopCheckInterval <= 0 {
		settings.StopCheckInterval = domain.DefaultStopCheckInterval
	}
	return &SyncOrchestrator{
		catalog:     catalog,
		locator:     locator,
		opener:      opener,
		normaliser:  normaliser,
		delta:       delta,
		sessions:    sessions,
		matcher:     matcher,
		settings:    settings,
		activeSyncs: make(map[domain.EntityType]*driving.SyncStatus),
	}
}

// Sync runs the pipeline for one entity type.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (o *SyncOrchestrator) Sync(
	ctx context.Context,
	entityType domain.EntityType,
	opts driving.SyncOptions,
) (*domain.SyncResult, error) {
	if !entityType.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, entityType)
	}
	if opts.Trigger == "" {
		opts.Trigger = domain.TriggerManual
	}

	// 1. Claim the entity type
	if err := o.claim(entityType); err != nil {
		return nil, err
	}
	defer o.clearStatus(entityType)

	// 2. Resolve layout and policy
	layout, err := o.catalog.Layout(entityType)
	if err != nil {
		return nil, fmt.Errorf("get layout: %w", err)
	}
	policy, err := o.catalog.Policy(entityType)
	if err != nil {
		return nil, fmt.Errorf("get policy: %w", err)
	}

	// 3. Open the session. Everything after this point is recorded.
	started := time.Now()
	sessionID, err := o.sessions.StartSession(ctx, entityType, opts.Trigger)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	o.updateStatus(entityType, func(s *driving.SyncStatus) { s.SessionID = sessionID })

	log := logger.For("sync", string(entityType))
	log.Info("starting (%s)", opts.Trigger)

	run := &pipelineRun{
		orchestrator: o,
		log:          log,
		ctx:          ctx,
		entityType:   entityType,
		sessionID:    sessionID,
		layout:       layout,
		policy:       policy,
		opts:         opts,
		syncedAt:     started,
	}

	// 4. Locate, checksum and decode
	skipped, runErr := run.execute()

	// 5. Decide the terminal status
	finalStatus := domain.SessionCompleted
	errMsg := ""
	switch {
	case skipped:
		finalStatus = domain.SessionSkipped
	case errors.Is(runErr, errStopped):
		finalStatus = domain.SessionPartial
		runErr = nil
	case errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded):
		finalStatus = domain.SessionPartial
		errMsg = runErr.Error()
	case runErr != nil:
		finalStatus = domain.SessionFailed
		errMsg = runErr.Error()
	}

	// The session is finalised even when ctx is already cancelled.
	finalCtx := context.WithoutCancel(ctx)

	// 6. Remove stale records after a completed run only
	if finalStatus == domain.SessionCompleted && policy.DeleteStale {
		deleted, err := o.delta.DeleteStale(finalCtx, entityType, started)
		if err != nil {
			finalStatus = domain.SessionFailed
			errMsg = err.Error()
			runErr = err
		} else {
			run.counts.Deleted = deleted
		}
	}

	// 7. Finalise the session
	if err := o.sessions.CompleteSession(finalCtx, sessionID, finalStatus, run.counts, errMsg); err != nil {
		return nil, fmt.Errorf("complete session: %w", err)
	}

	result := &domain.SyncResult{
		SessionID:  sessionID,
		EntityType: entityType,
		Status:     finalStatus,
		Counts:     run.counts,
		DurationMs: time.Since(started).Milliseconds(),
		Error:      errMsg,
	}

	// 8. Match the pairs this type takes part in
	if finalStatus == domain.SessionCompleted && !opts.SkipMatching {
		for _, pair := range domain.PairsFor(entityType) {
			o.match(ctx, pair)
		}
	}

	if runErr != nil {
		return result, fmt.Errorf("sync %s: %w", entityType, runErr)
	}
	return result, nil
}

// SyncAll runs every entity pipeline concurrently, then the matchers whose
// two sides completed in this run.
func (o *SyncOrchestrator) SyncAll(ctx context.Context, opts driving.SyncOptions) ([]*domain.SyncResult, error) {
	types := domain.AllEntityTypes()
	results := make([]*domain.SyncResult, len(types))
	errs := make([]error, len(types))

	perType := opts
	perType.SkipMatching = true

	var g errgroup.Group
	for i, t := range types {
		i, t := i, t
		g.Go(func() error {
			results[i], errs[i] = o.Sync(ctx, t, perType)
			return nil
		})
	}
	_ = g.Wait()

	completed := make(map[domain.EntityType]bool, len(types))
	var out []*domain.SyncResult
	for _, r := range results {
		if r == nil {
			continue
		}
		out = append(out, r)
		if r.Status == domain.SessionCompleted {
			completed[r.EntityType] = true
		}
	}

	if !opts.SkipMatching {
		for _, pair := range domain.AllPairTypes() {
			if completed[pair.Source()] && completed[pair.Target()] {
				o.match(ctx, pair)
			}
		}
	}

	return out, errors.Join(errs...)
}

// Status returns sync status for an entity type.
func (o *SyncOrchestrator) Status(_ context.Context, entityType domain.EntityType) (*driving.SyncStatus, error) {
	if !entityType.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, entityType)
	}

	o.mu.RLock()
	defer o.mu.RUnlock()

	if status, ok := o.activeSyncs[entityType]; ok {
		// Return a copy to avoid race conditions
		statusCopy := *status
		return &statusCopy, nil
	}

	return &driving.SyncStatus{
		EntityType: entityType,
		Running:    false,
	}, nil
}

// match runs one matcher pair. Failures are logged; they never fail the
// sync that triggered them.
func (o *SyncOrchestrator) match(ctx context.Context, pair domain.PairType) {
	if o.matcher == nil {
		return
	}
	if _, err := o.matcher.Match(ctx, pair); err != nil {
		logger.For("match", string(pair)).Warn("failed: %v", err)
	}
}

// claim registers a running sync, or fails if one is already active.
func (o *SyncOrchestrator) claim(entityType domain.EntityType) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.activeSyncs[entityType]; ok {
		return fmt.Errorf("%w: %s", domain.ErrSyncInProgress, entityType)
	}
	o.activeSyncs[entityType] = &driving.SyncStatus{EntityType: entityType, Running: true}
	return nil
}

func (o *SyncOrchestrator) updateStatus(entityType domain.EntityType, fn func(*driving.SyncStatus)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if status, ok := o.activeSyncs[entityType]; ok {
		fn(status)
	}
}

func (o *SyncOrchestrator) clearStatus(entityType domain.EntityType) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.activeSyncs, entityType)
}

// pipelineRun holds the state of one Sync call.
type pipelineRun struct {
	orchestrator *SyncOrchestrator
	ctx          context.Context
	entityType   domain.EntityType
	sessionID    string
	layout       domain.Layout
	policy       domain.EntityPolicy
	opts         driving.SyncOptions
	syncedAt     time.Time
	log          logger.Scoped

	counts domain.SyncCounts
	seen   int
}

// execute locates and decodes the export. It reports skipped when the
// file is identical to the one of the last completed session.
func (r *pipelineRun) execute() (bool, error) {
	o := r.orchestrator

	path := r.opts.Path
	if path == "" {
		located, err := o.locator.Locate(r.ctx, r.entityType)
		if err != nil {
			return false, fmt.Errorf("locate export: %w", err)
		}
		path = located
	}

	checksum, err := contenthash.File(path)
	if err != nil {
		return false, fmt.Errorf("checksum export: %w", err)
	}
	if err := o.sessions.SetChecksum(r.ctx, r.sessionID, checksum); err != nil {
		return false, fmt.Errorf("set checksum: %w", err)
	}
	if r.unchanged(checksum) {
		r.log.Info("export unchanged since last sync, skipping")
		return true, nil
	}

	src, err := o.opener.Open(r.ctx, path)
	if err != nil {
		return false, fmt.Errorf("open export: %w", err)
	}
	defer src.Close()

	o.updateStatus(r.entityType, func(s *driving.SyncStatus) { s.TotalPages = src.NumPages() })

	layout := r.layout
	if o.settings.DetectCycleSize {
		size, err := pagecycle.DetectCycleSize(r.ctx, src, layout.CycleHeader, layout.PagesPerCycle)
		if err != nil {
			return false, err
		}
		if span := layout.Span(); size < span {
			r.log.Warn("ignoring detected cycle of %d pages: layout spans %d", size, span)
		} else {
			layout.PagesPerCycle = size
		}
	}

	decoder := pagecycle.NewDecoder(layout)
	decoder.OnCycle = func(p pagecycle.Progress) {
		o.updateStatus(r.entityType, func(s *driving.SyncStatus) {
			s.PagesRead = p.PagesRead
			s.TotalPages = p.TotalPages
		})
	}

	if err := decoder.Decode(r.ctx, src, r.process); err != nil {
		return false, err
	}
	return false, nil
}

// unchanged reports whether the export matches the last completed session.
// Forced runs always decode.
func (r *pipelineRun) unchanged(checksum string) bool {
	o := r.orchestrator
	if !o.settings.SkipUnchangedFiles || r.opts.Trigger == domain.TriggerForced {
		return false
	}
	last, err := o.sessions.LastCompleted(r.ctx, r.entityType)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			r.log.Warn("last completed session: %v", err)
		}
		return false
	}
	return last.FileChecksum == checksum
}

// process normalises, filters and upserts one decoded record.
func (r *pipelineRun) process(rec domain.ParsedRecord) error {
	o := r.orchestrator

	fields, issues := o.normaliser.Normalise(r.layout, rec.Fields)
	for _, issue := range issues {
		r.log.Debug("cycle %d row %d: unparseable %s %q", rec.Cycle, rec.Row, issue.Field, issue.Raw)
	}
	rec.Fields = fields
	rec.Key = fields.Get(r.policy.KeyField)

	if pagecycle.IsGarbageKey(rec.Key) {
		r.counts.Filtered++
	} else {
		if missing := r.policy.MissingRequired(fields); len(missing) > 0 {
			r.log.Warn("%s: missing %v", rec.Key, missing)
			rec.Partial = true
		}
		if rec.Partial {
			r.counts.Partial++
		}

		outcome, err := o.delta.Upsert(r.ctx, r.policy, rec, r.syncedAt)
		if err != nil {
			return err
		}
		r.counts.Processed++
		switch outcome {
		case domain.OutcomeInserted:
			r.counts.Created++
		case domain.OutcomeUpdated:
			r.counts.Updated++
		case domain.OutcomeSkipped:
			r.counts.Skipped++
		}
	}

	r.seen++
	if r.seen%o.settings.StopCheckInterval != 0 {
		return nil
	}
	return r.checkpoint()
}

// checkpoint persists progress and honours stop requests.
func (r *pipelineRun) checkpoint() error {
	o := r.orchestrator
	counts := r.counts

	o.updateStatus(r.entityType, func(s *driving.SyncStatus) { s.Counts = counts })
	if err := o.sessions.RecordProgress(context.WithoutCancel(r.ctx), r.sessionID, counts); err != nil {
		r.log.Warn("record progress: %v", err)
	}

	if err := r.ctx.Err(); err != nil {
		return err
	}
	if r.opts.ShouldStop != nil && r.opts.ShouldStop() {
		r.log.Info("stopped after %d records", r.seen)
		return errStopped
	}
	return nil
}
