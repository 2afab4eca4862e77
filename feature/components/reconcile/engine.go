package reconcile

import (
	"context"
	"fmt"
	"time"

	"beryll-inventory/core/bmc"
	"beryll-inventory/core/events"
	"beryll-inventory/core/metrics"
	"beryll-inventory/core/reconcile"
	"beryll-inventory/core/utils"
	"beryll-inventory/feature/components/models"
	"beryll-inventory/feature/components/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config tunes the engine.
type Config struct {
	Reconcile reconcile.Config
	// BMCTimeout bounds the live inventory fetch. Zero leaves only the run timeout.
	BMCTimeout time.Duration
}

// Engine runs reconciliations. At most one run or manual edit holds a server
// at a time; contenders fail fast instead of queueing.
type Engine struct {
	store     *store.Store
	client    bmc.Client
	cfg       Config
	locks     *reconcile.Locker[uint]
	flagged   *reconcile.SetCache[uint, uint]
	archiver  Archiver
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewEngine creates an engine. publisher may be nil.
func NewEngine(st *store.Store, client bmc.Client, cfg Config, publisher events.Publisher, logger *zap.Logger) *Engine {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Engine{
		store:     st,
		client:    client,
		cfg:       cfg,
		locks:     reconcile.NewLocker[uint](),
		flagged:   reconcile.NewSetCache[uint, uint](cfg.Reconcile.CompareTTL()),
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithArchiver enables raw snapshot archiving.
func (e *Engine) WithArchiver(a Archiver) *Engine {
	e.archiver = a
	return e
}

// Locks exposes the per-server locks so manual edits exclude running reconciliations.
func (e *Engine) Locks() *reconcile.Locker[uint] {
	return e.locks
}

// Reconcile runs one reconciliation of serverID in mode. The run is detached
// from ctx cancellation and bounded by the configured run timeout; force and
// merge commit all of their mutations or none.
func (e *Engine) Reconcile(ctx context.Context, serverID uint, mode reconcile.Mode, userID *uint) (*Report, error) {
	mode, err := reconcile.ParseMode(string(mode))
	if err != nil {
		return nil, err
	}

	unlock, ok := e.locks.TryLock(serverID)
	if !ok {
		return nil, fmt.Errorf("%w: server %d", ErrReconciliationInProgress, serverID)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.cfg.Reconcile.RunTimeout())
	defer cancel()

	runID := uuid.NewString()
	l := e.logger.With(
		zap.Uint("server_id", serverID),
		zap.String("mode", string(mode)),
		zap.String("run_id", runID),
	)

	start := time.Now()
	var (
		report *Report
		out    *runOutput
	)
	if mode == reconcile.ModeCompare {
		report, out, err = e.compare(ctx, serverID, runID)
	} else {
		report, out, err = e.mutate(ctx, serverID, mode, userID, runID)
	}
	elapsed := time.Since(start)
	metrics.ObserveReconcileRun(string(mode), err, elapsed)

	if err != nil {
		l.Warn("Reconciliation failed", zap.Error(err), zap.Duration("duration", elapsed))
		return nil, err
	}

	e.afterRun(ctx, l, serverID, mode, userID, runID, out)

	l.Info("Reconciliation completed",
		zap.Int("bmc_components", len(out.live)),
		zap.Int("inserts", out.plan.Inserts),
		zap.Int("updates", out.plan.Updates),
		zap.Int("deletes", out.plan.Deletes),
		zap.Int("flags", out.plan.Flags),
		zap.Int("preserved", out.plan.Preserved),
		zap.Duration("duration", elapsed))

	return report, nil
}

// runOutput carries what the post-commit steps need.
type runOutput struct {
	live    []bmc.Component
	plan    reconcile.PlanSummary
	history map[models.HistoryAction]int
}

func (e *Engine) compare(ctx context.Context, serverID uint, runID string) (*Report, *runOutput, error) {
	srv, err := e.store.GetServer(ctx, serverID)
	if err != nil {
		return nil, nil, err
	}

	var (
		live []bmc.Component
		dbs  []models.ServerComponent
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		live, err = e.fetch(gctx, srv)
		return err
	})
	g.Go(func() error {
		var err error
		dbs, err = e.store.ListByServer(gctx, serverID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	res := Match(dbs, live)

	var flagged []uint
	for _, m := range res.MissingInBMC {
		flagged = append(flagged, m.DBComponent.ID)
	}
	for _, m := range res.Mismatches {
		if m.TouchesIdentity() {
			flagged = append(flagged, m.DBComponent.ID)
		}
	}
	e.flagged.Put(serverID, flagged)

	report := &Report{Compare: newCompareReport(runID, res, len(dbs), len(live))}
	return report, &runOutput{live: live}, nil
}

func (e *Engine) mutate(ctx context.Context, serverID uint, mode reconcile.Mode, userID *uint, runID string) (*Report, *runOutput, error) {
	srv, err := e.store.GetServer(ctx, serverID)
	if err != nil {
		return nil, nil, err
	}

	// The fetch completes before the transaction opens, so a failing BMC never mutates.
	live, err := e.fetch(ctx, srv)
	if err != nil {
		return nil, nil, err
	}

	now := e.now()
	out := &runOutput{live: live}
	var report *Report

	err = e.store.Transaction(ctx, func(tx *store.Store) error {
		dbs, err := tx.ListByServer(ctx, serverID)
		if err != nil {
			return err
		}

		res := Match(dbs, live)
		plan := buildPlan(mode, res)
		m := newMutator(tx, serverID, userID, now)

		if _, err := reconcile.ApplyPlan(ctx, plan, m); err != nil {
			return err
		}
		if err := tx.TouchServerFetch(ctx, serverID, now); err != nil {
			return err
		}

		header := Header{Success: true, Mode: mode, RunID: runID}
		switch mode {
		case reconcile.ModeForce:
			comps, err := tx.ListByServer(ctx, serverID)
			if err != nil {
				return err
			}
			header.Message = fmt.Sprintf("Inventory synchronized with BMC: %d added, %d updated, %d removed",
				plan.Summary.Inserts, plan.Summary.Updates, plan.Summary.Deletes)
			report = &Report{Force: &ForceReport{
				Header:          header,
				ManualPreserved: plan.Summary.Preserved,
				Components:      comps,
				Plan:            plan.Summary,
			}}
		case reconcile.ModeMerge:
			header.Message = fmt.Sprintf("Inventory merged with BMC: %d added, %d updated, %d flagged for review",
				plan.Summary.Inserts, plan.Summary.Updates, len(mergeFlags(res)))
			report = &Report{Merge: &MergeReport{
				Header:  header,
				Actions: mergeActions(res, plan, m),
				Plan:    plan.Summary,
			}}
		}

		out.plan = plan.Summary
		out.history = m.history
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return report, out, nil
}

func mergeActions(res *MatchResult, plan *reconcile.Plan[change], m *mutator) MergeActions {
	actions := MergeActions{
		Updated:          []MergeUpdate{},
		Added:            m.added,
		Preserved:        []models.ServerComponent{},
		FlaggedForReview: mergeFlags(res),
	}
	if actions.Added == nil {
		actions.Added = []models.ServerComponent{}
	}
	for _, a := range plan.ByType(reconcile.ActionUpdate) {
		actions.Updated = append(actions.Updated, MergeUpdate{
			ID:           a.Item.Current.ID,
			SerialNumber: a.Item.Current.SerialNumber,
			Changes:      a.Item.Diffs,
		})
	}
	for _, a := range plan.ByType(reconcile.ActionPreserve) {
		actions.Preserved = append(actions.Preserved, *a.Item.Current)
	}
	return actions
}

func mergeFlags(res *MatchResult) []MergeFlag {
	out := []MergeFlag{}
	for _, mm := range res.Mismatches {
		if !mm.TouchesIdentity() {
			continue
		}
		out = append(out, MergeFlag{
			ID:           mm.DBComponent.ID,
			SerialNumber: mm.DBComponent.SerialNumber,
			Reason:       identityReason(mm.Differences),
		})
	}
	return out
}

// fetch queries the BMC of srv. Every failure is reported as ErrBmcUnavailable.
func (e *Engine) fetch(ctx context.Context, srv *models.Server) ([]bmc.Component, error) {
	target := bmc.Target{
		ServerID: srv.ID,
		Address:  utils.FirstNonEmpty(deref(srv.BMCAddress), deref(srv.IPAddress)),
	}

	if e.cfg.BMCTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.BMCTimeout)
		defer cancel()
	}

	start := time.Now()
	comps, err := e.client.Inventory(ctx, target)
	metrics.ObserveBMCFetch(e.client.Driver(), err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%w: server %d: %w", ErrBmcUnavailable, srv.ID, err)
	}
	return comps, nil
}

// afterRun runs the post-commit steps. Their failures are logged, never returned.
func (e *Engine) afterRun(ctx context.Context, l *zap.Logger, serverID uint, mode reconcile.Mode, userID *uint, runID string, out *runOutput) {
	if mode.Mutates() {
		e.flagged.Invalidate(serverID)
	}

	for action, n := range map[reconcile.ActionType]int{
		reconcile.ActionInsert:    out.plan.Inserts,
		reconcile.ActionUpdate:    out.plan.Updates,
		reconcile.ActionDelete:    out.plan.Deletes,
		reconcile.ActionFlag:      out.plan.Flags,
		reconcile.ActionClearFlag: out.plan.Cleared,
		reconcile.ActionPreserve:  out.plan.Preserved,
	} {
		if n > 0 {
			metrics.ReconcileActionCounter.WithLabelValues(string(mode), string(action)).Add(float64(n))
		}
	}
	for action, n := range out.history {
		metrics.HistoryEntriesCounter.WithLabelValues(string(action)).Add(float64(n))
	}

	if e.archiver != nil && e.cfg.Reconcile.ArchiveSnapshots {
		if err := e.archiver.Archive(ctx, serverID, runID, out.live); err != nil {
			l.Warn("Failed to archive BMC snapshot", zap.Error(err))
		}
	}

	if !mode.Mutates() {
		return
	}
	err := e.publisher.Publish(ctx, events.Event{
		Type:     events.TypeReconciled,
		ServerID: serverID,
		Mode:     string(mode),
		UserID:   userID,
		Payload: map[string]any{
			"runId": runID,
			"plan":  out.plan,
		},
	})
	if err != nil {
		l.Warn("Failed to publish reconciliation event", zap.Error(err))
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
