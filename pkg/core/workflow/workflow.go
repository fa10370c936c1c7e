// Package workflow runs the claim state machine and owns the client view.
//
// A claim moves Idle → Editing → Submitting → Confirmed or Failed. The gift
// leaves the visible list as soon as the claim is submitted; the registry
// write and the follow-up refresh then either confirm that or put the gift
// back. The mutex is never held across a network call.
package workflow

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/gift-registry/pkg/core/catalog"
	"github.com/jakechorley/gift-registry/pkg/core/model"
	"github.com/jakechorley/gift-registry/pkg/db"
	"github.com/jakechorley/gift-registry/pkg/errors"
)

// State is the claim attempt state
type State int

const (
	Idle State = iota
	Editing
	Submitting
	Confirmed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case Confirmed:
		return "confirmed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// User-facing messages
const (
	MsgNameRequired = "Please enter your name"
	MsgClaimFailed  = "Failed to claim gift. Please try again."
)

// Catalog is the registry view the workflow refreshes
type Catalog interface {
	Refresh(ctx context.Context) (*catalog.Snapshot, error)
}

// ClaimCache is the device-local record of this user's claims
type ClaimCache interface {
	MigrateIfNeeded()
	Reconcile(ctx context.Context, gifts []model.Gift) ([]model.Gift, error)
	Record(id, name string)
	LastUsedName() string
}

// View is a copy of what the client should render
type View struct {
	State     State
	Visible   []model.Gift
	MyClaims  []model.Gift
	Editing   *model.Gift
	Draft     string
	Confirmed *model.Gift
	Err       error
}

// Workflow coordinates one user's claims
type Workflow struct {
	catalog Catalog
	store   db.GiftStore
	cache   ClaimCache
	logger  *zap.Logger
	now     func() time.Time

	mu        sync.Mutex
	state     State
	visible   []model.Gift
	myClaims  []model.Gift
	editing   *model.Gift
	draft     string
	confirmed *model.Gift
	lastErr   error
}

// New creates a workflow in the Idle state with an empty view
func New(cat Catalog, store db.GiftStore, cache ClaimCache, logger *zap.Logger) *Workflow {
	return &Workflow{
		catalog: cat,
		store:   store,
		cache:   cache,
		logger:  logger,
		now:     time.Now,
	}
}

// Load migrates the cache, fetches the registry and resolves this user's claims
func (w *Workflow) Load(ctx context.Context) error {
	w.mu.Lock()
	if w.state == Submitting {
		w.mu.Unlock()
		return errors.Validation("a claim is in progress")
	}
	w.mu.Unlock()

	w.cache.MigrateIfNeeded()

	snap, err := w.catalog.Refresh(ctx)
	if err != nil {
		w.logger.Error("Failed to load gifts", zap.Error(err))
		w.mu.Lock()
		w.lastErr = err
		w.mu.Unlock()
		return fmt.Errorf("failed to load gifts: %w", err)
	}

	mine, err := w.cache.Reconcile(ctx, snap.All)
	if err != nil {
		// Only possible without a snapshot; treat as no known claims
		w.logger.Warn("Failed to reconcile claim cache", zap.Error(err))
		mine = nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.visible = slices.Clone(snap.Unclaimed)
	w.myClaims = mine
	w.lastErr = nil

	w.logger.Info("Gifts loaded",
		zap.Int("unclaimed", len(w.visible)),
		zap.Int("claimed_by_you", len(w.myClaims)),
	)
	return nil
}

// Begin starts editing a claim on a visible gift, pre-filling the last used name
func (w *Workflow) Begin(giftID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == Submitting {
		return errors.Validation("a claim is in progress")
	}

	gift, ok := model.FindGift(w.visible, giftID)
	if !ok {
		return errors.Validationf("gift %s is not available to claim", giftID)
	}

	w.state = Editing
	w.editing = &gift
	w.draft = w.cache.LastUsedName()
	w.confirmed = nil
	w.lastErr = nil
	return nil
}

// SetName updates the draft claimant name
func (w *Workflow) SetName(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != Editing {
		return errors.Validation("no gift selected")
	}
	w.draft = name
	return nil
}

// Cancel abandons an unsubmitted claim with no side effects
func (w *Workflow) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != Editing {
		return
	}
	w.state = Idle
	w.editing = nil
	w.draft = ""
	w.lastErr = nil
}

// Submit claims the gift being edited under the draft name. A blank name is
// rejected before anything leaves the device.
func (w *Workflow) Submit(ctx context.Context) (model.Gift, error) {
	w.mu.Lock()
	if w.state != Editing {
		w.mu.Unlock()
		return model.Gift{}, errors.Validation("no gift selected")
	}

	name := strings.TrimSpace(w.draft)
	if name == "" {
		err := errors.Validation(MsgNameRequired)
		w.lastErr = err
		w.mu.Unlock()
		return model.Gift{}, err
	}

	gift := *w.editing
	position := slices.IndexFunc(w.visible, func(g model.Gift) bool { return g.ID == gift.ID })
	w.visible = slices.DeleteFunc(w.visible, func(g model.Gift) bool { return g.ID == gift.ID })

	claimedDate := w.now().UTC().Format(model.ClaimedDateLayout)
	optimistic := gift
	optimistic.ClaimedBy = name
	optimistic.ClaimedDate = claimedDate

	w.state = Submitting
	w.confirmed = &optimistic
	w.editing = nil
	w.draft = ""
	w.lastErr = nil
	w.mu.Unlock()

	err := w.store.UpdateGift(ctx, gift.ID, map[string]string{
		model.ColumnClaimedBy:   name,
		model.ColumnClaimedDate: claimedDate,
	})
	if err != nil {
		return model.Gift{}, w.fail(ctx, gift, position, err)
	}

	return w.confirm(ctx, optimistic), nil
}

// confirm records a landed claim and replaces the optimistic view with the
// registry's record when it differs.
func (w *Workflow) confirm(ctx context.Context, optimistic model.Gift) model.Gift {
	w.cache.Record(optimistic.ID, optimistic.ClaimedBy)
	w.logger.Info("Gift claimed", zap.String("id", optimistic.ID), zap.String("item", optimistic.Item))

	snap, err := w.catalog.Refresh(ctx)
	if err != nil {
		// The write landed; keep the optimistic view
		w.logger.Warn("Failed to refresh after claim", zap.Error(err))

		w.mu.Lock()
		defer w.mu.Unlock()
		w.state = Confirmed
		if _, ok := model.FindGift(w.myClaims, optimistic.ID); !ok {
			w.myClaims = append(w.myClaims, optimistic)
		}
		return *w.confirmed
	}

	mine, err := w.cache.Reconcile(ctx, snap.All)
	if err != nil {
		w.logger.Warn("Failed to reconcile claim cache", zap.Error(err))
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = Confirmed
	w.visible = slices.Clone(snap.Unclaimed)
	if err == nil {
		w.myClaims = mine
	}
	if authoritative, ok := model.FindGift(snap.All, optimistic.ID); ok && !authoritative.Equal(optimistic) {
		w.confirmed = &authoritative
	}
	return *w.confirmed
}

// fail discards the optimistic confirmation and restores the visible list,
// from the registry when reachable and locally otherwise.
func (w *Workflow) fail(ctx context.Context, gift model.Gift, position int, cause error) error {
	w.logger.Error("Failed to claim gift", zap.String("id", gift.ID), zap.Error(cause))

	snap, refreshErr := w.catalog.Refresh(ctx)
	if refreshErr != nil {
		w.logger.Warn("Failed to refresh after failed claim", zap.Error(refreshErr))
	}

	err := errors.Wrap(cause, errors.CodeOf(cause), MsgClaimFailed)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = Failed
	w.confirmed = nil
	w.lastErr = err

	if refreshErr == nil {
		w.visible = slices.Clone(snap.Unclaimed)
	} else if _, ok := model.FindGift(w.visible, gift.ID); !ok {
		position = min(max(position, 0), len(w.visible))
		w.visible = slices.Insert(w.visible, position, gift)
	}

	return err
}

// Dismiss closes a confirmation or error and returns to Idle
func (w *Workflow) Dismiss() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != Confirmed && w.state != Failed {
		return
	}
	w.state = Idle
	w.confirmed = nil
	w.lastErr = nil
}

// Show reopens the details of a gift this user has claimed
func (w *Workflow) Show(giftID string) (model.Gift, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == Submitting || w.state == Editing {
		return model.Gift{}, errors.Validation("finish or cancel the current claim first")
	}

	gift, ok := model.FindGift(w.myClaims, giftID)
	if !ok {
		return model.Gift{}, errors.NotFoundf("gift %s is not one of your claims", giftID)
	}

	w.state = Confirmed
	w.confirmed = &gift
	w.lastErr = nil
	return gift, nil
}

// View returns a copy of the current view state
func (w *Workflow) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	v := View{
		State:    w.state,
		Visible:  slices.Clone(w.visible),
		MyClaims: slices.Clone(w.myClaims),
		Draft:    w.draft,
		Err:      w.lastErr,
	}
	if w.editing != nil {
		g := *w.editing
		v.Editing = &g
	}
	if w.confirmed != nil {
		g := *w.confirmed
		v.Confirmed = &g
	}
	return v
}

// EmptyMessage is shown when no gifts are left to claim, or "" otherwise
func (v View) EmptyMessage() string {
	if len(v.Visible) > 0 {
		return ""
	}
	n := len(v.MyClaims)
	if n == 0 {
		return "All gifts have been given! 🎉"
	}
	plural := ""
	if n > 1 {
		plural = "s"
	}
	return fmt.Sprintf("No more gifts available, but you've claimed %d gift%s! 🎉", n, plural)
}
