package provision

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/foodmarket/provision-backend/internal/app/repository"
	"github.com/foodmarket/provision-backend/pkg/logger"
)

// Dependencies are the collaborators shared by every session of a process.
type Dependencies struct {
	Customers CustomerSource
	Catalog   *Catalog
	Holds     *HoldStore
	Ledger    repository.Ledger
}

type Options struct {
	PointCap    int
	MaxQuantity int
	Clock       func() time.Time
}

// Result is what an operation reports besides the resulting state.
type Result struct {
	Notice    *Notice          `json:"notice,omitempty"`
	Declined  bool             `json:"declined,omitempty"`
	Provision *model.Provision `json:"provision,omitempty"`
}

// ProductRef identifies a product either by id or by barcode.
type ProductRef struct {
	ProductID string `json:"product_id"`
	Barcode   string `json:"barcode"`
}

// Session is the provisioning workflow of one staff member: the visitor
// queue, the active visitor's cart, and the name search.
// Session is not safe for concurrent use; Registry serializes access.
type Session struct {
	identity  string
	queue     VisitorQueue
	cart      *Cart
	resolver  *Resolver
	holds     *HoldStore
	catalog   *Catalog
	submitter *Submitter
}

func NewSession(identity string, deps Dependencies, opts Options) *Session {
	return &Session{
		identity:  strings.TrimSpace(identity),
		cart:      NewCart(opts.PointCap, opts.MaxQuantity),
		resolver:  NewResolver(deps.Customers),
		holds:     deps.Holds,
		catalog:   deps.Catalog,
		submitter: NewSubmitter(deps.Ledger, deps.Holds, opts.Clock),
	}
}

func (s *Session) Identity() string { return s.identity }

// Idle reports whether discarding the session would lose nothing.
func (s *Session) Idle() bool {
	return s.queue.Len() == 0 && s.cart.IsEmpty() && s.resolver.State() == ResolverClosed
}

func declined() Result {
	return Result{Declined: true, Notice: newNotice(NoticeDeclined)}
}

func noticeResult(n *Notice) Result {
	return Result{Notice: n}
}

// Search runs a name search and opens the candidate list.
func (s *Session) Search(ctx context.Context, keyword string) (Result, error) {
	n, err := s.resolver.Search(ctx, keyword)
	if err != nil {
		return Result{}, err
	}
	return noticeResult(n), nil
}

func (s *Session) MoveSelection(dir Direction) {
	s.resolver.Move(dir)
}

func (s *Session) SelectCandidate(index int) error {
	return s.resolver.Select(index)
}

// ConfirmCandidate enqueues the highlighted candidate and closes the list.
func (s *Session) ConfirmCandidate() (Result, error) {
	c, err := s.resolver.Take()
	if err != nil {
		return Result{}, err
	}
	if !s.queue.Enqueue(c) {
		return noticeResult(newNotice(NoticeVisitorAlreadyQueued)), nil
	}
	logger.Debug("Visitor queued", map[string]interface{}{
		"identity":    s.identity,
		"customer_id": c.ID,
		"queue_size":  s.queue.Len(),
	})
	return Result{}, nil
}

func (s *Session) AbortSearch() {
	s.resolver.Abort()
}

// ActivateVisitor makes id the active visitor. Switching away from a visitor
// with a non-empty cart asks discard_cart; a held cart for id asks
// restore_hold. Every answer is collected before any state changes.
func (s *Session) ActivateVisitor(ctx context.Context, id string, confirmer Confirmer) (Result, error) {
	if !s.queue.Contains(id) {
		return Result{}, ErrVisitorNotQueued
	}
	if s.queue.ActiveID() == id {
		return Result{}, nil
	}

	if s.queue.ActiveID() != "" && !s.cart.IsEmpty() {
		ok, err := confirmer.Confirm(ctx, PromptDiscardCart)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			return declined(), nil
		}
	}

	held, found, err := s.holds.Load(ctx, id)
	if err != nil {
		return Result{}, err
	}
	restore := false
	if found {
		if restore, err = confirmer.Confirm(ctx, PromptRestoreHold); err != nil {
			return Result{}, err
		}
	}

	s.queue.setActive(id)
	s.cart.Clear()

	logger.Info("Visitor activated", map[string]interface{}{
		"identity":      s.identity,
		"customer_id":   id,
		"hold_found":    found,
		"hold_restored": restore,
	})

	if restore {
		s.cart.Restore(held)
		return noticeResult(newNotice(NoticeHoldRestored)), nil
	}
	return Result{}, nil
}

// RemoveVisitor drops id from the queue. Removing the active visitor with a
// non-empty cart asks remove_active and discards the cart.
func (s *Session) RemoveVisitor(ctx context.Context, id string, confirmer Confirmer) (Result, error) {
	if !s.queue.Contains(id) {
		return Result{}, ErrVisitorNotQueued
	}

	wasActive := s.queue.ActiveID() == id
	if wasActive && !s.cart.IsEmpty() {
		ok, err := confirmer.Confirm(ctx, PromptRemoveActive)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			return declined(), nil
		}
	}

	s.queue.Remove(id)
	if wasActive || s.queue.ActiveID() == "" {
		s.cart.Clear()
	}

	logger.Debug("Visitor removed", map[string]interface{}{
		"identity":    s.identity,
		"customer_id": id,
		"was_active":  wasActive,
		"queue_size":  s.queue.Len(),
	})
	return Result{}, nil
}

func (s *Session) requireActive() error {
	if s.queue.ActiveID() == "" {
		return ErrNoActiveVisitor
	}
	return nil
}

// AddProduct looks the product up in the catalog and adds quantity of it.
// An unknown product is reported as a notice.
func (s *Session) AddProduct(ctx context.Context, ref ProductRef, quantity interface{}) (Result, error) {
	if err := s.requireActive(); err != nil {
		return Result{}, err
	}

	var (
		product model.Product
		found   bool
		err     error
	)
	if ref.ProductID != "" {
		product, found, err = s.catalog.Find(ctx, ref.ProductID)
	} else {
		product, found, err = s.catalog.FindByBarcode(ctx, ref.Barcode)
	}
	if err != nil {
		return Result{}, err
	}
	if !found {
		return noticeResult(newNotice(NoticeProductNotFound)), nil
	}

	return noticeResult(s.cart.AddOrIncrement(product, ParseQuantity(quantity))), nil
}

func (s *Session) SetQuantity(index int, value interface{}) (Result, error) {
	if err := s.requireActive(); err != nil {
		return Result{}, err
	}
	n, err := s.cart.SetQuantity(index, ParseQuantity(value))
	return noticeResult(n), err
}

func (s *Session) Increment(index int) (Result, error) {
	if err := s.requireActive(); err != nil {
		return Result{}, err
	}
	n, err := s.cart.Increment(index)
	return noticeResult(n), err
}

func (s *Session) Decrement(index int) (Result, error) {
	if err := s.requireActive(); err != nil {
		return Result{}, err
	}
	n, err := s.cart.Decrement(index)
	return noticeResult(n), err
}

func (s *Session) RemoveLine(index int) (Result, error) {
	if err := s.requireActive(); err != nil {
		return Result{}, err
	}
	return Result{}, s.cart.RemoveLine(index)
}

func (s *Session) Undo() (Result, error) {
	if err := s.requireActive(); err != nil {
		return Result{}, err
	}
	return noticeResult(s.cart.Undo()), nil
}

func (s *Session) Redo() (Result, error) {
	if err := s.requireActive(); err != nil {
		return Result{}, err
	}
	return noticeResult(s.cart.Redo()), nil
}

// Hold suspends the active visitor's cart. The visitor stays queued but is
// no longer active.
func (s *Session) Hold(ctx context.Context) (Result, error) {
	if err := s.requireActive(); err != nil {
		return Result{}, err
	}
	if s.cart.IsEmpty() {
		return Result{}, ErrEmptyCart
	}

	id := s.queue.ActiveID()
	if err := s.holds.Save(ctx, id, s.cart.Lines()); err != nil {
		return Result{}, err
	}
	s.cart.Clear()
	s.queue.Deactivate()

	logger.Info("Cart held", map[string]interface{}{
		"identity":    s.identity,
		"customer_id": id,
	})
	return noticeResult(newNotice(NoticeHoldSaved)), nil
}

// LoadHold replaces the active cart with the visitor's held cart, asking
// discard_cart first when the current cart is not empty. The snapshot stays
// stored until a submission clears it.
func (s *Session) LoadHold(ctx context.Context, confirmer Confirmer) (Result, error) {
	if err := s.requireActive(); err != nil {
		return Result{}, err
	}

	lines, found, err := s.holds.Load(ctx, s.queue.ActiveID())
	if err != nil {
		return Result{}, err
	}
	if !found {
		return noticeResult(newNotice(NoticeHoldNotFound)), nil
	}

	if !s.cart.IsEmpty() {
		ok, err := confirmer.Confirm(ctx, PromptDiscardCart)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			return declined(), nil
		}
	}

	s.cart.Restore(lines)
	return noticeResult(newNotice(NoticeHoldRestored)), nil
}

// Submit records the active visitor's cart as a provision. On success the
// whole session is reset; on failure the cart is kept for a retry.
func (s *Session) Submit(ctx context.Context, lifelove bool) (Result, error) {
	var active *model.Customer
	if c, ok := s.queue.Active(); ok {
		active = &c
	}

	record, err := s.submitter.Submit(ctx, active, s.cart, SubmitRequest{
		Identity: s.identity,
		LifeLove: lifelove,
	})
	if err != nil {
		if errors.Is(err, ErrOverPointCap) {
			return noticeResult(newNotice(NoticePointCapExceeded)), err
		}
		return Result{}, err
	}

	s.Reset()
	return Result{Notice: newNotice(NoticeSubmitted), Provision: record}, nil
}

// Reset clears the queue, the active visitor, the cart with its history and
// the search.
func (s *Session) Reset() {
	s.queue.Clear()
	s.cart.Clear()
	s.resolver.Abort()
}

// View renders the observable state. Hold lookups that fail are logged and
// shown as absent.
func (s *Session) View(ctx context.Context) View {
	entries := s.queue.Entries()
	queue := make([]QueueEntry, 0, len(entries))
	for _, c := range entries {
		has, err := s.holds.Has(ctx, c.ID)
		if err != nil {
			logger.Warn("Hold lookup failed while rendering session", map[string]interface{}{
				"customer_id": c.ID,
				"error":       err.Error(),
			})
		}
		queue = append(queue, QueueEntry{
			Customer: c,
			Active:   c.ID == s.queue.ActiveID(),
			HasHold:  has,
		})
	}

	lines := s.cart.Lines()
	if lines == nil {
		lines = []model.CartLine{}
	}

	v := View{
		Identity:            s.identity,
		Queue:               queue,
		Lines:               lines,
		Total:               s.cart.Total(),
		PointCap:            s.cart.PointCap(),
		OverCap:             s.cart.OverCap(),
		CanUndo:             s.cart.CanUndo(),
		CanRedo:             s.cart.CanRedo(),
		ProductPanelVisible: s.queue.ActiveID() != "",
		Resolver: ResolverView{
			State:       s.resolver.State(),
			Query:       s.resolver.Query(),
			Candidates:  s.resolver.Candidates(),
			ActiveIndex: s.resolver.ActiveIndex(),
		},
		SubmitState: s.submitter.State(),
	}
	if c, ok := s.queue.Active(); ok {
		v.Active = &c
	}
	if v.OverCap {
		v.Warning = newNotice(NoticePointCapExceeded)
	}
	if v.Resolver.Candidates == nil {
		v.Resolver.Candidates = []model.Customer{}
	}
	return v
}
