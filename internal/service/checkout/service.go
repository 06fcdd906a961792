package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"licensestore/internal/domain"
)

// ErrUnknownMethod rejects payment methods outside paypal, crypto and card.
var ErrUnknownMethod = errors.New("unsupported payment method")

// Capability is the external payment provider boundary.
type Capability interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency string) (string, error)
	Capture(ctx context.Context, orderToken string) (domain.PaymentCapture, error)
}

// Config carries the checkout business rules.
type Config struct {
	Currency        string
	TaxRate         decimal.Decimal
	MinPurchase     decimal.Decimal
	MaxPurchase     decimal.Decimal
	CardSettleDelay time.Duration
	CryptoWallet    string
}

// Service drives the order state machine: pending -> completed on a
// successful capture, pending -> cancelled on failure or explicit cancel.
// License issuance runs strictly after capture, and the order store append
// strictly after issuance, so a persisted order never misses its licenses.
type Service struct {
	drafts   draftRepo
	carts    cartRepo
	orders   orderRepo
	issuer   issuer
	payments Capability
	state    stateRepo
	cfg      Config
	logger   *log.Logger
	now      func() time.Time
}

type draftRepo interface {
	Create(ctx context.Context, d domain.OrderDraft) error
	GetByID(ctx context.Context, id string) (*domain.OrderDraft, error)
	SetMethod(ctx context.Context, id, method string) error
	Complete(ctx context.Context, id, method, captureID string) error
	Cancel(ctx context.Context, id string) error
}

type cartRepo interface {
	GetByOwner(ctx context.Context, ownerID string) (*domain.Cart, error)
	Clear(ctx context.Context, cartID string) error
}

type orderRepo interface {
	Append(ctx context.Context, o domain.PersistedOrder) error
}

type issuer interface {
	Issue(ctx context.Context, draft domain.OrderDraft) ([]domain.LicenseRecord, error)
}

type stateRepo interface {
	Put(ctx context.Context, key string, value interface{}) error
}

func New(drafts draftRepo, carts cartRepo, orders orderRepo, issuer issuer, payments Capability, state stateRepo, cfg Config, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	return &Service{
		drafts:   drafts,
		carts:    carts,
		orders:   orders,
		issuer:   issuer,
		payments: payments,
		state:    state,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Start builds a pending draft from the owner's cart. The order store is
// not touched until settlement.
func (s *Service) Start(ctx context.Context, ownerID string) (*domain.OrderDraft, error) {
	cart, err := s.carts.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrEmptyCart
		}
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	subtotal := decimal.Zero
	lines := make([]domain.OrderLine, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		subtotal = subtotal.Add(l.Total())
		lines = append(lines, domain.OrderLine{
			ProductID:            l.ProductID,
			ProductName:          l.ProductName,
			UnitPrice:            l.EffectiveUnitPrice,
			Quantity:             l.Quantity,
			RequiresHardwareLock: l.RequiresHardwareLock,
		})
	}
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(s.cfg.TaxRate).Round(2)
	total := subtotal.Add(tax)

	if total.LessThan(s.cfg.MinPurchase) {
		return nil, domain.ErrBelowMinimum
	}
	if total.GreaterThan(s.cfg.MaxPurchase) {
		return nil, domain.ErrAboveMaximum
	}

	now := s.now().UTC()
	draft := domain.OrderDraft{
		ID:            domain.NewOrderID(now),
		OwnerID:       ownerID,
		Lines:         lines,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         total,
		Currency:      s.cfg.Currency,
		CreatedAt:     now,
		Status:        domain.OrderPending,
		PaymentMethod: domain.MethodNone,
	}
	if err := s.drafts.Create(ctx, draft); err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}
	s.logger.Printf("checkout: draft %s started owner=%s total=%s", draft.ID, ownerID, total.StringFixed(2))
	return &draft, nil
}

// GetDraft loads a draft for ownership checks and status display.
func (s *Service) GetDraft(ctx context.Context, id string) (*domain.OrderDraft, error) {
	return s.drafts.GetByID(ctx, id)
}

// SelectMethod records the chosen payment method on a pending draft. It has
// no external effects for any method.
func (s *Service) SelectMethod(ctx context.Context, draftID, method string) (*domain.OrderDraft, error) {
	switch method {
	case domain.MethodPayPal, domain.MethodCrypto, domain.MethodCard:
	default:
		return nil, ErrUnknownMethod
	}
	if err := s.drafts.SetMethod(ctx, draftID, method); err != nil {
		return nil, err
	}
	return s.drafts.GetByID(ctx, draftID)
}

// SubmitPayPal runs createOrder + capture against the payment capability.
// Any rejection cancels the draft; user abandonment is reported as
// domain.ErrPaymentCancelled so the UI can skip error styling.
func (s *Service) SubmitPayPal(ctx context.Context, draftID string, userID *string) (*domain.PersistedOrder, error) {
	draft, err := s.pendingDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}

	token, err := s.payments.CreateOrder(ctx, draft.Total, draft.Currency)
	if err != nil {
		return nil, s.fail(ctx, draft.ID, fmt.Errorf("create provider order: %w", err))
	}

	capture, err := s.payments.Capture(ctx, token)
	if err != nil {
		return nil, s.fail(ctx, draft.ID, err)
	}
	if capture.Status != domain.CaptureCompleted {
		return nil, s.fail(ctx, draft.ID, fmt.Errorf("capture status %q", capture.Status))
	}

	return s.complete(ctx, draft, domain.MethodPayPal, capture.CaptureID, userID)
}

// SubmitCard validates card details locally and settles after a fixed
// delay. There is no real gateway behind this path; it exists to mirror the
// storefront's stub behavior and always succeeds once validation passes.
func (s *Service) SubmitCard(ctx context.Context, draftID string, userID *string, cardNumber, expiry, cvv string) (*domain.PersistedOrder, error) {
	if !validCardDetails(cardNumber, expiry, cvv) {
		return nil, domain.ErrInvalidCardDetails
	}
	draft, err := s.pendingDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}

	select {
	case <-time.After(s.cfg.CardSettleDelay):
	case <-ctx.Done():
		// The caller went away mid settlement; cancel instead of leaving
		// the draft pending forever.
		if cerr := s.drafts.Cancel(context.WithoutCancel(ctx), draft.ID); cerr != nil && !errors.Is(cerr, domain.ErrInvalidDraftState) {
			s.logger.Printf("checkout: cancel %s after abandoned card settle: %v", draft.ID, cerr)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentCancelled, ctx.Err())
	}

	captureID := fmt.Sprintf("CARD-%d", s.now().UnixMilli())
	return s.complete(ctx, draft, domain.MethodCard, captureID, userID)
}

// SubmitCrypto marks the draft for a manual transfer and reports the wallet
// address. The draft stays pending until an operator confirms the transfer
// via CompleteManual.
func (s *Service) SubmitCrypto(ctx context.Context, draftID string) (string, *domain.OrderDraft, error) {
	if err := s.drafts.SetMethod(ctx, draftID, domain.MethodCrypto); err != nil {
		return "", nil, err
	}
	draft, err := s.drafts.GetByID(ctx, draftID)
	if err != nil {
		return "", nil, err
	}
	return s.cfg.CryptoWallet, draft, nil
}

// CompleteManual settles a pending draft on operator confirmation of an
// off-band transfer.
func (s *Service) CompleteManual(ctx context.Context, draftID string, userID *string) (*domain.PersistedOrder, error) {
	draft, err := s.pendingDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	method := draft.PaymentMethod
	if method == domain.MethodNone {
		method = domain.MethodCrypto
	}
	captureID := fmt.Sprintf("MANUAL-%d", s.now().UnixMilli())
	return s.complete(ctx, draft, method, captureID, userID)
}

// Cancel moves a pending draft to cancelled. Completed or already cancelled
// drafts are rejected with domain.ErrInvalidDraftState.
func (s *Service) Cancel(ctx context.Context, draftID string) error {
	return s.drafts.Cancel(ctx, draftID)
}

func (s *Service) pendingDraft(ctx context.Context, draftID string) (*domain.OrderDraft, error) {
	draft, err := s.drafts.GetByID(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft.Status != domain.OrderPending {
		return nil, domain.ErrInvalidDraftState
	}
	return draft, nil
}

// fail cancels the draft and maps the provider error. A cancellation that
// loses the pending race reports InvalidDraftState instead.
func (s *Service) fail(ctx context.Context, draftID string, cause error) error {
	if err := s.drafts.Cancel(ctx, draftID); err != nil {
		if errors.Is(err, domain.ErrInvalidDraftState) {
			return err
		}
		s.logger.Printf("checkout: cancel %s after payment failure: %v", draftID, err)
	}
	if errors.Is(cause, domain.ErrPaymentCancelled) {
		return cause
	}
	s.logger.Printf("checkout: draft %s payment failed: %v", draftID, cause)
	return fmt.Errorf("%w: %v", domain.ErrPaymentFailed, cause)
}

// complete is the single settlement path: flip the draft, issue licenses,
// append the order, persist the license text, clear the cart - in that
// order. The CAS on the draft guarantees licenses are issued at most once.
func (s *Service) complete(ctx context.Context, draft *domain.OrderDraft, method, captureID string, userID *string) (*domain.PersistedOrder, error) {
	if err := s.drafts.Complete(ctx, draft.ID, method, captureID); err != nil {
		return nil, err
	}
	draft.Status = domain.OrderCompleted
	draft.PaymentMethod = method
	draft.CaptureID = captureID

	licenses, err := s.issuer.Issue(ctx, *draft)
	if err != nil {
		return nil, fmt.Errorf("issue licenses for %s: %w", draft.ID, err)
	}

	order := domain.PersistedOrder{
		OrderDraft: *draft,
		Licenses:   licenses,
		UserID:     userID,
		Delivered:  false,
	}
	if err := s.orders.Append(ctx, order); err != nil {
		// The keys in this order were never shown anywhere else; surface
		// the loss instead of swallowing it.
		s.logger.Printf("checkout: CRITICAL append %s failed, licenses lost: %v", order.ID, err)
		return nil, fmt.Errorf("persist order %s: %w", order.ID, err)
	}

	if err := s.state.Put(ctx, "license_"+order.ID, licenseText(licenses)); err != nil {
		s.logger.Printf("checkout: save license text for %s: %v", order.ID, err)
	}
	if cart, err := s.carts.GetByOwner(ctx, draft.OwnerID); err == nil {
		if err := s.carts.Clear(ctx, cart.ID); err != nil {
			s.logger.Printf("checkout: clear cart for %s: %v", draft.OwnerID, err)
		}
	}

	s.logger.Printf("checkout: order %s completed method=%s capture=%s licenses=%d", order.ID, method, captureID, len(licenses))
	return &order, nil
}

func licenseText(licenses []domain.LicenseRecord) string {
	parts := make([]string, 0, len(licenses))
	for _, l := range licenses {
		parts = append(parts, fmt.Sprintf("%s: %s", l.ProductName, l.LicenseKey))
	}
	return strings.Join(parts, "\n")
}

var (
	cardNumberRe = regexp.MustCompile(`^\d{16,}$`)
	expiryRe     = regexp.MustCompile(`^\d{2}/\d{2}$`)
)

func validCardDetails(cardNumber, expiry, cvv string) bool {
	number := strings.ReplaceAll(cardNumber, " ", "")
	if !cardNumberRe.MatchString(number) {
		return false
	}
	if !expiryRe.MatchString(expiry) {
		return false
	}
	return len(cvv) >= 3
}
