// Package checkout turns a session's cart and customer form into an order and dispatches it.
package checkout

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fjod/go_pos/internal/cart"
	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/orderlog"
	"go.uber.org/zap"
)

type Cart interface {
	Snapshot() cart.Snapshot
	Consume(ctx context.Context, ordered []domain.LineItem) cart.Snapshot
}

type EmailSender interface {
	SendOrderEmail(ctx context.Context, order domain.OrderRecord) (messageID string, err error)
}

type OrderLogger interface {
	LogOrder(ctx context.Context, order domain.OrderRecord) error
}

const defaultLogTimeout = 10 * time.Second

type Result struct {
	Order     domain.OrderRecord    `json:"order"`
	MessageID string                `json:"messageId,omitempty"`
	Status    domain.CheckoutStatus `json:"status"`
}

type Option func(*Orchestrator)

// WithOrderLogger sets the best-effort order logger. nil keeps the no-op logger.
func WithOrderLogger(l OrderLogger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.orders = l
		}
	}
}

func WithLogTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.logTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

type Orchestrator struct {
	cart       Cart
	email      EmailSender
	orders     OrderLogger
	logger     *zap.Logger
	logTimeout time.Duration
	now        func() time.Time

	inFlight atomic.Bool
	pending  sync.WaitGroup
	logs     atomic.Int64

	mu       sync.Mutex
	customer domain.Customer
	status   domain.CheckoutStatus
}

func New(c Cart, email EmailSender, logger *zap.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cart:       c,
		email:      email,
		orders:     orderlog.Nop{},
		logger:     logger.Named("checkout"),
		logTimeout: defaultLogTimeout,
		now:        time.Now,
		status:     domain.CheckoutStatusIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) Customer() domain.Customer {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.customer
}

func (o *Orchestrator) UpdateCustomer(c domain.Customer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.customer = c
}

func (o *Orchestrator) Status() domain.CheckoutStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Checkout validates the current cart and customer form, builds the order and sends the
// confirmation email. The order logger runs alongside the email but is never waited on.
// The ordered lines and the form are cleared only once the email has been accepted.
func (o *Orchestrator) Checkout(ctx context.Context) (Result, error) {
	return o.checkout(ctx, nil)
}

// CheckoutWithCustomer replaces the saved form with c and checks out. A rejected duplicate
// submit leaves the form untouched.
func (o *Orchestrator) CheckoutWithCustomer(ctx context.Context, c domain.Customer) (Result, error) {
	return o.checkout(ctx, &c)
}

// Busy reports whether a checkout or its order logging is still running.
func (o *Orchestrator) Busy() bool {
	return o.inFlight.Load() || o.logs.Load() > 0
}

func (o *Orchestrator) checkout(ctx context.Context, form *domain.Customer) (Result, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return Result{}, ErrCheckoutInProgress
	}
	defer o.inFlight.Store(false)

	if form != nil {
		o.UpdateCustomer(*form)
	}

	o.transition(domain.CheckoutStatusValidating)
	customer := o.Customer()
	snap := o.cart.Snapshot()
	if err := validate(customer, snap); err != nil {
		o.transition(domain.CheckoutStatusIdle)
		return Result{Status: domain.CheckoutStatusIdle}, err
	}

	o.transition(domain.CheckoutStatusBuilding)
	now := o.now()
	order := buildOrder(NewOrderID(now), customer, snap, now)
	log := o.logger.With(zap.String("order_id", order.OrderID))

	o.transition(domain.CheckoutStatusDispatching)
	o.dispatchLog(ctx, order, log)

	messageID, err := o.email.SendOrderEmail(ctx, order)
	if err != nil {
		o.transition(domain.CheckoutStatusFailed)
		log.Error("order email failed", zap.Error(err))
		return Result{Order: order, Status: domain.CheckoutStatusFailed}, &EmailDispatchError{OrderID: order.OrderID, Err: err}
	}

	o.cart.Consume(ctx, snap.Items)
	o.mu.Lock()
	if o.customer == customer {
		o.customer = domain.Customer{}
	}
	o.mu.Unlock()
	o.transition(domain.CheckoutStatusCommitted)

	log.Info("order placed",
		zap.String("message_id", messageID),
		zap.String("total", order.Total.StringFixed(2)),
		zap.Int("items", len(order.Items)),
	)
	return Result{Order: order, MessageID: messageID, Status: domain.CheckoutStatusCommitted}, nil
}

// Preview builds the order that Checkout would send without sending it or touching the cart.
func (o *Orchestrator) Preview() (domain.OrderRecord, error) {
	customer := o.Customer()
	snap := o.cart.Snapshot()
	if err := validate(customer, snap); err != nil {
		return domain.OrderRecord{}, err
	}
	return buildOrder(PreviewOrderID, customer, snap, o.now()), nil
}

// Drain waits for detached order logging to finish or ctx to expire.
func (o *Orchestrator) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		o.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Orchestrator) dispatchLog(ctx context.Context, order domain.OrderRecord, log *zap.Logger) {
	o.pending.Add(1)
	o.logs.Add(1)
	go func() {
		defer o.pending.Done()
		defer o.logs.Add(-1)

		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.logTimeout)
		defer cancel()

		if err := o.orders.LogOrder(lctx, order); err != nil {
			log.Warn("order logging failed", zap.Error(err))
			return
		}
		log.Debug("order logged")
	}()
}

func (o *Orchestrator) transition(next domain.CheckoutStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.status.CanTransitionTo(next) {
		o.logger.Error("invalid checkout transition",
			zap.Stringer("from", o.status),
			zap.Stringer("to", next),
		)
	}
	o.status = next
}
