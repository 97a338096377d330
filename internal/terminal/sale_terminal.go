package terminal

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"wilpos-terminal/internal/domain"
	"wilpos-terminal/internal/logging"
	"wilpos-terminal/internal/wire"
)

// SaleClient loads the catalog and records sales.
type SaleClient interface {
	Products(ctx context.Context, apiBase, token string) ([]domain.Product, error)
	CreateSale(ctx context.Context, apiBase, token string, draft domain.SaleDraft) (wire.SaleResponse, error)
}

// Phase is the sale terminal's lifecycle state.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
	PhaseLoadFailed
	PhaseSubmitting
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseLoadFailed:
		return "load-failed"
	case PhaseSubmitting:
		return "submitting"
	}
	return "phase(" + strconv.Itoa(int(p)) + ")"
}

// SaleResult describes a recorded sale.
type SaleResult struct {
	SaleID int64
	Totals domain.Totals
}

// View is a consistent snapshot of everything the terminal screen renders.
type View struct {
	Phase         Phase
	LoadError     error
	CatalogSize   int
	Query         string
	Results       []domain.Product
	MatchCount    int
	Lines         []domain.CartLine
	Totals        domain.Totals
	PaymentMethod domain.PaymentMethod
	Notice        *Notice
	CanSubmit     bool
}

// Terminal is the catalog + cart + submission screen for one session. Cart
// operations are local and synchronous; only Load and Submit touch the network.
type Terminal struct {
	client     SaleClient
	conn       domain.ServerConnection
	session    domain.Session
	logger     logrus.FieldLogger
	now        func() time.Time
	customerID int64

	mu       sync.Mutex
	phase    Phase
	catalog  []domain.Product
	loadErr  error
	cart     Cart
	query    string
	payment  domain.PaymentMethod
	notice   *Notice
	inflight string
}

func NewTerminal(client SaleClient, conn domain.ServerConnection, session domain.Session, logger logrus.FieldLogger) *Terminal {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Terminal{
		client:     client,
		conn:       conn,
		session:    session,
		logger:     logger.WithField("api", conn.APIEndpoint),
		now:        time.Now,
		customerID: domain.WalkInCustomerID,
		phase:      PhaseLoading,
		payment:    domain.DefaultPaymentMethod,
	}
}

// Session returns the session the terminal was opened with.
func (t *Terminal) Session() domain.Session {
	return t.session
}

// Load fetches the catalog once. A failure leaves the terminal in
// PhaseLoadFailed with the error kept for display; calling Load again retries.
func (t *Terminal) Load(ctx context.Context) error {
	t.mu.Lock()
	if t.phase == PhaseSubmitting {
		t.mu.Unlock()
		return ErrSubmitInFlight
	}
	t.phase = PhaseLoading
	t.loadErr = nil
	t.mu.Unlock()

	products, err := t.client.Products(ctx, t.conn.APIEndpoint, t.session.Token)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.phase = PhaseLoadFailed
		t.loadErr = err
		t.logger.WithError(err).Error("terminal: catalog load failed")
		return fmt.Errorf("load catalog: %w", err)
	}
	t.catalog = products
	t.phase = PhaseReady
	t.logger.WithField("products", len(products)).Info("terminal: catalog loaded")
	return nil
}

// Phase returns the current phase.
func (t *Terminal) Phase() Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

// Search sets the filter query. Results are recomputed on read.
func (t *Terminal) Search(query string) {
	t.mu.Lock()
	t.query = query
	t.mu.Unlock()
}

// Results returns the visible matches for the current query.
func (t *Terminal) Results() []domain.Product {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Visible(t.catalog, t.query)
}

// Lookup finds a catalog product by numeric id or exact barcode.
func (t *Terminal) Lookup(ref string) (domain.Product, bool) {
	ref = strings.TrimSpace(ref)
	t.mu.Lock()
	defer t.mu.Unlock()
	id, idErr := strconv.ParseInt(ref, 10, 64)
	for _, p := range t.catalog {
		if idErr == nil && p.ID == id {
			return p, true
		}
	}
	for _, p := range t.catalog {
		if p.Barcode != "" && p.Barcode == ref {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Add puts one unit of the catalog product productID in the cart.
func (t *Terminal) Add(productID int64) (domain.CartLine, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range t.catalog {
		if p.ID == productID {
			return t.cart.Add(p), nil
		}
	}
	return domain.CartLine{}, fmt.Errorf("%w: %d", ErrUnknownProduct, productID)
}

// AddProduct puts one unit of p in the cart.
func (t *Terminal) AddProduct(p domain.Product) domain.CartLine {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cart.Add(p)
}

// UpdateQuantity adjusts a line by delta, removing it when it reaches zero.
func (t *Terminal) UpdateQuantity(productID int64, delta int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cart.UpdateQuantity(productID, delta)
}

// Remove drops a line from the cart.
func (t *Terminal) Remove(productID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cart.Remove(productID)
}

// Cart returns a copy of the cart lines.
func (t *Terminal) Cart() []domain.CartLine {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cart.Lines()
}

// Totals is derived from the cart on every call.
func (t *Terminal) Totals() domain.Totals {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cart.Totals()
}

// SetPaymentMethod selects cash or card.
func (t *Terminal) SetPaymentMethod(m domain.PaymentMethod) error {
	if !m.Valid() {
		return fmt.Errorf("unknown payment method %q", m)
	}
	t.mu.Lock()
	t.payment = m
	t.mu.Unlock()
	return nil
}

// PaymentMethod returns the selected payment method.
func (t *Terminal) PaymentMethod() domain.PaymentMethod {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.payment
}

// Submit sends the cart as a sale. An empty cart is a no-op returning
// ErrEmptyCart. The in-flight guard is claimed before any I/O so a second
// call made while the first is pending returns ErrSubmitInFlight without
// reaching the server. On success the cart is cleared and a confirmation
// notice shows for SuccessNoticeTTL; on failure the cart is kept.
func (t *Terminal) Submit(ctx context.Context) (SaleResult, error) {
	t.mu.Lock()
	if t.cart.IsEmpty() {
		t.mu.Unlock()
		return SaleResult{}, ErrEmptyCart
	}
	switch t.phase {
	case PhaseReady:
	case PhaseSubmitting:
		t.mu.Unlock()
		return SaleResult{}, ErrSubmitInFlight
	default:
		t.mu.Unlock()
		return SaleResult{}, fmt.Errorf("%w: %s", ErrNotReady, t.phase)
	}
	guard := uuid.NewString()
	t.inflight = guard
	t.phase = PhaseSubmitting
	draft := domain.NewSaleDraft(t.customerID, t.payment, t.cart.Lines())
	t.mu.Unlock()

	log := t.logger.WithFields(logrus.Fields{
		"submission": guard,
		"lines":      len(draft.Lines),
		"total":      draft.Total.StringFixed(2),
		"payment":    draft.PaymentMethod,
	})
	log.Info("terminal: submitting sale")

	resp, err := t.client.CreateSale(ctx, t.conn.APIEndpoint, t.session.Token, draft)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inflight == guard {
		t.inflight = ""
		t.phase = PhaseReady
	}
	totals := domain.Totals{Subtotal: draft.Subtotal, Tax: draft.Tax, Total: draft.Total}

	if err != nil {
		log.WithError(err).Warn("terminal: sale submission failed")
		t.notice = &Notice{Kind: NoticeError, Text: msgSaleConnection}
		return SaleResult{}, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = resp.Message
		}
		log.WithField("error", msg).Warn("terminal: sale rejected")
		text := msg
		if text == "" {
			text = msgSaleFailed
		}
		t.notice = &Notice{Kind: NoticeError, Text: text}
		return SaleResult{}, &RejectedError{Message: msg}
	}

	var saleID int64
	if resp.Data != nil {
		saleID = resp.Data.ID
	}
	t.cart.Clear()
	t.notice = &Notice{
		Kind:      NoticeSuccess,
		Text:      saleConfirmation(saleID),
		ExpiresAt: t.now().Add(SuccessNoticeTTL),
	}
	log.WithField("sale_id", saleID).Info("terminal: sale recorded")
	return SaleResult{SaleID: saleID, Totals: totals}, nil
}

func saleConfirmation(id int64) string {
	if id == 0 {
		return "Sale recorded"
	}
	return fmt.Sprintf("Sale #%d recorded", id)
}

// Notice returns the current notice if it has not expired.
func (t *Terminal) Notice() (Notice, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.activeNoticeLocked()
	if n == nil {
		return Notice{}, false
	}
	return *n, true
}

// DismissNotice clears any notice.
func (t *Terminal) DismissNotice() {
	t.mu.Lock()
	t.notice = nil
	t.mu.Unlock()
}

func (t *Terminal) activeNoticeLocked() *Notice {
	if t.notice == nil {
		return nil
	}
	if !t.notice.ActiveAt(t.now()) {
		t.notice = nil
		return nil
	}
	n := *t.notice
	return &n
}

// View snapshots the screen state.
func (t *Terminal) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()
	matches := Filter(t.catalog, t.query)
	results := matches
	if len(results) > MaxVisibleProducts {
		results = results[:MaxVisibleProducts]
	}
	return View{
		Phase:         t.phase,
		LoadError:     t.loadErr,
		CatalogSize:   len(t.catalog),
		Query:         t.query,
		Results:       results,
		MatchCount:    len(matches),
		Lines:         t.cart.Lines(),
		Totals:        t.cart.Totals(),
		PaymentMethod: t.payment,
		Notice:        t.activeNoticeLocked(),
		CanSubmit:     t.phase == PhaseReady && !t.cart.IsEmpty(),
	}
}
