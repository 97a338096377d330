// Package console is the text front end of the POS terminal. It renders the
// screen for the current App state and maps typed commands onto App and
// Terminal operations.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"wilpos-terminal/internal/domain"
	"wilpos-terminal/internal/logging"
	"wilpos-terminal/internal/terminal"
)

const terminalHelp = `Commands:
  search <text>      filter products (no text clears the filter)
  list               show the product list
  add <id|barcode>   add one unit to the cart
  + <id>  /  - <id>  increase or decrease a cart line
  rm <id>            remove a cart line
  pay cash|card      select the payment method
  cart               show the cart
  sell               record the sale
  reload             load products again
  logout             end the session
  server             forget the server and start over
  quit               exit`

// Console drives one App from a line-oriented input.
type Console struct {
	app    *terminal.App
	in     *bufio.Scanner
	out    io.Writer
	logger logrus.FieldLogger

	term  *terminal.Terminal
	flash string
}

func New(app *terminal.App, in io.Reader, out io.Writer, logger logrus.FieldLogger) *Console {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Console{
		app:    app,
		in:     bufio.NewScanner(in),
		out:    out,
		logger: logger,
	}
}

// Run renders and reads commands until quit, end of input or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		if err := c.render(ctx); err != nil {
			return err
		}
		if !c.in.Scan() {
			return c.in.Err()
		}
		quit, err := c.handle(ctx, strings.TrimSpace(c.in.Text()))
		if err != nil {
			return err
		}
		if quit {
			fmt.Fprintln(c.out, "Bye.")
			return nil
		}
	}
	return nil
}

func (c *Console) render(ctx context.Context) error {
	switch st := c.app.State().(type) {
	case terminal.Disconnected:
		c.renderLocator(st)
	case terminal.Connected:
		c.renderLogin(st)
	case terminal.Authenticated:
		if c.term == nil {
			term, err := c.app.OpenTerminal()
			if err != nil {
				return err
			}
			c.term = term
			if err := term.Load(ctx); err != nil {
				c.logger.WithError(err).Warn("console: initial catalog load failed")
			}
		}
		c.renderTerminal(st)
	}
	return nil
}

func (c *Console) handle(ctx context.Context, line string) (bool, error) {
	switch st := c.app.State().(type) {
	case terminal.Disconnected:
		return c.handleLocator(ctx, st, line)
	case terminal.Connected:
		return c.handleLogin(ctx, line)
	case terminal.Authenticated:
		return c.handleTerminal(ctx, line)
	}
	return false, nil
}

func (c *Console) printFlash() {
	if c.flash != "" {
		fmt.Fprintf(c.out, "! %s\n", c.flash)
		c.flash = ""
	}
}

func (c *Console) renderLocator(st terminal.Disconnected) {
	fmt.Fprintln(c.out, "\n== WilPOS | Connect to server ==")
	c.printFlash()
	if st.LastAddress != "" {
		fmt.Fprintf(c.out, "Server address [%s]: ", st.LastAddress)
		return
	}
	fmt.Fprint(c.out, "Server address (e.g. 192.168.1.100): ")
}

func (c *Console) handleLocator(ctx context.Context, st terminal.Disconnected, line string) (bool, error) {
	cmd, rest := splitCommand(line)
	switch cmd {
	case "quit", "exit":
		return true, nil
	case "connect":
		line = rest
	}
	if line == "" {
		line = st.LastAddress
	}
	fmt.Fprintln(c.out, "Connecting...")
	if err := c.app.Connect(ctx, line); err != nil {
		if errors.Is(err, terminal.ErrInvalidState) {
			return false, err
		}
		c.flash = terminal.LocatorMessage(err)
	}
	return false, nil
}

func (c *Console) renderLogin(st terminal.Connected) {
	fmt.Fprintln(c.out, "\n== WilPOS | Sign in ==")
	fmt.Fprintf(c.out, "Connected to: %s\n", st.Conn.Host())
	c.printFlash()
	fmt.Fprint(c.out, "login <user> <password> | server | quit > ")
}

func (c *Console) handleLogin(ctx context.Context, line string) (bool, error) {
	cmd, rest := splitCommand(line)
	switch cmd {
	case "quit", "exit":
		return true, nil
	case "server":
		return false, c.forget(c.app.ChangeServer)
	case "login":
		user, password, _ := strings.Cut(rest, " ")
		if err := c.app.Login(ctx, user, strings.TrimSpace(password)); err != nil {
			if errors.Is(err, terminal.ErrInvalidState) {
				return false, err
			}
			c.flash = terminal.LoginMessage(err)
		}
	case "":
	default:
		c.flash = fmt.Sprintf("Unknown command %q", cmd)
	}
	return false, nil
}

func (c *Console) renderTerminal(st terminal.Authenticated) {
	v := c.term.View()
	name := st.Session.User.DisplayName()
	if name == "" {
		name = "cashier"
	}
	fmt.Fprintf(c.out, "\n== WilPOS | %s @ %s ==\n", name, st.Conn.Host())
	if v.Notice != nil {
		fmt.Fprintf(c.out, "[%s] %s\n", v.Notice.Kind, v.Notice.Text)
	}
	c.printFlash()

	switch v.Phase {
	case terminal.PhaseLoading:
		fmt.Fprintln(c.out, "Loading products...")
	case terminal.PhaseLoadFailed:
		fmt.Fprintf(c.out, "Could not load products: %v\nType 'reload' to retry.\n", v.LoadError)
	default:
		c.renderProducts(v)
	}
	c.renderCart(v)
	fmt.Fprint(c.out, "> ")
}

func (c *Console) renderProducts(v terminal.View) {
	header := fmt.Sprintf("Products (%d", v.CatalogSize)
	if v.Query != "" {
		header += fmt.Sprintf(", %d matching %q", v.MatchCount, v.Query)
	}
	if v.MatchCount > len(v.Results) {
		header += fmt.Sprintf(", showing first %d", len(v.Results))
	}
	fmt.Fprintln(c.out, header+"):")
	if len(v.Results) == 0 {
		fmt.Fprintln(c.out, "  no products")
		return
	}
	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	for _, p := range v.Results {
		fmt.Fprintf(tw, "  #%d\t%s\t%s\t%s\tstock %d\n", p.ID, p.Name, p.Barcode, money(p.UnitPrice), p.Stock)
	}
	_ = tw.Flush()
}

func (c *Console) renderCart(v terminal.View) {
	if len(v.Lines) == 0 {
		fmt.Fprintln(c.out, "Cart: empty")
	} else {
		fmt.Fprintln(c.out, "Cart:")
		tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
		for _, l := range v.Lines {
			fmt.Fprintf(tw, "  #%d\t%s\tx%d\t%s\t%s\n", l.ProductID, l.Name, l.Quantity, money(l.UnitPrice), money(l.LineTotal()))
		}
		_ = tw.Flush()
	}
	fmt.Fprintf(c.out, "Subtotal: %s\n", money(v.Totals.Subtotal))
	fmt.Fprintf(c.out, "ITBIS (%s%%): %s\n", domain.TaxRate.Shift(2).String(), money(v.Totals.Tax))
	fmt.Fprintf(c.out, "Total (ITBIS incl.): %s\n", money(v.Totals.Total))
	fmt.Fprintf(c.out, "Payment: %s\n", v.PaymentMethod)
}

func (c *Console) handleTerminal(ctx context.Context, line string) (bool, error) {
	cmd, rest := splitCommand(line)
	switch cmd {
	case "", "list", "cart":
	case "help", "?":
		fmt.Fprintln(c.out, terminalHelp)
	case "quit", "exit":
		return true, nil
	case "search":
		c.term.Search(rest)
	case "add":
		p, ok := c.term.Lookup(rest)
		if !ok {
			c.flash = fmt.Sprintf("Product not found: %s", rest)
			return false, nil
		}
		c.term.AddProduct(p)
	case "+", "-":
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			c.flash = "Usage: " + cmd + " <id>"
			return false, nil
		}
		delta := 1
		if cmd == "-" {
			delta = -1
		}
		if !c.term.UpdateQuantity(id, delta) {
			c.flash = fmt.Sprintf("Product #%d is not in the cart", id)
		}
	case "rm":
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil || !c.term.Remove(id) {
			c.flash = fmt.Sprintf("Product %s is not in the cart", rest)
		}
	case "pay":
		m, err := domain.ParsePaymentMethod(rest)
		if err != nil {
			c.flash = "Usage: pay cash|card"
			return false, nil
		}
		_ = c.term.SetPaymentMethod(m)
	case "sell":
		c.sell(ctx)
	case "reload":
		if err := c.term.Load(ctx); err != nil {
			c.logger.WithError(err).Warn("console: catalog reload failed")
		}
	case "logout":
		return false, c.forget(c.app.Logout)
	case "server":
		return false, c.forget(c.app.ChangeServer)
	default:
		c.flash = fmt.Sprintf("Unknown command %q, type 'help'", cmd)
	}
	return false, nil
}

// forget runs a logout or server change. A store failure keeps the current
// screen and is reported inline.
func (c *Console) forget(op func() error) error {
	err := op()
	switch {
	case err == nil:
		c.term = nil
		return nil
	case errors.Is(err, terminal.ErrStorage):
		c.logger.WithError(err).Error("console: could not clear saved session")
		c.flash = "Could not clear the saved session"
		return nil
	default:
		return err
	}
}

func (c *Console) sell(ctx context.Context) {
	fmt.Fprintln(c.out, "Processing sale...")
	_, err := c.term.Submit(ctx)
	switch {
	case err == nil:
	case errors.Is(err, terminal.ErrEmptyCart):
		c.flash = "The cart is empty"
	case errors.Is(err, terminal.ErrSubmitInFlight):
		c.flash = "A sale is already being processed"
	case errors.Is(err, terminal.ErrNotReady):
		c.flash = "Products are not loaded yet"
	}
	// rejected and connection failures are shown through the terminal notice
}

func splitCommand(line string) (string, string) {
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	return strings.ToLower(cmd), strings.TrimSpace(rest)
}

func money(d decimal.Decimal) string {
	return "RD$ " + d.StringFixed(2)
}
