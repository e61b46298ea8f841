package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"saas-pos/internal/domain"
	salerepo "saas-pos/internal/repository/sale"
	"saas-pos/internal/service/cart"
	"saas-pos/internal/session"
)

const helpText = `commands:
  open                      open the cart and reload it from the server
  close                     close the cart view
  show                      print the current cart, reloading it when open
  add <productId> [qty]     add qty (default 1) of a product
  qty <productId> <qty>     set the quantity of a line
  rm <productId>            remove a line
  customer <id>|none        select or clear the customer
  doctype A|B               choose the invoice type
  checkout                  complete the sale
  new                       start a new sale after checkout
  sales                     list recent sales of this branch
  quit                      exit`

var errQuit = errors.New("quit")

// printNotifier writes notices for the operator.
type printNotifier struct {
	w io.Writer
}

func (p printNotifier) Notify(n cart.Notice) {
	fmt.Fprintf(p.w, "[%s] %s\n", n.Level, n.Message)
}

type shell struct {
	svc   *cart.Service
	sess  *session.Session
	sales salerepo.Repository
	out   io.Writer
}

// run reads commands until quit or EOF.
func (sh *shell) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(sh.out, "> ")
	for scanner.Scan() {
		if err := sh.exec(ctx, scanner.Text()); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintf(sh.out, "error: %v\n", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Fprint(sh.out, "> ")
	}
	return scanner.Err()
}

func (sh *shell) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "help", "?":
		fmt.Fprintln(sh.out, helpText)
		return nil
	case "quit", "exit":
		return errQuit
	case "open":
		sh.sess.SetCartOpen(true)
		sh.refresh(ctx)
		sh.printState()
		return nil
	case "close":
		sh.sess.SetCartOpen(false)
		fmt.Fprintln(sh.out, "cart closed")
		return nil
	case "show":
		sh.refresh(ctx)
		sh.printState()
		return nil
	case "add":
		if len(args) < 1 || len(args) > 2 {
			return errors.New("usage: add <productId> [qty]")
		}
		qty := 1.0
		if len(args) == 2 {
			q, err := parseQty(args[1])
			if err != nil {
				return err
			}
			qty = q
		}
		return sh.mutated(sh.svc.AddItem(ctx, args[0], qty))
	case "qty":
		if len(args) != 2 {
			return errors.New("usage: qty <productId> <qty>")
		}
		q, err := parseQty(args[1])
		if err != nil {
			return err
		}
		return sh.mutated(sh.svc.UpdateItemQty(ctx, args[0], q))
	case "rm":
		if len(args) != 1 {
			return errors.New("usage: rm <productId>")
		}
		return sh.mutated(sh.svc.RemoveItem(ctx, args[0]))
	case "customer":
		if len(args) != 1 {
			return errors.New("usage: customer <id>|none")
		}
		if strings.EqualFold(args[0], "none") {
			sh.sess.ClearCustomer()
		} else {
			sh.sess.SelectCustomer(args[0])
		}
		sh.printSelection()
		return nil
	case "doctype":
		if len(args) != 1 {
			return errors.New("usage: doctype A|B")
		}
		d, err := domain.ParseDocType(args[0])
		if err != nil {
			return err
		}
		sh.sess.SetDocType(d)
		sh.printSelection()
		return nil
	case "checkout":
		if err := sh.svc.Checkout(ctx); err != nil {
			return silent(err)
		}
		sh.printState()
		return nil
	case "new":
		if err := sh.svc.StartNewSale(ctx); err != nil {
			return err
		}
		sh.printState()
		return nil
	case "sales":
		return sh.printSales(ctx)
	}
	return fmt.Errorf("unknown command %q, try help", cmd)
}

// refresh reloads the cart while it is open. A failure ends up in the state
// and is printed with it.
func (sh *shell) refresh(ctx context.Context) {
	if !sh.sess.CartOpen() {
		return
	}
	_ = sh.svc.RefreshCart(ctx)
}

// mutated prints the cart after a successful edit. Failed edits were already
// reported as notices.
func (sh *shell) mutated(err error) error {
	if err != nil {
		return silent(err)
	}
	sh.printState()
	return nil
}

// silent drops errors the operator has already seen as a notice. Malformed
// responses are never notified.
func silent(err error) error {
	if errors.Is(err, domain.ErrMalformedResponse) {
		return err
	}
	return nil
}

func parseQty(s string) (float64, error) {
	q, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	return q, nil
}

func (sh *shell) printSelection() {
	customer := "none"
	if id := sh.sess.Customer(); id != nil {
		customer = *id
	}
	fmt.Fprintf(sh.out, "doc type %s, customer %s\n", sh.sess.DocType(), customer)
}

func (sh *shell) printState() {
	st := sh.svc.State()
	if st.View == cart.ViewSuccess && st.LastSale != nil {
		fmt.Fprintf(sh.out, "sale complete: invoice %s total %s (type new to continue)\n",
			st.LastSale.Number, st.LastSale.Total)
		return
	}
	if st.Err != nil {
		fmt.Fprintf(sh.out, "cart unavailable: %v\n", st.Err)
		return
	}
	c := st.Cart
	if c == nil {
		fmt.Fprintln(sh.out, "no cart loaded")
		return
	}
	fmt.Fprintf(sh.out, "cart %s (%s)\n", c.ID, c.Status)
	for _, it := range c.Items {
		fmt.Fprintf(sh.out, "  %-12s %-24s %4d x %10s = %10s\n", it.ProductID, it.Name, it.Quantity, it.UnitPrice, it.LineTotal)
	}
	fmt.Fprintf(sh.out, "  subtotal %s  tax %s  total %s\n", c.Subtotal, c.TaxTotal, c.Total)
	sh.printSelection()
}

func (sh *shell) printSales(ctx context.Context) error {
	list, err := sh.sales.ListByBranch(ctx, sh.sess.BranchID, salerepo.DefaultListLimit)
	if err != nil {
		return fmt.Errorf("list sales: %w", err)
	}
	if len(list) == 0 {
		fmt.Fprintln(sh.out, "no sales recorded")
		return nil
	}
	for _, s := range list {
		fmt.Fprintf(sh.out, "  %s  %-16s %10s\n", s.CompletedAt.Local().Format("2006-01-02 15:04"), s.Number, s.Total)
	}
	return nil
}
