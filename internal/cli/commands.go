package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/subcommands"

	"spendwise/internal/amqp"
	"spendwise/internal/core"
	applog "spendwise/internal/log"
	"spendwise/internal/render"
)

// Register adds the ledger commands to c.
func Register(c *subcommands.Commander) {
	c.Register(&addCmd{}, "ledger")
	c.Register(&rmCmd{}, "ledger")
	c.Register(&listCmd{}, "ledger")
	c.Register(&totalsCmd{}, "ledger")
	c.Register(&watchCmd{}, "feed")
}

// withApp opens the ledger for the duration of fn.
func withApp(ctx context.Context, args []interface{}, fn func(env *Env, app *App) subcommands.ExitStatus) subcommands.ExitStatus {
	env, ok := envFrom(args)
	if !ok {
		return subcommands.ExitFailure
	}
	app, err := OpenApp(ctx, env)
	if err != nil {
		fmt.Fprintln(env.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	defer func() {
		if err := app.Close(); err != nil {
			applog.FromContext(ctx).ErrorContext(ctx, "Failed to close ledger", applog.FieldError, err)
		}
	}()
	return fn(env, app)
}

func envFrom(args []interface{}) (*Env, bool) {
	if len(args) == 0 {
		return nil, false
	}
	env, ok := args[0].(*Env)
	return env, ok
}

type addCmd struct {
	kind string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record an income or expense" }
func (*addCmd) Usage() string {
	return `spendwise add [-kind income|expense] <description> <amount>

  Records a transaction at the top of the ledger. The description may span
  several words; the last argument is the amount (12.34 or 12,34).
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "expense", "Transaction kind: income or expense.")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 2 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	description := strings.Join(f.Args()[:f.NArg()-1], " ")
	amountText := f.Arg(f.NArg() - 1)

	env, ok := envFrom(args)
	if !ok {
		return subcommands.ExitFailure
	}
	kind, err := core.ParseKind(c.kind)
	if err != nil {
		fmt.Fprintf(env.Stderr, "Error: %v %q\n", err, c.kind)
		return subcommands.ExitUsageError
	}
	amount, err := core.ParseAmount(amountText)
	if err != nil {
		fmt.Fprintf(env.Stderr, "Error: %v %q\n", err, amountText)
		return subcommands.ExitUsageError
	}

	return withApp(ctx, args, func(env *Env, app *App) subcommands.ExitStatus {
		tx, err := app.Store.Add(ctx, description, amount, kind)
		if errors.Is(err, core.ErrEmptyDescription) {
			fmt.Fprintln(env.Stderr, "Error:", err)
			return subcommands.ExitUsageError
		}
		if err != nil {
			fmt.Fprintln(env.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}

		fmt.Fprintf(env.Stdout, "Added %d %s %s\n", tx.ID, tx.Description, app.Formatter.Signed(tx))
		return subcommands.ExitSuccess
	})
}

type rmCmd struct{}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "remove a transaction by id" }
func (*rmCmd) Usage() string {
	return `spendwise rm <id>

  Removes the transaction with the given id. Unknown ids are ignored.
`
}

func (*rmCmd) SetFlags(*flag.FlagSet) {}

func (*rmCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	id, err := strconv.ParseInt(f.Arg(0), 10, 64)
	if err != nil {
		f.Usage()
		return subcommands.ExitUsageError
	}

	return withApp(ctx, args, func(env *Env, app *App) subcommands.ExitStatus {
		removed, err := app.Store.Remove(ctx, id)
		if err != nil {
			fmt.Fprintln(env.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		if !removed {
			fmt.Fprintf(env.Stdout, "No transaction with id %d\n", id)
			return subcommands.ExitSuccess
		}
		fmt.Fprintf(env.Stdout, "Removed %d\n", id)
		return subcommands.ExitSuccess
	})
}

type listCmd struct {
	plain bool
	width int
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "show the ledger and its totals" }
func (*listCmd) Usage() string {
	return `spendwise list [-plain] [-width <n>]

  Shows every transaction, newest first, followed by the totals.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.plain, "plain", false, "Print aligned plain text instead of rendered markdown.")
	f.IntVar(&c.width, "width", 100, "Word wrap width for rendered output.")
}

func (c *listCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, args, func(env *Env, app *App) subcommands.ExitStatus {
		txs, totals := app.Store.All(), app.Store.Totals()

		if c.plain {
			if err := app.Formatter.Plain(env.Stdout, txs, totals); err != nil {
				fmt.Fprintln(env.Stderr, "Error:", err)
				return subcommands.ExitFailure
			}
			return subcommands.ExitSuccess
		}

		out, err := render.Terminal(app.Formatter.Markdown(txs, totals), c.width)
		if err != nil {
			applog.FromContext(ctx).ErrorContext(ctx, "Failed to render ledger",
				applog.NewFields().WithOperation(applog.OpRender).WithError(err).ToSlice()...)
			fmt.Fprintln(env.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		fmt.Fprint(env.Stdout, out)
		return subcommands.ExitSuccess
	})
}

type totalsCmd struct{}

func (*totalsCmd) Name() string     { return "totals" }
func (*totalsCmd) Synopsis() string { return "show income, expense and balance" }
func (*totalsCmd) Usage() string {
	return `spendwise totals
`
}

func (*totalsCmd) SetFlags(*flag.FlagSet) {}

func (*totalsCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, args, func(env *Env, app *App) subcommands.ExitStatus {
		if err := app.Formatter.Totals(env.Stdout, app.Store.Totals()); err != nil {
			fmt.Fprintln(env.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	})
}

type watchCmd struct{}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "print ledger events from the AMQP change feed" }
func (*watchCmd) Usage() string {
	return `spendwise watch

  Consumes the change feed configured by AMQP_URL and prints one line per
  event until interrupted.
`
}

func (*watchCmd) SetFlags(*flag.FlagSet) {}

func (*watchCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	env, ok := envFrom(args)
	if !ok {
		return subcommands.ExitFailure
	}
	cfg := env.Config
	if cfg.AMQPURL == "" {
		fmt.Fprintln(env.Stderr, "Error: AMQP_URL is not set")
		return subcommands.ExitUsageError
	}
	formatter, err := render.NewFormatter(cfg.Currency)
	if err != nil {
		fmt.Fprintln(env.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
	if err != nil {
		fmt.Fprintln(env.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	defer client.Close()

	applog.FromContext(ctx).InfoContext(ctx, "Watching ledger events", "exchange", cfg.AMQPExchange, "routing_key", cfg.AMQPRoutingKey)
	err = client.ConsumeLedgerEvents(ctx, func(msg *amqp.LedgerEventMessage) error {
		_, err := fmt.Fprintln(env.Stdout, FormatEvent(formatter, msg))
		return err
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(env.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// FormatEvent renders one change feed message as a single line.
func FormatEvent(f *render.Formatter, msg *amqp.LedgerEventMessage) string {
	tx := core.Transaction{
		ID:          msg.Transaction.ID,
		Description: msg.Transaction.Description,
		Kind:        core.Kind(msg.Transaction.Kind),
	}
	amount := msg.Transaction.Amount.String()
	if d, err := core.ParseAmount(amount); err == nil {
		tx.Amount = d
		amount = f.Signed(tx)
	}
	return fmt.Sprintf("%s %-7s %d %s %s",
		msg.Timestamp.Local().Format("2006-01-02 15:04:05"), msg.Event, tx.ID, tx.Description, amount)
}
