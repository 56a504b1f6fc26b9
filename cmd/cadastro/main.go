// Command cadastro manages contacts from the terminal through the gateway,
// applying the same masks and validation as the registration form.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-contact-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-contact-go/internal/contact/client"
	"github.com/ovaphlow/pitchfork/service-contact-go/internal/form"
	"github.com/ovaphlow/pitchfork/service-contact-go/internal/validate"
	"github.com/ovaphlow/pitchfork/service-contact-go/pkg/utilities"
)

const usage = `usage: cadastro [-config file] [-gateway url] <command> [flags]

commands:
  list                      list contacts
  add    -nome ... -email ... -nascimento dd/mm/aaaa -profissao ... -celular ... [-telefone ...] [-check1] [-check2] [-check3]
  edit   -id N [fields to change]
  delete -id N [-yes]
`

// lastRoute remembers where the controller asked to go.
type lastRoute struct {
	route form.Route
	set   bool
}

func (n *lastRoute) Navigate(r form.Route) { n.route, n.set = r, true }

type stdinConfirmer struct {
	in  *bufio.Reader
	out io.Writer
	yes bool
}

func (c stdinConfirmer) Confirm(prompt string) bool {
	if c.yes {
		return true
	}
	fmt.Fprintf(c.out, "%s [s/N] ", prompt)
	line, _ := c.in.ReadString('\n')
	return strings.EqualFold(strings.TrimSpace(line), "s")
}

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	gatewayURL := flag.String("gateway", "", "gateway base URL (overrides GATEWAY_URL)")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *gatewayURL != "" {
		cfg.GatewayURL = *gatewayURL
	}

	lc := cfg.Logger()
	if os.Getenv("LOG_LEVEL") == "" {
		lc.Level = "warn"
	}
	lg, err := utilities.Init(lc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()
	sugar := lg.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg.GatewayURL, flag.Args(), sugar, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, gatewayURL string, args []string, logger *zap.SugaredLogger, in io.Reader, out io.Writer) error {
	gw, err := client.New(gatewayURL, nil, logger)
	if err != nil {
		return err
	}

	cmd, args := args[0], args[1:]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	id := fs.Int64("id", 0, "contact id")
	yes := fs.Bool("yes", false, "skip the delete confirmation")
	fields := map[validate.Field]*string{
		validate.FieldName:       fs.String("nome", "", "full name"),
		validate.FieldEmail:      fs.String("email", "", "email"),
		validate.FieldBirthDate:  fs.String("nascimento", "", "birth date, dd/mm/aaaa"),
		validate.FieldOccupation: fs.String("profissao", "", "occupation"),
		validate.FieldLandline:   fs.String("telefone", "", "landline, optional"),
		validate.FieldMobile:     fs.String("celular", "", "mobile"),
	}
	checks := [3]*bool{
		fs.Bool("check1", false, "first option"),
		fs.Bool("check2", false, "second option"),
		fs.Bool("check3", false, "third option"),
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	given := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { given[f.Name] = true })

	nav := &lastRoute{}
	ctl := form.NewController(gw, nav,
		stdinConfirmer{in: bufio.NewReader(in), out: out, yes: *yes},
		form.WithLogger(logger))
	defer ctl.Close()

	switch cmd {
	case "list":
		if err := ctl.Refresh(ctx); err != nil {
			return err
		}
		printRows(out, ctl.Rows())
		return nil

	case "add", "edit":
		route := form.Route{}
		if cmd == "edit" {
			if *id == 0 {
				return errors.New("edit requires -id")
			}
			route.ID = *id
		}
		if err := ctl.Open(ctx, route); err != nil {
			printMessage(out, ctl.FormMessage)
			return err
		}
		for _, f := range validate.TextFields {
			if given[flagName(f)] {
				ctl.Input(f, *fields[f])
				ctl.Blur(ctx, f)
			}
		}
		for i, v := range checks {
			if given[fmt.Sprintf("check%d", i+1)] {
				ctl.SetCheck(i+1, *v)
			}
		}
		err := ctl.Submit(ctx)
		if errors.Is(err, form.ErrInvalid) {
			printFieldErrors(out, ctl)
			return err
		}
		if err == nil && nav.set {
			_ = ctl.Open(ctx, nav.route)
		}
		printMessage(out, ctl.FormMessage)
		return err

	case "delete":
		if *id == 0 {
			return errors.New("delete requires -id")
		}
		err := ctl.Delete(ctx, *id)
		if errors.Is(err, form.ErrCanceled) {
			return nil
		}
		printMessage(out, ctl.ListMessage)
		return err

	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func flagName(f validate.Field) string {
	switch f {
	case validate.FieldBirthDate:
		return "nascimento"
	default:
		return string(f)
	}
}

func printRows(out io.Writer, rows []form.Row) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNOME\tEMAIL\tNASCIMENTO\tPROFISSÃO\tTELEFONE\tCELULAR\tOPÇÕES")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Nome, r.Email, r.DataNascimento, r.Profissao, r.Telefone, r.Celular, checkMarks(r.Checks))
	}
	_ = tw.Flush()
}

func checkMarks(c [3]bool) string {
	var b strings.Builder
	for _, v := range c {
		if v {
			b.WriteByte('s')
		} else {
			b.WriteByte('n')
		}
	}
	return b.String()
}

func printMessage(out io.Writer, get func() (form.Message, bool)) {
	if m, ok := get(); ok {
		fmt.Fprintf(out, "[%s] %s\n", m.Kind, m.Text)
	}
}

func printFieldErrors(out io.Writer, ctl *form.Controller) {
	for _, f := range validate.TextFields {
		if err := ctl.Control(f).Err; err != nil {
			fmt.Fprintf(out, "%s: %s (%s)\n", f, err, validate.CodeOf(err))
		}
	}
}
