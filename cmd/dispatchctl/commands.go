package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/wolfman30/hvac-dispatch/internal/board"
	appconfig "github.com/wolfman30/hvac-dispatch/internal/config"
	"github.com/wolfman30/hvac-dispatch/internal/dispatch"
	"github.com/wolfman30/hvac-dispatch/internal/recommend"
	"github.com/wolfman30/hvac-dispatch/pkg/logging"
)

// boardFactory builds the board a command runs against. Tests pin time and randomness.
type boardFactory func(seed uint64) *board.Board

func defaultBoard(seed uint64) *board.Board {
	cfg := appconfig.Load()
	return board.NewSeeded(board.Options{
		Rand:   recommend.NewRand(seed),
		Now:    func() time.Time { return time.Now().In(cfg.Location()) },
		Logger: logging.NewWithWriter("error", io.Discard),
	})
}

type cli struct {
	newBoard boardFactory
	seed     uint64
	b        *board.Board
}

func (c *cli) current() *board.Board {
	if c.b == nil {
		c.b = c.newBoard(c.seed)
	}
	return c.b
}

func newRootCmd(factory boardFactory) *cobra.Command {
	if factory == nil {
		factory = defaultBoard
	}
	c := &cli{newBoard: factory}

	root := &cobra.Command{
		Use:   "dispatchctl",
		Short: "HVAC dispatch scheduling assistant",
		Long: `dispatchctl ranks technicians, suggests dates, grades the schedule and
interprets plain-English scheduling instructions against a demo board.

Examples:
  dispatchctl recommend --service repair --date 2025-05-20 --slot morning
  dispatchctl dates --service maintenance --priority high
  dispatchctl say "move sarah williams appointment to next tuesday"
  dispatchctl repl`,
		SilenceUsage: true,
	}
	root.PersistentFlags().Uint64Var(&c.seed, "seed", 0, "random seed for recommendations (0 = time seeded)")

	root.AddCommand(
		c.recommendCmd(),
		c.datesCmd(),
		c.analyzeCmd(),
		c.sayCmd(),
		c.replCmd(),
		c.appointmentsCmd(),
	)
	return root
}

func (c *cli) recommendCmd() *cobra.Command {
	var q board.TechnicianQuery
	var service, slot string
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank technicians for a service, date and time slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			q.ServiceType = dispatch.ServiceType(service)
			q.TimeSlot = dispatch.TimeSlot(slot)
			recs, err := c.current().RecommendTechnicians(q)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(recs) == 0 {
				fmt.Fprintln(out, "No technicians are available for that slot.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TECHNICIAN\tSCORE\tREASON")
			for _, r := range recs {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", r.TechnicianName, r.Score, r.Reason)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&service, "service", "", "installation, maintenance, repair or inspection")
	cmd.Flags().StringVar(&q.Date, "date", "", "date as YYYY-MM-DD")
	cmd.Flags().StringVar(&slot, "slot", "morning", "morning, afternoon or evening")
	cmd.Flags().IntVar(&q.Limit, "limit", 3, "how many technicians to show (0 = all)")
	_ = cmd.MarkFlagRequired("service")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func (c *cli) datesCmd() *cobra.Command {
	var q board.DateQuery
	var service, priority string
	cmd := &cobra.Command{
		Use:   "dates",
		Short: "Score the coming week for a new appointment",
		RunE: func(cmd *cobra.Command, args []string) error {
			q.ServiceType = dispatch.ServiceType(service)
			q.Priority = dispatch.Priority(priority)
			scores, err := c.current().SuggestDates(q)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tDAY\tSCORE")
			for _, s := range scores {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", s.Date, s.Weekday, s.Score)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&service, "service", "", "installation, maintenance, repair or inspection")
	cmd.Flags().StringVar(&priority, "priority", "normal", "low, normal, high or emergency")
	cmd.Flags().IntVar(&q.Limit, "limit", 3, "how many dates to show (0 = all seven)")
	_ = cmd.MarkFlagRequired("service")
	return cmd
}

func (c *cli) analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "analyze",
		Short:   "Grade how efficient the current schedule is",
		Aliases: []string{"efficiency"},
		RunE: func(cmd *cobra.Command, args []string) error {
			eff := c.current().Analyze()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Efficiency score: %d\n", eff.Score)
			for _, s := range eff.Suggestions {
				fmt.Fprintf(out, "  - %s\n", s)
			}
			return nil
		},
	}
}

func (c *cli) sayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "say <instruction>",
		Short: "Apply one plain-English scheduling instruction",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, res, err := c.current().Interpret(strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
}

func (c *cli) replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Read instructions line by line until EOF or \"quit\"",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			b := c.current()
			scanner := bufio.NewScanner(cmd.InOrStdin())
			fmt.Fprint(out, "> ")
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				switch line {
				case "":
				case "quit", "exit":
					return nil
				default:
					_, res, err := b.Interpret(line)
					if err != nil {
						fmt.Fprintln(out, err)
					} else {
						fmt.Fprintln(out, res.Message)
					}
				}
				fmt.Fprint(out, "> ")
			}
			fmt.Fprintln(out)
			return scanner.Err()
		},
	}
}

func (c *cli) appointmentsCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:     "appointments",
		Short:   "List appointments on the board",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if date != "" && !dispatch.ValidDate(date) {
				return fmt.Errorf("date must be YYYY-MM-DD, got %q", date)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tSLOT\tCUSTOMER\tTECHNICIAN\tSERVICE\tSTATUS")
			for _, a := range c.current().Appointments(date) {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					a.ID, a.Date, a.TimeSlot, a.Customer.Name, a.Technician.Name, a.ServiceType, a.Status)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "only show this date (YYYY-MM-DD)")
	return cmd
}
