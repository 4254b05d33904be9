package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tournament-platform/services"
)

var registerCmd = &cobra.Command{
	Use:   "register <tournament-id>",
	Args:  cobra.ExactArgs(1),
	Short: "Register for a tournament",
}

func init() {
	p := registerCmd.Flags()
	var req services.RegisterRequest
	var members []string
	p.StringVarP(&req.TeamName, "team", "t", "", "team name")
	p.StringSliceVarP(&members, "member", "m", nil, "team member name (repeat up to 5 times, captain first)")
	p.StringVar(&req.Substitute1, "sub1", "", "first substitute")
	p.StringVar(&req.Substitute2, "sub2", "", "second substitute")
	p.StringVar(&req.TeamEmail, "email", "", "team contact email")
	p.StringVar(&req.WhatsAppNumber, "whatsapp", "", "team whatsapp number")
	p.StringVar(&req.PaymentMethod, "payment", "", "payment method (transfer, ewallet, cash, free)")

	registerCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(members) > 5 {
			return fmt.Errorf("at most 5 members, got %d", len(members))
		}
		slots := []*string{&req.Member1, &req.Member2, &req.Member3, &req.Member4, &req.Member5}
		for i, m := range members {
			*slots[i] = m
		}

		c, store, err := openClient()
		if err != nil {
			return err
		}
		reg, err := c.Register(cmd.Context(), args[0], req)
		if err != nil {
			if c.Session().Token == "" {
				_ = store.Save(c.Session())
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registered: %s (status %s)\n", reg.ID, reg.Status)
		return nil
	}
}

var myRegistrationsCmd = &cobra.Command{
	Use:   "my-registrations",
	Args:  cobra.ExactArgs(0),
	Short: "List your registrations",
}

func init() {
	p := myRegistrationsCmd.Flags()
	status := p.String("status", "", "status filter")
	var page services.PageRequest
	p.IntVar(&page.Page, "page", 1, "page number")
	p.IntVar(&page.Limit, "limit", 10, "items per page")

	myRegistrationsCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		c, _, err := openClient()
		if err != nil {
			return err
		}
		out, err := c.MyRegistrations(cmd.Context(), *status, page)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTOURNAMENT\tTEAM\tSTATUS\tPAID\tREGISTERED")
		for _, r := range out.Registrations {
			title := r.TournamentID
			if r.Tournament != nil {
				title = r.Tournament.Title
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\n",
				r.ID, title, r.TeamName, r.Status, r.IsPaid, r.CreatedAt.Local().Format(timeLayout))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		pg := out.Pagination
		fmt.Fprintf(cmd.OutOrStdout(), "\npage %d of %d (%d registrations)\n", pg.CurrentPage, pg.TotalPages, pg.TotalItems)
		return nil
	}
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <registration-id>",
	Args:  cobra.ExactArgs(1),
	Short: "Cancel one of your registrations",
}

func init() {
	notes := cancelCmd.Flags().String("notes", "", "reason shown to the host")

	cancelCmd.RunE = func(cmd *cobra.Command, args []string) error {
		c, _, err := openClient()
		if err != nil {
			return err
		}
		reg, err := c.CancelRegistration(cmd.Context(), args[0], *notes)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registration %s is now %s\n", reg.ID, reg.Status)
		return nil
	}
}
