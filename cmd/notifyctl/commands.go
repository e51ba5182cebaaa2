package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"notify-gateway/internal/client"
	"notify-gateway/internal/client/form"
)

const defaultServer = "http://localhost:8080"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "notifyctl",
		Short:         "Command-line client for the notification gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	server := os.Getenv("NOTIFY_SERVER")
	if server == "" {
		server = defaultServer
	}
	cmd.PersistentFlags().String("server", server, "Gateway base URL (env NOTIFY_SERVER)")
	cmd.PersistentFlags().Duration("timeout", client.DefaultTimeout, "Per-request timeout")

	cmd.AddCommand(supervisorsCmd(), submitCmd())
	return cmd
}

func apiClient(cmd *cobra.Command) (*client.Client, error) {
	server, err := cmd.Flags().GetString("server")
	if err != nil {
		return nil, err
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}
	return client.New(server, client.WithTimeout(timeout)), nil
}

func supervisorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "supervisors",
		Short: "List the supervisor directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := apiClient(cmd)
			if err != nil {
				return err
			}
			supervisors, err := c.Supervisors(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPHONE\tIDENTIFICATION")
			for _, s := range supervisors {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Phone, s.IdentificationNumber)
			}
			return tw.Flush()
		},
	}
}

func submitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a notification request",
		Long: "Loads the directory, fills the notification form from flags, validates it locally " +
			"and submits it. --email and --phone opt into those channels.",
		Args: cobra.NoArgs,
		RunE: runSubmit,
	}
	cmd.Flags().String("first-name", "", "Requester first name")
	cmd.Flags().String("last-name", "", "Requester last name")
	cmd.Flags().String("email", "", "Notify by email at this address")
	cmd.Flags().String("phone", "", "Notify by phone at this number")
	cmd.Flags().String("supervisor", "", "Supervisor id, as listed by notifyctl supervisors")
	cmd.Flags().BoolP("verbose", "v", false, "Print form state transitions")
	_ = cmd.MarkFlagRequired("supervisor")
	return cmd
}

func runSubmit(cmd *cobra.Command, _ []string) error {
	c, err := apiClient(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	firstName, _ := flags.GetString("first-name")
	lastName, _ := flags.GetString("last-name")
	email, _ := flags.GetString("email")
	phone, _ := flags.GetString("phone")
	supervisorID, _ := flags.GetString("supervisor")
	verbose, _ := flags.GetBool("verbose")

	supervisors, err := c.Supervisors(cmd.Context())
	if err != nil {
		return fmt.Errorf("load directory: %w", err)
	}

	f := form.New(c)
	defer f.Close()
	if verbose {
		f.OnTransition(func(t form.Transition) {
			fmt.Fprintf(cmd.ErrOrStderr(), "form: %s -> %s\n", t.From, t.To)
		})
	}
	f.SetDirectory(supervisors)

	edits := []error{
		f.SetField(form.FirstName, firstName),
		f.SetField(form.LastName, lastName),
		f.SetField(form.Email, email),
		f.SetField(form.Phone, phone),
		f.ToggleChannel(form.EmailChannel, flags.Changed("email")),
		f.ToggleChannel(form.PhoneChannel, flags.Changed("phone")),
	}
	for _, err := range edits {
		if err != nil {
			return err
		}
	}
	if err := f.SelectSupervisor(supervisorID); err != nil {
		return fmt.Errorf("supervisor %q: %w", supervisorID, err)
	}

	if err := f.Submit(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), f.View().Message)
	return nil
}
