package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/pcshop/internal/session"
	"github.com/Skotchmaster/pcshop/internal/users"
)

func authCommands(a *app) []*cobra.Command {
	var email, password, first, last string

	signup := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.connect(cmd.Context()); err != nil {
				return err
			}
			profile := session.Profile{}
			if first != "" {
				profile.FirstName = &first
			}
			if last != "" {
				profile.LastName = &last
			}
			s, err := a.client.SignUp(cmd.Context(), email, password, profile)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "signed up as %s\n", s.User.Email)
			return nil
		},
	}
	signup.Flags().StringVar(&email, "email", "", "account email")
	signup.Flags().StringVar(&password, "password", "", "account password")
	signup.Flags().StringVar(&first, "first-name", "", "first name")
	signup.Flags().StringVar(&last, "last-name", "", "last name")
	_ = signup.MarkFlagRequired("email")
	_ = signup.MarkFlagRequired("password")

	var loginEmail, loginPassword string
	login := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.connect(cmd.Context()); err != nil {
				return err
			}
			s, err := a.client.SignIn(cmd.Context(), loginEmail, loginPassword)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "signed in as %s until %s\n", s.User.Email, s.ExpiresAt.Format("2006-01-02 15:04"))
			return nil
		},
	}
	login.Flags().StringVar(&loginEmail, "email", "", "account email")
	login.Flags().StringVar(&loginPassword, "password", "", "account password")
	_ = login.MarkFlagRequired("email")
	_ = login.MarkFlagRequired("password")

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.connect(cmd.Context()); err != nil {
				return err
			}
			if err := a.client.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "signed out")
			return nil
		},
	}

	whoami := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.currentSession(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(s.User)
		},
	}

	return []*cobra.Command{signup, login, logout, whoami}
}

func profileCmd(a *app) *cobra.Command {
	var first, last string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update your first and last name",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.currentSession(cmd.Context())
			if err != nil {
				return err
			}
			in := users.ProfileInput{}
			if cmd.Flags().Changed("first-name") {
				in.FirstName = &first
			}
			if cmd.Flags().Changed("last-name") {
				in.LastName = &last
			}
			acc, err := a.users.UpdateProfile(cmd.Context(), s.User.ID, in)
			if err != nil {
				return err
			}
			return a.printJSON(acc)
		},
	}
	cmd.Flags().StringVar(&first, "first-name", "", "first name")
	cmd.Flags().StringVar(&last, "last-name", "", "last name")
	return cmd
}
