package commands

import (
	"megashop/cmd/megashopctl/output"
	"megashop/internal/transport"

	"github.com/spf13/cobra"
)

var (
	// Account flags
	email       string
	password    string
	fullName    string
	phone       string
	newPassword string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and save the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}

		resp, err := s.client.Register(commandContext(cmd), transport.RegisterRequest{
			Email:    email,
			Password: password,
			FullName: fullName,
			Phone:    phone,
		})
		if err != nil {
			return err
		}
		if err := s.tokens.Save(resp.Token); err != nil {
			return err
		}

		if jsonOutput {
			return output.JSON(resp.User)
		}
		output.Success("Registered %s", resp.User.Email)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and save the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}

		resp, err := s.client.Login(commandContext(cmd), email, password)
		if err != nil {
			return err
		}
		if err := s.tokens.Save(resp.Token); err != nil {
			return err
		}

		if jsonOutput {
			return output.JSON(resp.User)
		}
		output.Success("Logged in as %s", resp.User.Email)
		output.Muted("Session saved to %s", s.tokens.Path())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		if err := s.tokens.Clear(); err != nil {
			return err
		}
		output.Success("Logged out")
		return nil
	},
}

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the logged in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		if err := s.requireLogin(); err != nil {
			return err
		}

		profile, err := s.client.Me(commandContext(cmd))
		if err != nil {
			return err
		}

		if jsonOutput {
			return output.JSON(profile)
		}
		output.Header("%s", profile.FullName)
		output.Info("Email: %s", profile.Email)
		if profile.Phone != "" {
			output.Info("Phone: %s", profile.Phone)
		}
		output.Muted("Member since %s", profile.CreatedAt.Format("2 Jan 2006"))
		return nil
	},
}

var changePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Change the account password",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		if err := s.requireLogin(); err != nil {
			return err
		}

		if err := s.client.ChangePassword(commandContext(cmd), password, newPassword); err != nil {
			return err
		}
		output.Success("Password changed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, meCmd, changePasswordCmd)

	for _, cmd := range []*cobra.Command{registerCmd, loginCmd} {
		cmd.Flags().StringVar(&email, "email", "", "Account email")
		cmd.Flags().StringVar(&password, "password", "", "Account password")
		cmd.MarkFlagRequired("email")
		cmd.MarkFlagRequired("password")
	}
	registerCmd.Flags().StringVar(&fullName, "name", "", "Full name")
	registerCmd.Flags().StringVar(&phone, "phone", "", "Phone number")
	registerCmd.MarkFlagRequired("name")

	changePasswordCmd.Flags().StringVar(&password, "current", "", "Current password")
	changePasswordCmd.Flags().StringVar(&newPassword, "new", "", "New password")
	changePasswordCmd.MarkFlagRequired("current")
	changePasswordCmd.MarkFlagRequired("new")
}
