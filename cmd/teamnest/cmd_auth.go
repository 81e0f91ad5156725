package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tyemirov/teamnest/internal/apikit"
	"github.com/tyemirov/teamnest/internal/session"
)

func readLineIfEmpty(command *cobra.Command, value string, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprint(command.OutOrStdout(), prompt)
	reader := bufio.NewReader(command.InOrStdin())
	line, readErr := reader.ReadString('\n')
	if readErr != nil && line == "" {
		return "", fmt.Errorf("cli.read_input: %w", readErr)
	}
	return strings.TrimSpace(line), nil
}

func printSignedIn(command *cobra.Command, user *session.UserSummary) {
	fmt.Fprintf(command.OutOrStdout(), "Signed in as %s (%s)\n", user.Email, user.Role)
	if user.MustChangePassword {
		fmt.Fprintln(command.OutOrStdout(), "Your password must be changed. Run 'teamnest change-password'.")
	}
}

func newLoginCommand() *cobra.Command {
	var email string
	var password string

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			loginEmail, emailErr := readLineIfEmpty(command, email, "Email: ")
			if emailErr != nil {
				return emailErr
			}
			loginPassword, passwordErr := readLineIfEmpty(command, password, "Password: ")
			if passwordErr != nil {
				return passwordErr
			}
			user, loginErr := app.client.Auth.Login(command.Context(), loginEmail, loginPassword)
			if loginErr != nil {
				return loginErr
			}
			printSignedIn(command, user)
			return nil
		},
	}
	loginCmd.Flags().StringVar(&email, "email", "", "Account email")
	loginCmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")

	loginCmd.AddCommand(&cobra.Command{
		Use:   "google",
		Short: "Sign in with Google in the browser",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			googleClientID := viper.GetString("google_client_id")
			if googleClientID == "" {
				return configError(configCodeMissingGoogleClientID, "google_client_id must be provided")
			}
			credential, promptErr := promptGoogleCredential(command.Context(), googleClientID, app.logger)
			if promptErr != nil {
				return promptErr
			}
			user, exchangeErr := app.client.Auth.LoginWithGoogle(command.Context(), credential)
			if exchangeErr != nil {
				return exchangeErr
			}
			printSignedIn(command, user)
			return nil
		},
	})

	return loginCmd
}

func newRegisterCommand() *cobra.Command {
	var request apikit.RegisterRequest

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Create a parent account",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			user, registerErr := app.client.Auth.Register(command.Context(), request)
			if registerErr != nil {
				return registerErr
			}
			printSignedIn(command, user)
			return nil
		},
	}
	registerCmd.Flags().StringVar(&request.Email, "email", "", "Account email")
	registerCmd.Flags().StringVar(&request.Password, "password", "", "Account password")
	registerCmd.Flags().StringVar(&request.FirstName, "first-name", "", "First name")
	registerCmd.Flags().StringVar(&request.LastName, "last-name", "", "Last name")
	registerCmd.Flags().StringVar(&request.Phone, "phone", "", "Phone number")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("password")

	return registerCmd
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the stored session",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			if logoutErr := app.client.Auth.Logout(command.Context()); logoutErr != nil {
				return logoutErr
			}
			fmt.Fprintln(command.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newWhoAmICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			profile, profileErr := app.client.Users.Me(command.Context())
			if profileErr != nil {
				return profileErr
			}
			fmt.Fprintf(command.OutOrStdout(), "%s %s <%s> role=%s\n",
				profile.FirstName, profile.LastName, profile.Email, profile.Role)
			return nil
		},
	}
}

func newChangePasswordCommand() *cobra.Command {
	var currentPassword string
	var newPassword string

	changeCmd := &cobra.Command{
		Use:   "change-password",
		Short: "Replace the account password",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			current, currentErr := readLineIfEmpty(command, currentPassword, "Current password: ")
			if currentErr != nil {
				return currentErr
			}
			replacement, replacementErr := readLineIfEmpty(command, newPassword, "New password: ")
			if replacementErr != nil {
				return replacementErr
			}
			if changeErr := app.client.Auth.ChangePassword(command.Context(), current, replacement); changeErr != nil {
				return changeErr
			}
			fmt.Fprintln(command.OutOrStdout(), "Password changed.")
			return nil
		},
	}
	changeCmd.Flags().StringVar(&currentPassword, "current", "", "Current password (prompted when omitted)")
	changeCmd.Flags().StringVar(&newPassword, "new", "", "New password (prompted when omitted)")

	return changeCmd
}
