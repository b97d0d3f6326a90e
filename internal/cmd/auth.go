package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/salmonumbrella/tiptap-cli/internal/api"
	"github.com/salmonumbrella/tiptap-cli/internal/logging"
	"github.com/salmonumbrella/tiptap-cli/internal/output"
	"github.com/salmonumbrella/tiptap-cli/internal/secrets"
)

// defaultProfile is the profile name used for credentials
const defaultProfile = "default"

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication credentials",
	Long: `Manage the project URL and API key used to read and insert posts.

Credentials are stored securely in your system keychain (macOS Keychain,
Windows Credential Manager, or encrypted file on Linux).

Examples:
  tiptap auth login --base-url https://abc.supabase.co --api-key KEY
  tiptap auth login  # Interactive prompt for credentials
  tiptap auth status --verify
  tiptap auth logout`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store API credentials",
	Long: `Store the project URL and API key in the system keychain.

Missing values are taken from SUPABASE_URL / SUPABASE_SERVICE_ROLE_KEY,
then prompted for. The key is checked with a minimal read before it is
stored; an invalid key is rejected.

Examples:
  tiptap auth login
  tiptap auth login --base-url https://abc.supabase.co --api-key KEY`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear stored credentials",
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current authentication status",
	Long: `Display the stored credentials (key masked).

Examples:
  tiptap auth status
  tiptap auth status --verify  # Also verify credentials with the API`,
	RunE: runStatus,
}

var verifyAuth bool

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)

	rootCmd.AddCommand(authCmd)

	statusCmd.Flags().BoolVar(&verifyAuth, "verify", false, "Verify credentials with API")
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := stdoutFromContext(ctx)
	structured := structuredOutputRequested()
	progress := !structured && !output.QuietFromContext(ctx)

	store, err := openSecretsStore()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = firstEnv(envSupabaseURL, envPublicSupabaseURL)
	}
	if url == "" {
		if url, err = promptString(ctx, "Project URL: "); err != nil {
			return fmt.Errorf("failed to read project URL: %w", err)
		}
	}

	key := strings.TrimSpace(apiKey)
	if key == "" {
		key = firstEnv(envServiceRoleKey)
	}
	if key == "" {
		if key, err = promptSecret(ctx, "API key: "); err != nil {
			return fmt.Errorf("failed to read API key: %w", err)
		}
	}

	cfg, err := loadConfigFromFlag()
	if err != nil {
		return formatConfigLoadError(err)
	}
	testClient, err := newClientFromCredsFunc(url, key, clientOptionsFromConfig(cfg, logging.FromContext(ctx))...)
	if err != nil {
		return err
	}

	if progress {
		fmt.Fprintln(out, "Verifying credentials...")
	}
	if err := testClient.Ping(ctx); err != nil {
		var authErr api.AuthenticationError
		if errors.As(err, &authErr) {
			return fmt.Errorf("authentication failed: %w", err)
		}
		// Network trouble or a missing table should not block storing a valid key.
		if !structured {
			fmt.Fprintf(out, "Warning: Could not verify credentials: %v\n", err)
			fmt.Fprintln(out, "Proceeding with credential storage...")
		}
	} else if progress {
		fmt.Fprintln(out, "Credentials verified successfully!")
	}

	cred := secrets.Credential{
		APIKey:    key,
		BaseURL:   strings.TrimRight(url, "/"),
		CreatedAt: nowFunc().UTC(),
	}
	if err := store.SetCredential(defaultProfile, cred); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}
	if err := store.SetDefaultAccount(defaultProfile); err != nil {
		return fmt.Errorf("failed to set default account: %w", err)
	}

	if structured {
		return printStructured(map[string]interface{}{
			"status":   "authenticated",
			"profile":  defaultProfile,
			"base_url": cred.BaseURL,
		})
	}

	fmt.Fprintf(out, "\nAuthenticated successfully!\n")
	fmt.Fprintf(out, "Project: %s\n", cred.BaseURL)
	fmt.Fprintln(out, "\nYou can now run tiptap post commands without --base-url or --api-key.")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := stdoutFromContext(ctx)

	if !output.YesFromContext(ctx) && isTerminal(stdinFromContext(ctx)) {
		answer, err := promptString(ctx, "Remove stored credentials? [y/N]: ")
		if err != nil {
			return err
		}
		if a := strings.ToLower(answer); a != "y" && a != "yes" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	store, err := openSecretsStore()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	if err := store.DeleteCredential(defaultProfile); err != nil && !errors.Is(err, secrets.ErrNotFound) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}

	if structuredOutputRequested() {
		return printStructured(map[string]interface{}{
			"status": "logged_out",
		})
	}

	fmt.Fprintln(out, "Logged out successfully.")
	fmt.Fprintln(out, "Credentials have been removed from the system keychain.")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := stdoutFromContext(ctx)
	structured := structuredOutputRequested()

	store, err := openSecretsStore()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	cred, err := store.GetCredential(defaultProfile)
	if err != nil {
		if !errors.Is(err, secrets.ErrNotFound) {
			return err
		}
		if structured {
			return printStructured(map[string]interface{}{
				"authenticated": false,
			})
		}
		fmt.Fprintln(out, "Status: Not authenticated")
		fmt.Fprintln(out, "\nRun 'tiptap auth login' to authenticate.")
		return nil
	}

	var verified *bool
	var verifyError string
	if verifyAuth {
		ok, msg := verifyCredential(ctx, cred)
		verified = &ok
		verifyError = msg
	}

	if structured {
		result := map[string]interface{}{
			"authenticated": true,
			"profile":       cred.Profile,
			"base_url":      cred.BaseURL,
			"key_preview":   maskToken(cred.APIKey),
		}
		if !cred.CreatedAt.IsZero() {
			result["authenticated_at"] = cred.CreatedAt.Format(time.RFC3339)
		}
		if verifyAuth {
			result["verified"] = verified
			if verifyError != "" {
				result["verify_error"] = verifyError
			}
		}
		return printStructured(result)
	}

	fmt.Fprintln(out, "Status: Authenticated")
	fmt.Fprintf(out, "Profile: %s\n", cred.Profile)
	if !cred.CreatedAt.IsZero() {
		fmt.Fprintf(out, "Authenticated at: %s\n", cred.CreatedAt.Format(time.RFC3339))
	}
	if cred.BaseURL != "" {
		fmt.Fprintf(out, "Project: %s\n", cred.BaseURL)
	} else {
		fmt.Fprintln(out, "Project: Not configured")
	}
	fmt.Fprintf(out, "Key: %s\n", maskToken(cred.APIKey))

	if verified != nil {
		if *verified {
			fmt.Fprintln(out, "Verification: OK - Credentials are valid")
		} else {
			fmt.Fprintf(out, "Verification: FAILED - %s\n", verifyError)
		}
	}
	return nil
}

func verifyCredential(ctx context.Context, cred secrets.Credential) (bool, string) {
	cfg, err := loadConfigFromFlag()
	if err != nil {
		return false, formatConfigLoadError(err).Error()
	}
	testClient, err := newClientFromCredsFunc(cred.BaseURL, cred.APIKey, clientOptionsFromConfig(cfg, logging.FromContext(ctx))...)
	if err != nil {
		return false, err.Error()
	}
	if err := testClient.Ping(ctx); err != nil {
		var authErr api.AuthenticationError
		if errors.As(err, &authErr) {
			return false, "invalid or expired key"
		}
		return false, err.Error()
	}
	return true, ""
}

// promptString prompts for a string input
func promptString(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(stderrFromContext(ctx), prompt)
	return readLine(stdinFromContext(ctx))
}

// readLine reads one line without buffering past it, so consecutive
// prompts can share a piped stdin.
func readLine(r io.Reader) (string, error) {
	var sb strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				break
			}
			sb.WriteByte(buf[0])
		}
		if err != nil {
			if errors.Is(err, io.EOF) && sb.Len() > 0 {
				break
			}
			return "", err
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

// promptSecret prompts for a secret input (no echo)
func promptSecret(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(stderrFromContext(ctx), prompt)

	in := stdinFromContext(ctx)
	if file, ok := in.(*os.File); ok {
		if term.IsTerminal(int(file.Fd())) {
			password, err := term.ReadPassword(int(file.Fd()))
			fmt.Fprintln(stderrFromContext(ctx))
			if err != nil {
				return "", err
			}
			return strings.TrimSpace(string(password)), nil
		}
	}

	// Fall back to regular input for non-terminal (e.g., piped input)
	return promptString(ctx, "")
}

// maskToken masks a key for display, showing only first and last 4 characters
func maskToken(token string) string {
	if len(token) <= 12 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
