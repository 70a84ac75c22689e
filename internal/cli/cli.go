package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vk/typesafety/criteria"
	"github.com/vk/typesafety/internal/app"
)

// Exit codes returned through ExitError.
const (
	CodeMismatch = 1
	CodeInvalid  = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// exitError maps err to an ExitError by its criteria error kind.
func exitError(err error) error {
	if err == nil {
		return nil
	}
	code := CodeMismatch
	if errors.Is(err, criteria.ErrInvalidCriteria) {
		code = CodeInvalid
	}
	return &ExitError{Code: code, Message: err.Error()}
}

// NewRootCommand creates the typesafety command. Results go to outW, logs
// and errors to errW.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("TYPESAFETY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "typesafety",
		Short: "Check values and contracts against type criteria",
		Long: `typesafety matches values against type criteria and checks contract
files declaring the expected signatures of functions and methods.

Criteria syntax:
  int                     exact type
  [int, string, null]     any of the members
  optional(int)           nil or int
  oneof(int, string)      int or string
  callable([int], bool)   function taking int and returning bool
  callable(ellipsis, any) any function
  schema(list(string))    value conforming to a cty type`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)

	flags := root.PersistentFlags()
	flags.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	if err := v.BindPFlags(flags); err != nil {
		panic(fmt.Sprintf("binding flags: %v", err))
	}

	newApp := func(cmd *cobra.Command) (*app.App, error) {
		cfg, err := app.NewConfig(app.Config{
			LogLevel:  strings.ToLower(v.GetString("log-level")),
			LogFormat: strings.ToLower(v.GetString("log-format")),
		})
		if err != nil {
			return nil, &ExitError{Code: CodeInvalid, Message: err.Error()}
		}
		return app.NewApp(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, nil), nil
	}

	root.AddCommand(
		newCheckCommand(newApp),
		newMatchCommand(newApp),
		newValidCommand(newApp),
	)
	return root
}

type appFactory func(cmd *cobra.Command) (*app.App, error)

func newCheckCommand(newApp appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "check PATH...",
		Short: "Load contract files and report their signatures",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if _, err := a.Check(cmd.Context(), args...); err != nil {
				return &ExitError{Code: CodeInvalid, Message: err.Error()}
			}
			return nil
		},
	}
}

func newMatchCommand(newApp appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "match CRITERIA VALUE",
		Short: "Match an HCL literal against a criteria",
		Long: `Match parses VALUE as an HCL literal and matches it against CRITERIA.
The value is printed when it conforms. The exit status is 1 on a type
mismatch and 2 when the criteria is invalid.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			_, err = a.Match(cmd.Context(), args[0], args[1])
			return exitError(err)
		},
	}
}

func newValidCommand(newApp appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "valid CRITERIA",
		Short: "Report whether a criteria is well formed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if !a.Valid(cmd.Context(), args[0]) {
				return &ExitError{Code: CodeInvalid, Message: fmt.Sprintf("criteria %q is invalid", args[0])}
			}
			return nil
		},
	}
}

// Run executes the command tree with args.
func Run(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand(outW, errW)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr
		}
		return &ExitError{Code: CodeInvalid, Message: err.Error()}
	}
	return nil
}
