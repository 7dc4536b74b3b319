package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"browser-bridge/internal/di"
	"browser-bridge/internal/domain/entity"
	"browser-bridge/internal/infrastructure/env"
	"browser-bridge/internal/infrastructure/userinteraction"
	"browser-bridge/internal/usecase/research"

	"github.com/spf13/cobra"
)

// errReported marks failures the console already showed to the user.
var errReported = errors.New("reported")

type app struct {
	console   *userinteraction.Console
	container *di.Container

	mailboxDir string
	engine     string
	model      string
	logLevel   string
}

// newRootCmd returns the command tree and a cleanup that closes the session
// it opened, whatever the outcome of the run.
func newRootCmd(in io.Reader, out, errOut io.Writer) (*cobra.Command, func()) {
	a := &app{console: userinteraction.NewConsole(in, out, errOut)}

	root := &cobra.Command{
		Use:   "bridge [query...]",
		Short: "Drive the Zyron Firefox extension and research questions from the terminal",
		Long: "bridge queues commands for the Zyron Firefox extension through the shared mailbox files\n" +
			"and answers research questions from a search results page. Without arguments it asks\n" +
			"for a question on stdin.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			if query == "" {
				var err error
				query, err = a.console.AskQuery("What would you like to research?")
				if err != nil {
					return err
				}
			}
			return a.research(cmd, query)
		},
	}

	root.PersistentFlags().StringVar(&a.mailboxDir, "mailbox-dir", "", "directory of the mailbox files (env BRIDGE_MAILBOX_DIR)")
	root.PersistentFlags().StringVar(&a.engine, "engine", "", "headless engine: http or rod (env HEADLESS_ENGINE)")
	root.PersistentFlags().StringVar(&a.model, "model", "", "synthesis model (env MODEL_NAME)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetIn(in)

	root.AddCommand(
		a.researchCmd(),
		a.toolCmd(),
		a.toolsCmd(),
		a.queueCmd(),
	)
	return root, a.teardown
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	envService := env.NewEnvService()
	cfg := di.ConfigFromEnv(envService)

	if a.mailboxDir != "" {
		cfg.MailboxDir = a.mailboxDir
	}
	if a.engine != "" {
		cfg.HeadlessEngine = strings.ToLower(a.engine)
	}
	if a.model != "" {
		cfg.LLM.Model = a.model
		cfg.Ollama.Model = a.model
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	container, err := di.NewContainer(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	a.container = container
	envService.Report(container.Logger)
	return nil
}

func (a *app) teardown() {
	if a.container != nil {
		a.container.Close()
		a.container = nil
	}
}

func (a *app) researchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "research <query...>",
		Short: "Answer a question from a search results page",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.research(cmd, strings.Join(args, " "))
		},
	}
}

func (a *app) research(cmd *cobra.Command, query string) error {
	query = strings.TrimSpace(query)
	if query != "" {
		a.console.ShowResearchStart(query)
	}
	a.container.Logger.Info("Research requested", "query", query)

	report, err := a.container.Researcher.Research(cmd.Context(), query)
	a.console.ShowReport(report)
	if err != nil {
		a.container.Logger.Warn("Research did not produce an answer", "error", err)
		a.console.ShowAnswer(research.UserMessage(report, err), false)
		if errors.Is(err, entity.ErrEmptyQuery) {
			return nil
		}
		return errReported
	}

	a.console.ShowAnswer(report.Answer, true)
	return nil
}

func (a *app) toolCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tool <name> [json-arguments]",
		Short: "Run one bridge tool, e.g. tool browser_read '{\"tab_id\": 12}'",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := entity.ToolName(args[0])
			t, ok := a.container.Tools.Get(name)
			if !ok {
				return fmt.Errorf("unknown tool %q, run 'bridge tools' for the list", name)
			}

			arguments := "{}"
			if len(args) == 2 {
				arguments = args[1]
			}
			if !json.Valid([]byte(arguments)) {
				return fmt.Errorf("arguments for %s are not valid JSON", name)
			}

			a.console.ShowToolStart(name.String(), arguments)
			out, err := t.Execute(cmd.Context(), arguments)
			if err != nil {
				a.container.Logger.Error("Tool failed", "tool", name, "error", err)
				a.console.ShowToolResult(name.String(), err.Error(), true)
				return errReported
			}
			a.console.ShowToolResult(name.String(), out, false)
			return nil
		},
	}
}

func (a *app) toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the available tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.console.ShowTools(a.container.Tools.Definitions())
			return nil
		},
	}
}

func (a *app) queueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "Show commands waiting for the extension",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pending, err := a.container.Commands.Pending()
			if err != nil {
				return err
			}
			a.console.ShowQueue(pending)
			return nil
		},
	}
}
