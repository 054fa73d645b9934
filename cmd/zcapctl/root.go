// Command zcapctl is a scriptable demonstration harness for the
// capability engine: one subcommand per lifecycle step (issue, delegate,
// invoke, verify, revoke), operating against a JSON state file so a
// shell script or CI job can drive the full story across process
// invocations, mirroring the same issue -> delegate -> invoke -> verify
// -> revoke -> re-invoke narrative as the reference examples this engine
// was built from.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.zcap.dev/capability/cli"
	cliViper "go.zcap.dev/capability/cli/viper"
	"go.zcap.dev/capability/log"
)

const appName = "zcapctl"

// params are the persistent, root-level CLI parameters every subcommand
// can read through viper once bound.
var params = []cli.Param{
	{
		Name:      "state",
		Usage:     "path to the JSON state file tracking registered keys and capabilities",
		FlagKey:   "state",
		ByDefault: "zcap-state.json",
		Short:     "s",
	},
	{
		Name:      "log-level",
		Usage:     "minimum log level to report: debug, info, warning, error",
		FlagKey:   "log.level",
		ByDefault: "info",
	},
}

var cfg = cliViper.ConfigHandler(appName, nil)

func newLogger() log.Logger {
	l := log.WithZero(log.ZeroOptions{PrettyPrint: true})
	switch cfg.Internals().GetString("log.level") {
	case "debug":
		l.SetLevel(log.Debug)
	case "warning":
		l.SetLevel(log.Warning)
	case "error":
		l.SetLevel(log.Error)
	default:
		l.SetLevel(log.Info)
	}
	return l
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Issue, delegate, invoke and verify ZCAP-LD style capability tokens",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	if err := cli.SetupCommandParams(root, params); err != nil {
		panic(err)
	}
	if err := cliViper.BindFlags(root, params, cfg.Internals()); err != nil {
		panic(err)
	}
	// Promote the root's local flags to persistent so every subcommand
	// inherits --state and --log-level.
	root.PersistentFlags().AddFlagSet(root.Flags())
	cfg.Internals().AutomaticEnv()

	root.AddCommand(
		keygenCommand(),
		issueCommand(),
		delegateCommand(),
		invokeCommand(),
		verifyCommand(),
		revokeCommand(),
	)
	return root
}

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
