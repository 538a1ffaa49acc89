package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"hostnav/internal/bootstrap"
	connectdto "hostnav/internal/modules/connect/dto"
	"hostnav/internal/platform/config"
	treeview "hostnav/internal/ui/views/tree"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	dataDir    string
	configPath string
	server     string
	source     string
	fixture    string
	async      bool
	debug      bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "hostnav",
		Short:         "Bastion host navigator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&flags.dataDir, "data", config.DefaultDataDir, "data directory (cache, history, plugins, logs)")
	pf.StringVar(&flags.configPath, "config", "", "config file (default <data>/config.yaml)")
	pf.StringVar(&flags.server, "server", "", "bastion API base URL")
	pf.StringVar(&flags.source, "source", "", "node source: api|file")
	pf.StringVar(&flags.fixture, "fixture", "", "JSON fixture used by --source file")
	pf.BoolVar(&flags.async, "async", false, "load the hosts tree level by level")
	pf.BoolVar(&flags.debug, "debug", false, "debug logging")

	root.AddCommand(newTUICmd(root, flags))
	root.AddCommand(newTreeCmd(root, flags))
	root.AddCommand(newSearchCmd(root, flags))
	root.AddCommand(newConnectCmd(root, flags))
	root.AddCommand(newPluginCmd(root, flags))
	root.AddCommand(newHistoryCmd(root, flags))
	root.AddCommand(newCacheCmd(root, flags))
	return root
}

func loadApp(root *cobra.Command, flags *globalFlags) (*bootstrap.App, error) {
	cfg, err := config.Load(flags.dataDir, flags.configPath)
	if err != nil {
		return nil, err
	}
	pf := root.PersistentFlags()
	var o config.Overrides
	if pf.Changed("server") {
		o.Server = &flags.server
	}
	if pf.Changed("source") {
		o.Source = &flags.source
	}
	if pf.Changed("fixture") {
		o.Fixture = &flags.fixture
	}
	if pf.Changed("async") {
		o.Async = &flags.async
	}
	if pf.Changed("debug") {
		o.Debug = &flags.debug
	}
	cfg.Apply(o)
	return bootstrap.New(cfg)
}

func newTUICmd(root *cobra.Command, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the hostnav terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := loadApp(root, flags)
			if err != nil {
				return err
			}
			defer app.Close()
			return bootstrap.RunTUI(app)
		},
	}
}

func newTreeCmd(root *cobra.Command, flags *globalFlags) *cobra.Command {
	var kind, filter string
	var refresh bool
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the hosts or remote-apps tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(root, flags)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.TreeCLI.Show(context.Background(), kind, filter, refresh)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(out.Rows) == 0 {
				_, _ = fmt.Fprintln(w, "no nodes")
				return nil
			}
			for _, row := range out.Rows {
				label := row.Node.Title
				if label == "" {
					label = row.Node.Name
				}
				_, _ = fmt.Fprintf(w, "%s%s", treeview.Prefix(row), label)
				if !row.Node.IsParent {
					_, _ = fmt.Fprintf(w, "\t%s", row.Node.ID)
				}
				_, _ = fmt.Fprintln(w)
			}
			_, _ = fmt.Fprintf(w, "%d of %d nodes shown (%s)\n", len(out.Rows), out.Total, out.Mode)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "hosts", "tree kind: hosts|apps")
	cmd.Flags().StringVar(&filter, "filter", "", "keyword filter")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the local cache")
	return cmd
}

func newSearchCmd(root *cobra.Command, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search granted assets on the server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(root, flags)
			if err != nil {
				return err
			}
			defer app.Close()
			nodes, err := app.TreeCLI.Search(context.Background(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if len(nodes) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no matches")
				return nil
			}
			for _, n := range nodes {
				if n.IsParent {
					continue
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", n.ID, n.Title, n.IP, strings.Join(n.Protocols, ","))
			}
			return nil
		},
	}
}

func newConnectCmd(root *cobra.Command, flags *globalFlags) *cobra.Command {
	var nodeID, kind string
	var sftp, dryRun bool
	cmd := &cobra.Command{
		Use:   "connect --id <id>",
		Short: "Open an ssh or sftp session to a granted asset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(nodeID) == "" {
				return fmt.Errorf("--id is required")
			}
			app, err := loadApp(root, flags)
			if err != nil {
				return err
			}
			defer app.Close()
			ctx := context.Background()
			node, err := app.TreeCLI.Get(ctx, kind, nodeID)
			if err != nil {
				return err
			}
			mode := treeview.ModeAsset
			if sftp {
				mode = treeview.ModeSFTP
			}
			plan, err := app.ConnectCLI.Connect(ctx, connectdto.ConnectInput{Node: node, Mode: mode})
			if err != nil {
				return err
			}
			if dryRun {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s via %s: %s\n", plan.Title, plan.Connector, strings.Join(plan.Argv, " "))
				return nil
			}
			return runSessionPlan(plan)
		},
	}
	cmd.Flags().StringVar(&nodeID, "id", "", "node id")
	cmd.Flags().StringVar(&kind, "kind", "hosts", "tree kind: hosts|apps")
	cmd.Flags().BoolVar(&sftp, "sftp", false, "open sftp instead of a terminal")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the session command without running it")
	return cmd
}

func runSessionPlan(plan connectdto.SessionPlanOutput) error {
	if len(plan.Argv) == 0 {
		return fmt.Errorf("session plan has empty argv")
	}
	cmd := exec.Command(plan.Argv[0], plan.Argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if plan.Cwd != "" {
		cmd.Dir = plan.Cwd
	}
	env := os.Environ()
	for key, value := range plan.Env {
		env = append(env, key+"="+value)
	}
	cmd.Env = env
	return cmd.Run()
}

func newPluginCmd(root *cobra.Command, flags *globalFlags) *cobra.Command {
	plugin := &cobra.Command{Use: "plugin", Short: "Connector plugin operations"}
	plugin.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List connector manifests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(root, flags)
			if err != nil {
				return err
			}
			defer app.Close()
			plugins, err := app.ConnectCLI.List(context.Background())
			if err != nil {
				return err
			}
			if len(plugins) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins configured")
				return nil
			}
			for _, p := range plugins {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s@%s enabled=%t binary=%s capabilities=%s\n",
					p.Name, p.Version, p.Enabled, p.Binary, strings.Join(p.Capabilities, ","))
			}
			return nil
		},
	})

	plugin.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Validate plugin checksums and lifecycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(root, flags)
			if err != nil {
				return err
			}
			defer app.Close()
			results, err := app.ConnectCLI.Doctor(context.Background())
			if err != nil {
				return err
			}
			if len(results) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins configured")
				return nil
			}
			for _, r := range results {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s checksum=%t binary=%t lifecycle=%t", r.Name, r.ChecksumValid, r.BinaryReachable, r.LifecycleOK)
				if r.Error != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%q", r.Error)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	})
	return plugin
}

func newHistoryCmd(root *cobra.Command, flags *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent connections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(root, flags)
			if err != nil {
				return err
			}
			defer app.Close()
			items, err := app.HistoryCLI.Recent(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no connections")
				return nil
			}
			for _, c := range items {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s\n",
					c.StartedAt.Local().Format("2006-01-02 15:04:05"), c.NodeID, c.Title, c.Mode, c.Connector)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries")
	return cmd
}

func newCacheCmd(root *cobra.Command, flags *globalFlags) *cobra.Command {
	cache := &cobra.Command{Use: "cache", Short: "Local tree cache"}
	cache.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop cached trees",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(root, flags)
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.TreeCLI.ClearCache(context.Background()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
			return nil
		},
	})
	return cache
}
