package main

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/fileserver/internal/client"
	"github.com/GriffinCanCode/fileserver/internal/infrastructure/config"
	"github.com/GriffinCanCode/fileserver/internal/infrastructure/logging"
	"github.com/GriffinCanCode/fileserver/internal/storage"
)

// CLI holds the backend selected by the global flags
type CLI struct {
	server     string
	home       string
	configPath string
	timeout    time.Duration
	verbose    bool

	backend backend
}

func newRootCmd() *cobra.Command {
	cli := &CLI{}

	rootCmd := &cobra.Command{
		Use:           "fsctl",
		Short:         "File server control CLI",
		Long:          "Manage files on a file server, or directly in a local home directory when --server is not given",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.connect()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cli.server, "server", os.Getenv("FSCTL_SERVER"), "File server URL (env FSCTL_SERVER)")
	flags.StringVar(&cli.home, "home", "", "Local home directory (overrides FILE_SERVER_HOME)")
	flags.StringVar(&cli.configPath, "config", "", "Path to a YAML config file for local mode")
	flags.DurationVar(&cli.timeout, "timeout", 5*time.Minute, "Request timeout in remote mode")
	flags.BoolVarP(&cli.verbose, "verbose", "v", false, "Log storage activity in local mode")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "mkdir [path]",
		Short: "Create a directory and any missing parents",
		Args:  cobra.ExactArgs(1),
		RunE:  cli.mkdir,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "ls [path]",
		Short: "List a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  cli.list,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "put [local-file] [remote-path]",
		Short: "Upload a file",
		Long:  "Upload a local file. Use - to read stdin. A remote path ending in / receives the local file name.",
		Args:  cobra.ExactArgs(2),
		RunE:  cli.put,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "get [remote-path] [local-file]",
		Short: "Download a file",
		Long:  "Download a file. Without a local file, or with -, the content is written to stdout.",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  cli.get,
	})

	rmCmd := &cobra.Command{
		Use:   "rm [path]",
		Short: "Delete a file or empty directory",
		Args:  cobra.ExactArgs(1),
		RunE:  cli.remove,
	}
	rmCmd.Flags().BoolP("recursive", "r", false, "Delete a directory and everything below it")
	rootCmd.AddCommand(rmCmd)

	return rootCmd
}

func (c *CLI) connect() error {
	if c.backend != nil {
		return nil
	}

	if c.server != "" {
		cfg := client.DefaultConfig(c.server)
		cfg.Timeout = c.timeout
		cl, err := client.New(cfg)
		if err != nil {
			return err
		}
		c.backend = cl
		return nil
	}

	cfg, err := config.LoadFile(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if c.home != "" {
		cfg.Storage.Home = c.home
	}

	logger := logging.NewNop()
	if c.verbose {
		logger = logging.NewFromLevel("debug", true)
	}

	svc, err := storage.New(cfg,
		storage.WithLogger(logger.Component("storage")),
		storage.WithMaxDepth(cfg.Storage.MaxDepth),
		storage.WithChunkSize(cfg.Storage.ChunkSize),
		storage.WithPermissions(cfg.Storage.DirPerm, cfg.Storage.FilePerm),
	)
	if err != nil {
		return err
	}
	c.backend = localBackend{svc: svc}
	return nil
}

func (c *CLI) mkdir(cmd *cobra.Command, args []string) error {
	if err := c.backend.CreateDirectory(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", args[0])
	return nil
}

func (c *CLI) list(cmd *cobra.Command, args []string) error {
	p := ""
	if len(args) == 1 {
		p = args[0]
	}

	list, err := c.backend.List(cmd.Context(), p)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, d := range list.Directories {
		fmt.Fprintf(w, "d\t-\t-\t%s/\n", d.Path)
	}
	for _, f := range list.Files {
		fmt.Fprintf(w, "-\t%d\t%s\t%s\n", f.Size, f.Modified.Local().Format(time.DateTime), f.Path)
	}
	return w.Flush()
}

func (c *CLI) put(cmd *cobra.Command, args []string) error {
	local, remote := args[0], args[1]

	in := cmd.InOrStdin()
	if local != "-" {
		f, err := os.Open(local)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f

		if remote == "" || strings.HasSuffix(remote, "/") {
			remote = path.Join(remote, filepath.Base(local))
		}
	}

	info, err := c.backend.Upload(cmd.Context(), remote, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s (%d bytes)\n", info.Path, info.Size)
	return nil
}

func (c *CLI) get(cmd *cobra.Command, args []string) error {
	remote := args[0]
	if len(args) == 1 || args[1] == "-" {
		_, err := c.backend.Download(cmd.Context(), remote, cmd.OutOrStdout())
		return err
	}

	local := args[1]
	tmp := local + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	n, err := c.backend.Download(cmd.Context(), remote, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, local); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "downloaded %s (%d bytes)\n", remote, n)
	return nil
}

func (c *CLI) remove(cmd *cobra.Command, args []string) error {
	recursive, err := cmd.Flags().GetBool("recursive")
	if err != nil {
		return err
	}
	if err := c.backend.Delete(cmd.Context(), args[0], recursive); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
	return nil
}

// exitCode maps storage error kinds to distinct process exit codes
func exitCode(err error) int {
	switch storage.KindOf(err) {
	case storage.KindPathViolation:
		return 3
	case storage.KindNotFound:
		return 4
	case storage.KindNotADirectory, storage.KindIsADirectory:
		return 5
	case storage.KindDirectoryNotEmpty:
		return 6
	default:
		return 1
	}
}
