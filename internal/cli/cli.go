// Package cli provides the command-line interface with injectable io.Writer for testing.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"

	"github.com/mcdonaldj/rarlens/internal/adapters/execproc"
	"github.com/mcdonaldj/rarlens/internal/compare"
	"github.com/mcdonaldj/rarlens/internal/config"
	"github.com/mcdonaldj/rarlens/internal/driver"
	"github.com/mcdonaldj/rarlens/internal/rar"
	"github.com/mcdonaldj/rarlens/internal/toolpath"
)

// PasswordEnv names the environment variable read when no --password flag is given.
const PasswordEnv = "RARLENS_PASSWORD"

// ConfigService provides configuration operations for the CLI.
type ConfigService interface {
	Load() (*config.Config, error)
	Save(cfg *config.Config) error
	ConfigPath() (string, error)
	DefaultConfig() (*config.Config, error)
}

// ArchiveService locates unrar and opens archives for the CLI.
type ArchiveService interface {
	Tool(cfg *config.Config) *driver.Tool
	Open(cfg *config.Config, path string, opts ...rar.Option) (*driver.Driver, error)
}

// CLI represents the command-line interface with injectable dependencies.
type CLI struct {
	Out     io.Writer // Standard output
	Err     io.Writer // Standard error
	Version string    // Application version
	Args    []string  // Command arguments (like os.Args)

	// Exit function for testability (defaults to os.Exit)
	Exit func(code int)

	// Injectable dependencies (nil means use defaults)
	ConfigSvc  ConfigService
	ArchiveSvc ArchiveService

	// Positional arguments and password, filled by Run
	args     []string
	password string

	// Color functions (can be disabled for testing)
	green  func(a ...interface{}) string
	yellow func(a ...interface{}) string
	cyan   func(a ...interface{}) string
	gray   func(a ...interface{}) string
	red    func(a ...interface{}) string
}

// New creates a new CLI with default settings.
func New(version string) *CLI {
	return &CLI{
		Out:     os.Stdout,
		Err:     os.Stderr,
		Version: version,
		Args:    os.Args,
		Exit:    os.Exit,
		green:   color.New(color.FgGreen, color.Bold).SprintFunc(),
		yellow:  color.New(color.FgYellow).SprintFunc(),
		cyan:    color.New(color.FgCyan).SprintFunc(),
		gray:    color.New(color.FgHiBlack).SprintFunc(),
		red:     color.New(color.FgRed).SprintFunc(),
	}
}

// NewForTesting creates a CLI configured for testing (no colors, captured output).
func NewForTesting(out, errOut io.Writer, args []string) *CLI {
	noColor := func(a ...interface{}) string { return fmt.Sprint(a...) }
	return &CLI{
		Out:     out,
		Err:     errOut,
		Version: "test",
		Args:    args,
		Exit:    func(int) {},
		green:   noColor,
		yellow:  noColor,
		cyan:    noColor,
		gray:    noColor,
		red:     noColor,
	}
}

// defaultConfigService wraps the config package functions.
type defaultConfigService struct{}

func (d *defaultConfigService) Load() (*config.Config, error)          { return config.Load() }
func (d *defaultConfigService) Save(cfg *config.Config) error          { return cfg.Save() }
func (d *defaultConfigService) ConfigPath() (string, error)            { return config.ConfigPath() }
func (d *defaultConfigService) DefaultConfig() (*config.Config, error) { return config.DefaultConfig() }

// defaultArchiveService resolves unrar on the real filesystem.
type defaultArchiveService struct{}

func (d *defaultArchiveService) Tool(cfg *config.Config) *driver.Tool {
	return driver.NewTool(toolpath.NewDefault(cfg.UnrarPaths...))
}

func (d *defaultArchiveService) Open(cfg *config.Config, path string, opts ...rar.Option) (*driver.Driver, error) {
	return d.Tool(cfg).Open(path, driver.FormatRAR, opts...)
}

// Helper methods to get the service or default
func (c *CLI) configSvc() ConfigService {
	if c.ConfigSvc != nil {
		return c.ConfigSvc
	}
	return &defaultConfigService{}
}

func (c *CLI) archiveSvc() ArchiveService {
	if c.ArchiveSvc != nil {
		return c.ArchiveSvc
	}
	return &defaultArchiveService{}
}

// Run executes the CLI with the configured arguments.
func (c *CLI) Run() {
	c.args, c.password = ParseArgs(c.Args)

	if len(c.args) < 2 {
		fmt.Fprintln(c.Out, "No command specified. Use 'rarlens help' for usage.")
		return
	}

	switch c.args[1] {
	case "list", "ls":
		c.ListEntries()
	case "info":
		c.ShowInfo()
	case "cat":
		c.PrintMember()
	case "extract", "x":
		c.Extract()
	case "diff":
		c.DiffMembers()
	case "compare":
		c.CompareArchives()
	case "tool":
		c.ShowTool()
	case "init":
		c.InitConfig()
	case "version", "-v", "--version":
		fmt.Fprintf(c.Out, "rarlens v%s\n", c.Version)
	case "help", "-h", "--help":
		c.PrintUsage()
	default:
		fmt.Fprintf(c.Err, "Unknown command: %s\n", c.args[1])
		c.PrintUsage()
		c.Exit(1)
	}
}

// ParseArgs separates --password=<pw> from positional arguments.
// Without the flag the password comes from PasswordEnv.
func ParseArgs(args []string) ([]string, string) {
	var positional []string
	password := ""
	for _, arg := range args {
		if strings.HasPrefix(arg, "--password=") {
			password = strings.TrimPrefix(arg, "--password=")
			continue
		}
		positional = append(positional, arg)
	}
	if password == "" {
		password = os.Getenv(PasswordEnv)
	}
	return positional, password
}

// PrintUsage prints the help message.
func (c *CLI) PrintUsage() {
	fmt.Fprintln(c.Out, `rarlens - RAR archive reader backed by unrar

Usage:
  rarlens ui <archive>                         Browse an archive interactively
  rarlens list <archive>                       List every entry with sizes and CRC
  rarlens info <archive>                       Show file count and total sizes
  rarlens cat <archive> <member>               Write a member's content to stdout
  rarlens extract <archive> [dest] [members...]
                                               Extract all or selected members
  rarlens diff <archive> <member1> <member2>   Line diff of two members
  rarlens compare <archive1> <archive2>        Compare two archive listings
  rarlens tool                                 Show unrar location and capabilities
  rarlens init                                 Create default config file
  rarlens version, -v                          Show version
  rarlens help, -h                             Show this help

Options:
  --password=<pw>                              Archive password (or $RARLENS_PASSWORD)

Config: ~/.rarlens/config.yaml`)
}

// InitConfig creates the default config file.
func (c *CLI) InitConfig() {
	svc := c.configSvc()
	cfg, err := svc.DefaultConfig()
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}
	if err := svc.Save(cfg); err != nil {
		fmt.Fprintf(c.Err, "Error saving config: %v\n", err)
		c.Exit(1)
		return
	}
	path, err := svc.ConfigPath()
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}
	fmt.Fprintf(c.Out, "Created config at %s\n", path)
}

// ListEntries prints every entry of an archive as the listing streams in.
func (c *CLI) ListEntries() {
	if len(c.args) < 3 {
		fmt.Fprintln(c.Out, "Usage: rarlens list <archive>")
		c.Exit(1)
		return
	}

	_, d, ok := c.openArchive(c.args[2])
	if !ok {
		return
	}

	s, err := d.Entries()
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}
	defer s.Close()

	fmt.Fprintf(c.Out, "  %-40s %10s %10s %-19s %s\n", "NAME", "SIZE", "PACKED", "MODIFIED", "CRC32")
	fmt.Fprintf(c.Out, "  %-40s %10s %10s %-19s %s\n", "----", "----", "------", "--------", "-----")

	count := 0
	for s.Next() {
		e := s.Entry()
		name := e.Name
		crc := e.CRC
		if e.IsDirectory {
			name = c.cyan(name + "/")
		}
		if crc == "" {
			crc = c.gray("-")
		}
		fmt.Fprintf(c.Out, "  %-40s %10s %10s %-19s %s\n",
			name,
			driver.FormatSize(e.Size),
			driver.FormatSize(e.PackedSize),
			e.ModTime.Format("2006-01-02 15:04:05"),
			crc)
		count++
	}
	if err := s.Err(); err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}

	fmt.Fprintf(c.Out, "\n%s entries\n", c.green(fmt.Sprintf("%d", count)))
}

// ShowInfo prints aggregate information about the regular files of an archive.
func (c *CLI) ShowInfo() {
	if len(c.args) < 3 {
		fmt.Fprintln(c.Out, "Usage: rarlens info <archive>")
		c.Exit(1)
		return
	}

	_, d, ok := c.openArchive(c.args[2])
	if !ok {
		return
	}

	info, err := d.ArchiveInformation()
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}

	ratio := "-"
	if info.UncompressedFilesSize > 0 {
		ratio = fmt.Sprintf("%d%%", info.CompressedFilesSize*100/info.UncompressedFilesSize)
	}

	fmt.Fprintf(c.Out, "%s %s\n", c.cyan("=>"), c.args[2])
	fmt.Fprintf(c.Out, "  Files:   %d\n", len(info.Files))
	fmt.Fprintf(c.Out, "  Size:    %s\n", c.yellow(driver.FormatSize(info.UncompressedFilesSize)))
	fmt.Fprintf(c.Out, "  Packed:  %s\n", c.yellow(driver.FormatSize(info.CompressedFilesSize)))
	fmt.Fprintf(c.Out, "  Ratio:   %s\n", ratio)
}

// PrintMember writes the content of one member to standard output.
func (c *CLI) PrintMember() {
	if len(c.args) < 4 {
		fmt.Fprintln(c.Out, "Usage: rarlens cat <archive> <member>")
		c.Exit(1)
		return
	}

	_, d, ok := c.openArchive(c.args[2])
	if !ok {
		return
	}

	rc, err := d.FileStream(c.args[3])
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}
	defer rc.Close()

	if _, err := io.Copy(c.Out, rc); err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
	}
}

// Extract unpacks the whole archive or the listed members.
func (c *CLI) Extract() {
	if len(c.args) < 3 {
		fmt.Fprintln(c.Out, "Usage: rarlens extract <archive> [dest] [members...]")
		c.Exit(1)
		return
	}

	cfg, d, ok := c.openArchive(c.args[2])
	if !ok {
		return
	}

	dest := cfg.OutputDir
	if len(c.args) > 3 {
		dest = c.args[3]
	}
	dest, err := config.ExpandPath(dest)
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}

	var members []string
	if len(c.args) > 4 {
		members = c.args[4:]
	}

	if len(members) == 0 {
		fmt.Fprintf(c.Out, "%s Extracting %s to %s...\n", c.cyan("=>"), c.args[2], dest)
		if err := d.ExtractArchive(dest); err != nil {
			fmt.Fprintf(c.Err, "Extraction failed: %v\n", err)
			c.Exit(1)
			return
		}
		fmt.Fprintf(c.Out, "%s Extracted %s\n", c.green("*"), c.args[2])
		return
	}

	fmt.Fprintf(c.Out, "%s Extracting %d members to %s...\n", c.cyan("=>"), len(members), dest)
	n, err := d.ExtractFiles(dest, members)
	if err != nil {
		fmt.Fprintf(c.Err, "Extraction failed: %v\n", err)
		c.Exit(1)
		return
	}
	fmt.Fprintf(c.Out, "%s Extracted %s files\n", c.green("*"), c.green(fmt.Sprintf("%d", n)))
}

// DiffMembers prints a line diff of two members of the same archive.
func (c *CLI) DiffMembers() {
	if len(c.args) < 5 {
		fmt.Fprintln(c.Out, "Usage: rarlens diff <archive> <member1> <member2>")
		c.Exit(1)
		return
	}

	_, d, ok := c.openArchive(c.args[2])
	if !ok {
		return
	}

	path1, path2 := c.args[3], c.args[4]
	content1, err := d.FileContent(path1)
	if err != nil {
		fmt.Fprintf(c.Err, "Error reading %s: %v\n", path1, err)
		c.Exit(1)
		return
	}
	content2, err := d.FileContent(path2)
	if err != nil {
		fmt.Fprintf(c.Err, "Error reading %s: %v\n", path2, err)
		c.Exit(1)
		return
	}

	result := compare.Files(path1, path2, content1, content2)
	switch {
	case result.IsBinary:
		fmt.Fprintf(c.Out, "Binary members %s and %s cannot be diffed\n", path1, path2)
		return
	case result.Identical():
		fmt.Fprintf(c.Out, "%s and %s are identical\n", path1, path2)
		return
	}

	fmt.Fprintf(c.Out, "%s %s\n", c.red("---"), path1)
	fmt.Fprintf(c.Out, "%s %s\n", c.green("+++"), path2)
	for _, line := range result.Lines {
		switch line.Type {
		case '+':
			fmt.Fprintln(c.Out, c.green("+"+line.Content))
		case '-':
			fmt.Fprintln(c.Out, c.red("-"+line.Content))
		default:
			fmt.Fprintln(c.Out, c.gray(" "+line.Content))
		}
	}
	fmt.Fprintf(c.Out, "\n%s added, %s deleted\n",
		c.green(fmt.Sprintf("%d", result.Added)),
		c.red(fmt.Sprintf("%d", result.Deleted)))
}

// CompareArchives prints the members that differ between two archives.
func (c *CLI) CompareArchives() {
	if len(c.args) < 4 {
		fmt.Fprintln(c.Out, "Usage: rarlens compare <archive1> <archive2>")
		c.Exit(1)
		return
	}

	var listings [2][]rar.Entry
	for i, path := range c.args[2:4] {
		_, d, ok := c.openArchive(path)
		if !ok {
			return
		}
		s, err := d.Entries()
		if err != nil {
			fmt.Fprintf(c.Err, "Error: %v\n", err)
			c.Exit(1)
			return
		}
		listings[i], err = s.Collect()
		if err != nil {
			fmt.Fprintf(c.Err, "Error: %v\n", err)
			c.Exit(1)
			return
		}
	}

	result := compare.Listings(listings[0], listings[1])
	if len(result.Changes) == 0 {
		fmt.Fprintln(c.Out, "Archives contain the same files")
		return
	}

	for _, ch := range result.Changes {
		switch ch.Status {
		case 'M':
			fmt.Fprintf(c.Out, "  %s %s %s\n", c.yellow("M"), ch.Path,
				c.gray(driver.FormatSize(ch.Size1)+" -> "+driver.FormatSize(ch.Size2)))
		case 'A':
			fmt.Fprintf(c.Out, "  %s %s %s\n", c.green("A"), ch.Path, c.gray(driver.FormatSize(ch.Size2)))
		case 'D':
			fmt.Fprintf(c.Out, "  %s %s %s\n", c.red("D"), ch.Path, c.gray(driver.FormatSize(ch.Size1)))
		}
	}
	fmt.Fprintf(c.Out, "\n%s modified, %s added, %s deleted\n",
		c.yellow(fmt.Sprintf("%d", result.Modified)),
		c.green(fmt.Sprintf("%d", result.Added)),
		c.red(fmt.Sprintf("%d", result.Deleted)))
}

// ShowTool reports where unrar was found and what it supports.
func (c *CLI) ShowTool() {
	cfg, err := c.configSvc().Load()
	if err != nil {
		fmt.Fprintf(c.Err, "Error loading config: %v\n", err)
		c.Exit(1)
		return
	}

	tool := c.archiveSvc().Tool(cfg)
	fmt.Fprintf(c.Out, "unrar: %s\n", tool.Description())
	if !tool.IsInstalled() {
		fmt.Fprintf(c.Out, "  %s\n", c.red("not installed"))
		fmt.Fprintln(c.Out, tool.InstallationInstruction())
		return
	}

	for _, format := range driver.SupportedFormats() {
		var caps []string
		for _, capability := range tool.CheckFormatSupport(format) {
			caps = append(caps, capability.String())
		}
		fmt.Fprintf(c.Out, "  %s %s\n", c.green(string(format)), c.gray(strings.Join(caps, ", ")))
	}
}

// openArchive loads the config and opens path. It reports failures itself.
func (c *CLI) openArchive(path string) (*config.Config, *driver.Driver, bool) {
	cfg, err := c.configSvc().Load()
	if err != nil {
		fmt.Fprintf(c.Err, "Error loading config: %v\n", err)
		c.Exit(1)
		return nil, nil, false
	}

	opts, err := c.archiveOptions(cfg)
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return nil, nil, false
	}

	d, err := c.archiveSvc().Open(cfg, path, opts...)
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return nil, nil, false
	}
	return cfg, d, true
}

// archiveOptions builds the archive options for the loaded config.
func (c *CLI) archiveOptions(cfg *config.Config) ([]rar.Option, error) {
	policy, err := rar.ParseUnclosedPolicy(cfg.UnclosedEntries)
	if err != nil {
		return nil, err
	}
	logger := c.newLogger(cfg)

	opts := []rar.Option{
		rar.WithLogger(logger),
		rar.WithUnclosedPolicy(policy),
		rar.WithRunner(execproc.New(
			execproc.WithMaxLineSize(cfg.MaxLineSize),
			execproc.WithLogger(logger),
		)),
	}
	if c.password != "" {
		opts = append(opts, rar.WithPassword(c.password))
	}
	return opts, nil
}

// newLogger writes to the error stream at the configured level.
func (c *CLI) newLogger(cfg *config.Config) *log.Logger {
	level, err := cfg.Level()
	if err != nil {
		level = log.WarnLevel
	}
	return log.NewWithOptions(c.Err, log.Options{
		Prefix: "rarlens",
		Level:  level,
	})
}
