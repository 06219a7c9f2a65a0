package shell

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/rwx-research/tirag/internal/errors"
	"github.com/rwx-research/tirag/internal/messages"
)

const bytesPerMB = 1024 * 1024

type command struct {
	name    string
	usage   string
	summary string
	minArgs int
	// terminal commands end the session and their error is returned as is.
	terminal bool
	run      func(s *Session, args []string) error
}

var commands = []command{
	{name: "help", usage: "help", summary: "Show this help message.", run: (*Session).help},
	{name: "cls", usage: "cls", summary: "Clear the screen.", run: (*Session).clear},
	{name: "dir", usage: "dir", summary: "List files in the current directory.", run: (*Session).list},
	{name: "cd", usage: "cd [path]", summary: "Change the current directory to the specified path.", minArgs: 1, run: (*Session).changeDirectory},
	{name: "mkdir", usage: "mkdir [name]", summary: "Create a new directory with the specified name.", minArgs: 1, run: (*Session).makeDirectory},
	{name: "rmdir", usage: "rmdir [name]", summary: "Remove the directory with the specified name.", minArgs: 1, run: (*Session).removeDirectory},
	{name: "touch", usage: "touch [name]", summary: "Create a new file with the specified name.", minArgs: 1, run: (*Session).touch},
	{name: "edit", usage: "edit [name]", summary: "Edit the contents of the specified file.", minArgs: 1, run: (*Session).edit},
	{name: "read", usage: "read [name]", summary: "Display the contents of the specified file.", minArgs: 1, run: (*Session).read},
	{name: "copy", usage: "copy [source] [dest]", summary: "Copy a file from the source location to the destination.", minArgs: 2, run: (*Session).copy},
	{name: "del", usage: "del [name]", summary: "Delete the specified file.", minArgs: 1, run: (*Session).delete},
	{name: "drives", usage: "drives", summary: "List all detected drives and partitions.", run: (*Session).drives},
	{name: "shutdown", usage: "shutdown", summary: "Shut down the system.", terminal: true, run: (*Session).shutdown},
	{name: "reboot", usage: "reboot", summary: "Reboot the system.", terminal: true, run: (*Session).reboot},
	{name: "time", usage: "time", summary: "Show the time.", run: (*Session).time},
	{name: "ver", usage: "ver", summary: "Show the version of the operating system.", run: (*Session).version},
}

var (
	errorColor  = color.New(color.FgRed)
	noticeColor = color.New(color.FgYellow)
)

// Session is one run of the interactive shell. It owns the current directory.
type Session struct {
	Config
	files    Files
	table    []command
	commands map[string]command
	cwd      string
}

func NewSession(cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if cfg.Width == nil {
		cfg.Width = func() int { return DefaultWidth }
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	byName := make(map[string]command, len(commands))
	for _, c := range commands {
		byName[c.name] = c
	}

	return &Session{
		Config:   cfg,
		files:    Files{Storage: cfg.Storage},
		table:    commands,
		commands: byName,
		cwd:      cfg.Root,
	}, nil
}

func (s *Session) CurrentDirectory() string {
	return s.cwd
}

// Run reads and executes commands until the input ends or a terminal command
// is issued. End of input returns nil; a terminal command returns whatever
// the power service returned.
func (s *Session) Run() error {
	for {
		s.detectDrives()
		fmt.Fprintln(s.Stdout, strings.Repeat("-", s.width()))

		line, err := s.Input.ReadLine(s.cwd + ">")
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.Stdout)
			s.Logger.Debug("input closed", "cwd", s.cwd)
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "unable to read input")
		}

		if stop, err := s.execute(line); stop {
			return err
		}
	}
}

func (s *Session) execute(line string) (bool, error) {
	cmd := Parse(line)
	if cmd.Name == "" {
		return false, nil
	}

	c, ok := s.commands[cmd.Name]
	if !ok {
		fmt.Fprintf(s.Stdout, "Unknown command: %s\n", cmd.Name)
		return false, nil
	}

	if len(cmd.Args) < c.minArgs {
		s.report(errors.UsageError{Usage: c.usage})
		return false, nil
	}

	err := c.run(s, cmd.Args)
	if c.terminal {
		return true, err
	}

	if err != nil {
		s.Logger.Debug("command failed", "command", c.name, "cwd", s.cwd, "error", err)
		s.report(err)
	}

	return false, nil
}

func (s *Session) report(err error) {
	var usage errors.UsageError
	if errors.As(err, &usage) {
		fmt.Fprintln(s.Stdout, usage.Error())
		return
	}

	errorColor.Fprintf(s.Stdout, "Error: %s\n", err)
}

// detectDrives announces every attached USB volume. Nothing is remembered
// between calls, so a drive is announced before every prompt.
func (s *Session) detectDrives() {
	volumes, err := s.Storage.Volumes()
	if err != nil {
		s.Logger.Debug("unable to enumerate volumes", "error", err)
		return
	}

	for _, volume := range volumes {
		if strings.HasPrefix(volume.Name, "usb") {
			noticeColor.Fprintf(s.Stdout, "New USB drive detected: %s\n", volume.Name)
		}
	}
}

func (s *Session) width() int {
	if width := s.Width(); width > 0 {
		return width
	}

	return DefaultWidth
}

func (s *Session) help(_ []string) error {
	entries := make([]messages.HelpEntry, len(s.table))
	for i, c := range s.table {
		entries[i] = messages.HelpEntry{Usage: c.usage, Summary: c.summary}
	}

	fmt.Fprint(s.Stdout, messages.FormatHelp(entries, s.width()))
	return nil
}

func (s *Session) clear(_ []string) error {
	fmt.Fprint(s.Stdout, "\x1b[H\x1b[2J")
	return nil
}

func (s *Session) list(_ []string) error {
	entries, err := s.files.List(s.cwd)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.Stdout, "Contents of %s:\n", s.cwd)
	for _, entry := range entries {
		if entry.IsDir() {
			fmt.Fprintf(s.Stdout, "%s <DIR>\n", entry.Name())
		} else {
			fmt.Fprintln(s.Stdout, entry.Name())
		}
	}

	return nil
}

func (s *Session) changeDirectory(args []string) error {
	target := args[0]
	if target == "" {
		return errors.UsageError{Usage: s.commands["cd"].usage}
	}

	resolved, tentative := Resolve(s.Root, s.cwd, target)
	if tentative {
		if _, err := s.files.List(resolved); err != nil {
			s.Logger.Debug("rejected directory change", "path", resolved, "error", err)
			fmt.Fprintf(s.Stdout, "Directory not found: %s\n", target)
			return nil
		}
	}

	s.cwd = resolved
	return nil
}

func (s *Session) makeDirectory(args []string) error {
	if err := s.files.MakeDir(Join(s.cwd, args[0])); err != nil {
		return err
	}

	fmt.Fprintf(s.Stdout, "Directory created: %s\n", args[0])
	return nil
}

func (s *Session) removeDirectory(args []string) error {
	if err := s.files.RemoveDir(Join(s.cwd, args[0])); err != nil {
		return err
	}

	fmt.Fprintf(s.Stdout, "Directory removed: %s\n", args[0])
	return nil
}

func (s *Session) touch(args []string) error {
	if err := s.files.Touch(Join(s.cwd, args[0])); err != nil {
		return err
	}

	fmt.Fprintf(s.Stdout, "File created: %s\n", args[0])
	return nil
}

func (s *Session) edit(args []string) error {
	fmt.Fprintln(s.Stdout, "Enter file content (end with an empty line):")

	var content strings.Builder
	for {
		line, err := s.Input.ReadLine("")
		if errors.Is(err, io.EOF) || (err == nil && line == "") {
			break
		}
		if err != nil {
			return errors.Wrap(err, "unable to read file content")
		}

		content.WriteString(line)
		content.WriteString("\n")
	}

	if err := s.files.Overwrite(Join(s.cwd, args[0]), content.String()); err != nil {
		return err
	}

	fmt.Fprintf(s.Stdout, "File edited: %s\n", args[0])
	return nil
}

func (s *Session) read(args []string) error {
	text, err := s.files.ReadAll(Join(s.cwd, args[0]))
	if err != nil {
		return err
	}

	fmt.Fprintln(s.Stdout, "File contents:")
	fmt.Fprint(s.Stdout, text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(s.Stdout)
	}

	return nil
}

func (s *Session) copy(args []string) error {
	if err := s.files.Copy(Join(s.cwd, args[0]), Join(s.cwd, args[1])); err != nil {
		return err
	}

	fmt.Fprintf(s.Stdout, "File copied from %s to %s\n", args[0], args[1])
	return nil
}

func (s *Session) delete(args []string) error {
	if err := s.files.Delete(Join(s.cwd, args[0])); err != nil {
		return err
	}

	fmt.Fprintf(s.Stdout, "File deleted: %s\n", args[0])
	return nil
}

func (s *Session) drives(_ []string) error {
	volumes, err := s.Storage.Volumes()
	if err != nil {
		return errors.Wrap(err, "unable to enumerate volumes")
	}

	fmt.Fprintln(s.Stdout, "Detected Drives and Partitions:")
	for _, volume := range volumes {
		fmt.Fprintf(s.Stdout, "Drive Name: %s, Size: %d MB\n", volume.Name, volume.Size/bytesPerMB)
	}

	return nil
}

func (s *Session) shutdown(_ []string) error {
	fmt.Fprintln(s.Stdout, "Shutting down...")
	return s.Power.Shutdown()
}

func (s *Session) reboot(_ []string) error {
	fmt.Fprintln(s.Stdout, "Rebooting...")
	return s.Power.Reboot()
}

func (s *Session) time(_ []string) error {
	fmt.Fprintln(s.Stdout, s.Now().Format("3:04:05 PM"))
	return nil
}

func (s *Session) version(_ []string) error {
	fmt.Fprintln(s.Stdout, s.Version)
	return nil
}
