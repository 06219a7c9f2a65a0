package shell_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rwx-research/tirag/internal/errors"
	"github.com/rwx-research/tirag/internal/fs"
	"github.com/rwx-research/tirag/internal/memoryfs"
	"github.com/rwx-research/tirag/internal/mocks"
	"github.com/rwx-research/tirag/internal/power"
	"github.com/rwx-research/tirag/internal/shell"
	"github.com/rwx-research/tirag/internal/volume"
)

// fileListingFS answers a listing of a file with the file itself, the way
// FTP servers answer LIST.
type fileListingFS struct {
	*memoryfs.MemoryFS
}

func (f fileListingFS) ReadDir(name string) ([]fs.DirEntry, error) {
	entry, err := f.Stat(name)
	if err == nil && !entry.IsDir() {
		return []fs.DirEntry{entry}, nil
	}

	return f.MemoryFS.ReadDir(name)
}

var _ = Describe("Session", func() {
	var (
		storage shell.Storage
		pwr     *mocks.Power
		input   *mocks.Input
		stdout  *bytes.Buffer
		session *shell.Session
	)

	newSession := func(lines ...string) *shell.Session {
		input = mocks.NewInput(lines...)
		s, err := shell.NewSession(shell.Config{
			Storage: storage,
			Power:   pwr,
			Input:   input,
			Stdout:  stdout,
			Root:    `0:\`,
			Version: "Tirag Disk Operating System 1.0.0",
			Now:     func() time.Time { return time.Date(2024, 3, 1, 14, 5, 9, 0, time.Local) },
			Width:   func() int { return 3 },
		})
		Expect(err).To(BeNil())
		return s
	}

	run := func(lines ...string) string {
		session = newSession(lines...)
		Expect(session.Run()).To(Succeed())
		return stdout.String()
	}

	BeforeEach(func() {
		storage = volume.NewManager([]volume.Mount{{Name: "System", FS: memoryfs.NewFS(), Size: 32 * 1024 * 1024}}, "", nil)
		pwr = new(mocks.Power)
		stdout = new(bytes.Buffer)
	})

	Describe("NewSession", func() {
		It("requires every collaborator", func() {
			_, err := shell.NewSession(shell.Config{Power: pwr, Input: mocks.NewInput(), Stdout: stdout, Root: `0:\`})
			Expect(err).To(MatchError(ContainSubstring("missing storage service")))

			_, err = shell.NewSession(shell.Config{Storage: storage, Input: mocks.NewInput(), Stdout: stdout, Root: `0:\`})
			Expect(err).To(MatchError(ContainSubstring("missing power service")))
		})

		It("requires a drive root", func() {
			_, err := shell.NewSession(shell.Config{Storage: storage, Power: pwr, Input: mocks.NewInput(), Stdout: stdout, Root: "0:"})
			Expect(err).To(MatchError(ContainSubstring(`must end with \`)))
		})

		It("starts at the root", func() {
			Expect(newSession().CurrentDirectory()).To(Equal(`0:\`))
		})
	})

	It("walks through creating, editing and reading a file", func() {
		output := run("mkdir docs", "cd docs", "touch a.txt", "edit a.txt", "hi", "", "read a.txt", "cd ..", "dir")

		Expect(output).To(Equal(strings.Join([]string{
			"---",
			"Directory created: docs",
			"---",
			"---",
			"File created: a.txt",
			"---",
			"Enter file content (end with an empty line):",
			"File edited: a.txt",
			"---",
			"File contents:",
			"hi",
			"---",
			"---",
			`Contents of 0:\:`,
			"docs <DIR>",
			"---",
			"",
		}, "\n") + "\n"))
		Expect(input.Prompts).To(Equal([]string{`0:\>`, `0:\>`, `0:\docs\>`, `0:\docs\>`, "", "", `0:\docs\>`, `0:\docs\>`, `0:\>`, `0:\>`}))
	})

	Describe("dir", func() {
		It("lists the same entries when nothing changed in between", func() {
			output := run("mkdir docs", "touch a.txt", "dir", "dir")

			listing := "Contents of 0:\\:\na.txt\ndocs <DIR>\n"
			Expect(strings.Count(output, listing)).To(Equal(2))
		})
	})

	Describe("cd", func() {
		It("returns to the previous directory with ..", func() {
			run("mkdir docs", "cd docs", "mkdir letters", "cd letters", "cd ..")
			Expect(session.CurrentDirectory()).To(Equal(`0:\docs\`))
		})

		It("stays at the root with ..", func() {
			run("cd ..", "cd ..")
			Expect(session.CurrentDirectory()).To(Equal(`0:\`))
		})

		It("keeps the current directory when the target does not exist", func() {
			output := run("mkdir docs", "cd nonexistent", "dir")

			Expect(output).To(ContainSubstring("Directory not found: nonexistent\n"))
			Expect(output).To(ContainSubstring("Contents of 0:\\:\ndocs <DIR>\n"))
			Expect(session.CurrentDirectory()).To(Equal(`0:\`))
		})

		It("refuses to enter files", func() {
			output := run("touch a.txt", "cd a.txt")

			Expect(output).To(ContainSubstring("Directory not found: a.txt\n"))
			Expect(session.CurrentDirectory()).To(Equal(`0:\`))
		})

		It("refuses to enter files on volumes that list them", func() {
			backend := fileListingFS{memoryfs.NewFS()}
			Expect(backend.WriteFiles(map[string][]byte{"/notes.txt": []byte("x")})).To(Succeed())
			storage = volume.NewManager([]volume.Mount{{Name: "remote", FS: backend}}, "", nil)

			output := run("cd notes.txt")
			Expect(output).To(ContainSubstring("Directory not found: notes.txt\n"))
			Expect(session.CurrentDirectory()).To(Equal(`0:\`))
		})

		It("enters nested directories in one step", func() {
			run("mkdir docs", "cd docs", "mkdir letters", "cd ..", `cd docs\letters`)
			Expect(session.CurrentDirectory()).To(Equal(`0:\docs\letters\`))
		})

		It("treats an empty target as a usage error", func() {
			output := run("cd ")
			Expect(output).To(ContainSubstring("Usage: cd [path]\n"))
		})
	})

	Describe("mkdir", func() {
		It("creates missing parents", func() {
			output := run(`mkdir a\b`, "cd a", "dir")
			Expect(output).To(ContainSubstring("Contents of 0:\\a\\:\nb <DIR>\n"))
		})

		It("reports an existing directory", func() {
			output := run("mkdir docs", "mkdir docs")
			Expect(output).To(ContainSubstring("Error: mkdir 0:\\docs: file already exists\n"))
		})

		It("lower-cases names", func() {
			output := run("MKDIR Docs")
			Expect(output).To(ContainSubstring("Directory created: docs\n"))
		})
	})

	Describe("rmdir", func() {
		It("removes a directory with everything in it", func() {
			output := run("mkdir docs", "cd docs", "touch a.txt", "cd ..", "rmdir docs", "dir")
			Expect(output).To(ContainSubstring("Directory removed: docs\n"))
			Expect(output).To(HaveSuffix("Contents of 0:\\:\n---\n\n"))
		})

		It("reports a missing directory", func() {
			output := run("rmdir docs")
			Expect(output).To(ContainSubstring("Error: 0:\\docs could not be found\n"))
		})
	})

	Describe("edit", func() {
		It("replaces the previous contents", func() {
			output := run("touch f", "edit f", "A", "", "edit f", "B", "", "read f")
			Expect(output).To(HaveSuffix("File contents:\nB\n---\n\n"))
		})

		It("keeps the case of the content", func() {
			output := run("touch f", "edit f", "Hello World", "Second line", "", "read f")
			Expect(output).To(ContainSubstring("File contents:\nHello World\nSecond line\n---"))
		})

		It("ends the content at the end of input", func() {
			output := run("touch f", "edit f", "last words")
			Expect(output).To(ContainSubstring("File edited: f\n"))
		})

		It("reports a missing file", func() {
			output := run("edit f", "text", "")
			Expect(output).To(ContainSubstring("Error: 0:\\f could not be found\n"))
		})
	})

	Describe("read", func() {
		It("prints an empty file", func() {
			output := run("touch f", "read f")
			Expect(output).To(ContainSubstring("File contents:\n\n"))
		})
	})

	Describe("copy", func() {
		It("duplicates the contents and leaves the source alone", func() {
			output := run("touch f", "edit f", "hello", "", "copy f g", "read g", "read f")
			Expect(output).To(ContainSubstring("File copied from f to g\n"))
			Expect(strings.Count(output, "File contents:\nhello\n")).To(Equal(2))
		})

		It("overwrites an existing destination", func() {
			output := run("touch f", "edit f", "new", "", "touch g", "edit g", "older text", "", "copy f g", "read g")
			Expect(output).To(HaveSuffix("File contents:\nnew\n---\n\n"))
		})

		It("leaves a file on a host volume intact when copied onto itself", func() {
			dir := GinkgoT().TempDir()
			Expect(os.WriteFile(filepath.Join(dir, "f"), []byte("hello\n"), 0o644)).To(Succeed())
			storage = volume.NewManager([]volume.Mount{{Name: "System", FS: fs.Local{Root: dir}}}, "", nil)

			output := run("copy f f", "read f")
			Expect(output).To(ContainSubstring("Error: 0:\\f cannot be copied onto itself\n"))
			Expect(output).NotTo(ContainSubstring("File copied"))
			Expect(output).To(ContainSubstring("File contents:\nhello\n"))

			contents, err := os.ReadFile(filepath.Join(dir, "f"))
			Expect(err).To(BeNil())
			Expect(string(contents)).To(Equal("hello\n"))
		})

		It("reports a missing source", func() {
			output := run("copy f g", "dir")
			Expect(output).To(ContainSubstring("Error: 0:\\f could not be found\n"))
			Expect(output).To(HaveSuffix("Contents of 0:\\:\n---\n\n"))
		})
	})

	Describe("del", func() {
		It("deletes a file", func() {
			output := run("touch f", "del f", "dir")
			Expect(output).To(ContainSubstring("File deleted: f\n"))
			Expect(output).To(HaveSuffix("Contents of 0:\\:\n---\n\n"))
		})

		It("refuses to delete directories", func() {
			output := run("mkdir docs", "del docs")
			Expect(output).To(ContainSubstring("Error: 0:\\docs is a directory\n"))
		})
	})

	Describe("argument checks", func() {
		BeforeEach(func() {
			storage = new(mocks.Storage)
		})

		It("prints the usage without touching storage", func() {
			output := run("cd", "mkdir", "rmdir", "touch", "edit", "read", "copy", "copy f", "del")

			Expect(output).To(ContainSubstring("Usage: cd [path]\n"))
			Expect(output).To(ContainSubstring("Usage: mkdir [name]\n"))
			Expect(output).To(ContainSubstring("Usage: rmdir [name]\n"))
			Expect(output).To(ContainSubstring("Usage: touch [name]\n"))
			Expect(output).To(ContainSubstring("Usage: edit [name]\n"))
			Expect(output).To(ContainSubstring("Usage: read [name]\n"))
			Expect(strings.Count(output, "Usage: copy [source] [dest]\n")).To(Equal(2))
			Expect(output).To(ContainSubstring("Usage: del [name]\n"))

			for _, call := range storage.(*mocks.Storage).Calls {
				Expect(call).To(Equal("Volumes"))
			}
		})
	})

	Describe("dispatch", func() {
		It("reports unknown commands", func() {
			output := run("format 0:")
			Expect(output).To(Equal("---\nUnknown command: format\n---\n\n"))
		})

		It("ignores empty commands", func() {
			output := run("", " dir")
			Expect(output).To(Equal("---\n---\n---\n\n"))
		})

		It("reports storage failures without stopping", func() {
			storage = &mocks.Storage{
				MockMkdirAll: func(string) error { return errors.New("volume is read-only") },
			}

			output := run("mkdir docs", "ver")
			Expect(output).To(ContainSubstring("Error: volume is read-only\n"))
			Expect(output).To(ContainSubstring("Tirag Disk Operating System 1.0.0\n"))
		})

		It("ends at the end of input", func() {
			session = newSession()
			Expect(session.Run()).To(Succeed())
			Expect(stdout.String()).To(Equal("---\n\n"))
		})
	})

	Describe("drive detection", func() {
		BeforeEach(func() {
			storage = &mocks.Storage{
				MockVolumes: func() ([]fs.Volume, error) {
					return []fs.Volume{{Name: "System", Size: 32 * 1024 * 1024}, {Name: "usb0", Size: 1536 * 1024}}, nil
				},
			}
		})

		It("announces attached USB drives before every prompt", func() {
			output := run("", "")
			Expect(strings.Count(output, "New USB drive detected: usb0\n")).To(Equal(3))
			Expect(output).NotTo(ContainSubstring("detected: System"))
		})

		It("lists drives with their size in megabytes", func() {
			output := run("drives")
			Expect(output).To(ContainSubstring("Detected Drives and Partitions:\nDrive Name: System, Size: 32 MB\nDrive Name: usb0, Size: 1 MB\n"))
		})

		It("keeps going when volumes cannot be enumerated", func() {
			storage = &mocks.Storage{
				MockVolumes: func() ([]fs.Volume, error) { return nil, errors.New("bus error") },
			}

			output := run("drives")
			Expect(output).To(ContainSubstring("Error: unable to enumerate volumes: bus error\n"))
		})
	})

	Describe("information commands", func() {
		It("prints the time", func() {
			Expect(run("time")).To(ContainSubstring("2:05:09 PM\n"))
		})

		It("prints the version", func() {
			Expect(run("ver")).To(ContainSubstring("Tirag Disk Operating System 1.0.0\n"))
		})

		It("prints every command in help", func() {
			output := run("help")
			Expect(output).To(ContainSubstring("---\n\nAVAILABLE COMMANDS\n---\n"))
			Expect(output).NotTo(ContainSubstring("----"))
			Expect(output).To(ContainSubstring("copy [source] [dest] : Copy a file from the source location to the destination.\n"))
			Expect(output).To(ContainSubstring("ver             : Show the version of the operating system.\n"))
		})

		It("clears the screen", func() {
			Expect(run("cls")).To(ContainSubstring("\x1b[H\x1b[2J"))
		})
	})

	Describe("power", func() {
		It("returns the halt signal on shutdown", func() {
			pwr.MockShutdown = func() error { return power.ErrShutdown }

			session = newSession("shutdown", "dir")
			Expect(session.Run()).To(MatchError(power.ErrShutdown))
			Expect(stdout.String()).To(Equal("---\nShutting down...\n"))
			Expect(input.Lines).To(Equal([]string{"dir"}))
		})

		It("returns the reboot signal on reboot", func() {
			pwr.MockReboot = func() error { return power.ErrReboot }

			session = newSession("reboot")
			Expect(session.Run()).To(MatchError(power.ErrReboot))
			Expect(stdout.String()).To(Equal("---\nRebooting...\n"))
		})

		It("ends the session even when the power service returns nothing", func() {
			pwr.MockShutdown = func() error { return nil }

			session = newSession("shutdown", "dir")
			Expect(session.Run()).To(Succeed())
			Expect(input.Lines).To(Equal([]string{"dir"}))
		})
	})
})
