package main

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("acquireLock", func() {
	It("does nothing without a lock file", func() {
		unlock, err := acquireLock("")
		Expect(err).To(BeNil())
		unlock()
	})

	It("creates the lock file and its directory", func() {
		path := filepath.Join(GinkgoT().TempDir(), "state", "session.lock")

		unlock, err := acquireLock(path)
		Expect(err).To(BeNil())
		DeferCleanup(unlock)

		_, err = os.Stat(path)
		Expect(err).To(BeNil())
	})

	It("refuses a second session", func() {
		path := filepath.Join(GinkgoT().TempDir(), "session.lock")

		unlock, err := acquireLock(path)
		Expect(err).To(BeNil())
		DeferCleanup(unlock)

		_, err = acquireLock(path)
		Expect(err).To(MatchError(ContainSubstring("another session is already running")))
	})

	It("can be taken again once released", func() {
		path := filepath.Join(GinkgoT().TempDir(), "session.lock")

		unlock, err := acquireLock(path)
		Expect(err).To(BeNil())
		unlock()

		unlock, err = acquireLock(path)
		Expect(err).To(BeNil())
		unlock()
	})
})

var _ = Describe("terminalWidth", func() {
	It("always yields a usable width", func() {
		Expect(terminalWidth()).To(BeNumerically(">", 0))
	})
})
