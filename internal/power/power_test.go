package power_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rwx-research/tirag/internal/errors"
	"github.com/rwx-research/tirag/internal/mocks"
	"github.com/rwx-research/tirag/internal/power"
)

var _ = Describe("Service", func() {
	var (
		volumes *mocks.Closer
		stdout  *bytes.Buffer
		service power.Service
	)

	BeforeEach(func() {
		volumes = new(mocks.Closer)
		stdout = new(bytes.Buffer)

		var err error
		service, err = power.NewService(power.Config{Volumes: volumes, Stdout: stdout})
		Expect(err).To(BeNil())
	})

	It("requires volumes and stdout", func() {
		_, err := power.NewService(power.Config{Stdout: stdout})
		Expect(err).To(MatchError(ContainSubstring("missing volumes")))

		_, err = power.NewService(power.Config{Volumes: volumes})
		Expect(err).To(MatchError(ContainSubstring("missing stdout")))
	})

	Describe("Shutdown", func() {
		It("syncs the volumes and signals a halt", func() {
			err := service.Shutdown()
			Expect(err).To(MatchError(power.ErrShutdown))
			Expect(volumes.Closed).To(Equal(1))
			Expect(stdout.String()).To(Equal("Volumes synced.\n"))
		})

		It("reports a failed sync instead of halting", func() {
			volumes.MockClose = func() error { return errors.New("connection reset") }

			err := service.Shutdown()
			Expect(err).NotTo(MatchError(power.ErrShutdown))
			Expect(err).To(MatchError(ContainSubstring("unable to sync volumes: connection reset")))
		})
	})

	Describe("Reboot", func() {
		It("syncs the volumes and signals a reboot", func() {
			err := service.Reboot()
			Expect(err).To(MatchError(power.ErrReboot))
			Expect(volumes.Closed).To(Equal(1))
		})

		It("animates the sync when asked to", func() {
			service.Spinner = true

			err := service.Reboot()
			Expect(err).To(MatchError(power.ErrReboot))
			Expect(stdout.String()).To(HaveSuffix("Volumes synced.\n"))
		})
	})
})
