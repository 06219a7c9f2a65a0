package versions_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rwx-research/tirag/internal/versions"
)

var _ = Describe("Version", func() {
	It("renders releases", func() {
		Expect(versions.Parse("1.2.0").String()).To(Equal("1.2.0"))
		Expect(versions.Parse("v1.2").String()).To(Equal("1.2.0"))
	})

	It("renders pre-releases with their label", func() {
		Expect(versions.Parse("1.0.0-alpha.5").String()).To(Equal("1.0.0 (alpha.5)"))
	})

	It("drops build metadata", func() {
		Expect(versions.Parse("1.0.0+git.abc123").String()).To(Equal("1.0.0"))
	})

	It("treats anything else as a development build", func() {
		version := versions.Parse("dev")
		Expect(version.Development()).To(BeTrue())
		Expect(version.String()).To(Equal("dev (development build)"))
	})

	It("describes the running build", func() {
		Expect(versions.Describe()).To(HavePrefix("Tirag Disk Operating System "))
		Expect(versions.Describe()).To(HaveSuffix(versions.Current().String()))
	})
})
