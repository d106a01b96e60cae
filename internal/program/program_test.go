package program_test

import (
	"github.com/frahmantamala/donation-management/internal/program"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("ProgressPercentage", func() {
	DescribeTable("collected over target",
		func(collected, target, expected string) {
			got := program.ProgressPercentage(decimal.RequireFromString(collected), decimal.RequireFromString(target))
			Expect(got.Equal(decimal.RequireFromString(expected))).To(BeTrue(), "got %s", got)
		},
		Entry("nothing collected", "0", "1000000", "0"),
		Entry("half way", "500000", "1000000", "50"),
		Entry("rounded to two places", "1", "3", "33.33"),
		Entry("exactly reached", "1000000", "1000000", "100"),
		Entry("capped when exceeded", "2500000", "1000000", "100"),
		Entry("no target", "50000", "0", "0"),
		Entry("negative target", "50000", "-1", "0"),
	)
})
