package tools_test

import (
	"github.com/sokoni-labs/sokoni/core/tools"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NormalizePhone", func() {
	It("accepts any readable format", func() {
		for input, want := range map[string]string{
			"+2250701020304":    "+2250701020304",
			"002250701020304":   "+2250701020304",
			"2250701020304":     "+2250701020304",
			"07 01 02 03 04":    "+225701020304",
			"07-01-02-03-04":    "+225701020304",
			"(07) 01.02.03.04":  "+225701020304",
			"33612345678":       "+33612345678",
			"+33 6 12 34 56 78": "+33612345678",
		} {
			Expect(tools.NormalizePhone(input, "225")).To(Equal(want), "input %q", input)
		}
	})

	It("returns empty for empty input", func() {
		Expect(tools.NormalizePhone("  ", "225")).To(Equal(""))
	})
})
