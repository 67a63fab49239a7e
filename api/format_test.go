// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package api

import (
	"os"
	"path/filepath"

	"github.com/siemens/binspec"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const catalogYAML = `formats:
  - name: adb
    spec: "<3I%I2Is"
    description: ADB-like framing
  - name: block
    spec: ">%TBBIs"
    prefix: blk
`

var _ = Describe("format catalogs", func() {

	It("parses catalog documents and compiles their formats", func() {
		c, err := ParseCatalog([]byte(catalogYAML))
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Formats).To(HaveLen(2))
		Expect(c.Formats[0].Name).To(Equal("adb"))
		Expect(c.Formats[0].Description).To(Equal("ADB-like framing"))

		spec, err := c.Formats[1].Compile()
		Expect(err).NotTo(HaveOccurred())
		Expect(spec.(binspec.Seq)[0]).To(Equal(
			binspec.Variable{Int: binspec.BE(3), Name: "blk0"}))
	})

	It("rejects catalogs with nameless or broken formats", func() {
		_, err := ParseCatalog([]byte(`formats: [{spec: "B"}]`))
		Expect(err).To(MatchError(ContainSubstring("without a name")))
		_, err = ParseCatalog([]byte(`formats: [{name: broken, spec: "s"}]`))
		Expect(err).To(HaveOccurred())
		_, err = ParseCatalog([]byte(`: not yaml`))
		Expect(err).To(HaveOccurred())
	})

	It("loads catalog files", func() {
		path := filepath.Join(GinkgoT().TempDir(), "formats.yaml")
		Expect(os.WriteFile(path, []byte(catalogYAML), 0644)).To(Succeed())
		c, err := LoadCatalog(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Formats).To(HaveLen(2))

		_, err = LoadCatalog(filepath.Join(GinkgoT().TempDir(), "nothere.yaml"))
		Expect(err).To(HaveOccurred())
	})

	It("caches and indexes formats", func() {
		fc := FormatCache{}
		Expect(fc.IsEmpty()).To(BeTrue())
		fc.Set(Formats{
			{Name: "adb", Spec: "<3I%I2Is"},
			{Name: "block", Spec: ">%TBBIs"},
		})
		Expect(fc.IsEmpty()).To(BeFalse())
		f, ok := fc.ByName("block")
		Expect(ok).To(BeTrue())
		Expect(f.Spec).To(Equal(">%TBBIs"))
		_, ok = fc.ByName("nothere")
		Expect(ok).To(BeFalse())

		// Later additions override same-named formats, in place.
		fc.Add(Formats{{Name: "adb", Spec: "B"}, {Name: "third", Spec: "H"}})
		Expect(fc.Formats()).To(HaveLen(3))
		f, ok = fc.ByName("adb")
		Expect(ok).To(BeTrue())
		Expect(f.Spec).To(Equal("B"))
		Expect(fc.Formats()[0].Spec).To(Equal("B"))

		fc.Clear()
		Expect(fc.IsEmpty()).To(BeTrue())
	})

})
