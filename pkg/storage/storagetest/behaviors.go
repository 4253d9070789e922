// Package storagetest holds the ginkgo specs every storage.Driver must pass.
package storagetest

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragnotes/pkg/storage"
)

// DriverBehaviors registers the shared note store specs. newDriver is called
// before each test and must return an empty store.
func DriverBehaviors(newDriver func() storage.Driver) {
	var (
		driver storage.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = nil
		driver = newDriver()
	})

	AfterEach(func() {
		if driver != nil {
			Expect(driver.Close()).To(Succeed())
		}
	})

	Describe("Insert", func() {
		It("assigns positive, increasing IDs", func() {
			a, err := driver.Insert(ctx, "first")
			Expect(err).NotTo(HaveOccurred())
			b, err := driver.Insert(ctx, "second")
			Expect(err).NotTo(HaveOccurred())

			Expect(a.ID).To(BeNumerically(">", 0))
			Expect(b.ID).To(BeNumerically(">", a.ID))
			Expect(a.Text).To(Equal("first"))
			Expect(a.CreatedAt).NotTo(BeZero())
		})

		It("rejects empty text", func() {
			_, err := driver.Insert(ctx, "   ")
			Expect(err).To(HaveOccurred())
		})

		It("does not reuse IDs after deletion", func() {
			a, err := driver.Insert(ctx, "first")
			Expect(err).NotTo(HaveOccurred())
			Expect(driver.Delete(ctx, a.ID)).To(Succeed())

			b, err := driver.Insert(ctx, "second")
			Expect(err).NotTo(HaveOccurred())
			Expect(b.ID).NotTo(Equal(a.ID))
		})
	})

	Describe("Get", func() {
		It("returns a stored note", func() {
			a, err := driver.Insert(ctx, "the cat is on the mat")
			Expect(err).NotTo(HaveOccurred())

			got, err := driver.Get(ctx, a.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(a.ID))
			Expect(got.Text).To(Equal("the cat is on the mat"))
		})

		It("returns NotFoundError for unknown IDs", func() {
			_, err := driver.Get(ctx, 4242)
			var nf storage.NotFoundError
			Expect(err).To(BeAssignableToTypeOf(nf))
			Expect(err.Error()).To(ContainSubstring("4242"))
		})
	})

	Describe("GetByIDs", func() {
		It("returns known notes ordered by ID and skips unknown IDs", func() {
			a, _ := driver.Insert(ctx, "a")
			b, _ := driver.Insert(ctx, "b")

			notes, err := driver.GetByIDs(ctx, []int64{b.ID, 9999, a.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(notes).To(HaveLen(2))
			Expect(notes[0].ID).To(Equal(a.ID))
			Expect(notes[1].ID).To(Equal(b.ID))
		})

		It("returns an empty slice for no IDs", func() {
			notes, err := driver.GetByIDs(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(notes).NotTo(BeNil())
			Expect(notes).To(BeEmpty())
		})
	})

	Describe("List", func() {
		It("returns an empty, non-nil slice for an empty store", func() {
			notes, err := driver.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(notes).NotTo(BeNil())
			Expect(notes).To(BeEmpty())
		})

		It("returns every note ordered by ID", func() {
			for _, text := range []string{"one", "two", "three"} {
				_, err := driver.Insert(ctx, text)
				Expect(err).NotTo(HaveOccurred())
			}

			notes, err := driver.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(notes).To(HaveLen(3))
			Expect(notes[0].Text).To(Equal("one"))
			Expect(notes[2].Text).To(Equal("three"))
		})

		It("is stable across repeated reads", func() {
			_, _ = driver.Insert(ctx, "one")
			_, _ = driver.Insert(ctx, "two")

			first, err := driver.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			second, err := driver.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
		})
	})

	Describe("Delete", func() {
		It("removes the note", func() {
			a, _ := driver.Insert(ctx, "a")
			b, _ := driver.Insert(ctx, "b")

			Expect(driver.Delete(ctx, a.ID)).To(Succeed())

			notes, err := driver.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(notes).To(HaveLen(1))
			Expect(notes[0].ID).To(Equal(b.ID))
		})

		It("is idempotent for unknown IDs", func() {
			Expect(driver.Delete(ctx, 12345)).To(Succeed())
			Expect(driver.Delete(ctx, 12345)).To(Succeed())
		})
	})
}
