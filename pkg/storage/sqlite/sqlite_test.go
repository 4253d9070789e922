package sqlite_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragnotes/pkg/storage"
	"github.com/papercomputeco/ragnotes/pkg/storage/sqlite"
	"github.com/papercomputeco/ragnotes/pkg/storage/storagetest"
)

var _ = Describe("Driver", func() {
	Describe("in-memory database", func() {
		storagetest.DriverBehaviors(func() storage.Driver {
			d, err := sqlite.NewDriver(context.Background(), ":memory:")
			Expect(err).NotTo(HaveOccurred())
			return d
		})
	})

	Describe("NewDriver", func() {
		It("creates a driver with file database", func() {
			tmpDir := GinkgoT().TempDir()
			dbPath := filepath.Join(tmpDir, "test.db")

			s, err := sqlite.NewDriver(context.Background(), dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer s.Close()

			// Verify file was created
			_, err = os.Stat(dbPath)
			Expect(err).NotTo(HaveOccurred())
		})

		It("persists notes across reopen", func() {
			ctx := context.Background()
			dbPath := filepath.Join(GinkgoT().TempDir(), "notes.db")

			s, err := sqlite.NewDriver(ctx, dbPath)
			Expect(err).NotTo(HaveOccurred())
			n, err := s.Insert(ctx, "remember the milk")
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Close()).To(Succeed())

			s, err = sqlite.NewDriver(ctx, dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer s.Close()

			got, err := s.Get(ctx, n.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Text).To(Equal("remember the milk"))
			Expect(got.CreatedAt).NotTo(BeZero())
		})
	})
})
