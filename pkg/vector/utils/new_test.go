package vectorutils_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragnotes/pkg/logger"
	"github.com/papercomputeco/ragnotes/pkg/vector/inmemory"
	"github.com/papercomputeco/ragnotes/pkg/vector/sqlitevec"
	vectorutils "github.com/papercomputeco/ragnotes/pkg/vector/utils"
)

var _ = Describe("NewVectorDriver", func() {
	ctx := context.Background()

	It("should build the in-memory driver", func() {
		driver, err := vectorutils.NewVectorDriver(ctx, &vectorutils.NewVectorDriverOpts{
			ProviderType: vectorutils.ProviderInMemory,
			Logger:       logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(driver).To(BeAssignableToTypeOf(&inmemory.Driver{}))
	})

	It("should build the sqlite-vec driver", func() {
		driver, err := vectorutils.NewVectorDriver(ctx, &vectorutils.NewVectorDriverOpts{
			ProviderType: vectorutils.ProviderSQLite,
			TargetURL:    ":memory:",
			Dimensions:   8,
			Logger:       logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(driver).To(BeAssignableToTypeOf(&sqlitevec.Driver{}))
		Expect(driver.Close()).To(Succeed())
	})

	It("should reject unknown providers", func() {
		_, err := vectorutils.NewVectorDriver(ctx, &vectorutils.NewVectorDriverOpts{
			ProviderType: "faiss",
			Logger:       logger.Nop(),
		})
		Expect(err).To(MatchError(ContainSubstring("unsupported vector store provider: faiss")))
	})
})
