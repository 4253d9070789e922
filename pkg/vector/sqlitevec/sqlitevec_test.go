package sqlitevec_test

import (
	"context"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragnotes/pkg/logger"
	"github.com/papercomputeco/ragnotes/pkg/vector"
	"github.com/papercomputeco/ragnotes/pkg/vector/sqlitevec"
)

var _ = Describe("Driver", func() {
	var (
		log    *slog.Logger
		driver *sqlitevec.Driver
		ctx    context.Context
	)

	newDriver := func() *sqlitevec.Driver {
		d, err := sqlitevec.NewDriver(sqlitevec.Config{
			DBPath:     ":memory:",
			Dimensions: 4,
		}, log)
		Expect(err).NotTo(HaveOccurred())
		return d
	}

	BeforeEach(func() {
		log = logger.Nop()
		ctx = context.Background()
	})

	Describe("NewDriver", func() {
		It("should return an error when DBPath is empty", func() {
			_, err := sqlitevec.NewDriver(sqlitevec.Config{DBPath: ""}, log)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("database path is required"))
		})

		It("should create a driver with an in-memory database", func() {
			d := newDriver()
			Expect(d).NotTo(BeNil())
			Expect(d.Close()).To(Succeed())
		})

		It("should error when dimension not specified", func() {
			_, err := sqlitevec.NewDriver(sqlitevec.Config{DBPath: ":memory:"}, log)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Add", func() {
		BeforeEach(func() {
			driver = newDriver()
		})

		AfterEach(func() {
			Expect(driver.Close()).To(Succeed())
		})

		It("should do nothing when given empty docs", func() {
			ack, err := driver.Add(ctx, []vector.Document{})
			Expect(err).NotTo(HaveOccurred())
			Expect(ack.Count).To(BeZero())
		})

		It("should add a document and acknowledge it", func() {
			ack, err := driver.Add(ctx, []vector.Document{
				{ID: "1", Embedding: []float32{0.1, 0.2, 0.3, 0.4}},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(ack.Count).To(Equal(1))
			Expect(ack.IDs).To(Equal([]string{"1"}))

			retrieved, err := driver.Get(ctx, []string{"1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieved).To(HaveLen(1))
			Expect(retrieved[0].ID).To(Equal("1"))
		})

		It("should replace the embedding of an existing document", func() {
			_, err := driver.Add(ctx, []vector.Document{
				{ID: "1", Embedding: []float32{1, 0, 0, 0}},
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = driver.Add(ctx, []vector.Document{
				{ID: "1", Embedding: []float32{0, 1, 0, 0}},
			})
			Expect(err).NotTo(HaveOccurred())

			retrieved, err := driver.Get(ctx, []string{"1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieved).To(HaveLen(1))
			Expect(retrieved[0].Embedding[1]).To(BeNumerically("~", 1, 0.001))
		})

		It("should reject embeddings with the wrong dimensions", func() {
			_, err := driver.Add(ctx, []vector.Document{
				{ID: "1", Embedding: []float32{1, 0}},
			})
			Expect(err).To(MatchError(vector.ErrDimensions))
		})
	})

	Describe("Query", func() {
		BeforeEach(func() {
			driver = newDriver()

			_, err := driver.Add(ctx, []vector.Document{
				{ID: "1", Embedding: []float32{1, 0, 0, 0}},
				{ID: "2", Embedding: []float32{0, 1, 0, 0}},
				{ID: "3", Embedding: []float32{0.9, 0.1, 0, 0}},
				{ID: "4", Embedding: []float32{0, 0, 1, 0}},
				{ID: "5", Embedding: []float32{0, 0, 0, 1}},
			})
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			Expect(driver.Close()).To(Succeed())
		})

		It("should return the closest document with its cosine similarity", func() {
			results, err := driver.Query(ctx, []float32{2, 0, 0, 0}, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].ID).To(Equal("1"))
			Expect(results[0].Score).To(BeNumerically("~", 1, 0.001))
		})

		It("should score orthogonal documents near zero", func() {
			results, err := driver.Query(ctx, []float32{0, 1, 0, 0}, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(results[0].ID).To(Equal("2"))
			Expect(results[len(results)-1].Score).To(BeNumerically("~", 0, 0.001))
		})

		It("should default topK to 10 when zero or negative", func() {
			results, err := driver.Query(ctx, []float32{1, 0, 0, 0}, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(5))
		})

		It("should return similarity scores in descending order", func() {
			results, err := driver.Query(ctx, []float32{1, 0.2, 0, 0}, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(5))

			for i := 1; i < len(results); i++ {
				Expect(results[i-1].Score).To(BeNumerically(">=", results[i].Score))
			}
		})

		It("should reject a query embedding with the wrong dimensions", func() {
			_, err := driver.Query(ctx, []float32{1, 0}, 1)
			Expect(err).To(MatchError(vector.ErrDimensions))
		})
	})

	Describe("Get", func() {
		BeforeEach(func() {
			driver = newDriver()

			_, err := driver.Add(ctx, []vector.Document{
				{ID: "1", Embedding: []float32{0.1, 0.2, 0.3, 0.4}},
				{ID: "2", Embedding: []float32{0.5, 0.6, 0.7, 0.8}},
			})
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			Expect(driver.Close()).To(Succeed())
		})

		It("should return nil for empty IDs", func() {
			docs, err := driver.Get(ctx, []string{})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(BeNil())
		})

		It("should return embeddings with retrieved documents", func() {
			docs, err := driver.Get(ctx, []string{"1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].Embedding).To(HaveLen(4))
			Expect(docs[0].Embedding[0]).To(BeNumerically("~", 0.1, 0.001))
			Expect(docs[0].Embedding[3]).To(BeNumerically("~", 0.4, 0.001))
		})

		It("should skip non-existent IDs", func() {
			docs, err := driver.Get(ctx, []string{"1", "nonexistent"})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].ID).To(Equal("1"))
		})
	})

	Describe("Delete", func() {
		BeforeEach(func() {
			driver = newDriver()

			_, err := driver.Add(ctx, []vector.Document{
				{ID: "1", Embedding: []float32{1, 0, 0, 0}},
				{ID: "2", Embedding: []float32{0, 1, 0, 0}},
				{ID: "3", Embedding: []float32{0, 0, 1, 0}},
			})
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			Expect(driver.Close()).To(Succeed())
		})

		It("should do nothing when given empty IDs", func() {
			Expect(driver.Delete(ctx, []string{})).To(Succeed())
		})

		It("should delete multiple documents", func() {
			Expect(driver.Delete(ctx, []string{"1", "2"})).To(Succeed())

			docs, err := driver.Get(ctx, []string{"1", "2", "3"})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].ID).To(Equal("3"))
		})

		It("should not error when deleting non-existent IDs", func() {
			Expect(driver.Delete(ctx, []string{"nonexistent"})).To(Succeed())
		})

		It("should remove documents from query results after deletion", func() {
			Expect(driver.Delete(ctx, []string{"3"})).To(Succeed())

			results, err := driver.Query(ctx, []float32{0, 0, 1, 0}, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			for _, result := range results {
				Expect(result.ID).NotTo(Equal("3"))
			}
		})
	})

	Describe("Interface compliance", func() {
		It("should implement vector.Driver interface", func() {
			var _ vector.Driver = (*sqlitevec.Driver)(nil)
		})
	})
})
