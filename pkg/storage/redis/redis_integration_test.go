//go:build integration

package redis_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	goredis "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/papercomputeco/chatmem/pkg/storage"
	"github.com/papercomputeco/chatmem/pkg/storage/redis"
	testutils "github.com/papercomputeco/chatmem/pkg/utils/test"
)

var _ = Describe("Driver against a real Redis", Ordered, func() {
	var client *goredis.Client

	BeforeAll(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
		defer cancel()

		container, err := tcredis.Run(ctx, "redis:7-alpine")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			Expect(testcontainers.TerminateContainer(container)).To(Succeed())
		})

		uri, err := container.ConnectionString(ctx)
		Expect(err).NotTo(HaveOccurred())

		opts, err := goredis.ParseURL(uri)
		Expect(err).NotTo(HaveOccurred())
		client = goredis.NewClient(opts)
		DeferCleanup(client.Close)
	})

	BeforeEach(func() {
		Expect(client.FlushDB(context.Background()).Err()).To(Succeed())
	})

	for _, mode := range []redis.ReplaceMode{redis.ReplaceSequential, redis.ReplaceAtomic} {
		Context(string(mode), func() {
			testutils.DescribeDriverContract(func() storage.Driver {
				// The shared client outlives each driver, so drivers are not closed here.
				return redis.NewDriverWithClient(client, redis.WithReplaceMode(mode))
			})
		})
	}
})
