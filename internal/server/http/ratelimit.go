package http

import (
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlib "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/1anshu-stack/backend/internal/common"
)

const rateLimitPrefix = "backend:limiter"

// NewIPRateLimiter limits requests per client IP. rateFormatted follows the
// limiter format ("20-M", "100-H"); empty disables limiting. Counters live in
// Redis when a client is given, in memory otherwise.
func NewIPRateLimiter(rateFormatted string, client *redis.Client) (func(next http.Handler) http.Handler, error) {
	if rateFormatted == "" {
		return noopMiddleware, nil
	}
	rate, err := limiter.NewRateFromFormatted(rateFormatted)
	if err != nil {
		return nil, err
	}

	var store limiter.Store
	if client != nil {
		store, err = sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: rateLimitPrefix})
		if err != nil {
			return nil, err
		}
	} else {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: rateLimitPrefix})
	}

	mw := stdlib.NewMiddleware(limiter.New(store, rate),
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			writeErr(w, common.TooManyRequests("Too many requests, try again later"))
		}),
	)
	return mw.Handler, nil
}

func noopMiddleware(next http.Handler) http.Handler {
	return next
}
