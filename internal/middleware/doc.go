// Package middleware provides the HTTP middleware chain of the search service.
//
// The server wraps its mux as
//
//	middleware.Chain(mux,
//		middleware.RequestID,
//		middleware.Logger(logger),
//		middleware.Recovery,
//		metrics.InstrumentHandler,
//		middleware.CORS(origins),
//		middleware.RateLimit(limiter),
//		middleware.Compress,
//	)
//
// Rate limiting is a token bucket per client address. Handlers read the
// request identifier with GetRequestID.
package middleware
