// Package server provides the HTTP server of `taskrunner serve`.
//
// # Architecture Overview
//
//	┌───────────────────────────────────────────────────────────────┐
//	│                         HTTP Server :8000                     │
//	├───────────────────────────────────────────────────────────────┤
//	│                       Middleware Stack                        │
//	│  ┌─────────────────────────────────────────────────────────┐  │
//	│  │  Logger (request/response logging)                      │  │
//	│  │  Recovery (panic recovery with zap logging)             │  │
//	│  └─────────────────────────────────────────────────────────┘  │
//	├───────────────────────────────────────────────────────────────┤
//	│  /health                 liveness                             │
//	│  /api/v1                 handlers, registered via callback    │
//	│  anything else           404 JSON error                       │
//	└───────────────────────────────────────────────────────────────┘
//
// # Server Modes
//
// Development Mode (Mode = "dev"): gin runs in debug mode.
// Production Mode (Mode = "prod"): gin runs in release mode.
//
// # Server Lifecycle
//
//	srv, err := server.NewServer(cfg, func(router *gin.RouterGroup) {
//	    v1.RegisterHandlers(router, handler)
//	})
//
//	go func() {
//	    errCh <- srv.Start(ctx) // nil once stopped
//	}()
//
//	<-ctx.Done()
//	srv.Stop(context.WithoutCancel(ctx))
//
// Stop waits at most ten seconds for in-flight requests.
//
// # Middleware
//
// middlewares.Logger logs the start of each request at debug level and its
// end with status and latency, under the "http" logger name.
// ginzap.RecoveryWithZap recovers handler panics, logs the stack and answers 500.
package server
