// Package httpserver runs an http.Handler with signal aware graceful shutdown
// and exposes a JSON health endpoint.
//
//	srv := httpserver.New(cfg.HTTP, log)
//	r.Get("/health", httpserver.HealthHandler(log, 2*time.Second,
//		httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)},
//	))
//	if err := srv.Run(ctx, r); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
package httpserver
