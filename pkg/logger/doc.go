// Package logger builds *slog.Logger instances with environment presets and
// context extractors.
//
// New wraps the JSON or text handler in LogHandlerDecorator, which pulls
// request scoped attributes such as the request id or the resolved tenant id
// out of the context on every record:
//
//	log := logger.New(
//		logger.WithEnvironment("production", "sitekit"),
//		logger.WithContextExtractors(
//			requestid.LoggerExtractor(),
//			tenant.LoggerExtractor(),
//		),
//	)
//	log.InfoContext(ctx, "domain added", logger.Domain("shop.acme.com"))
//
// Attribute helpers in attr.go keep key names consistent across packages.
package logger
