// Package requestid attaches a correlation id to every HTTP request.
//
// A valid client supplied X-Request-ID header is reused, anything else is
// replaced with a fresh UUID. The id is stored in the request context, echoed
// in the response and picked up by structured logs through LoggerExtractor.
package requestid
