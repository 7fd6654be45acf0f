// Package environment propagates the application environment (development,
// staging, production) through context.Context and structured logs.
//
//	env := environment.Parse(os.Getenv("APP_ENV"))
//	r.Use(environment.Middleware(env))
//
//	if environment.IsProduction(ctx) {
//		// production-specific behaviour
//	}
//
// Missing values result in the zero value ("").
package environment
