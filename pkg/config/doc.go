// Package config loads typed configuration from environment variables using
// github.com/caarlos0/env, with optional .env files read by godotenv.
//
// Nested structs are parsed recursively, so an application config can embed
// the Config types of the packages it wires:
//
//	type Config struct {
//		Tenant tenant.Config
//		HTTP   httpserver.Config
//	}
//
//	_ = config.LoadEnv()
//	var cfg Config
//	config.MustLoad(&cfg)
package config
