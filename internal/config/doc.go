// Package config defines the application's configuration structures and the
// viper-based loading logic that populates them from environment variables
// and an optional YAML file.
package config
