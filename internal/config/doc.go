// Package config loads the notifier's settings with viper from an optional
// config.yaml and NOTIFIER_-prefixed environment variables, applies
// defaults for every key, and validates the result with validator tags.
package config
