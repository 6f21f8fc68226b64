// Package config loads project configuration from .volley.yml: named
// variable environments, option defaults applied below CLI flags, and
// the history store location.
package config
