// Package config defines taskd's process configuration: defaults, JSON file
// loading, and TASKD_* environment overlays. Flag handling lives with the CLI;
// this package only knows about files and the environment.
package config
