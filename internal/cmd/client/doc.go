// Package client contains Cobra CLI commands for taskd.
package client
