// Package cli provides shared helpers for the callisto command line tool:
// output formatting for command results, typed command errors, and signal
// handling for long-running commands.
package cli
