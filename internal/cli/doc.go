// Package cli builds the typesafety command tree, binds flags and
// environment variables into the application's configuration, and maps
// failures to process exit codes.
package cli
