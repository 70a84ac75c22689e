// Package app contains the logic behind the typesafety command: loading
// contract files, matching values against criteria and reporting results.
// It is decoupled from the CLI that drives it.
package app
