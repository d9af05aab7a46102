// Package commands implements the hungry CLI.
//
// Every invocation builds one application context in the root command's
// PersistentPreRunE, resumes the saved session from the state directory and
// writes it back when the command finishes. The shell command keeps one
// context alive for a whole interactive session.
package commands
