// Package cli provides the storeit command-line client.
//
// Every file command can be run once from the command line, with the
// credential taken from --token or STOREIT_TOKEN, or inside the interactive
// shell started when no command is given. The shell keeps the session in
// memory, runs uploads in the background and offers an interactive search
// box. Both modes drive the same upload, action and search controllers.
package cli
