// Package cli implements the emgscope command-line interface.
//
// Each cobra command is a thin shell: it parses flags, loads the config
// and hands off to the internal packages that do the work.
//
// # Command Structure
//
//	emgscope [address]           - Live dashboard (same as 'monitor')
//	emgscope monitor [address]   - Live dashboard, or text with --plain
//	emgscope decode [file]       - Run the protocol matcher over a capture
//	emgscope ports               - List serial ports, --use to pick one
//	emgscope init                - Create .emgscope.yaml
//	emgscope testvector <csv>    - Write a firmware test vector header
//	emgscope version
//	emgscope completion <shell>
//
// # Flag Handling
//
// Global flags (--config, --no-color, --debug, --log-file) live on the root
// command. The monitor flags are registered on both the root and monitor
// commands so that a bare 'emgscope --plain' works.
//
// # Terminal Ownership
//
// While the dashboard runs it owns the terminal. Log output is sent to
// --log-file when given and discarded otherwise. With --plain, or when
// stdout is not a terminal, values are printed as text and logs go to stderr.
package cli
