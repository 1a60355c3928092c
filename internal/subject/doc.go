// Package subject runs the toolchain executables under test.
//
// The harness only ever talks to a Runner: one method taking an argument
// list and returning the captured stdout, stderr and exit code. Command is
// the os/exec implementation; tests substitute fakes so discovery and oracle
// logic can be exercised without launching processes.
//
// Output is captured as raw bytes. Nothing is decoded, trimmed or merged:
// stdout and stderr land in independent buffers.
package subject
