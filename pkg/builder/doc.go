// Package builder configures, builds, runs and debugs the DmxRasterizer executable
// by delegating to external tools (a cmake-style generator, a ninja-style executor
// and a debugger).
// Each action verifies the tools it needs, runs at most one child process at a time
// and reports failures as typed errors that ExitCode turns into the exit status.
package builder
