// Package console renders the builder's log events for a terminal.
package console
