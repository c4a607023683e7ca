// Package process terminates the headless Chrome tree started for PDF export.
//
// Chrome forks renderer and GPU helpers that survive when only the parent is
// signalled, so export shutdown kills the whole group.
package process
