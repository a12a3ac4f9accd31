// Package tabs owns the ordered collection of browsing tabs, the
// active-tab pointer, and navigation input classification.
//
// The registry is never empty: closing the last tab synthesizes a fresh
// blank one. Backend tab teardown is fire-and-forget so browser chrome
// never sticks on a tab that failed to close remotely.
package tabs
