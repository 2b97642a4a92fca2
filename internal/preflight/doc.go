// Package preflight inspects a game folder before launch and for the
// doctor command.
//
// Launching runs only the marker and proxy-library checks. Both test for
// existence and never read contents. A missing marker is critical; a
// missing library warns. The doctor command adds the executable, write
// permission and free-space checks, and Summarize turns any result set
// into a Report.
package preflight
