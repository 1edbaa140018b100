// Package testutil provides image fixtures and helpers shared by tests.
//
// Fixtures are generated in memory so tests never depend on files checked
// into the repository. Tests that need the external image tool call
// RequireMagick, which skips the test when identify is not installed.
package testutil
