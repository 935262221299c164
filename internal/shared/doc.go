// Package shared provides common utilities and test helpers used across the
// agriprep codebase. It serves as a central location for functionality that
// doesn't belong to any specific domain or architectural layer.
//
// # Structure
//
// The package is organized into the following components:
//
// - testutil: Testing utilities including the buffered slog handler and log assertions
//
// # Usage Guidelines
//
// This package should only contain:
//
// 1. Test utilities used by multiple packages
// 2. Generic helper functions with no domain-specific logic
//
// It should NOT contain:
//
// 1. Business logic or domain-specific code
// 2. External dependencies beyond standard library
// 3. Circular dependencies with other internal packages
//
// # Test Utilities
//
// The testutil subpackage captures slog output during tests so packages can
// assert on the warnings a processing stage emitted:
//
//	func TestSomething(t *testing.T) {
//	    logger, handler := testutil.NewTestLogger(t)
//
//	    svc := preprocess.NewCleaner(logger, policy.AgriClimate())
//	    // exercise svc, then assert on handler records
//	    testutil.AssertLogContains(t, handler, slog.LevelWarn, "column not found")
//	}
package shared
