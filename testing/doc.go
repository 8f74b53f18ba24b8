// Package testing provides test utilities for the recycler library.
//
// This package offers helpers for exercising the coordinator and its
// collaborators, following Go's convention of providing testing utilities in
// a dedicated package (similar to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: In-process NATS server for transport tests
//   - NewTestLogger: Logger that writes through testing.T
//   - NewRecordingBinder: SlotBinder capturing every rebind notification
//   - NewScriptedContent: Content actor driven by a test script
//
// Example usage:
//
//	import (
//	    "testing"
//	    rectesting "github.com/lelandrichardson/recycler/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    _, nc := rectesting.StartEmbeddedNATS(t)
//	    // Use nc for your tests
//	}
package testing
