// Package testing provides test utilities for the sessionview library.
//
// It follows Go's convention of providing testing utilities in a dedicated
// package (similar to net/http/httptest).
//
// Key utilities:
//   - NewTestLogger: types.Logger that writes to the testing.T log
//   - NewScriptedRepository: in-memory Repository with controllable streams
//     and injectable failures
//   - StartEmbeddedNATS: single NATS server with JetStream for transport tests
//
// Example usage:
//
//	import (
//	    "testing"
//	    svtest "github.com/ryo-makiyama/sessionview/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    repo := svtest.NewScriptedRepository()
//	    // Drive repo.PublishSessions / repo.PublishCount from the test
//	}
package testing
