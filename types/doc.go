// Package types provides core type definitions and interfaces for the sessionview library.
//
// This package contains shared types that are used across multiple packages in
// the library. By keeping these types in a separate package, we avoid import
// cycles between the main sessionview package and its internal implementations.
//
// Key types:
//   - ViewState: Immutable view-state snapshot for one session detail screen
//   - Session / SessionCollection: Conference session data
//   - Repository: External data source supplying streams and accepting writes
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
