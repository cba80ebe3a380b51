// Package utils provides input validation shared by the HTTP and stream
// handlers.
//
// Validation:
//   - String length and content checks
//   - Page URL and title limits
//   - Batch size limits
//   - Stream message size limit
package utils
