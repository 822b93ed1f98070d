// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Descriptor problems are reported with one of three codes, each carrying
// the offending field path:
//
//   - SCHEMA_ERROR: a required field is absent or a value is malformed
//   - REFERENCE_ERROR: a mount, env var, probe or service names something
//     the component never declared
//   - PARAMETER_ERROR: a ${PARAM} placeholder has no value and no default
//
// Example usage:
//
//	err := errors.Reference("components[0].mounts[1].name",
//	    "volume %q is not a declared config bundle, secret or storage claim", "cache-volume")
//	if errors.IsReferenceError(err) {
//	    // ...
//	}
package errors
