// Package errors provides the classified error primitives used across docnav.
//
// Every failure that crosses a component boundary (fetcher, decoder, sidebar cache,
// document resource, CLI) is a ClassifiedError carrying a category, a severity and a
// retry hint. Categories double as the navigation error taxonomy:
//
//   - CategoryNetwork: transport failure or unexpected HTTP status
//   - CategoryNotFound: the fetch key does not exist (HTTP 404, missing file)
//   - CategoryDecode: the payload does not match the expected document/sidebar shape
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryNetwork, "fetch failed").
//		Retryable().
//		WithContext("fetch_key", key).
//		Build()
package errors
