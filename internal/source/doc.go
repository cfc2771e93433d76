// Package source implements the five independent feed sources.
//
// Each [Fetcher] issues one GET through a [Transport] and decodes a JSON
// array of its category's entry type. Two transports ship with the package:
//
//   - [HTTPTransport] talks to a real endpoint (for example `mosaic serve`)
//     through an OpenTelemetry-instrumented net/http client.
//   - [SimulatedTransport] serves [Fixtures] in-process after a random
//     per-category delay so the application runs offline.
//
// Errors are classified at this boundary: a request that produced no
// response is an errors.TransportError, a non-2xx answer an
// errors.StatusError and an undecodable body an errors.FormatError.
// Cancelling the context aborts the in-flight request and returns the
// context's error unwrapped by any source error type.
package source
