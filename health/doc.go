// Package health probes the liveness of upstream provider endpoints.
//
// A probe is a bounded-timeout request to a well-known liveness path;
// timeout or a non-2xx response means unhealthy. Verdicts are cached for a
// short TTL so rapid resolution attempts do not each issue a fresh probe,
// and concurrent probes of the same endpoint collapse into one request.
package health
