// Package acl is the anti-corruption layer between the quote application and
// the HTTP APIs it talks to.
//
// Two adapters live here:
//
//   - [UpstreamSource] reaches one quotable.io host for the proxy. It keeps
//     the payload as raw bytes because the proxy forwards it unchanged, and
//     only checks that it is a JSON document.
//   - [ProxyClient] is used by the quote view to call the proxy. It decodes
//     the payload into a [domain.Quote] and reports proxy error bodies as
//     failures.
//
// Transport failures, open circuit breakers, non-2xx statuses and error
// bodies all become [domain.ErrUnavailable]; payloads missing content or
// author become [domain.ErrValidation]. Callers never see [clients] errors
// or wire DTOs.
package acl
