// Package auth provides the optional shared API key check for docrat-server.
//
// UnaryAPIKey(header, key) is a gRPC UnaryServerInterceptor that validates
// the key in the named metadata header; StreamAPIKey does the same for
// streaming calls such as health Watch. RequireAPIKey(header, key, next)
// wraps an http.Handler with the same check.
//
// An empty key disables the check and every call passes through. A missing
// or wrong key is rejected with codes.Unauthenticated or HTTP 401.
package auth
