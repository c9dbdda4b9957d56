// Package auth authenticates callers of the admin surface.
//
// Bearer tokens are HMAC-signed JWTs verified by JWTAuthenticator. The HTTP
// middleware in this package puts the resulting Identity on the request
// context and enforces role requirements per route.
package auth
