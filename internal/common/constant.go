package common

// AuthorizationHeaderName carries the bearer credential on every remote call.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the credential in the Authorization header value.
const BearerPrefix = "Bearer "
