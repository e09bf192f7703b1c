package common

// AuthorizationHeaderName is the HTTP header carrying the bearer session token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header value.
const BearerPrefix = "Bearer "

// AdminJobTitle is the identity-provider job title that grants triage rights.
const AdminJobTitle = "Admin"
