// Package common contains shared constants and sentinel errors used across
// career vault components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound requests.
const AccessTokenHeaderName = "access_token"

// UserIDMetadataKey names the authenticated principal in request context and logs.
const UserIDMetadataKey = "user_id"
