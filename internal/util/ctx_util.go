package util

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/infra/identity"
)

func GetTokenPayloadFromContext(ctx context.Context) *identity.Payload {
	var tokenPayload *identity.Payload

	if v := ctx.Value(constants.AuthorizationPayloadKey); v != nil {
		tokenPayload, _ = v.(*identity.Payload)
	}

	return tokenPayload
}

func WithTokenPayload(ctx context.Context, payload *identity.Payload) context.Context {
	return context.WithValue(ctx, constants.AuthorizationPayloadKey, payload)
}

func GetRequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(constants.RequestIDKey).(string); ok {
		return v
	}
	return "unknown"
}
