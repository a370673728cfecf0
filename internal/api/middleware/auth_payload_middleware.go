package middleware

import (
	"net/http"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/infra/identity"
	"github.com/RoyceAzure/lab/storefront/internal/util"
	"github.com/rs/zerolog/log"
)

// 驗證token 但若token有任何錯誤 都不會中斷，這裡僅做解析token payload, 若payload有錯誤，則不會設置context
func AuthPayloadMiddleware(verifier identity.ITokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			payload, ok := checkAuthPayload(verifier, r)
			if ok {
				next.ServeHTTP(w, r.WithContext(util.WithTokenPayload(r.Context(), payload)))
			} else {
				next.ServeHTTP(w, r)
			}
		})
	}
}

func checkAuthPayload(verifier identity.ITokenVerifier, r *http.Request) (*identity.Payload, bool) {
	if verifier == nil {
		return nil, false
	}
	authorizationHeader := r.Header.Get(string(constants.AuthorizationHeaderKey))
	if len(authorizationHeader) == 0 {
		return nil, false
	}

	fields := strings.Fields(authorizationHeader)
	if len(fields) < 2 {
		return nil, false
	}

	authorizationType := strings.ToLower(fields[0])
	if authorizationType != string(constants.AuthorizationTypeBearer) {
		return nil, false
	}

	payload, err := verifier.VerifyToken(r.Context(), fields[1])
	if err != nil {
		log.Debug().Err(err).Str("request_id", util.GetRequestIDFromContext(r.Context())).Msg("verify token failed")
		return nil, false
	}

	return payload, true
}
