package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/util"
)

const maxJSONBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body", service.ErrInvalidData)
	}
	return nil
}

// currentUserID 路由已掛 AuthMiddleware, 這裡只防 nil
func currentUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	payload := util.GetTokenPayloadFromContext(r.Context())
	if payload == nil || payload.UserID == "" {
		response.ErrorJSON(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return payload.UserID, true
}
