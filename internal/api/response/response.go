package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/infra/identity"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/util"
	"github.com/rs/zerolog/log"
)

const InternalErrorMessage = "Internal server error"

// Fields 成功回應時與 success/message 攤平在同一層的資料
type Fields map[string]any

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("write response failed")
	}
}

// SuccessJSON {"success": true, "message": msg, ...fields}
func SuccessJSON(w http.ResponseWriter, message string, fields Fields) {
	body := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		body[k] = v
	}
	body["success"] = true
	body["message"] = message
	writeJSON(w, http.StatusOK, body)
}

func ErrorJSON(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: false, Message: message})
}

// StatusOf service 的 sentinel error 對應到 http status
func StatusOf(err error) int {
	switch {
	case errors.Is(err, identity.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidData), errors.Is(err, service.ErrPaymentVerification):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// HandleError 4xx 回傳錯誤訊息, 其他一律回傳通用訊息並記錄原因
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", util.GetRequestIDFromContext(r.Context())).
			Str("method", r.Method).
			Str("url", r.URL.String()).
			Msg("request failed")
		ErrorJSON(w, status, InternalErrorMessage)
		return
	}
	ErrorJSON(w, status, message(err))
}

func message(err error) string {
	var stockErr *service.StockError
	if errors.As(err, &stockErr) {
		return stockErr.Error()
	}
	if errors.Is(err, service.ErrPaymentVerification) {
		return service.ErrPaymentVerification.Error()
	}
	return err.Error()
}
