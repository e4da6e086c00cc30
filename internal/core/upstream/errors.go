package upstream

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"food-assistant/internal/pkg/common"
)

// Kind 外部調用失敗類型
type Kind string

const (
	KindAuthenticationFailed Kind = "AUTHENTICATION_FAILED"
	KindQuotaExceeded        Kind = "QUOTA_EXCEEDED"
	KindNotFound             Kind = "NOT_FOUND"
	KindUpstreamUnavailable  Kind = "UPSTREAM_UNAVAILABLE"
	KindMalformedResponse    Kind = "MALFORMED_RESPONSE"
	KindMissingID            Kind = "MISSING_ID"
)

// Error 外部 API 調用錯誤
type Error struct {
	Kind    Kind
	Service string // 例如 FoodData Central、Spoonacular
	Op      string
	Status  int
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Service)
	if e.Op != "" {
		sb.WriteString(" " + e.Op)
	}
	sb.WriteString(": " + strings.ToLower(string(e.Kind)))
	if e.Status != 0 {
		sb.WriteString(fmt.Sprintf(" (status %d)", e.Status))
	}
	if e.Detail != "" {
		sb.WriteString(": " + e.Detail)
	}
	if e.Err != nil {
		sb.WriteString(": " + e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError 創建外部調用錯誤
func NewError(kind Kind, service, op, detail string) *Error {
	return &Error{Kind: kind, Service: service, Op: op, Detail: detail}
}

// KindOf 取出錯誤類型，非外部調用錯誤回傳空字串
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// FromResponse 將 resty 調用結果轉換為錯誤，成功時回傳 nil
func FromResponse(service, op string, resp *resty.Response, err error) error {
	if err != nil {
		return &Error{Kind: KindUpstreamUnavailable, Service: service, Op: op, Err: err}
	}
	if resp == nil {
		return &Error{Kind: KindUpstreamUnavailable, Service: service, Op: op, Detail: "no response"}
	}
	status := resp.StatusCode()
	if status >= 200 && status < 300 {
		return nil
	}

	e := &Error{Service: service, Op: op, Status: status, Detail: errorDetail(resp.Body())}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Kind = KindAuthenticationFailed
	case status == http.StatusPaymentRequired || status == http.StatusTooManyRequests:
		e.Kind = KindQuotaExceeded
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
	default:
		e.Kind = KindUpstreamUnavailable
	}
	return e
}

// errorDetail 從錯誤響應中取出 message 欄位
func errorDetail(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := common.ParseJSONBytes(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	if payload.Error.Message != "" {
		return payload.Error.Message
	}
	return payload.Error.Code
}

// Message 將錯誤轉為給使用者看的訊息，NotFound 等情境由各服務自行描述
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "An unexpected error occurred. Please try again later."
	}

	switch e.Kind {
	case KindAuthenticationFailed:
		return fmt.Sprintf("Error: Authentication failed. Please check your %s API key.", e.Service)
	case KindQuotaExceeded:
		msg := fmt.Sprintf("Error: API quota exceeded. The %s plan limit has been reached, please try again later.", e.Service)
		if e.Detail != "" {
			msg += "\nDetails: " + e.Detail
		}
		return msg
	case KindNotFound:
		return fmt.Sprintf("Sorry, %s could not find what you asked for.", e.Service)
	case KindMalformedResponse:
		return fmt.Sprintf("Sorry, %s returned data I couldn't understand.", e.Service)
	case KindMissingID:
		return "Error: Found results, but could not retrieve a valid ID."
	default:
		return fmt.Sprintf("Sorry, %s is not reachable right now. Please try again in a moment.", e.Service)
	}
}
