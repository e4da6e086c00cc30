package upstream

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"food-assistant/internal/pkg/common"
)

const (
	defaultTimeout   = 10 * time.Second
	retryWaitTime    = 200 * time.Millisecond
	retryMaxWaitTime = 2 * time.Second
)

// Options 外部 API 客戶端設定
type Options struct {
	Service    string
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	// AuthParam 金鑰放在哪個 query 參數，例如 api_key 或 apiKey
	AuthParam string
	APIKey    string
}

// NewClient 創建 resty 客戶端，超時與重試只處理暫時性失敗
func NewClient(opts Options) *resty.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "food-assistant/1.0").
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(retryWaitTime).
		SetRetryMaxWaitTime(retryMaxWaitTime).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r != nil && r.StatusCode() >= http.StatusInternalServerError
		})

	if opts.AuthParam != "" {
		client.SetQueryParam(opts.AuthParam, opts.APIKey)
	}

	return client
}

// Get 發送 GET 請求並把結果轉換為 *Error
func Get(ctx context.Context, client *resty.Client, service, op, path string, pathParams, query map[string]string) (*resty.Response, error) {
	start := time.Now()
	resp, err := client.R().
		SetContext(ctx).
		SetPathParams(pathParams).
		SetQueryParams(query).
		Get(path)

	err = FromResponse(service, op, resp, err)
	common.LogUpstreamCall(service, op, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Decode 解析響應，失敗時回傳 MalformedResponse
func Decode(service, op string, resp *resty.Response, v interface{}) error {
	if err := common.ParseJSONBytes(resp.Body(), v); err != nil {
		return &Error{Kind: KindMalformedResponse, Service: service, Op: op, Err: err}
	}
	return nil
}
