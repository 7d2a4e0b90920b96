package client

import (
	"VidVault/internal/policy"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const humanPrefix = "Error uploading video. "

// Error 是一次失败的请求：Err非空表示没有拿到响应（网络错误），否则是服务端的错误响应
type Error struct {
	Status  int
	Message string
	Details json.RawMessage
	Err     error
	// MaxVideoBytes 是发起请求的Client配置的视频上限，413时用来提示用户；为0时按默认上限
	MaxVideoBytes int64
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request failed: %v", e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func decodeError(resp *http.Response) *Error {
	e := &Error{Status: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return e
	}
	var payload struct {
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	}
	if json.Unmarshal(body, &payload) == nil {
		e.Message = payload.Message
		e.Details = payload.Details
	}
	return e
}

// HumanMessage 把上传失败翻译成给用户看的一句话：
// 1、服务端给了message就用它 2、网络错误 3、413 4、其他
func HumanMessage(err error) string {
	if err == nil {
		return ""
	}
	var verr *policy.ValidationError
	if errors.As(err, &verr) {
		return humanPrefix + verr.Error()
	}

	var e *Error
	if !errors.As(err, &e) {
		return humanPrefix + "Please try again."
	}
	switch {
	case e.Message != "":
		return humanPrefix + e.Message
	case e.Err != nil:
		return humanPrefix + "Network error. Please check your connection."
	case e.Status == http.StatusRequestEntityTooLarge:
		limit := e.MaxVideoBytes
		if limit <= 0 {
			limit = policy.DefaultMaxVideoBytes
		}
		return humanPrefix + fmt.Sprintf("File size too large. Maximum size is %dMB.", limit>>20)
	default:
		return humanPrefix + "Please try again."
	}
}
