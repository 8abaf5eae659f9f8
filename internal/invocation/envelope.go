package invocation

import (
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/amrrdev/officetext/internal/pipeline"
	"github.com/amrrdev/officetext/internal/types"
)

// Style tells which envelope shape a request arrived in.
type Style string

const (
	StyleHTTP     Style = "http"
	StyleWorkflow Style = "workflow"
)

type Request struct {
	Style    Style
	FileName string
}

// Response is the invocation output envelope.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

// Decode accepts an HTTP-style envelope, whose body is a JSON string, or a
// workflow-style envelope, whose body is already an object. Every failure
// wraps pipeline.ErrMalformedInput.
func Decode(raw []byte) (*Request, error) {
	if !gjson.ValidBytes(raw) {
		return nil, malformed("envelope is not valid JSON")
	}

	envelope := gjson.ParseBytes(raw)
	if !envelope.IsObject() {
		return nil, malformed("envelope must be a JSON object")
	}

	body := envelope.Get("body")

	var (
		style   Style
		payload gjson.Result
	)
	switch {
	case !body.Exists():
		return nil, malformed("envelope has no body")
	case body.Type == gjson.String:
		if !gjson.Valid(body.Str) {
			return nil, malformed("body is not valid JSON")
		}
		style, payload = StyleHTTP, gjson.Parse(body.Str)
	case body.IsObject():
		style, payload = StyleWorkflow, body
	default:
		return nil, malformed("body must be an object or a JSON string")
	}

	if !payload.IsObject() {
		return nil, malformed("body must be a JSON object")
	}

	fileName := payload.Get("file_name")
	if fileName.Type != gjson.String || fileName.Str == "" {
		return nil, malformed("body.file_name must be a non-empty string")
	}

	return &Request{Style: style, FileName: fileName.Str}, nil
}

// NewResponse wraps a result in the 200 output envelope.
func NewResponse(result *types.Result) (*Response, error) {
	body, err := sjson.Set("", "file_key", result.FileKey)
	if err != nil {
		return nil, err
	}
	body, err = sjson.Set(body, "original_file_name", result.OriginalFileName)
	if err != nil {
		return nil, err
	}
	return envelope(http.StatusOK, body), nil
}

// NewErrorResponse wraps a failure in the output envelope with status code.
func NewErrorResponse(status int, err error) *Response {
	body, serr := sjson.Set("", "error", err.Error())
	if serr != nil {
		body = `{"error":"internal error"}`
	}
	return envelope(status, body)
}

// WorkflowEnvelope builds the workflow-style envelope for fileName, as
// published to the extraction queue.
func WorkflowEnvelope(fileName string) ([]byte, error) {
	return sjson.SetBytes([]byte(`{}`), "body.file_name", fileName)
}

func envelope(status int, body string) *Response {
	return &Response{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}

func malformed(msg string) error {
	return fmt.Errorf("%w: %s", pipeline.ErrMalformedInput, msg)
}
