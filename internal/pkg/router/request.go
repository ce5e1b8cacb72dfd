package router

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/isaback/internal/pkg/goerror"
)

// Request wraps http.Request with helpers for inbound handlers.
type Request struct {
	// Request is the underlying http.Request.
	*http.Request

	body    []byte
	hasBody bool
}

// GetParam reads a path parameter stored by httprouter.
func (r *Request) GetParam(key string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(key)
}

// GetQuery returns the trimmed query value for key.
func (r *Request) GetQuery(key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// GetQueryInt32 parses an optional int32 query value. Missing means zero.
func (r *Request) GetQueryInt32(key string) (int32, error) {
	queryValue := r.GetQuery(key)
	if queryValue == "" {
		return 0, nil
	}

	value, err := strconv.ParseInt(queryValue, 10, 32)
	if err != nil {
		return 0, goerror.NewInvalidFormat("Invalid query " + key)
	}

	return int32(value), nil
}

// PeekBody returns the raw body and leaves it readable for later decoding.
func (r *Request) PeekBody() ([]byte, error) {
	if r.hasBody {
		return r.body, nil
	}
	if r.Body == nil {
		r.hasBody = true
		return nil, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, goerror.NewApplication(http.StatusRequestEntityTooLarge, "Request body too large")
		}
		return nil, goerror.NewInvalidFormat()
	}

	r.body, r.hasBody = body, true
	r.Body = io.NopCloser(bytes.NewReader(body))

	return body, nil
}

// DecodeBody decodes the JSON body into dst. Unknown fields are ignored.
func (r *Request) DecodeBody(dst any) error {
	body, err := r.PeekBody()
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(dst); err != nil {
		return goerror.NewInvalidFormat()
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return goerror.NewInvalidFormat()
	}

	return nil
}
