package endpoint

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
)

// requestSpec describes one test call. registerPath and handler are only
// used by doRequestWithHandler, which mounts the handler on a bare router.
type requestSpec struct {
	method       string
	registerPath string
	requestPath  string
	handler      gin.HandlerFunc
	body         interface{}
	headers      map[string]string
}

func encodeBody(body interface{}) (io.Reader, bool, error) {
	switch v := body.(type) {
	case nil:
		return http.NoBody, false, nil
	case string:
		return bytes.NewBufferString(v), true, nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, false, err
		}
		return bytes.NewReader(b), true, nil
	}
}

// performRequest sends spec through r and decodes the JSON envelope, if any.
func performRequest(r *gin.Engine, spec requestSpec) (*httptest.ResponseRecorder, map[string]interface{}, error) {
	body, isJSON, err := encodeBody(spec.body)
	if err != nil {
		return nil, nil, err
	}
	req := httptest.NewRequest(spec.method, spec.requestPath, body)
	if isJSON {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range spec.headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.Len() == 0 {
		return w, nil, nil
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		return w, nil, err
	}
	return w, resp, nil
}

func doRequestWithHandler(r *gin.Engine, spec requestSpec) (*httptest.ResponseRecorder, map[string]interface{}, error) {
	r.Handle(spec.method, spec.registerPath, spec.handler)
	return performRequest(r, spec)
}
