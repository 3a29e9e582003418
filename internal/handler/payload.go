package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const maxFormMemory = 1 << 20

var errUnsupportedBody = errors.New("unsupported content type")

// readPayload collects the request body as raw key/value pairs. JSON objects
// keep their value types; form fields keep their first value.
func readPayload(c *gin.Context) (map[string]interface{}, error) {
	payload := make(map[string]interface{})

	switch c.ContentType() {
	case binding.MIMEJSON, "":
		if c.Request.Body == nil || c.Request.ContentLength == 0 {
			return payload, nil
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			return nil, fmt.Errorf("decode json body: %w", err)
		}
	case binding.MIMEPOSTForm:
		if err := c.Request.ParseForm(); err != nil {
			return nil, fmt.Errorf("parse form: %w", err)
		}
		copyForm(payload, c.Request.PostForm)
	case binding.MIMEMultipartPOSTForm:
		if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil {
			return nil, fmt.Errorf("parse multipart form: %w", err)
		}
		copyForm(payload, c.Request.PostForm)
	default:
		return nil, errUnsupportedBody
	}
	return payload, nil
}

func copyForm(dst map[string]interface{}, form map[string][]string) {
	for key, values := range form {
		if len(values) > 0 {
			dst[key] = values[0]
		}
	}
}
