package shared

import (
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
)

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

var jsonAPI = sonic.Config{
	UseNumber:            true,
	EscapeHTML:           false,
	SortMapKeys:          false,
	CompactMarshaler:     true,
	NoQuoteTextMarshaler: true,
	NoNullSliceOrMap:     true,
}.Froze()

// JSON is the sonic configuration shared by the response writer, the fiber app and the
// document store.
func JSON() sonic.API {
	return jsonAPI
}

var (
	successResponse            = mustMarshal(Response{Code: 200, Message: "Success"})
	createdResponse            = mustMarshal(Response{Code: 201, Message: "Created"})
	notFoundResponse           = mustMarshal(Response{Code: 404, Message: "Not Found"})
	unauthorizedResponse       = mustMarshal(Response{Code: 401, Message: "Unauthorized"})
	badRequestResponse         = mustMarshal(Response{Code: 400, Message: "Bad Request"})
	forbiddenResponse          = mustMarshal(Response{Code: 403, Message: "Forbidden"})
	internalErrorResponse      = mustMarshal(Response{Code: 500, Message: "Internal Server Error"})
	serviceUnavailableResponse = mustMarshal(Response{Code: 503, Message: "Service Unavailable"})
)

func mustMarshal(v interface{}) []byte {
	b, _ := jsonAPI.Marshal(v)
	return b
}

func cannedResponse(httpCode int, message string) ([]byte, bool) {
	switch httpCode {
	case 200:
		return successResponse, message == "Success"
	case 201:
		return createdResponse, message == "Created"
	case 400:
		return badRequestResponse, message == "Bad Request"
	case 401:
		return unauthorizedResponse, message == "Unauthorized"
	case 403:
		return forbiddenResponse, message == "Forbidden"
	case 404:
		return notFoundResponse, message == "Not Found"
	case 500:
		return internalErrorResponse, message == "Internal Server Error"
	case 503:
		return serviceUnavailableResponse, message == "Service Unavailable"
	}
	return nil, false
}

func ResponseJSON(c *fiber.Ctx, httpCode int, message string, data interface{}) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)

	if data == nil {
		if body, ok := cannedResponse(httpCode, message); ok {
			return c.Status(httpCode).Send(body)
		}
	}

	body, err := jsonAPI.Marshal(Response{
		Code:    httpCode,
		Message: message,
		Data:    data,
	})
	if err != nil {
		return err
	}
	return c.Status(httpCode).Send(body)
}

func ResponseOK(c *fiber.Ctx, data interface{}) error {
	return ResponseJSON(c, fiber.StatusOK, "Success", data)
}

// ResponseInternalError only echoes the error text when a detail is explicitly passed in,
// callers decide whether the environment allows it.
func ResponseInternalError(c *fiber.Ctx, err error) error {
	if err == nil {
		return ResponseJSON(c, fiber.StatusInternalServerError, "Internal Server Error", nil)
	}
	return ResponseJSON(c, fiber.StatusInternalServerError, "Internal Server Error", fiber.Map{"details": err.Error()})
}
