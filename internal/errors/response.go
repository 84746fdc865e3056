package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ErrorResponse 표준 에러 응답 구조
type ErrorResponse struct {
	Error   string `json:"error"`   // 에러 코드 (클라이언트 매핑용)
	Message string `json:"message"` // 직원에게 보여질 한글 메시지
}

// ValidationError 필드별 검증 오류를 포함한 응답
type ValidationError struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"` // json 필드명 -> 오류 메시지
}

// RespondWithError writes an ErrorResponse with the given status.
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "로그인이 필요합니다"
	}
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func Conflict(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusConflict, errorCode, message)
}

func ServiceUnavailable(c *gin.Context, message string) {
	RespondWithError(c, http.StatusServiceUnavailable, InternalConfigError, message)
}

// BindError answers a failed ShouldBind* call with 400. Validator failures
// are reported per json field; malformed bodies get VALIDATION_INVALID_FORMAT.
func BindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[jsonFieldName(fe)] = fieldMessage(fe)
		}
		c.JSON(http.StatusBadRequest, ValidationError{
			Error:   ValidationInvalidInput,
			Message: "입력 정보가 올바르지 않습니다",
			Fields:  fields,
		})
		return
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		BadRequest(c, ValidationInvalidFormat, "요청 본문 형식이 올바르지 않습니다")
		return
	}

	BadRequest(c, ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
}

// jsonFieldName converts a struct field name to the snake_case key used by
// the request bodies.
func jsonFieldName(fe validator.FieldError) string {
	name := fe.Field()
	var b strings.Builder
	prevLower := false
	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			if prevLower {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
			prevLower = false
		} else {
			prevLower = true
		}
		b.WriteRune(r)
	}
	return b.String()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "필수 항목입니다"
	case "email":
		return "이메일 형식이 올바르지 않습니다"
	case "min":
		return "최소 " + fe.Param() + " 이상이어야 합니다"
	case "max":
		return "최대 " + fe.Param() + " 이하여야 합니다"
	case "gte":
		return fe.Param() + " 이상이어야 합니다"
	case "oneof":
		return "허용 값: " + fe.Param()
	default:
		return "값이 올바르지 않습니다"
	}
}
