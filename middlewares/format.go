package middlewares

import (
	"errors"
	"net/http"

	"HospitalMS/models"
	"HospitalMS/pagination"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"
)

// Localized messages shared by the handlers.
const (
	MsgCreated        = "تم الإنشاء بنجاح"
	MsgUpdated        = "تم التحديث بنجاح"
	MsgDeleted        = "تم الحذف بنجاح"
	MsgInvalidInput   = "البيانات المدخلة غير صالحة"
	MsgUnauthorized   = "غير مصرح"
	MsgForbidden      = "ليس لديك صلاحية للقيام بهذا الإجراء"
	MsgNotFound       = "العنصر غير موجود"
	MsgConflict       = "العنصر موجود مسبقاً"
	MsgTransition     = "لا يمكن تغيير حالة الزيارة"
	MsgMissingAssign  = "يجب تحديد الطبيب والمستشفى قبل إضافة السجلات الطبية"
	MsgInternal       = "حدث خطأ في الخادم"
	MsgTooManyRequest = "عدد الطلبات كبير جداً، حاول لاحقاً"
)

// Envelope is the body of single-object responses.
type Envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// ListEnvelope is the body of list responses.
type ListEnvelope struct {
	Data       interface{}     `json:"data"`
	Pagination pagination.Meta `json:"pagination"`
}

// RespondJSON writes a JSON response to the client.
func RespondJSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

func RespondData(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

func RespondList(c *gin.Context, data interface{}, meta pagination.Meta) {
	c.JSON(http.StatusOK, ListEnvelope{Data: data, Pagination: meta})
}

// HttpError maps a service error to its status code and localized message.
// Causes of 500 responses are logged and never sent to the client.
func HttpError(c *gin.Context, err error) {
	status, body := errorBody(err)
	if status == http.StatusInternalServerError {
		log := Logger(c)
		log.Error().Err(err).Str("request_id", RequestID(c)).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, body)
}

// BadRequest answers a payload that could not be decoded.
func BadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Envelope{Message: MsgInvalidInput, Errors: map[string]string{"body": err.Error()}})
}

func errorBody(err error) (int, Envelope) {
	switch {
	case errors.Is(err, models.ErrMissingAssignment):
		return http.StatusBadRequest, Envelope{Message: MsgMissingAssign}
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest, Envelope{Message: MsgInvalidInput, Errors: fieldErrors(err)}
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized, Envelope{Message: MsgUnauthorized}
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden, Envelope{Message: MsgForbidden}
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, Envelope{Message: MsgNotFound}
	case errors.Is(err, models.ErrInvalidTransition):
		return http.StatusConflict, Envelope{Message: MsgTransition}
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict, Envelope{Message: MsgConflict}
	default:
		return http.StatusInternalServerError, Envelope{Message: MsgInternal}
	}
}

func fieldErrors(err error) map[string]string {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	flatten("", verrs, out)
	return out
}

func flatten(prefix string, verrs validation.Errors, out map[string]string) {
	for field, e := range verrs {
		key := field
		if prefix != "" {
			key = prefix + "." + field
		}
		if nested, ok := e.(validation.Errors); ok {
			flatten(key, nested, out)
			continue
		}
		out[key] = e.Error()
	}
}

// Logger returns the request scoped logger set by RequestLogger.
func Logger(c *gin.Context) *zerolog.Logger {
	if l, ok := c.Get(loggerKey); ok {
		if log, ok := l.(*zerolog.Logger); ok {
			return log
		}
	}
	nop := zerolog.Nop()
	return &nop
}
