package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"course-hub/backend/internal/dto"
)

// init 注册 json/form tag 作为校验错误中的字段名
func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})
}

// bindErrorFields 将 binding 校验错误转换为字段级错误列表
// 非校验类错误（如 JSON 语法错误）返回空列表
func bindErrorFields(err error) []dto.FieldError {
	fields := make([]dto.FieldError, 0)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fields
	}

	for _, fe := range verrs {
		fields = append(fields, dto.FieldError{
			Field:   fe.Field(),
			Message: fieldErrorMessage(fe),
		})
	}
	return fields
}

// fieldErrorMessage 按校验 tag 生成中文错误消息
func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "不能为空"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("长度不能少于 %s 个字符", fe.Param())
		}
		return fmt.Sprintf("不能小于 %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("长度不能超过 %s 个字符", fe.Param())
		}
		return fmt.Sprintf("不能大于 %s", fe.Param())
	case "email":
		return "邮箱格式无效"
	case "uuid":
		return "必须是有效的 UUID"
	case "oneof":
		return fmt.Sprintf("必须是以下值之一: %s", strings.ReplaceAll(fe.Param(), " ", " / "))
	case "dive":
		return "列表元素格式无效"
	default:
		return "格式无效"
	}
}
