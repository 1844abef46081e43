package util

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/RoyceAzure/lab/ordertracker/internal/errs"
	"github.com/RoyceAzure/lab/ordertracker/internal/model"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	indexPattern    = regexp.MustCompile(`\[\d+\]`)
	passwordCharset = regexp.MustCompile(`^[A-Za-z\d@$!%*?#&]{6,50}$`)
)

// 特定欄位+tag 的錯誤訊息, key 為去掉 index 的欄位路徑
var messageOverrides = map[string]string{
	"items.required":           "At least one order item is required.",
	"items.min":                "At least one order item is required.",
	"status.required":          "Status is required.",
	"status.order_status":      "Status must be one of: created, dispatched, delivered, cancelled.",
	"email.required":           "Email is required.",
	"email.email":              "Enter a valid email.",
	"password.required":        "Password is required.",
	"password.strong_password": "Password must be 6+ characters & include: uppercase, lowercase, number & special character.",
}

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
		_ = v.RegisterValidation("strong_password", func(fl validator.FieldLevel) bool {
			return IsStrongPassword(fl.Field().String())
		})
		_ = v.RegisterValidation("order_status", func(fl validator.FieldLevel) bool {
			return model.OrderStatus(fl.Field().String()).IsValid()
		})
		validate = v
	})
	return validate
}

// IsStrongPassword 6~50 字元, 需包含大小寫英文, 數字與特殊符號
func IsStrongPassword(password string) bool {
	if !passwordCharset.MatchString(password) {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	return upper && lower && digit && special
}

// ValidateStruct 回傳所有欄位錯誤, 不會只回傳第一個
func ValidateStruct(s any) []errs.FieldError {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []errs.FieldError{{Field: "", Message: err.Error()}}
	}

	fields := make([]errs.FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		path := fieldPath(fe.Namespace())
		fields = append(fields, errs.FieldError{
			Field:   path,
			Message: fieldMessage(path, fe),
		})
	}
	return fields
}

// Validate 驗證失敗時回傳 errs.ValidationErrorCode
func Validate(s any) error {
	if fields := ValidateStruct(s); len(fields) > 0 {
		return errs.Validation(fields...)
	}
	return nil
}

// 去掉最外層 struct 名稱, e.g. CreateOrderModel.items[0].quantity -> items[0].quantity
func fieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}

func fieldMessage(path string, fe validator.FieldError) string {
	key := indexPattern.ReplaceAllString(path, "") + "." + fe.Tag()
	if msg, ok := messageOverrides[key]; ok {
		return msg
	}

	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "min":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("%s length must be at least %s characters long", name, fe.Param())
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("%s must contain at least %s items", name, fe.Param())
		default:
			return fmt.Sprintf("%s must be greater than or equal to %s", name, fe.Param())
		}
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s length must be less than or equal to %s characters long", name, fe.Param())
		}
		return fmt.Sprintf("%s must be less than or equal to %s", name, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", name, fe.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a valid id", name)
	case "email":
		return fmt.Sprintf("%s must be a valid email", name)
	case "order_status":
		return fmt.Sprintf("%s must be one of: created, dispatched, delivered, cancelled", name)
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}
