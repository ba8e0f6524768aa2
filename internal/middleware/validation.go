package middleware

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// paramCodePattern is the shape of a catalog parameter code. Whether a
// well-formed code exists in the catalog is the service's decision.
var paramCodePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ValidationConfig registers extra binding validators.
type ValidationConfig struct {
	CustomValidators map[string]validator.Func
}

func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		CustomValidators: map[string]validator.Func{
			"paramcode": func(fl validator.FieldLevel) bool {
				return paramCodePattern.MatchString(fl.Field().String())
			},
		},
	}
}

// Validation configures gin's binding engine: domain validators from
// the config, and json tag names in validation errors so clients see
// the field names they sent.
func Validation(config ValidationConfig) gin.HandlerFunc {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		for tag, fn := range config.CustomValidators {
			if err := v.RegisterValidation(tag, fn); err != nil {
				panic(err)
			}
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return fld.Name
			}
			return name
		})
	}

	return func(c *gin.Context) {
		c.Next()
	}
}
