package http

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/order-management-api/internal/application/dto"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Los errores reportan el nombre JSON del campo.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// decimal.Decimal se valida como número (gt=0, required).
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

// bindBody parsea el JSON del body y aplica las reglas `validate` del DTO.
func bindBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return &requestError{status: fiber.StatusBadRequest, code: "INVALID_BODY", message: "cuerpo inválido"}
	}
	if err := validate.Struct(out); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return &requestError{status: fiber.StatusBadRequest, code: "INVALID_BODY", message: err.Error()}
		}
		fields := make([]dto.FieldError, 0, len(verrs))
		names := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			field := fe.Namespace()
			if _, rest, found := strings.Cut(field, "."); found {
				field = rest
			}
			fields = append(fields, dto.FieldError{Field: field, Rule: fe.Tag()})
			names = append(names, field)
		}
		return &requestError{
			status:  fiber.StatusBadRequest,
			code:    "VALIDATION",
			message: "campos inválidos: " + strings.Join(names, ", "),
			fields:  fields,
		}
	}
	return nil
}

// pathID lee un identificador numérico positivo de la ruta.
func pathID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &requestError{status: fiber.StatusBadRequest, code: "INVALID_ID", message: name + " debe ser un entero positivo"}
	}
	return id, nil
}
