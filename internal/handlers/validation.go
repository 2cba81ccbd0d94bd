package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// validTaxNo accepts Turkish tax identifiers: a 10-digit VKN for companies
// or an 11-digit TCKN for individuals.
func validTaxNo(fl validator.FieldLevel) bool {
	taxNo := fl.Field().String()
	if len(taxNo) != 10 && len(taxNo) != 11 {
		return false
	}
	for _, r := range taxNo {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// registerCustomValidations hooks domain-specific rules into gin's binding
// validator so they can be used as struct tags on request DTOs.
func registerCustomValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("taxno", validTaxNo)
	}
}
