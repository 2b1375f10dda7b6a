// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("period_type", validatePeriodType)
		_ = v.RegisterValidation("chart_group", validateChartGroup)
		_ = v.RegisterValidation("record_sort", validateRecordSort)
	}
}

func validatePeriodType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "monthly", "yearly":
		return true
	}
	return false
}

func validateChartGroup(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "category", "subCategory":
		return true
	}
	return false
}

func validateRecordSort(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "newest", "oldest", "highest", "lowest":
		return true
	}
	return false
}
