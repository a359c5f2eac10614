package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/quizforge/scorm-engine/internal/models"
)

// Validator combines struct tag validation with the semantic checks a test
// definition needs before the engine will run it.
type Validator struct {
	structValidator *validator.Validate
	testValidator   *TestValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
		testValidator:   NewTestValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// ValidateTest performs complete validation of a test definition: struct tags
// first, then the index and reference checks tags cannot express.
func (v *Validator) ValidateTest(t *models.Test) error {
	if err := v.structValidator.Struct(t); err != nil {
		return ToValidationErrors(err)
	}
	return v.testValidator.Validate(t)
}

// Test returns the semantic test validator
func (v *Validator) Test() *TestValidator {
	return v.testValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("pass_rule_type", validatePassRuleType)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Custom validation functions
func validateQuestionType(fl validator.FieldLevel) bool {
	validTypes := []models.QuestionType{
		models.SingleChoice,
		models.MultipleChoice,
		models.Matching,
		models.Ranking,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func validatePassRuleType(fl validator.FieldLevel) bool {
	validTypes := []models.PassRuleType{
		models.PassRulePercent,
		models.PassRuleAbsolute,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}
