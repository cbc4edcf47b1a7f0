// Package validation provides input validation for blockflow.
//
// Struct tag validation (go-playground/validator) covers block payloads,
// persisted snapshot records and configuration sections. The programmatic
// Validator collects field errors for request parameters.
//
//	type SplitData struct {
//	    TestRatio float64 `json:"test_ratio" validate:"gt=0,lt=1"`
//	}
//	err := validation.Validate(&SplitData{TestRatio: 0.2})
//
//	v := validation.New()
//	v.Required("type", req.Type).Finite("position.x", req.Position.X)
//	if appErr := v.Validate(); appErr != nil { ... }
package validation
