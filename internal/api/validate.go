package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"binrent/internal/instance"
	"binrent/internal/model"
	"binrent/internal/opt"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validationDetail flattens validator errors into one readable line.
func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		p := fmt.Sprintf("%s: failed %s", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			p += "=" + fe.Param()
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, "; ")
}

func validateSolveRequest(req *model.SolveRequest) error {
	if err := validate.Struct(req); err != nil {
		return errors.New(validationDetail(err))
	}
	if req.Algorithm != "" && !opt.Known(req.Algorithm) {
		return fmt.Errorf("%w: %s", opt.ErrUnknownAlgorithm, req.Algorithm)
	}
	return instance.Validate(req.Instance)
}

func validateEvaluateRequest(req *model.EvaluateRequest) error {
	if err := validate.Struct(req); err != nil {
		return errors.New(validationDetail(err))
	}
	for i, a := range req.Assignments {
		if a.Item == "" || a.Bin == "" {
			return fmt.Errorf("assignments[%d]: item and bin are required", i)
		}
	}
	return instance.Validate(req.Instance)
}

func validateBenchmarkRequest(req *model.BenchmarkRequest) error {
	if err := validate.Struct(req); err != nil {
		return errors.New(validationDetail(err))
	}
	for _, a := range req.Algorithms {
		if !opt.Known(a) {
			return fmt.Errorf("%w: %s", opt.ErrUnknownAlgorithm, a)
		}
	}
	if req.Instance != nil {
		return instance.Validate(*req.Instance)
	}
	return nil
}
