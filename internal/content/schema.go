// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package content

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/pdiddy/concepts/pkg/types"
)

// Problem is one reason a concept file was rejected.
type Problem struct {
	Path    string `json:"path" yaml:"path"`
	Field   string `json:"field,omitempty" yaml:"field,omitempty"`
	Message string `json:"message" yaml:"message"`
}

func (p Problem) String() string {
	if p.Field == "" {
		return fmt.Sprintf("%s: %s", p.Path, p.Message)
	}
	return fmt.Sprintf("%s: %s: %s", p.Path, p.Field, p.Message)
}

// ValidationError reports every rejected concept file of a load.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid concept: " + e.Problems[0].String()
	}
	lines := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		lines[i] = "  " + p.String()
	}
	return fmt.Sprintf("%d invalid concepts:\n%s", len(e.Problems), strings.Join(lines, "\n"))
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// strictValidator rejects whitespace-only values and reports field names by their yaml keys so problems match
// what authors wrote in the frontmatter.
func strictValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		if err := validate.RegisterValidation("notblank", validators.NotBlank); err != nil {
			panic(err)
		}
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks fm against mode and returns the problems found for path.
// Permissive mode accepts any frontmatter.
func Validate(path string, fm types.Frontmatter, mode types.SchemaMode) []Problem {
	if mode != types.SchemaStrict {
		return nil
	}
	err := strictValidator().Struct(fm)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Problem{{Path: path, Message: err.Error()}}
	}
	problems := make([]Problem, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, Problem{
			Path:    path,
			Field:   fe.Field(),
			Message: describeTag(fe.Tag()),
		})
	}
	sort.SliceStable(problems, func(i, j int) bool { return problems[i].Field < problems[j].Field })
	return problems
}

func describeTag(tag string) string {
	switch tag {
	case "required", "notblank":
		return "is required"
	case "min":
		return "must not be empty"
	default:
		return "failed " + tag + " check"
	}
}
