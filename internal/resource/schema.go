package resource

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
			e, ok := fl.Field().Interface().(Enum)
			return ok && e.Valid()
		})
		v.RegisterValidation("resourcename", func(fl validator.FieldLevel) bool {
			return namePattern.MatchString(fl.Field().String())
		})
		validate = v
	})
	return validate
}

func checkName(kind Kind, name string) error {
	if name == "" {
		return &SchemaError{Kind: kind, Field: "metadata.name", Reason: "required"}
	}
	if !namePattern.MatchString(name) {
		return &SchemaError{Kind: kind, Name: name, Field: "metadata.name",
			Reason: "must start with a letter or digit and contain only letters, digits, '-' and '_'"}
	}
	return nil
}

// ValidName reports whether name is usable as a resource name.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

func checkSpec(kind Kind, name string, spec any) error {
	err := structValidator().Struct(spec)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &SchemaError{Kind: kind, Name: name, Field: "spec", Reason: err.Error()}
	}
	return schemaErrorFrom(kind, name, verrs[0])
}

func schemaErrorFrom(kind Kind, name string, fe validator.FieldError) *SchemaError {
	// Namespace is "<Type>.<yaml path>"; drop the Go type name.
	_, path, _ := strings.Cut(fe.Namespace(), ".")
	se := &SchemaError{Kind: kind, Name: name, Field: "spec." + path, Value: fmt.Sprint(fe.Value())}
	switch fe.Tag() {
	case "enum":
		if e, ok := fe.Value().(Enum); ok {
			se.Allowed = e.Values()
		}
	case "resourcename":
		se.Reason = fmt.Sprintf("invalid resource name %q", se.Value)
	default:
		se.Reason = fmt.Sprintf("failed %q check", fe.Tag())
	}
	return se
}

// JSONSchema returns the JSON Schema describing a document of the given kind.
func JSONSchema(kind Kind) (*jsonschema.Schema, error) {
	r := &jsonschema.Reflector{
		DoNotReference:             true,
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var s *jsonschema.Schema
	switch kind {
	case KindEnvironment:
		s = r.Reflect(&Document[Environment]{})
	case KindSecurityProfile:
		s = r.Reflect(&Document[SecurityProfile]{})
	case KindAgentConfig:
		s = r.Reflect(&Document[AgentConfig]{})
	case KindCredential:
		s = r.Reflect(&Document[Credential]{})
	case KindProject:
		s = r.Reflect(&Document[Project]{})
	default:
		return nil, &SchemaError{Field: "kind", Value: string(kind), Allowed: kind.Values()}
	}
	s.Title = string(kind)
	if kindProp, ok := s.Properties.Get("kind"); ok {
		kindProp.Const = string(kind)
	}
	if apiProp, ok := s.Properties.Get("apiVersion"); ok {
		apiProp.Const = APIVersion
	}
	return s, nil
}
