package resource

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// APIVersion is the only document version this build understands.
const APIVersion = "skua/v1"

// Kind names a resource type in the document header.
type Kind string

const (
	KindEnvironment     Kind = "Environment"
	KindSecurityProfile Kind = "SecurityProfile"
	KindAgentConfig     Kind = "AgentConfig"
	KindCredential      Kind = "Credential"
	KindProject         Kind = "Project"
)

func (Kind) Values() []string {
	return []string{"Environment", "SecurityProfile", "AgentConfig", "Credential", "Project"}
}

func (k Kind) Valid() bool { return isOneOf(k, k.Values()) }

// Resource is implemented by every typed resource.
type Resource interface {
	ResourceKind() Kind
	ResourceName() string
}

// Metadata is the document metadata block.
type Metadata struct {
	Name string `yaml:"name" json:"name"`
}

type header struct {
	APIVersion string   `yaml:"apiVersion"`
	Kind       Kind     `yaml:"kind"`
	Metadata   Metadata `yaml:"metadata"`
}

// Document is the on-disk envelope of a resource.
type Document[T any] struct {
	APIVersion string   `yaml:"apiVersion" json:"apiVersion"`
	Kind       Kind     `yaml:"kind" json:"kind"`
	Metadata   Metadata `yaml:"metadata" json:"metadata"`
	Spec       T        `yaml:"spec" json:"spec"`
}

// SchemaError reports a structurally invalid resource document. It is raised
// while loading and never reaches the validation engine.
type SchemaError struct {
	Kind    Kind
	Name    string
	Field   string
	Value   string
	Allowed []string
	Reason  string
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	if e.Kind != "" {
		b.WriteString(string(e.Kind))
		if e.Name != "" {
			fmt.Fprintf(&b, " %q", e.Name)
		}
		b.WriteString(": ")
	}
	if e.Field != "" {
		b.WriteString(e.Field)
		b.WriteString(": ")
	}
	switch {
	case len(e.Allowed) > 0:
		allowed := make([]string, len(e.Allowed))
		for i, v := range e.Allowed {
			allowed[i] = fmt.Sprintf("%q", v)
		}
		fmt.Fprintf(&b, "invalid value %q (allowed: %s)", e.Value, strings.Join(allowed, ", "))
	case e.Reason != "":
		b.WriteString(e.Reason)
	default:
		b.WriteString("invalid document")
	}
	return b.String()
}

// Decode parses one resource document. Unknown kinds, a wrong apiVersion,
// unknown spec fields and out-of-range enum values all fail with *SchemaError.
// Absent fields take their documented defaults.
func Decode(data []byte) (Resource, error) {
	var h header
	if err := yaml.Unmarshal(data, &h); err != nil {
		return nil, &SchemaError{Reason: fmt.Sprintf("parse document: %v", err)}
	}
	if h.Kind == "" && h.APIVersion == "" {
		return nil, &SchemaError{Reason: "empty document"}
	}
	if !h.Kind.Valid() {
		return nil, &SchemaError{Field: "kind", Value: string(h.Kind), Allowed: h.Kind.Values()}
	}
	if h.APIVersion != APIVersion {
		return nil, &SchemaError{Kind: h.Kind, Name: h.Metadata.Name, Field: "apiVersion", Value: h.APIVersion, Allowed: []string{APIVersion}}
	}
	if err := checkName(h.Kind, h.Metadata.Name); err != nil {
		return nil, err
	}

	var (
		r   Resource
		err error
	)
	switch h.Kind {
	case KindEnvironment:
		var env *Environment
		env, err = decodeSpec(data, h, DefaultEnvironment())
		if env != nil {
			env.Name = h.Metadata.Name
			r = env
		}
	case KindSecurityProfile:
		var sec *SecurityProfile
		sec, err = decodeSpec(data, h, DefaultSecurityProfile())
		if sec != nil {
			sec.Name = h.Metadata.Name
			r = sec
		}
	case KindAgentConfig:
		var agent *AgentConfig
		agent, err = decodeSpec(data, h, AgentConfig{})
		if agent != nil {
			agent.Name = h.Metadata.Name
			r = agent
		}
	case KindCredential:
		var cred *Credential
		cred, err = decodeSpec(data, h, Credential{Agent: "claude"})
		if cred != nil {
			cred.Name = h.Metadata.Name
			r = cred
		}
	case KindProject:
		var p *Project
		p, err = decodeSpec(data, h, Project{})
		if p != nil {
			p.Name = h.Metadata.Name
			r = p
		}
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func decodeSpec[T any](data []byte, h header, defaults T) (*T, error) {
	doc := Document[T]{Spec: defaults}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &SchemaError{Kind: h.Kind, Name: h.Metadata.Name, Reason: "empty document"}
		}
		return nil, &SchemaError{Kind: h.Kind, Name: h.Metadata.Name, Field: "spec", Reason: err.Error()}
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, &SchemaError{Kind: h.Kind, Name: h.Metadata.Name, Reason: "file holds more than one document"}
	}
	if err := rejectNullEnums[T](data, h); err != nil {
		return nil, err
	}
	if err := checkSpec(h.Kind, h.Metadata.Name, &doc.Spec); err != nil {
		return nil, err
	}
	return &doc.Spec, nil
}

var enumType = reflect.TypeFor[Enum]()

// rejectNullEnums fails on an explicit null for an enum field. yaml.v3
// leaves the default in place for a null scalar, which would hide the typo.
func rejectNullEnums[T any](data []byte, h header) error {
	var raw struct {
		Spec yaml.Node `yaml:"spec"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return &SchemaError{Kind: h.Kind, Name: h.Metadata.Name, Field: "spec", Reason: err.Error()}
	}
	field, e := nullEnum(&raw.Spec, reflect.TypeFor[T](), "spec")
	if e == nil {
		return nil
	}
	return &SchemaError{Kind: h.Kind, Name: h.Metadata.Name, Field: field, Value: "null", Allowed: e.Values()}
}

// nullEnum walks n alongside t and returns the path of the first
// non-pointer enum field set to null. Pointer fields keep null as unset.
func nullEnum(n *yaml.Node, t reflect.Type, path string) (string, Enum) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || n.Kind != yaml.MappingNode {
		return "", nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		f, ok := yamlField(t, key)
		if !ok {
			continue
		}
		p := path + "." + key
		if val.Kind == yaml.ScalarNode && val.ShortTag() == "!!null" {
			if f.Type.Kind() != reflect.Pointer && f.Type.Implements(enumType) {
				return p, reflect.Zero(f.Type).Interface().(Enum)
			}
			continue
		}
		if field, e := nullEnum(val, f.Type, p); e != nil {
			return field, e
		}
	}
	return "", nil
}

func yamlField(t reflect.Type, key string) (reflect.StructField, bool) {
	for i := range t.NumField() {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == key {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

// Encode renders a resource as a YAML document.
func Encode(r Resource) ([]byte, error) {
	doc, err := ToDocument(r)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode %s %q: %w", r.ResourceKind(), r.ResourceName(), err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToDocument wraps a resource in its document envelope.
func ToDocument(r Resource) (any, error) {
	meta := Metadata{Name: r.ResourceName()}
	switch v := r.(type) {
	case *Environment:
		return Document[*Environment]{APIVersion, KindEnvironment, meta, v}, nil
	case *SecurityProfile:
		return Document[*SecurityProfile]{APIVersion, KindSecurityProfile, meta, v}, nil
	case *AgentConfig:
		return Document[*AgentConfig]{APIVersion, KindAgentConfig, meta, v}, nil
	case *Credential:
		return Document[*Credential]{APIVersion, KindCredential, meta, v}, nil
	case *Project:
		return Document[*Project]{APIVersion, KindProject, meta, v}, nil
	default:
		return nil, fmt.Errorf("unsupported resource type %T", r)
	}
}
