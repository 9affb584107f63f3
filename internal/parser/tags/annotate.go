// Package tags merges documentation tag values into synthesized schemas.
package tags

import (
	"strings"

	"github.com/go-openapi/spec"
	"github.com/griffnb/tsschema/internal/domain"
	"github.com/griffnb/tsschema/internal/schema"
)

// typedKeywords are schema keys backed by typed spec.Schema fields that a tag
// cannot set verbatim.
var typedKeywords = map[string]struct{}{
	"$ref": {}, "$schema": {}, "id": {}, "type": {}, "required": {}, "items": {}, "properties": {},
	"additionalProperties": {}, "allOf": {}, "anyOf": {}, "oneOf": {}, "not": {}, "definitions": {},
	"patternProperties": {}, "dependencies": {}, "additionalItems": {}, "discriminator": {},
	"xml": {}, "externalDocs": {},
}

// Annotator applies documentation tags to synthesized schemas.
type Annotator struct {
	logger domain.Logger
}

// NewAnnotator creates an annotator logging dropped tags to logger.
func NewAnnotator(logger domain.Logger) *Annotator {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &Annotator{logger: logger}
}

// Annotate applies tags to s without logging.
func Annotate(s spec.Schema, tags domain.Tags) spec.Schema {
	return NewAnnotator(nil).Annotate(s, tags, domain.Position{})
}

// Annotate merges tags into s. Attributes of the per-type whitelists are coerced
// and applied only to schemas of that type; every other tag is copied verbatim.
// A reference without a type accepts every attribute. oneOf and allOf members
// receive the same tags.
func (a *Annotator) Annotate(s spec.Schema, tags domain.Tags, pos domain.Position) spec.Schema {
	if len(tags) == 0 {
		return s
	}

	if len(s.OneOf) > 0 {
		s.OneOf = a.annotateList(s.OneOf, tags, pos)
	}
	if len(s.AllOf) > 0 {
		s.AllOf = a.annotateList(s.AllOf, tags, pos)
	}

	values := latest(tags)
	base := schema.TypeName(s)
	bareRef := base == "" && schema.IsRefSchema(s)
	numberic := base == domain.STRING && format(s, values) == domain.FormatNumberic

	for _, tag := range values {
		name := tag.Name
		if name == ignoreTag {
			continue
		}

		if _, ok := jsonAttrs[name]; ok {
			v, err := parseJSON(name, tag.Value)
			if err != nil {
				a.warn(name, pos, err)
				continue
			}
			s = schema.SetExtra(s, name, v)
			continue
		}

		if _, ok := whitelisted[name]; !ok {
			s = a.passthrough(s, name, tag.Value, pos)
			continue
		}

		kind, ok := attributeKind(base, name, bareRef, numberic)
		if !ok {
			continue
		}
		v, err := coerce(name, tag.Value, kind)
		if err != nil {
			a.warn(name, pos, err)
			continue
		}
		s = apply(s, name, v)
	}

	return s
}

func (a *Annotator) annotateList(list []spec.Schema, tags domain.Tags, pos domain.Position) []spec.Schema {
	out := make([]spec.Schema, len(list))
	for i, item := range list {
		out[i] = a.Annotate(item, tags, pos)
	}
	return out
}

// attributeKind returns how a whitelisted attribute is coerced for base, or
// false when it does not apply.
func attributeKind(base, name string, bareRef, numberic bool) (valueKind, bool) {
	if numberic && contains(numberAttrs, name) {
		return kindString, true
	}

	switch base {
	case domain.INTEGER, domain.NUMBER:
		if contains(numberAttrs, name) {
			return kindNumber, true
		}
	case domain.STRING:
		if name == minLengthTag || name == maxLengthTag {
			return kindInteger, true
		}
		if contains(stringAttrs, name) {
			return kindString, true
		}
	case domain.ARRAY:
		if name == uniqueItemsTag {
			return kindBoolean, true
		}
		if contains(arrayAttrs, name) {
			return kindInteger, true
		}
	case domain.BOOLEAN:
		if contains(booleanAttrs, name) {
			return kindBoolean, true
		}
	case domain.OBJECT:
		if contains(objectAttrs, name) {
			return kindInteger, true
		}
	case "":
		if bareRef {
			kind, ok := familyKind[name]
			return kind, ok
		}
	}
	return kindString, false
}

// apply sets a coerced attribute on its typed field where one exists.
func apply(s spec.Schema, name string, v interface{}) spec.Schema {
	if _, data := v.(map[string]interface{}); data && name != defaultTag && name != exampleTag {
		return schema.SetExtra(s, name, v)
	}

	switch value := v.(type) {
	case float64:
		switch name {
		case minimumTag:
			s.Minimum = &value
			return s
		case maximumTag:
			s.Maximum = &value
			return s
		case multipleOfTag:
			s.MultipleOf = &value
			return s
		}
	case int64:
		switch name {
		case minLengthTag:
			s.MinLength = &value
		case maxLengthTag:
			s.MaxLength = &value
		case minItemsTag:
			s.MinItems = &value
		case maxItemsTag:
			s.MaxItems = &value
		case minPropertiesTag:
			s.MinProperties = &value
		case maxPropertiesTag:
			s.MaxProperties = &value
		}
		return s
	case bool:
		if name == uniqueItemsTag {
			if value {
				s.UniqueItems = true
				return s
			}
			return schema.SetExtra(s, name, false)
		}
	case string:
		switch name {
		case patternTag:
			s.Pattern = value
			return s
		case formatTag:
			s.Format = value
			return s
		}
	}

	switch name {
	case defaultTag:
		s.Default = v
		return s
	case exampleTag:
		s.Example = v
		return s
	}
	return schema.SetExtra(s, name, v)
}

// passthrough copies a non-whitelisted tag onto the schema.
func (a *Annotator) passthrough(s spec.Schema, name, value string, pos domain.Position) spec.Schema {
	switch name {
	case "description":
		s.Description = value
		return s
	case "title":
		s.Title = value
		return s
	case "readOnly", "readonly":
		s.ReadOnly = strings.TrimSpace(value) != "false"
		return s
	case "nullable":
		s.Nullable = strings.TrimSpace(value) != "false"
		return s
	case "enum":
		v, err := parseJSON(name, value)
		list, ok := v.([]interface{})
		if err != nil || !ok {
			a.logger.Warn("ignoring tag", "tag", name, "file", pos.File, "line", pos.Line, "column", pos.Column, "reason", "enum tag must be a JSON array")
			return s
		}
		s.Enum = list
		return s
	}

	if _, ok := typedKeywords[name]; ok {
		a.logger.Debugf("%s: tag @%s conflicts with a schema keyword, ignored", pos, name)
		return s
	}

	if strings.HasPrefix(strings.ToLower(name), "x-") {
		ext := make(spec.Extensions, len(s.Extensions)+1)
		for k, v := range s.Extensions {
			ext[k] = v
		}
		ext[name] = value
		s.Extensions = ext
		return s
	}
	return schema.SetExtra(s, name, value)
}

func (a *Annotator) warn(name string, pos domain.Position, err error) {
	a.logger.Warn("ignoring tag", "tag", name, "file", pos.File, "line", pos.Line, "column", pos.Column, "err", err)
}

// latest returns one tag per name, in order of first appearance, holding the last value.
func latest(tags domain.Tags) domain.Tags {
	var out domain.Tags
	for _, tag := range tags {
		out = out.Set(tag.Name, tag.Value)
	}
	return out
}

func format(s spec.Schema, tags domain.Tags) string {
	if value, ok := tags.Get(formatTag); ok {
		return value
	}
	return s.Format
}

func contains(list []string, name string) bool {
	for _, item := range list {
		if item == name {
			return true
		}
	}
	return false
}
