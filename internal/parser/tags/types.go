package tags

// Tag names
const (
	ignoreTag           = "ignore"
	minimumTag          = "minimum"
	exclusiveMinimumTag = "exclusiveMinimum"
	maximumTag          = "maximum"
	exclusiveMaximumTag = "exclusiveMaximum"
	multipleOfTag       = "multipleOf"
	defaultTag          = "default"
	exampleTag          = "example"
	minLengthTag        = "minLength"
	maxLengthTag        = "maxLength"
	patternTag          = "pattern"
	formatTag           = "format"
	minItemsTag         = "minItems"
	maxItemsTag         = "maxItems"
	uniqueItemsTag      = "uniqueItems"
	minPropertiesTag    = "minProperties"
	maxPropertiesTag    = "maxProperties"
	enumNamesTag        = "enumNames"
	enumNameTag         = "enumName"
)

// valueKind is the coercion applied to a tag value.
type valueKind int

const (
	kindString valueKind = iota
	kindNumber
	kindInteger
	kindBoolean
)

var (
	numberAttrs  = []string{minimumTag, exclusiveMinimumTag, maximumTag, exclusiveMaximumTag, multipleOfTag, defaultTag, exampleTag}
	stringAttrs  = []string{minLengthTag, maxLengthTag, patternTag, formatTag, defaultTag, exampleTag}
	arrayAttrs   = []string{minItemsTag, maxItemsTag, uniqueItemsTag}
	booleanAttrs = []string{defaultTag, exampleTag}
	objectAttrs  = []string{minPropertiesTag, maxPropertiesTag}

	// jsonAttrs carry serialized structured data.
	jsonAttrs = map[string]struct{}{enumNamesTag: {}, enumNameTag: {}}
)

// whitelisted lists every attribute that is only applied to a matching type.
var whitelisted = func() map[string]struct{} {
	all := make(map[string]struct{})
	for _, list := range [][]string{numberAttrs, stringAttrs, arrayAttrs, booleanAttrs, objectAttrs} {
		for _, name := range list {
			all[name] = struct{}{}
		}
	}
	return all
}()

// familyKind is the coercion of a whitelisted attribute when the base type is unknown.
var familyKind = map[string]valueKind{
	minimumTag:          kindNumber,
	exclusiveMinimumTag: kindNumber,
	maximumTag:          kindNumber,
	exclusiveMaximumTag: kindNumber,
	multipleOfTag:       kindNumber,
	minLengthTag:        kindInteger,
	maxLengthTag:        kindInteger,
	minItemsTag:         kindInteger,
	maxItemsTag:         kindInteger,
	minPropertiesTag:    kindInteger,
	maxPropertiesTag:    kindInteger,
	uniqueItemsTag:      kindBoolean,
	patternTag:          kindString,
	formatTag:           kindString,
	defaultTag:          kindString,
	exampleTag:          kindString,
}
