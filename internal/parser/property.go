package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// PropertyType is the inferred or declared type of a feature property
type PropertyType int

const (
	PropertyTypeUntyped PropertyType = iota
	PropertyTypeString
	PropertyTypeInteger
	PropertyTypeInteger64
	PropertyTypeReal
	PropertyTypeBoolean
	PropertyTypeDate
	PropertyTypeTime
	PropertyTypeDateTime
	PropertyTypeComplex
	PropertyTypeStringList
	PropertyTypeIntegerList
	PropertyTypeInteger64List
	PropertyTypeRealList
	PropertyTypeBooleanList
	PropertyTypeFeatureProperty
	PropertyTypeFeaturePropertyList
)

var propertyTypeNames = map[PropertyType]string{
	PropertyTypeUntyped:             "Untyped",
	PropertyTypeString:              "String",
	PropertyTypeInteger:             "Integer",
	PropertyTypeInteger64:           "Integer64",
	PropertyTypeReal:                "Real",
	PropertyTypeBoolean:             "Boolean",
	PropertyTypeDate:                "Date",
	PropertyTypeTime:                "Time",
	PropertyTypeDateTime:            "DateTime",
	PropertyTypeComplex:             "Complex",
	PropertyTypeStringList:          "StringList",
	PropertyTypeIntegerList:         "IntegerList",
	PropertyTypeInteger64List:       "Integer64List",
	PropertyTypeRealList:            "RealList",
	PropertyTypeBooleanList:         "BooleanList",
	PropertyTypeFeatureProperty:     "FeatureProperty",
	PropertyTypeFeaturePropertyList: "FeaturePropertyList",
}

func (t PropertyType) String() string {
	if name, ok := propertyTypeNames[t]; ok {
		return name
	}
	return "Untyped"
}

// ParsePropertyType maps a saved-schema type name back to a PropertyType.
// Unknown names map to Untyped and ok=false.
func ParsePropertyType(name string) (PropertyType, bool) {
	for t, n := range propertyTypeNames {
		if strings.EqualFold(n, name) {
			return t, true
		}
	}
	return PropertyTypeUntyped, false
}

// IsList reports whether values of this type hold several sub-values.
func (t PropertyType) IsList() bool {
	switch t {
	case PropertyTypeStringList, PropertyTypeIntegerList, PropertyTypeInteger64List,
		PropertyTypeRealList, PropertyTypeBooleanList, PropertyTypeFeaturePropertyList:
		return true
	}
	return false
}

// IsFeatureProperty reports whether values are references to other features.
func (t PropertyType) IsFeatureProperty() bool {
	return t == PropertyTypeFeatureProperty || t == PropertyTypeFeaturePropertyList
}

func (t PropertyType) isTemporal() bool {
	return t == PropertyTypeDate || t == PropertyTypeTime || t == PropertyTypeDateTime
}

// listOf returns the list counterpart used once a feature repeats a property.
func (t PropertyType) listOf() PropertyType {
	switch t {
	case PropertyTypeInteger:
		return PropertyTypeIntegerList
	case PropertyTypeInteger64:
		return PropertyTypeInteger64List
	case PropertyTypeReal:
		return PropertyTypeRealList
	case PropertyTypeString:
		return PropertyTypeStringList
	case PropertyTypeBoolean:
		return PropertyTypeBooleanList
	}
	return t
}

// PropertyDefn describes one property of a feature class.
type PropertyDefn struct {
	name       string
	srcElement string
	typ        PropertyType
	width      int
	precision  int
}

// NewPropertyDefn creates an untyped property read from srcElement.
func NewPropertyDefn(name, srcElement string) *PropertyDefn {
	return &PropertyDefn{name: name, srcElement: srcElement}
}

// Name returns the output field name
func (p *PropertyDefn) Name() string { return p.name }

// SrcElement returns the feature-relative element path the value is read from
func (p *PropertyDefn) SrcElement() string { return p.srcElement }

func (p *PropertyDefn) Type() PropertyType     { return p.typ }
func (p *PropertyDefn) SetType(t PropertyType) { p.typ = t }
func (p *PropertyDefn) Width() int             { return p.width }
func (p *PropertyDefn) SetWidth(w int)         { p.width = w }
func (p *PropertyDefn) Precision() int         { return p.precision }
func (p *PropertyDefn) SetPrecision(n int)     { p.precision = n }

// AnalysePropertyValue folds the values one feature carried for this
// property into the running type estimate. Types only ever widen:
// Integer becomes Real, anything non numeric becomes String, and a
// property repeated within one feature becomes the matching list type.
func (p *PropertyDefn) AnalysePropertyValue(values []string, setWidth bool) {
	for j, value := range values {
		if j > 0 {
			p.typ = p.typ.listOf()
			if p.typ == PropertyTypeStringList {
				p.width = 0
			}
		}

		if value == "" {
			continue
		}

		kind := valueKindOf(value)
		if kind.isTemporal() {
			p.mergeTemporal(kind.propertyType())
		} else {
			if p.typ.isTemporal() {
				kind = valueString
			}
			p.mergeScalar(kind, value)
		}

		if p.typ == PropertyTypeString && setWidth {
			if w := len(value); p.width < w {
				p.width = w
			}
		}
	}
}

func (p *PropertyDefn) mergeTemporal(t PropertyType) {
	switch {
	case p.typ == PropertyTypeUntyped || p.typ == t:
		p.typ = t
	case p.typ.isTemporal():
		if (p.typ == PropertyTypeDate && t == PropertyTypeDateTime) ||
			(p.typ == PropertyTypeDateTime && t == PropertyTypeDate) {
			p.typ = PropertyTypeDateTime
		} else {
			p.typ = PropertyTypeString
		}
	case p.typ.IsList():
		p.typ = PropertyTypeStringList
	default:
		p.typ = PropertyTypeString
	}
}

func (p *PropertyDefn) mergeScalar(kind valueKind, value string) {
	if kind == valueString && p.typ != PropertyTypeString && p.typ != PropertyTypeStringList {
		isBool := value == "true" || value == "false"
		switch p.typ {
		case PropertyTypeUntyped, PropertyTypeBoolean:
			if isBool {
				p.typ = PropertyTypeBoolean
			} else {
				p.typ = PropertyTypeString
			}
		case PropertyTypeBooleanList:
			if !isBool {
				p.typ = PropertyTypeStringList
			}
		case PropertyTypeIntegerList, PropertyTypeInteger64List, PropertyTypeRealList:
			p.typ = PropertyTypeStringList
		default:
			p.typ = PropertyTypeString
		}
		return
	}

	isReal := kind == valueReal
	switch p.typ {
	case PropertyTypeUntyped, PropertyTypeInteger, PropertyTypeInteger64:
		if isReal {
			p.typ = PropertyTypeReal
		} else if p.typ != PropertyTypeInteger64 {
			if fitsInt32(value) {
				p.typ = PropertyTypeInteger
			} else {
				p.typ = PropertyTypeInteger64
			}
		}
	case PropertyTypeIntegerList, PropertyTypeInteger64List:
		if isReal {
			p.typ = PropertyTypeRealList
		} else if p.typ == PropertyTypeIntegerList && kind == valueInteger && !fitsInt32(value) {
			p.typ = PropertyTypeInteger64List
		}
	}
}

type valueKind int

const (
	valueString valueKind = iota
	valueInteger
	valueReal
	valueDate
	valueTime
	valueDateTime
)

func (k valueKind) isTemporal() bool {
	return k == valueDate || k == valueTime || k == valueDateTime
}

func (k valueKind) propertyType() PropertyType {
	switch k {
	case valueDate:
		return PropertyTypeDate
	case valueTime:
		return PropertyTypeTime
	case valueDateTime:
		return PropertyTypeDateTime
	case valueInteger:
		return PropertyTypeInteger
	case valueReal:
		return PropertyTypeReal
	}
	return PropertyTypeString
}

var (
	dateRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRe     = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}(\.\d+)?$`)
	dateTimeRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:?\d{2})?$`)
)

// valueKindOf classifies a textual value the way the type inference needs
// it. Surrounding white space is ignored.
func valueKindOf(value string) valueKind {
	s := strings.TrimSpace(value)
	if s == "" {
		return valueString
	}
	switch {
	case dateRe.MatchString(s):
		return valueDate
	case dateTimeRe.MatchString(s):
		return valueDateTime
	case timeRe.MatchString(s):
		return valueTime
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return valueInteger
	} else if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
		return valueReal
	}
	if strings.ContainsAny(s, "xXpPnNiI_") {
		return valueString
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return valueReal
	}
	return valueString
}

func fitsInt32(value string) bool {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return false
	}
	return n >= math.MinInt32 && n <= math.MaxInt32
}
