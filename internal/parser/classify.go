package parser

import (
	"math"
	"strings"
)

// AppSchema identifies the application schema profile of a document. It is
// chosen from the root element name.
type AppSchema int

const (
	AppSchemaGeneric AppSchema = iota
	AppSchemaCityGML
	AppSchemaAIXM
	AppSchemaMTKGML
)

func (a AppSchema) String() string {
	switch a {
	case AppSchemaCityGML:
		return "CityGML"
	case AppSchemaAIXM:
		return "AIXM"
	case AppSchemaMTKGML:
		return "MTKGML"
	}
	return "generic"
}

// appSchemaForRoot maps a root element name to its profile.
func appSchemaForRoot(root string) AppSchema {
	switch root {
	case "CityModel":
		return AppSchemaCityGML
	case "AIXMBasicMessage":
		return AppSchemaAIXM
	case "Maastotiedot":
		return AppSchemaMTKGML
	}
	return AppSchemaGeneric
}

// newClassIndex is returned by classifyFeatureElement when an unlocked
// registry should create (or reuse) a class named after the element.
const newClassIndex = math.MaxInt32

// classifyFeatureElement decides whether element, found below the path
// held by state, introduces a feature. It returns -1 when it does not,
// newClassIndex when the registry is unlocked and the element qualifies,
// or the index of the matching class in classes.
func classifyFeatureElement(state *ReadState, element string, schema AppSchema, locked bool, classes []*FeatureClass) int {
	last := state.LastComponent()

	switch {
	case schema == AppSchemaMTKGML:
		if state.PathLength() != 1 {
			return -1
		}
	case hasSuffixFold(last, "member") || hasSuffixFold(last, "members"):
		// generic containment idiom: featureMember, gml:member, featureMembers, wfs:member
	case isKnownFeatureShape(last, element):
	default:
		if !locked {
			return -1
		}
		// Only elements previously recorded at this exact nesting are
		// accepted once the schema is locked.
		if state.Path == "" {
			return -1
		}
		full := state.Path + "|" + element
		for i, c := range classes {
			if c.ElementName() == full {
				return i
			}
		}
		return -1
	}

	if !locked {
		return newClassIndex
	}
	for i, c := range classes {
		if c.ElementName() == element {
			return i
		}
	}
	return -1
}

// isKnownFeatureShape holds the parent/child pairs used by specific
// producers whose responses do not follow the member idiom.
func isKnownFeatureShape(parent, element string) bool {
	switch {
	// Polish TBD GML
	case parent == "dane":
		return true
	// OpenLS geocoding
	case parent == "GeocodeResponseList" && element == "GeocodedAddress":
		return true
	// OpenLS route determination; the instruction list has its own rule
	case parent == "DetermineRouteResponse":
		return element != "RouteInstructionsList"
	case parent == "RouteInstructionsList" && element == "RouteInstruction":
		return true
	// MapServer WFS output
	case len(parent) > len("_layer") && strings.HasSuffix(parent, "_layer") &&
		len(element) > len("_feature") && strings.HasSuffix(element, "_feature"):
		return true
	// CSW GetRecords responses
	case parent == "SearchResults" &&
		(element == "BriefRecord" || element == "SummaryRecord" || element == "Record"):
		return true
	}
	return false
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}

// classifyPropertyElement decides whether element (optionally an XML
// attribute attrKey of it) is a property of class. It returns ok=false when
// the value must be dropped, index -1 when the property is to be resolved
// lazily at commit time, or the index of the known property.
func classifyPropertyElement(class *FeatureClass, path, element, attrKey string) (index int, ok bool) {
	if !class.IsSchemaLocked() {
		return -1, true
	}
	full := element
	if path != "" {
		full = path + "|" + element
	}
	if attrKey != "" {
		full += "@" + attrKey
	}
	if i := class.PropertyIndexBySrcElement(full); i >= 0 {
		return i, true
	}
	return -1, false
}
