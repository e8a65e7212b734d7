package parser

import (
	"strconv"
	"strings"

	"github.com/golang/glog"
)

type handlerState int

const (
	stateTop handlerState = iota
	stateDefault
	stateFeature
	stateProperty
	stateFeatureProperty
	stateGeometry
	stateIgnoredFeature
	stateBoundedBy
	stateCityGMLAttribute
)

var handlerStateNames = [...]string{
	"TOP", "DEFAULT", "FEATURE", "PROPERTY", "FEATUREPROPERTY",
	"GEOMETRY", "IGNORED_FEATURE", "BOUNDED_BY", "CITYGML_ATTRIBUTE",
}

func (s handlerState) String() string {
	if int(s) < len(handlerStateNames) {
		return handlerStateNames[s]
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

// stateFrame records a mode and the element depth at which it was entered;
// the mode ends when the element at that depth closes.
type stateFrame struct {
	state handlerState
	depth int
}

// handler turns tokenizer events into features. It owns the per-document
// mode stack, the pending property text and the geometry under capture;
// the feature context stack lives in the Reader.
type handler struct {
	r *Reader

	appSchema  AppSchema
	reportHref bool

	frames []stateFrame
	// depth is the number of currently open elements, not counting the one
	// being started.
	depth int

	// property text
	inCurField     bool
	hasCurField    bool
	curField       []byte
	attributeIndex int
	href           string
	uom            string
	value          string
	kieli          string
	hasValue       bool

	// geometry capture
	nodes                 []*GeometryNode
	geomText              []byte
	alreadyFoundGeometry  bool
	geometryPropertyIndex int
	srsDimensionIfMissing int

	cityGMLAttrName string
	cityGMLAttrType PropertyType

	// element of a locked class that matched no property; reported when it
	// closes without children
	droppedDepth int
	droppedPath  string
	droppedClass string
}

func newHandler(r *Reader) *handler {
	return &handler{
		r:              r,
		frames:         []stateFrame{{state: stateTop}},
		attributeIndex: -1,
		droppedDepth:   -1,
	}
}

func (h *handler) state() handlerState {
	return h.frames[len(h.frames)-1].state
}

func (h *handler) frameDepth() int {
	return h.frames[len(h.frames)-1].depth
}

func (h *handler) push(s handlerState) {
	h.frames = append(h.frames, stateFrame{state: s, depth: h.depth})
}

func (h *handler) pop() {
	if len(h.frames) > 1 {
		h.frames = h.frames[:len(h.frames)-1]
	}
}

// StartElement implements EventHandler
func (h *handler) StartElement(name string, attrs Attributes) error {
	if h.droppedDepth >= 0 && h.depth > h.droppedDepth {
		h.droppedDepth = -1
	}
	switch h.state() {
	case stateTop:
		h.startElementTop(name, attrs)
	case stateDefault:
		h.startElementDefault(name, attrs)
	case stateFeature, stateProperty:
		h.startElementFeatureAttribute(name, attrs)
	case stateFeatureProperty:
		h.startElementFeatureProperty(name, attrs)
	case stateGeometry:
		h.startElementGeometry(name, attrs)
	case stateBoundedBy:
		h.startElementBoundedBy(name, attrs)
	case stateCityGMLAttribute:
		h.startElementCityGMLGenericAttr(name)
	}
	h.depth++
	return nil
}

// EndElement implements EventHandler
func (h *handler) EndElement(name string) error {
	h.depth--
	if h.droppedDepth == h.depth {
		h.droppedDepth = -1
		h.r.diagnostic(&SchemaLockedError{Class: h.droppedClass, Path: h.droppedPath})
	}
	switch h.state() {
	case stateDefault:
		h.endElementDefault()
	case stateFeature:
		h.endElementFeature()
	case stateProperty:
		h.endElementAttribute()
	case stateFeatureProperty:
		h.endElementFeatureProperty()
	case stateGeometry:
		h.endElementGeometry()
	case stateIgnoredFeature, stateBoundedBy:
		if h.depth == h.frameDepth() {
			h.pop()
		}
	case stateCityGMLAttribute:
		h.endElementCityGMLGenericAttr()
	}
	return nil
}

// CharacterData implements EventHandler
func (h *handler) CharacterData(data []byte) error {
	switch h.state() {
	case stateProperty, stateCityGMLAttribute:
		if h.inCurField {
			h.curField = appendSkippingLeadingSpace(h.curField, data, len(h.curField) == 0)
			h.hasCurField = len(h.curField) > 0
		}
	case stateGeometry:
		h.geomText = appendSkippingLeadingSpace(h.geomText, data, len(h.geomText) == 0)
	}
	return nil
}

func appendSkippingLeadingSpace(dst, data []byte, skip bool) []byte {
	if skip {
		i := 0
		for i < len(data) && isXMLSpace(data[i]) {
			i++
		}
		data = data[i:]
	}
	return append(dst, data...)
}

func isXMLSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t'
}

func (h *handler) startElementTop(name string, attrs Attributes) {
	h.appSchema = appSchemaForRoot(name)
	switch h.appSchema {
	case AppSchemaCityGML:
		if h.srsDimensionIfMissing == 0 {
			h.srsDimensionIfMissing = 3
		}
	case AppSchemaAIXM:
		h.reportHref = true
	case AppSchemaMTKGML:
		if srs, ok := attrs.Value("srsName"); ok {
			h.r.SetGlobalSRSName(srs)
		}
		h.reportHref = true
		// MTKGML schemas carry no string widths
		h.r.setWidth = false
	}
	glog.V(2).Infof("GML root <%s>, application schema %v", name, h.appSchema)
	h.frames[0].state = stateDefault
}

func (h *handler) startElementDefault(name string, attrs Attributes) {
	r := h.r

	if name == "boundedBy" {
		h.push(stateBoundedBy)
		return
	}

	if r.lookForClassAtAnyLevel && r.filteredClassName != "" && r.filteredClassIndex >= 0 {
		if name == r.filteredClassName {
			h.alreadyFoundGeometry = false
			r.pushFeature(name, getFID(attrs), r.filteredClassIndex)
			h.enterFeature()
			return
		}
	} else if name != "FeatureCollection" {
		// A wfs:FeatureCollection nested in a wfs:member is a collection,
		// not a feature.
		if idx := r.featureElementIndex(name, h.appSchema); idx != -1 {
			h.alreadyFoundGeometry = false
			if r.filteredClassName != "" && name != r.filteredClassName {
				h.push(stateIgnoredFeature)
				return
			}
			if h.appSchema == AppSchemaMTKGML {
				r.pushFeature(name, "", idx)
				if gid, ok := attrs.Value("gid"); ok {
					r.setFeaturePropertyDirectly("gid", gid, -1, PropertyTypeString)
				}
			} else {
				r.pushFeature(name, getFID(attrs), idx)
			}
			h.enterFeature()
			return
		}
	}

	r.state.PushPath(name)
}

// enterFeature switches to FEATURE mode for the feature just pushed.
func (h *handler) enterFeature() {
	h.push(stateFeature)
	class := h.r.state.Feature.Class()
	if class.IsSchemaLocked() {
		for i := 0; i < class.GeometryPropertyCount(); i++ {
			if dim := class.GeometryProperty(i).SRSDimension(); dim != 0 {
				h.srsDimensionIfMissing = dim
				break
			}
		}
	}
}

func (h *handler) endElementDefault() {
	if h.depth > 0 {
		h.r.state.PopPath()
	}
}

func (h *handler) startElementBoundedBy(name string, attrs Attributes) {
	if h.depth != 2 || name != "Envelope" {
		return
	}
	if srs, ok := attrs.Value("srsName"); ok {
		h.r.SetGlobalSRSName(srs)
	}
	if h.srsDimensionIfMissing == 0 {
		if dim, ok := attrs.Value("srsDimension"); ok {
			h.srsDimensionIfMissing, _ = strconv.Atoi(dim)
		}
	}
}

func (h *handler) startElementFeatureAttribute(name string, attrs Attributes) {
	r := h.r
	st := r.state
	class := st.Feature.Class()

	h.inCurField = false
	h.href, h.uom, h.kieli = "", "", ""
	h.value, h.hasValue = "", false

	switch {
	case h.isGeometryElement(name):
		if h.shouldReadGeometry(name) {
			h.nodes = h.nodes[:0]
			h.geomText = h.geomText[:0]
			if st.Feature.geometryPath == "" {
				st.Feature.geometryPath = st.Path
			}
			h.push(stateGeometry)
			h.startElementGeometry(name, attrs)
			return
		}

	case name == "boundedBy":
		h.push(stateBoundedBy)
		return

	case h.appSchema == AppSchemaCityGML && r.isCityGMLGenericAttributeElement(name, attrs):
		h.cityGMLAttrName, _ = attrs.Value("name")
		h.cityGMLAttrType = cityGMLAttributeType(name)
		h.push(stateCityGMLAttribute)
		return

	case r.opts.IsWFSJointLayer && h.depth == h.featureDepth()+1:
		// the wfs:member wrapper of a joined layer

	case r.opts.IsWFSJointLayer && h.depth == h.featureDepth()+2:
		if fid := getFID(attrs); fid != "" {
			key := name + "@id"
			if st.Path != "" {
				key = st.Path + "|" + key
			}
			r.setFeaturePropertyDirectly(key, fid, -1, PropertyTypeString)
		}

	default:
		idx, ok := classifyPropertyElement(class, st.Path, name, "")
		if !ok {
			h.droppedDepth = h.depth
			h.droppedPath = joinPath(st.Path, name)
			h.droppedClass = class.Name()
			h.dealWithAttributes(name, attrs)
			break
		}
		if class.IsSchemaLocked() && class.Property(idx).Type().IsFeatureProperty() {
			h.attributeIndex = idx
			h.push(stateFeatureProperty)
			if href, ok := attrs.Value("xlink:href"); ok && strings.HasPrefix(href, "#") {
				r.setFeaturePropertyDirectly("", href, idx, PropertyTypeUntyped)
			}
			break
		}
		h.attributeIndex = idx
		h.curField = h.curField[:0]
		h.hasCurField = false
		h.inCurField = true
		h.dealWithAttributes(name, attrs)
		if h.state() != stateProperty {
			h.push(stateProperty)
		}
	}

	st.PushPath(name)
}

// featureDepth returns the depth of the innermost feature element.
func (h *handler) featureDepth() int {
	for i := len(h.frames) - 1; i >= 0; i-- {
		if h.frames[i].state == stateFeature {
			return h.frames[i].depth
		}
	}
	return -1
}

// shouldReadGeometry picks which geometry elements of a feature are captured.
func (h *handler) shouldReadGeometry(name string) bool {
	r := h.r
	st := r.state
	class := st.Feature.Class()
	h.geometryPropertyIndex = 0

	switch {
	case class.IsSchemaLocked() && class.GeometryPropertyCount() == 0:
		return false
	case class.IsSchemaLocked() && class.GeometryPropertyCount() == 1 &&
		class.GeometryProperty(0).SrcElement() == "":
		return true
	case class.IsSchemaLocked() && class.GeometryPropertyCount() > 0:
		h.geometryPropertyIndex = class.GeometryPropertyIndexBySrcElement(st.Path)
		return h.geometryPropertyIndex >= 0
	case r.opts.FetchAllGeometries:
		return true
	case !class.IsSchemaLocked() && r.opts.IsWFSJointLayer:
		h.geometryPropertyIndex = class.GeometryPropertyIndexBySrcElement(st.Path)
		if h.geometryPropertyIndex < 0 {
			fieldName := strings.TrimPrefix(st.Path, "member|")
			fieldName = strings.Replace(fieldName, "|", ".", 1)
			idx, err := class.AddGeometryProperty(NewGeometryPropertyDefn(fieldName, st.Path, GeometryTypeUnknown))
			if err != nil {
				r.diagnostic(err)
				return false
			}
			h.geometryPropertyIndex = idx
		}
		return true
	case h.appSchema == AppSchemaAIXM && class.Name() == "RouteSegment":
		// only the route itself, not its start and end points
		return name == "Curve"
	case h.alreadyFoundGeometry:
		return false
	case st.Path == "geometry":
		// INSPIRE: the main geometry lives in a <geometry> element
		h.alreadyFoundGeometry = true
		return true
	}
	return true
}

func (h *handler) endElementFeature() {
	if h.depth == h.frameDepth() {
		h.r.popState()
		h.pop()
		return
	}
	h.r.state.PopPath()
}

func (h *handler) endElementAttribute() {
	r := h.r
	st := r.state

	if h.inCurField {
		if !h.hasCurField && r.opts.EmptyAsNull {
			if h.hasValue {
				r.setFeaturePropertyDirectly(st.Path, h.value, -1, PropertyTypeUntyped)
			}
		} else {
			r.setFeaturePropertyDirectly(st.Path, string(h.curField), h.attributeIndex, PropertyTypeUntyped)
		}
		if h.href != "" {
			r.setFeaturePropertyDirectly(st.Path+"_href", h.href, -1, PropertyTypeUntyped)
		}
		if h.uom != "" {
			r.setFeaturePropertyDirectly(st.Path+"_uom", h.uom, -1, PropertyTypeUntyped)
		}
		if h.kieli != "" {
			r.setFeaturePropertyDirectly(st.Path+"_kieli", h.kieli, -1, PropertyTypeUntyped)
		}
		h.curField = h.curField[:0]
		h.hasCurField = false
		h.inCurField = false
		h.attributeIndex = -1
	}
	h.href, h.uom, h.kieli = "", "", ""
	h.value, h.hasValue = "", false

	st.PopPath()
	if h.depth == h.frameDepth() {
		h.pop()
	}
}

func (h *handler) startElementFeatureProperty(name string, attrs Attributes) {
	if h.depth != h.frameDepth()+1 {
		return
	}
	r := h.r
	fid := getFID(attrs)
	if fid != "" {
		r.setFeaturePropertyDirectly("", "#"+fid, h.attributeIndex, PropertyTypeUntyped)
	}
	// An inline feature of a known class is read as a feature of its own.
	if r.lookForClassAtAnyLevel {
		if idx := r.classIndexByElementName(name); idx >= 0 {
			h.alreadyFoundGeometry = false
			r.pushFeature(name, fid, idx)
			h.enterFeature()
		}
	}
}

func (h *handler) endElementFeatureProperty() {
	if h.depth == h.frameDepth() {
		h.r.state.PopPath()
		h.pop()
	}
}

func (h *handler) startElementCityGMLGenericAttr(name string) {
	if name == "value" {
		h.curField = h.curField[:0]
		h.hasCurField = false
		h.inCurField = true
	}
}

func (h *handler) endElementCityGMLGenericAttr() {
	if h.cityGMLAttrName != "" && h.inCurField {
		if h.hasCurField {
			h.r.setFeaturePropertyDirectly(h.cityGMLAttrName, string(h.curField), -1, h.cityGMLAttrType)
		}
		h.curField = h.curField[:0]
		h.hasCurField = false
		h.inCurField = false
		h.cityGMLAttrName = ""
	}
	if h.depth == h.frameDepth() {
		h.pop()
	}
}

func cityGMLAttributeType(element string) PropertyType {
	switch element {
	case "intAttribute":
		return PropertyTypeInteger
	case "doubleAttribute":
		return PropertyTypeReal
	case "dateAttribute":
		return PropertyTypeDate
	}
	return PropertyTypeString
}

// dealWithAttributes handles the XML attributes of a feature child element.
func (h *handler) dealWithAttributes(name string, attrs Attributes) {
	r := h.r
	st := r.state
	class := st.Feature.Class()
	locked := class.IsSchemaLocked()
	reportAll := r.opts.ReportAllAttributes

	for i := 0; i < attrs.Len(); i++ {
		key, val := attrs.At(i)
		if key == "xmlns" || strings.HasPrefix(key, "xmlns:") {
			continue
		}
		keyNoNS := ""
		if j := strings.IndexByte(key, ':'); j >= 0 {
			keyNoNS = key[j+1:]
		}

		if locked {
			idx, ok := classifyPropertyElement(class, st.Path, name, key)
			if !ok && keyNoNS != "" {
				idx, ok = classifyPropertyElement(class, st.Path, name, keyNoNS)
			}
			if ok {
				r.setFeaturePropertyDirectly("", val, idx, PropertyTypeUntyped)
				continue
			}
		}

		switch {
		case key == "xlink:href":
			if (h.reportHref || reportAll) && h.inCurField {
				h.href = val
			} else if !locked && (h.reportHref || reportAll) {
				r.setFeaturePropertyDirectly(joinPath(st.Path, name)+"_href", val, -1, PropertyTypeUntyped)
			} else if locked {
				if idx, ok := classifyPropertyElement(class, st.Path, name+"_href", ""); ok {
					r.setFeaturePropertyDirectly("", val, idx, PropertyTypeUntyped)
				} else if h.reportHref || reportAll {
					r.diagnostic(&SchemaLockedError{Class: class.Name(), Path: joinPath(st.Path, name) + "_href"})
				}
			}
		case key == "uom":
			h.uom = val
		case key == "value":
			h.value, h.hasValue = val, true
		case h.appSchema == AppSchemaMTKGML && name == "teksti" && key == "kieli":
			h.kieli = val
		case reportAll:
			attrName := key
			if keyNoNS != "" {
				attrName = keyNoNS
			}
			path := joinPath(st.Path, name) + "@" + attrName
			if locked {
				r.diagnostic(&SchemaLockedError{Class: class.Name(), Path: path})
				break
			}
			r.setFeaturePropertyDirectly(path, val, -1, PropertyTypeUntyped)
		}
	}
}

func joinPath(path, element string) string {
	if path == "" {
		return element
	}
	return path + "|" + element
}

// getFID returns the value of the first fid or gml:id attribute.
func getFID(attrs Attributes) string {
	for i := 0; i < attrs.Len(); i++ {
		key, val := attrs.At(i)
		if key == "fid" || key == "gml:id" {
			return val
		}
	}
	return ""
}
