package parser

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	epsgPrefix    = "EPSG:"
	epsgURNPrefix = "urn:ogc:def:crs:EPSG:"
	epsgURLPrefix = "http://www.opengis.net/def/crs/EPSG/"
	epsgXMLPrefix = "http://www.opengis.net/gml/srs/epsg.xml#"
)

// normalizeGlobalSRSName rewrites a document level SRS name. A compound
// "EPSG:a, EPSG:b" name becomes "EPSG:a+b".
func normalizeGlobalSRSName(name string, considerEPSGAsURN bool) string {
	if !strings.HasPrefix(name, epsgPrefix) {
		return name
	}
	if i := strings.Index(name, ", "+epsgPrefix); i >= 0 {
		horiz := leadingInt(name[len(epsgPrefix):])
		vert := leadingInt(name[i+len(", "+epsgPrefix):])
		return fmt.Sprintf("EPSG:%d+%d", horiz, vert)
	}
	if considerEPSGAsURN {
		return epsgURNPrefix + ":" + name[len(epsgPrefix):]
	}
	return name
}

// leadingInt parses the decimal digits at the start of s, like atoi.
func leadingInt(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, _ := strconv.Atoi(s[:end])
	return n
}

// extractSRSName returns the srsName of a single geometry fragment, or ""
// when there are several fragments or none declares one.
func extractSRSName(nodes []*GeometryNode, considerEPSGAsURN bool) string {
	if len(nodes) != 1 || nodes[0] == nil {
		return ""
	}
	name, ok := nodes[0].Attr("srsName")
	if !ok {
		return ""
	}
	switch {
	case strings.HasPrefix(name, epsgPrefix) && considerEPSGAsURN:
		return epsgURNPrefix + ":" + name[len(epsgPrefix):]
	case strings.HasPrefix(name, epsgXMLPrefix):
		return epsgPrefix + name[len(epsgXMLPrefix):]
	}
	return name
}

// epsgCode extracts the EPSG code of an URN or URL style SRS name.
func epsgCode(srs string) (int, bool) {
	var rest string
	switch {
	case strings.HasPrefix(srs, epsgURNPrefix):
		// urn:ogc:def:crs:EPSG::4326 or urn:ogc:def:crs:EPSG:6.6:4326
		rest = srs[strings.LastIndexByte(srs, ':')+1:]
	case strings.HasPrefix(srs, "urn:x-ogc:def:crs:EPSG:"):
		rest = srs[strings.LastIndexByte(srs, ':')+1:]
	case strings.HasPrefix(srs, epsgURLPrefix):
		// http://www.opengis.net/def/crs/EPSG/0/4326
		rest = srs[strings.LastIndexByte(srs, '/')+1:]
	case strings.HasPrefix(srs, epsgPrefix):
		rest = srs[len(epsgPrefix):]
	default:
		return 0, false
	}
	code, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return code, true
}

// IsSRSLatLongOrder reports whether coordinates in srs are given latitude
// (or northing) first. Plain "EPSG:n" names follow the traditional GIS
// order and never qualify.
func IsSRSLatLongOrder(srs string) bool {
	if srs == "" || strings.HasPrefix(srs, epsgPrefix) {
		return false
	}
	if strings.HasPrefix(srs, "urn:") && strings.Contains(srs, ":4326") {
		return true
	}
	code, ok := epsgCode(srs)
	if !ok {
		return false
	}
	if order, ok := epsgAxisOrder(code); ok {
		return order == axisNorthEast
	}
	// geographic systems default to latitude first
	return code >= 4000 && code < 5000
}

// stripAxis returns srs with its axis order declaration removed: an EPSG
// URN or URL becomes "EPSG:n", a WKT description loses the AXIS nodes of its
// GEOGCS. The axes of an enclosing PROJCS are kept.
func stripAxis(srs string) string {
	if code, ok := epsgCode(srs); ok {
		return epsgPrefix + strconv.Itoa(code)
	}
	if !strings.Contains(srs, "AXIS[") {
		return srs
	}
	start, end, ok := wktNode(srs, "GEOGCS")
	if !ok {
		return srs
	}
	return srs[:start] + stripWKTNodes(srs[start:end], "AXIS") + srs[end:]
}

// wktNode locates the first node named keyword. end is the offset just past
// its closing bracket.
func wktNode(wkt, keyword string) (start, end int, ok bool) {
	start = strings.Index(wkt, keyword+"[")
	if start < 0 {
		return 0, 0, false
	}
	depth := 0
	for j := start + len(keyword); j < len(wkt); j++ {
		switch wkt[j] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return start, j + 1, true
			}
		}
	}
	// unbalanced brackets
	return 0, 0, false
}

// stripWKTNodes removes every node named keyword, including its bracketed
// body and the comma separating it from its predecessor.
func stripWKTNodes(wkt, keyword string) string {
	var b strings.Builder
	for {
		i, j, ok := wktNode(wkt, keyword)
		if !ok {
			b.WriteString(wkt)
			return b.String()
		}
		head := strings.TrimRight(wkt[:i], " \t\n")
		b.WriteString(strings.TrimSuffix(head, ","))
		wkt = wkt[j:]
	}
}
