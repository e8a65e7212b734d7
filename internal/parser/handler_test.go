package parser

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerCityGMLGenericAttributes(t *testing.T) {
	doc := `<core:CityModel xmlns:core="http://www.opengis.net/citygml/2.0">
  <core:cityObjectMember>
    <bldg:Building gml:id="b1">
      <gen:stringAttribute name="usage"><gen:value>office</gen:value></gen:stringAttribute>
      <gen:intAttribute name="floors"><gen:value>4</gen:value></gen:intAttribute>
      <gen:doubleAttribute name="height"><gen:value>12</gen:value></gen:doubleAttribute>
      <bldg:lod1Solid><gml:Solid><gml:exterior><gml:CompositeSurface>
        <gml:surfaceMember><gml:Polygon><gml:exterior><gml:LinearRing>
          <gml:posList>0 0 0 1 0 0 1 1 0 0 0 0</gml:posList>
        </gml:LinearRing></gml:exterior></gml:Polygon></gml:surfaceMember>
      </gml:CompositeSurface></gml:exterior></gml:Solid></bldg:lod1Solid>
    </bldg:Building>
  </core:cityObjectMember>
</core:CityModel>`

	r := newStringReader(t, doc, nil)
	features := readAll(t, r)
	require.Len(t, features, 1)
	f := features[0]
	class := f.Class()

	assert.Equal(t, "Building", class.Name())
	assert.Equal(t, "b1", f.FID())
	assert.Equal(t, []string{"office"}, propertyByName(t, f, "usage"))
	assert.Equal(t, []string{"4"}, propertyByName(t, f, "floors"))
	assert.Equal(t, PropertyTypeString, class.Property(class.PropertyIndex("usage")).Type())
	assert.Equal(t, PropertyTypeInteger, class.Property(class.PropertyIndex("floors")).Type())
	assert.Equal(t, PropertyTypeReal, class.Property(class.PropertyIndex("height")).Type())

	// CityGML posLists default to three dimensions
	require.True(t, f.HasGeometry())
	g, err := BuildGeometry(f.GeometryList(), GeometryBuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, GeometryTypeMultiPolygon, GeometryTypeOf(g))
	assert.Equal(t, orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}}, g.Bound())
}

func TestHandlerAIXMElevatedPoint(t *testing.T) {
	doc := `<message:AIXMBasicMessage>
  <message:hasMember>
    <aixm:AirportHeliport gml:id="a1">
      <aixm:timeSlice>
        <aixm:AirportHeliportTimeSlice>
          <aixm:designator>EHAM</aixm:designator>
          <aixm:ARP>
            <aixm:ElevatedPoint srsName="urn:ogc:def:crs:EPSG::4326">
              <gml:pos>52.3 4.76</gml:pos>
              <aixm:elevation uom="FT">-11</aixm:elevation>
            </aixm:ElevatedPoint>
          </aixm:ARP>
        </aixm:AirportHeliportTimeSlice>
      </aixm:timeSlice>
    </aixm:AirportHeliport>
  </message:hasMember>
</message:AIXMBasicMessage>`

	r := newStringReader(t, doc, nil)
	features := readAll(t, r)
	require.Len(t, features, 1)
	f := features[0]

	assert.Equal(t, "AirportHeliport", f.Class().Name())
	assert.Equal(t, []string{"EHAM"}, propertyByName(t, f, "designator"))
	assert.Equal(t, []string{"-11"}, propertyByName(t, f, "elevation"))
	assert.Equal(t, []string{"FT"}, propertyByName(t, f, "elevation_uom"))
	assert.Equal(t, 3, f.Class().PropertyCount())

	point := f.Geometry(0)
	require.NotNil(t, point)
	assert.Equal(t, "Point", point.Name)
	srs, _ := point.Attr("srsName")
	assert.Equal(t, "urn:ogc:def:crs:EPSG::4326", srs)

	g, err := BuildGeometry(f.GeometryList(), GeometryBuildOptions{InvertAxisOrderIfLatLong: true})
	require.NoError(t, err)
	assert.Equal(t, 4.76, g.Bound().Min[0])
	assert.Equal(t, 52.3, g.Bound().Min[1])
}

func TestHandlerWFSJointLayer(t *testing.T) {
	doc := `<wfs:FeatureCollection>
  <wfs:member>
    <wfs:Tuple>
      <wfs:member><ns:City gml:id="c1"><ns:name>Paris</ns:name></ns:City></wfs:member>
      <wfs:member><ns:Country gml:id="fr"><ns:code>FR</ns:code></ns:Country></wfs:member>
    </wfs:Tuple>
  </wfs:member>
</wfs:FeatureCollection>`

	r := newStringReader(t, doc, func(o *ReadOptions) { o.IsWFSJointLayer = true })
	features := readAll(t, r)
	require.Len(t, features, 1)
	f := features[0]

	assert.Equal(t, "Tuple", f.Class().Name())
	assert.Equal(t, []string{"c1"}, propertyByName(t, f, "City.gml_id"))
	assert.Equal(t, []string{"Paris"}, propertyByName(t, f, "City.name"))
	assert.Equal(t, []string{"fr"}, propertyByName(t, f, "Country.gml_id"))
	assert.Equal(t, []string{"FR"}, propertyByName(t, f, "Country.code"))
}

func TestHandlerAttributes(t *testing.T) {
	doc := `<FeatureCollection>
  <featureMember>
    <Tower gml:id="t1">
      <height uom="m">12.5</height>
      <owner xlink:href="#p1"/>
      <status value="active"/>
      <name lang="fr">Tour</name>
      <comment>   </comment>
    </Tower>
  </featureMember>
</FeatureCollection>`

	t.Run("defaults", func(t *testing.T) {
		r := newStringReader(t, doc, nil)
		features := readAll(t, r)
		require.Len(t, features, 1)
		f := features[0]
		class := f.Class()

		assert.Equal(t, []string{"12.5"}, propertyByName(t, f, "height"))
		assert.Equal(t, []string{"m"}, propertyByName(t, f, "height_uom"))
		assert.Equal(t, []string{"active"}, propertyByName(t, f, "status"))
		assert.Equal(t, []string{"Tour"}, propertyByName(t, f, "name"))
		assert.Equal(t, -1, class.PropertyIndex("owner_href"), "hrefs are only reported on request")
		assert.Equal(t, -1, class.PropertyIndex("name_lang"))
		assert.Equal(t, -1, class.PropertyIndex("comment"), "blank elements are null")
	})

	t.Run("report all attributes", func(t *testing.T) {
		r := newStringReader(t, doc, func(o *ReadOptions) { o.ReportAllAttributes = true })
		features := readAll(t, r)
		require.Len(t, features, 1)
		f := features[0]

		assert.Equal(t, []string{"#p1"}, propertyByName(t, f, "owner_href"))
		assert.Equal(t, []string{"fr"}, propertyByName(t, f, "name_lang"))
		assert.Equal(t, -1, f.Class().PropertyIndex("owner"))
	})

	t.Run("empty strings kept", func(t *testing.T) {
		r := newStringReader(t, doc, func(o *ReadOptions) { o.EmptyAsNull = false })
		features := readAll(t, r)
		require.Len(t, features, 1)
		assert.Equal(t, []string{""}, propertyByName(t, features[0], "comment"))
	})

	t.Run("always string", func(t *testing.T) {
		r := newStringReader(t, doc, func(o *ReadOptions) { o.AlwaysString = true })
		features := readAll(t, r)
		require.Len(t, features, 1)
		class := features[0].Class()
		assert.Equal(t, PropertyTypeString, class.Property(class.PropertyIndex("height")).Type())
	})
}

func TestHandlerRepeatedAndNestedProperties(t *testing.T) {
	doc := `<FeatureCollection>
  <featureMember>
    <Parcel>
      <tag>1</tag>
      <tag>2</tag>
      <address><street>Main</street><number>5</number></address>
    </Parcel>
  </featureMember>
</FeatureCollection>`

	r := newStringReader(t, doc, nil)
	features := readAll(t, r)
	require.Len(t, features, 1)
	f := features[0]
	class := f.Class()

	assert.Equal(t, []string{"1", "2"}, propertyByName(t, f, "tag"))
	assert.Equal(t, PropertyTypeIntegerList, class.Property(class.PropertyIndex("tag")).Type())

	street := class.Property(class.PropertyIndex("street"))
	require.NotNil(t, street)
	assert.Equal(t, "address|street", street.SrcElement())
	assert.Equal(t, []string{"5"}, propertyByName(t, f, "number"))
	assert.Equal(t, -1, class.PropertyIndex("address"))
}

func TestHandlerFeatureProperty(t *testing.T) {
	doc := `<FeatureCollection>
  <featureMember>
    <Road gml:id="r1">
      <crosses><River gml:id="rv1"><name>Seine</name></River></crosses>
    </Road>
  </featureMember>
</FeatureCollection>`

	r := newStringReader(t, doc, nil)
	road := NewFeatureClass("Road")
	crosses := NewPropertyDefn("crosses", "crosses")
	crosses.SetType(PropertyTypeFeatureProperty)
	_, err := road.AddProperty(crosses)
	require.NoError(t, err)
	river := NewFeatureClass("River")
	_, err = river.AddProperty(NewPropertyDefn("name", "name"))
	require.NoError(t, err)
	for _, c := range []*FeatureClass{road, river} {
		c.SetSchemaLocked(true)
		_, err := r.AddClass(c)
		require.NoError(t, err)
	}
	r.SetClassListLocked(true)
	require.True(t, r.ShouldLookForClassAtAnyLevel())

	features := readAll(t, r)
	require.Len(t, features, 2)

	assert.Equal(t, "River", features[0].Class().Name())
	assert.Equal(t, "rv1", features[0].FID())
	assert.Equal(t, []string{"Seine"}, propertyByName(t, features[0], "name"))

	assert.Equal(t, "Road", features[1].Class().Name())
	assert.Equal(t, []string{"#rv1"}, propertyByName(t, features[1], "crosses"))
}

func TestHandlerMTKGML(t *testing.T) {
	doc := `<Maastotiedot srsName="EPSG:3067">
  <rakennukset>
    <Rakennus gid="123">
      <sijainti><Piste><gml:pos>385000 6672000</gml:pos></Piste></sijainti>
      <nimi><teksti kieli="fin">Talo</teksti></nimi>
    </Rakennus>
  </rakennukset>
</Maastotiedot>`

	r := newStringReader(t, doc, nil)
	features := readAll(t, r)
	require.Len(t, features, 1)
	f := features[0]

	assert.Equal(t, "Rakennus", f.Class().Name())
	assert.Equal(t, "EPSG:3067", r.GlobalSRSName())
	assert.Equal(t, []string{"123"}, propertyByName(t, f, "gid"))
	assert.Equal(t, []string{"Talo"}, propertyByName(t, f, "teksti"))
	assert.Equal(t, []string{"fin"}, propertyByName(t, f, "teksti_kieli"))
	require.NotNil(t, f.Geometry(0))
	assert.Equal(t, "Point", f.Geometry(0).Name)
	assert.Equal(t, 0, f.Class().Property(f.Class().PropertyIndex("teksti")).Width(), "no string widths for this schema")
}

func TestHandlerIgnoresBoundedBy(t *testing.T) {
	doc := `<FeatureCollection>
  <gml:boundedBy><gml:Envelope srsName="EPSG:2154" srsDimension="2">
    <gml:lowerCorner>0 0</gml:lowerCorner><gml:upperCorner>1 1</gml:upperCorner>
  </gml:Envelope></gml:boundedBy>
  <featureMember>
    <Lake>
      <gml:boundedBy><gml:Envelope><gml:lowerCorner>0 0</gml:lowerCorner><gml:upperCorner>1 1</gml:upperCorner></gml:Envelope></gml:boundedBy>
      <name>Annecy</name>
    </Lake>
  </featureMember>
</FeatureCollection>`

	r := newStringReader(t, doc, nil)
	features := readAll(t, r)
	require.Len(t, features, 1)
	assert.Equal(t, "EPSG:2154", r.GlobalSRSName())
	assert.False(t, features[0].HasGeometry())
	assert.Equal(t, 1, features[0].Class().PropertyCount())
}

func TestHandlerLockedClassReportsDrops(t *testing.T) {
	doc := `<FeatureCollection>
  <featureMember>
    <Tower>
      <name lang="fr">Eiffel</name>
      <extra><inner>1</inner></extra>
    </Tower>
  </featureMember>
</FeatureCollection>`

	var diags []error
	r := newStringReader(t, doc, func(o *ReadOptions) {
		o.ReportAllAttributes = true
		o.OnDiagnostic = func(err error) { diags = append(diags, err) }
	})
	c := NewFeatureClass("Tower")
	_, err := c.AddProperty(NewPropertyDefn("name", "name"))
	require.NoError(t, err)
	c.SetSchemaLocked(true)
	_, err = r.AddClass(c)
	require.NoError(t, err)
	r.SetClassListLocked(true)

	features := readAll(t, r)
	require.Len(t, features, 1)
	assert.Equal(t, []string{"Eiffel"}, propertyByName(t, features[0], "name"))
	assert.Equal(t, 1, c.PropertyCount())

	var paths []string
	for _, d := range diags {
		locked, ok := errors.Cause(d).(*SchemaLockedError)
		require.True(t, ok, "unexpected diagnostic %v", d)
		assert.Equal(t, "Tower", locked.Class)
		paths = append(paths, locked.Path)
	}
	assert.Equal(t, []string{"name@lang", "extra|inner"}, paths)
}
