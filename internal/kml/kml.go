// Package kml decodes Keyhole Markup Language documents into the canonical
// feature collection.
//
// Every Placemark is converted, at any depth below Document and Folder
// elements. Supported geometries are Point, LineString, LinearRing, Polygon
// and MultiGeometry. Styles, overlays and tours are skipped.
package kml

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/simonhull/geolayer/internal/registry"
	"github.com/simonhull/geolayer/internal/types"
)

const stage = "kml"

func init() {
	registry.Register(types.FormatKML, &decoder{})
}

type decoder struct{}

// Decode implements registry.Decoder.
//
// Documents that fail to parse yield an empty collection and a warning,
// unless opts.StrictKML is set, in which case they are MalformedXML.
func (d *decoder) Decode(ctx context.Context, set *types.BufferSet, opts types.DecodeOptions) (*types.Decoded, error) {
	buf, ok := set.Get(types.RoleTextPayload)
	if !ok {
		return nil, types.NewError(types.KindMalformedXML, "", "no KML payload", nil)
	}

	out, err := Parse(ctx, strings.NewReader(buf.Text), opts.StrictKML)
	if err == nil {
		return out, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if opts.StrictKML {
		return nil, types.NewError(types.KindMalformedXML, buf.Name, "", err)
	}
	return &types.Decoded{
		Collection: types.NewFeatureCollection(0),
		Warnings: []types.Warning{{
			Stage:   stage,
			Message: fmt.Sprintf("%s could not be parsed, showing no features: %v", buf.Name, err),
			Record:  -1,
		}},
	}, nil
}

// Parse streams r and converts every Placemark.
//
// When strict is false a placemark with unusable coordinates keeps its
// properties, gets a nil geometry, and is reported as a warning. When strict
// is true it fails the parse.
func Parse(ctx context.Context, r io.Reader, strict bool) (*types.Decoded, error) {
	d := xml.NewDecoder(r)
	// Text reaching the decoder is already UTF-8, whatever the prolog declares.
	d.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	out := &types.Decoded{Collection: types.NewFeatureCollection(0)}
	sawRoot := false
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawRoot = true
		if se.Name.Local != "Placemark" {
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var pm placemark
		if err := d.DecodeElement(&pm, &se); err != nil {
			return nil, err
		}

		index := out.Collection.Len()
		if pm.geomErr != nil {
			if strict {
				return nil, fmt.Errorf("placemark %d: %w", index, pm.geomErr)
			}
			out.Warnings = append(out.Warnings, types.Warning{
				Stage:   stage,
				Message: "geometry dropped: " + pm.geomErr.Error(),
				Record:  index,
			})
			pm.geometry = nil
		}

		f := types.NewFeature(pm.geometry, pm.properties)
		if pm.id != "" {
			f.ID = pm.id
		}
		out.Collection.Features = append(out.Collection.Features, f)
	}

	if !sawRoot {
		return nil, errors.New("document has no root element")
	}
	return out, nil
}

type placemark struct {
	geomErr    error
	geometry   *types.Geometry
	properties map[string]any
	id         string
}

// UnmarshalXML walks the placemark's children in document order.
func (p *placemark) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	p.properties = map[string]any{}
	for _, a := range start.Attr {
		if a.Name.Local == "id" {
			p.id = a.Value
		}
	}

	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return nil
		case xml.StartElement:
			if err := p.child(d, t); err != nil {
				return err
			}
		}
	}
}

func (p *placemark) child(d *xml.Decoder, se xml.StartElement) error {
	switch se.Name.Local {
	case "name", "description":
		var s string
		if err := d.DecodeElement(&s, &se); err != nil {
			return err
		}
		p.properties[se.Name.Local] = strings.TrimSpace(s)
	case "ExtendedData":
		var ed extendedData
		if err := d.DecodeElement(&ed, &se); err != nil {
			return err
		}
		ed.apply(p.properties)
	default:
		if !isGeometry(se.Name.Local) || p.geometry != nil || p.geomErr != nil {
			return d.Skip()
		}
		g, err := decodeGeometry(d, se)
		var ce *coordinateError
		if errors.As(err, &ce) {
			p.geomErr = ce
			return nil
		}
		if err != nil {
			return err
		}
		p.geometry = g
	}
	return nil
}

type extendedData struct {
	Data []struct {
		Name  string `xml:"name,attr"`
		Value string `xml:"value"`
	} `xml:"Data"`
	SchemaData []struct {
		SimpleData []struct {
			Name  string `xml:"name,attr"`
			Value string `xml:",chardata"`
		} `xml:"SimpleData"`
	} `xml:"SchemaData"`
}

func (ed *extendedData) apply(props map[string]any) {
	for _, d := range ed.Data {
		if d.Name != "" {
			props[d.Name] = strings.TrimSpace(d.Value)
		}
	}
	for _, sd := range ed.SchemaData {
		for _, s := range sd.SimpleData {
			if s.Name != "" {
				props[s.Name] = strings.TrimSpace(s.Value)
			}
		}
	}
}
