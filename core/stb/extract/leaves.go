package extract

import (
	"github.com/FocuswithJustin/stbview/core/stb"
	"github.com/FocuswithJustin/stbview/core/xml"
)

// common reads StbCommon/StbReinforcement_Strength_List. D and SD are kept
// as written.
func (x *extractor) common(root *xml.Node) (stb.Common, error) {
	c := stb.Common{ReinforcementStrength: map[string]string{}}
	r := newReader(root).child("StbCommon").child("StbReinforcement_Strength_List")
	if err := r.Err(); err != nil {
		return c, x.keep(err)
	}
	return c, x.each(r.el, func(el *xml.Node) error {
		e := newReader(el)
		d, sd := verbatim(e, "D"), verbatim(e, "SD")
		if err := e.Err(); err != nil {
			return err
		}
		c.ReinforcementStrength[d] = sd
		return nil
	})
}

func (x *extractor) nodes(model *xml.Node) (stb.NodeTable, error) {
	table := stb.NodeTable{}
	container, err := required(model, "StbNodes")
	if err != nil {
		return table, x.keep(err)
	}
	return table, x.each(container, func(el *xml.Node) error {
		r := newReader(el)
		id := scalar[uint32](r, "id")
		n := stb.Node{
			X:        scalar[float64](r, "x"),
			Y:        scalar[float64](r, "y"),
			Z:        scalar[float64](r, "z"),
			Kind:     enum(r, "kind", nodeKinds),
			IDMember: optional[uint32](r, "id_member"),
		}
		if err := r.Err(); err != nil {
			return err
		}
		table[id] = n
		return nil
	})
}

// nodeIDList reads the required StbNodeid_List child of r.
func nodeIDList(r reader) []stb.NodeRef {
	var refs []stb.NodeRef
	for _, c := range r.child("StbNodeid_List").children() {
		refs = append(refs, stb.NodeRef{ID: scalar[int32](c, "id")})
	}
	return refs
}

func (x *extractor) axes(model *xml.Node) (stb.Axes, error) {
	var axes stb.Axes
	container, err := required(model, "StbAxes")
	if err != nil {
		return axes, x.keep(err)
	}
	err = x.each(container, func(el *xml.Node) error {
		var dst *[]stb.Axis
		switch el.Name() {
		case "StbX_Axis":
			dst = &axes.X
		case "StbY_Axis":
			dst = &axes.Y
		default:
			return unknownTag(el)
		}
		r := newReader(el)
		a := stb.Axis{
			ID:       scalar[int32](r, "id"),
			Name:     text(r, "name"),
			Distance: scalar[float64](r, "distance"),
			NodeIDs:  nodeIDList(r),
		}
		if err := r.Err(); err != nil {
			return err
		}
		*dst = append(*dst, a)
		return nil
	})
	return axes, err
}

func (x *extractor) stories(model *xml.Node) ([]stb.Story, error) {
	var stories []stb.Story
	container, err := required(model, "StbStories")
	if err != nil {
		return nil, x.keep(err)
	}
	err = x.each(container, func(el *xml.Node) error {
		r := newReader(el)
		s := stb.Story{
			ID:               scalar[int32](r, "id"),
			Name:             text(r, "name"),
			Height:           scalar[float64](r, "height"),
			Kind:             enum(r, "kind", storyKinds),
			ConcreteStrength: verbatim(r, "concrete_strength"),
			NodeIDs:          nodeIDList(r),
		}
		if err := r.Err(); err != nil {
			return err
		}
		stories = append(stories, s)
		return nil
	})
	return stories, err
}

func (x *extractor) extensions(root *xml.Node) ([]stb.Extension, error) {
	var list []stb.Extension
	container, err := required(root, "StbExtensions")
	if err != nil {
		return nil, x.keep(err)
	}
	err = x.each(container, func(el *xml.Node) error {
		r := newReader(el)
		e := stb.Extension{
			Identifier:  text(r, "identifier"),
			Description: text(r, "description"),
		}
		if err := r.Err(); err != nil {
			return err
		}
		list = append(list, e)
		return nil
	})
	return list, err
}
