package extract

import (
	"github.com/FocuswithJustin/stbview/core/stb"
	"github.com/FocuswithJustin/stbview/core/xml"
	"github.com/FocuswithJustin/stbview/internal/logging"
)

// memberReader reads one member element of a group.
type memberReader func(r reader) stb.Member

func (x *extractor) members(model *xml.Node, into stb.Members) error {
	container, err := required(model, "StbMembers")
	if err != nil {
		return x.keep(err)
	}
	for _, group := range container.Children() {
		var err error
		switch group.Name() {
		case "StbColumns":
			err = x.memberGroup(group, into.Columns, column)
		case "StbPosts":
			err = x.memberGroup(group, into.Posts, post)
		case "StbGirders":
			err = x.memberGroup(group, into.Girders, girder)
		case "StbBeams":
			err = x.memberGroup(group, into.Beams, beam)
		case "StbBraces":
			err = x.memberGroup(group, into.Braces, brace)
		case "StbSlabs":
			err = x.memberGroup(group, into.Slabs, slab)
		default:
			// StbWalls, StbFootings, StbStripFootings, StbPiles,
			// StbFoundationColumns, StbParapets, StbOpens and anything newer.
			logging.ElementSkipped(container.Name(), group.Name(), group.Path())
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// memberGroup reads every member of group into dst, keyed by id. A later
// member with the same id replaces an earlier one.
func (x *extractor) memberGroup(group *xml.Node, dst stb.MemberMap, read memberReader) error {
	return x.each(group, func(el *xml.Node) error {
		r := newReader(el)
		id := scalar[uint32](r, "id")
		m := read(r)
		if err := r.Err(); err != nil {
			return err
		}
		dst[id] = m
		return nil
	})
}

func column(r reader) stb.Member {
	return stb.Column{
		ID:              scalar[uint32](r, "id"),
		Name:            verbatim(r, "name"),
		IDNodeBottom:    scalar[uint32](r, "idNode_bottom"),
		IDNodeTop:       scalar[uint32](r, "idNode_top"),
		Rotate:          scalar[float64](r, "rotate"),
		IDSection:       scalar[uint32](r, "id_section"),
		KindStructure:   enum(r, "kind_structure", columnStructures),
		OffsetX:         scalar[float64](r, "offset_X"),
		OffsetY:         scalar[float64](r, "offset_Y"),
		ConditionBottom: enum(r, "condition_bottom", jointConditions),
		ConditionTop:    enum(r, "condition_top", jointConditions),
	}
}

func post(r reader) stb.Member {
	return stb.Post{
		ID:              scalar[uint32](r, "id"),
		Name:            verbatim(r, "name"),
		IDNodeBottom:    scalar[uint32](r, "idNode_bottom"),
		IDNodeTop:       scalar[uint32](r, "idNode_top"),
		Rotate:          scalar[float64](r, "rotate"),
		IDSection:       scalar[uint32](r, "id_section"),
		KindStructure:   enum(r, "kind_structure", columnStructures),
		OffsetX:         scalar[float64](r, "offset_X"),
		OffsetY:         scalar[float64](r, "offset_Y"),
		OffsetBottomX:   scalar[float64](r, "offset_bottom_X"),
		OffsetBottomY:   scalar[float64](r, "offset_bottom_Y"),
		OffsetBottomZ:   scalar[float64](r, "offset_bottom_Z"),
		OffsetTopX:      scalar[float64](r, "offset_top_X"),
		OffsetTopY:      scalar[float64](r, "offset_top_Y"),
		OffsetTopZ:      scalar[float64](r, "offset_top_Z"),
		ConditionBottom: enum(r, "condition_bottom", jointConditions),
		ConditionTop:    enum(r, "condition_top", jointConditions),
	}
}

func girder(r reader) stb.Member {
	return stb.Girder{
		ID:            scalar[uint32](r, "id"),
		Name:          verbatim(r, "name"),
		IDNodeStart:   scalar[uint32](r, "idNode_start"),
		IDNodeEnd:     scalar[uint32](r, "idNode_end"),
		Rotate:        scalar[float64](r, "rotate"),
		IDSection:     scalar[uint32](r, "id_section"),
		KindStructure: enum(r, "kind_structure", girderStructures),
		IsFoundation:  scalar[bool](r, "isFoundation"),
		Offset:        scalar[float64](r, "offset"),
		Level:         scalar[float64](r, "level"),
		TypeHaunchH:   optionalEnum(r, "type_haunch_H", haunchTypes),
	}
}

func beam(r reader) stb.Member {
	return stb.Beam{
		ID:            scalar[uint32](r, "id"),
		Name:          verbatim(r, "name"),
		IDNodeStart:   scalar[uint32](r, "idNode_start"),
		IDNodeEnd:     scalar[uint32](r, "idNode_end"),
		Rotate:        scalar[float64](r, "rotate"),
		IDSection:     scalar[uint32](r, "id_section"),
		KindStructure: enum(r, "kind_structure", girderStructures),
		IsFoundation:  scalar[bool](r, "isFoundation"),
		Offset:        scalar[float64](r, "offset"),
		Level:         scalar[float64](r, "level"),
	}
}

func brace(r reader) stb.Member {
	return stb.Brace{
		ID:             scalar[uint32](r, "id"),
		Name:           verbatim(r, "name"),
		IDNodeStart:    scalar[uint32](r, "idNode_start"),
		IDNodeEnd:      scalar[uint32](r, "idNode_end"),
		Rotate:         scalar[float64](r, "rotate"),
		IDSection:      scalar[uint32](r, "id_section"),
		KindStructure:  enum(r, "kind_structure", braceStructures),
		OffsetStartX:   scalar[float64](r, "offset_start_X"),
		OffsetStartY:   scalar[float64](r, "offset_start_Y"),
		OffsetStartZ:   scalar[float64](r, "offset_start_Z"),
		OffsetEndX:     scalar[float64](r, "offset_end_X"),
		OffsetEndY:     scalar[float64](r, "offset_end_Y"),
		OffsetEndZ:     scalar[float64](r, "offset_end_Z"),
		ConditionStart: enum(r, "condition_start", jointConditions),
		ConditionEnd:   enum(r, "condition_end", jointConditions),
	}
}

func slab(r reader) stb.Member {
	return stb.Slab{
		ID:            scalar[uint32](r, "id"),
		Name:          verbatim(r, "name"),
		IDSection:     scalar[uint32](r, "id_section"),
		KindStructure: enum(r, "kind_structure", slabStructures),
		KindSlab:      enum(r, "kind_slab", slabKinds),
		Level:         scalar[float64](r, "level"),
		IsFoundation:  scalar[bool](r, "isFoundation"),
	}
}
