package extract

import (
	stberrors "github.com/FocuswithJustin/stbview/core/errors"
	"github.com/FocuswithJustin/stbview/core/stb"
	"github.com/FocuswithJustin/stbview/core/xml"
	"github.com/FocuswithJustin/stbview/internal/logging"
)

const steelCatalogTag = "StbSecSteel"

// sectionReader reads one section element.
type sectionReader func(r reader) stb.Section

func (x *extractor) sections(model *xml.Node, into *stb.Sections) error {
	container, err := required(model, "StbSections")
	if err != nil {
		return x.keep(err)
	}
	seenCatalog := false
	for _, el := range container.Children() {
		if el.Name() == steelCatalogTag {
			if seenCatalog {
				logging.Warn("steel catalog replaced", "path", el.Path())
			}
			seenCatalog = true
			catalog, err := x.catalog(el)
			if err != nil {
				return err
			}
			into.Steel = catalog
			continue
		}
		if err := x.keep(x.section(el, into)); err != nil {
			return err
		}
	}
	return nil
}

// section reads one non-catalog section element into its kind map.
func (x *extractor) section(el *xml.Node, into *stb.Sections) error {
	var (
		dst  stb.SectionMap
		read sectionReader
	)
	switch el.Name() {
	case steelCatalogTag:
		return &stberrors.ExtractError{
			Code:    stberrors.CodeSchemaContract,
			Element: el.Name(),
			Path:    el.Path(),
		}
	case "StbSecColumn_S":
		dst, read = into.ColumnS, steelColumnSection
	case "StbSecBeam_RC":
		dst, read = into.BeamRC, rcBeamSection
	case "StbSecBeam_S":
		dst, read = into.BeamS, steelBeamSection
	case "StbSecSlab_RC":
		dst, read = into.SlabRC, rcSlabSection
	case "StbSecBrace_S":
		dst, read = into.BraceS, steelBraceSection
	default:
		// StbSecColumn_RC, _SRC, _CFT, StbSecBeam_SRC, slab decks and precast,
		// walls, foundations, piles, openings, parapets, StbSecUndefined.
		logging.ElementSkipped("StbSections", el.Name(), el.Path())
		return nil
	}

	r := newReader(el)
	id := scalar[uint32](r, "id")
	s := read(r)
	if err := r.Err(); err != nil {
		return err
	}
	dst[id] = s
	return nil
}

// steelShape reads a steel section's shape block. Column shapes are read
// verbatim; beam and brace shapes are lower-cased like catalog names.
func steelShape(r reader, shape func(reader, string) string) stb.SteelShape {
	return stb.SteelShape{
		Pos:          enum(r, "pos", steelPositions),
		Shape:        shape(r, "shape"),
		StrengthMain: text(r, "strength_main"),
		StrengthWeb:  text(r, "strength_web"),
	}
}

func steelColumnSection(r reader) stb.Section {
	return stb.SteelColumnSection{
		ID:         scalar[uint32](r, "id"),
		Name:       text(r, "name"),
		Floor:      text(r, "floor"),
		KindColumn: enum(r, "kind_column", columnKinds),
		Direction:  scalar[bool](r, "direction"),
		BaseType:   enum(r, "base_type", steelBaseTypes),
		Steel:      steelShape(r.child("StbSecSteelColumn"), verbatim),
	}
}

func steelBeamSection(r reader) stb.Section {
	return stb.SteelBeamSection{
		ID:       scalar[uint32](r, "id"),
		Name:     text(r, "name"),
		Floor:    text(r, "floor"),
		KindBeam: enum(r, "kind_beam", beamKinds),
		IsCanti:  scalar[bool](r, "isCanti"),
		Steel:    steelShape(r.child("StbSecSteelBeam"), text),
	}
}

func steelBraceSection(r reader) stb.Section {
	return stb.SteelBraceSection{
		ID:        scalar[uint32](r, "id"),
		Name:      text(r, "name"),
		Floor:     text(r, "floor"),
		KindBrace: enum(r, "kind_brace", braceKinds),
		Steel:     steelShape(r.child("StbSecSteelBrace"), text),
	}
}

func rcBeamSection(r reader) stb.Section {
	return stb.RCBeamSection{
		ID:                           scalar[uint32](r, "id"),
		Name:                         text(r, "name"),
		Floor:                        text(r, "floor"),
		KindBeam:                     enum(r, "kind_beam", beamKinds),
		IsFoundation:                 scalar[bool](r, "isFoundation"),
		IsCanti:                      scalar[bool](r, "isCanti"),
		DReinforcementMain:           text(r, "D_reinforcement_main"),
		DStirrup:                     text(r, "D_stirrup"),
		DReinforcementWeb:            text(r, "D_reinforcement_web"),
		DBarSpacing:                  text(r, "D_bar_spacing"),
		StrengthConcrete:             optionalVerbatim(r, "strength_concrete"),
		StrengthReinforcementMain:    text(r, "strength_reinforcement_main"),
		StrengthReinforcement2ndMain: optionalVerbatim(r, "strength_reinforcement_2nd_main"),
		StrengthStirrup:              text(r, "strength_stirrup"),
		StrengthReinforcementWeb:     text(r, "strength_reinforcement_web"),
		StrengthBarSpacing:           text(r, "strength_bar_spacing"),
		DepthCoverLeft:               optional[float64](r, "depth_cover_left"),
		DepthCoverRight:              optional[float64](r, "depth_cover_right"),
		DepthCoverTop:                optional[float64](r, "depth_cover_top"),
		DepthCoverBottom:             optional[float64](r, "depth_cover_bottom"),
		Figure:                       beamFigure(r.child("StbSecFigure")),
		BarArrangement:               beamBarArrangement(r.child("StbSecBar_Arrangement")),
	}
}

func beamFigure(r reader) stb.BeamFigure {
	var fig stb.BeamFigure
	if h, ok := r.optionalChild("StbSecHaunch"); ok {
		fig.Haunch = &stb.Haunch{
			WidthStart:  scalar[float64](h, "width_start"),
			DepthStart:  scalar[float64](h, "depth_start"),
			WidthCenter: scalar[float64](h, "width_center"),
			DepthCenter: scalar[float64](h, "depth_center"),
			WidthEnd:    scalar[float64](h, "width_end"),
			DepthEnd:    scalar[float64](h, "depth_end"),
		}
	}
	if s, ok := r.optionalChild("StbSecStraight"); ok {
		fig.Straight = &stb.Straight{Depth: scalar[float64](s, "depth")}
	}
	return fig
}

// beamBarArrangement reads either the start/center/end schedules or the
// single schedule of an RC beam. Other children are ignored.
func beamBarArrangement(r reader) stb.BeamBarArrangement {
	var arr stb.BeamBarArrangement
	for _, c := range r.children() {
		switch c.el.Name() {
		case "StbSecBeam_Start_Center_End_Section":
			arr.StartCenterEnd = append(arr.StartCenterEnd, stb.BeamBarSection{
				Pos:           enum(c, "pos", beamBarPositions),
				BeamBarCounts: beamBarCounts(c),
			})
		case "StbSecBeam_Same_Section":
			counts := beamBarCounts(c)
			arr.Same = &counts
		}
	}
	return arr
}

func beamBarCounts(r reader) stb.BeamBarCounts {
	return stb.BeamBarCounts{
		CountMainTop1st:    scalar[uint32](r, "count_main_top_1st"),
		CountMainBottom1st: scalar[uint32](r, "count_main_bottom_1st"),
		CountStirrup:       scalar[uint32](r, "count_stirrup"),
		PitchStirrup:       scalar[float64](r, "pitch_stirrup"),
		CountWeb:           scalar[uint32](r, "count_web"),
		CountBarSpacing:    scalar[uint32](r, "count_bar_spacing"),
		PitchBarSpacing:    scalar[float64](r, "pitch_bar_spacing"),
	}
}

func rcSlabSection(r reader) stb.Section {
	return stb.RCSlabSection{
		ID:               scalar[uint32](r, "id"),
		Name:             text(r, "name"),
		IsFoundation:     scalar[bool](r, "isFoundation"),
		IsCanti:          scalar[bool](r, "isCanti"),
		StrengthConcrete: text(r, "strength_concrete"),
		Figure: stb.SlabFigure{
			Straight: stb.Straight{Depth: scalar[float64](r.child("StbSecFigure").child("StbSecStraight"), "depth")},
		},
		BarArrangement: slabBarArrangement(r.child("StbSecBar_Arrangement")),
	}
}

func slabBarArrangement(r reader) stb.SlabBarArrangement {
	var arr stb.SlabBarArrangement
	for _, c := range r.children() {
		arr.Bars = append(arr.Bars, stb.SlabBar{
			Pos:      enum(c, "pos", slabBarPositions),
			Strength: text(c, "strength"),
			D:        text(c, "D"),
			Pitch:    scalar[float64](c, "pitch"),
		})
	}
	return arr
}
