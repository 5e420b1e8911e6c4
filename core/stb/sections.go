package stb

import (
	"encoding/json"
	"fmt"
)

// SectionKind is the discriminant of the Section union.
type SectionKind string

const (
	KindSteelColumnSection SectionKind = "StbSecColumnS"
	KindRCBeamSection      SectionKind = "StbSecBeamRC"
	KindSteelBeamSection   SectionKind = "StbSecBeamS"
	KindRCSlabSection      SectionKind = "StbSecSlabRC"
	KindSteelBraceSection  SectionKind = "StbSecBraceS"
)

// Section is one of SteelColumnSection, RCBeamSection, SteelBeamSection,
// RCSlabSection or SteelBraceSection.
type Section interface {
	SectionID() uint32
	SectionKind() SectionKind
	section()
}

type ColumnKind string

const (
	ColumnKindColumn ColumnKind = "COLUMN"
	ColumnKindPost   ColumnKind = "POST"
)

// SteelBaseType is the column base detail. The empty label is valid.
type SteelBaseType string

const (
	BaseNone     SteelBaseType = ""
	BaseExpose   SteelBaseType = "EXPOSE"
	BaseEmbedded SteelBaseType = "EMBEDDED"
	BaseWrap     SteelBaseType = "WRAP"
)

type BeamKind string

const (
	BeamKindGirder BeamKind = "GIRDER"
	BeamKindBeam   BeamKind = "BEAM"
)

type BraceKind string

const (
	BraceVertical   BraceKind = "VERTICAL"
	BraceHorizontal BraceKind = "HORIZONTAL"
)

// SteelPosition is where along the member a steel shape applies.
type SteelPosition string

const SteelPositionAll SteelPosition = "ALL"

type BeamBarPosition string

const (
	BarStart  BeamBarPosition = "START"
	BarCenter BeamBarPosition = "CENTER"
	BarEnd    BeamBarPosition = "END"
)

type SlabBarPosition string

const (
	SlabBarMainTop          SlabBarPosition = "MAIN_TOP"
	SlabBarMainBottom       SlabBarPosition = "MAIN_BOTTOM"
	SlabBarTransverseTop    SlabBarPosition = "TRANSVERS_TOP"
	SlabBarTransverseBottom SlabBarPosition = "TRANSVERS_BOTTOM"
)

// SteelShape references a steel profile of the catalog by name.
type SteelShape struct {
	Pos          SteelPosition `json:"pos"`
	Shape        string        `json:"shape"`
	StrengthMain string        `json:"strength_main"`
	StrengthWeb  string        `json:"strength_web"`
}

type SteelColumnSection struct {
	ID         uint32        `json:"id"`
	Name       string        `json:"name"`
	Floor      string        `json:"floor"`
	KindColumn ColumnKind    `json:"kind_column"`
	Direction  bool          `json:"direction"`
	BaseType   SteelBaseType `json:"base_type"`
	Steel      SteelShape    `json:"stb_sec_steel_column"`
}

// Haunch is a beam whose depth varies between start, center and end.
type Haunch struct {
	WidthStart  float64 `json:"width_start"`
	DepthStart  float64 `json:"depth_start"`
	WidthCenter float64 `json:"width_center"`
	DepthCenter float64 `json:"depth_center"`
	WidthEnd    float64 `json:"width_end"`
	DepthEnd    float64 `json:"depth_end"`
}

// Straight is a constant-depth profile.
type Straight struct {
	Depth float64 `json:"depth"`
}

// BeamFigure is the longitudinal profile of an RC beam. Haunch and Straight
// are alternatives; the format does not forbid both.
type BeamFigure struct {
	Haunch   *Haunch   `json:"stb_sec_haunch"`
	Straight *Straight `json:"stb_sec_straight"`
}

// BeamBarCounts is a rebar schedule for one cross-section of a beam.
type BeamBarCounts struct {
	CountMainTop1st    uint32  `json:"count_main_top_1st"`
	CountMainBottom1st uint32  `json:"count_main_bottom_1st"`
	CountStirrup       uint32  `json:"count_stirrup"`
	PitchStirrup       float64 `json:"pitch_stirrup"`
	CountWeb           uint32  `json:"count_web"`
	CountBarSpacing    uint32  `json:"count_bar_spacing"`
	PitchBarSpacing    float64 `json:"pitch_bar_spacing"`
}

// BeamBarSection is the schedule at one of the start, center or end
// positions.
type BeamBarSection struct {
	Pos BeamBarPosition `json:"pos"`
	BeamBarCounts
}

// BeamBarArrangement is either a start/center/end schedule or a single
// schedule for the whole beam.
type BeamBarArrangement struct {
	StartCenterEnd []BeamBarSection `json:"stb_sec_beam_start_center_end_section_list"`
	Same           *BeamBarCounts   `json:"stb_sec_beam_same_section"`
}

type RCBeamSection struct {
	ID                           uint32             `json:"id"`
	Name                         string             `json:"name"`
	Floor                        string             `json:"floor"`
	KindBeam                     BeamKind           `json:"kind_beam"`
	IsFoundation                 bool               `json:"is_foundation"`
	IsCanti                      bool               `json:"is_canti"`
	DReinforcementMain           string             `json:"d_reinforcement_main"`
	DStirrup                     string             `json:"d_stirrup"`
	DReinforcementWeb            string             `json:"d_reinforcement_web"`
	DBarSpacing                  string             `json:"d_bar_spacing"`
	StrengthConcrete             *string            `json:"strength_concrete"`
	StrengthReinforcementMain    string             `json:"strength_reinforcement_main"`
	StrengthReinforcement2ndMain *string            `json:"strength_reinforcement_2nd_main"`
	StrengthStirrup              string             `json:"strength_stirrup"`
	StrengthReinforcementWeb     string             `json:"strength_reinforcement_web"`
	StrengthBarSpacing           string             `json:"strength_bar_spacing"`
	DepthCoverLeft               *float64           `json:"depth_cover_left"`
	DepthCoverRight              *float64           `json:"depth_cover_right"`
	DepthCoverTop                *float64           `json:"depth_cover_top"`
	DepthCoverBottom             *float64           `json:"depth_cover_bottom"`
	Figure                       BeamFigure         `json:"stb_sec_figure"`
	BarArrangement               BeamBarArrangement `json:"stb_sec_bar_arrangement"`
}

type SteelBeamSection struct {
	ID       uint32     `json:"id"`
	Name     string     `json:"name"`
	Floor    string     `json:"floor"`
	KindBeam BeamKind   `json:"kind_beam"`
	IsCanti  bool       `json:"is_canti"`
	Steel    SteelShape `json:"stb_sec_steel_beam"`
}

// SlabFigure is the thickness profile of an RC slab.
type SlabFigure struct {
	Straight Straight `json:"stb_sec_straight"`
}

// SlabBar is one layer of a one-way slab reinforcement.
type SlabBar struct {
	Pos      SlabBarPosition `json:"pos"`
	Strength string          `json:"strength"`
	D        string          `json:"d"`
	Pitch    float64         `json:"pitch"`
}

type SlabBarArrangement struct {
	Bars []SlabBar `json:"stb_sec_1way_slab_1_list"`
}

type RCSlabSection struct {
	ID               uint32             `json:"id"`
	Name             string             `json:"name"`
	IsFoundation     bool               `json:"is_foundation"`
	IsCanti          bool               `json:"is_canti"`
	StrengthConcrete string             `json:"strength_concrete"`
	Figure           SlabFigure         `json:"stb_sec_figure"`
	BarArrangement   SlabBarArrangement `json:"stb_sec_bar_arrangement"`
}

type SteelBraceSection struct {
	ID        uint32     `json:"id"`
	Name      string     `json:"name"`
	Floor     string     `json:"floor"`
	KindBrace BraceKind  `json:"kind_brace"`
	Steel     SteelShape `json:"stb_sec_steel_brace"`
}

func (s SteelColumnSection) SectionID() uint32 { return s.ID }
func (s RCBeamSection) SectionID() uint32      { return s.ID }
func (s SteelBeamSection) SectionID() uint32   { return s.ID }
func (s RCSlabSection) SectionID() uint32      { return s.ID }
func (s SteelBraceSection) SectionID() uint32  { return s.ID }

func (SteelColumnSection) SectionKind() SectionKind { return KindSteelColumnSection }
func (RCBeamSection) SectionKind() SectionKind      { return KindRCBeamSection }
func (SteelBeamSection) SectionKind() SectionKind   { return KindSteelBeamSection }
func (RCSlabSection) SectionKind() SectionKind      { return KindRCSlabSection }
func (SteelBraceSection) SectionKind() SectionKind  { return KindSteelBraceSection }

func (SteelColumnSection) section() {}
func (RCBeamSection) section()      {}
func (SteelBeamSection) section()   {}
func (RCSlabSection) section()      {}
func (SteelBraceSection) section()  {}

// SectionMap maps section ids to sections of one kind.
type SectionMap map[uint32]Section

func (m SectionMap) MarshalJSON() ([]byte, error) {
	return encodeUnion(m, func(v Section) string { return string(v.SectionKind()) })
}

func (m *SectionMap) UnmarshalJSON(data []byte) error {
	out, err := decodeUnion[uint32](data, decodeSection)
	if err != nil {
		return err
	}
	*m = out
	return nil
}

func decodeSection(tag string, body json.RawMessage) (Section, error) {
	switch SectionKind(tag) {
	case KindSteelColumnSection:
		return decodeAs[Section, SteelColumnSection](body)
	case KindRCBeamSection:
		return decodeAs[Section, RCBeamSection](body)
	case KindSteelBeamSection:
		return decodeAs[Section, SteelBeamSection](body)
	case KindRCSlabSection:
		return decodeAs[Section, RCSlabSection](body)
	case KindSteelBraceSection:
		return decodeAs[Section, SteelBraceSection](body)
	}
	return nil, fmt.Errorf("unknown section tag %q", tag)
}

// Sections holds one map per supported section kind and the shared steel
// profile catalog.
type Sections struct {
	ColumnS SectionMap     `json:"column_s_map"`
	BeamRC  SectionMap     `json:"beam_rc_map"`
	BeamS   SectionMap     `json:"beam_s_map"`
	SlabRC  SectionMap     `json:"slab_rc_map"`
	BraceS  SectionMap     `json:"brace_s_map"`
	Steel   ProfileCatalog `json:"stb_sec_steel"`
}

// NewSections returns a Sections value with every map allocated.
func NewSections() Sections {
	return Sections{
		ColumnS: SectionMap{},
		BeamRC:  SectionMap{},
		BeamS:   SectionMap{},
		SlabRC:  SectionMap{},
		BraceS:  SectionMap{},
		Steel:   ProfileCatalog{},
	}
}

// Len returns the number of sections, excluding steel profiles.
func (s Sections) Len() int {
	return len(s.ColumnS) + len(s.BeamRC) + len(s.BeamS) + len(s.SlabRC) + len(s.BraceS)
}
