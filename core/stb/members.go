package stb

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// MemberKind is the discriminant of the Member union. Its values are the
// tags used in the JSON encoding.
type MemberKind string

const (
	KindColumn MemberKind = "StbColumn"
	KindPost   MemberKind = "StbPost"
	KindGirder MemberKind = "StbGirder"
	KindBeam   MemberKind = "StbBeam"
	KindBrace  MemberKind = "StbBrace"
	KindSlab   MemberKind = "StbSlab"
)

// Member is one of Column, Post, Girder, Beam, Brace or Slab.
type Member interface {
	MemberID() uint32
	MemberKind() MemberKind
	// Endpoints returns the two node ids a line member connects. ok is
	// false for members without endpoints (slabs).
	Endpoints() (i, j uint32, ok bool)
	member()
}

type ColumnStructureKind string

const (
	ColumnStructureRC        ColumnStructureKind = "RC"
	ColumnStructureS         ColumnStructureKind = "S"
	ColumnStructureSRC       ColumnStructureKind = "SRC"
	ColumnStructureCFT       ColumnStructureKind = "CFT"
	ColumnStructureUndefined ColumnStructureKind = "UNDEFINED"
)

type GirderStructureKind string

const (
	GirderStructureRC        GirderStructureKind = "RC"
	GirderStructureS         GirderStructureKind = "S"
	GirderStructureSRC       GirderStructureKind = "SRC"
	GirderStructureUndefined GirderStructureKind = "UNDEFINED"
)

type BraceStructureKind string

const (
	BraceStructureRC  BraceStructureKind = "RC"
	BraceStructureS   BraceStructureKind = "S"
	BraceStructureSRC BraceStructureKind = "SRC"
)

type SlabStructureKind string

const (
	SlabStructureRC      SlabStructureKind = "RC"
	SlabStructureDeck    SlabStructureKind = "DECK"
	SlabStructurePrecast SlabStructureKind = "PRECAST"
)

type SlabKind string

const (
	SlabNormal SlabKind = "NORMAL"
	SlabCanti  SlabKind = "CANTI"
)

// JointCondition is the fixity at a member end.
type JointCondition string

const (
	JointFix JointCondition = "FIX"
	JointPin JointCondition = "PIN"
)

// HaunchType says which ends of a girder are haunched horizontally.
type HaunchType string

const (
	HaunchBoth  HaunchType = "BOTH"
	HaunchRight HaunchType = "RIGHT"
	HaunchLeft  HaunchType = "LEFT"
)

type Column struct {
	ID              uint32              `json:"id"`
	Name            string              `json:"name"`
	IDNodeBottom    uint32              `json:"id_node_bottom"`
	IDNodeTop       uint32              `json:"id_node_top"`
	Rotate          float64             `json:"rotate"`
	IDSection       uint32              `json:"id_section"`
	KindStructure   ColumnStructureKind `json:"kind_structure"`
	OffsetX         float64             `json:"offset_x"`
	OffsetY         float64             `json:"offset_y"`
	ConditionBottom JointCondition      `json:"condition_bottom"`
	ConditionTop    JointCondition      `json:"condition_top"`
}

type Post struct {
	ID              uint32              `json:"id"`
	Name            string              `json:"name"`
	IDNodeBottom    uint32              `json:"id_node_bottom"`
	IDNodeTop       uint32              `json:"id_node_top"`
	Rotate          float64             `json:"rotate"`
	IDSection       uint32              `json:"id_section"`
	KindStructure   ColumnStructureKind `json:"kind_structure"`
	OffsetX         float64             `json:"offset_x"`
	OffsetY         float64             `json:"offset_y"`
	OffsetBottomX   float64             `json:"offset_bottom_x"`
	OffsetBottomY   float64             `json:"offset_bottom_y"`
	OffsetBottomZ   float64             `json:"offset_bottom_z"`
	OffsetTopX      float64             `json:"offset_top_x"`
	OffsetTopY      float64             `json:"offset_top_y"`
	OffsetTopZ      float64             `json:"offset_top_z"`
	ConditionBottom JointCondition      `json:"condition_bottom"`
	ConditionTop    JointCondition      `json:"condition_top"`
}

type Girder struct {
	ID            uint32              `json:"id"`
	Name          string              `json:"name"`
	IDNodeStart   uint32              `json:"id_node_start"`
	IDNodeEnd     uint32              `json:"id_node_end"`
	Rotate        float64             `json:"rotate"`
	IDSection     uint32              `json:"id_section"`
	KindStructure GirderStructureKind `json:"kind_structure"`
	IsFoundation  bool                `json:"is_foundation"`
	Offset        float64             `json:"offset"`
	Level         float64             `json:"level"`
	TypeHaunchH   *HaunchType         `json:"type_haunch_h"`
}

type Beam struct {
	ID            uint32              `json:"id"`
	Name          string              `json:"name"`
	IDNodeStart   uint32              `json:"id_node_start"`
	IDNodeEnd     uint32              `json:"id_node_end"`
	Rotate        float64             `json:"rotate"`
	IDSection     uint32              `json:"id_section"`
	KindStructure GirderStructureKind `json:"kind_structure"`
	IsFoundation  bool                `json:"is_foundation"`
	Offset        float64             `json:"offset"`
	Level         float64             `json:"level"`
}

type Brace struct {
	ID             uint32             `json:"id"`
	Name           string             `json:"name"`
	IDNodeStart    uint32             `json:"id_node_start"`
	IDNodeEnd      uint32             `json:"id_node_end"`
	Rotate         float64            `json:"rotate"`
	IDSection      uint32             `json:"id_section"`
	KindStructure  BraceStructureKind `json:"kind_structure"`
	OffsetStartX   float64            `json:"offset_start_x"`
	OffsetStartY   float64            `json:"offset_start_y"`
	OffsetStartZ   float64            `json:"offset_start_z"`
	OffsetEndX     float64            `json:"offset_end_x"`
	OffsetEndY     float64            `json:"offset_end_y"`
	OffsetEndZ     float64            `json:"offset_end_z"`
	ConditionStart JointCondition     `json:"condition_start"`
	ConditionEnd   JointCondition     `json:"condition_end"`
}

// Slab is an area member; it references no endpoint nodes.
type Slab struct {
	ID            uint32            `json:"id"`
	Name          string            `json:"name"`
	IDSection     uint32            `json:"id_section"`
	KindStructure SlabStructureKind `json:"kind_structure"`
	KindSlab      SlabKind          `json:"kind_slab"`
	Level         float64           `json:"level"`
	IsFoundation  bool              `json:"is_foundation"`
}

func (m Column) MemberID() uint32 { return m.ID }
func (m Post) MemberID() uint32   { return m.ID }
func (m Girder) MemberID() uint32 { return m.ID }
func (m Beam) MemberID() uint32   { return m.ID }
func (m Brace) MemberID() uint32  { return m.ID }
func (m Slab) MemberID() uint32   { return m.ID }

func (Column) MemberKind() MemberKind { return KindColumn }
func (Post) MemberKind() MemberKind   { return KindPost }
func (Girder) MemberKind() MemberKind { return KindGirder }
func (Beam) MemberKind() MemberKind   { return KindBeam }
func (Brace) MemberKind() MemberKind  { return KindBrace }
func (Slab) MemberKind() MemberKind   { return KindSlab }

func (m Column) Endpoints() (uint32, uint32, bool) { return m.IDNodeBottom, m.IDNodeTop, true }
func (m Post) Endpoints() (uint32, uint32, bool)   { return m.IDNodeBottom, m.IDNodeTop, true }
func (m Girder) Endpoints() (uint32, uint32, bool) { return m.IDNodeStart, m.IDNodeEnd, true }
func (m Beam) Endpoints() (uint32, uint32, bool)   { return m.IDNodeStart, m.IDNodeEnd, true }
func (m Brace) Endpoints() (uint32, uint32, bool)  { return m.IDNodeStart, m.IDNodeEnd, true }
func (Slab) Endpoints() (uint32, uint32, bool)     { return 0, 0, false }

func (Column) member() {}
func (Post) member()   {}
func (Girder) member() {}
func (Beam) member()   {}
func (Brace) member()  {}
func (Slab) member()   {}

// MemberMap maps member ids to members of one kind.
type MemberMap map[uint32]Member

func (m MemberMap) MarshalJSON() ([]byte, error) {
	return encodeUnion(m, func(v Member) string { return string(v.MemberKind()) })
}

func (m *MemberMap) UnmarshalJSON(data []byte) error {
	out, err := decodeUnion[uint32](data, decodeMember)
	if err != nil {
		return err
	}
	*m = out
	return nil
}

func decodeMember(tag string, body json.RawMessage) (Member, error) {
	switch MemberKind(tag) {
	case KindColumn:
		return decodeAs[Member, Column](body)
	case KindPost:
		return decodeAs[Member, Post](body)
	case KindGirder:
		return decodeAs[Member, Girder](body)
	case KindBeam:
		return decodeAs[Member, Beam](body)
	case KindBrace:
		return decodeAs[Member, Brace](body)
	case KindSlab:
		return decodeAs[Member, Slab](body)
	}
	return nil, fmt.Errorf("unknown member tag %q", tag)
}

// Members holds one map per member kind. The same id may appear in two
// different maps; ids are only unique within a kind.
type Members struct {
	Columns MemberMap `json:"stb_columns"`
	Posts   MemberMap `json:"stb_posts"`
	Girders MemberMap `json:"stb_girders"`
	Beams   MemberMap `json:"stb_beams"`
	Braces  MemberMap `json:"stb_braces"`
	Slabs   MemberMap `json:"stb_slabs"`
}

// NewMembers returns a Members value with every map allocated.
func NewMembers() Members {
	return Members{
		Columns: MemberMap{},
		Posts:   MemberMap{},
		Girders: MemberMap{},
		Beams:   MemberMap{},
		Braces:  MemberMap{},
		Slabs:   MemberMap{},
	}
}

// Groups returns the per-kind maps in iteration order.
func (m Members) Groups() []MemberMap {
	return []MemberMap{m.Columns, m.Posts, m.Girders, m.Beams, m.Braces, m.Slabs}
}

// All returns every member: columns, posts, girders, beams, braces, then
// slabs, each group in ascending id order.
func (m Members) All() []Member {
	out := make([]Member, 0, m.Len())
	for _, group := range m.Groups() {
		ids := lo.Keys(group)
		slices.Sort(ids)
		for _, id := range ids {
			out = append(out, group[id])
		}
	}
	return out
}

// Len returns the total member count across all kinds.
func (m Members) Len() int {
	return lo.SumBy(m.Groups(), func(g MemberMap) int { return len(g) })
}
