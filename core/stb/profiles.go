package stb

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// ProfileKind is the discriminant of the SteelProfile union.
type ProfileKind string

const (
	KindRollH    ProfileKind = "StbSecRollH"
	KindBuildH   ProfileKind = "StbSecBuildH"
	KindRollBox  ProfileKind = "StbSecRollBox"
	KindBuildBox ProfileKind = "StbSecBuildBox"
	KindPipe     ProfileKind = "StbSecPipe"
	KindRollL    ProfileKind = "StbSecRollL"
)

// SteelProfile is a named steel cross-section shape.
type SteelProfile interface {
	ProfileName() string
	ProfileKind() ProfileKind
	// Outline returns the outer boundary of the cross-section, counter
	// clockwise, with the origin at the shape's centroid of its bounding box
	// (H, box, pipe) or at the heel (L).
	Outline() []Point
	profile()
}

// Point is a 2-D coordinate in the section plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type RollHType string

const (
	RollHTypeH  RollHType = "H"
	RollHTypeSH RollHType = "SH"
)

type RollBoxType string

const (
	RollBoxBCP  RollBoxType = "BCP"
	RollBoxBCR  RollBoxType = "BCR"
	RollBoxSTKR RollBoxType = "STKR"
	RollBoxElse RollBoxType = "ELSE"
)

type RollLType string

const RollLTypeL RollLType = "L"

// RollH is a rolled H-shape: depth A, flange width B, web t1, flange t2.
type RollH struct {
	Name string    `json:"name"`
	Type RollHType `json:"sec_type"`
	A    float64   `json:"a"`
	B    float64   `json:"b"`
	T1   float64   `json:"t1"`
	T2   float64   `json:"t2"`
	R    float64   `json:"r"`
}

// BuildH is a welded H-shape.
type BuildH struct {
	Name string  `json:"name"`
	A    float64 `json:"a"`
	B    float64 `json:"b"`
	T1   float64 `json:"t1"`
	T2   float64 `json:"t2"`
}

// RollBox is a cold-formed square or rectangular tube.
type RollBox struct {
	Name string      `json:"name"`
	Type RollBoxType `json:"sec_type"`
	A    float64     `json:"a"`
	B    float64     `json:"b"`
	T    float64     `json:"t"`
	R    float64     `json:"r"`
}

// BuildBox is a welded box.
type BuildBox struct {
	Name string  `json:"name"`
	A    float64 `json:"a"`
	B    float64 `json:"b"`
	T1   float64 `json:"t1"`
	T2   float64 `json:"t2"`
}

// Pipe is a circular hollow section of diameter D and thickness T.
type Pipe struct {
	Name string  `json:"name"`
	D    float64 `json:"d"`
	T    float64 `json:"t"`
}

// RollL is a rolled angle with legs A and B.
type RollL struct {
	Name string    `json:"name"`
	Type RollLType `json:"sec_type"`
	A    float64   `json:"a"`
	B    float64   `json:"b"`
	T1   float64   `json:"t1"`
	T2   float64   `json:"t2"`
	R1   float64   `json:"r1"`
	R2   float64   `json:"r2"`
	Side bool      `json:"side"`
}

func (p RollH) ProfileName() string    { return p.Name }
func (p BuildH) ProfileName() string   { return p.Name }
func (p RollBox) ProfileName() string  { return p.Name }
func (p BuildBox) ProfileName() string { return p.Name }
func (p Pipe) ProfileName() string     { return p.Name }
func (p RollL) ProfileName() string    { return p.Name }

func (RollH) ProfileKind() ProfileKind    { return KindRollH }
func (BuildH) ProfileKind() ProfileKind   { return KindBuildH }
func (RollBox) ProfileKind() ProfileKind  { return KindRollBox }
func (BuildBox) ProfileKind() ProfileKind { return KindBuildBox }
func (Pipe) ProfileKind() ProfileKind     { return KindPipe }
func (RollL) ProfileKind() ProfileKind    { return KindRollL }

func (p RollH) Outline() []Point    { return hOutline(p.A, p.B, p.T1, p.T2) }
func (p BuildH) Outline() []Point   { return hOutline(p.A, p.B, p.T1, p.T2) }
func (p RollBox) Outline() []Point  { return rectOutline(p.A, p.B) }
func (p BuildBox) Outline() []Point { return rectOutline(p.A, p.B) }

// pipeSegments is the number of sides of the polygon approximating a pipe.
const pipeSegments = 32

func (p Pipe) Outline() []Point {
	r := p.D / 2
	out := make([]Point, pipeSegments)
	for i := range out {
		theta := 2 * math.Pi * float64(i) / pipeSegments
		out[i] = Point{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
	}
	return out
}

// Outline of an angle: vertical leg A of thickness T1, horizontal leg B of
// thickness T2, heel at the origin. Side mirrors the shape about the Y axis.
func (p RollL) Outline() []Point {
	pts := []Point{
		{0, 0}, {p.B, 0}, {p.B, p.T2}, {p.T1, p.T2}, {p.T1, p.A}, {0, p.A},
	}
	if p.Side {
		mirrored := make([]Point, len(pts))
		for i, pt := range pts {
			// reverse to keep counter-clockwise order after mirroring
			mirrored[len(pts)-1-i] = Point{X: -pt.X, Y: pt.Y}
		}
		return mirrored
	}
	return pts
}

func (RollH) profile()    {}
func (BuildH) profile()   {}
func (RollBox) profile()  {}
func (BuildBox) profile() {}
func (Pipe) profile()     {}
func (RollL) profile()    {}

// hOutline traces an H-shape of depth a, flange width b, web thickness tw
// and flange thickness tf.
func hOutline(a, b, tw, tf float64) []Point {
	ha, hb, hw := a/2, b/2, tw/2
	return []Point{
		{-hb, -ha}, {hb, -ha}, {hb, -ha + tf}, {hw, -ha + tf},
		{hw, ha - tf}, {hb, ha - tf}, {hb, ha}, {-hb, ha},
		{-hb, ha - tf}, {-hw, ha - tf}, {-hw, -ha + tf}, {-hb, -ha + tf},
	}
}

// rectOutline traces a rectangle of depth a and width b.
func rectOutline(a, b float64) []Point {
	ha, hb := a/2, b/2
	return []Point{{-hb, -ha}, {hb, -ha}, {hb, ha}, {-hb, ha}}
}

// ProfileCatalog maps profile names to profiles. Two profiles with the same
// name collide; the later one wins.
type ProfileCatalog map[string]SteelProfile

// Lookup finds the profile a section's shape refers to. Catalog names are
// stored lower-cased while column shapes keep their written case, so the
// shape is tried as given and then lower-cased.
func (c ProfileCatalog) Lookup(shape string) (SteelProfile, bool) {
	if p, ok := c[shape]; ok {
		return p, true
	}
	p, ok := c[strings.ToLower(shape)]
	return p, ok
}

func (c ProfileCatalog) MarshalJSON() ([]byte, error) {
	return encodeUnion(c, func(v SteelProfile) string { return string(v.ProfileKind()) })
}

func (c *ProfileCatalog) UnmarshalJSON(data []byte) error {
	out, err := decodeUnion[string](data, decodeProfile)
	if err != nil {
		return err
	}
	*c = out
	return nil
}

func decodeProfile(tag string, body json.RawMessage) (SteelProfile, error) {
	switch ProfileKind(tag) {
	case KindRollH:
		return decodeAs[SteelProfile, RollH](body)
	case KindBuildH:
		return decodeAs[SteelProfile, BuildH](body)
	case KindRollBox:
		return decodeAs[SteelProfile, RollBox](body)
	case KindBuildBox:
		return decodeAs[SteelProfile, BuildBox](body)
	case KindPipe:
		return decodeAs[SteelProfile, Pipe](body)
	case KindRollL:
		return decodeAs[SteelProfile, RollL](body)
	}
	return nil, fmt.Errorf("unknown steel profile tag %q", tag)
}
