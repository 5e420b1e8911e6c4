package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	stberrors "github.com/FocuswithJustin/stbview/core/errors"
	"github.com/FocuswithJustin/stbview/core/stb"
	"github.com/FocuswithJustin/stbview/core/xml"
)

const samplePath = "testdata/sample.stb"

// model wraps the given StbModel children in an otherwise empty document.
// Empty parts default to empty containers.
type model struct {
	nodes, axes, stories, members, sections string
}

func (m model) String() string {
	return fmt.Sprintf(`<ST_BRIDGE version="2.0">
<StbCommon><StbReinforcement_Strength_List/></StbCommon>
<StbModel>
<StbNodes>%s</StbNodes>
<StbAxes>%s</StbAxes>
<StbStories>%s</StbStories>
<StbMembers>%s</StbMembers>
<StbSections>%s</StbSections>
</StbModel>
<StbExtensions/>
</ST_BRIDGE>`, m.nodes, m.axes, m.stories, m.members, m.sections)
}

const twoNodes = `<StbNode id="1" x="0" y="0" z="0" kind="ON_COLUMN"/>
<StbNode id="2" x="0" y="0" z="3000" kind="ON_COLUMN"/>`

const oneColumn = `<StbColumns><StbColumn id="10" name="C1" idNode_bottom="1" idNode_top="2" rotate="0" id_section="1" kind_structure="S" offset_X="0" offset_Y="0" condition_bottom="FIX" condition_top="FIX"/></StbColumns>`

func parse(t *testing.T, src string) *stb.Document {
	t.Helper()
	doc, err := Parse([]byte(src), Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

func extractError(t *testing.T, err error) *stberrors.ExtractError {
	t.Helper()
	var ee *stberrors.ExtractError
	if !errors.As(err, &ee) {
		t.Fatalf("error %v (%T) is not an ExtractError", err, err)
	}
	return ee
}

func TestTwoNodesOneColumn(t *testing.T) {
	doc := parse(t, model{nodes: twoNodes, members: oneColumn}.String())

	if len(doc.Model.Nodes) != 2 {
		t.Errorf("len(Nodes) = %d, want 2", len(doc.Model.Nodes))
	}
	if len(doc.Model.Members.Columns) != 1 {
		t.Fatalf("len(Columns) = %d, want 1", len(doc.Model.Members.Columns))
	}
	want := stb.Column{
		ID: 10, Name: "C1", IDNodeBottom: 1, IDNodeTop: 2, IDSection: 1,
		KindStructure: stb.ColumnStructureS, ConditionBottom: stb.JointFix, ConditionTop: stb.JointFix,
	}
	if got := doc.Model.Members.Columns[10]; !reflect.DeepEqual(got, want) {
		t.Errorf("Columns[10] = %+v, want %+v", got, want)
	}

	pairs, err := doc.ResolveMembers()
	if err != nil {
		t.Fatalf("ResolveMembers() error = %v", err)
	}
	wantPairs := []stb.NodePair{{I: doc.Model.Nodes[1], J: doc.Model.Nodes[2]}}
	if !reflect.DeepEqual(pairs, wantPairs) {
		t.Errorf("ResolveMembers() = %+v, want %+v", pairs, wantPairs)
	}
	if doc.Model.Nodes[2].Z != 3000 || doc.Model.Nodes[2].Kind != stb.NodeOnColumn {
		t.Errorf("Nodes[2] = %+v", doc.Model.Nodes[2])
	}
}

func TestParseSample(t *testing.T) {
	doc, err := ParseFile(samplePath, Options{})
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}

	if doc.Version != "1.4.00" {
		t.Errorf("Version = %q", doc.Version)
	}
	if sd, ok := doc.Common.Strength("D25"); !ok || sd != "SD390" {
		t.Errorf("Strength(D25) = %q, %v", sd, ok)
	}

	m := doc.Model
	if len(m.Nodes) != 4 {
		t.Errorf("len(Nodes) = %d, want 4", len(m.Nodes))
	}
	if id := m.Nodes[2].IDMember; id == nil || *id != 10 {
		t.Errorf("Nodes[2].IDMember = %v, want 10", id)
	}
	if m.Nodes[1].IDMember != nil {
		t.Errorf("Nodes[1].IDMember = %v, want nil", *m.Nodes[1].IDMember)
	}
	if len(m.Axes.X) != 2 || len(m.Axes.Y) != 1 {
		t.Errorf("axes = %d x, %d y", len(m.Axes.X), len(m.Axes.Y))
	}
	if got := m.Axes.X[0].NodeIDs; !reflect.DeepEqual(got, []stb.NodeRef{{ID: 1}, {ID: 2}}) {
		t.Errorf("X1 node ids = %v", got)
	}
	if len(m.Stories) != 2 || m.Stories[1].Kind != stb.StoryRoof || m.Stories[1].Name != "rfl" {
		t.Errorf("Stories = %+v", m.Stories)
	}

	counts := map[string]int{
		"columns": len(m.Members.Columns), "posts": len(m.Members.Posts),
		"girders": len(m.Members.Girders), "beams": len(m.Members.Beams),
		"braces": len(m.Members.Braces), "slabs": len(m.Members.Slabs),
	}
	for kind, n := range counts {
		if n != 1 {
			t.Errorf("%s = %d, want 1", kind, n)
		}
	}

	g := m.Members.Girders[20].(stb.Girder)
	if g.IsFoundation || g.TypeHaunchH == nil || *g.TypeHaunchH != stb.HaunchBoth {
		t.Errorf("girder = %+v", g)
	}
	if p := m.Members.Posts[11].(stb.Post); p.OffsetTopZ != -50 || p.Rotate != 90 {
		t.Errorf("post = %+v", p)
	}
	if b := m.Members.Beams[30].(stb.Beam); b.Level != -100 {
		t.Errorf("beam = %+v", b)
	}

	if len(doc.Extensions) != 2 || doc.Extensions[1].Description != "second" {
		t.Errorf("Extensions = %+v", doc.Extensions)
	}
}

func TestParseSampleSections(t *testing.T) {
	doc, err := ParseFile(samplePath, Options{})
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	s := doc.Model.Sections

	if s.Len() != 5 {
		t.Errorf("Sections.Len() = %d, want 5", s.Len())
	}

	col := s.ColumnS[1].(stb.SteelColumnSection)
	if !col.Direction || col.BaseType != stb.BaseNone {
		t.Errorf("column section = %+v", col)
	}
	if col.Steel.Shape != "H-400x200x8x13" {
		t.Errorf("column shape = %q, want it as written", col.Steel.Shape)
	}
	if col.Steel.StrengthMain != "sn490b" || col.Steel.StrengthWeb != "sn400b" {
		t.Errorf("column steel strengths = %q/%q", col.Steel.StrengthMain, col.Steel.StrengthWeb)
	}

	rc := s.BeamRC[2].(stb.RCBeamSection)
	if rc.Floor != "2" || rc.Name != "g1" {
		t.Errorf("rc beam floor/name = %q/%q", rc.Floor, rc.Name)
	}
	if rc.StrengthConcrete == nil || *rc.StrengthConcrete != "Fc24" || rc.StrengthReinforcement2ndMain != nil {
		t.Errorf("rc beam optional strengths = %v/%v", rc.StrengthConcrete, rc.StrengthReinforcement2ndMain)
	}
	if rc.DepthCoverTop == nil || *rc.DepthCoverTop != 40 || rc.DepthCoverLeft != nil {
		t.Errorf("rc beam covers = %v/%v", rc.DepthCoverTop, rc.DepthCoverLeft)
	}
	if rc.Figure.Haunch == nil || rc.Figure.Haunch.DepthCenter != 700 || rc.Figure.Straight != nil {
		t.Errorf("rc beam figure = %+v", rc.Figure)
	}
	bars := rc.BarArrangement
	if len(bars.StartCenterEnd) != 3 || bars.Same != nil {
		t.Fatalf("rc beam bars = %+v", bars)
	}
	if bars.StartCenterEnd[1].Pos != stb.BarCenter || bars.StartCenterEnd[1].PitchStirrup != 200 {
		t.Errorf("center bars = %+v", bars.StartCenterEnd[1])
	}

	slab := s.SlabRC[4].(stb.RCSlabSection)
	if slab.Figure.Straight.Depth != 150 || len(slab.BarArrangement.Bars) != 2 {
		t.Errorf("slab section = %+v", slab)
	}
	if slab.BarArrangement.Bars[1].Pos != stb.SlabBarTransverseBottom {
		t.Errorf("slab bar pos = %q", slab.BarArrangement.Bars[1].Pos)
	}

	if br := s.BraceS[5].(stb.SteelBraceSection); br.KindBrace != stb.BraceVertical || br.Steel.Shape != "l-65x65x6" {
		t.Errorf("brace section = %+v", br)
	}

	if len(s.Steel) != 6 {
		t.Errorf("len(Steel) = %d, want 6", len(s.Steel))
	}
	wantKinds := map[string]stb.ProfileKind{
		"h-400x200x8x13":   stb.KindRollH,
		"bh-600x250x12x22": stb.KindBuildH,
		"bcr-300x300x12":   stb.KindRollBox,
		"bx-500x500x22":    stb.KindBuildBox,
		"p-165.2x5":        stb.KindPipe,
		"l-65x65x6":        stb.KindRollL,
	}
	for name, kind := range wantKinds {
		p, ok := s.Steel[name]
		if !ok {
			t.Errorf("profile %s missing", name)
			continue
		}
		if p.ProfileKind() != kind {
			t.Errorf("profile %s kind = %s, want %s", name, p.ProfileKind(), kind)
		}
	}
	if p := s.Steel["p-165.2x5"].(stb.Pipe); p.D != 165.2 {
		t.Errorf("pipe = %+v", p)
	}

	// Every steel section refers to a profile of the catalog.
	for _, sec := range []stb.SectionMap{s.ColumnS, s.BeamS, s.BraceS} {
		for id, v := range sec {
			var shape string
			switch v := v.(type) {
			case stb.SteelColumnSection:
				shape = v.Steel.Shape
			case stb.SteelBeamSection:
				shape = v.Steel.Shape
			case stb.SteelBraceSection:
				shape = v.Steel.Shape
			}
			if _, ok := s.Steel.Lookup(shape); !ok {
				t.Errorf("section %d shape %q not in catalog", id, shape)
			}
		}
	}
}

func TestSampleJSONRoundTrip(t *testing.T) {
	doc, err := ParseFile(samplePath, Options{})
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var back stb.Document
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !reflect.DeepEqual(&back, doc) {
		t.Error("document changed across a JSON round trip")
	}
}

func TestDuplicateIDsOverwrite(t *testing.T) {
	nodes := twoNodes + `<StbNode id="1" x="5" y="0" z="0" kind="OTHER"/>`
	members := `<StbBeams>
<StbBeam id="7" name="first" idNode_start="1" idNode_end="2" rotate="0" id_section="1" kind_structure="S" isFoundation="false" offset="0" level="0"/>
<StbBeam id="7" name="second" idNode_start="2" idNode_end="1" rotate="0" id_section="1" kind_structure="S" isFoundation="false" offset="0" level="0"/>
</StbBeams>
<StbGirders>
<StbGirder id="7" name="girder" idNode_start="1" idNode_end="2" rotate="0" id_section="1" kind_structure="S" isFoundation="false" offset="0" level="0"/>
</StbGirders>`
	doc := parse(t, model{nodes: nodes, members: members}.String())

	if n := doc.Model.Nodes[1]; n.X != 5 || n.Kind != stb.NodeOther {
		t.Errorf("Nodes[1] = %+v, want the later definition", n)
	}
	if len(doc.Model.Members.Beams) != 1 || doc.Model.Members.Beams[7].(stb.Beam).Name != "second" {
		t.Errorf("Beams = %+v", doc.Model.Members.Beams)
	}
	// The same id in another kind is a different member.
	if _, ok := doc.Model.Members.Girders[7]; !ok {
		t.Error("girder 7 missing")
	}
}

func TestSkippedTags(t *testing.T) {
	members := oneColumn + `<StbWalls><StbWall id="1" whatever="x"/></StbWalls><StbFootings/><StbStripFootings/>
<StbPiles/><StbFoundationColumns/><StbParapets/><StbOpens/><StbSomethingNew/>`
	sections := `<StbSecColumn_RC id="1"/><StbSecColumn_SRC/><StbSecColumn_CFT/><StbSecBeam_SRC/>
<StbSecSlabDeck/><StbSecSlabPrecast/><StbSecWall_RC/><StbSecFoundation_RC/><StbSecPile_RC/>
<StbSecPile_S/><StbSecPileProduct/><StbSecOpen_RC/><StbSecParapet_RC/><StbSecUndefined/><StbSecFuture/>
<StbSecSteel><StbSecRoll-T/><StbSecRoll-C/><StbSecLipC/><StbSecFlatBar/><StbSecRoundBar/>
<StbSecSteelProduct/><StbSecSteelUndefined/></StbSecSteel>`
	doc := parse(t, model{nodes: twoNodes, members: members, sections: sections}.String())

	if doc.Model.Members.Len() != 1 {
		t.Errorf("Members.Len() = %d, want 1", doc.Model.Members.Len())
	}
	if doc.Model.Sections.Len() != 0 || len(doc.Model.Sections.Steel) != 0 {
		t.Errorf("sections = %d, profiles = %d, want none", doc.Model.Sections.Len(), len(doc.Model.Sections.Steel))
	}
}

func TestCaseAsymmetry(t *testing.T) {
	t.Run("scalars ignore case", func(t *testing.T) {
		nodes := `<StbNode id="1" x="1E3" y="-2.5E-1" z="0" kind="ON_GRID"/>`
		members := `<StbSlabs><StbSlab id="1" name="S" id_section="1" kind_structure="RC" kind_slab="CANTI" level="0" isFoundation="TRUE"/></StbSlabs>`
		doc := parse(t, model{nodes: nodes, members: members}.String())
		if n := doc.Model.Nodes[1]; n.X != 1000 || n.Y != -0.25 {
			t.Errorf("node = %+v", n)
		}
		if s := doc.Model.Members.Slabs[1].(stb.Slab); !s.IsFoundation || s.KindSlab != stb.SlabCanti {
			t.Errorf("slab = %+v", s)
		}
	})

	t.Run("enums match exactly", func(t *testing.T) {
		nodes := `<StbNode id="1" x="0" y="0" z="0" kind="on_column"/>`
		_, err := Parse([]byte(model{nodes: nodes}.String()), Options{})
		ee := extractError(t, err)
		if ee.Code != stberrors.CodeUnknownEnum || ee.Attribute != "kind" || ee.Value != "on_column" {
			t.Errorf("error = %+v", ee)
		}
		if ee.Path != "/ST_BRIDGE/StbModel/StbNodes/StbNode" {
			t.Errorf("Path = %q", ee.Path)
		}
	})
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		code    stberrors.Code
		element string
		path    string
	}{
		{
			name:    "wrong root",
			src:     `<OTHER/>`,
			code:    stberrors.CodeMissingElement,
			element: "ST_BRIDGE",
		},
		{
			name:    "missing model",
			src:     `<ST_BRIDGE version="1"><StbCommon><StbReinforcement_Strength_List/></StbCommon><StbExtensions/></ST_BRIDGE>`,
			code:    stberrors.CodeMissingElement,
			element: "StbModel",
			path:    "/ST_BRIDGE",
		},
		{
			name:    "unknown profile tag",
			src:     model{sections: `<StbSecSteel><StbSecPipe name="P" D="100" t="5"/><StbSecRoll-Z name="Z"/></StbSecSteel>`}.String(),
			code:    stberrors.CodeUnknownTag,
			element: "StbSecRoll-Z",
			path:    "/ST_BRIDGE/StbModel/StbSections/StbSecSteel/StbSecRoll-Z",
		},
		{
			name:    "unknown axis tag",
			src:     model{axes: `<StbZ_Axis id="1" name="Z" distance="0"/>`}.String(),
			code:    stberrors.CodeUnknownTag,
			element: "StbZ_Axis",
		},
		{
			name:    "missing node id list",
			src:     model{stories: `<StbStory id="1" name="1F" height="0" kind="GENERAL" concrete_strength="Fc21"/>`}.String(),
			code:    stberrors.CodeMissingElement,
			element: "StbNodeid_List",
			path:    "/ST_BRIDGE/StbModel/StbStories/StbStory",
		},
		{
			name: "missing steel child",
			src: model{sections: `<StbSecColumn_S id="1" name="C" floor="1" kind_column="COLUMN" direction="true" base_type="WRAP"/>
<StbSecColumn_S id="2" name="C" floor="1" kind_column="COLUMN" direction="true" base_type="WRAP"/>`}.String(),
			code:    stberrors.CodeMissingElement,
			element: "StbSecSteelColumn",
			path:    "/ST_BRIDGE/StbModel/StbSections/StbSecColumn_S[1]",
		},
		{
			name:    "missing attribute",
			src:     model{nodes: `<StbNode id="1" x="0" z="0" kind="ON_GRID"/>`}.String(),
			code:    stberrors.CodeMissingAttribute,
			element: "StbNode",
		},
		{
			name:    "invalid bool",
			src:     model{members: `<StbSlabs><StbSlab id="1" name="S" id_section="1" kind_structure="RC" kind_slab="NORMAL" level="0" isFoundation="yes"/></StbSlabs>`}.String(),
			code:    stberrors.CodeInvalidValue,
			element: "StbSlab",
		},
		{
			name:    "negative id",
			src:     model{nodes: `<StbNode id="-1" x="0" y="0" z="0" kind="ON_GRID"/>`}.String(),
			code:    stberrors.CodeInvalidValue,
			element: "StbNode",
		},
		{
			name:    "missing slab straight",
			src:     model{sections: `<StbSecSlab_RC id="4" name="S1" isFoundation="false" isCanti="false" strength_concrete="Fc21"><StbSecFigure/><StbSecBar_Arrangement/></StbSecSlab_RC>`}.String(),
			code:    stberrors.CodeMissingElement,
			element: "StbSecStraight",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.src), Options{})
			if doc != nil {
				t.Errorf("Parse() returned a document with error %v", err)
			}
			ee := extractError(t, err)
			if ee.Code != tt.code {
				t.Errorf("Code = %s, want %s (%v)", ee.Code, tt.code, err)
			}
			if ee.Element != tt.element {
				t.Errorf("Element = %q, want %q", ee.Element, tt.element)
			}
			if tt.path != "" && ee.Path != tt.path {
				t.Errorf("Path = %q, want %q", ee.Path, tt.path)
			}
		})
	}
}

func TestStringCase(t *testing.T) {
	src := `<ST_BRIDGE version="2.0A">
<StbCommon><StbReinforcement_Strength_List><StbReinforcement_Strength D="D25" SD="SD390"/></StbReinforcement_Strength_List></StbCommon>
<StbModel>
<StbNodes>` + twoNodes + `</StbNodes>
<StbAxes/>
<StbStories><StbStory id="1" name="1FL" height="0" kind="GENERAL" concrete_strength="Fc21"><StbNodeid_List><StbNodeid id="1"/></StbNodeid_List></StbStory></StbStories>
<StbMembers>` + oneColumn + `</StbMembers>
<StbSections>
<StbSecColumn_S id="1" name="C1" floor="1F" kind_column="COLUMN" direction="true" base_type="WRAP"><StbSecSteelColumn pos="ALL" shape="P-100X5" strength_main="SN490B" strength_web="SN490B"/></StbSecColumn_S>
<StbSecBeam_S id="2" name="B1" floor="2F" kind_beam="BEAM" isCanti="false"><StbSecSteelBeam pos="ALL" shape="P-100X5" strength_main="SN490B" strength_web="SN490B"/></StbSecBeam_S>
<StbSecSteel><StbSecPipe name="P-100X5" D="100" t="5"/></StbSecSteel>
</StbSections>
</StbModel>
<StbExtensions><StbExtension identifier="Vendor-A" description="Exported By Tool"/></StbExtensions>
</ST_BRIDGE>`
	doc := parse(t, src)

	tests := []struct {
		name, got, want string
	}{
		{"version", doc.Version, "2.0A"},
		{"member name", doc.Model.Members.Columns[10].(stb.Column).Name, "C1"},
		{"story name", doc.Model.Stories[0].Name, "1fl"},
		{"story concrete strength", doc.Model.Stories[0].ConcreteStrength, "Fc21"},
		{"column section name", doc.Model.Sections.ColumnS[1].(stb.SteelColumnSection).Name, "c1"},
		{"column section floor", doc.Model.Sections.ColumnS[1].(stb.SteelColumnSection).Floor, "1f"},
		{"column shape", doc.Model.Sections.ColumnS[1].(stb.SteelColumnSection).Steel.Shape, "P-100X5"},
		{"column strength", doc.Model.Sections.ColumnS[1].(stb.SteelColumnSection).Steel.StrengthMain, "sn490b"},
		{"beam shape", doc.Model.Sections.BeamS[2].(stb.SteelBeamSection).Steel.Shape, "p-100x5"},
		{"extension identifier", doc.Extensions[0].Identifier, "vendor-a"},
		{"extension description", doc.Extensions[0].Description, "exported by tool"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}

	if sd, ok := doc.Common.Strength("D25"); !ok || sd != "SD390" {
		t.Errorf("Strength(D25) = %q, %v", sd, ok)
	}
	steel := doc.Model.Sections.Steel
	if _, ok := steel["p-100x5"]; !ok || len(steel) != 1 {
		t.Errorf("catalog keys = %v, want [p-100x5]", steel)
	}
	for _, shape := range []string{"P-100X5", "p-100x5"} {
		if p, ok := steel.Lookup(shape); !ok || p.ProfileKind() != stb.KindPipe {
			t.Errorf("Lookup(%q) = %v, %v", shape, p, ok)
		}
	}
	if _, ok := steel.Lookup("P-200X5"); ok {
		t.Error("Lookup(P-200X5) found a profile")
	}
}

func TestNonFiniteCoordinates(t *testing.T) {
	for _, x := range []string{"NaN", "Inf", "-infinity"} {
		t.Run(x, func(t *testing.T) {
			src := model{nodes: `<StbNode id="1" x="` + x + `" y="0" z="0" kind="ON_GRID"/>`}.String()
			_, err := Parse([]byte(src), Options{})
			ee := extractError(t, err)
			if ee.Code != stberrors.CodeInvalidValue || ee.Attribute != "x" || ee.Value != x {
				t.Errorf("error = %+v", ee)
			}
		})
	}
}

func TestNegativeNodeReference(t *testing.T) {
	axes := `<StbX_Axis id="1" name="X1" distance="0"><StbNodeid_List><StbNodeid id="-3"/></StbNodeid_List></StbX_Axis>`
	doc := parse(t, model{axes: axes}.String())
	if got := doc.Model.Axes.X[0].NodeIDs; !reflect.DeepEqual(got, []stb.NodeRef{{ID: -3}}) {
		t.Errorf("NodeIDs = %v", got)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var back stb.Document
	if err := json.Unmarshal(data, &back); err != nil || !reflect.DeepEqual(back.Model.Axes, doc.Model.Axes) {
		t.Errorf("round trip = %+v, %v", back.Model.Axes, err)
	}
}

func TestMalformedXML(t *testing.T) {
	_, err := Parse([]byte("<ST_BRIDGE>\n<StbModel>\n</ST_BRIDGE>"), Options{})
	var pe *stberrors.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v (%T), want ParseError", err, err)
	}
	if pe.Line == 0 {
		t.Error("ParseError has no line")
	}
}

func TestParseFileErrors(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "none.stb"), Options{})
	if !errors.Is(err, stberrors.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestCollectErrors(t *testing.T) {
	nodes := `<StbNode id="1" x="0" y="0" z="0" kind="BAD"/>
<StbNode id="2" x="0" y="0" z="0" kind="ON_GRID"/>
<StbNode id="3" x="zero" y="0" z="0" kind="ON_GRID"/>`
	members := `<StbColumns><StbColumn id="10"/></StbColumns>`
	sections := `<StbSecSteel><StbSecRoll-Q name="Q"/></StbSecSteel>`
	src := []byte(model{nodes: nodes, members: members, sections: sections}.String())

	t.Run("abort on first", func(t *testing.T) {
		_, err := Parse(src, Options{})
		var list stberrors.ErrorList
		if errors.As(err, &list) {
			t.Errorf("got ErrorList %v, want a single error", list)
		}
		if ee := extractError(t, err); ee.Value != "BAD" {
			t.Errorf("first error = %v", ee)
		}
	})

	t.Run("collect all", func(t *testing.T) {
		doc, err := Parse(src, Options{CollectErrors: true})
		if doc != nil {
			t.Error("Parse() returned a document")
		}
		var list stberrors.ErrorList
		if !errors.As(err, &list) {
			t.Fatalf("error = %v (%T), want ErrorList", err, err)
		}
		var codes []stberrors.Code
		for _, e := range list {
			codes = append(codes, extractError(t, e).Code)
		}
		want := []stberrors.Code{
			stberrors.CodeUnknownEnum, stberrors.CodeInvalidValue,
			stberrors.CodeMissingAttribute, stberrors.CodeUnknownTag,
		}
		if !reflect.DeepEqual(codes, want) {
			t.Errorf("codes = %v, want %v", codes, want)
		}
		if !strings.Contains(err.Error(), "(and 3 more)") {
			t.Errorf("Error() = %q", err.Error())
		}
	})

	t.Run("limit", func(t *testing.T) {
		_, err := Parse(src, Options{CollectErrors: true, MaxErrors: 2})
		var list stberrors.ErrorList
		if !errors.As(err, &list) || len(list) != 2 {
			t.Fatalf("error = %v, want 2 collected errors", err)
		}
	})

	t.Run("clean document", func(t *testing.T) {
		doc, err := Parse([]byte(model{nodes: twoNodes, members: oneColumn}.String()), Options{CollectErrors: true})
		if err != nil || doc == nil {
			t.Fatalf("Parse() = %v, %v", doc, err)
		}
	})
}

func TestSectionRejectsCatalog(t *testing.T) {
	tree, err := xml.Parse([]byte(`<StbSecSteel/>`))
	if err != nil {
		t.Fatalf("xml.Parse() error = %v", err)
	}
	sections := stb.NewSections()
	err = (&extractor{}).section(tree.Root(), &sections)
	if ee := extractError(t, err); ee.Code != stberrors.CodeSchemaContract {
		t.Errorf("Code = %s, want %s", ee.Code, stberrors.CodeSchemaContract)
	}
}

func TestCatalogReplaced(t *testing.T) {
	sections := `<StbSecSteel><StbSecPipe name="P1" D="100" t="5"/></StbSecSteel>
<StbSecSteel><StbSecPipe name="P2" D="200" t="5"/></StbSecSteel>`
	doc := parse(t, model{sections: sections}.String())
	if _, ok := doc.Model.Sections.Steel["p2"]; !ok || len(doc.Model.Sections.Steel) != 1 {
		t.Errorf("Steel = %v, want only the last catalog", doc.Model.Sections.Steel)
	}
}

func TestProfileNameCollision(t *testing.T) {
	sections := `<StbSecSteel><StbSecPipe name="P" D="100" t="5"/><StbSecBuild-BOX name="P" A="1" B="2" t1="3" t2="4"/></StbSecSteel>`
	doc := parse(t, model{sections: sections}.String())
	if p := doc.Model.Sections.Steel["p"]; p.ProfileKind() != stb.KindBuildBox {
		t.Errorf("Steel[p] = %+v, want the later profile", p)
	}
}

func TestBeamSameSection(t *testing.T) {
	sections := `<StbSecBeam_RC id="1" name="B" floor="1" kind_beam="BEAM" isFoundation="false" isCanti="true" D_reinforcement_main="D19" D_stirrup="D10" D_reinforcement_web="D10" D_bar_spacing="D10" strength_reinforcement_main="SD345" strength_stirrup="SD295A" strength_reinforcement_web="SD295A" strength_bar_spacing="SD295A">
<StbSecFigure><StbSecStraight depth="600"/></StbSecFigure>
<StbSecBar_Arrangement><StbSecBeam_Same_Section count_main_top_1st="3" count_main_bottom_1st="3" count_stirrup="2" pitch_stirrup="150" count_web="0" count_bar_spacing="0" pitch_bar_spacing="0"/></StbSecBar_Arrangement>
</StbSecBeam_RC>`
	doc := parse(t, model{sections: sections}.String())
	rc := doc.Model.Sections.BeamRC[1].(stb.RCBeamSection)
	if rc.Figure.Straight == nil || rc.Figure.Straight.Depth != 600 || rc.Figure.Haunch != nil {
		t.Errorf("figure = %+v", rc.Figure)
	}
	if rc.BarArrangement.Same == nil || rc.BarArrangement.Same.PitchStirrup != 150 || rc.BarArrangement.StartCenterEnd != nil {
		t.Errorf("bars = %+v", rc.BarArrangement)
	}
	if rc.StrengthConcrete != nil || !rc.IsCanti {
		t.Errorf("section = %+v", rc)
	}
}
