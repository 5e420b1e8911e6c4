package extract

import (
	"github.com/FocuswithJustin/stbview/core/attr"
	"github.com/FocuswithJustin/stbview/core/stb"
)

// Label tables for every enumerated attribute. Labels are matched exactly.
var (
	nodeKinds = attr.NewTable(
		stb.NodeOnGirder, stb.NodeOnBeam, stb.NodeOnColumn, stb.NodeOnPost,
		stb.NodeOnGrid, stb.NodeOnCanti, stb.NodeOnSlab, stb.NodeOther,
	)
	storyKinds = attr.NewTable(
		stb.StoryGeneral, stb.StoryBasement, stb.StoryRoof,
		stb.StoryPenthouse, stb.StoryIsolation, stb.StoryDependence,
	)

	columnStructures = attr.NewTable(
		stb.ColumnStructureRC, stb.ColumnStructureS, stb.ColumnStructureSRC,
		stb.ColumnStructureCFT, stb.ColumnStructureUndefined,
	)
	girderStructures = attr.NewTable(
		stb.GirderStructureRC, stb.GirderStructureS, stb.GirderStructureSRC,
		stb.GirderStructureUndefined,
	)
	braceStructures = attr.NewTable(stb.BraceStructureRC, stb.BraceStructureS, stb.BraceStructureSRC)
	slabStructures  = attr.NewTable(stb.SlabStructureRC, stb.SlabStructureDeck, stb.SlabStructurePrecast)
	slabKinds       = attr.NewTable(stb.SlabNormal, stb.SlabCanti)
	jointConditions = attr.NewTable(stb.JointFix, stb.JointPin)
	haunchTypes     = attr.NewTable(stb.HaunchBoth, stb.HaunchRight, stb.HaunchLeft)

	columnKinds      = attr.NewTable(stb.ColumnKindColumn, stb.ColumnKindPost)
	steelBaseTypes   = attr.NewTable(stb.BaseNone, stb.BaseExpose, stb.BaseEmbedded, stb.BaseWrap)
	steelPositions   = attr.NewTable(stb.SteelPositionAll)
	beamKinds        = attr.NewTable(stb.BeamKindGirder, stb.BeamKindBeam)
	braceKinds       = attr.NewTable(stb.BraceVertical, stb.BraceHorizontal)
	beamBarPositions = attr.NewTable(stb.BarStart, stb.BarCenter, stb.BarEnd)
	slabBarPositions = attr.NewTable(
		stb.SlabBarMainTop, stb.SlabBarMainBottom,
		stb.SlabBarTransverseTop, stb.SlabBarTransverseBottom,
	)

	rollHTypes   = attr.NewTable(stb.RollHTypeH, stb.RollHTypeSH)
	rollBoxTypes = attr.NewTable(stb.RollBoxBCP, stb.RollBoxBCR, stb.RollBoxSTKR, stb.RollBoxElse)
	rollLTypes   = attr.NewTable(stb.RollLTypeL)
)
