package stb

// NodeKind says what a node sits on.
type NodeKind string

const (
	NodeOnGirder NodeKind = "ON_GIRDER"
	NodeOnBeam   NodeKind = "ON_BEAM"
	NodeOnColumn NodeKind = "ON_COLUMN"
	NodeOnPost   NodeKind = "ON_POST"
	NodeOnGrid   NodeKind = "ON_GRID"
	NodeOnCanti  NodeKind = "ON_CANTI"
	NodeOnSlab   NodeKind = "ON_SLAB"
	NodeOther    NodeKind = "OTHER"
)

// Node is a point of the model, in millimetres.
type Node struct {
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Z        float64  `json:"z"`
	Kind     NodeKind `json:"kind"`
	IDMember *uint32  `json:"id_member"`
}

// NodeTable maps node ids to nodes. Ids need not be contiguous.
type NodeTable map[uint32]Node

// Get returns the node with the given id.
func (t NodeTable) Get(id uint32) (Node, bool) {
	n, ok := t[id]
	return n, ok
}

// NodeRef is a bare reference to a node id. It is not resolved against the
// NodeTable when the document is parsed, and unlike a node's own id it is
// signed: axis and story lists may carry negative ids.
type NodeRef struct {
	ID int32 `json:"id"`
}

// Axes holds the grid lines of the model.
type Axes struct {
	X []Axis `json:"stb_x_axis_list"`
	Y []Axis `json:"stb_y_axis_list"`
}

// Axis is a named grid line at a distance from the origin.
type Axis struct {
	ID       int32     `json:"id"`
	Name     string    `json:"name"`
	Distance float64   `json:"distance"`
	NodeIDs  []NodeRef `json:"stb_node_id_list"`
}

// StoryKind classifies a story.
type StoryKind string

const (
	StoryGeneral    StoryKind = "GENERAL"
	StoryBasement   StoryKind = "BASEMENT"
	StoryRoof       StoryKind = "ROOF"
	StoryPenthouse  StoryKind = "PENTHOUSE"
	StoryIsolation  StoryKind = "ISOLATION"
	StoryDependence StoryKind = "DEPENDENCE"
)

// Story is a named level of the building.
type Story struct {
	ID               int32     `json:"id"`
	Name             string    `json:"name"`
	Height           float64   `json:"height"`
	Kind             StoryKind `json:"kind"`
	ConcreteStrength string    `json:"concrete_strength"`
	NodeIDs          []NodeRef `json:"stb_node_id_list"`
}
