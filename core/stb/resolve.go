package stb

import (
	"encoding/json"
	"fmt"
	"strconv"

	stberrors "github.com/FocuswithJustin/stbview/core/errors"
)

// NodePair is the pair of end nodes of a line member. It encodes as a
// two-element JSON array.
type NodePair struct {
	I Node
	J Node
}

func (p NodePair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]Node{p.I, p.J})
}

func (p *NodePair) UnmarshalJSON(data []byte) error {
	var pair []Node
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("node pair: want 2 elements, got %d", len(pair))
	}
	p.I, p.J = pair[0], pair[1]
	return nil
}

// ResolveMembers looks up the end nodes of every member in Members.All
// order. It fails on the first member whose nodes are not in the node table
// and on any slab, which has no end nodes.
func (d *Document) ResolveMembers() ([]NodePair, error) {
	return d.resolve(false)
}

// ResolveFrameMembers is like ResolveMembers but skips slabs.
func (d *Document) ResolveFrameMembers() ([]NodePair, error) {
	return d.resolve(true)
}

func (d *Document) resolve(skipAreas bool) ([]NodePair, error) {
	members := d.Model.Members.All()
	out := make([]NodePair, 0, len(members))
	for _, m := range members {
		i, j, ok := m.Endpoints()
		if !ok {
			if skipAreas {
				continue
			}
			return nil, stberrors.NewUnsupported("member kind "+string(m.MemberKind()),
				fmt.Sprintf("member %d has no end nodes", m.MemberID()))
		}
		ni, err := d.lookupNode(m, i)
		if err != nil {
			return nil, err
		}
		nj, err := d.lookupNode(m, j)
		if err != nil {
			return nil, err
		}
		out = append(out, NodePair{I: ni, J: nj})
	}
	return out, nil
}

func (d *Document) lookupNode(m Member, id uint32) (Node, error) {
	n, ok := d.Model.Nodes.Get(id)
	if !ok {
		return Node{}, stberrors.Wrapf(stberrors.NewNotFound("node", strconv.FormatUint(uint64(id), 10)),
			"%s %d", m.MemberKind(), m.MemberID())
	}
	return n, nil
}
