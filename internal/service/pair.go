package service

import (
	"fmt"

	"github.com/golang/glog"

	"modelsync/internal/bus"
	"modelsync/internal/graph"
	"modelsync/internal/replicate"
)

// Pair replicates between two forests in both directions.
//
//	left  -> [leftTx] -> fromLeft  -> intoRight -> right
//	right -> [rightTx] -> fromRight -> intoLeft  -> left
//
// intoRight tells fromRight which ids it applied and the other way round, so
// a replayed change is dropped before it can travel back. While a
// transaction is open on one side, the other side must not be edited.
type Pair struct {
	left, right         *graph.Forest
	leftTx, rightTx     *bus.Compositor
	fromLeft, fromRight *bus.EchoFilter
	intoLeft, intoRight *replicate.Replicator
}

// NewPair connects two forests holding the same partitions. Their labels
// must differ so their notification ids never collide.
func NewPair(left, right *graph.Forest, compose bool) (*Pair, error) {
	if left.Label() == right.Label() {
		return nil, fmt.Errorf("pair: both forests are labelled %s", left.Label())
	}
	if err := graph.Equal(left, right); err != nil {
		return nil, fmt.Errorf("pair: forests differ: %w", err)
	}

	p := &Pair{
		left:      left,
		right:     right,
		fromLeft:  bus.NewEchoFilter(),
		fromRight: bus.NewEchoFilter(),
	}
	var leftOut, rightOut bus.Sender = left, right
	var lopts, ropts []replicate.Option
	if compose {
		p.leftTx = bus.NewCompositor(left.Label() + "-tx")
		p.rightTx = bus.NewCompositor(right.Label() + "-tx")
		if err := left.ConnectTo(p.leftTx); err != nil {
			return nil, err
		}
		if err := right.ConnectTo(p.rightTx); err != nil {
			return nil, err
		}
		leftOut, rightOut = p.leftTx, p.rightTx
		lopts = append(lopts, replicate.WithCompositor(p.leftTx))
		ropts = append(ropts, replicate.WithCompositor(p.rightTx))
	}
	p.intoLeft = replicate.New(left, nil, left.Label(), append(lopts, replicate.WithEchoFilter(p.fromLeft))...)
	p.intoRight = replicate.New(right, nil, right.Label(), append(ropts, replicate.WithEchoFilter(p.fromRight))...)

	for _, edge := range []struct {
		from bus.Sender
		to   bus.Receiver
	}{
		{leftOut, p.fromLeft},
		{p.fromLeft, p.intoRight},
		{rightOut, p.fromRight},
		{p.fromRight, p.intoLeft},
	} {
		if err := edge.from.ConnectTo(edge.to); err != nil {
			return nil, fmt.Errorf("pair: %w", err)
		}
	}
	glog.V(2).Infof("[pair] %s <-> %s compose=%t", left.Label(), right.Label(), compose)
	return p, nil
}

// Left returns the left forest
func (p *Pair) Left() *graph.Forest {
	return p.left
}

// Right returns the right forest
func (p *Pair) Right() *graph.Forest {
	return p.right
}

// LeftTx and RightTx return the per-side compositors, nil unless composing
func (p *Pair) LeftTx() *bus.Compositor {
	return p.leftTx
}

func (p *Pair) RightTx() *bus.Compositor {
	return p.rightTx
}

// Pending is the number of echoes both filters still expect. It is zero
// whenever no delivery is in flight.
func (p *Pair) Pending() int {
	return p.fromLeft.Pending() + p.fromRight.Pending()
}

// Applied is the number of notifications replayed into each side
func (p *Pair) Applied() (left, right int) {
	return p.intoLeft.Applied(), p.intoRight.Applied()
}

// Verify compares both sides
func (p *Pair) Verify() error {
	return graph.Equal(p.left, p.right)
}
