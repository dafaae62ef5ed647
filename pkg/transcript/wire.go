package transcript

import (
	"math/big"

	"github.com/openvote/ovn/pkg/curve"
)

// WirePoint is a curve point serialized as an ordered pair of
// nonnegative integers, per spec.md §3/§4.3.
type WirePoint [2]*big.Int

// ToPoint deserializes a wire point, rejecting off-curve coordinates.
func (w WirePoint) ToPoint() (curve.Point, error) {
	return curve.Deserialize(w[0], w[1])
}

// PointToWire serializes a curve point for the wire.
func PointToWire(p curve.Point) WirePoint {
	x, y := p.Serialize()
	return WirePoint{x, y}
}

// PointsToWire serializes an ordered sequence of curve points.
func PointsToWire(points []curve.Point) []WirePoint {
	out := make([]WirePoint, len(points))
	for i, p := range points {
		out[i] = PointToWire(p)
	}
	return out
}

// WireToPoints deserializes an ordered sequence of wire points.
func WireToPoints(wire []WirePoint) ([]curve.Point, error) {
	out := make([]curve.Point, len(wire))
	for i, w := range wire {
		p, err := w.ToPoint()
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}
