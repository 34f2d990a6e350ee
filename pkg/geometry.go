package clustering

import "math"

// UVToXY converts wire coordinates to cartesian ones. The X axis flips
// between the two detector halves.
func UVToXY(u, v float64, side TPCSide) (x, y float64) {
	if side == North {
		x = v - u
	} else {
		x = u - v
	}
	y = (u + v) / math.Sqrt(3)
	return x, y
}

// hexagonVertices are the corners of the region covered by crossing U and V
// wires: a regular hexagon with apothem WirePlaneRadius.
var hexagonVertices = func() [6][2]float64 {
	var vertices [6][2]float64
	r := WirePlaneRadius / math.Cos(math.Pi/6)
	for k := range vertices {
		angle := math.Pi/6 + float64(k)*math.Pi/3
		vertices[k] = [2]float64{r * math.Cos(angle), r * math.Sin(angle)}
	}
	return vertices
}()

// DistanceFromHexagon is the distance of the (u, v) crossing point to the
// wire-crossing hexagon, zero inside it.
func DistanceFromHexagon(u, v float64) float64 {
	x, y := UVToXY(u, v, North)
	if math.Abs(u) <= WirePlaneRadius && math.Abs(v) <= WirePlaneRadius && math.Abs(x) <= WirePlaneRadius {
		return 0
	}
	dist := math.Inf(1)
	for k := range hexagonVertices {
		a := hexagonVertices[k]
		b := hexagonVertices[(k+1)%len(hexagonVertices)]
		dist = math.Min(dist, segmentDistance(x, y, a, b))
	}
	return dist
}

func segmentDistance(x, y float64, a, b [2]float64) float64 {
	dx, dy := b[0]-a[0], b[1]-a[1]
	t := ((x-a[0])*dx + (y-a[1])*dy) / (dx*dx + dy*dy)
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(x-(a[0]+t*dx), y-(a[1]+t*dy))
}
