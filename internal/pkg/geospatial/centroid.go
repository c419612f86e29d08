package geospatial

import "math"

// Mean returns the arithmetic mean of values, summed left to right.
// An empty slice yields NaN (0/0).
func Mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Centroid returns the mean latitude and mean longitude of the given
// sequences. Either result is NaN when its sequence is empty.
func Centroid(lat, lon []float64) (avgLat, avgLon float64) {
	return Mean(lat), Mean(lon)
}

// BoundingBox returns the smallest box containing every point.
// The result is all NaN when there are no points.
func BoundingBox(lat, lon []float64) (minLat, minLon, maxLat, maxLon float64) {
	if len(lat) == 0 || len(lon) == 0 {
		nan := math.NaN()
		return nan, nan, nan, nan
	}
	minLat, maxLat = lat[0], lat[0]
	for _, v := range lat[1:] {
		minLat = math.Min(minLat, v)
		maxLat = math.Max(maxLat, v)
	}
	minLon, maxLon = lon[0], lon[0]
	for _, v := range lon[1:] {
		minLon = math.Min(minLon, v)
		maxLon = math.Max(maxLon, v)
	}
	return minLat, minLon, maxLat, maxLon
}
