package domain

import (
	"fmt"
	"math"
)

// MapDataset is the payload served at /map-data: three parallel sequences
// where index i of each describes one point.
type MapDataset struct {
	Lat  []float64 `json:"lat"`
	Lon  []float64 `json:"lon"`
	Text []string  `json:"text"`
}

// Len returns the number of points, assuming the dataset is valid.
func (d *MapDataset) Len() int {
	return len(d.Lat)
}

// Validate checks that the dataset is non-empty, that the three sequences
// line up and that every coordinate is a finite WGS 84 value.
func (d *MapDataset) Validate() error {
	if d == nil || (len(d.Lat) == 0 && len(d.Lon) == 0 && len(d.Text) == 0) {
		return &ValidationError{Index: -1, Reason: ErrEmptyDataset}
	}
	if len(d.Lat) != len(d.Lon) || len(d.Lat) != len(d.Text) {
		return &ValidationError{
			Index: -1,
			Reason: fmt.Errorf("%w: lat=%d lon=%d text=%d",
				ErrLengthMismatch, len(d.Lat), len(d.Lon), len(d.Text)),
		}
	}
	for i := range d.Lat {
		if !finite(d.Lat[i]) || d.Lat[i] < -90 || d.Lat[i] > 90 {
			return &ValidationError{Field: "lat", Index: i, Reason: ErrInvalidCoordinate}
		}
		if !finite(d.Lon[i]) || d.Lon[i] < -180 || d.Lon[i] > 180 {
			return &ValidationError{Field: "lon", Index: i, Reason: ErrInvalidCoordinate}
		}
	}
	return nil
}

// DatasetFromFacilities projects facilities onto a MapDataset in the order
// given. The sequences are never nil so an empty list encodes as [].
func DatasetFromFacilities(facilities []Facility) *MapDataset {
	d := &MapDataset{
		Lat:  make([]float64, 0, len(facilities)),
		Lon:  make([]float64, 0, len(facilities)),
		Text: make([]string, 0, len(facilities)),
	}
	for _, f := range facilities {
		d.Lat = append(d.Lat, f.Location.Lat)
		d.Lon = append(d.Lon, f.Location.Lon)
		d.Text = append(d.Text, f.Name)
	}
	return d
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
