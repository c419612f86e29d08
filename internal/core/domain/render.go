package domain

// Fixed marker styling and layout of the facility map.
const (
	LayerTypeScatterMapbox = "scattermapbox"
	LayerModeMarkers       = "markers"

	MarkerSize    = 14
	MarkerColor   = "rgb(255, 0, 0)"
	MarkerOpacity = 0.7

	MapStyleOpenStreetMap = "open-street-map"
	MapZoom               = 3.5

	DefaultContainerID = "map"
)

// Marker is the styling shared by every point of a layer.
type Marker struct {
	Size    int     `json:"size"`
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

// MarkerLayer is a Plotly scattermapbox trace.
type MarkerLayer struct {
	Type   string    `json:"type"`
	Lat    []float64 `json:"lat"`
	Lon    []float64 `json:"lon"`
	Mode   string    `json:"mode"`
	Marker Marker    `json:"marker"`
	Text   []string  `json:"text"`
}

// Mapbox is the map frame of a layout.
type Mapbox struct {
	Style  string   `json:"style"`
	Center GeoPoint `json:"center"`
	Zoom   float64  `json:"zoom"`
}

// Margin is the plot margin in pixels.
type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	B int `json:"b"`
	T int `json:"t"`
}

// Layout describes the visual frame independent of the plotted data.
type Layout struct {
	Mapbox Mapbox `json:"mapbox"`
	Margin Margin `json:"margin"`
}

// MapRenderSpec is everything a renderer needs to draw the facility map.
type MapRenderSpec struct {
	ContainerID string        `json:"container_id"`
	Layers      []MarkerLayer `json:"data"`
	Layout      Layout        `json:"layout"`
}
