package geo

type Geometry struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

type Feature struct {
	Type       string                 `json:"type"`
	Geometry   Geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// LineStringFeature собирает LineString в порядке обхода точек,
// координаты в порядке [долгота, широта]
func LineStringFeature(points []Point, properties map[string]interface{}) Feature {
	coordinates := make([][]float64, 0, len(points))
	for _, p := range points {
		coordinates = append(coordinates, []float64{p.Longitude, p.Latitude})
	}
	return Feature{
		Type: "Feature",
		Geometry: Geometry{
			Type:        "LineString",
			Coordinates: coordinates,
		},
		Properties: properties,
	}
}

func NewFeatureCollection(features ...Feature) FeatureCollection {
	if features == nil {
		features = []Feature{}
	}
	return FeatureCollection{Type: "FeatureCollection", Features: features}
}
