package dashboard

import "ramen-dashboard/models"

const (
	mapStyle  = "mapbox://styles/mapbox/light-v9"
	mapZoom   = 10
	mapPitch  = 50
	markerRad = 200
)

// markerTooltip names a "price" field; listings expose "prices", so the
// price line renders empty.
const markerTooltip = "Name: <b>{name}</b><br>Rating: {rating}<br>Price: {price}"

// DeckSpec is a deck.gl JSON description of the ramen map.
type DeckSpec struct {
	MapStyle         string    `json:"mapStyle"`
	MapboxKey        string    `json:"mapboxKey,omitempty"`
	InitialViewState ViewState `json:"initialViewState"`
	Layers           []Layer   `json:"layers"`
}

type ViewState struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      float64 `json:"zoom"`
	Pitch     float64 `json:"pitch"`
}

// Layer covers the props used by the scatterplot and text layers.
type Layer struct {
	Type         string            `json:"@@type"`
	ID           string            `json:"id"`
	Data         []*models.Listing `json:"data"`
	GetPosition  string            `json:"getPosition"`
	GetRadius    []float64         `json:"getRadius,omitempty"`
	GetFillColor []int             `json:"getFillColor,omitempty"`
	GetText      string            `json:"getText,omitempty"`
	GetColor     string            `json:"getColor,omitempty"`
	SizeScale    float64           `json:"sizeScale,omitempty"`
	Pickable     bool              `json:"pickable"`
	Tooltip      *Tooltip          `json:"tooltip,omitempty"`
}

type Tooltip struct {
	HTML string `json:"html"`
}

// NewDeckSpec builds the map centred on the mean position of listings.
func NewDeckSpec(listings []*models.Listing, mapboxKey string) DeckSpec {
	if listings == nil {
		listings = []*models.Listing{}
	}
	lat, lon := meanPosition(listings)
	return DeckSpec{
		MapStyle:  mapStyle,
		MapboxKey: mapboxKey,
		InitialViewState: ViewState{
			Latitude:  lat,
			Longitude: lon,
			Zoom:      mapZoom,
			Pitch:     mapPitch,
		},
		Layers: []Layer{
			{
				Type:         "ScatterplotLayer",
				ID:           "ramen-markers",
				Data:         listings,
				GetPosition:  "@@=[longitude, latitude]",
				GetRadius:    []float64{markerRad},
				GetFillColor: []int{255, 20, 20},
				Pickable:     true,
				Tooltip:      &Tooltip{HTML: markerTooltip},
			},
			{
				Type:        "TextLayer",
				ID:          "ramen-names",
				Data:        listings,
				GetPosition: "@@=[longitude, latitude]",
				GetText:     "@@=name",
				GetColor:    "@@=[0, 0, 0, 255]",
				SizeScale:   0.5,
				Pickable:    true,
			},
		},
	}
}

// meanPosition returns 0,0 for an empty batch.
func meanPosition(listings []*models.Listing) (float64, float64) {
	if len(listings) == 0 {
		return 0, 0
	}
	var lat, lon float64
	for _, l := range listings {
		lat += l.Latitude
		lon += l.Longitude
	}
	n := float64(len(listings))
	return lat / n, lon / n
}
