package dashboard

import "ramen-dashboard/models"

const vegaLiteSchema = "https://vega.github.io/schema/vega-lite/v5.json"

// ChartSpec is a Vega-Lite scatter plot of popularity against price.
type ChartSpec struct {
	Schema   string        `json:"$schema"`
	Width    string        `json:"width"`
	Data     ChartData     `json:"data"`
	Mark     string        `json:"mark"`
	Encoding ChartEncoding `json:"encoding"`
	Params   []ChartParam  `json:"params"`
}

type ChartData struct {
	Values []*models.Listing `json:"values"`
}

type ChartEncoding struct {
	X       Channel   `json:"x"`
	Y       Channel   `json:"y"`
	Size    Channel   `json:"size"`
	Tooltip []Channel `json:"tooltip"`
}

type Channel struct {
	Field string `json:"field"`
	Type  string `json:"type"`
	Scale *Scale `json:"scale,omitempty"`
}

type Scale struct {
	Domain [2]float64 `json:"domain"`
}

// ChartParam makes the chart pannable and zoomable.
type ChartParam struct {
	Name   string      `json:"name"`
	Select ChartSelect `json:"select"`
	Bind   string      `json:"bind"`
}

type ChartSelect struct {
	Type      string   `json:"type"`
	Encodings []string `json:"encodings"`
}

// Axis view windows. Points outside them are still plotted but clipped.
var (
	popularityDomain = [2]float64{2.5, 5}
	priceDomain      = [2]float64{10, 30}
)

// NewChartSpec builds the popularity/price scatter plot over listings.
func NewChartSpec(listings []*models.Listing) ChartSpec {
	if listings == nil {
		listings = []*models.Listing{}
	}
	return ChartSpec{
		Schema: vegaLiteSchema,
		Width:  "container",
		Data:   ChartData{Values: listings},
		Mark:   "circle",
		Encoding: ChartEncoding{
			X:    Channel{Field: "Popularity", Type: "quantitative", Scale: &Scale{Domain: popularityDomain}},
			Y:    Channel{Field: "prices", Type: "quantitative", Scale: &Scale{Domain: priceDomain}},
			Size: Channel{Field: "review_count", Type: "quantitative"},
			Tooltip: []Channel{
				{Field: "name", Type: "nominal"},
				{Field: "rating", Type: "quantitative"},
				{Field: "review_count", Type: "quantitative"},
				{Field: "Popularity", Type: "quantitative"},
				{Field: "prices", Type: "quantitative"},
				{Field: "Address", Type: "nominal"},
			},
		},
		Params: []ChartParam{{
			Name:   "grid",
			Select: ChartSelect{Type: "interval", Encodings: []string{"x", "y"}},
			Bind:   "scales",
		}},
	}
}
