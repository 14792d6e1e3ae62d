package chart

// Header carries the fields every chart payload shares
type Header struct {
	ChartID         string           `json:"Chart_Id"`
	ChartType       ChartType        `json:"Chart_Type"`
	ChartTitle      string           `json:"Chart_Title"`
	ChartQuery      string           `json:"Chart_Query,omitempty"`
	ChartPosition   int              `json:"Chart_Position"`
	UserID          string           `json:"User_Id,omitempty"`
	SessionID       string           `json:"Session_Id,omitempty"`
	AggregatedTable *AggregatedTable `json:"Aggregated_Table,omitempty"`
}

// Head returns the shared header
func (h *Header) Head() *Header { return h }

// Payload is implemented by every concrete chart payload
type Payload interface {
	Head() *Header
}

// AggregatedTable is the flat table view embedded in every chart
type AggregatedTable struct {
	ChartID string           `json:"Chart_Id,omitempty"`
	Columns []string         `json:"Columns"`
	Rows    []map[string]any `json:"Rows"`
}

// SeriesData is one named line/bar group of a pivoted chart
type SeriesData struct {
	Name string    `json:"name"`
	Data []float64 `json:"data"`
}

// SeriesPayload serves bar, column, grouped bar, line, spline, area, pie,
// pyramid and radar charts. Y fields are set when no series pivot happened,
// Series when one did.
type SeriesPayload struct {
	Header
	XAxisTitle  string       `json:"xAxis"`
	YAxisTitle  string       `json:"yAxis,omitempty"`
	Y2AxisTitle string       `json:"yAxis2,omitempty"`
	Y3AxisTitle string       `json:"yAxis3,omitempty"`
	X           []string     `json:"X"`
	Y           []float64    `json:"Y,omitempty"`
	Y2          []float64    `json:"Y2,omitempty"`
	Y3          []float64    `json:"Y3,omitempty"`
	Series      []SeriesData `json:"Series,omitempty"`
	Layout      string       `json:"Layout,omitempty"`
}

// ComboPayload is a bar-line combination over a date axis
type ComboPayload struct {
	Header
	XAxisTitle  string    `json:"xAxis"`
	YBarTitle   string    `json:"yAxisBar"`
	YLineTitle  string    `json:"yAxisLine"`
	X           []string  `json:"X"`
	YBar        []float64 `json:"YBar"`
	YLine       []float64 `json:"YLine"`
	Granularity string    `json:"Granularity,omitempty"`
}

// ScatterGroup is one series of points
type ScatterGroup struct {
	Name string    `json:"name"`
	X    []float64 `json:"X"`
	Y    []float64 `json:"Y"`
	Z    []float64 `json:"Z,omitempty"`
}

// ScatterPayload serves scatterplot and bubbleplot charts
type ScatterPayload struct {
	Header
	XAxisTitle string         `json:"xAxis"`
	YAxisTitle string         `json:"yAxis"`
	ZAxisTitle string         `json:"zAxis,omitempty"`
	Groups     []ScatterGroup `json:"Groups"`
}

// HistogramBin is one bucket of a histogram
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count float64 `json:"count"`
}

// HistogramPayload serves histogram charts
type HistogramPayload struct {
	Header
	XAxisTitle string         `json:"xAxis"`
	YAxisTitle string         `json:"yAxis"`
	X          []string       `json:"X"`
	Y          []float64      `json:"Y"`
	Bins       []HistogramBin `json:"Bins"`
	Mean       float64        `json:"Mean"`
	Median     float64        `json:"Median"`
}

// TreemapNode is a treemap rectangle; Parent is empty for roots
type TreemapNode struct {
	Name   string  `json:"name"`
	Parent string  `json:"parent,omitempty"`
	Value  float64 `json:"value"`
}

// TreemapPayload serves treemap charts
type TreemapPayload struct {
	Header
	XAxisTitle string        `json:"xAxis"`
	YAxisTitle string        `json:"yAxis"`
	Nodes      []TreemapNode `json:"Nodes"`
}

// TablePayload serves table and full table charts
type TablePayload struct {
	Header
	Columns   []string         `json:"Columns"`
	Rows      []map[string]any `json:"Rows"`
	Truncated bool             `json:"Truncated,omitempty"`
}

// CardPayload is a single headline value
type CardPayload struct {
	Header
	Label    string `json:"Label"`
	Value    string `json:"Value"`
	Category string `json:"Category,omitempty"`
	Note     string `json:"Note,omitempty"`
}
