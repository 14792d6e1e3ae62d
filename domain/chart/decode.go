package chart

import (
	"encoding/json"
	"fmt"
)

// DecodePayload reads a payload back from its JSON form, choosing the
// concrete type by Chart_Type.
func DecodePayload(raw []byte) (Payload, error) {
	var head struct {
		ChartType ChartType `json:"Chart_Type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("decode chart header: %w", err)
	}

	var p Payload
	switch head.ChartType {
	case TypeBar, TypeColumn, TypeGroupedBar, TypeLine, TypeSpline, TypeArea,
		TypePie, TypePyramidFunnel, TypeRadar:
		p = &SeriesPayload{}
	case TypeBarLineCombo:
		p = &ComboPayload{}
	case TypeScatterplot, TypeBubbleplot:
		p = &ScatterPayload{}
	case TypeHistogram:
		p = &HistogramPayload{}
	case TypeTreemap:
		p = &TreemapPayload{}
	case TypeTable, TypeFullTable:
		p = &TablePayload{}
	case TypeCard:
		p = &CardPayload{}
	default:
		return nil, fmt.Errorf("unknown chart type %q", head.ChartType)
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("decode %s: %w", head.ChartType, err)
	}
	return p, nil
}
