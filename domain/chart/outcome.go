package chart

// Redirect asks the registry to rebuild the same inputs as another chart type
type Redirect struct {
	To      ChartType
	Binding AxisBinding
	Reason  string
}

// Outcome is the result of one builder call: either a payload or a redirect
type Outcome struct {
	payload  Payload
	redirect *Redirect
}

// Produced wraps a finished payload
func Produced(p Payload) Outcome {
	return Outcome{payload: p}
}

// RedirectTo asks for the inputs to be rebuilt as another chart type
func RedirectTo(to ChartType, binding AxisBinding, reason string) Outcome {
	return Outcome{redirect: &Redirect{To: to, Binding: binding, Reason: reason}}
}

// Payload returns the produced payload, nil for redirects
func (o Outcome) Payload() Payload { return o.payload }

// Redirect returns the redirect, nil for produced payloads
func (o Outcome) Redirect() *Redirect { return o.redirect }

// IsRedirect reports whether the builder asked for another chart type
func (o Outcome) IsRedirect() bool { return o.redirect != nil }
