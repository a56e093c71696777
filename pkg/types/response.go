package types

// ErrorEnvelope is the wire shape for every failed request: a 4xx for
// invalid input, a 5xx for anything that broke during aggregation. A
// degraded-but-complete report is never delivered through this envelope.
type ErrorEnvelope struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
