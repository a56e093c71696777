package report

// FunnelStage is one step of the six-stage acquisition funnel.
type FunnelStage struct {
	Key       string   `json:"key"`
	Label     string   `json:"label"`
	ValueNow  float64  `json:"valueNow"`
	ValuePrev float64  `json:"valuePrev"`
	DeltaPct  *float64 `json:"deltaPct"`
}

// FunnelRates are the five adjacent conversion ratios, nil when the raw
// denominator is non-positive.
type FunnelRates struct {
	CTR                       *float64 `json:"ctr"`
	ClickToLead               *float64 `json:"clickToLead"`
	LeadToConversation        *float64 `json:"leadToConversation"`
	ConversationToAppointment *float64 `json:"conversationToAppointment"`
	AppointmentToTransaction  *float64 `json:"appointmentToTransaction"`
}

// Funnel is the assembled funnel section.
type Funnel struct {
	Stages    []FunnelStage `json:"stages"`
	RatesNow  FunnelRates   `json:"ratesNow"`
	RatesPrev FunnelRates   `json:"ratesPrev"`
}

// FunnelInputs are the per-period raw stage values.
type FunnelInputs struct {
	Impressions   float64
	Clicks        float64
	Leads         float64
	Conversations float64
	Appointments  float64
	Revenue       float64
	Transactions  float64
}

var funnelStageDefs = []struct {
	key   string
	label string
	pick  func(FunnelInputs) float64
}{
	{"impressions", "Impressions", func(i FunnelInputs) float64 { return i.Impressions }},
	{"clicks", "Clicks", func(i FunnelInputs) float64 { return i.Clicks }},
	{"leads", "Leads", func(i FunnelInputs) float64 { return i.Leads }},
	{"conversations", "Conversations", func(i FunnelInputs) float64 { return i.Conversations }},
	{"appointments", "Appointments", func(i FunnelInputs) float64 { return i.Appointments }},
	{"revenue", "Revenue", func(i FunnelInputs) float64 { return i.Revenue }},
}

// BuildFunnel assembles the ordered stages plus both periods' conversion
// rates.
func BuildFunnel(now, prev FunnelInputs) Funnel {
	stages := make([]FunnelStage, 0, len(funnelStageDefs))
	for _, def := range funnelStageDefs {
		cur := def.pick(now)
		before := def.pick(prev)
		stages = append(stages, FunnelStage{
			Key:       def.key,
			Label:     def.label,
			ValueNow:  cur,
			ValuePrev: before,
			DeltaPct:  finiteDelta(cur, before),
		})
	}
	return Funnel{
		Stages:    stages,
		RatesNow:  funnelRates(now),
		RatesPrev: funnelRates(prev),
	}
}

func funnelRates(in FunnelInputs) FunnelRates {
	return FunnelRates{
		CTR:                       ratioPct(in.Clicks, in.Impressions),
		ClickToLead:               ratioPct(in.Leads, in.Clicks),
		LeadToConversation:        ratioPct(in.Conversations, in.Leads),
		ConversationToAppointment: ratioPct(in.Appointments, in.Conversations),
		AppointmentToTransaction:  ratioPct(in.Transactions, in.Appointments),
	}
}
