package sources

// Source names every upstream collaborator the gateway talks to. The names
// double as metric labels and as keys in the report's modules section.
const (
	SourceCalls             = "calls"
	SourceLeads             = "leads"
	SourceConversations     = "conversations"
	SourceTransactions      = "transactions"
	SourceAppointments      = "appointments"
	SourceSearchConsole     = "searchConsole"
	SourceSearchPerformance = "searchPerformance"
	SourceAnalytics         = "analytics"
	SourceAds               = "ads"
)

// Row is one heterogeneous upstream record. Field names vary per
// collaborator; the normalizer resolves them into a canonical view.
type Row map[string]any

// Payload is the common envelope every row-bearing collaborator returns.
// Summary-style collaborators populate KPIs instead of Rows.
type Payload struct {
	OK           bool               `json:"ok"`
	Total        int                `json:"total"`
	Rows         []Row              `json:"rows"`
	KPIs         map[string]float64 `json:"kpis,omitempty"`
	LostBookings []Row              `json:"lostBookings,omitempty"`
	Error        string             `json:"error,omitempty"`
}

// Result is the fully resolved outcome of one collaborator call. A call
// never raises: transport failures, bad statuses, and parse errors all land
// here as OK=false with an error string.
type Result struct {
	OK      bool
	Status  int
	Err     string
	Payload Payload
}

// Failed builds a not-ok Result carrying the error string.
func Failed(status int, msg string) Result {
	return Result{OK: false, Status: status, Err: msg}
}

// Snapshot holds one Result per (source, window) for a single report build.
// Absent previous-window entries mean the comparison window was
// unresolvable and the calls were skipped.
type Snapshot struct {
	Current  map[string]Result
	Previous map[string]Result
}

// Cur returns the current-window result for source, zero-valued when the
// source was never fetched.
func (s Snapshot) Cur(source string) Result {
	return s.Current[source]
}

// Prev returns the previous-window result for source.
func (s Snapshot) Prev(source string) Result {
	return s.Previous[source]
}
