// Package model defines the entity records and closed vocabularies shared by
// the enrichment and routing layers.
package model

// Category is a ticket category. The deployed corpus uses Russian labels;
// the constants below are the stable contract.
type Category string

// Ticket categories, in declaration order. The classifier breaks score ties
// in favour of the earlier category.
const (
	CategoryComplaint    Category = "Жалоба"
	CategoryChangeOfData Category = "Смена данных"
	CategoryConsultation Category = "Консультация"
	CategoryClaim        Category = "Претензия"
	CategoryAppFailure   Category = "Неработоспособность приложения"
	CategoryFraud        Category = "Мошеннические действия"
	CategorySpam         Category = "Спам"
)

// Categories lists all categories in declaration order.
var Categories = []Category{
	CategoryComplaint,
	CategoryChangeOfData,
	CategoryConsultation,
	CategoryClaim,
	CategoryAppFailure,
	CategoryFraud,
	CategorySpam,
}

// Language is a detected ticket language.
type Language string

const (
	LanguageRU  Language = "RU"
	LanguageKZ  Language = "KZ"
	LanguageENG Language = "ENG"
)

// Sentiment is a ticket sentiment polarity.
type Sentiment string

const (
	SentimentPositive Sentiment = "POS"
	SentimentNeutral  Sentiment = "NEU"
	SentimentNegative Sentiment = "NEG"
)

// Client segments that require VIP-skilled agents.
const (
	SegmentVIP      = "VIP"
	SegmentPriority = "PRIORITY"
	SegmentMass     = "MASS"
)

// OfficeReason records how the home office was selected for a ticket.
type OfficeReason string

const (
	// ReasonByCoords means the ticket carried explicit coordinates.
	ReasonByCoords OfficeReason = "by_coords"
	// ReasonByDistance means the client city was geocoded.
	ReasonByDistance OfficeReason = "by_distance"
	// ReasonByMatch means an office name matched the city string.
	ReasonByMatch OfficeReason = "by_match"
	// ReasonFiftyFifty alternates between the two capitals for
	// non-domestic tickets.
	ReasonFiftyFifty OfficeReason = "50_50"
	// ReasonDefault is the final fallback to the first capital.
	ReasonDefault OfficeReason = "default"
	// ReasonNearestOffice means the home office had no suitable agent and
	// the ticket was redirected during the relaxation ladder.
	ReasonNearestOffice OfficeReason = "nearest_office"
)

// EscalationSentinel is the manager value assigned when no suitable agent
// exists anywhere.
const EscalationSentinel = "CAPITAL_ESCALATION"

// Ticket is a raw support ticket as read from the corpus.
type Ticket struct {
	GUID    string   `json:"guid"`
	Text    string   `json:"text"`
	City    string   `json:"city"`
	Region  string   `json:"region,omitempty"`
	Country string   `json:"country"`
	Segment string   `json:"segment"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

// HasCoords reports whether the ticket carries explicit coordinates.
func (t Ticket) HasCoords() bool {
	return t.Lat != nil && t.Lon != nil
}

// Enrichment holds the analytic attributes derived from a ticket body.
type Enrichment struct {
	Category       Category  `json:"ai_type"`
	Language       Language  `json:"ai_lang"`
	Sentiment      Sentiment `json:"sentiment"`
	Priority       int       `json:"priority"`
	Summary        string    `json:"summary"`
	Recommendation string    `json:"recommendation"`
	Lat            *float64  `json:"lat,omitempty"`
	Lon            *float64  `json:"lon,omitempty"`
}

// EnrichedTicket pairs a ticket with its enrichment. Segment carries the
// normalised client segment so the router never re-parses raw input.
type EnrichedTicket struct {
	Ticket     Ticket
	Enrichment Enrichment
	Segment    string
}

// Manager is a human agent able to resolve tickets.
type Manager struct {
	Name     string   `json:"name"`
	Position string   `json:"position"`
	Office   string   `json:"office"`
	Skills   SkillSet `json:"skills"`
	Load     int      `json:"load"`
}

// SkillSet is an uppercased set of manager skills (VIP, KZ, ENG, ...).
type SkillSet map[string]struct{}

// Has reports whether the set contains the given skill (case-insensitive
// lookup is the caller's job; skills are stored uppercased).
func (s SkillSet) Has(skill string) bool {
	_, ok := s[skill]
	return ok
}

// Office is a physical office a manager can belong to.
type Office struct {
	Name    string   `json:"name"`
	Address string   `json:"address,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

// Assignment is the routing outcome for one ticket.
type Assignment struct {
	GUID         string       `json:"guid"`
	Enrichment   Enrichment   `json:"enrichment"`
	Office       string       `json:"office"`
	OfficeReason OfficeReason `json:"office_reason"`
	DistanceKM   *float64     `json:"distance_km,omitempty"`
	Manager      string       `json:"manager"`
	Trace        Trace        `json:"trace"`
}

// Escalated reports whether the assignment ended in the escalation sentinel.
func (a Assignment) Escalated() bool {
	return a.Manager == EscalationSentinel
}

// Trace is the per-ticket routing decision record.
type Trace struct {
	Office       string       `json:"office"`
	OfficeReason OfficeReason `json:"office_reason"`
	DistanceKM   *float64     `json:"distance_km,omitempty"`
	InitialPool  int          `json:"initial_pool"`

	// Pool sizes after each applied filter; nil when the filter was not
	// required for this ticket.
	AfterVIP   *int `json:"after_vip,omitempty"`
	AfterChief *int `json:"after_chief,omitempty"`
	AfterLang  *int `json:"after_lang,omitempty"`

	// Round-robin bookkeeping for the chosen pool.
	Top2      []string `json:"top2,omitempty"`
	Top2Loads []int    `json:"top2_loads,omitempty"`
	RRIndex   *int     `json:"rr_index,omitempty"`

	Selected string `json:"selected"`

	// Redirect data when the nearest-office fallback fired.
	Redirect   string   `json:"redirect,omitempty"`
	RedirectKM *float64 `json:"redirect_km,omitempty"`

	Escalation       bool   `json:"escalation"`
	EscalationReason string `json:"escalation_reason,omitempty"`
	RoutingMs        int64  `json:"routing_ms"`
}
