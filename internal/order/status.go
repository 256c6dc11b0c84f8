package order

// Status is the lifecycle state of an order.
//
// The happy path runs pending → confirmed → preparing → ready → completed.
// cancelled is terminal and reachable from any non-terminal state. Transitions
// only move forward or jump to cancelled; anything else is rejected.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Variant classifies a status for presentation.
type Variant string

const (
	VariantNeutral       Variant = "neutral"
	VariantInformational Variant = "informational"
	VariantFinalPositive Variant = "final-positive"
	VariantFinalNegative Variant = "final-negative"
)

// Info carries the fixed presentation metadata of a status. Labels and
// messages are the Arabic strings shown by the storefront.
type Info struct {
	Label         string  `json:"label"`
	Variant       Variant `json:"variant"`
	EstimatedTime string  `json:"estimatedTime"`
	Description   string  `json:"description"`
}

// happyPath orders the non-cancelled statuses; the index doubles as the
// forward-only rank.
var happyPath = map[Status]int{
	StatusPending:   0,
	StatusConfirmed: 1,
	StatusPreparing: 2,
	StatusReady:     3,
	StatusCompleted: 4,
}

var statusInfo = map[Status]Info{
	StatusPending: {
		Label:         "قيد الانتظار",
		Variant:       VariantNeutral,
		EstimatedTime: "15-30 دقيقة",
		Description:   "جاري مراجعة الطلب",
	},
	StatusConfirmed: {
		Label:         "مؤكد",
		Variant:       VariantInformational,
		EstimatedTime: "30-45 دقيقة",
		Description:   "تم تأكيد طلبك وجاري التحضير",
	},
	StatusPreparing: {
		Label:         "قيد التحضير",
		Variant:       VariantInformational,
		EstimatedTime: "20-30 دقيقة",
		Description:   "جاري تحضير طلبك بعناية",
	},
	StatusReady: {
		Label:         "جاهز للاستلام",
		Variant:       VariantInformational,
		EstimatedTime: "متاح الآن",
		Description:   "طلبك جاهز! يمكنك الاستلام الآن",
	},
	StatusCompleted: {
		Label:         "مكتمل",
		Variant:       VariantFinalPositive,
		EstimatedTime: "تم التسليم",
		Description:   "تم إكمال الطلب بنجاح",
	},
	StatusCancelled: {
		Label:         "ملغي",
		Variant:       VariantFinalNegative,
		EstimatedTime: "ملغي",
		Description:   "تم إلغاء هذا الطلب",
	},
}

var progress = map[Status]int{
	StatusPending:   20,
	StatusConfirmed: 40,
	StatusPreparing: 60,
	StatusReady:     80,
	StatusCompleted: 100,
}

// Valid reports whether s is a member of the closed status set.
func (s Status) Valid() bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := happyPath[s]
	return ok
}

// Terminal reports whether no further transition may leave s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Info returns the presentation metadata for s. Unknown statuses get the
// zero Info so a stale reader never panics.
func (s Status) Info() Info {
	return statusInfo[s]
}

// Progress returns the happy-path percentage and whether a progress bar is
// meaningful at all. A cancelled order reports (0, false): callers hide the
// bar instead of rendering an empty one.
func (s Status) Progress() (int, bool) {
	p, ok := progress[s]
	return p, ok
}

// CanTransitionTo reports whether moving from s to next is allowed: strictly
// forward along the happy path, or to cancelled from any non-terminal state.
func (s Status) CanTransitionTo(next Status) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if s.Terminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	return happyPath[next] > happyPath[s]
}
