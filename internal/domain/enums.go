package domain

// OrderStatus represents the persisted status of an order
type OrderStatus string

const (
	// Draft - order autosaved during composition, not yet submitted
	OrderStatusDraft OrderStatus = "Draft"
	// Submitted - order admitted against the weekly capacity window
	OrderStatusSubmitted OrderStatus = "Submitted"
	// AwaitingSubmission - submitted while the window was full; resubmitted
	// once a new capacity window opens
	OrderStatusAwaitingSubmission OrderStatus = "Awaiting Submission"
)

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusSubmitted, OrderStatusAwaitingSubmission:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a status transition is valid
func (s OrderStatus) CanTransitionTo(newStatus OrderStatus) bool {
	switch s {
	case OrderStatusDraft:
		return newStatus == OrderStatusSubmitted || newStatus == OrderStatusAwaitingSubmission
	case OrderStatusAwaitingSubmission:
		return newStatus == OrderStatusSubmitted
	case OrderStatusSubmitted:
		return false // Terminal state
	default:
		return false
	}
}

// Step is one position in the composition wizard. shape/design/size form the
// per-set sub-flow; summary/fulfillment/review form the order sub-flow.
type Step string

const (
	StepShape       Step = "shape"
	StepDesign      Step = "design"
	StepSize        Step = "size"
	StepSummary     Step = "summary"
	StepFulfillment Step = "fulfillment"
	StepReview      Step = "review"
)

// StepOrder lists the wizard steps in forward order.
var StepOrder = []Step{StepShape, StepDesign, StepSize, StepSummary, StepFulfillment, StepReview}

// IsValid checks if the step is a known wizard step
func (s Step) IsValid() bool {
	for _, st := range StepOrder {
		if st == s {
			return true
		}
	}
	return false
}

// Prev returns the previous step. The first step returns itself.
func (s Step) Prev() Step {
	for i, st := range StepOrder {
		if st == s && i > 0 {
			return StepOrder[i-1]
		}
	}
	return s
}

// Next returns the following step. The last step returns itself.
func (s Step) Next() Step {
	for i, st := range StepOrder {
		if st == s && i < len(StepOrder)-1 {
			return StepOrder[i+1]
		}
	}
	return s
}

// SizeMode selects whether sizes apply per order (standard) or per set
type SizeMode string

const (
	SizeModeStandard SizeMode = "standard"
	SizeModePerSet   SizeMode = "perSet"
)

// SizingOption selects how a set's sizes are sourced
type SizingOption string

const (
	SizingOptionSaved  SizingOption = "saved"
	SizingOptionManual SizingOption = "manual"

	// Legacy photo-based sizing. Accepted from persisted records only and
	// mapped to manual at load time; never written back.
	SizingOptionCamera SizingOption = "camera"
)

// IsValid checks if the sizing option is a current (non-legacy) value
func (o SizingOption) IsValid() bool {
	return o == SizingOptionSaved || o == SizingOptionManual
}

// Normalize maps legacy sizing options to current ones
func (o SizingOption) Normalize() SizingOption {
	if o == SizingOptionCamera {
		return SizingOptionManual
	}
	return o
}

// UploadState tracks one image upload
type UploadState string

const (
	UploadStatePending  UploadState = "pending"
	UploadStateUploaded UploadState = "uploaded"
	UploadStateFailed   UploadState = "failed"
)

// UploadKind distinguishes design references from sizing photos
type UploadKind string

const (
	UploadKindDesign UploadKind = "design"
	UploadKindSizing UploadKind = "sizing"
)

// Finger identifies one of the five per-hand size keys
type Finger string

const (
	FingerThumb  Finger = "thumb"
	FingerIndex  Finger = "index"
	FingerMiddle Finger = "middle"
	FingerRing   Finger = "ring"
	FingerPinky  Finger = "pinky"
)

// Fingers lists the five finger keys in display order.
var Fingers = []Finger{FingerThumb, FingerIndex, FingerMiddle, FingerRing, FingerPinky}

// IsValid checks if the finger is one of the five keys
func (f Finger) IsValid() bool {
	switch f {
	case FingerThumb, FingerIndex, FingerMiddle, FingerRing, FingerPinky:
		return true
	}
	return false
}

// DeliverySpeed is the fulfillment speed tier
type DeliverySpeed string

const (
	DeliverySpeedStandard DeliverySpeed = "standard"
	DeliverySpeedRush     DeliverySpeed = "rush"
)

// DeliveryMethodID identifies how a finished order reaches the customer
type DeliveryMethodID string

const (
	DeliveryMethodPickup   DeliveryMethodID = "pickup"
	DeliveryMethodDelivery DeliveryMethodID = "delivery"
	DeliveryMethodShipping DeliveryMethodID = "shipping"
)

// IsValid checks if the delivery method is known
func (m DeliveryMethodID) IsValid() bool {
	switch m {
	case DeliveryMethodPickup, DeliveryMethodDelivery, DeliveryMethodShipping:
		return true
	}
	return false
}

// RequiresAddress reports whether this method needs a complete address
func (m DeliveryMethodID) RequiresAddress() bool {
	return m == DeliveryMethodDelivery || m == DeliveryMethodShipping
}
