package domain

import "fmt"

// EmployeeStatus is the availability state of an employee. The stored value
// is a cache of derived state except for NOTICE_PERIOD, which only an
// explicit HR action sets or clears.
type EmployeeStatus string

const (
	StatusBench        EmployeeStatus = "BENCH"
	StatusAllocated    EmployeeStatus = "ALLOCATED"
	StatusNoticePeriod EmployeeStatus = "NOTICE_PERIOD"
)

// ParseEmployeeStatus parses a stored or user-supplied status literal.
func ParseEmployeeStatus(s string) (EmployeeStatus, error) {
	switch EmployeeStatus(s) {
	case StatusBench, StatusAllocated, StatusNoticePeriod:
		return EmployeeStatus(s), nil
	}
	return "", fmt.Errorf("unknown employee status %q", s)
}

// RateType scopes a rate card.
type RateType string

const (
	RateTypeBase           RateType = "BASE"
	RateTypeDomainSpecific RateType = "DOMAIN_SPECIFIC"
)

func ParseRateType(s string) (RateType, error) {
	switch RateType(s) {
	case RateTypeBase, RateTypeDomainSpecific:
		return RateType(s), nil
	}
	return "", fmt.Errorf("unknown rate type %q", s)
}

// RateSource records where a resolved hourly rate came from, so report
// consumers can tell "no rate card found" apart from a genuinely zero margin.
type RateSource string

const (
	RateSourceDomain     RateSource = "DOMAIN"
	RateSourceBase       RateSource = "BASE"
	RateSourceAllocation RateSource = "ALLOCATION"
	RateSourceNone       RateSource = "NONE"
)

func ParseRateSource(s string) (RateSource, error) {
	switch RateSource(s) {
	case RateSourceDomain, RateSourceBase, RateSourceAllocation, RateSourceNone:
		return RateSource(s), nil
	}
	return "", fmt.Errorf("unknown rate source %q", s)
}

// EventType labels entries in the allocation audit trail.
type EventType string

const (
	EventCreated EventType = "CREATED"
	EventUpdated EventType = "UPDATED"
	EventDeleted EventType = "DELETED"
)

func ParseEventType(s string) (EventType, error) {
	switch EventType(s) {
	case EventCreated, EventUpdated, EventDeleted:
		return EventType(s), nil
	}
	return "", fmt.Errorf("unknown event type %q", s)
}

// BillingPosture classifies an allocation by comparing what is billed to the
// client against what is actually staffed internally.
type BillingPosture string

const (
	PostureOverBilled  BillingPosture = "OVER_BILLED"  // internal < allocation: billing more than consumed
	PostureUnderBilled BillingPosture = "UNDER_BILLED" // internal > allocation: hidden cost
	PostureBalanced    BillingPosture = "BALANCED"
)
