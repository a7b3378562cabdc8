package enums

import "fmt"

// DonationStatus tracks the lifecycle of a donation.
type DonationStatus string

const (
	DonationStatusActive    DonationStatus = "active"
	DonationStatusAccepted  DonationStatus = "accepted"
	DonationStatusPickedUp  DonationStatus = "picked_up"
	DonationStatusCancelled DonationStatus = "cancelled"
)

var validDonationStatuses = []DonationStatus{
	DonationStatusActive,
	DonationStatusAccepted,
	DonationStatusPickedUp,
	DonationStatusCancelled,
}

// String implements fmt.Stringer.
func (d DonationStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DonationStatus.
func (d DonationStatus) IsValid() bool {
	for _, candidate := range validDonationStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status accepts no further transitions.
func (d DonationStatus) IsTerminal() bool {
	return d == DonationStatusPickedUp || d == DonationStatusCancelled
}

// ParseDonationStatus converts raw input into a DonationStatus.
func ParseDonationStatus(value string) (DonationStatus, error) {
	for _, candidate := range validDonationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid donation status %q", value)
}
