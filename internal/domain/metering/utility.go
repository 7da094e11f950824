package metering

import (
	"fmt"

	"github.com/utilitrack/backend/internal/domain/shared"
)

// UtilityType is the kind of service a meter measures
type UtilityType string

const (
	UtilityElectricity    UtilityType = "Electricity"
	UtilityWater          UtilityType = "Water"
	UtilityGas            UtilityType = "Gas"
	UtilitySewage         UtilityType = "Sewage"
	UtilityStreetLighting UtilityType = "Street Lighting"
)

// AllUtilityTypes lists the supported utilities in display order
var AllUtilityTypes = []UtilityType{
	UtilityElectricity,
	UtilityWater,
	UtilityGas,
	UtilitySewage,
	UtilityStreetLighting,
}

// IsValid checks if the utility type is supported
func (u UtilityType) IsValid() bool {
	switch u {
	case UtilityElectricity, UtilityWater, UtilityGas, UtilitySewage, UtilityStreetLighting:
		return true
	}
	return false
}

// Unit returns the unit consumption is measured in
func (u UtilityType) Unit() string {
	switch u {
	case UtilityElectricity, UtilityStreetLighting:
		return "kWh"
	case UtilityWater, UtilitySewage, UtilityGas:
		return "m³"
	default:
		return ""
	}
}

// String returns the string representation
func (u UtilityType) String() string {
	return string(u)
}

// ParseUtilityType validates a raw utility type string
func ParseUtilityType(s string) (UtilityType, error) {
	u := UtilityType(s)
	if !u.IsValid() {
		return "", shared.NewValidationError(fmt.Sprintf("Unsupported utility type: %q", s))
	}
	return u, nil
}
