package valueobject

import "fmt"

// DeviceType is the closed set of devices a learner can consume a course on.
type DeviceType struct {
	value string
}

var (
	DeviceTypeDesktop = DeviceType{value: "Desktop"}
	DeviceTypeMobile  = DeviceType{value: "Mobile"}
	DeviceTypeTablet  = DeviceType{value: "Tablet"}
)

var deviceTypes = []DeviceType{DeviceTypeDesktop, DeviceTypeMobile, DeviceTypeTablet}

// DeviceTypes returns every accepted device type in declaration order.
func DeviceTypes() []DeviceType {
	out := make([]DeviceType, len(deviceTypes))
	copy(out, deviceTypes)
	return out
}

// DeviceTypeFromString matches s case-sensitively against the accepted device types.
func DeviceTypeFromString(s string) (DeviceType, error) {
	for _, d := range deviceTypes {
		if d.value == s {
			return d, nil
		}
	}
	return DeviceType{}, fmt.Errorf("invalid device type: %q", s)
}

func (d DeviceType) String() string { return d.value }

func (d DeviceType) IsZero() bool { return d.value == "" }

func (d DeviceType) Equal(other DeviceType) bool { return d.value == other.value }
