package domain

// Energy represents the energy demand of an item or the energy capacity of
// an availability window. Levels form a total order; a window can host an
// item only when its level is greater than or equal to the item's level.
type Energy int

const (
	EnergyNo Energy = iota
	EnergyLow
	EnergyMedium
	EnergyHigh
	EnergyUltra
	EnergyExtreme

	// EnergyUnschedulable marks an unrecognized label. Items carrying it are
	// reported unplaced instead of being silently coerced to a real level.
	EnergyUnschedulable Energy = -1
)

var energyNames = map[Energy]string{
	EnergyNo:      "NO",
	EnergyLow:     "LOW",
	EnergyMedium:  "MEDIUM",
	EnergyHigh:    "HIGH",
	EnergyUltra:   "ULTRA",
	EnergyExtreme: "EXTREME",
}

// ParseEnergy maps a stored label to its level. Unknown labels map to
// EnergyUnschedulable rather than an error.
func ParseEnergy(label string) Energy {
	switch label {
	case "NO":
		return EnergyNo
	case "LOW":
		return EnergyLow
	case "MEDIUM":
		return EnergyMedium
	case "HIGH":
		return EnergyHigh
	case "ULTRA":
		return EnergyUltra
	case "EXTREME":
		return EnergyExtreme
	}
	return EnergyUnschedulable
}

func (e Energy) String() string {
	if name, ok := energyNames[e]; ok {
		return name
	}
	return "UNSCHEDULABLE"
}

func (e Energy) Schedulable() bool {
	return e != EnergyUnschedulable
}

// CanHost reports whether a window at this level may receive an item at the
// given level.
func (e Energy) CanHost(item Energy) bool {
	return e.Schedulable() && item.Schedulable() && e >= item
}
