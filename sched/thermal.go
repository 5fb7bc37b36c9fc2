// Thermal and energy accounting for simulated cores. A busy core heats up
// and draws frequency-scaled power; an idle core cools toward ambient and
// draws a fixed idle power. All rates are per 1.0-tick interval.

package sched

// Thermal and power model constants.
const (
	RoomTemperature      = 20.0  // Ambient floor, degrees C
	MaxTemperature       = 100.0 // Clamp ceiling, degrees C
	HeatingRate          = 5.0   // Degrees C per busy tick
	CoolingRate          = 2.0   // Degrees C per idle tick
	IdlePower            = 2.0   // Watts while idle
	BusyPowerBase        = 5.0   // Watts baseline while busy
	BusyPowerPerFreq     = 10.0  // Watts per GHz while busy
	DefaultCoreFrequency = 1.0   // GHz, fixed for every core
)

// ThermalState tracks per-core temperature and frequency plus the running
// energy total for the whole machine.
type ThermalState struct {
	CoreTemperatures []float64 // Degrees C, one per core
	CoreFrequencies  []float64 // GHz, one per core
	TotalEnergy      float64   // Joules accumulated over all ticks
}

// NewThermalState initializes every core at ambient temperature and the
// default frequency.
func NewThermalState(numCores int) *ThermalState {
	ts := &ThermalState{
		CoreTemperatures: make([]float64, numCores),
		CoreFrequencies:  make([]float64, numCores),
	}
	for i := range ts.CoreTemperatures {
		ts.CoreTemperatures[i] = RoomTemperature
		ts.CoreFrequencies[i] = DefaultCoreFrequency
	}
	return ts
}

// Advance applies one tick interval of heating/cooling and energy draw.
// busy[i] reports whether core i was occupied during the interval that
// just elapsed.
func (ts *ThermalState) Advance(busy []bool) {
	for i, b := range busy {
		if b {
			ts.CoreTemperatures[i] += HeatingRate
			if ts.CoreTemperatures[i] > MaxTemperature {
				ts.CoreTemperatures[i] = MaxTemperature
			}
			ts.TotalEnergy += BusyPowerBase + ts.CoreFrequencies[i]*BusyPowerPerFreq
		} else {
			ts.CoreTemperatures[i] -= CoolingRate
			if ts.CoreTemperatures[i] < RoomTemperature {
				ts.CoreTemperatures[i] = RoomTemperature
			}
			ts.TotalEnergy += IdlePower
		}
	}
}
