package core

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/hoermto/unifi-energy/api"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// categories are the port-like words identifying a per-port power source.
// Substring matching on free-form ids is approximate by nature.
var categories = []string{"port", "poe", "outlet", "pdu"}

var (
	powerRe    = regexp.MustCompile(`(?i)power`)
	categoryRe = regexp.MustCompile(`(?i)^(.*?)\s+(outlet|port|poe|pdu)\s+Energy\b`)
	slugRe     = regexp.MustCompile(`[^a-z0-9]+`)
)

// IsPowerSource reports if the registry entry is a per-port power sensor of the given platform
func IsPowerSource(e api.Entry, platform string) bool {
	if e.Platform != platform || !strings.HasPrefix(e.EntityID, "sensor.") || e.DeviceID == "" {
		return false
	}

	if e.Unit != api.UnitWatt || e.DeviceClass != api.DeviceClassPower || e.Disabled() {
		return false
	}

	entityID, uniqueID := strings.ToLower(e.EntityID), strings.ToLower(e.UniqueID)
	for _, c := range categories {
		if strings.Contains(entityID, c) || strings.Contains(uniqueID, c) {
			return true
		}
	}

	return false
}

// SourceName returns the display name of a source, derived from its entity id if unnamed
func SourceName(e api.Entry) string {
	if name := e.DisplayName(); name != "" {
		return name
	}

	_, object, _ := strings.Cut(e.EntityID, ".")
	if object == "" {
		object = e.EntityID
	}

	return cases.Title(language.Und).String(strings.ReplaceAll(object, "_", " "))
}

// EnergyName derives the energy accumulator name from a power source name
func EnergyName(name string) string {
	switch {
	case strings.Contains(name, "Power"):
		name = strings.ReplaceAll(name, "Power", "Energy")
	case powerRe.MatchString(name):
		name = powerRe.ReplaceAllString(name, "Energy")
	default:
		name += " Energy"
	}

	// Outlet 3 Outlet Energy -> Outlet 3 Energy
	if m := categoryRe.FindStringSubmatchIndex(name); m != nil {
		prefix, category := name[m[2]:m[3]], name[m[4]:m[5]]
		if containsWord(prefix, category) {
			name = prefix + " Energy" + name[m[1]:]
		}
	}

	return name
}

func containsWord(s, word string) bool {
	for _, w := range strings.Fields(s) {
		if strings.EqualFold(w, word) {
			return true
		}
	}
	return false
}

// DeviceName returns the display name of a device
func DeviceName(d api.Device, id string) string {
	switch {
	case d.NameByUser != "":
		return d.NameByUser
	case d.Name != "":
		return d.Name
	}

	if len(id) > 8 {
		id = id[:8]
	}

	return fmt.Sprintf("UniFi Device %s", id)
}

// AggregateName returns the name of a per-device aggregate accumulator
func AggregateName(device string) string {
	return device + " PoE Energy"
}

// ResetName derives the reset controller name from the accumulator name
func ResetName(name string) string {
	if strings.HasSuffix(name, " Energy") {
		return strings.TrimSuffix(name, " Energy") + " Reset Energy"
	}
	return name + " Reset"
}

// Slugify converts a name into an entity object id
func Slugify(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if res, _, err := transform.String(t, name); err == nil {
		name = res
	}

	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if slug == "" {
		slug = "unknown"
	}

	return slug
}

// SingleUniqueID returns the unique id of a per-source accumulator
func SingleUniqueID(e api.Entry) string {
	if e.UniqueID != "" {
		return e.UniqueID + "_energy"
	}
	return e.EntityID + "_energy"
}

// AggregateUniqueID returns the unique id of a per-device accumulator
func AggregateUniqueID(deviceID string) string {
	return deviceID + "_poe_energy"
}

// ResetUniqueID returns the unique id of a reset controller
func ResetUniqueID(accumulator string) string {
	return accumulator + "_reset"
}
