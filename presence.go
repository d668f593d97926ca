package lenient

// Presence is the per-field bit set recorded while coercing classes.
type Presence uint8

const (
	PresenceSeen           Presence = 1 << iota // Field appeared in the input.
	PresenceWasNull                             // Field value was null.
	PresenceDefaultApplied                      // Default value was applied.
)

// PresenceMap maps JSON Pointers to Presence flags.
type PresenceMap map[string]Presence

// Presence collects the presence bits of every class field in t, keyed by
// JSON Pointer. The root path "/" is always marked seen.
func (t *Typed) Presence() PresenceMap {
	pm := PresenceMap{"/": PresenceSeen}
	collectPresence(t, RootPath(), pm)
	return pm
}

func collectPresence(t *Typed, p PathRef, pm PresenceMap) {
	if t == nil {
		return
	}
	switch t.Kind {
	case TypedClass:
		for _, f := range t.Fields {
			fp := p.Field(f.Name)
			pm[fp.Pointer()] |= f.Presence
			collectPresence(f.Value, fp, pm)
		}
	case TypedList, TypedTuple:
		for i, it := range t.Items {
			ip := p.Index(i)
			pm[ip.Pointer()] |= PresenceSeen
			collectPresence(it, ip, pm)
		}
	case TypedMap:
		for _, e := range t.Entries {
			ep := p.Field(e.Key.keyText())
			pm[ep.Pointer()] |= PresenceSeen
			collectPresence(e.Value, ep, pm)
		}
	}
}
