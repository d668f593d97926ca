package lenient

import (
	"sync"

	eng "github.com/reoring/lenient/internal/engine"
	"github.com/reoring/lenient/source/gojson"
	jsonsrc "github.com/reoring/lenient/source/json"
)

// JSONDriver selects the token decoder the strict parse pass runs on.
type JSONDriver struct {
	name     string
	newBytes func(b []byte) eng.TokenSource
}

// Name identifies the driver.
func (d JSONDriver) Name() string { return d.name }

// Built-in drivers.
var (
	// GoJSONDriver decodes with github.com/goccy/go-json; it is the default.
	GoJSONDriver = JSONDriver{name: gojson.Name, newBytes: gojson.NewBytes}
	// EncodingJSONDriver decodes with the standard library.
	EncodingJSONDriver = JSONDriver{name: jsonsrc.Name, newBytes: jsonsrc.NewBytes}
)

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver = GoJSONDriver
)

// SetJSONDriver replaces the global JSON driver; the zero value is ignored.
func SetJSONDriver(d JSONDriver) {
	if d.newBytes == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// UseDefaultJSONDriver restores the go-json driver.
func UseDefaultJSONDriver() { SetJSONDriver(GoJSONDriver) }

// CurrentJSONDriver returns the driver in use.
func CurrentJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	defer jsonDriverMu.RUnlock()
	return currentJSONDriver
}
