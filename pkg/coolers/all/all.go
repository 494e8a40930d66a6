// Package all is a convenience wrapper that registers all known cooler
// implementations. Importing this package enables the goshark factory to find
// drivers for any supported cooler.
package all

// Import each implementation package for its side-effects (the init() function).
import (
	_ "github.com/mlsorensen/goshark/pkg/coolers/blackshark"
	_ "github.com/mlsorensen/goshark/pkg/coolers/mock"
	// When you add a [model] cooler, you would add this line:
	// _ "github.com/mlsorensen/goshark/pkg/coolers/[model]"
)
