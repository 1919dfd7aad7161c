package analysis

import (
	"fmt"

	"goassoc/domain/assoc"
	"goassoc/domain/core"
)

// Component names as they appear in bundle warnings and run manifests.
const (
	ComponentHypothesis = "hypothesis"
	ComponentEffects    = "effects"
	ComponentCorrection = "correction"
	ComponentNetwork    = "network"
	ComponentPatterns   = "patterns"
	ComponentBootstrap  = "bootstrap"
)

// degenerateWarning flags a pair whose contingency table had a zero-variance
// margin; the pair result is neutral (p=1.0), not missing.
func degenerateWarning(pair core.PairKey) assoc.Warning {
	return assoc.Warning{
		Component: ComponentHypothesis,
		Code:      assoc.WarningDegenerateInput,
		Message:   fmt.Sprintf("pair %s has a zero-variance column; emitted neutral result", pair),
		Pair:      pair,
	}
}

// instabilityWarning flags a pair whose raw odds ratio was undefined before
// pseudocount stabilization. The reported log-odds is the corrected value.
func instabilityWarning(pair core.PairKey) assoc.Warning {
	return assoc.Warning{
		Component: ComponentEffects,
		Code:      assoc.WarningNumericInstability,
		Message:   fmt.Sprintf("pair %s has an empty contingency cell; log-odds stabilized by pseudocount", pair),
		Pair:      pair,
	}
}

// ceilingWarning records a pattern scan aborted by the combination ceiling.
// Only the scan is lost; the rest of the bundle stands.
func ceilingWarning(err error) assoc.Warning {
	return assoc.Warning{
		Component: ComponentPatterns,
		Code:      assoc.WarningResourceExhausted,
		Message:   err.Error(),
	}
}

// componentWarning records a component that failed outright while the rest
// of the run completed.
func componentWarning(component string, err error) assoc.Warning {
	return assoc.Warning{
		Component: component,
		Code:      assoc.WarningComponentFailed,
		Message:   err.Error(),
	}
}
