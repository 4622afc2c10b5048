// Package protocol maps a crisis type to its emergency response protocol.
//
// The table is static config data. Lookup never fails: an unknown crisis
// type yields the command-center escalation fallback so the pipeline always
// has an actionable recommendation.
package protocol

import "github.com/echoguardhq/echoguard/pkg/crisis"

// Protocol is a prioritized, ordered list of response actions.
type Protocol struct {
	Priority string   `json:"priority"`
	Actions  []string `json:"actions"`
}

var protocols = map[string]Protocol{
	"flood": {
		Priority: crisis.SeverityHigh,
		Actions: []string{
			"Deploy water rescue teams to affected zones",
			"Open emergency shelters on elevated ground",
			"Shut off electricity in submerged areas",
			"Broadcast evacuation routes on local channels",
			"Stage medical units at shelter entry points",
		},
	},
	"fire": {
		Priority: crisis.SeverityCritical,
		Actions: []string{
			"Dispatch fire suppression units to the perimeter",
			"Establish an evacuation cordon downwind",
			"Alert burn units at regional hospitals",
			"Cut gas mains in the affected blocks",
			"Coordinate aerial water drops if spread continues",
		},
	},
	"earthquake": {
		Priority: crisis.SeverityCritical,
		Actions: []string{
			"Activate urban search and rescue teams",
			"Inspect and close compromised structures",
			"Establish triage points clear of aftershock hazards",
			"Restore emergency communications",
			"Survey dams and bridges before reopening routes",
		},
	},
	"landslide": {
		Priority: crisis.SeverityHigh,
		Actions: []string{
			"Cordon the slide zone and halt traffic",
			"Deploy heavy equipment for debris clearance",
			"Probe debris field for trapped survivors",
			"Monitor slope for secondary movement",
			"Relocate residents from adjacent unstable slopes",
		},
	},
	"cyclone": {
		Priority: crisis.SeverityCritical,
		Actions: []string{
			"Issue coastal evacuation orders",
			"Pre-position relief supplies inland",
			"Secure ports and ground air traffic",
			"Open cyclone shelters and verify capacity",
			"Stage restoration crews for the post-landfall window",
		},
	},
}

// fallback is returned for crisis types outside the table.
var fallback = Protocol{
	Priority: crisis.SeverityCritical,
	Actions: []string{
		"Unknown crisis type: escalate to command center immediately",
	},
}

// Lookup returns the response protocol for a crisis type. Unknown types get
// the escalation fallback; the second return reports whether the type was
// found in the table.
func Lookup(crisisType string) (Protocol, bool) {
	p, ok := protocols[crisisType]
	if !ok {
		return fallback, false
	}
	return p, true
}

// Types returns the crisis types present in the protocol table.
func Types() []string {
	return []string{"flood", "fire", "earthquake", "landslide", "cyclone"}
}
