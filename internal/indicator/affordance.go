package indicator

import "github.com/anshc022/vocahire/internal/fsm"

// Affordance is the primary control offered to the candidate in one state.
// Action is the IPC command the control triggers; it is empty when Enabled
// is false.
type Affordance struct {
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
	Action  string `json:"action,omitempty"`
}

var affordances = map[fsm.State]Affordance{
	fsm.StateIdle:                  {Label: "Start Interview", Enabled: true, Action: "start"},
	fsm.StateRequestingPermissions: {Label: "Requesting Permissions..."},
	fsm.StatePermissionsDenied:     {Label: "Grant Permissions & Retry", Enabled: true, Action: "retry"},
	fsm.StateInitializingSession:   {Label: "Initializing..."},
	fsm.StateConnecting:            {Label: "Connecting..."},
	fsm.StateSessionReady:          {Label: "Waiting for AI..."},
	fsm.StateAITurn:                {Label: "AI Speaking...", Enabled: true, Action: "record"},
	fsm.StateReadyToListen:         {Label: "Start Recording", Enabled: true, Action: "record"},
	fsm.StateUserTurn:              {Label: "Stop Recording", Enabled: true, Action: "stop"},
	fsm.StateUserTurnProcessing:    {Label: "Processing..."},
	fsm.StateEndedByAI:             {Label: "Interview Ended"},
	fsm.StateEndedByUser:           {Label: "Interview Ended"},
	fsm.StateFetchingSummary:       {Label: "Fetching Summary..."},
	fsm.StateSummaryDisplayed:      {Label: "Interview Complete"},
	fsm.StateSessionError:          {Label: "Retry", Enabled: true, Action: "retry"},
	fsm.StateError:                 {Label: "Retry", Enabled: true, Action: "retry"},
}

// AffordanceFor returns the primary control for state. Unknown states get a
// disabled control.
func AffordanceFor(state fsm.State) Affordance {
	if a, ok := affordances[state]; ok {
		return a
	}
	return Affordance{Label: string(state)}
}
