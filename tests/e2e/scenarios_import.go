package main

// stackOnTracked creates feat-b in git with its upstream pointing at
// the tracked feat-a, the layout import inference reads.
var stackOnTracked = [][]string{
	{"branch", "feat-b", "feat-a"},
	{"branch", "--set-upstream-to=feat-a", "feat-b"},
}

// ImportInfersFromUpstreamScenario imports a branch whose upstream
// points at a tracked one; it inherits that entry's spec without
// prompting.
func ImportInfersFromUpstreamScenario() *Scenario {
	return &Scenario{
		Name: "import-upstream-inference",
		Steps: []Step{
			{Args: []string{"create", "feat-a", "main", "spec-1"}},
			{Pre: stackOnTracked, Args: []string{"import", "--yes"}, Contains: "imported 1 branch(es)"},
			{Args: []string{"list"}, Contains: "feat-b"},
		},
	}
}

// ImportIsIdempotentScenario runs import twice; the second run finds
// nothing left to import and says so via its own exit code.
func ImportIsIdempotentScenario() *Scenario {
	return &Scenario{
		Name: "import-idempotent",
		Steps: []Step{
			{Args: []string{"create", "feat-a", "main", "spec-1"}},
			{Pre: stackOnTracked, Args: []string{"import", "--yes"}},
			{Args: []string{"import", "--yes"}, ExitCode: 8, Contains: "nothing to import"},
		},
	}
}
