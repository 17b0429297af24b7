// Command e2e runs end-to-end scenarios against a built gstack binary.
// Each scenario gets a fresh temporary repository; the binary under
// test is taken from GSTACK_BIN or looked up on PATH.
package main

import (
	"fmt"
	"os"
)

func main() {
	scenarios := []*Scenario{
		// Single-repo lifecycle
		CreateStackScenario(),
		CreateRejectsCycleScenario(),
		SubmitRequiresPullRequestScenario(),
		TerminalStateIsImmutableScenario(),
		DeleteWithDependentsScenario(),
		CreateRollbackScenario(),

		// Import
		ImportInfersFromUpstreamScenario(),
		ImportIsIdempotentScenario(),

		// Exit codes
		NotInitializedExitCodeScenario(),
	}

	binary, err := findBinary()
	if err != nil {
		fmt.Fprintf(os.Stderr, "e2e: %v\n", err)
		os.Exit(1)
	}

	failed := 0
	for _, s := range scenarios {
		fmt.Printf("=== %s\n", s.Name)
		if err := s.run(binary); err != nil {
			failed++
			fmt.Printf("--- FAIL: %s\n    %v\n", s.Name, err)
			continue
		}
		fmt.Printf("--- ok: %s\n", s.Name)
	}

	if failed > 0 {
		fmt.Printf("\n%d of %d scenario(s) failed\n", failed, len(scenarios))
		os.Exit(1)
	}
	fmt.Printf("\nall %d scenario(s) passed\n", len(scenarios))
}
