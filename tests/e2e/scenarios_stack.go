package main

// CreateStackScenario builds a three-branch stack and lists it.
func CreateStackScenario() *Scenario {
	return &Scenario{
		Name: "create-stack",
		Steps: []Step{
			{Args: []string{"create", "feat-a", "main", "spec-1"}, Contains: "created feat-a on main"},
			{Args: []string{"create", "feat-b", "feat-a"}, Contains: "created feat-b on feat-a (spec spec-1)"},
			{Args: []string{"create", "feat-c", "feat-b"}, Contains: "created feat-c on feat-b"},
			{Args: []string{"list"}, Contains: "feat-c"},
			{Args: []string{"status"}, Contains: "spec-1"},
		},
	}
}

// CreateRejectsCycleScenario verifies that repointing a base onto its
// own descendant fails with the structural exit code and touches
// nothing.
func CreateRejectsCycleScenario() *Scenario {
	return &Scenario{
		Name: "reject-cycle",
		Steps: []Step{
			{Args: []string{"create", "feat-a", "main", "spec-1"}},
			{Args: []string{"create", "feat-b", "feat-a"}},
			{Args: []string{"create", "feat-c", "feat-b"}},
			{Args: []string{"update", "feat-a", "--base", "feat-c"}, ExitCode: 2, Contains: "dependency cycle"},
			// The rejected update must leave the stack intact.
			{Args: []string{"list"}, Contains: "feat-a"},
			{Args: []string{"update", "feat-c", "--base", "feat-a"}},
		},
	}
}

// SubmitRequiresPullRequestScenario checks the submitted transition
// demands a pull request reference.
func SubmitRequiresPullRequestScenario() *Scenario {
	return &Scenario{
		Name: "submit-requires-pr",
		Steps: []Step{
			{Args: []string{"create", "feat-a", "main", "spec-1"}},
			{Args: []string{"update", "feat-a", "--status", "submitted"}, ExitCode: 7, Contains: "requires --pr"},
			{Args: []string{"update", "feat-a", "--status", "submitted", "--pr", "org/repo#42"}},
		},
	}
}

// TerminalStateIsImmutableScenario checks merged entries reject any
// further transition.
func TerminalStateIsImmutableScenario() *Scenario {
	return &Scenario{
		Name: "terminal-immutable",
		Steps: []Step{
			{Args: []string{"create", "feat-a", "main", "spec-1"}},
			{Args: []string{"update", "feat-a", "--status", "submitted", "--pr", "org/repo#1"}},
			{Args: []string{"update", "feat-a", "--status", "merged"}},
			{Args: []string{"update", "feat-a", "--status", "active"}, ExitCode: 7, Contains: "terminal"},
			{Args: []string{"update", "feat-a", "--status", "abandoned"}, ExitCode: 7},
		},
	}
}

// DeleteWithDependentsScenario checks delete refuses while dependents
// exist and honors --force.
func DeleteWithDependentsScenario() *Scenario {
	return &Scenario{
		Name: "delete-dependents",
		Steps: []Step{
			{Args: []string{"create", "feat-a", "main", "spec-1"}},
			{Args: []string{"create", "feat-b", "feat-a"}},
			{Args: []string{"delete", "feat-a"}, ExitCode: 6, Contains: "feat-b"},
			{Args: []string{"delete", "feat-a", "--force"}},
			{Args: []string{"list"}, Contains: "feat-b"},
			// The survivor's base now points at an untracked branch,
			// which status flags without repairing anything.
			{Args: []string{"status"}, Contains: "no longer tracked"},
		},
	}
}

// CreateRollbackScenario checks a create whose git branch cannot be
// made leaves no entry behind.
func CreateRollbackScenario() *Scenario {
	return &Scenario{
		Name: "create-rollback",
		Steps: []Step{
			{Args: []string{"create", "feat-a", "main", "spec-1"}},
			// feat-x already exists in git, so branch creation fails
			// after validation passes; the entry must be rolled back.
			{Pre: [][]string{{"branch", "feat-x"}}, Args: []string{"create", "feat-x", "main", "spec-1"}, ExitCode: 4},
			{Args: []string{"delete", "feat-x"}, ExitCode: 1, Contains: "not tracked"},
			{Args: []string{"list"}, Contains: "feat-a"},
		},
	}
}

// NotInitializedExitCodeScenario checks read commands in a repository
// with no mapping file exit with the dedicated code.
func NotInitializedExitCodeScenario() *Scenario {
	return &Scenario{
		Name: "not-initialized",
		Steps: []Step{
			{Args: []string{"list"}, ExitCode: 5, Contains: "no branches tracked"},
			{Args: []string{"status"}, ExitCode: 5},
		},
	}
}
