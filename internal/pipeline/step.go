package pipeline

import "fmt"

// Step is one stage of a release run
type Step int

const (
	StepNone Step = iota
	StepRunTests
	StepAssertPriorTag
	StepGenerateChangelog
	StepPersistVersion
	StepBuild
	StepCommitAndTag
)

var stepNames = map[Step]string{
	StepNone:              "",
	StepRunTests:          "RunTests",
	StepAssertPriorTag:    "AssertPriorTag",
	StepGenerateChangelog: "GenerateChangelog",
	StepPersistVersion:    "PersistVersion",
	StepBuild:             "Build",
	StepCommitAndTag:      "CommitAndTag",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Step(%d)", int(s))
}
