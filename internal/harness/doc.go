// Package harness turns fixture directories into an executable conformance
// plan and runs it.
//
// A run has two phases.
//
// Build discovers the fixtures of every Suite and registers one output case
// per fixture, plus one leak case per fixture when the suite asks for leak
// checking. Build never launches a subprocess, so a plan can be listed or
// filtered without the subject executables being present.
//
// Execute runs every case of a plan exactly once, in registration order,
// and collects the outcomes into a Report. A failing case never stops its
// siblings, and nothing is retried.
//
// # Case IDs
//
// Cases are named <kind>/<suite>/<name>, for example:
//
//	output/integration/add
//	leak/integration/add
//	output/scanner/kw
//
// Two fixtures that reduce to the same ID fail the build with a
// *DuplicateCaseError instead of one silently replacing the other.
//
// # Usage
//
//	h := harness.New(root, harness.WithLogger(logger))
//	plan, err := h.Build([]harness.Suite{{
//	    Name:       "integration",
//	    Dir:        "test/integration",
//	    Category:   fixture.IntegrationProgram,
//	    Executable: "./fur",
//	    LeakCheck:  true,
//	}})
//	if err != nil {
//	    return err
//	}
//	report := h.Execute(ctx, plan)
package harness
