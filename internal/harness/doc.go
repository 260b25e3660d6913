// Package harness loads and runs model-checking scenarios.
//
// Scenarios are YAML files declaring tracked objects with their initial
// fields, processes as ordered step programs, a step bound, and the expected
// outcome. The harness validates the document against an embedded CUE
// schema, compiles it into records and processes, runs the search engine,
// and checks the outcome against the scenario's expectations.
//
// # Scenario format
//
//	name: set_then_check
//	description: "Checker must observe the setter's write"
//	bound: 10
//	objects:
//	  - name: m
//	    fields:
//	      foo: a
//	processes:
//	  - name: setter
//	    target: m
//	    steps:
//	      - name: set-b
//	        ops:
//	          - set: { field: foo, value: b }
//	  - name: checker
//	    target: m
//	    steps:
//	      - name: expect-b
//	        ops:
//	          - assert_eq: { field: foo, value: b }
//	expect:
//	  outcome: violation
//
// # Step operations
//
//   - set: write a field
//   - assert_eq: fail the search if a field differs from the given value
//   - choose: set a field to a nondeterministic choice among the given
//     members, forking the search once per member
//
// A process with loop: true repeats its steps forever and relies on the
// bound or on state dedup for termination.
//
// Scenario runs are deterministic: the same file always explores the same
// configurations in the same order, so the formatted report is suitable for
// golden comparison.
package harness
