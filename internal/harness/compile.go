package harness

import (
	"fmt"
	"sort"

	"github.com/statewalk/statewalk/internal/machine"
	"github.com/statewalk/statewalk/internal/object"
	"github.com/statewalk/statewalk/internal/statetree"
)

// Compiled is a scenario lowered to engine inputs.
type Compiled struct {
	Records   []*object.Record
	Processes []*machine.Process
}

// Compile lowers a validated scenario into tracked records and processes.
func Compile(s *Scenario) (*Compiled, error) {
	byName := make(map[string]*object.Record, len(s.Objects))
	records := make([]*object.Record, 0, len(s.Objects))

	for _, decl := range s.Objects {
		if _, dup := byName[decl.Name]; dup {
			return nil, fmt.Errorf("harness: duplicate object %q", decl.Name)
		}

		fields := make([]string, 0, len(decl.Fields))
		for f := range decl.Fields {
			fields = append(fields, f)
		}
		sort.Strings(fields)

		rec := object.NewRecord(decl.Name, fields...)
		for _, f := range fields {
			raw := decl.Fields[f]
			if raw == nil {
				continue // declared but initially absent
			}
			v, err := toValue(raw)
			if err != nil {
				return nil, fmt.Errorf("harness: object %q field %q: %w", decl.Name, f, err)
			}
			if err := rec.Set(f, v); err != nil {
				return nil, err
			}
		}
		byName[decl.Name] = rec
		records = append(records, rec)
	}

	procs := make([]*machine.Process, 0, len(s.Processes))
	for _, decl := range s.Processes {
		target, ok := byName[decl.Target]
		if !ok {
			return nil, fmt.Errorf("harness: process %q targets unknown object %q", decl.Name, decl.Target)
		}

		steps := make([]machine.Step, 0, len(decl.Steps))
		for _, sd := range decl.Steps {
			fn, err := compileStep(decl.Name, sd)
			if err != nil {
				return nil, err
			}
			steps = append(steps, machine.Step{Name: sd.Name, Fn: fn})
		}

		if decl.Loop {
			procs = append(procs, machine.NewLoop(decl.Name, target, steps...))
		} else {
			procs = append(procs, machine.NewProcess(decl.Name, target, steps...))
		}
	}

	return &Compiled{Records: records, Processes: procs}, nil
}

// compileStep lowers one step declaration to a StepFunc running its ops in
// order inside a single atomic boundary.
func compileStep(process string, sd StepDecl) (machine.StepFunc, error) {
	type compiledOp func(ctx *machine.Context, self *object.Record) error
	ops := make([]compiledOp, 0, len(sd.Ops))

	for i, op := range sd.Ops {
		switch {
		case op.Set != nil && op.AssertEq == nil && op.Choose == nil:
			field := op.Set.Field
			v, err := toValue(op.Set.Value)
			if err != nil {
				return nil, fmt.Errorf("harness: %s/%s op %d: %w", process, sd.Name, i, err)
			}
			ops = append(ops, func(_ *machine.Context, self *object.Record) error {
				return self.Set(field, v)
			})

		case op.AssertEq != nil && op.Set == nil && op.Choose == nil:
			field := op.AssertEq.Field
			want, err := toValue(op.AssertEq.Value)
			if err != nil {
				return nil, fmt.Errorf("harness: %s/%s op %d: %w", process, sd.Name, i, err)
			}
			ops = append(ops, func(_ *machine.Context, self *object.Record) error {
				got, err := self.Get(field)
				if err != nil {
					return err
				}
				eq, err := valuesEqual(got, want)
				if err != nil {
					return err
				}
				return machine.Assert(eq, "%s = %s, want %s", field, formatValue(got), formatValue(want))
			})

		case op.Choose != nil && op.Set == nil && op.AssertEq == nil:
			field := op.Choose.Field
			members := make([]statetree.Value, 0, len(op.Choose.From))
			for j, raw := range op.Choose.From {
				v, err := toValue(raw)
				if err != nil {
					return nil, fmt.Errorf("harness: %s/%s op %d member %d: %w", process, sd.Name, i, j, err)
				}
				members = append(members, v)
			}
			set, err := statetree.NewChoice(members...)
			if err != nil {
				return nil, fmt.Errorf("harness: %s/%s op %d: %w", process, sd.Name, i, err)
			}
			ops = append(ops, func(ctx *machine.Context, self *object.Record) error {
				v, err := ctx.Choose(set)
				if err != nil {
					return err
				}
				return self.Set(field, v)
			})

		default:
			return nil, fmt.Errorf("harness: %s/%s op %d: exactly one of set, assert_eq, choose required", process, sd.Name, i)
		}
	}

	return func(ctx *machine.Context, self *object.Record) error {
		for _, op := range ops {
			if err := op(ctx, self); err != nil {
				return err
			}
		}
		return nil
	}, nil
}

// toValue converts a decoded YAML scalar to a statetree value. Floats are
// rejected: they have no canonical encoding.
func toValue(raw any) (statetree.Value, error) {
	switch v := raw.(type) {
	case string:
		return statetree.String(v), nil
	case int:
		return statetree.Int(v), nil
	case int64:
		return statetree.Int(v), nil
	case bool:
		return statetree.Bool(v), nil
	case float64, float32:
		return nil, fmt.Errorf("float values are not supported: %v", v)
	default:
		return nil, fmt.Errorf("unsupported value type %T", raw)
	}
}

// valuesEqual compares two values by canonical hash, so compounds and leaves
// compare uniformly.
func valuesEqual(a, b statetree.Value) (bool, error) {
	ha, err := statetree.HashTree(a)
	if err != nil {
		return false, err
	}
	hb, err := statetree.HashTree(b)
	if err != nil {
		return false, err
	}
	return ha == hb, nil
}

func formatValue(v statetree.Value) string {
	switch val := v.(type) {
	case statetree.String:
		return fmt.Sprintf("%q", string(val))
	case statetree.Int:
		return fmt.Sprintf("%d", int64(val))
	case statetree.Bool:
		return fmt.Sprintf("%t", bool(val))
	case statetree.Absent:
		return "absent"
	default:
		return fmt.Sprintf("%v", v)
	}
}
