// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package wpa

import (
	"github.com/jholder85638/phc/analysis/cfg"
	"github.com/jholder85638/phc/analysis/mir"
)

// superglobalArrays are the predefined containers initialized when the program entry
// is invoked with no caller. Each is an array whose element values are unknown
// strings, bounding conservatism without modelling request contents.
//
// The containers live in the global scope only. A non-entry method reaches them
// through a global declaration like any other global variable; a bare $_GET in a
// callee is an ordinary local.
var superglobalArrays = []string{
	"_GET", "_POST", "_SERVER", "_COOKIE", "_ENV", "_FILES", "_REQUEST", "_SESSION",
}

// invokeMethod analyzes a call at its call site: resolve the callee, record the call
// edge, bind forward, run the callee to its exit, bind backward into the caller. The
// caller block is nil only for the program entry invocation.
func (w *WholeProgram) invokeMethod(bb *cfg.Block, call mir.Call, dest *lval) error {
	info, err := w.program.MethodInfo(call.Name)
	if err != nil {
		return err
	}
	if bb != nil {
		w.cg.AddCall(bb.Graph().Name(), call.Name)
	}

	if w.active[call.Name] {
		return w.bindRecursiveCall(bb, call, dest)
	}
	w.active[call.Name] = true
	defer delete(w.active, call.Name)

	switch m := info.(type) {
	case *UserMethodInfo:
		g, err := m.CFG()
		if err != nil {
			return err
		}
		if err := w.forwardBind(bb, g, m.Method, call.Args); err != nil {
			return err
		}
		if err := w.analyzeFunction(g); err != nil {
			return err
		}
		return w.backwardBind(bb, g, m.Method.ReturnsRef, dest)
	case *SummaryMethodInfo:
		return w.analyzeSummary(bb, m, call, dest)
	default:
		return Invariantf("unknown method descriptor %T for %s", info, call.Name)
	}
}

// bindRecursiveCall handles a call to a method already on the invocation stack. The
// callee is not reanalyzed here; the enclosing whole-program fixpoint covers it, and
// the call's visible results go conservatively unknown.
func (w *WholeProgram) bindRecursiveCall(bb *cfg.Block, call mir.Call, dest *lval) error {
	w.log.Debugf("recursive call to %s, deferring to whole-program fixpoint", call.Name)
	if bb == nil {
		return nil
	}
	scope := bb.Graph().Name()
	for _, arg := range call.Args {
		v, ok := arg.Value.(mir.VariableName)
		if !ok {
			continue
		}
		if arg.IsRef {
			if err := w.assignUnknown(bb, VarPath(scope, v)); err != nil {
				return err
			}
		} else if _, err := w.useVariable(bb, scope, v); err != nil {
			return err
		}
	}
	if dest != nil {
		return w.assignUnknown(bb, dest.path)
	}
	return nil
}

// forwardBind opens the callee's context: every analysis seeds the entry block from
// the caller's facts, superglobals are initialized when there is no caller, and each
// formal is bound from its actual by position. A by-reference formal (declared or
// call-site marked) gets a points-to edge to the actual's caller-side location;
// literals assign as scalars, variables copy.
func (w *WholeProgram) forwardBind(callerBB *cfg.Block, g *cfg.Graph, m *mir.Method, args []mir.Actual) error {
	entry := g.Entry()
	w.each(func(a Analysis) { a.ForwardBind(callerBB, entry) })
	if callerBB == nil {
		w.initSuperglobals(entry)
	}

	calleeScope := g.Name()
	for i, p := range m.Params {
		formal := VarPath(calleeScope, mir.VariableName(p.Name))
		if i >= len(args) {
			if p.Default != nil {
				return Unsupportedf("default value for parameter $%s of %s", p.Name, m.Name)
			}
			return Unsupportedf("missing actual for parameter $%s of %s", p.Name, m.Name)
		}
		arg := args[i]
		byRef := p.ByRef || arg.IsRef
		switch v := arg.Value.(type) {
		case mir.Literal:
			if byRef {
				return Unsupportedf("literal passed by reference to %s", m.Name)
			}
			if err := w.assignScalar(entry, formal, v); err != nil {
				return err
			}
		case mir.VariableName:
			if callerBB == nil {
				return Invariantf("entry invocation of %s with arguments", m.Name)
			}
			actual := VarPath(callerBB.Graph().Name(), v)
			var err error
			if byRef {
				err = w.assignByRef(entry, formal, actual)
			} else {
				err = w.assignByCopy(entry, formal, actual)
			}
			if err != nil {
				return err
			}
		default:
			return Unsupportedf("actual argument %T", arg.Value)
		}
	}
	w.each(func(a Analysis) { a.AggregateResults(entry) })
	return nil
}

// initSuperglobals populates the global scope at the program entry: the GLOBALS
// aliasing array, the request superglobals as arrays of unknown strings, and the
// argument count and vector.
func (w *WholeProgram) initSuperglobals(entry *cfg.Block) {
	globals := NodeName{Storage: w.globalScope, Index: "GLOBALS"}
	w.each(func(a Analysis) {
		a.AssignStorage(entry, globals, Definite, w.globalScope)
		a.AssignTyped(entry, globals, Definite, "array")
	})

	for _, sg := range superglobalArrays {
		variable := NodeName{Storage: w.globalScope, Index: sg}
		elements := NodeName{Storage: sg, Index: Wildcard}
		w.each(func(a Analysis) {
			a.AssignStorage(entry, variable, Definite, sg)
			a.AssignTyped(entry, variable, Definite, "array")
			a.AssignTyped(entry, elements, Possible, "string")
		})
	}

	argc := NodeName{Storage: w.globalScope, Index: "argc"}
	argv := NodeName{Storage: w.globalScope, Index: "argv"}
	argvElems := NodeName{Storage: "argv", Index: Wildcard}
	w.each(func(a Analysis) {
		a.AssignTyped(entry, argc, Definite, "int")
		a.AssignStorage(entry, argv, Definite, "argv")
		a.AssignTyped(entry, argv, Definite, "array")
		a.AssignTyped(entry, argvElems, Possible, "string")
	})
}

// backwardBind closes the callee's context: every analysis adopts the callee exit's
// facts as the caller's post-call state, and the destination, if any, is bound from
// the return slot in that state.
func (w *WholeProgram) backwardBind(callerBB *cfg.Block, g *cfg.Graph, returnsRef bool, dest *lval) error {
	exit := g.Exit()
	w.each(func(a Analysis) { a.BackwardBind(callerBB, exit) })
	if callerBB == nil || dest == nil {
		return nil
	}
	ret := RetPath(g.Name())
	if dest.isRef || returnsRef {
		return w.assignByRef(callerBB, dest.path, ret)
	}
	return w.assignByCopy(callerBB, dest.path, ret)
}

// analyzeSummary runs the binding protocol over an opaque callee's synthetic
// entry/body/exit shape, with the body's effect supplied by the summaries table.
func (w *WholeProgram) analyzeSummary(bb *cfg.Block, sm *SummaryMethodInfo, call mir.Call, dest *lval) error {
	g, body := sm.CFG()
	g.ResetForAnalysis()
	entry, exit := g.Entry(), g.Exit()

	w.each(func(a Analysis) { a.ForwardBind(bb, entry) })
	if bb != nil {
		scope := bb.Graph().Name()
		for _, arg := range call.Args {
			v, ok := arg.Value.(mir.VariableName)
			if !ok {
				continue
			}
			if arg.IsRef {
				if err := w.assignUnknown(entry, VarPath(scope, v)); err != nil {
					return err
				}
			} else if _, err := w.useVariable(entry, scope, v); err != nil {
				return err
			}
		}
	}
	w.each(func(a Analysis) { a.AggregateResults(entry) })

	for _, e := range g.Edges() {
		e.MarkExecutable()
	}

	w.pullSingle(body, entry)
	if err := w.applyModelledEffect(body, sm); err != nil {
		return err
	}
	w.each(func(a Analysis) { a.AggregateResults(body) })

	w.pullSingle(exit, body)
	w.each(func(a Analysis) { a.AggregateResults(exit) })

	return w.backwardBind(bb, g, false, dest)
}

func (w *WholeProgram) pullSingle(bb, pred *cfg.Block) {
	w.each(func(a Analysis) {
		a.PullInit(bb)
		a.PullFirstPred(bb, pred)
		a.PullFinish(bb)
	})
}

// applyModelledEffect writes the table-driven effect of a builtin to its return
// slot: an exact literal when the table gives one, otherwise the declared result
// types.
func (w *WholeProgram) applyModelledEffect(body *cfg.Block, sm *SummaryMethodInfo) error {
	ret := RetPath(sm.MethodName)
	switch {
	case sm.Effect.ReturnLiteral != nil:
		return w.assignScalar(body, ret, sm.Effect.ReturnLiteral)
	case len(sm.Effect.ReturnTypes) > 0:
		return w.assignTyped(body, ret, sm.Effect.ReturnTypes...)
	default:
		return w.assignUnknown(body, ret)
	}
}
