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

// This file is the assignment-semantics layer: the single place where an access path
// becomes a set of location names and where a source-level assignment becomes mutator
// calls against every registered analysis. Analyses never resolve paths themselves,
// so all of them observe identical must/may classifications.

func (w *WholeProgram) each(f func(a Analysis)) {
	for _, a := range w.analyses {
		f(a)
	}
}

// recordUse reports a read of a location to every analysis.
func (w *WholeProgram) recordUse(bb *cfg.Block, name NodeName, cert Certainty) {
	w.each(func(a Analysis) { a.RecordUse(bb, name, cert) })
}

// namedIndices resolves an access path to the set of location names it denotes, with
// the certainty of the resolution. Locations visited as addressing steps get a use
// recorded; the final product does not, callers record reads explicitly.
//
// The result is the cartesian product of the resolved storage names and the resolved
// field names. Certainty is Definite only when every step was a singleton.
func (w *WholeProgram) namedIndices(bb *cfg.Block, p Path) ([]NodeName, Certainty, error) {
	switch path := p.(type) {
	case StoragePath:
		return nil, Possible, Invariantf("storage path %s used as a full access path", path)

	case IndexPath:
		storages, scert, err := w.resolveStorages(bb, path.Storage)
		if err != nil {
			return nil, Possible, err
		}
		return product(storages, []string{path.Index}), scert, nil

	case Indexing:
		storages, scert, err := w.resolveStorages(bb, path.Storage)
		if err != nil {
			return nil, Possible, err
		}
		idxNames, icert, err := w.namedIndices(bb, path.Index)
		if err != nil {
			return nil, Possible, err
		}
		fields := []string{}
		fcert := icert
		for _, idxName := range idxNames {
			w.recordUse(bb, idxName, icert)
			if values, known := w.ccp.StringValues(idxName); known {
				fields = append(fields, values...)
			} else {
				fields = append(fields, Wildcard)
				fcert = Possible
			}
		}
		if len(fields) == 0 {
			return nil, Possible, Invariantf("empty field-name set resolving %s", p)
		}
		if len(fields) > 1 {
			fcert = Possible
		}
		cert := meetCertainty(scert, fcert)
		return product(storages, fields), cert, nil

	default:
		return nil, Possible, Invariantf("unknown path form %T", p)
	}
}

func product(storages, fields []string) []NodeName {
	names := make([]NodeName, 0, len(storages)*len(fields))
	for _, s := range storages {
		for _, f := range fields {
			names = append(names, NodeName{Storage: s, Index: f})
		}
	}
	return names
}

// resolveStorages resolves the storage side of a path. A StoragePath names a table
// directly; anything else resolves to locations first and then follows each one's
// points-to targets. A target holding a scalar is autovivified into a fresh array
// container, matching the language's behavior when a scalar is indexed.
func (w *WholeProgram) resolveStorages(bb *cfg.Block, side Path) ([]string, Certainty, error) {
	if sp, ok := side.(StoragePath); ok {
		return []string{sp.Name}, Definite, nil
	}

	names, cert, err := w.namedIndices(bb, side)
	if err != nil {
		return nil, Possible, err
	}
	var storages []string
	seen := map[string]bool{}
	targetCert := Definite
	for _, name := range names {
		w.recordUse(bb, name, cert)
		targets := w.alias.PointsTo(name)
		if len(targets) == 0 {
			storage := freshArrayStorage(bb)
			w.applyWrites(bb, name, cert, func(target NodeName, c Certainty) {
				w.each(func(a Analysis) { a.AssignEmptyArray(bb, target, c, storage) })
			})
			targets = StorageSet{storage: Definite}
		}
		if len(targets) > 1 {
			targetCert = Possible
		}
		for storage, tc := range targets {
			targetCert = meetCertainty(targetCert, tc)
			if !seen[storage] {
				seen[storage] = true
				storages = append(storages, storage)
			}
		}
	}
	out := meetCertainty(cert, targetCert)
	if len(storages) > 1 {
		out = Possible
	}
	return storages, out, nil
}

// applyWrites performs one mutator against a location and all of its reference
// aliases. A Definite write to a location is also Definite on its must aliases;
// everything else weakens to Possible. Strong writes kill the old value first, so no
// stale fact survives a Definite update.
func (w *WholeProgram) applyWrites(bb *cfg.Block, name NodeName, cert Certainty,
	write func(target NodeName, c Certainty)) {
	if name.IsWild() {
		cert = Possible
	}
	targets := RefSet{name: cert}
	for alias, ac := range w.alias.RefAliases(name) {
		targets[alias] = meetCertainty(cert, ac)
	}
	for target, c := range targets {
		if c == Definite {
			w.each(func(a Analysis) { a.KillValue(bb, target) })
		}
		write(target, c)
	}
}

// assignScalar copies a literal into every resolved left-hand location.
func (w *WholeProgram) assignScalar(bb *cfg.Block, lhs Path, lit mir.Literal) error {
	names, cert, err := w.namedIndices(bb, lhs)
	if err != nil {
		return err
	}
	for _, name := range names {
		w.applyWrites(bb, name, cert, func(target NodeName, c Certainty) {
			w.each(func(a Analysis) { a.AssignScalar(bb, target, c, lit) })
		})
	}
	return nil
}

// assignTyped marks every resolved left-hand location as holding an unknown value of
// the given types.
func (w *WholeProgram) assignTyped(bb *cfg.Block, lhs Path, types ...string) error {
	names, cert, err := w.namedIndices(bb, lhs)
	if err != nil {
		return err
	}
	for _, name := range names {
		w.applyWrites(bb, name, cert, func(target NodeName, c Certainty) {
			w.each(func(a Analysis) { a.AssignTyped(bb, target, c, types...) })
		})
	}
	return nil
}

// assignUnknown widens every resolved left-hand location to a completely unknown
// value.
func (w *WholeProgram) assignUnknown(bb *cfg.Block, lhs Path) error {
	names, cert, err := w.namedIndices(bb, lhs)
	if err != nil {
		return err
	}
	for _, name := range names {
		w.applyWrites(bb, name, cert, func(target NodeName, c Certainty) {
			w.each(func(a Analysis) { a.AssignUnknown(bb, target, c) })
		})
	}
	return nil
}

// assignEmptyArray points every resolved left-hand location at a fresh empty array
// container.
func (w *WholeProgram) assignEmptyArray(bb *cfg.Block, lhs Path) error {
	names, cert, err := w.namedIndices(bb, lhs)
	if err != nil {
		return err
	}
	storage := freshArrayStorage(bb)
	for _, name := range names {
		w.applyWrites(bb, name, cert, func(target NodeName, c Certainty) {
			w.each(func(a Analysis) { a.AssignEmptyArray(bb, target, c, storage) })
		})
	}
	return nil
}

// assignByRef creates points-to edges from every left-hand name to every right-hand
// name. Definite requires both sides to resolve to singletons; a Definite reference
// removes the left side's previous edges first.
func (w *WholeProgram) assignByRef(bb *cfg.Block, lhs Path, rhs Path) error {
	rnames, rcert, err := w.namedIndices(bb, rhs)
	if err != nil {
		return err
	}
	lnames, lcert, err := w.namedIndices(bb, lhs)
	if err != nil {
		return err
	}
	for _, r := range rnames {
		w.recordUse(bb, r, rcert)
	}
	cert := meetCertainty(lcert, rcert)
	if cert == Definite {
		w.each(func(a Analysis) {
			a.KillValue(bb, lnames[0])
			a.KillReference(bb, lnames[0])
		})
	}
	for _, l := range lnames {
		for _, r := range rnames {
			w.each(func(a Analysis) { a.CreateReference(bb, l, r, cert) })
		}
	}
	return nil
}

// assignByCopy copies by value: for every points-to target of the right side, scalar
// values copy directly, arrays copy as an edge to a freshly named container (the
// model is shallow), and objects share their container.
func (w *WholeProgram) assignByCopy(bb *cfg.Block, lhs Path, rhs Path) error {
	rnames, rcert, err := w.namedIndices(bb, rhs)
	if err != nil {
		return err
	}
	names, cert, err := w.namedIndices(bb, lhs)
	if err != nil {
		return err
	}

	// One contribution per right-hand name; the first is applied at the resolved
	// certainty, later ones weaken so merged values accumulate instead of replacing.
	var contributions []func(target NodeName, c Certainty)
	for _, rname := range rnames {
		rname := rname
		w.recordUse(bb, rname, rcert)
		lit := w.ccp.WorkingLit(rname)
		types := w.types.TypesOf(rname)
		rtargets := w.alias.PointsTo(rname)

		switch {
		case lit != nil:
			contributions = append(contributions, func(target NodeName, c Certainty) {
				w.each(func(a Analysis) { a.AssignScalar(bb, target, c, lit) })
			})
		case len(types) == 0 && len(rtargets) == 0:
			contributions = append(contributions, func(target NodeName, c Certainty) {
				w.each(func(a Analysis) { a.AssignUnknown(bb, target, c) })
			})
		default:
			scalars := []string{}
			for ty := range types {
				if ScalarTypeNames[ty] {
					scalars = append(scalars, ty)
				}
			}
			if len(scalars) > 0 {
				contributions = append(contributions, func(target NodeName, c Certainty) {
					w.each(func(a Analysis) { a.AssignTyped(bb, target, c, scalars...) })
				})
			}
			if types["array"] {
				storage := freshArrayStorage(bb)
				contributions = append(contributions, func(target NodeName, c Certainty) {
					w.each(func(a Analysis) {
						a.AssignStorage(bb, target, c, storage)
						a.AssignTyped(bb, target, c, "array")
					})
				})
			}
			if types["object"] {
				for storage := range rtargets {
					storage := storage
					contributions = append(contributions, func(target NodeName, c Certainty) {
						w.each(func(a Analysis) {
							a.AssignStorage(bb, target, c, storage)
							a.AssignTyped(bb, target, c, "object")
						})
					})
				}
			}
		}
	}

	for _, name := range names {
		first := true
		for _, contribute := range contributions {
			effective := cert
			if !first {
				effective = Possible
			}
			w.applyWrites(bb, name, effective, contribute)
			first = false
		}
	}
	return nil
}
