// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sketch is a small, in-memory reference implementation of the
// store interfaces: a JSON-serializable document of parameters,
// entities, constraints and groups, loaded the way inp.ReadSim loads a
// simulation file. It exists to give solve's tests and cmd/slvsdemo a
// concrete Store without depending on a real CAD host.
package sketch

import (
	"encoding/json"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/jsgf/solvespace/store"
)

// Doc is the on-disk/in-memory sketch document: every parameter,
// entity, constraint and group, plus the handles currently being
// dragged (if any). It satisfies store.Store directly.
type Doc struct {
	Params      []*store.Parameter   `json:"params"`
	Entities    []*store.Entity      `json:"entities"`
	Constraints []*store.Constraint  `json:"constraints"`
	Groups      []store.GroupHandle  `json:"groups"`
	Dragged     []store.ParamHandle  `json:"dragged"`

	// derived, built by index() after loading or mutating
	paramByH      map[store.ParamHandle]*store.Parameter
	entityByH     map[store.EntityHandle]*store.Entity
	constraintByH map[store.ConstraintHandle]*store.Constraint
}

// New returns an empty, ready-to-populate Doc.
func New() *Doc {
	d := &Doc{}
	d.index()
	return d
}

// index (re)builds the handle-keyed lookup maps from the slices. New and
// Load call it; the Add methods update the maps themselves. It is
// unexported, so only code in this package can refresh the maps after
// editing the slices directly (e.g. after json.Unmarshal).
func (d *Doc) index() {
	d.paramByH = make(map[store.ParamHandle]*store.Parameter, len(d.Params))
	for _, p := range d.Params {
		d.paramByH[p.Handle] = p
	}
	d.entityByH = make(map[store.EntityHandle]*store.Entity, len(d.Entities))
	for _, e := range d.Entities {
		d.entityByH[e.Handle] = e
	}
	d.constraintByH = make(map[store.ConstraintHandle]*store.Constraint, len(d.Constraints))
	for _, c := range d.Constraints {
		d.constraintByH[c.Handle] = c
	}
}

// Load reads a sketch document from a JSON file, panicking on any I/O or
// decode error, matching inp.ReadSim's style: a load failure here is a
// configuration error, not a recoverable runtime condition.
func Load(path string) *Doc {
	b, err := io.ReadFile(path)
	if err != nil {
		chk.Panic("sketch: cannot read file %q", path)
	}
	var d Doc
	if err := json.Unmarshal(b, &d); err != nil {
		chk.Panic("sketch: cannot unmarshal file %q: %v", path, err)
	}
	d.index()
	return &d
}

// AddParam appends a new parameter and returns its handle.
func (d *Doc) AddParam(val float64) store.ParamHandle {
	h := store.ParamHandle(len(d.Params) + 1)
	p := &store.Parameter{Handle: h, Val: val}
	d.Params = append(d.Params, p)
	d.paramByH[h] = p
	return h
}

// AddEntity appends a new entity and returns its handle. The Handle
// field of e is overwritten.
func (d *Doc) AddEntity(e *store.Entity) store.EntityHandle {
	h := store.EntityHandle(len(d.Entities) + 1)
	e.Handle = h
	d.Entities = append(d.Entities, e)
	d.entityByH[h] = e
	return h
}

// AddConstraint appends a new constraint and returns its handle. The
// Handle field of c is overwritten.
func (d *Doc) AddConstraint(c *store.Constraint) store.ConstraintHandle {
	h := store.ConstraintHandle(len(d.Constraints) + 1)
	c.Handle = h
	d.Constraints = append(d.Constraints, c)
	d.constraintByH[h] = c
	return h
}

// SetDragged replaces the set of currently-dragged parameters.
func (d *Doc) SetDragged(hs ...store.ParamHandle) { d.Dragged = hs }

// Param implements store.ParamStore.
func (d *Doc) Param(h store.ParamHandle) *store.Parameter { return d.paramByH[h] }

// Entity implements store.EntityStore.
func (d *Doc) Entity(h store.EntityHandle) *store.Entity { return d.entityByH[h] }

// Constraint implements store.ConstraintStore.
func (d *Doc) Constraint(h store.ConstraintHandle) *store.Constraint { return d.constraintByH[h] }

// ParamsInGroup implements store.ParamStore. A sketch.Doc has no
// per-parameter group field of its own (ownership is via the owning
// entity), so this returns every parameter belonging to an entity in g.
// A constraint's own dimension value is a plain float64 (see ValA in
// builder.go), not a ParamHandle, so there is no unowned-parameter case
// to account for here.
func (d *Doc) ParamsInGroup(g store.GroupHandle) []store.ParamHandle {
	owned := map[store.ParamHandle]bool{}
	var out []store.ParamHandle
	for _, e := range d.Entities {
		if e.Group != g {
			continue
		}
		for _, ph := range e.Param {
			if !owned[ph] {
				owned[ph] = true
				out = append(out, ph)
			}
		}
	}
	return out
}

// EntitiesInGroup implements store.EntityStore.
func (d *Doc) EntitiesInGroup(g store.GroupHandle) []store.EntityHandle {
	var out []store.EntityHandle
	for _, e := range d.Entities {
		if e.Group == g {
			out = append(out, e.Handle)
		}
	}
	return out
}

// ConstraintsInGroup implements store.ConstraintStore.
func (d *Doc) ConstraintsInGroup(g store.GroupHandle) []store.ConstraintHandle {
	var out []store.ConstraintHandle
	for _, c := range d.Constraints {
		if c.Group == g {
			out = append(out, c.Handle)
		}
	}
	return out
}

// DraggedParams implements store.DragHint.
func (d *Doc) DraggedParams() []store.ParamHandle { return d.Dragged }

var _ store.Store = (*Doc)(nil)
