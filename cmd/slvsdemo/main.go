// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command slvsdemo loads a sketch document and solves one of its groups,
// printing the outcome.
package main

import (
	"flag"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
	"github.com/jsgf/solvespace/geom"
	"github.com/jsgf/solvespace/report"
	"github.com/jsgf/solvespace/sketch"
	"github.com/jsgf/solvespace/solve"
	"github.com/jsgf/solvespace/store"
)

func main() {

	verbose := flag.Bool("v", false, "print newton iteration progress")
	group := flag.Uint("group", 1, "group handle to solve")
	findFree := flag.Bool("free", false, "enumerate remaining degrees of freedom")

	defer func() {
		if err := recover(); err != nil {
			chk.Verbose = true
			for i := 8; i > 3; i-- {
				chk.CallerInfo(i)
			}
			io.Pfred("ERROR: %v\n", err)
		}
	}()

	defer utl.DoProf(false)()

	io.PfWhite("\nslvsdemo -- geometric constraint solver demo\n\n")

	flag.Parse()
	if len(flag.Args()) < 1 {
		chk.Panic("Please provide a sketch file. Ex.: slvsdemo bracket.json")
	}
	fnamepath := flag.Arg(0)

	doc := sketch.Load(fnamepath)

	g := store.GroupHandle(*group)
	sys := solve.New(doc, &geom.Ctx{Entities: doc})
	sys.Verbose = *verbose

	result := sys.Solve(g, *findFree)

	sink := report.TextSink{}
	sink.Report(g, result)
}
